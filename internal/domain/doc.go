// Package domain contains the business entities of the event-management API.
//
// Organizations own events. An event has attendees, ticket types, registrations
// (an attendee's signup against a ticket type) with their payments, speakers,
// tracks and sessions that make up the schedule, partner hotels with room types
// and accommodations, and assigned reviewers.
//
// Types ending in "Input" are used for create/update operations; pointer fields
// in update inputs mean "leave unchanged when nil". Types ending in "Filter" are
// used for list queries. Money is always an int64 amount in minor units next to
// an ISO-4217 currency code.
package domain
