// Package service contains the business rules of EventDesk.
//
// Each service owns one vertical (events, tickets, registrations, the
// program, accommodations, ...) and declares the repository interfaces it
// needs. Multi-row changes such as taking a ticket seat or booking a room
// run inside a Transactor transaction.
package service
