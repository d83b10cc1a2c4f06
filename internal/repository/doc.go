// Package repository groups the data access layers of EventDesk.
//
//   - postgres: the transactional store over pgx, plus the audit log over sqlx
//   - report: read-only event statistics and export rows built with bun
//
// Repository interfaces are declared by their consumers in the service package.
package repository
