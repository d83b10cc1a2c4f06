// Package id generates identifiers and secrets.
//
// Entities use UUID v4 primary keys. Organization API keys have the form
//
//	evk_<16 hex public id>_<32 hex secret>
//
// where only the public id is stored in clear; the secret is bcrypt-hashed by
// the auth service. Invitation and refresh tokens are random hex strings.
package id
