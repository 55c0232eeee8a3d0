// Package session provides tenant-partitioned login sessions.
//
// Sessions are minted at login and persisted in the owning tenant's
// partition before the key is released to the client. Each session
// carries a denormalized copy of its tenant schema and domain so the
// authentication layer can reject keys presented against the wrong
// tenant without extra lookups.
//
// Keys travel either in an encrypted cookie (browsers) or in a plain
// header (API clients); both transports implement the same Transport
// interface.
package session
