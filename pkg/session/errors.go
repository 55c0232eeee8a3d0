package session

import "errors"

var (
	// ErrSessionNotFound indicates no session was found for the key.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionExpired indicates the session is past its expiry.
	ErrSessionExpired = errors.New("session.expired")

	// ErrInvalidSession indicates a malformed or incomplete session.
	ErrInvalidSession = errors.New("session.invalid")

	// ErrKeyGeneration indicates session key generation failed.
	ErrKeyGeneration = errors.New("session.key_generation_failed")

	// ErrNoStore indicates no store is configured.
	ErrNoStore = errors.New("session.no_store")
)
