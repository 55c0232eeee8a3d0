package session

import (
	"net/http"
	"time"
)

// Transport defines how session keys travel between client and server.
type Transport interface {
	// GetKey extracts the session key from the request.
	GetKey(r *http.Request) (string, error)

	// SetKey sends the session key in the response.
	SetKey(w http.ResponseWriter, key string, ttl time.Duration) error

	// ClearKey removes the session key from the response.
	ClearKey(w http.ResponseWriter) error
}
