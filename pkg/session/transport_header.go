package session

import (
	"net/http"
	"time"
)

// HeaderTransport carries the raw session key in a request header.
// Used by non-browser API clients that cannot hold cookies.
type HeaderTransport struct {
	headerName string
}

// NewHeaderTransport creates a header-based transport.
func NewHeaderTransport(headerName string) *HeaderTransport {
	return &HeaderTransport{headerName: headerName}
}

func (t *HeaderTransport) GetKey(r *http.Request) (string, error) {
	key := r.Header.Get(t.headerName)
	if key == "" {
		return "", ErrSessionNotFound
	}
	return key, nil
}

func (t *HeaderTransport) SetKey(w http.ResponseWriter, key string, ttl time.Duration) error {
	w.Header().Set(t.headerName, key)
	if ttl > 0 {
		w.Header().Set(t.headerName+"-Expires", time.Now().Add(ttl).Format(time.RFC3339))
	}
	return nil
}

func (t *HeaderTransport) ClearKey(w http.ResponseWriter) error {
	w.Header().Del(t.headerName)
	w.Header().Del(t.headerName + "-Expires")
	return nil
}
