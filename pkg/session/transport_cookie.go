package session

import (
	"net/http"
	"time"

	"github.com/dealerdesk/dealerdesk/pkg/cookie"
)

// CookieTransport carries the session key in an encrypted cookie.
type CookieTransport struct {
	cookies    *cookie.Manager
	cookieName string
	secure     bool
	options    []cookie.Option
}

// NewCookieTransport creates a cookie-based transport.
func NewCookieTransport(cookies *cookie.Manager, cookieName string, secure bool, opts ...cookie.Option) *CookieTransport {
	return &CookieTransport{
		cookies:    cookies,
		cookieName: cookieName,
		secure:     secure,
		options:    opts,
	}
}

func (t *CookieTransport) GetKey(r *http.Request) (string, error) {
	key, err := t.cookies.GetEncrypted(r, t.cookieName)
	if err != nil {
		return "", ErrSessionNotFound
	}
	return key, nil
}

func (t *CookieTransport) SetKey(w http.ResponseWriter, key string, ttl time.Duration) error {
	opts := []cookie.Option{
		cookie.WithMaxAge(int(ttl.Seconds())),
		cookie.WithPath("/"),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
	}
	if t.secure {
		opts = append(opts, cookie.WithSecure(true))
	}
	opts = append(opts, t.options...)

	return t.cookies.SetEncrypted(w, t.cookieName, key, opts...)
}

func (t *CookieTransport) ClearKey(w http.ResponseWriter) error {
	t.cookies.Delete(w, t.cookieName)
	return nil
}
