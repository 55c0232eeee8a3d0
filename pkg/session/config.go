package session

import "time"

// Config holds session settings loaded from the environment.
type Config struct {
	TTL             time.Duration `env:"SESSION_TTL" envDefault:"336h"`
	CookieName      string        `env:"SESSION_COOKIE_NAME" envDefault:"sessionid"`
	HeaderName      string        `env:"SESSION_HEADER_NAME" envDefault:"X-Session-ID"`
	SecureCookies   bool          `env:"SESSION_SECURE_COOKIES" envDefault:"false"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`
}
