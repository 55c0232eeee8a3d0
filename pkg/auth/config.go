package auth

import "time"

// Config holds authentication settings loaded from the environment.
type Config struct {
	JWTSecret       string        `env:"AUTH_JWT_SECRET,required"`
	JWTIssuer       string        `env:"AUTH_JWT_ISSUER" envDefault:"dealerdesk"`
	AccessTokenTTL  time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"168h"`

	// LoginTimeout bounds the universal login scan across tenants.
	// Exceeding it fails the login rather than serving a partial scan.
	LoginTimeout time.Duration `env:"AUTH_LOGIN_TIMEOUT" envDefault:"10s"`
}
