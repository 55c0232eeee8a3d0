package tenant

import (
	"log/slog"
	"time"
)

// Config holds environment-driven resolution settings.
type Config struct {
	HeaderName      string        `env:"TENANT_HEADER" envDefault:"X-Tenant-Schema"`
	QueryParam      string        `env:"TENANT_QUERY_PARAM" envDefault:"tenant"`
	HintCookie      string        `env:"TENANT_HINT_COOKIE" envDefault:"tenant_hint"`
	AdminPathPrefix string        `env:"TENANT_ADMIN_PREFIX" envDefault:"/admin"`
	CacheTTL        time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`

	// SingleHostname marks deployments where one shared hostname serves
	// every tenant, so hostname-based resolution is meaningless. This is
	// an explicit flag, never inferred.
	SingleHostname bool `env:"TENANT_SINGLE_HOSTNAME" envDefault:"false"`
}

// Option configures the resolver.
type Option func(*Resolver)

// WithCache sets a custom cache implementation.
func WithCache(cache Cache) Option {
	return func(r *Resolver) {
		if cache != nil {
			r.cache = cache
		}
	}
}

// WithCacheTTL sets how long directory lookups are cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.cacheTTL = ttl
		}
	}
}

// WithAdminPrefix sets the administrative path prefix that always
// resolves to the public tenant. Empty disables the override.
func WithAdminPrefix(prefix string) Option {
	return func(r *Resolver) { r.adminPrefix = prefix }
}

// WithLogger sets the resolver logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}
