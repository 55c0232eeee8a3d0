package tenant

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dealerdesk/dealerdesk/pkg/cookie"
)

// Signal is a candidate tenant identifier extracted from one request
// signal. An empty Identifier means the signal is absent from the
// request.
type Signal struct {
	Source     string // "header", "session", "query", "hostname"
	Identifier string
	ByHostname bool // lookup via Domain records instead of schema id
}

// Extractor pulls a tenant signal out of an HTTP request. Extractors
// never touch storage; the resolver owns lookups and caching.
type Extractor interface {
	Extract(r *http.Request) Signal
}

// HeaderExtractor reads an explicit tenant schema id from a dedicated
// request header. Highest-priority signal.
type HeaderExtractor struct {
	Header string
}

func (e HeaderExtractor) Extract(r *http.Request) Signal {
	return Signal{Source: "header", Identifier: r.Header.Get(e.Header)}
}

// SessionHintExtractor reads the tenant schema id stored client-side in
// an encrypted cookie at login. This is the "caller's existing session
// state" signal: it lets returning browsers skip header and hostname
// resolution entirely.
type SessionHintExtractor struct {
	Cookies    *cookie.Manager
	CookieName string
}

func (e SessionHintExtractor) Extract(r *http.Request) Signal {
	if e.Cookies == nil {
		return Signal{Source: "session"}
	}
	schema, err := e.Cookies.GetEncrypted(r, e.CookieName)
	if err != nil {
		return Signal{Source: "session"}
	}
	return Signal{Source: "session", Identifier: schema}
}

// QueryExtractor reads the tenant schema id from a query parameter.
// Lower trust; kept for non-browser API callers that cannot set
// headers or cookies.
type QueryExtractor struct {
	Param string
}

func (e QueryExtractor) Extract(r *http.Request) Signal {
	return Signal{Source: "query", Identifier: r.URL.Query().Get(e.Param)}
}

// HostnameExtractor maps the request hostname to a tenant via Domain
// records. Port and a leading "www." are stripped before lookup.
type HostnameExtractor struct{}

func (e HostnameExtractor) Extract(r *http.Request) Signal {
	host := r.Host
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	host = strings.TrimPrefix(host, "www.")
	return Signal{Source: "hostname", Identifier: host, ByHostname: true}
}

// Resolver computes the active tenant for an incoming request from an
// ordered chain of signals. Resolve is total: every request gets a
// tenant, falling back to the public tenant, and only a missing public
// tenant produces an error.
type Resolver struct {
	dir         Directory
	extractors  []Extractor
	cache       Cache
	cacheTTL    time.Duration
	adminPrefix string
	log         *slog.Logger
}

// NewResolver builds a resolver over the given directory and ordered
// extractor chain.
func NewResolver(dir Directory, extractors []Extractor, opts ...Option) *Resolver {
	r := &Resolver{
		dir:         dir,
		extractors:  extractors,
		cache:       NewInMemoryCache(),
		cacheTTL:    5 * time.Minute,
		adminPrefix: "/admin",
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewResolverFromConfig assembles the standard extractor chain:
// header, session hint, query parameter, hostname. The hostname
// strategy is omitted when the deployment serves all tenants from a
// single shared hostname, where the hostname carries no tenant meaning.
func NewResolverFromConfig(cfg Config, dir Directory, cookies *cookie.Manager, opts ...Option) *Resolver {
	extractors := []Extractor{
		HeaderExtractor{Header: cfg.HeaderName},
		SessionHintExtractor{Cookies: cookies, CookieName: cfg.HintCookie},
		QueryExtractor{Param: cfg.QueryParam},
	}
	if !cfg.SingleHostname {
		extractors = append(extractors, HostnameExtractor{})
	}

	resolverOpts := []Option{
		WithAdminPrefix(cfg.AdminPathPrefix),
		WithCacheTTL(cfg.CacheTTL),
	}
	return NewResolver(dir, extractors, append(resolverOpts, opts...)...)
}

// Resolve determines the tenant for the request. Administrative paths
// hard-override to the public tenant before the chain runs. Lookup
// misses on explicitly supplied identifiers fall through to the next
// strategy; the downgrade is logged at warning so silent public-tenant
// behavior stays observable.
func (rv *Resolver) Resolve(ctx context.Context, r *http.Request) (*Tenant, error) {
	if underPrefix(r.URL.Path, rv.adminPrefix) {
		return rv.public(ctx)
	}

	for _, ex := range rv.extractors {
		sig := ex.Extract(r)
		if sig.Identifier == "" {
			continue
		}

		t, err := rv.lookup(ctx, sig)
		if err != nil {
			// LookupMiss: fall through to the next strategy.
			rv.log.WarnContext(ctx, "tenant signal did not resolve, falling through",
				slog.String("source", sig.Source),
				slog.String("identifier", sig.Identifier),
				slog.Any("error", err),
			)
			continue
		}
		if !t.Active {
			rv.log.WarnContext(ctx, "tenant signal resolved to inactive tenant, falling through",
				slog.String("source", sig.Source),
				slog.String("tenant_schema", t.SchemaID),
			)
			continue
		}
		return t, nil
	}

	return rv.public(ctx)
}

func (rv *Resolver) lookup(ctx context.Context, sig Signal) (*Tenant, error) {
	key := cacheKey(sig)
	if t, ok := rv.cache.Get(ctx, key); ok {
		return t, nil
	}

	var (
		t   *Tenant
		err error
	)
	if sig.ByHostname {
		t, err = rv.dir.GetByHostname(ctx, sig.Identifier)
	} else {
		t, err = rv.dir.GetBySchema(ctx, sig.Identifier)
	}
	if err != nil {
		return nil, err
	}

	rv.cache.Set(ctx, key, t, rv.cacheTTL)
	return t, nil
}

// public loads the distinguished public tenant. Its absence is a
// configuration fault that should never occur after deployment, hence
// the critical-severity log.
func (rv *Resolver) public(ctx context.Context) (*Tenant, error) {
	sig := Signal{Source: "default", Identifier: PublicSchema}
	if t, ok := rv.cache.Get(ctx, cacheKey(sig)); ok {
		return t, nil
	}

	t, err := rv.dir.GetBySchema(ctx, PublicSchema)
	if err != nil {
		rv.log.ErrorContext(ctx, "CRITICAL: public tenant missing from directory",
			slog.Any("error", err),
		)
		return nil, ErrPublicTenantMissing
	}

	rv.cache.Set(ctx, cacheKey(sig), t, rv.cacheTTL)
	return t, nil
}

// underPrefix matches the prefix as a full path segment, so a prefix
// of "/admin" covers "/admin" and "/admin/tenants" but not
// "/administrator".
func underPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func cacheKey(sig Signal) string {
	if sig.ByHostname {
		return "hostname:" + sig.Identifier
	}
	return "schema:" + sig.Identifier
}
