package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/dealerdesk/dealerdesk/core"
	"github.com/dealerdesk/dealerdesk/internal/storage"
	"github.com/dealerdesk/dealerdesk/modules/accounts"
	"github.com/dealerdesk/dealerdesk/modules/dealership"
	"github.com/dealerdesk/dealerdesk/modules/platform"
	"github.com/dealerdesk/dealerdesk/pkg/auth"
	"github.com/dealerdesk/dealerdesk/pkg/config"
	"github.com/dealerdesk/dealerdesk/pkg/cookie"
	"github.com/dealerdesk/dealerdesk/pkg/httpserver"
	"github.com/dealerdesk/dealerdesk/pkg/logger"
	"github.com/dealerdesk/dealerdesk/pkg/pg"
	"github.com/dealerdesk/dealerdesk/pkg/rbac"
	"github.com/dealerdesk/dealerdesk/pkg/redis"
	"github.com/dealerdesk/dealerdesk/pkg/session"
	"github.com/dealerdesk/dealerdesk/pkg/tenant"
)

type appConfig struct {
	Logger   logger.Config
	PG       pg.Config
	Redis    redis.Config
	Cookie   cookie.Config
	Tenant   tenant.Config
	Session  session.Config
	Auth     auth.Config
	Accounts accounts.Config
	HTTP     httpserver.Config
	CORS     corsConfig

	PublicTenantName string `env:"PUBLIC_TENANT_NAME" envDefault:"Platform"`
}

type corsConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"300"`
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.NewFromConfig(cfg.Logger, logger.WithContextExtractors(
		tenant.LoggerExtractor(),
		auth.LoggerExtractor(),
	))
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return fmt.Errorf("run shared migrations: %w", err)
	}

	store := storage.NewStore(pool)
	provisioner := storage.NewProvisioner(store, cfg.PG, log)
	if err := provisioner.EnsurePublicTenant(ctx, cfg.PublicTenantName); err != nil {
		return fmt.Errorf("ensure public tenant: %w", err)
	}

	cookies, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		return fmt.Errorf("init cookie manager: %w", err)
	}

	// Directory lookups are cached in Redis when configured, in
	// process memory otherwise.
	resolverOpts := []tenant.Option{tenant.WithLogger(log)}
	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		resolverOpts = append(resolverOpts, tenant.WithCache(tenant.NewRedisCache(client)))
	}
	resolver := tenant.NewResolverFromConfig(cfg.Tenant, store, cookies, resolverOpts...)

	sessions, err := session.NewManager(store.ScopedSessions(), cfg.Session)
	if err != nil {
		return fmt.Errorf("init session manager: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer,
		cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	if err != nil {
		return fmt.Errorf("init token service: %w", err)
	}

	cookieTransport := session.NewCookieTransport(cookies, cfg.Session.CookieName, cfg.Session.SecureCookies)
	headerTransport := session.NewHeaderTransport(cfg.Session.HeaderName)

	// API chain: session cookie, then X-Session-ID, then bearer.
	apiChain := auth.NewChain(log,
		auth.NewSessionAuthenticator(sessions, cookieTransport, auth.SourceSessionCookie, log),
		auth.NewSessionAuthenticator(sessions, headerTransport, auth.SourceSessionHeader, log),
		auth.NewBearerAuthenticator(tokens, log),
	)
	// Admin paths accept browser session cookies only.
	adminChain := auth.NewChain(log,
		auth.NewSessionAuthenticator(sessions, cookieTransport, auth.SourceSessionCookie, log),
	)

	accountsService := accounts.NewService(store, store, store, store, sessions, tokens,
		cfg.Accounts, cfg.Auth, log)
	accountsHandler := accounts.NewHandler(accountsService, cookieTransport, cookies, cfg.Tenant, log)

	dealershipService := dealership.NewService(store, store, log)
	dealershipHandler := dealership.NewHandler(dealershipService, log)

	platformHandler := platform.NewHandler(provisioner, store, log)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", cfg.Session.HeaderName, cfg.Tenant.HeaderName},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	r.Get("/health", healthHandler(pg.Healthcheck(pool)))

	r.Group(func(r chi.Router) {
		r.Use(tenant.Middleware(resolver))

		r.Route(cfg.Tenant.AdminPathPrefix, func(r chi.Router) {
			r.Use(auth.Middleware(adminChain))
			r.Post("/auth/login", accountsHandler.AdminLogin)
			r.Post("/auth/logout", accountsHandler.Logout)
			r.Mount("/", platform.Router(platformHandler))
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(apiChain))
			r.Use(rbac.LoadGrants(store.ScopedGrants()))

			r.Mount("/", accounts.Router(accountsHandler))
			r.Mount("/dealership", dealership.Router(dealershipHandler))
		})
	})

	go cleanupExpiredSessions(ctx, store, cfg.Session.CleanupInterval, log)

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

func healthHandler(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context()); err != nil {
			core.JSONError(w, core.ErrServiceUnavailable)
			return
		}
		core.JSONMessage(w, http.StatusOK, "ok", nil)
	}
}

// cleanupExpiredSessions walks every tenant partition, public
// included, and purges expired session rows.
func cleanupExpiredSessions(ctx context.Context, store *storage.Store, interval time.Duration, log *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tenants, err := store.ListActive(ctx)
			if err != nil {
				log.ErrorContext(ctx, "list tenants for session cleanup", logger.Error(err))
				continue
			}
			public, err := store.GetBySchema(ctx, tenant.PublicSchema)
			if err == nil {
				tenants = append(tenants, public)
			}
			for _, t := range tenants {
				err := store.RunInTenant(ctx, t, func(ctx context.Context) error {
					return store.Sessions().DeleteExpired(ctx)
				})
				if err != nil {
					log.ErrorContext(ctx, "session cleanup failed",
						logger.Error(err),
						logger.TenantSchema(t.SchemaID),
					)
				}
			}
		}
	}
}
