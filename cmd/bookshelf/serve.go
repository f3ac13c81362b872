package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/bookshelf/internal/catalog"
	"github.com/dmitrymomot/bookshelf/internal/web"
	"github.com/dmitrymomot/bookshelf/internal/web/views"
	"github.com/dmitrymomot/bookshelf/pkg/clientip"
	"github.com/dmitrymomot/bookshelf/pkg/config"
	"github.com/dmitrymomot/bookshelf/pkg/cookie"
	"github.com/dmitrymomot/bookshelf/pkg/httpserver"
	"github.com/dmitrymomot/bookshelf/pkg/logger"
	"github.com/dmitrymomot/bookshelf/pkg/oauth"
	"github.com/dmitrymomot/bookshelf/pkg/ratelimiter"
	"github.com/dmitrymomot/bookshelf/pkg/redis"
	"github.com/dmitrymomot/bookshelf/pkg/session"
)

// serveConfig is only read by the serve command, so migrate and seed work
// without cookie secrets.
type serveConfig struct {
	HTTP       httpserver.Config
	ClientIP   clientip.Config
	Session    session.Config
	Cookie     cookie.Config
	Redis      redis.Config
	OAuth      oauth.Config
	LoginLimit ratelimiter.Config
}

func serve(ctx context.Context, app appConfig, log *slog.Logger) error {
	var cfg serveConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	db, err := openStore(ctx, app, log, app.DB.AutoMigrate)
	if err != nil {
		return err
	}
	defer db.Close()

	checks := map[string]httpserver.Check{"db": db.Ping}

	// Redis backs sessions and login limits when SESSION_STORE=redis.
	var rdb *goredis.Client
	switch cfg.Session.Store {
	case session.StoreRedis:
		if rdb, err = redis.Connect(ctx, cfg.Redis); err != nil {
			return err
		}
		defer rdb.Close()
		checks["redis"] = redis.Healthcheck(rdb)
	case session.StoreMemory, "":
	default:
		return fmt.Errorf("%w: %q", session.ErrUnknownStore, cfg.Session.Store)
	}

	var sessionStore session.Store
	if rdb != nil {
		sessionStore = session.NewRedisStore(rdb)
	} else {
		mem := session.NewMemoryStore(cfg.Session.CleanupInterval)
		defer mem.Close()
		sessionStore = mem
	}

	cookies, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		return err
	}
	sessions := session.New(
		session.WithConfig(cfg.Session),
		session.WithCookieManager(cookies),
		session.WithStore(sessionStore),
		session.WithLogger(log.With(logger.Component("session"))),
	)

	limiter, closeLimiter, err := newLoginLimiter(cfg.LoginLimit, rdb)
	if err != nil {
		return err
	}
	defer closeLimiter()

	flow, err := newFlow(cfg.OAuth, db, log)
	if err != nil {
		return err
	}

	router := web.NewRouter(web.Dependencies{
		Logger:       log,
		Catalog:      catalog.NewService(db, catalog.WithLogger(log)),
		Flow:         flow,
		Sessions:     sessions,
		Views:        views.New(),
		HealthChecks: checks,
		LoginLimiter: limiter,
		TrustProxy:   cfg.ClientIP.TrustProxy,
		Sentry:       app.Sentry.DSN != "",
	})

	return httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log)).Run(ctx, router)
}

// newLoginLimiter returns a nil bucket when limiting is disabled.
func newLoginLimiter(cfg ratelimiter.Config, rdb *goredis.Client) (*ratelimiter.Bucket, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}

	var (
		store   ratelimiter.Store
		closeFn = func() {}
	)
	if rdb != nil {
		store = ratelimiter.NewRedisStore(rdb)
	} else {
		mem := ratelimiter.NewMemoryStore(cfg.RefillInterval)
		store, closeFn = mem, func() { _ = mem.Close() }
	}

	bucket, err := ratelimiter.NewBucket(store, cfg)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return bucket, closeFn, nil
}

// newFlow builds the provider registry from the secrets file and the
// environment. Providers without credentials are not offered.
func newFlow(cfg oauth.Config, users oauth.UserStorage, log *slog.Logger) (*oauth.Flow, error) {
	secrets, err := oauth.LoadSecrets(cfg.SecretsFile)
	if err != nil {
		return nil, err
	}
	secrets = secrets.WithEnv(os.LookupEnv, oauth.ProviderReddit, oauth.ProviderGitHub, oauth.ProviderGoogle)

	registry, err := oauth.BuildRegistry(cfg, secrets)
	if err != nil {
		return nil, err
	}
	if len(registry.Names()) == 0 {
		log.Warn("no oauth providers configured, login is disabled", logger.Component("oauth"))
	}

	return oauth.NewFlow(registry, users,
		oauth.WithHTTPClient(oauth.NewHTTPClient(cfg)),
		oauth.WithLogger(log),
	), nil
}
