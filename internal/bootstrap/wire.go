package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/baechuer/kanjo/services/account-service/internal/application/auth"
	"github.com/baechuer/kanjo/services/account-service/internal/application/catalog"
	"github.com/baechuer/kanjo/services/account-service/internal/audit"
	"github.com/baechuer/kanjo/services/account-service/internal/config"
	"github.com/baechuer/kanjo/services/account-service/internal/domain"
	"github.com/baechuer/kanjo/services/account-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/kanjo/services/account-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/kanjo/services/account-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/kanjo/services/account-service/internal/infrastructure/redis"
	"github.com/baechuer/kanjo/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/kanjo/services/account-service/internal/logger"
	http_handlers "github.com/baechuer/kanjo/services/account-service/internal/transport/http/handlers"
	"github.com/baechuer/kanjo/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/kanjo/services/account-service/internal/transport/http/response"
	"github.com/baechuer/kanjo/services/account-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string, debug bool) (*sql.DB, error)

	// Migrate runs schema migrations when cfg.RunMigrations is set.
	Migrate func(ctx context.Context, db *sql.DB) error

	// NewRedis is only called when REDIS_ADDR is configured.
	NewRedis func(addr, password string, db int) *redis.Client

	NewPublisher func(rabbitURL string) (auth.EventPublisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) db
	db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		return nil, nil, errors.New("bootstrap: NewDB returned nil *sql.DB")
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	if cfg.RunMigrations && deps.Migrate != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := deps.Migrate(ctx, db)
		cancel()
		if err != nil {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
		logger.Logger.Info().Msg("migrations applied")
	}

	// 2) repos
	userRepo := postgres.NewUserRepo(db)
	roleRepo := postgres.NewRoleRepo(db)
	skillRepo := postgres.NewSkillRepo(db)

	// 3) redis (best-effort)
	var redisCli *redis.Client
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; cache and shared rate limits disabled")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// wrap repo with cache
	var users auth.UserRepo = userRepo
	if redisCli != nil {
		users = redis.NewCachedUserRepo(userRepo, redisCli, cfg.UserCacheTTL)
	}

	// 4) publisher
	pub, err := newPublisher(deps, cfg)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}
	if c, ok := pub.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 5) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Dur("ttl", cfg.JWTExpiresIn).Msg("initializing jwt issuer")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens, err := security.NewJWTIssuer(security.JWTConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.JWTExpiresIn,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// seed (dev only)
	if cfg.Env == "dev" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		postgres.SeedUsers(ctx, userRepo, hasher)
		cancel()
	}

	// 6) services
	authSvc := auth.NewService(users, hasher, tokens, pub, auth.Config{
		VerifyEmailBaseURL:  cfg.VerifyEmailBaseURL,
		VerifyEmailTokenTTL: cfg.VerifyEmailTokenTTL,
	})

	authSvc = authSvc.WithAudit(audit.New(logger.Logger).Record)

	catalogSvc := catalog.NewService(roleRepo, skillRepo)

	// 7) handlers + middleware
	secureCookies := cfg.IsProd()

	checks := map[string]http_handlers.Pinger{
		"postgres": http_handlers.DBPinger{DB: db},
	}
	if redisCli != nil {
		checks["redis"] = redisCli
	}

	rd := router.Deps{
		Health:  http_handlers.NewHealthHandler(checks),
		User:    http_handlers.NewUserHandler(authSvc, tokens.TTL(), secureCookies),
		Catalog: http_handlers.NewCatalogHandler(catalogSvc),

		AuthMW:     middleware.Auth(authSvc, response.WriteError),
		SoftAuthMW: middleware.SoftAuth(authSvc),
		AdminMW:    middleware.RequireAtLeast(string(domain.RoleAdmin), response.WriteError),
		CSRFMW:     middleware.CSRFProtection(cfg.AllowedOrigins, response.WriteError),

		TrustedProxies: cfg.TrustedProxies,

		RateLimit:  cfg.AuthRateLimit,
		RateWindow: cfg.AuthRateWindow,
	}
	// rate limit (fail-open); per-instance httprate when redis is absent
	if redisCli != nil {
		rd.Limiter = redis.NewFixedWindowLimiter(redisCli)
	}

	// 8) router
	mux, err := deps.NewRouter(rd)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 9) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() { runCleanup(cleanupFns) })
	}

	return srv, cleanup, nil
}

// newPublisher falls back to a noop publisher when no broker is configured
// or, in dev only, when the broker is unreachable.
func newPublisher(deps Deps, cfg *config.Config) (auth.EventPublisher, error) {
	if cfg.RabbitURL == "" || deps.NewPublisher == nil {
		if cfg.IsProd() {
			return nil, errors.New("bootstrap: rabbitmq publisher required outside dev")
		}
		logger.Logger.Warn().Msg("rabbitmq not configured; using noop publisher")
		return memory.NewNoopPublisher(), nil
	}

	pub, err := deps.NewPublisher(cfg.RabbitURL)
	if err != nil {
		if cfg.IsProd() {
			return nil, err
		}
		logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
		return memory.NewNoopPublisher(), nil
	}
	return pub, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		Migrate:    postgres.Migrate,
		NewRedis:   redis.New,
		NewPublisher: func(url string) (auth.EventPublisher, error) {
			return rabbitmq_pub.NewPublisher(url)
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
