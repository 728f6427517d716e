package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/turningpoint/server/internal/auth"
	"codeberg.org/turningpoint/server/internal/config"
	"codeberg.org/turningpoint/server/internal/logger"
	"codeberg.org/turningpoint/server/internal/ratelimit"
	"codeberg.org/turningpoint/server/turningpoint/accounts"
	"codeberg.org/turningpoint/server/turningpoint/users"
)

const (
	msgTooManyRequests     = "Too many requests, please try again later"
	msgTooManyAuthAttempts = "Too many authentication attempts, please try again later"
)

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	server := &Server{config: cfg}

	store, err := server.openStore(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.RedisURL != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			server.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		server.redis = client
	} else {
		logger.Warn("REDIS_URL not set, rate limit counters are per-process")
	}

	server.codec = auth.NewCodec(cfg.Token)

	// left as a nil interface when Google sign-in is disabled
	var google accounts.IdentityVerifier
	if cfg.Google.ClientID != "" {
		verifier, err := auth.NewGoogleVerifier(ctx, cfg.Google.ClientID)
		if err != nil {
			server.Close()
			return nil, fmt.Errorf("failed to initialize google verifier: %w", err)
		}
		google = verifier
		server.googleEnabled = true
	}

	if cfg.Google.RedirectFlowEnabled() {
		auth.InitializeProviders(cfg)
	}

	server.accounts = accounts.NewService(store, auth.NewHasher(cfg.Password.BcryptCost), server.codec, google)

	if err := server.initLimiters(); err != nil {
		server.Close()
		return nil, err
	}

	router := gin.New()

	// ClientIP keys the rate limiters, so forwarded headers only count from known proxies
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		server.Close()
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	router.Use(gin.Recovery(), RequestLogger(), CORSMiddleware(cfg.CORS))
	server.router = router

	RegisterRoutes(router, server)

	logger.Info("server initialized",
		"environment", cfg.Environment,
		"postgres", server.db != nil,
		"redis", server.redis != nil,
		"google", server.googleEnabled,
		"google_redirect_flow", cfg.Google.RedirectFlowEnabled(),
	)

	return server, nil
}

// postgres when DATABASE_URL is set, otherwise the in-memory store
func (s *Server) openStore(ctx context.Context) (accounts.Store, error) {
	if s.config.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, users are kept in memory and lost on restart")
		return users.NewMemoryStore(), nil
	}

	db, err := openPool(ctx, s.config.DatabaseURL)
	if err != nil {
		return nil, err
	}

	logger.Debug("connected to postgres", "max_conns", db.Config().MaxConns)

	s.db = db
	return users.NewRepository(db), nil
}

func openPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// small pool, the service is mostly idle between logins
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// transaction-mode poolers don't support prepared statements
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func (s *Server) initLimiters() error {
	rl := s.config.RateLimit

	general, err := ratelimit.New(s.redis, ratelimit.Rule{
		Name:    "general",
		Window:  rl.GeneralWindow,
		Max:     rl.GeneralMax,
		Message: msgTooManyRequests,
	})
	if err != nil {
		return fmt.Errorf("failed to create general rate limiter: %w", err)
	}

	authLimiter, err := ratelimit.New(s.redis, ratelimit.Rule{
		Name:    "auth",
		Window:  rl.AuthWindow,
		Max:     rl.AuthMax,
		Message: msgTooManyAuthAttempts,
	})
	if err != nil {
		return fmt.Errorf("failed to create auth rate limiter: %w", err)
	}

	s.limiters = Limiters{General: general, Auth: authLimiter}
	return nil
}

// releases the database pool and redis client
func (s *Server) Close() {
	if s.redis != nil {
		s.redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
		s.redis = nil
	}

	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
}

