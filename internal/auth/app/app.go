package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oakmarket/storefront/internal/auth/domain"
	httpapi "github.com/oakmarket/storefront/internal/auth/http"
	"github.com/oakmarket/storefront/internal/auth/service"
	"github.com/oakmarket/storefront/internal/auth/store"
	redisdriver "github.com/oakmarket/storefront/internal/auth/store/drivers/redis"
	"github.com/oakmarket/storefront/internal/auth/store/drivers/sqlite"
	"github.com/oakmarket/storefront/pkg/cryptox"
	"github.com/oakmarket/storefront/pkg/idx"
	"github.com/oakmarket/storefront/pkg/jwtx"
	"github.com/oakmarket/storefront/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db    store.Store
	redis *goredis.Client

	// Services
	tokenService *service.TokenService
	authService  *service.AuthService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.seedUser(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initRedis(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.redis.Close(); err != nil {
		app.logger.Error("error closing redis client", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the user database and applies migrations.
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// seedUser creates the configured seed user when it does not exist yet.
func (app *Application) seedUser() error {
	if app.cfg.SeedUsername == "" || app.cfg.SeedPassword == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := app.db.Users().GetUserByUsername(ctx, app.cfg.SeedUsername); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("look up seed user: %w", err)
	}

	hash, err := cryptox.HashPassword(app.cfg.SeedPassword)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		ID:           idx.New(),
		Username:     app.cfg.SeedUsername,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := app.db.Users().CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create seed user: %w", err)
	}

	if app.cfg.SeedWorkspace != "" && len(app.cfg.SeedPermissions) > 0 {
		if err := app.db.Workspaces().GrantPermissions(ctx, user.ID, app.cfg.SeedWorkspace, app.cfg.SeedPermissions); err != nil {
			return fmt.Errorf("grant seed permissions: %w", err)
		}
	}

	app.logger.Info("seed user created", "username", app.cfg.SeedUsername, "user_id", user.ID)
	return nil
}

// initRedis connects the refresh/revocation store and verifies it is up.
func (app *Application) initRedis() error {
	app.redis = goredis.NewClient(&goredis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", app.cfg.RedisAddr, err)
	}

	app.logger.Info("connected to redis", "addr", app.cfg.RedisAddr)
	return nil
}

func (app *Application) initServices() {
	kv := redisdriver.NewKV(app.redis, app.cfg.KeyPrefix)
	codec := jwtx.NewCodec([]byte(app.cfg.Secret), 0)

	refresh := store.NewRefreshTokens(kv, app.cfg.RefreshTTL)
	blocklist := store.NewBlocklist(kv, app.cfg.BlocklistRetention, app.cfg.AccessTTL)
	verifier := service.NewVerifier(codec, blocklist, refresh)

	app.tokenService = service.NewTokenService(codec, refresh, blocklist, app.cfg.AccessTTL, app.cfg.RefreshTTL)
	app.authService = service.NewAuthService(
		app.db.Users(),
		service.NewAuthzService(app.db.Workspaces()),
		app.tokenService,
		verifier,
	)
}

// redisPinger adapts the Redis client to the router's health check.
type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, redisPinger{client: app.redis}, app.logger)
	router.AuthService = app.authService
	router.TokenService = app.tokenService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
