// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carterperez-dev/leadcap/internal/admin"
	"github.com/carterperez-dev/leadcap/internal/auth"
	"github.com/carterperez-dev/leadcap/internal/config"
	"github.com/carterperez-dev/leadcap/internal/core"
	"github.com/carterperez-dev/leadcap/internal/enrichment"
	"github.com/carterperez-dev/leadcap/internal/entry"
	"github.com/carterperez-dev/leadcap/internal/health"
	"github.com/carterperez-dev/leadcap/internal/middleware"
	"github.com/carterperez-dev/leadcap/internal/notify"
	"github.com/carterperez-dev/leadcap/internal/server"
	"github.com/carterperez-dev/leadcap/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, logCloser, err := core.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close() //nolint:errcheck // best effort on exit
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"driver", cfg.Database.Driver,
		"max_open_conns", cfg.Database.MaxOpenConns,
	)

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("database schema applied")
	}

	rdb, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)
	} else {
		logger.Info("redis not configured, session revocation disabled")
	}

	ids, err := core.NewIDGenerator(cfg.App.NodeID)
	if err != nil {
		return err
	}

	sessions, err := auth.NewSessionManager(cfg.Session)
	if err != nil {
		return err
	}
	logger.Info("session manager initialized",
		"algorithm", "ES256",
		"key_id", sessions.GetKeyID(),
	)

	relay := enrichment.NewClient(cfg.Enrichment, logger)
	if cfg.Enrichment.WebhookURL == "" {
		logger.Warn("enrichment webhook not configured, contacts will not be relayed")
	}

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, ids)
	userHandler := user.NewHandler(userSvc)

	var revoker auth.Revoker = auth.NoopRevoker{}
	if rdb != nil {
		revoker = auth.NewRedisRevoker(rdb.Client)
	}

	authSvc := auth.NewService(auth.ServiceConfig{
		Repo:         auth.NewRepository(db.DB),
		Sessions:     sessions,
		Revoker:      revoker,
		UserProvider: userSvc,
		Notifier:     notify.New(cfg.SMTP, logger),
		Relay:        relay,
		IDs:          ids,
		OTPTTL:       cfg.OTP.TTL,
		Logger:       logger,
	})
	authHandler := auth.NewHandler(authSvc, cfg.Session.CookieName, cfg.IsProduction())

	entrySvc := entry.NewService(entry.NewRepository(db.DB), relay, ids, logger)
	entryHandler := entry.NewHandler(entrySvc)

	callbackHandler := enrichment.NewCallbackHandler(
		entrySvc,
		userSvc,
		cfg.Enrichment.CallbackSecret,
		logger,
	)

	deps := []health.Dependency{{Name: "database", Checker: db}}
	adminCfg := admin.HandlerConfig{
		Users:   userSvc,
		Entries: entrySvc,
		DBStats: db.DB.Stats,
		DBPing:  db.Ping,
	}
	if rdb != nil {
		deps = append(deps, health.Dependency{Name: "redis", Checker: rdb})
		adminCfg.RedisStats = rdb.Client.PoolStats
		adminCfg.RedisPing = rdb.Ping
	}

	healthHandler := health.NewHandler(deps...)
	adminHandler := admin.NewHandler(adminCfg)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", sessions.GetJWKSHandler())

	authenticator := middleware.Authenticator(authSvc, cfg.Session.CookieName)

	authHandler.RegisterRoutes(router)
	entryHandler.RegisterRoutes(router, authenticator, middleware.RequireAuth)
	userHandler.RegisterAdminRoutes(router, authenticator, middleware.RequireAdmin)
	adminHandler.RegisterRoutes(router, authenticator, middleware.RequireAdmin)
	callbackHandler.RegisterRoutes(router)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	authSvc.Wait()

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := rdb.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}
