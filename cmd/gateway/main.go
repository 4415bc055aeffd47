package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/clubhub/club-gateway/internal/api/http"
	"github.com/clubhub/club-gateway/internal/api/http/handlers"
	"github.com/clubhub/club-gateway/internal/auth"
	"github.com/clubhub/club-gateway/internal/backend"
	"github.com/clubhub/club-gateway/internal/config"
	"github.com/clubhub/club-gateway/internal/events"
	"github.com/clubhub/club-gateway/internal/observability"
	"github.com/clubhub/club-gateway/internal/persistence"
	"github.com/clubhub/club-gateway/internal/repository"
	"github.com/clubhub/club-gateway/internal/service"
	"github.com/clubhub/club-gateway/internal/store"
	"github.com/clubhub/club-gateway/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Backend.BaseURL == "" {
		log.Fatal("BACKEND_BASE_URL is required")
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	sealer := store.NewSealer(cfg.Store.EncryptionKey)
	credentialRepo := store.NewRedisCredentialRepository(redis.Client, sealer)
	tokenStore := store.New(credentialRepo, cfg.Cookies, cfg.Store.SessionScopedTTL())

	exchanger := backend.NewClient(cfg.Backend, logger)
	relay := backend.NewRelay(cfg.Backend, logger)
	codec := auth.NewSessionCodec(cfg.Session.JWTSecret, cfg.Session.TTL())

	var google service.ProfileVerifier
	if cfg.OAuth.GoogleClientID != "" {
		verifier, err := auth.NewGoogleVerifier(ctx, cfg.OAuth.GoogleIssuer, cfg.OAuth.GoogleClientID)
		if err != nil {
			logger.Warn("google verifier unavailable, bridging unverified profiles", zap.Error(err))
		} else {
			google = verifier
		}
	}

	sessionService := service.NewSessionService(*cfg, service.SessionDependencies{
		Exchanger:  exchanger,
		Store:      tokenStore,
		Codec:      codec,
		Google:     google,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	proxyService := service.NewProxyService(*cfg, service.ProxyDependencies{
		Store:     tokenStore,
		Relay:     relay,
		Exchanger: exchanger,
		Sessions:  sessionService,
		Metrics:   metrics,
		Logger:    logger,
	})

	var auditRepo repository.AuditRepository
	if pool := pg.PoolHandle(); pool != nil {
		auditRepo = repository.NewAuditRepository(pool)
	}
	auditService := service.NewAuditService(dispatcher, auditRepo, logger)
	worker.StartAuditWorker(auditService)

	sessionMiddleware := auth.NewSessionMiddleware(codec, cfg.Session.CookieName)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	authHandler := handlers.NewAuthHandler(sessionService, proxyService, auditService, cfg.Cookies)
	proxyHandler := handlers.NewProxyHandler(proxyService, cfg.Cookies)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            healthHandler,
		Auth:              authHandler,
		Proxy:             proxyHandler,
		SessionMiddleware: sessionMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
