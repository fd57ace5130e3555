package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"schoolgle/internal/auth"
	"schoolgle/internal/config"
	"schoolgle/internal/handler"
	"schoolgle/internal/metrics"
	"schoolgle/internal/middleware"
	"schoolgle/internal/repository/postgres"
	pgGov "schoolgle/internal/repository/postgres/governance"
	"schoolgle/internal/service/audit"
	serviceAuth "schoolgle/internal/service/auth"
	"schoolgle/internal/service/events"
	"schoolgle/internal/service/governance"
	"schoolgle/internal/templates"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"schema", cfg.DBSchema,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// JWT verifier for Supabase authentication. Local development may run without one.
	var jwtVerifier auth.JWTVerifier
	if cfg.SupabaseURL != "" || os.Getenv("SUPABASE_JWKS_URL") != "" {
		jwtVerifier, err = auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
	} else if cfg.Environment == "prod" {
		log.Fatalf("SUPABASE_URL is required in production")
	} else {
		logger.Warn("AUTH DISABLED: no SUPABASE_URL set, request bodies identify the user")
	}

	pool, err := postgres.ConnectWithRetry(ctx, cfg.SupabaseDBURL, 30*time.Second, logger)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(ctx, cfg.SupabaseDBURL, cfg.DBSchema, logger); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.DBSchema),
		Logger: logger,
	}
	packRepo := pgGov.NewPackRepository(repoConfig)
	versionRepo := pgGov.NewVersionRepository(repoConfig)
	approvalRepo := pgGov.NewApprovalRepository(repoConfig)
	exportRepo := pgGov.NewExportRepository(repoConfig)
	timelineRepo := pgGov.NewTimelineRepository(repoConfig)
	membershipRepo := pgGov.NewMembershipRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	templateRegistry, err := templates.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load pack templates: %v", err)
	}
	logger.Info("template registry initialized", "templates", len(templateRegistry.List()))

	m := metrics.NewMetrics()

	// Timeline writes join the transition's transaction; observers run after commit.
	bus := events.NewBus(logger)
	bus.Subscribe("timeline", audit.NewTimelineWriter(timelineRepo, logger).HandleEvent)
	bus.Observe("notifier", audit.NewNotifier(logger).HandleEvent)
	bus.Observe("metrics", m.HandleEvent)

	deps := governance.Dependencies{
		Packs:      packRepo,
		Versions:   versionRepo,
		Approvals:  approvalRepo,
		Exports:    exportRepo,
		Timeline:   timelineRepo,
		TxManager:  txManager,
		Publisher:  bus,
		Authorizer: serviceAuth.NewMembershipAuthorizer(membershipRepo),
		Templates:  templateRegistry,
		Conflicts:  m,
		Logger:     logger,
	}
	packService := governance.NewPackService(deps)
	lifecycleService := governance.NewLifecycleService(deps, governance.LifecycleOptions{
		AllowReapproval: cfg.AllowReapproval,
	})
	exportService := governance.NewExportService(deps)
	timelineService := governance.NewTimelineService(deps)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.Routes{
		Packs:     handler.NewPackHandler(packService, logger, cfg.Debug),
		Lifecycle: handler.NewLifecycleHandler(lifecycleService, logger, cfg.Debug),
		Exports:   handler.NewExportHandler(exportService, logger, cfg.Debug),
		Timeline:  handler.NewTimelineHandler(timelineService, templateRegistry, logger, cfg.Debug),
		Health:    handler.NewHealthHandler(pool),
		Metrics:   m.Handler(),
	}.Register(mux)

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Logging → Routes
	// Logging sits directly on the mux so it sees the matched route pattern.
	var h http.Handler = mux
	h = middleware.RequestLogging(logger, m)(h)
	h = middleware.AuthMiddleware(jwtVerifier, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
