package main

import (
	"time"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/digest"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/handlers"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/metrics"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/relevance"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/scheduler"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/store"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/internal/streams"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/auth"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/cache"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/clients"
	relevanceclient "github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/clients/relevance"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/config"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/database"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/logging"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/monitoring"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/server"
	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("spyglass")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Spyglass (Daily Intelligence Snapshot API)")

	dbURL := config.RequireEnv("DATABASE_URL")
	jwtSecret := config.RequireEnv("JWT_SECRET")
	serviceToken := config.RequireEnv("SERVICE_TOKEN")

	// Connect to PostgreSQL
	dbConfig := database.DefaultConfig()
	dbConfig.URL = dbURL
	db := database.MustConnect(dbConfig, logger)
	defer func() { _ = db.Close() }()

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("spyglass", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("spyglass", version.Version, version.GitCommit)

	// Add health checks
	healthChecker.AddCheck("postgres", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL":  dbURL,
		"JWT_SECRET":    jwtSecret,
		"SERVICE_TOKEN": serviceToken,
	}))

	// Create custom snapshot metrics (used by the digest builder and handlers)
	serviceMetrics := &metrics.Metrics{
		SnapshotBuilds:   metricsCollector.NewCounter("digest_snapshot_builds_total", "Daily snapshot builds", []string{"status"}),
		SnapshotDuration: metricsCollector.NewHistogram("digest_snapshot_duration_seconds", "Daily snapshot build duration", []string{"status"}, nil),
		FetchFailures:    metricsCollector.NewCounter("digest_fetch_failures_total", "Workspace signal fetch failures", []string{"source"}),
		CacheEvents:      metricsCollector.NewCounter("digest_cache_events_total", "Snapshot cache events", []string{"event"}),
	}

	st := store.NewStore(db)

	// Relevance scoring: prefer the remote service when configured,
	// degrade to the local heuristic otherwise.
	var scorer streams.Scorer = relevance.HeuristicScorer{}
	if relevanceURL := config.GetEnv("RELEVANCE_URL", ""); relevanceURL != "" {
		cbConfig := clients.DefaultCircuitBreakerConfig()
		remote := relevanceclient.NewClient(relevanceclient.Config{
			BaseURL:              relevanceURL,
			ServiceToken:         serviceToken,
			Timeout:              config.GetEnvDuration("RELEVANCE_TIMEOUT", 10*time.Second),
			Logger:               logger,
			CircuitBreakerConfig: &cbConfig,
		})
		scorer = &relevance.FallbackScorer{Remote: remote, Logger: logger}
		logger.WithField("url", relevanceURL).Info("Remote relevance scoring enabled")
	}

	// In-process snapshot cache with stale-while-revalidate
	cacheEvent := func(event string) func(map[string]string) {
		return func(map[string]string) {
			serviceMetrics.CacheEvents.WithLabelValues(event).Inc()
		}
	}
	snapshotCache := cache.New(cache.Options{
		TTL:                  config.GetEnvDuration("SNAPSHOT_CACHE_TTL", time.Minute),
		StaleWhileRevalidate: config.GetEnvDuration("SNAPSHOT_CACHE_SWR", 5*time.Minute),
		NegativeTTL:          config.GetEnvDuration("SNAPSHOT_CACHE_NEGATIVE_TTL", 10*time.Second),
		MaxEntries:           config.GetEnvInt("SNAPSHOT_CACHE_MAX_ENTRIES", 1024),
	}, cache.MetricsHooks{
		OnHit:   cacheEvent("hit"),
		OnMiss:  cacheEvent("miss"),
		OnStale: cacheEvent("stale"),
		OnStore: cacheEvent("store"),
		OnError: cacheEvent("error"),
	})

	builder := digest.NewBuilder(st, scorer, logger, serviceMetrics)

	// Initialize handlers with dependencies
	handlers.Init(builder, snapshotCache, logger, serviceMetrics)

	// Warm the snapshot cache for the configured workspace owner
	warmScheduler := scheduler.NewScheduler(
		handlers.WarmSnapshot,
		config.GetEnv("WARM_USER_ID", ""),
		config.GetEnvDuration("WARM_INTERVAL", scheduler.DefaultInterval),
		logger,
	)
	warmScheduler.Start()
	defer warmScheduler.Stop()

	// Setup router with unified monitoring
	router := server.SetupServiceRouter(logger, "spyglass", healthChecker, metricsCollector)

	// Digest API (JWT for users, service token for internal callers)
	api := router.Group("/api/v1")
	api.Use(auth.JWTAuthMiddleware([]byte(jwtSecret), serviceToken))
	{
		api.GET("/digest/daily", handlers.GetDailyDigest)
		api.POST("/digest/refresh", handlers.RefreshDailyDigest)
	}

	// Start HTTP server with graceful shutdown
	serverConfig := server.DefaultConfig("spyglass", "18010")
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}
