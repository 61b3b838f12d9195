package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/contribstats/internal/cache"
	"github.com/alimgiray/contribstats/internal/handlers"
	"github.com/alimgiray/contribstats/internal/middleware"
	"github.com/alimgiray/contribstats/internal/repositories"
	"github.com/alimgiray/contribstats/internal/services"
	"github.com/alimgiray/contribstats/internal/workers"
	"github.com/alimgiray/contribstats/pkg/config"
	"github.com/alimgiray/contribstats/pkg/database"
	"github.com/alimgiray/contribstats/pkg/logger"
	"github.com/alimgiray/contribstats/pkg/metrics"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	logger.Init(cfg.Log.Level)
	gin.SetMode(cfg.Server.Mode)

	mergePolicy, err := services.ParseMergePolicy(cfg.Contributions.MergePolicy)
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize cache backend
	contributionCache, purger := initCache(cfg.Cache)
	defer database.Close()

	// Initialize contribution sources
	githubService, err := services.NewGitHubContributionService(cfg.GitHub.Token, cfg.GitHub.APIURL, cfg.Contributions.FetchTimeout)
	if err != nil {
		logger.Fatalf("Failed to initialize GitHub client: %v", err)
	}
	if !githubService.Enabled() {
		logger.Warnf("GITHUB_TOKEN is not set, GitHub contributions are disabled")
	}
	giteeService := services.NewGiteeContributionService(cfg.Gitee.BaseURL, cfg.Contributions.FetchTimeout)

	metricsManager := metrics.NewManager()
	contributionService := services.NewContributionService(
		githubService, giteeService, contributionCache, metricsManager, mergePolicy, cfg.Cache.TTL,
	)
	exportService := services.NewExportService()

	// Initialize worker manager
	workerManager := workers.NewWorkerManager(
		workers.NewCacheCleanupWorker("cache-cleanup-1", purger, cfg.Cache.CleanupInterval),
	)

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	setupRoutes(router, contributionService, exportService, metricsManager)

	// Start workers
	if err := workerManager.StartAll(); err != nil {
		logger.Fatalf("Failed to start workers: %v", err)
	}
	defer workerManager.StopAll()

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Infof("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Infof("Server stopped")
}

// initCache opens the configured cache backend. A SQL backend that cannot be
// reached falls back to the in-process store so lookups keep working.
func initCache(cfg config.CacheConfig) (services.ContributionCache, workers.ExpiredEntryPurger) {
	dsn := cfg.Path
	if cfg.Driver == database.DriverPostgres {
		dsn = cfg.DatabaseURL
	}

	switch cfg.Driver {
	case database.DriverSQLite, database.DriverPostgres:
		if err := database.Init(cfg.Driver, dsn); err != nil {
			logger.WithError(err).WithField("driver", cfg.Driver).Warn("Cache database unavailable, using in-memory cache")
			break
		}
		repo := repositories.NewContributionCacheRepository(database.DB)
		return repo, repo
	case "memory":
	default:
		logger.WithField("driver", cfg.Driver).Warn("Unknown CACHE_DRIVER, using in-memory cache")
	}

	store := cache.NewMemoryStore()
	return store, store
}

func setupRoutes(router *gin.Engine, contributionService *services.ContributionService, exportService *services.ExportService, metricsManager *metrics.Manager) {
	// Initialize handlers
	contributionHandler := handlers.NewContributionHandler(contributionService, exportService)
	healthHandler := handlers.NewHealthHandler()
	notFoundHandler := handlers.NewNotFoundHandler()

	api := router.Group("/api")
	{
		api.GET("/contributions", contributionHandler.GetContributions)
		api.GET("/contributions/export", contributionHandler.ExportContributions)
	}

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/metrics", gin.WrapH(metricsManager.Handler()))

	router.NoRoute(notFoundHandler.NotFound)
}
