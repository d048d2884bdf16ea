package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/medichain-agent-server/internal/agents"
	"github.com/medichain-agent-server/internal/api"
	"github.com/medichain-agent-server/internal/config"
	"github.com/medichain-agent-server/internal/database"
	"github.com/medichain-agent-server/internal/domain"
	"github.com/medichain-agent-server/internal/graph"
	"github.com/medichain-agent-server/internal/llm"
	"github.com/medichain-agent-server/internal/orchestrator"
	"github.com/medichain-agent-server/internal/repository"
	"github.com/medichain-agent-server/internal/review"
	"github.com/medichain-agent-server/pkg/external"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := buildLogger(&cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting MediChain agent server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Run database migrations
	runner, err := database.NewMigrationRunner(configManager.GetDatabaseURL(), cfg.Database.MigrationsPath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create migration runner")
	}
	if err := runner.Up(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}
	runner.Close()

	// Relational store
	db, err := database.NewConnection(ctx, &cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	patients := repository.NewPatientRepository(db.Pool, logger)
	cases := repository.NewCaseRepository(db.Pool, logger)

	// Graph store with read caching
	neo4jStore, err := graph.NewNeo4jStore(ctx, &cfg.Graph, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to graph store")
	}
	defer neo4jStore.Close(ctx)
	graphStore := graph.NewCachedStore(neo4jStore, cfg.Graph.HistoryCache, cfg.Graph.HistoryCacheTTL, logger)

	// Model client
	model, err := llm.NewClient(&cfg.Model, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create model client")
	}

	// Literature search with redis caching and a circuit breaker. A missing
	// redis is degraded, not fatal.
	pubmed := external.NewPubMedClient(external.PubMedConfig{
		BaseURL:   cfg.Literature.BaseURL,
		APIKey:    cfg.Literature.APIKey,
		Email:     cfg.Literature.Email,
		Timeout:   cfg.Literature.Timeout,
		RateLimit: cfg.Literature.RateLimit,
	})
	var literatureCache *external.CacheClient
	if cache, err := external.NewCacheClient(cfg.Cache.RedisURL, cfg.Cache.DefaultTTL); err != nil {
		logger.WithError(err).Warn("Redis unavailable, literature caching disabled")
	} else {
		literatureCache = cache
		defer cache.Close()
	}
	literature := external.NewResilientLiteratureClient(pubmed, literatureCache, logger)

	// Agents
	analyzer := agents.NewSymptomAnalyzer(model, logger)
	validator, err := agents.NewKnowledgeValidator(model, literature, cfg.Literature.CacheSize, cfg.Literature.MaxResults, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create knowledge validator")
	}
	planner := agents.NewTreatmentPlanner(model, logger)
	reviewer := agents.NewSafetyReviewer(model, logger)
	monitor := agents.NewPatientMonitor(model, logger)

	// Workflows
	workflow := orchestrator.NewDiagnosticWorkflow(analyzer, validator, planner, reviewer, cases, graphStore, logger)
	monitoring := orchestrator.NewMonitoringWorkflow(monitor, patients, logger)

	// Clinician review store
	reviews, err := buildReviewStore(configManager)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create review store")
	}
	defer reviews.Close()

	// HTTP server
	deps := api.Deps{
		Patients:   patients,
		Cases:      cases,
		Graph:      graphStore,
		Workflow:   workflow,
		Monitoring: monitoring,
		Reviews:    reviews,
		Usage:      model,
		Database:   db,
		GraphPing:  neo4jStore,
		Logger:     logger,
	}
	if literatureCache != nil {
		deps.Cache = literatureCache
	}
	server := api.NewServer(configManager, deps)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// buildReviewStore selects the review backend from configuration
func buildReviewStore(configManager *config.Manager) (review.Store, error) {
	cfg := configManager.GetConfig()
	switch strings.ToLower(cfg.Review.Backend) {
	case "sqlite":
		return review.NewSQLiteStore(cfg.Review.SQLitePath)
	default:
		return review.NewPostgresStoreFromURL(configManager.GetDatabaseURL())
	}
}

// buildLogger configures logrus from the logging section
func buildLogger(cfg *domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	switch cfg.Output {
	case "stderr":
		logger.SetOutput(os.Stderr)
	default:
		logger.SetOutput(os.Stdout)
	}

	return logger
}
