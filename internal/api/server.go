package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/medichain-agent-server/internal/domain"
	"github.com/medichain-agent-server/internal/llm"
	"github.com/medichain-agent-server/internal/middleware"
	"github.com/medichain-agent-server/internal/review"
)

// DiagnosticRunner runs the full diagnostic workflow for a case
type DiagnosticRunner interface {
	Run(ctx context.Context, c *domain.Case, patient domain.PatientProfile) *domain.WorkflowResult
}

// VitalsService analyzes vitals readings and trends
type VitalsService interface {
	AnalyzeVitals(ctx context.Context, reading domain.VitalsReading) (*domain.MonitoringResult, error)
	AnalyzeTrends(patientID string, readings []domain.VitalsReading) *domain.TrendReport
}

// UsageReporter exposes model usage accounting
type UsageReporter interface {
	UsageStats() llm.UsageStats
	ResetUsageStats()
}

// Pinger reports the health of a backing component
type Pinger interface {
	Health(ctx context.Context) error
}

// Deps holds the services the HTTP layer routes requests to. Reviews,
// usage, and health checkers are optional; their endpoints degrade when
// absent.
type Deps struct {
	Patients   domain.PatientRepository
	Cases      domain.CaseRepository
	Graph      domain.GraphStore
	Workflow   DiagnosticRunner
	Monitoring VitalsService
	Reviews    review.Store
	Usage      UsageReporter
	Database   Pinger
	Cache      Pinger
	GraphPing  Pinger
	Logger     *logrus.Logger
}

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	deps          Deps
	router        *gin.Engine
	server        *http.Server
	log           *logrus.Logger
}

// NewServer creates a new HTTP server instance
func NewServer(configManager domain.ConfigManager, deps Deps) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := deps.Logger
	if logger == nil {
		logger = logrus.New()
	}

	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.AuditLogger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.SecurityHeaders())

	server := &Server{
		configManager: configManager,
		deps:          deps,
		router:        router,
		log:           logger,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/patients", s.handleCreatePatient)
		v1.GET("/patients/:id", s.handleGetPatient)
		v1.GET("/patients/:id/history", s.handleGetPatientHistory)

		v1.POST("/cases", s.handleCreateCase)
		v1.POST("/cases/:id/analyze", s.handleAnalyzeCase)
		v1.GET("/cases/:id", s.handleGetCase)
		v1.GET("/cases/:id/status", s.handleGetCaseStatus)
		v1.POST("/cases/:id/review", s.handleSubmitReview)
		v1.GET("/cases/:id/reviews", s.handleListReviews)

		v1.POST("/monitor/vitals", s.handleMonitorVitals)
		v1.POST("/monitor/trends", s.handleMonitorTrends)
		v1.GET("/monitor/stream", s.handleMonitorStream)

		v1.GET("/stats/usage", s.handleUsageStats)
		v1.POST("/stats/usage/reset", s.handleResetUsageStats)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	components := gin.H{}
	status := "healthy"
	code := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.deps.Database != nil {
		if err := s.deps.Database.Health(ctx); err != nil {
			components["database"] = "unhealthy"
			status = "degraded"
			code = http.StatusServiceUnavailable
		} else {
			components["database"] = "healthy"
		}
	}

	if s.deps.GraphPing != nil {
		if err := s.deps.GraphPing.Health(ctx); err != nil {
			components["graph"] = "unhealthy"
			status = "degraded"
			code = http.StatusServiceUnavailable
		} else {
			components["graph"] = "healthy"
		}
	}

	// Redis only backs the literature cache; its outage never returns 503.
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Health(ctx); err != nil {
			components["cache"] = "unhealthy"
			status = "degraded"
		} else {
			components["cache"] = "healthy"
		}
	}

	c.JSON(code, gin.H{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC(),
		"version":    "1.0.0",
	})
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

