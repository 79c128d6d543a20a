// Package http provides the sidecar API server and the metrics server.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	auditHTTP "github.com/allisson/phivault/internal/audit/http"
	authHTTP "github.com/allisson/phivault/internal/auth/http"
	fieldHTTP "github.com/allisson/phivault/internal/field/http"
	"github.com/allisson/phivault/internal/metrics"
)

// HealthChecker reports whether a dependency can serve requests.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// RouterConfig carries the optional parts of the router.
type RouterConfig struct {
	// TokenVerifier guards /v1. A nil verifier leaves the field API unregistered.
	TokenVerifier authHTTP.TokenVerifier

	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int

	CORSEnabled      bool
	CORSAllowOrigins string

	// MeterProvider enables request metrics when non-nil.
	MeterProvider    metric.MeterProvider
	MetricsNamespace string
}

// Server is the sidecar API server.
type Server struct {
	server *http.Server
	router *gin.Engine
	cache  HealthChecker
	logger *slog.Logger
}

// NewServer creates a Server. cache backs the readiness check.
func NewServer(cache HealthChecker, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		cache:  cache,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine. ctx bounds the rate limiter's cleanup goroutine.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg RouterConfig,
	fieldHandler *fieldHTTP.FieldHandler,
	cacheHandler *fieldHTTP.CacheHandler,
	auditEventHandler *auditHTTP.AuditEventHandler,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}
	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	if cfg.TokenVerifier == nil {
		s.logger.Warn("no API token configured, field API disabled")
		s.router = router
		return
	}

	v1 := router.Group("/v1")
	v1.Use(authHTTP.AuthenticationMiddleware(cfg.TokenVerifier, s.logger))
	if cfg.RateLimitEnabled {
		v1.Use(authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	fields := v1.Group("/fields")
	{
		fields.POST("/encrypt", fieldHandler.EncryptHandler)
		fields.POST("/decrypt", fieldHandler.DecryptHandler)
	}

	cache := v1.Group("/cache")
	{
		cache.POST("/invalidate", cacheHandler.InvalidateHandler)
		cache.POST("/invalidate-user", cacheHandler.InvalidateUserHandler)
		cache.GET("/stats", cacheHandler.StatsHandler)
	}

	if auditEventHandler != nil {
		v1.GET("/audit-events", auditEventHandler.ListHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start serves until Shutdown. SetupRouter must have been called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return errors.New("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"cache": "error"},
		})
		return
	}

	if err := s.cache.Healthy(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"cache": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"cache": "ok"},
	})
}
