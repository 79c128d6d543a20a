// Package app assembles phivault's components from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	auditHTTP "github.com/allisson/phivault/internal/audit/http"
	auditUseCase "github.com/allisson/phivault/internal/audit/usecase"
	authService "github.com/allisson/phivault/internal/auth/service"
	cacheService "github.com/allisson/phivault/internal/cache/service"
	cacheUseCase "github.com/allisson/phivault/internal/cache/usecase"
	"github.com/allisson/phivault/internal/config"
	cryptoDomain "github.com/allisson/phivault/internal/crypto/domain"
	cryptoService "github.com/allisson/phivault/internal/crypto/service"
	cryptoUseCase "github.com/allisson/phivault/internal/crypto/usecase"
	fieldHTTP "github.com/allisson/phivault/internal/field/http"
	"github.com/allisson/phivault/internal/http"
	"github.com/allisson/phivault/internal/instrumentation"
	"github.com/allisson/phivault/internal/metrics"
)

// Container holds every component of a running phivault process.
//
// Unlike a lazily initialized container, everything is built by NewContainer so that
// configuration errors surface before any server starts.
type Container struct {
	config *config.Config
	logger *slog.Logger

	// ctx scopes background goroutines owned by components (rate limiter cleanup).
	ctx    context.Context
	cancel context.CancelFunc

	// Crypto
	workingKey  *cryptoDomain.WorkingKey
	sealer      cryptoService.Sealer
	fieldCipher cryptoUseCase.FieldCipher

	// Cache
	classifier *cacheService.Classifier
	keyBuilder *cacheService.KeyBuilder
	store      cacheUseCase.Store
	cache      cacheUseCase.DecryptionCache

	// Audit
	db                *sql.DB
	auditEventUseCase auditUseCase.AuditEventUseCase

	// Observability
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	phiMetrics      metrics.PHIMetrics
	recorder        instrumentation.Recorder

	// Field API
	tokenService authService.APITokenService

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewContainer builds every component. On error, whatever was already built is released.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrConfiguration, err)
	}
	c := newContainer(cfg, logger)

	steps := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"metrics", c.initMetrics},
		{"audit", c.initAudit},
		{"crypto", c.initCrypto},
		{"cache", c.initCache},
		{"api token", c.initTokenService},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			_ = c.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
	}

	c.fieldCipher = cryptoUseCase.NewFieldCipher(c.sealer, c.recorder)
	if cfg.MetricsEnabled {
		c.fieldCipher = cryptoUseCase.NewFieldCipherWithMetrics(c.fieldCipher, c.businessMetrics)
	}

	return c, nil
}

// NewAuditContainer builds only the audit sink. It serves maintenance commands that must
// run without key material.
func NewAuditContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := newContainer(cfg, logger)
	if err := c.initAudit(ctx); err != nil {
		_ = c.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize audit: %w", err)
	}
	return c, nil
}

func newContainer(cfg *config.Config, logger *slog.Logger) *Container {
	if logger == nil {
		logger = NewLogger(cfg.LogLevel, os.Stdout)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		config:          cfg,
		logger:          logger,
		ctx:             ctx,
		cancel:          cancel,
		businessMetrics: metrics.NewNoOpBusinessMetrics(),
		phiMetrics:      metrics.NewNoOpPHIMetrics(),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the application logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// FieldCipher returns the instrumented field cipher.
func (c *Container) FieldCipher() cryptoUseCase.FieldCipher {
	return c.fieldCipher
}

// DecryptionCache returns the instrumented decryption cache.
func (c *Container) DecryptionCache() cacheUseCase.DecryptionCache {
	return c.cache
}

// AuditEventUseCase returns the audit sink.
func (c *Container) AuditEventUseCase() auditUseCase.AuditEventUseCase {
	return c.auditEventUseCase
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() *metrics.Provider {
	return c.metricsProvider
}

// HTTPServer creates the field API server.
func (c *Container) HTTPServer() *http.Server {
	routerCfg := http.RouterConfig{
		RateLimitEnabled:        c.config.RateLimitEnabled,
		RateLimitRequestsPerSec: c.config.RateLimitRequestsPerSec,
		RateLimitBurst:          c.config.RateLimitBurst,
		CORSEnabled:             c.config.CORSEnabled,
		CORSAllowOrigins:        c.config.CORSAllowOrigins,
		MetricsNamespace:        c.config.MetricsNamespace,
	}
	if c.tokenService != nil && c.tokenService.Enabled() {
		routerCfg.TokenVerifier = c.tokenService
	}
	if c.metricsProvider != nil {
		routerCfg.MeterProvider = c.metricsProvider.MeterProvider()
	}

	server := http.NewServer(c.cache, c.config.ServerHost, c.config.ServerPort, c.logger)
	server.SetupRouter(
		c.ctx,
		routerCfg,
		fieldHTTP.NewFieldHandler(c.fieldCipher, c.cache, c.logger),
		fieldHTTP.NewCacheHandler(c.cache, c.logger),
		auditHTTP.NewAuditEventHandler(c.auditEventUseCase, c.logger),
	)
	return server
}

// MetricsServer creates the Prometheus server, or returns nil when metrics are disabled.
func (c *Container) MetricsServer() *http.MetricsServer {
	if c.metricsProvider == nil {
		return nil
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.logger, c.metricsProvider)
}

// Shutdown releases every component. It is safe to call more than once.
func (c *Container) Shutdown(ctx context.Context) error {
	c.shutdownOnce.Do(func() {
		c.cancel()

		var errs []error
		if c.store != nil {
			if err := c.store.Close(); err != nil {
				errs = append(errs, fmt.Errorf("cache store close: %w", err))
			}
		}
		if c.metricsProvider != nil {
			if err := c.metricsProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("metrics provider shutdown: %w", err))
			}
		}
		if c.db != nil {
			if err := c.db.Close(); err != nil {
				errs = append(errs, fmt.Errorf("database close: %w", err))
			}
		}
		if c.workingKey != nil {
			c.workingKey.Close()
		}

		c.shutdownErr = errors.Join(errs...)
	})
	return c.shutdownErr
}

// NewLogger creates a JSON logger writing to w at the named level. Unknown levels fall
// back to info.
func NewLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func (c *Container) initMetrics(context.Context) error {
	if !c.config.MetricsEnabled {
		return nil
	}

	provider, err := metrics.NewProvider("phivault")
	if err != nil {
		return err
	}
	c.metricsProvider = provider

	c.businessMetrics, err = metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return err
	}
	c.phiMetrics, err = metrics.NewPHIMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	return err
}

func (c *Container) initTokenService(context.Context) error {
	tokenService, err := authService.NewAPITokenService(c.config.APITokenHash)
	if err != nil {
		return err
	}
	c.tokenService = tokenService
	return nil
}
