package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/phivault/internal/app"
	"github.com/allisson/phivault/internal/config"
)

const shutdownTimeout = 30 * time.Second

// lifecycle is a server that can be started and gracefully stopped.
type lifecycle interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// RunServer builds the container, then serves the field API and the metrics endpoint
// until SIGINT/SIGTERM or until either server fails.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	gin.SetMode(cfg.GetGinMode())

	logger := app.NewLogger(cfg.LogLevel, os.Stdout)
	logger.Info("starting phivault", slog.String("version", version))

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeContainer(container, logger)

	servers := map[string]lifecycle{"api server": container.HTTPServer()}
	if metricsServer := container.MetricsServer(); metricsServer != nil {
		servers["metrics server"] = metricsServer
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return serve(ctx, logger, servers)
}

// serve runs every server until ctx is done or one of them fails, then shuts them all down.
func serve(ctx context.Context, logger *slog.Logger, servers map[string]lifecycle) error {
	g, gctx := errgroup.WithContext(ctx)

	for name, server := range servers {
		g.Go(func() error {
			if err := server.Start(gctx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for name, server := range servers {
			if err := server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("%s shutdown: %w", name, err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
