package app

import (
	"context"
	"log/slog"

	"github.com/allisson/phivault/internal/cache/repository"
	cacheService "github.com/allisson/phivault/internal/cache/service"
	cacheUseCase "github.com/allisson/phivault/internal/cache/usecase"
	"github.com/allisson/phivault/internal/config"
	"github.com/allisson/phivault/internal/instrumentation"
)

// initCache builds the classifier, the instrumentation recorder and the decryption cache
// over the configured store. An unreachable redis only logs: the cache fails open.
func (c *Container) initCache(ctx context.Context) error {
	c.classifier = cacheService.NewClassifier()
	c.keyBuilder = cacheService.NewKeyBuilder(c.config.CacheNamespace)
	c.recorder = instrumentation.NewRecorder(
		c.phiMetrics,
		c.auditEventUseCase,
		c.classifier,
		c.logger,
		c.config.AuditTimeout,
	)

	switch c.config.CacheDriver {
	case config.CacheDriverMemory:
		store := repository.NewMemoryStore()
		store.StartSweeper(c.config.CacheSweepInterval)
		c.store = store
	case config.CacheDriverRedis:
		store, err := repository.NewRedisStoreFromURL(c.config.RedisURL)
		if err != nil {
			return err
		}
		c.store = store
		pingCtx, cancel := context.WithTimeout(ctx, c.config.CacheOperationTimeout*10)
		if err := store.Ping(pingCtx); err != nil {
			c.logger.Warn("redis unreachable at startup, decrypting without cache until it recovers",
				slog.Any("error", err))
		}
		cancel()
	case config.CacheDriverNone:
		c.logger.Info("decryption cache disabled")
	}

	cache := cacheUseCase.NewDecryptionCache(
		c.store,
		c.keyBuilder,
		c.classifier,
		c.recorder,
		c.logger,
		cacheUseCase.WithOperationTimeout(c.config.CacheOperationTimeout),
	)
	if c.config.MetricsEnabled {
		cache = cacheUseCase.NewDecryptionCacheWithMetrics(cache, c.businessMetrics)
	}
	c.cache = cache
	return nil
}
