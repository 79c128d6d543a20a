package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	auditDomain "github.com/allisson/phivault/internal/audit/domain"
	cacheDomain "github.com/allisson/phivault/internal/cache/domain"
	cacheService "github.com/allisson/phivault/internal/cache/service"
	apperrors "github.com/allisson/phivault/internal/errors"
	"github.com/allisson/phivault/internal/instrumentation"
	phiDomain "github.com/allisson/phivault/internal/phi/domain"
)

// DefaultOperationTimeout bounds each store call.
const DefaultOperationTimeout = 50 * time.Millisecond

// Option configures a decryption cache.
type Option func(*decryptionCache)

// WithClock overrides the clock used to stamp and expire entries.
func WithClock(now func() time.Time) Option {
	return func(c *decryptionCache) {
		c.now = now
	}
}

// WithOperationTimeout overrides the per store call timeout.
func WithOperationTimeout(d time.Duration) Option {
	return func(c *decryptionCache) {
		if d > 0 {
			c.opTimeout = d
		}
	}
}

type counters struct {
	mu            sync.Mutex
	hits          int64
	misses        int64
	sets          int64
	invalidations int64
	errors        int64
}

func (c *counters) snapshot() cacheDomain.Stats {
	return cacheDomain.Stats{
		Hits:          c.hits,
		Misses:        c.misses,
		Sets:          c.sets,
		Invalidations: c.invalidations,
		Errors:        c.errors,
		HitRatio:      cacheDomain.ComputeHitRatio(c.hits, c.misses),
	}
}

type decryptionCache struct {
	store      Store
	keys       *cacheService.KeyBuilder
	classifier *cacheService.Classifier
	recorder   instrumentation.Recorder
	logger     *slog.Logger
	now        func() time.Time
	opTimeout  time.Duration
	stats      counters
}

// NewDecryptionCache creates a DecryptionCache over store. A nil store disables caching:
// every lookup is a miss and decrypts.
func NewDecryptionCache(
	store Store,
	keys *cacheService.KeyBuilder,
	classifier *cacheService.Classifier,
	recorder instrumentation.Recorder,
	logger *slog.Logger,
	opts ...Option,
) DecryptionCache {
	if recorder == nil {
		recorder = instrumentation.NewNoopRecorder()
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &decryptionCache{
		store:      store,
		keys:       keys,
		classifier: classifier,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
		opTimeout:  DefaultOperationTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *decryptionCache) GetOrDecrypt(
	ctx context.Context,
	envelope string,
	fc phiDomain.FieldContext,
	decrypt DecryptFunc,
) (string, error) {
	if envelope == "" {
		return "", nil
	}
	if decrypt == nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "decrypt function is required")
	}

	level := c.classifier.ClassifyContext(fc)

	if c.store == nil {
		c.update(func(s *counters) { s.misses++ })
		return decrypt(ctx, envelope)
	}

	key := c.keys.BuildKey(envelope, fc)
	fingerprint := c.keys.Fingerprint(fc)

	start := time.Now()
	plaintext, hit := c.lookup(ctx, key, fingerprint, fc)
	c.recorder.Record(ctx, instrumentation.Event{
		Operation:      auditDomain.OperationCacheGet,
		FieldContext:   fc,
		Classification: level,
		Success:        true,
		Duration:       time.Since(start),
		Metadata:       map[string]any{"hit": hit},
	})
	if hit {
		return plaintext, nil
	}

	plaintext, err := decrypt(ctx, envelope)
	if err != nil {
		return "", err
	}

	c.save(ctx, key, fingerprint, plaintext, level, fc)
	return plaintext, nil
}

// lookup reads key and reports a hit only for a decodable, unexpired entry whose
// fingerprint matches. Every other outcome counts as a miss.
func (c *decryptionCache) lookup(
	ctx context.Context,
	key, fingerprint string,
	fc phiDomain.FieldContext,
) (string, bool) {
	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	data, found, err := c.store.Get(opCtx, key)
	if err != nil {
		c.storeFailed("get", err, fc)
		c.update(func(s *counters) { s.misses++ })
		return "", false
	}
	if !found {
		c.update(func(s *counters) { s.misses++ })
		return "", false
	}

	entry, err := cacheDomain.UnmarshalEntry(data)
	if err != nil {
		c.storeFailed("decode", err, fc)
		c.update(func(s *counters) { s.misses++ })
		return "", false
	}

	if entry.ContextFingerprint != fingerprint {
		c.update(func(s *counters) { s.misses++ })
		return "", false
	}

	if entry.Expired(c.now()) {
		if err := c.store.Delete(opCtx, key); err != nil {
			c.storeFailed("delete_expired", err, fc)
		}
		c.update(func(s *counters) { s.misses++ })
		return "", false
	}

	c.update(func(s *counters) { s.hits++ })
	return entry.Plaintext, true
}

func (c *decryptionCache) save(
	ctx context.Context,
	key, fingerprint, plaintext string,
	level phiDomain.SensitivityLevel,
	fc phiDomain.FieldContext,
) {
	start := time.Now()
	ttl := level.TTL()
	entry := &cacheDomain.CacheEntry{
		Key:                key,
		Plaintext:          plaintext,
		CachedAt:           c.now().UTC(),
		TTL:                ttl,
		Sensitivity:        level,
		ContextFingerprint: fingerprint,
	}

	err := c.write(ctx, key, entry, ttl)
	if err != nil {
		c.storeFailed("set", err, fc)
	} else {
		c.update(func(s *counters) { s.sets++ })
	}

	c.recorder.Record(ctx, instrumentation.Event{
		Operation:      auditDomain.OperationCacheSet,
		FieldContext:   fc,
		Classification: level,
		Success:        err == nil,
		Err:            err,
		Duration:       time.Since(start),
		Metadata:       map[string]any{"ttl_seconds": int64(ttl / time.Second)},
	})
}

func (c *decryptionCache) write(ctx context.Context, key string, entry *cacheDomain.CacheEntry, ttl time.Duration) error {
	data, err := entry.Marshal()
	if err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.store.Set(opCtx, key, data, ttl)
}

func (c *decryptionCache) Invalidate(
	ctx context.Context,
	resourceID, resourceType string,
	fc phiDomain.FieldContext,
) (int64, error) {
	if resourceID == "" {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "resource id is required")
	}
	scope := fc
	scope.ResourceID = resourceID
	scope.ResourceType = resourceType

	return c.invalidate(ctx, c.keys.ResourcePattern(fc.OrganizationID, resourceID), scope, "resource")
}

func (c *decryptionCache) InvalidateUser(ctx context.Context, userID, organizationID string) (int64, error) {
	if userID == "" {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "user id is required")
	}
	scope := phiDomain.FieldContext{UserID: userID, OrganizationID: organizationID}

	return c.invalidate(ctx, c.keys.UserPattern(organizationID, userID), scope, "user")
}

func (c *decryptionCache) invalidate(
	ctx context.Context,
	pattern string,
	scope phiDomain.FieldContext,
	kind string,
) (int64, error) {
	if c.store == nil {
		return 0, nil
	}

	start := time.Now()
	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	removed, err := c.store.DeleteMatching(opCtx, pattern)
	if err != nil {
		c.storeFailed("invalidate", err, scope)
		err = apperrors.Wrap(cacheDomain.ErrCacheUnavailable, err.Error())
	} else {
		c.update(func(s *counters) { s.invalidations += removed })
	}

	c.recorder.Record(ctx, instrumentation.Event{
		Operation:      auditDomain.OperationInvalidate,
		FieldContext:   scope,
		Classification: phiDomain.AuditData,
		Success:        err == nil,
		Err:            err,
		Duration:       time.Since(start),
		Metadata:       map[string]any{"scope": kind, "removed": removed},
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (c *decryptionCache) Metrics() cacheDomain.Stats {
	c.stats.mu.Lock()
	defer c.stats.mu.Unlock()
	return c.stats.snapshot()
}

func (c *decryptionCache) Healthy(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	if err := c.store.Ping(opCtx); err != nil {
		return apperrors.Wrap(cacheDomain.ErrCacheUnavailable, err.Error())
	}
	return nil
}

// update applies fn and publishes the resulting snapshot under the counters lock, so
// published snapshots never go backwards. The recorder must not call back into the cache.
func (c *decryptionCache) update(fn func(s *counters)) {
	c.stats.mu.Lock()
	defer c.stats.mu.Unlock()
	fn(&c.stats)
	c.recorder.RecordCacheSnapshot(context.Background(), c.stats.snapshot())
}

func (c *decryptionCache) storeFailed(op string, err error, fc phiDomain.FieldContext) {
	c.update(func(s *counters) { s.errors++ })
	c.logger.Warn("decryption cache store failed",
		slog.String("op", op),
		slog.String("field_name", fc.FieldName),
		slog.String("resource_type", fc.ResourceType),
		slog.String("resource_id", fc.ResourceID),
		slog.Any("error", err),
	)
}
