package usecase

import (
	"context"
	"time"

	cacheDomain "github.com/allisson/phivault/internal/cache/domain"
	"github.com/allisson/phivault/internal/metrics"
	phiDomain "github.com/allisson/phivault/internal/phi/domain"
)

const metricsDomain = "cache"

// decryptionCacheWithMetrics decorates DecryptionCache with metrics instrumentation.
type decryptionCacheWithMetrics struct {
	next    DecryptionCache
	metrics metrics.BusinessMetrics
}

// NewDecryptionCacheWithMetrics wraps a DecryptionCache with metrics recording.
func NewDecryptionCacheWithMetrics(cache DecryptionCache, m metrics.BusinessMetrics) DecryptionCache {
	return &decryptionCacheWithMetrics{
		next:    cache,
		metrics: m,
	}
}

func (d *decryptionCacheWithMetrics) GetOrDecrypt(
	ctx context.Context,
	envelope string,
	fc phiDomain.FieldContext,
	decrypt DecryptFunc,
) (string, error) {
	start := time.Now()
	plaintext, err := d.next.GetOrDecrypt(ctx, envelope, fc, decrypt)
	d.record(ctx, "get_or_decrypt", start, err)
	return plaintext, err
}

func (d *decryptionCacheWithMetrics) Invalidate(
	ctx context.Context,
	resourceID, resourceType string,
	fc phiDomain.FieldContext,
) (int64, error) {
	start := time.Now()
	removed, err := d.next.Invalidate(ctx, resourceID, resourceType, fc)
	d.record(ctx, "invalidate", start, err)
	return removed, err
}

func (d *decryptionCacheWithMetrics) InvalidateUser(ctx context.Context, userID, organizationID string) (int64, error) {
	start := time.Now()
	removed, err := d.next.InvalidateUser(ctx, userID, organizationID)
	d.record(ctx, "invalidate_user", start, err)
	return removed, err
}

// Metrics is not instrumented.
func (d *decryptionCacheWithMetrics) Metrics() cacheDomain.Stats {
	return d.next.Metrics()
}

// Healthy is not instrumented.
func (d *decryptionCacheWithMetrics) Healthy(ctx context.Context) error {
	return d.next.Healthy(ctx)
}

func (d *decryptionCacheWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	d.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	d.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}
