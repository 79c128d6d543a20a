package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CacheSnapshot is the subset of decryption cache counters exported as gauges.
type CacheSnapshot struct {
	Hits          int64
	Misses        int64
	Sets          int64
	Invalidations int64
	Errors        int64
	HitRatio      float64
}

// PHIMetrics is the metrics sink for field instrumentation.
type PHIMetrics interface {
	// RecordTiming observes the duration of one field operation.
	RecordTiming(ctx context.Context, operation string, duration time.Duration, fieldName string)

	// RecordCacheSnapshot replaces the values reported by the cache gauges.
	RecordCacheSnapshot(ctx context.Context, snapshot CacheSnapshot)
}

type phiMetrics struct {
	durationHisto metric.Float64Histogram

	mu       sync.RWMutex
	snapshot CacheSnapshot
}

// NewPHIMetrics registers <namespace>_field_operation_duration_seconds and the
// <namespace>_decryption_cache_* gauges on meterProvider.
func NewPHIMetrics(meterProvider metric.MeterProvider, namespace string) (PHIMetrics, error) {
	meter := meterProvider.Meter(namespace)
	p := &phiMetrics{}

	var err error
	p.durationHisto, err = meter.Float64Histogram(
		fmt.Sprintf("%s_field_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of PHI field operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create field duration histogram: %w", err)
	}

	gauges := []struct {
		name  string
		desc  string
		value func(CacheSnapshot) int64
	}{
		{"hits", "Decryption cache hits", func(s CacheSnapshot) int64 { return s.Hits }},
		{"misses", "Decryption cache misses", func(s CacheSnapshot) int64 { return s.Misses }},
		{"sets", "Decryption cache writes", func(s CacheSnapshot) int64 { return s.Sets }},
		{"invalidations", "Decryption cache entries invalidated", func(s CacheSnapshot) int64 { return s.Invalidations }},
		{"errors", "Decryption cache store errors", func(s CacheSnapshot) int64 { return s.Errors }},
	}
	for _, g := range gauges {
		value := g.value
		_, err := meter.Int64ObservableGauge(
			fmt.Sprintf("%s_decryption_cache_%s", namespace, g.name),
			metric.WithDescription(g.desc),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(value(p.current()))
				return nil
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache %s gauge: %w", g.name, err)
		}
	}

	_, err = meter.Float64ObservableGauge(
		fmt.Sprintf("%s_decryption_cache_hit_ratio", namespace),
		metric.WithDescription("Decryption cache hits over lookups"),
		metric.WithFloat64Callback(func(_ context.Context, o metric.Float64Observer) error {
			o.Observe(p.current().HitRatio)
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache hit ratio gauge: %w", err)
	}

	return p, nil
}

func (p *phiMetrics) RecordTiming(ctx context.Context, operation string, duration time.Duration, fieldName string) {
	p.durationHisto.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("field_name", fieldName),
	))
}

func (p *phiMetrics) RecordCacheSnapshot(_ context.Context, snapshot CacheSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = snapshot
}

func (p *phiMetrics) current() CacheSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// NoOpPHIMetrics discards everything.
type NoOpPHIMetrics struct{}

// NewNoOpPHIMetrics creates a no-op PHIMetrics implementation.
func NewNoOpPHIMetrics() PHIMetrics {
	return &NoOpPHIMetrics{}
}

func (n *NoOpPHIMetrics) RecordTiming(context.Context, string, time.Duration, string) {}

func (n *NoOpPHIMetrics) RecordCacheSnapshot(context.Context, CacheSnapshot) {}
