// Package instrumentation turns PHI field operations into metrics observations and audit
// events. Sink failures never reach the caller.
package instrumentation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	auditDomain "github.com/allisson/phivault/internal/audit/domain"
	auditUseCase "github.com/allisson/phivault/internal/audit/usecase"
	cacheDomain "github.com/allisson/phivault/internal/cache/domain"
	"github.com/allisson/phivault/internal/metrics"
	phiDomain "github.com/allisson/phivault/internal/phi/domain"
)

// DefaultAuditTimeout bounds a single audit write when none is configured.
const DefaultAuditTimeout = 200 * time.Millisecond

// Event describes one field operation. It never carries plaintext or ciphertext.
type Event struct {
	Operation      auditDomain.Operation
	FieldContext   phiDomain.FieldContext
	Classification phiDomain.SensitivityLevel
	Success        bool
	Err            error
	Duration       time.Duration
	Metadata       map[string]any
}

// Classifier resolves the sensitivity of a field context.
type Classifier interface {
	ClassifyContext(fc phiDomain.FieldContext) phiDomain.SensitivityLevel
}

// Recorder fans events out to the metrics and audit sinks.
type Recorder interface {
	// Record emits timing to the metrics sink and an audit event to the audit sink.
	Record(ctx context.Context, event Event)

	// RecordCacheSnapshot publishes the latest decryption cache counters.
	RecordCacheSnapshot(ctx context.Context, stats cacheDomain.Stats)
}

type recorder struct {
	metrics      metrics.PHIMetrics
	audit        auditUseCase.AuditEventUseCase
	classifier   Classifier
	logger       *slog.Logger
	auditTimeout time.Duration
}

// NewRecorder creates a Recorder. audit and classifier may be nil; events are then only
// timed, and unclassified events keep an empty classification.
func NewRecorder(
	phiMetrics metrics.PHIMetrics,
	audit auditUseCase.AuditEventUseCase,
	classifier Classifier,
	logger *slog.Logger,
	auditTimeout time.Duration,
) Recorder {
	if phiMetrics == nil {
		phiMetrics = metrics.NewNoOpPHIMetrics()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if auditTimeout <= 0 {
		auditTimeout = DefaultAuditTimeout
	}
	return &recorder{
		metrics:      phiMetrics,
		audit:        audit,
		classifier:   classifier,
		logger:       logger,
		auditTimeout: auditTimeout,
	}
}

func (r *recorder) Record(ctx context.Context, event Event) {
	if event.Classification == "" && r.classifier != nil {
		event.Classification = r.classifier.ClassifyContext(event.FieldContext)
	}

	r.guard(event, "metrics", func() error {
		r.metrics.RecordTiming(ctx, string(event.Operation), event.Duration, event.FieldContext.FieldName)
		return nil
	})

	if r.audit == nil {
		return
	}
	r.guard(event, "audit", func() error {
		// The audit write outlives a cancelled request but not the configured bound.
		auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.auditTimeout)
		defer cancel()
		return r.audit.LogEvent(auditCtx, toAuditEvent(event))
	})
}

func (r *recorder) RecordCacheSnapshot(ctx context.Context, stats cacheDomain.Stats) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Warn("metrics sink panicked", slog.String("sink", "metrics"), slog.Any("panic", p))
		}
	}()
	r.metrics.RecordCacheSnapshot(ctx, metrics.CacheSnapshot{
		Hits:          stats.Hits,
		Misses:        stats.Misses,
		Sets:          stats.Sets,
		Invalidations: stats.Invalidations,
		Errors:        stats.Errors,
		HitRatio:      stats.HitRatio,
	})
}

// guard runs fn and logs its error or panic with the non-PHI event fields.
func (r *recorder) guard(event Event, sink string, fn func() error) {
	var err error
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
		if err != nil {
			r.logger.Warn("instrumentation sink failed", append(eventAttrs(event),
				slog.String("sink", sink),
				slog.String("sink_error", err.Error()),
			)...)
		}
	}()
	err = fn()
}

func eventAttrs(event Event) []any {
	attrs := []any{
		slog.String("operation", string(event.Operation)),
		slog.String("field_name", event.FieldContext.FieldName),
		slog.String("resource_type", event.FieldContext.ResourceType),
		slog.String("resource_id", event.FieldContext.ResourceID),
		slog.String("user_id", event.FieldContext.UserID),
		slog.String("organization_id", event.FieldContext.OrganizationID),
		slog.String("classification", string(event.Classification)),
		slog.Bool("success", event.Success),
	}
	if event.Err != nil {
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}
	return attrs
}

func toAuditEvent(event Event) *auditDomain.AuditEvent {
	ae := &auditDomain.AuditEvent{
		Operation:      event.Operation,
		FieldName:      event.FieldContext.FieldName,
		ResourceType:   event.FieldContext.ResourceType,
		ResourceID:     event.FieldContext.ResourceID,
		UserID:         event.FieldContext.UserID,
		OrganizationID: event.FieldContext.OrganizationID,
		Classification: string(event.Classification),
		Success:        event.Success,
		Metadata:       make(map[string]any, len(event.Metadata)+1),
	}
	for k, v := range event.Metadata {
		ae.Metadata[k] = v
	}
	ae.Metadata["duration_ms"] = float64(event.Duration.Microseconds()) / 1000
	if event.Err != nil {
		ae.Error = event.Err.Error()
	}
	return ae
}

type noopRecorder struct{}

// NewNoopRecorder returns a Recorder that drops everything.
func NewNoopRecorder() Recorder {
	return noopRecorder{}
}

func (noopRecorder) Record(context.Context, Event) {}

func (noopRecorder) RecordCacheSnapshot(context.Context, cacheDomain.Stats) {}
