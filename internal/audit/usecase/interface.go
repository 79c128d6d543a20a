// Package usecase implements the audit sink consumed by field instrumentation.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/phivault/internal/audit/domain"
)

// AuditEventRepository persists audit events.
type AuditEventRepository interface {
	Create(ctx context.Context, event *auditDomain.AuditEvent) error
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.AuditEvent, error)
	CountOlderThan(ctx context.Context, olderThan time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error)
}

// AuditEventUseCase records and manages audit events.
type AuditEventUseCase interface {
	// LogEvent stores event, assigning an ID and timestamp when they are unset.
	LogEvent(ctx context.Context, event *auditDomain.AuditEvent) error

	// List returns events newest first with optional inclusive time bounds.
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.AuditEvent, error)

	// DeleteOlderThan removes events older than the given number of days. With dryRun it
	// only counts them.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}
