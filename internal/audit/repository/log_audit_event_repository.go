package repository

import (
	"context"
	"log/slog"
	"time"

	auditDomain "github.com/allisson/phivault/internal/audit/domain"
)

// LogAuditEventRepository writes audit events as structured log lines. It is write-only.
type LogAuditEventRepository struct {
	logger *slog.Logger
}

// NewLogAuditEventRepository creates a LogAuditEventRepository.
func NewLogAuditEventRepository(logger *slog.Logger) *LogAuditEventRepository {
	return &LogAuditEventRepository{logger: logger.With(slog.String("component", "audit"))}
}

// Create emits one info line per event.
func (l *LogAuditEventRepository) Create(ctx context.Context, event *auditDomain.AuditEvent) error {
	attrs := []slog.Attr{
		slog.String("audit_id", event.ID.String()),
		slog.String("operation", string(event.Operation)),
		slog.String("field_name", event.FieldName),
		slog.String("resource_type", event.ResourceType),
		slog.String("resource_id", event.ResourceID),
		slog.String("user_id", event.UserID),
		slog.String("organization_id", event.OrganizationID),
		slog.String("classification", event.Classification),
		slog.Bool("success", event.Success),
		slog.Time("created_at", event.CreatedAt),
	}
	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}
	if len(event.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", event.Metadata))
	}

	l.logger.LogAttrs(ctx, slog.LevelInfo, "phi field operation", attrs...)
	return nil
}

// List is not supported by the log sink.
func (l *LogAuditEventRepository) List(
	_ context.Context,
	_, _ int,
	_, _ *time.Time,
) ([]*auditDomain.AuditEvent, error) {
	return nil, auditDomain.ErrListingUnsupported
}

// CountOlderThan is not supported by the log sink.
func (l *LogAuditEventRepository) CountOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, auditDomain.ErrListingUnsupported
}

// DeleteOlderThan is not supported by the log sink; retention belongs to the log pipeline.
func (l *LogAuditEventRepository) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, auditDomain.ErrListingUnsupported
}
