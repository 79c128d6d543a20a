package repository

import (
	"context"
	"database/sql"
	"time"

	auditDomain "github.com/allisson/phivault/internal/audit/domain"
	"github.com/allisson/phivault/internal/database"
	apperrors "github.com/allisson/phivault/internal/errors"
)

// MySQLAuditEventRepository implements AuditEvent persistence for MySQL.
// Event IDs are stored as BINARY(16).
type MySQLAuditEventRepository struct {
	db *sql.DB
}

// NewMySQLAuditEventRepository creates a new MySQL AuditEvent repository.
func NewMySQLAuditEventRepository(db *sql.DB) *MySQLAuditEventRepository {
	return &MySQLAuditEventRepository{db: db}
}

// Create inserts an AuditEvent. Nil metadata is stored as NULL.
func (m *MySQLAuditEventRepository) Create(ctx context.Context, event *auditDomain.AuditEvent) error {
	querier := database.GetTx(ctx, m.db)

	metadataJSON, err := marshalMetadata(event.Metadata)
	if err != nil {
		return err
	}

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event id")
	}

	query := `INSERT INTO audit_events (id, operation, field_name, resource_type, resource_id, user_id,
			  organization_id, classification, success, error, metadata, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		string(event.Operation),
		event.FieldName,
		event.ResourceType,
		event.ResourceID,
		event.UserID,
		event.OrganizationID,
		event.Classification,
		event.Success,
		event.Error,
		metadataJSON,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}

	return nil
}

// List returns audit events newest first, optionally bounded by createdAtFrom and
// createdAtTo (both inclusive).
func (m *MySQLAuditEventRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, m.db)

	where, args := timeRangeFilter(createdAtFrom, createdAtTo, mysqlPlaceholder)
	query := `SELECT id, operation, field_name, resource_type, resource_id, user_id, organization_id,
			  classification, success, error, metadata, created_at
			  FROM audit_events` + where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.AuditEvent, 0)
	for rows.Next() {
		var event auditDomain.AuditEvent
		var idBinary, metadataJSON []byte
		var operation string

		err := rows.Scan(
			&idBinary,
			&operation,
			&event.FieldName,
			&event.ResourceType,
			&event.ResourceID,
			&event.UserID,
			&event.OrganizationID,
			&event.Classification,
			&event.Success,
			&event.Error,
			&metadataJSON,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}

		if err := event.ID.UnmarshalBinary(idBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit event id")
		}
		event.Operation = auditDomain.Operation(operation)
		if event.Metadata, err = unmarshalMetadata(metadataJSON); err != nil {
			return nil, err
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}

	return events, nil
}

// CountOlderThan counts audit events created before olderThan.
func (m *MySQLAuditEventRepository) CountOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM audit_events WHERE created_at < ?`,
		olderThan,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit events")
	}
	return count, nil
}

// DeleteOlderThan deletes audit events created before olderThan.
func (m *MySQLAuditEventRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < ?`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read deleted audit events count")
	}
	return deleted, nil
}
