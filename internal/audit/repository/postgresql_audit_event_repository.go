// Package repository persists audit events to PostgreSQL, MySQL or the structured log.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	auditDomain "github.com/allisson/phivault/internal/audit/domain"
	"github.com/allisson/phivault/internal/database"
	apperrors "github.com/allisson/phivault/internal/errors"
)

// PostgreSQLAuditEventRepository implements AuditEvent persistence for PostgreSQL.
type PostgreSQLAuditEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditEventRepository creates a new PostgreSQL AuditEvent repository.
func NewPostgreSQLAuditEventRepository(db *sql.DB) *PostgreSQLAuditEventRepository {
	return &PostgreSQLAuditEventRepository{db: db}
}

// Create inserts an AuditEvent. Nil metadata is stored as NULL.
func (p *PostgreSQLAuditEventRepository) Create(ctx context.Context, event *auditDomain.AuditEvent) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, err := marshalMetadata(event.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_events (id, operation, field_name, resource_type, resource_id, user_id,
			  organization_id, classification, success, error, metadata, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
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
func (p *PostgreSQLAuditEventRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, p.db)

	where, args := timeRangeFilter(createdAtFrom, createdAtTo, postgresPlaceholder)
	query := `SELECT id, operation, field_name, resource_type, resource_id, user_id, organization_id,
			  classification, success, error, metadata, created_at
			  FROM audit_events` + where +
		" ORDER BY created_at DESC LIMIT " + postgresPlaceholder(len(args)+1) +
		" OFFSET " + postgresPlaceholder(len(args)+2)
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
		var operation string
		var metadataJSON []byte

		err := rows.Scan(
			&event.ID,
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
func (p *PostgreSQLAuditEventRepository) CountOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM audit_events WHERE created_at < $1`,
		olderThan,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit events")
	}
	return count, nil
}

// DeleteOlderThan deletes audit events created before olderThan.
func (p *PostgreSQLAuditEventRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read deleted audit events count")
	}
	return deleted, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit event metadata")
	}
	return data, nil
}

func unmarshalMetadata(data []byte) (map[string]any, error) {
	if data == nil {
		return nil, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal audit event metadata")
	}
	return metadata, nil
}
