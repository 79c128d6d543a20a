package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/phivault/internal/audit/domain"
	"github.com/allisson/phivault/internal/database"
	apperrors "github.com/allisson/phivault/internal/errors"
)

type auditEventUseCase struct {
	txManager database.TxManager
	repo      AuditEventRepository
	now       func() time.Time
}

// NewAuditEventUseCase creates an AuditEventUseCase. txManager may be nil for sinks that
// are not backed by a database.
func NewAuditEventUseCase(txManager database.TxManager, repo AuditEventRepository) AuditEventUseCase {
	return &auditEventUseCase{
		txManager: txManager,
		repo:      repo,
		now:       time.Now,
	}
}

func (a *auditEventUseCase) LogEvent(ctx context.Context, event *auditDomain.AuditEvent) error {
	if event == nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "audit event is required")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.Must(uuid.NewV7())
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = a.now().UTC()
	}

	if err := a.repo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

func (a *auditEventUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditEvent, error) {
	events, err := a.repo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	return events, nil
}

func (a *auditEventUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be zero or positive")
	}
	cutoff := a.now().UTC().AddDate(0, 0, -days)

	if dryRun {
		count, err := a.repo.CountOlderThan(ctx, cutoff)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count audit events")
		}
		return count, nil
	}

	var deleted int64
	err := a.withTx(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = a.repo.DeleteOlderThan(ctx, cutoff)
		return err
	})
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}
	return deleted, nil
}

func (a *auditEventUseCase) withTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if a.txManager == nil {
		return fn(ctx)
	}
	return a.txManager.WithTx(ctx, fn)
}
