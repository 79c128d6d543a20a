package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/phivault/internal/audit/domain"
)

// MockAuditEventRepository is a mock implementation of AuditEventRepository.
type MockAuditEventRepository struct {
	mock.Mock
}

func (m *MockAuditEventRepository) Create(ctx context.Context, event *auditDomain.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAuditEventRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditEvent, error) {
	args := m.Called(ctx, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditEvent), args.Error(1)
}

func (m *MockAuditEventRepository) CountOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditEventRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockTxManager runs the function inline and records the call.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Called(ctx)
	return fn(ctx)
}

func fixedNow() time.Time {
	return time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
}

func TestAuditEventUseCase_LogEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_AssignsIDAndTimestamp", func(t *testing.T) {
		repo := &MockAuditEventRepository{}
		uc := NewAuditEventUseCase(nil, repo).(*auditEventUseCase)
		uc.now = fixedNow

		repo.On("Create", ctx, mock.MatchedBy(func(e *auditDomain.AuditEvent) bool {
			return e.ID != uuid.Nil && e.CreatedAt.Equal(fixedNow()) && e.FieldName == "ssn"
		})).Return(nil).Once()

		event := &auditDomain.AuditEvent{Operation: auditDomain.OperationEncrypt, FieldName: "ssn", Success: true}
		require.NoError(t, uc.LogEvent(ctx, event))
		assert.Equal(t, uuid.Version(7), event.ID.Version())
		repo.AssertExpectations(t)
	})

	t.Run("Success_KeepsProvidedValues", func(t *testing.T) {
		repo := &MockAuditEventRepository{}
		uc := NewAuditEventUseCase(nil, repo)

		id := uuid.Must(uuid.NewV7())
		createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		event := &auditDomain.AuditEvent{ID: id, CreatedAt: createdAt}
		repo.On("Create", ctx, event).Return(nil).Once()

		require.NoError(t, uc.LogEvent(ctx, event))
		assert.Equal(t, id, event.ID)
		assert.Equal(t, createdAt, event.CreatedAt)
	})

	t.Run("Error_Repository", func(t *testing.T) {
		repo := &MockAuditEventRepository{}
		uc := NewAuditEventUseCase(nil, repo)

		repo.On("Create", ctx, mock.AnythingOfType("*domain.AuditEvent")).
			Return(errors.New("db down")).Once()

		err := uc.LogEvent(ctx, &auditDomain.AuditEvent{})
		assert.ErrorContains(t, err, "failed to create audit event")
	})

	t.Run("Error_NilEvent", func(t *testing.T) {
		uc := NewAuditEventUseCase(nil, &MockAuditEventRepository{})
		assert.Error(t, uc.LogEvent(ctx, nil))
	})
}

func TestAuditEventUseCase_List(t *testing.T) {
	ctx := context.Background()
	repo := &MockAuditEventRepository{}
	uc := NewAuditEventUseCase(nil, repo)

	events := []*auditDomain.AuditEvent{{FieldName: "ssn"}}
	repo.On("List", ctx, 0, 10, (*time.Time)(nil), (*time.Time)(nil)).Return(events, nil).Once()
	repo.On("List", ctx, 10, 10, (*time.Time)(nil), (*time.Time)(nil)).
		Return(nil, auditDomain.ErrListingUnsupported).Once()

	got, err := uc.List(ctx, 0, 10, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, events, got)

	_, err = uc.List(ctx, 10, 10, nil, nil)
	assert.ErrorIs(t, err, auditDomain.ErrListingUnsupported)
}

func TestAuditEventUseCase_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	cutoff := fixedNow().AddDate(0, 0, -30)

	t.Run("Success_DryRun", func(t *testing.T) {
		repo := &MockAuditEventRepository{}
		tx := &MockTxManager{}
		uc := NewAuditEventUseCase(tx, repo).(*auditEventUseCase)
		uc.now = fixedNow

		repo.On("CountOlderThan", ctx, cutoff).Return(int64(12), nil).Once()

		count, err := uc.DeleteOlderThan(ctx, 30, true)
		require.NoError(t, err)
		assert.Equal(t, int64(12), count)
		tx.AssertNotCalled(t, "WithTx", mock.Anything)
		repo.AssertNotCalled(t, "DeleteOlderThan", mock.Anything, mock.Anything)
	})

	t.Run("Success_DeleteInTransaction", func(t *testing.T) {
		repo := &MockAuditEventRepository{}
		tx := &MockTxManager{}
		uc := NewAuditEventUseCase(tx, repo).(*auditEventUseCase)
		uc.now = fixedNow

		tx.On("WithTx", ctx).Once()
		repo.On("DeleteOlderThan", ctx, cutoff).Return(int64(12), nil).Once()

		deleted, err := uc.DeleteOlderThan(ctx, 30, false)
		require.NoError(t, err)
		assert.Equal(t, int64(12), deleted)
		tx.AssertExpectations(t)
	})

	t.Run("Error_Repository", func(t *testing.T) {
		repo := &MockAuditEventRepository{}
		uc := NewAuditEventUseCase(nil, repo).(*auditEventUseCase)
		uc.now = fixedNow

		repo.On("DeleteOlderThan", ctx, cutoff).Return(int64(0), errors.New("boom")).Once()

		_, err := uc.DeleteOlderThan(ctx, 30, false)
		assert.ErrorContains(t, err, "failed to delete audit events")
	})

	t.Run("Error_NegativeDays", func(t *testing.T) {
		uc := NewAuditEventUseCase(nil, &MockAuditEventRepository{})
		_, err := uc.DeleteOlderThan(ctx, -1, false)
		assert.Error(t, err)
	})
}
