package usecase

import (
	"context"
	"time"

	"github.com/allisson/phivault/internal/metrics"
	phiDomain "github.com/allisson/phivault/internal/phi/domain"
)

// fieldCipherWithMetrics decorates FieldCipher with metrics instrumentation.
type fieldCipherWithMetrics struct {
	next    FieldCipher
	metrics metrics.BusinessMetrics
}

// NewFieldCipherWithMetrics wraps a FieldCipher with metrics recording.
func NewFieldCipherWithMetrics(cipher FieldCipher, m metrics.BusinessMetrics) FieldCipher {
	return &fieldCipherWithMetrics{
		next:    cipher,
		metrics: m,
	}
}

func (f *fieldCipherWithMetrics) EncryptField(
	ctx context.Context,
	value any,
	fc phiDomain.FieldContext,
) (string, error) {
	start := time.Now()
	envelope, err := f.next.EncryptField(ctx, value, fc)
	f.record(ctx, "encrypt_field", start, err)
	return envelope, err
}

func (f *fieldCipherWithMetrics) DecryptField(
	ctx context.Context,
	envelope string,
	fc phiDomain.FieldContext,
) (string, error) {
	start := time.Now()
	plaintext, err := f.next.DecryptField(ctx, envelope, fc)
	f.record(ctx, "decrypt_field", start, err)
	return plaintext, err
}

func (f *fieldCipherWithMetrics) EncryptJSON(ctx context.Context, v any, fc phiDomain.FieldContext) (string, error) {
	start := time.Now()
	envelope, err := f.next.EncryptJSON(ctx, v, fc)
	f.record(ctx, "encrypt_json", start, err)
	return envelope, err
}

func (f *fieldCipherWithMetrics) DecryptJSON(
	ctx context.Context,
	envelope string,
	fc phiDomain.FieldContext,
	out any,
) error {
	start := time.Now()
	err := f.next.DecryptJSON(ctx, envelope, fc, out)
	f.record(ctx, "decrypt_json", start, err)
	return err
}

func (f *fieldCipherWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	f.metrics.RecordOperation(ctx, "field", operation, status)
	f.metrics.RecordDuration(ctx, "field", operation, time.Since(start), status)
}
