package usecase

import (
	"context"
	"encoding/json"
	"reflect"
	"strconv"
	"time"

	auditDomain "github.com/allisson/phivault/internal/audit/domain"
	cryptoDomain "github.com/allisson/phivault/internal/crypto/domain"
	cryptoService "github.com/allisson/phivault/internal/crypto/service"
	apperrors "github.com/allisson/phivault/internal/errors"
	"github.com/allisson/phivault/internal/instrumentation"
	phiDomain "github.com/allisson/phivault/internal/phi/domain"
)

type fieldCipher struct {
	sealer   cryptoService.Sealer
	recorder instrumentation.Recorder
}

// NewFieldCipher creates a FieldCipher over sealer. A nil recorder drops events.
func NewFieldCipher(sealer cryptoService.Sealer, recorder instrumentation.Recorder) FieldCipher {
	if recorder == nil {
		recorder = instrumentation.NewNoopRecorder()
	}
	return &fieldCipher{
		sealer:   sealer,
		recorder: recorder,
	}
}

func (f *fieldCipher) EncryptField(ctx context.Context, value any, fc phiDomain.FieldContext) (string, error) {
	if err := validateContext(fc); err != nil {
		return "", err
	}

	plaintext, err := serializeValue(value)
	if err != nil {
		return "", err
	}
	if len(plaintext) == 0 {
		return "", nil
	}
	return f.seal(ctx, plaintext, fc)
}

func (f *fieldCipher) EncryptJSON(ctx context.Context, v any, fc phiDomain.FieldContext) (string, error) {
	if err := validateContext(fc); err != nil {
		return "", err
	}
	if isNil(v) {
		return "", nil
	}

	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", apperrors.Wrap(cryptoDomain.ErrEncryption, "value is not JSON serializable")
	}
	return f.seal(ctx, plaintext, fc)
}

func (f *fieldCipher) DecryptField(ctx context.Context, envelope string, fc phiDomain.FieldContext) (string, error) {
	if err := validateContext(fc); err != nil {
		return "", err
	}
	if envelope == "" {
		return "", nil
	}

	plaintext, err := f.open(ctx, envelope, fc)
	if err != nil {
		return "", err
	}
	defer cryptoDomain.Zero(plaintext)

	return string(plaintext), nil
}

func (f *fieldCipher) DecryptJSON(
	ctx context.Context,
	envelope string,
	fc phiDomain.FieldContext,
	out any,
) error {
	if err := validateContext(fc); err != nil {
		return err
	}
	if envelope == "" {
		return nil
	}

	plaintext, err := f.open(ctx, envelope, fc)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(plaintext)

	if err := json.Unmarshal(plaintext, out); err != nil {
		return apperrors.Wrap(cryptoDomain.ErrInvalidData, "decrypted value is not valid JSON")
	}
	return nil
}

func (f *fieldCipher) seal(ctx context.Context, plaintext []byte, fc phiDomain.FieldContext) (string, error) {
	start := time.Now()
	envelope, err := f.sealer.Seal(plaintext)
	cryptoDomain.Zero(plaintext)

	f.recorder.Record(ctx, instrumentation.Event{
		Operation:    auditDomain.OperationEncrypt,
		FieldContext: fc,
		Success:      err == nil,
		Err:          err,
		Duration:     time.Since(start),
		Metadata:     map[string]any{"encrypted": f.sealer.Enabled()},
	})
	if err != nil {
		return "", err
	}
	return envelope, nil
}

func (f *fieldCipher) open(ctx context.Context, envelope string, fc phiDomain.FieldContext) ([]byte, error) {
	start := time.Now()
	plaintext, err := f.sealer.Open(envelope)

	f.recorder.Record(ctx, instrumentation.Event{
		Operation:    auditDomain.OperationDecrypt,
		FieldContext: fc,
		Success:      err == nil,
		Err:          err,
		Duration:     time.Since(start),
		Metadata:     map[string]any{"encrypted": f.sealer.Enabled()},
	})
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

func validateContext(fc phiDomain.FieldContext) error {
	if err := fc.Validate(); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	return nil
}

// serializeValue returns the plaintext bytes for value, or nil when the value is absent.
// The returned slice is always a fresh copy the caller may zero.
func serializeValue(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return append([]byte(nil), v...), nil
	case bool:
		return []byte(strconv.FormatBool(v)), nil
	case int:
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	case int8:
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	case int16:
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	case int32:
		return []byte(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return []byte(strconv.FormatInt(v, 10)), nil
	case uint:
		return []byte(strconv.FormatUint(uint64(v), 10)), nil
	case uint8:
		return []byte(strconv.FormatUint(uint64(v), 10)), nil
	case uint16:
		return []byte(strconv.FormatUint(uint64(v), 10)), nil
	case uint32:
		return []byte(strconv.FormatUint(uint64(v), 10)), nil
	case uint64:
		return []byte(strconv.FormatUint(v, 10)), nil
	case float32:
		return []byte(strconv.FormatFloat(float64(v), 'g', -1, 32)), nil
	case float64:
		return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case json.Number:
		return []byte(v.String()), nil
	}

	if isNil(value) {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrEncryption, "value is not JSON serializable")
	}
	return data, nil
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
