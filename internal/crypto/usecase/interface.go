// Package usecase encrypts and decrypts individual PHI field values.
package usecase

import (
	"context"

	phiDomain "github.com/allisson/phivault/internal/phi/domain"
)

// FieldCipher seals field values into envelopes and opens them again.
//
// Every operation emits one instrumentation event carrying the field context and outcome,
// never the value. Absent values (nil, "" or an empty byte slice) map to "" in both
// directions without touching the cipher.
type FieldCipher interface {
	// EncryptField serializes value and seals it. Strings and byte slices are used as is,
	// booleans and numbers are formatted with strconv, and composite values are JSON
	// encoded.
	EncryptField(ctx context.Context, value any, fc phiDomain.FieldContext) (string, error)

	// DecryptField opens envelope. Malformed input is ErrDecryption and an authentication
	// failure is ErrInvalidEnvelope.
	DecryptField(ctx context.Context, envelope string, fc phiDomain.FieldContext) (string, error)

	// EncryptJSON always JSON encodes v before sealing, scalars included.
	EncryptJSON(ctx context.Context, v any, fc phiDomain.FieldContext) (string, error)

	// DecryptJSON opens envelope and unmarshals the plaintext into out. Invalid JSON is
	// ErrInvalidData.
	DecryptJSON(ctx context.Context, envelope string, fc phiDomain.FieldContext, out any) error
}
