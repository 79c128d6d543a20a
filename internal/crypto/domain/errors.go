package domain

import (
	"github.com/allisson/phivault/internal/errors"
)

// Field encryption error definitions.
//
// Cryptographic failures are always surfaced to the caller. The HTTP layer maps
// ErrInvalidEnvelope and ErrDecryption to an internal error response without exposing
// details.
var (
	// ErrConfiguration indicates missing, placeholder or too-short key material, or an
	// unusable encryption setting. It is fatal at startup.
	ErrConfiguration = errors.Wrap(errors.ErrInvalidInput, "configuration error")

	// ErrInvalidEnvelope indicates the authentication tag did not verify. The envelope was
	// tampered with, corrupted, or sealed with a different key.
	ErrInvalidEnvelope = errors.Wrap(errors.ErrInternal, "invalid envelope")

	// ErrDecryption indicates the envelope could not be decoded (bad base64, unknown
	// version, truncated body).
	ErrDecryption = errors.Wrap(errors.ErrInternal, "decryption error")

	// ErrEncryption indicates sealing failed (nonce generation or value serialization).
	ErrEncryption = errors.Wrap(errors.ErrInternal, "encryption error")

	// ErrInvalidData indicates the decrypted plaintext is not valid JSON when JSON
	// decoding was requested.
	ErrInvalidData = errors.Wrap(errors.ErrInvalidInput, "invalid data")

	// ErrUnsupportedAlgorithm indicates the requested algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")
)
