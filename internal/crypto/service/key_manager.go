package service

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/phivault/internal/crypto/domain"
	apperrors "github.com/allisson/phivault/internal/errors"
)

// KeyManagerService derives the working key with PBKDF2-HMAC-SHA256.
//
// Derivation is deterministic: the same secret, salt and iteration count always yield the
// same key, which is what keeps previously stored envelopes decryptable across restarts.
type KeyManagerService struct {
	iterations int
}

// NewKeyManager creates a KeyManagerService. Iteration counts below 100000 are rejected.
func NewKeyManager(iterations int) (*KeyManagerService, error) {
	if iterations < cryptoDomain.MinKDFIterations {
		return nil, apperrors.Wrapf(
			cryptoDomain.ErrConfiguration,
			"ENCRYPTION_KDF_ITERATIONS must be at least %d",
			cryptoDomain.MinKDFIterations,
		)
	}
	return &KeyManagerService{iterations: iterations}, nil
}

// DeriveWorkingKey derives a 32-byte WorkingKey. The caller keeps ownership of material
// and should Close it once derivation is done.
func (km *KeyManagerService) DeriveWorkingKey(
	material *cryptoDomain.KeyMaterial,
) (*cryptoDomain.WorkingKey, error) {
	if material == nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrConfiguration, "key material is missing")
	}
	if len(material.Secret) < cryptoDomain.MinSecretSize || len(material.Salt) < cryptoDomain.MinSaltSize {
		return nil, apperrors.Wrap(cryptoDomain.ErrConfiguration, "key material is too short")
	}

	key := pbkdf2.Key(material.Secret, material.Salt, km.iterations, cryptoDomain.KeySize, sha256.New)
	return cryptoDomain.NewWorkingKey(key)
}
