// Package service provides the cryptographic primitives behind field encryption: key
// derivation, AEAD ciphers, envelope sealing and KMS access.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/phivault/internal/crypto/domain"
)

// AEAD seals and opens data with a fresh random nonce per Seal call.
type AEAD interface {
	// Seal encrypts plaintext and returns the nonce and ciphertext (with trailing tag).
	Seal(plaintext []byte) (nonce, ciphertext []byte, err error)

	// Open authenticates and decrypts ciphertext. Any failure means the tag did not verify.
	Open(nonce, ciphertext []byte) ([]byte, error)
}

// AEADManager creates AEAD instances for a given key and algorithm.
type AEADManager interface {
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyManager derives the working key from operator key material.
type KeyManager interface {
	DeriveWorkingKey(material *cryptoDomain.KeyMaterial) (*cryptoDomain.WorkingKey, error)
}

// Sealer turns plaintext bytes into a storable envelope string and back.
type Sealer interface {
	Seal(plaintext []byte) (string, error)
	Open(envelope string) ([]byte, error)
	// Enabled reports whether the sealer actually encrypts.
	Enabled() bool
}

// KMSService opens KMS keepers used to wrap the master secret.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}
