package domain

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"

	"github.com/allisson/phivault/internal/errors"
)

// placeholderValues are sample values commonly left in .env files. Key material matching
// one of them (case-insensitively, encoded or decoded) is rejected.
var placeholderValues = []string{
	"changeme",
	"change-me",
	"change_me",
	"changeit",
	"your-encryption-key",
	"your_encryption_key",
	"your-encryption-salt",
	"your_encryption_salt",
	"your-secret-key",
	"placeholder",
	"secret",
	"default",
	"example",
	"password",
	"test",
	"xxx",
	"todo",
}

// KMSKeeper abstracts a KMS keeper so tests can stub it.
// *secrets.Keeper from gocloud.dev satisfies this interface.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KeyMaterial is the operator supplied master secret and its paired salt.
//
// It exists only long enough to derive a WorkingKey and must be closed afterwards so the
// raw bytes do not linger in memory.
type KeyMaterial struct {
	Secret []byte
	Salt   []byte
}

// Close zeroes the secret and salt.
func (k *KeyMaterial) Close() {
	if k == nil {
		return
	}
	Zero(k.Secret)
	Zero(k.Salt)
	k.Secret = nil
	k.Salt = nil
}

// LoadKeyMaterial decodes and validates the base64 encoded master secret and salt.
func LoadKeyMaterial(encodedSecret, encodedSalt string) (*KeyMaterial, error) {
	secret, err := DecodeKeyValue("ENCRYPTION_KEY", encodedSecret)
	if err != nil {
		return nil, err
	}

	salt, err := DecodeKeyValue("ENCRYPTION_SALT", encodedSalt)
	if err != nil {
		Zero(secret)
		return nil, err
	}

	return NewKeyMaterial(secret, salt)
}

// DecodeKeyValue rejects empty and placeholder values and base64 decodes the rest.
// Standard encoding is tried first, then URL-safe, each with and without padding.
func DecodeKeyValue(name, encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, errors.Wrapf(ErrConfiguration, "%s is not set", name)
	}
	if isPlaceholder([]byte(encoded)) {
		return nil, errors.Wrapf(ErrConfiguration, "%s is a placeholder value", name)
	}

	decoded, err := DecodeBase64(encoded)
	if err != nil {
		return nil, errors.Wrapf(ErrConfiguration, "%s is not valid base64", name)
	}
	return decoded, nil
}

// NewKeyMaterial validates already decoded key material. The slices are owned by the
// returned value; on error they are zeroed.
func NewKeyMaterial(secret, salt []byte) (*KeyMaterial, error) {
	km := &KeyMaterial{Secret: secret, Salt: salt}

	switch {
	case len(secret) == 0:
		km.Close()
		return nil, errors.Wrapf(ErrConfiguration, "ENCRYPTION_KEY is empty")
	case len(salt) == 0:
		km.Close()
		return nil, errors.Wrapf(ErrConfiguration, "ENCRYPTION_SALT is empty")
	case isPlaceholder(secret):
		km.Close()
		return nil, errors.Wrapf(ErrConfiguration, "ENCRYPTION_KEY is a placeholder value")
	case isPlaceholder(salt):
		km.Close()
		return nil, errors.Wrapf(ErrConfiguration, "ENCRYPTION_SALT is a placeholder value")
	case len(secret) < MinSecretSize:
		km.Close()
		return nil, errors.Wrapf(
			ErrConfiguration,
			"ENCRYPTION_KEY must decode to at least %d bytes",
			MinSecretSize,
		)
	case len(salt) < MinSaltSize:
		km.Close()
		return nil, errors.Wrapf(
			ErrConfiguration,
			"ENCRYPTION_SALT must decode to at least %d bytes",
			MinSaltSize,
		)
	}

	return km, nil
}

// DecodeBase64 decodes s with the first alphabet that accepts it.
func DecodeBase64(s string) ([]byte, error) {
	var lastErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	} {
		decoded, err := enc.DecodeString(s)
		if err == nil {
			return decoded, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func isPlaceholder(b []byte) bool {
	trimmed := bytes.TrimSpace(b)
	for _, p := range placeholderValues {
		if bytes.EqualFold(trimmed, []byte(p)) {
			return true
		}
	}
	return false
}
