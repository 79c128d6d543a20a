package service

import (
	cryptoDomain "github.com/allisson/phivault/internal/crypto/domain"
	apperrors "github.com/allisson/phivault/internal/errors"
)

// AEADSealer seals with one algorithm and opens envelopes of every supported version.
type AEADSealer struct {
	alg     cryptoDomain.Algorithm
	ciphers map[cryptoDomain.Algorithm]AEAD
}

// NewAEADSealer keys one cipher per supported algorithm with the working key. New
// envelopes are written with alg.
func NewAEADSealer(
	aeadManager AEADManager,
	key *cryptoDomain.WorkingKey,
	alg cryptoDomain.Algorithm,
) (*AEADSealer, error) {
	if _, err := cryptoDomain.VersionFor(alg); err != nil {
		return nil, err
	}

	ciphers := make(map[cryptoDomain.Algorithm]AEAD, 2)
	for _, a := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		c, err := aeadManager.CreateCipher(key.Bytes(), a)
		if err != nil {
			return nil, err
		}
		ciphers[a] = c
	}

	return &AEADSealer{alg: alg, ciphers: ciphers}, nil
}

// Seal encrypts plaintext and returns the canonical envelope string.
func (s *AEADSealer) Seal(plaintext []byte) (string, error) {
	nonce, ciphertext, err := s.ciphers[s.alg].Seal(plaintext)
	if err != nil {
		return "", apperrors.Wrap(cryptoDomain.ErrEncryption, err.Error())
	}

	envelope, err := cryptoDomain.NewEnvelope(s.alg, nonce, ciphertext)
	if err != nil {
		return "", err
	}
	return envelope.String(), nil
}

// Open parses and decrypts an envelope. Malformed input is ErrDecryption; a tag that
// does not verify is ErrInvalidEnvelope.
func (s *AEADSealer) Open(envelope string) ([]byte, error) {
	env, err := cryptoDomain.ParseEnvelope(envelope)
	if err != nil {
		return nil, err
	}

	alg, err := env.Algorithm()
	if err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrDecryption, err.Error())
	}

	plaintext, err := s.ciphers[alg].Open(env.Nonce(), env.Ciphertext())
	if err != nil {
		return nil, cryptoDomain.ErrInvalidEnvelope
	}
	return plaintext, nil
}

// Enabled always returns true.
func (s *AEADSealer) Enabled() bool {
	return true
}

// PassthroughSealer stores values unencrypted. It is only for local development and
// tests; production startup refuses it.
type PassthroughSealer struct{}

// NewPassthroughSealer creates a PassthroughSealer.
func NewPassthroughSealer() *PassthroughSealer {
	return &PassthroughSealer{}
}

// Seal returns the plaintext as is.
func (p *PassthroughSealer) Seal(plaintext []byte) (string, error) {
	return string(plaintext), nil
}

// Open returns the envelope as is.
func (p *PassthroughSealer) Open(envelope string) ([]byte, error) {
	return []byte(envelope), nil
}

// Enabled always returns false.
func (p *PassthroughSealer) Enabled() bool {
	return false
}
