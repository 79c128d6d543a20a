package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/phivault/internal/crypto/domain"
)

// AESGCMCipher implements AEAD with AES-256-GCM.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates an AES-256-GCM cipher. The key must be exactly 32 bytes.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Seal encrypts plaintext under a fresh random 12-byte nonce.
func (a *AESGCMCipher) Seal(plaintext []byte) (nonce, ciphertext []byte, err error) {
	return seal(a.aead, plaintext)
}

// Open decrypts and authenticates ciphertext.
func (a *AESGCMCipher) Open(nonce, ciphertext []byte) ([]byte, error) {
	return open(a.aead, nonce, ciphertext)
}

func seal(aead cipher.AEAD, plaintext []byte) (nonce, ciphertext []byte, err error) {
	nonce = make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = aead.Seal(nil, nonce, plaintext, nil)
	return nonce, ciphertext, nil
}

func open(aead cipher.AEAD, nonce, ciphertext []byte) ([]byte, error) {
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("invalid nonce size %d", len(nonce))
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
