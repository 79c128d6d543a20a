package service

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ChaCha20Poly1305Cipher implements AEAD with ChaCha20-Poly1305.
type ChaCha20Poly1305Cipher struct {
	aead cipher.AEAD
}

// NewChaCha20Poly1305 creates a ChaCha20-Poly1305 cipher. The key must be exactly 32 bytes.
func NewChaCha20Poly1305(key []byte) (*ChaCha20Poly1305Cipher, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	return &ChaCha20Poly1305Cipher{aead: aead}, nil
}

// Seal encrypts plaintext under a fresh random 12-byte nonce.
func (c *ChaCha20Poly1305Cipher) Seal(plaintext []byte) (nonce, ciphertext []byte, err error) {
	return seal(c.aead, plaintext)
}

// Open decrypts and authenticates ciphertext.
func (c *ChaCha20Poly1305Cipher) Open(nonce, ciphertext []byte) ([]byte, error) {
	return open(c.aead, nonce, ciphertext)
}
