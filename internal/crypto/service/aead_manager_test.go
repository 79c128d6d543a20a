package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/phivault/internal/crypto/domain"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestAEADManagerService_CreateCipher(t *testing.T) {
	manager := NewAEADManager()
	key := randomKey(t)

	t.Run("create AES-GCM cipher", func(t *testing.T) {
		c, err := manager.CreateCipher(key, cryptoDomain.AESGCM)
		require.NoError(t, err)
		assert.IsType(t, &AESGCMCipher{}, c)
	})

	t.Run("create ChaCha20-Poly1305 cipher", func(t *testing.T) {
		c, err := manager.CreateCipher(key, cryptoDomain.ChaCha20)
		require.NoError(t, err)
		assert.IsType(t, &ChaCha20Poly1305Cipher{}, c)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		c, err := manager.CreateCipher(key, cryptoDomain.Algorithm("AES-GCM"))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
		assert.Nil(t, c)
	})

	t.Run("invalid key size", func(t *testing.T) {
		for _, size := range []int{0, 16, 31, 33, 64} {
			c, err := manager.CreateCipher(make([]byte, size), cryptoDomain.AESGCM)
			assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
			assert.Nil(t, c)
		}
	})
}

func TestAEAD_SealOpen(t *testing.T) {
	manager := NewAEADManager()
	key := randomKey(t)

	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			c, err := manager.CreateCipher(key, alg)
			require.NoError(t, err)

			plaintext := []byte("123-45-6789")
			nonce, ciphertext, err := c.Seal(plaintext)
			require.NoError(t, err)
			assert.Len(t, nonce, cryptoDomain.NonceSize)
			assert.Len(t, ciphertext, len(plaintext)+cryptoDomain.TagSize)

			decrypted, err := c.Open(nonce, ciphertext)
			require.NoError(t, err)
			assert.Equal(t, plaintext, decrypted)

			nonce2, _, err := c.Seal(plaintext)
			require.NoError(t, err)
			assert.NotEqual(t, nonce, nonce2)

			tampered := append([]byte(nil), ciphertext...)
			tampered[0] ^= 0x01
			_, err = c.Open(nonce, tampered)
			assert.Error(t, err)

			_, err = c.Open(nonce[:4], ciphertext)
			assert.Error(t, err)

			other, err := manager.CreateCipher(randomKey(t), alg)
			require.NoError(t, err)
			_, err = other.Open(nonce, ciphertext)
			assert.Error(t, err)
		})
	}
}
