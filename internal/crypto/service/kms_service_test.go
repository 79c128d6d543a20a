package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"gocloud.dev/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/phivault/internal/crypto/domain"
)

// generateLocalSecretsURI generates a base64key:// URI for testing.
func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func TestKMSService_OpenKeeper(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()

	t.Run("Success_LocalSecrets", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, generateLocalSecretsURI(t))
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, keeper.Close())
		}()

		_, ok := keeper.(*secrets.Keeper)
		assert.True(t, ok, "keeper should be *secrets.Keeper")
	})

	t.Run("Error_InvalidURI", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, "invalid://uri")
		assert.Error(t, err)
		assert.Nil(t, keeper)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
	})
}

func TestWrapUnwrapSecret(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()
	keyURI := generateLocalSecretsURI(t)

	secret := make([]byte, 32)
	_, err := rand.Read(secret)
	require.NoError(t, err)

	t.Run("Success_RoundTrip", func(t *testing.T) {
		wrapped, err := WrapSecret(ctx, kmsService, keyURI, secret)
		require.NoError(t, err)
		assert.NotEqual(t, secret, wrapped)

		unwrapped, err := UnwrapSecret(ctx, kmsService, keyURI, wrapped)
		require.NoError(t, err)
		assert.Equal(t, secret, unwrapped)
	})

	t.Run("Error_WrongKey", func(t *testing.T) {
		wrapped, err := WrapSecret(ctx, kmsService, keyURI, secret)
		require.NoError(t, err)

		_, err = UnwrapSecret(ctx, kmsService, generateLocalSecretsURI(t), wrapped)
		assert.ErrorIs(t, err, cryptoDomain.ErrConfiguration)
	})

	t.Run("Error_InvalidURI", func(t *testing.T) {
		_, err := UnwrapSecret(ctx, kmsService, "invalid://uri", []byte("x"))
		assert.ErrorIs(t, err, cryptoDomain.ErrConfiguration)
	})
}
