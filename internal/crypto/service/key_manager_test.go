package service

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/phivault/internal/crypto/domain"
)

func zeroKeyMaterial(t *testing.T) *cryptoDomain.KeyMaterial {
	t.Helper()
	km, err := cryptoDomain.LoadKeyMaterial(
		base64.StdEncoding.EncodeToString(make([]byte, 32)),
		base64.StdEncoding.EncodeToString(make([]byte, 16)),
	)
	require.NoError(t, err)
	return km
}

func TestNewKeyManager(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		km, err := NewKeyManager(cryptoDomain.MinKDFIterations)
		require.NoError(t, err)
		assert.NotNil(t, km)
	})

	t.Run("Error_TooFewIterations", func(t *testing.T) {
		km, err := NewKeyManager(1000)
		assert.ErrorIs(t, err, cryptoDomain.ErrConfiguration)
		assert.Nil(t, km)
	})
}

func TestKeyManagerService_DeriveWorkingKey(t *testing.T) {
	km, err := NewKeyManager(cryptoDomain.MinKDFIterations)
	require.NoError(t, err)

	t.Run("Success_Deterministic", func(t *testing.T) {
		first, err := km.DeriveWorkingKey(zeroKeyMaterial(t))
		require.NoError(t, err)
		second, err := km.DeriveWorkingKey(zeroKeyMaterial(t))
		require.NoError(t, err)

		assert.Len(t, first.Bytes(), cryptoDomain.KeySize)
		assert.Equal(t, first.Bytes(), second.Bytes())
		assert.NotEqual(t, make([]byte, cryptoDomain.KeySize), first.Bytes())
	})

	t.Run("Success_DifferentSaltDifferentKey", func(t *testing.T) {
		first, err := km.DeriveWorkingKey(zeroKeyMaterial(t))
		require.NoError(t, err)

		other, err := cryptoDomain.NewKeyMaterial(make([]byte, 32), bytes.Repeat([]byte{1}, 16))
		require.NoError(t, err)
		second, err := km.DeriveWorkingKey(other)
		require.NoError(t, err)

		assert.NotEqual(t, first.Bytes(), second.Bytes())
	})

	t.Run("Success_IterationsChangeKey", func(t *testing.T) {
		stronger, err := NewKeyManager(cryptoDomain.MinKDFIterations + 1)
		require.NoError(t, err)

		first, err := km.DeriveWorkingKey(zeroKeyMaterial(t))
		require.NoError(t, err)
		second, err := stronger.DeriveWorkingKey(zeroKeyMaterial(t))
		require.NoError(t, err)

		assert.NotEqual(t, first.Bytes(), second.Bytes())
	})

	t.Run("Error_NilMaterial", func(t *testing.T) {
		wk, err := km.DeriveWorkingKey(nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrConfiguration)
		assert.Nil(t, wk)
	})

	t.Run("Error_ClosedMaterial", func(t *testing.T) {
		material := zeroKeyMaterial(t)
		material.Close()

		wk, err := km.DeriveWorkingKey(material)
		assert.ErrorIs(t, err, cryptoDomain.ErrConfiguration)
		assert.Nil(t, wk)
	})
}
