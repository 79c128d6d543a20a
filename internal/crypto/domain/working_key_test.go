package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkingKey(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		wk, err := NewWorkingKey(bytes.Repeat([]byte{5}, KeySize))
		require.NoError(t, err)
		assert.Len(t, wk.Bytes(), KeySize)
	})

	t.Run("Error_InvalidKeySize", func(t *testing.T) {
		key := bytes.Repeat([]byte{5}, 16)
		wk, err := NewWorkingKey(key)
		assert.ErrorIs(t, err, ErrInvalidKeySize)
		assert.Nil(t, wk)
		assert.Equal(t, make([]byte, 16), key)
	})
}

func TestWorkingKey_Close(t *testing.T) {
	key := bytes.Repeat([]byte{5}, KeySize)
	wk, err := NewWorkingKey(key)
	require.NoError(t, err)

	wk.Close()
	assert.Nil(t, wk.Bytes())
	assert.Equal(t, make([]byte, KeySize), key)
}

func TestZero(t *testing.T) {
	t.Run("zero non-empty slice", func(t *testing.T) {
		b := []byte{1, 2, 3, 4, 5}
		Zero(b)
		assert.Equal(t, []byte{0, 0, 0, 0, 0}, b)
	})

	t.Run("zero nil slice", func(t *testing.T) {
		var b []byte
		assert.NotPanics(t, func() { Zero(b) })
	})
}
