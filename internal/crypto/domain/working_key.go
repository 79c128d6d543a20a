package domain

import "sync"

// WorkingKey is the 32-byte symmetric key derived from KeyMaterial.
//
// It is read-only after construction and safe to share between goroutines. Close zeroes
// the key; a closed key returns nil from Bytes.
type WorkingKey struct {
	mu  sync.RWMutex
	key []byte
}

// NewWorkingKey takes ownership of key, which must be exactly KeySize bytes.
func NewWorkingKey(key []byte) (*WorkingKey, error) {
	if len(key) != KeySize {
		Zero(key)
		return nil, ErrInvalidKeySize
	}
	return &WorkingKey{key: key}, nil
}

// Bytes returns the raw key. Callers must not modify or retain it past Close.
func (w *WorkingKey) Bytes() []byte {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.key
}

// Close zeroes the key material.
func (w *WorkingKey) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	Zero(w.key)
	w.key = nil
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	clear(b)
}
