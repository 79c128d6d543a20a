// Package domain defines decryption cache entries, statistics and errors.
package domain

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"

	phiDomain "github.com/allisson/phivault/internal/phi/domain"
)

// CacheEntry is one cached plaintext together with the context that produced it.
//
// An entry is only served to a caller whose context fingerprint matches, and only while
// CachedAt+TTL has not passed.
type CacheEntry struct {
	Key                string                     `msgpack:"k"`
	Plaintext          string                     `msgpack:"p"`
	CachedAt           time.Time                  `msgpack:"c"`
	TTL                time.Duration              `msgpack:"t"`
	Sensitivity        phiDomain.SensitivityLevel `msgpack:"s"`
	ContextFingerprint string                     `msgpack:"f"`
}

// ExpiresAt returns the instant the entry stops being servable.
func (e *CacheEntry) ExpiresAt() time.Time {
	return e.CachedAt.Add(e.TTL)
}

// Expired reports whether the entry has expired at now.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt())
}

// Marshal encodes the entry for the backing store.
func (e *CacheEntry) Marshal() ([]byte, error) {
	return msgpack.Marshal(e)
}

// UnmarshalEntry decodes an entry read from the backing store.
func UnmarshalEntry(data []byte) (*CacheEntry, error) {
	var entry CacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return nil, ErrCorruptEntry
	}
	return &entry, nil
}
