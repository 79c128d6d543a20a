package domain

import (
	"github.com/allisson/phivault/internal/errors"
)

// Decryption cache error definitions.
var (
	// ErrCacheUnavailable indicates the backing store failed or timed out. It never escapes
	// GetOrDecrypt, which treats it as a miss.
	ErrCacheUnavailable = errors.Wrap(errors.ErrUnavailable, "cache unavailable")

	// ErrCorruptEntry indicates a stored value could not be decoded.
	ErrCorruptEntry = errors.Wrap(errors.ErrInternal, "corrupt cache entry")
)
