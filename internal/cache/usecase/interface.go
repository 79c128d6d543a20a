// Package usecase implements the context-aware, sensitivity-tiered decryption cache.
package usecase

import (
	"context"
	"time"

	cacheDomain "github.com/allisson/phivault/internal/cache/domain"
	phiDomain "github.com/allisson/phivault/internal/phi/domain"
)

// Store is a key/value backend with per-key expiry and glob deletion.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes a single key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// DeleteMatching removes every key matching the glob pattern and returns how many.
	DeleteMatching(ctx context.Context, pattern string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// DecryptFunc decrypts envelope on a cache miss.
type DecryptFunc func(ctx context.Context, envelope string) (string, error)

// DecryptionCache serves decrypted field values scoped to the caller's context.
type DecryptionCache interface {
	// GetOrDecrypt returns the cached plaintext for envelope as seen from fc, or calls
	// decrypt and caches its result. Store failures are treated as misses; decrypt errors
	// are returned unchanged and never cached.
	GetOrDecrypt(ctx context.Context, envelope string, fc phiDomain.FieldContext, decrypt DecryptFunc) (string, error)

	// Invalidate removes every entry of one record within fc's organization, for all users,
	// resource types and fields. resourceType is recorded in the audit event only.
	Invalidate(ctx context.Context, resourceID, resourceType string, fc phiDomain.FieldContext) (int64, error)

	// InvalidateUser removes every entry cached for a user within an organization.
	InvalidateUser(ctx context.Context, userID, organizationID string) (int64, error)

	// Metrics returns a snapshot of the counters.
	Metrics() cacheDomain.Stats

	// Healthy pings the backing store.
	Healthy(ctx context.Context) error
}
