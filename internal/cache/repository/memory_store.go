// Package repository provides the backing stores of the decryption cache.
package repository

import (
	"context"
	"sync"
	"time"

	"github.com/gobwas/glob"

	apperrors "github.com/allisson/phivault/internal/errors"
)

// keySeparator keeps a glob wildcard inside a single key segment.
const keySeparator = ':'

type memoryItem struct {
	value   []byte
	expires time.Time
}

// MemoryStore is a process-local store. Expired items are dropped lazily on Get and
// actively by a background sweeper started with StartSweeper.
type MemoryStore struct {
	mu     sync.Mutex
	items  map[string]memoryItem
	now    func() time.Time
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
	closed bool
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSweeper runs Sweep every interval until Close is called. It may be called once.
func (s *MemoryStore) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.cancel != nil || s.closed {
		s.mu.Unlock()
		cancel()
		return
	}
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Get returns the value for key, or false when it is absent or expired.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false, apperrors.Wrap(apperrors.ErrUnavailable, "memory store closed")
	}

	item, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(item.expires) {
		delete(s.items, key)
		return nil, false, nil
	}
	return item.value, true, nil
}

// Set stores value for ttl. A non-positive ttl is rejected.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "ttl must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return apperrors.Wrap(apperrors.ErrUnavailable, "memory store closed")
	}
	s.items[key] = memoryItem{value: value, expires: s.now().Add(ttl)}
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return apperrors.Wrap(apperrors.ErrUnavailable, "memory store closed")
	}
	delete(s.items, key)
	return nil
}

// DeleteMatching removes every key matching the glob pattern and returns how many were
// removed. A '*' never crosses a ':' segment boundary.
func (s *MemoryStore) DeleteMatching(_ context.Context, pattern string) (int64, error) {
	g, err := glob.Compile(pattern, keySeparator)
	if err != nil {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid pattern %q", pattern)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, apperrors.Wrap(apperrors.ErrUnavailable, "memory store closed")
	}

	var removed int64
	for key := range s.items {
		if g.Match(key) {
			delete(s.items, key)
			removed++
		}
	}
	return removed, nil
}

// Sweep drops every expired item and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for key, item := range s.items {
		if !now.Before(item.expires) {
			delete(s.items, key)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of stored items, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Ping fails once the store is closed.
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperrors.Wrap(apperrors.ErrUnavailable, "memory store closed")
	}
	return nil
}

// Close stops the sweeper and drops every item.
func (s *MemoryStore) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		cancel := s.cancel
		s.closed = true
		s.items = make(map[string]memoryItem)
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		s.wg.Wait()
	})
	return nil
}
