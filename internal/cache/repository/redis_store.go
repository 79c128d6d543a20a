package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/allisson/phivault/internal/errors"
)

// scanBatchSize is both the SCAN COUNT hint and the UNLINK batch size.
const scanBatchSize = 500

// RedisStore is a shared store backed by redis. Keys expire server side via SET EX.
type RedisStore struct {
	client     *redis.Client
	ownsClient bool
}

// NewRedisStore wraps an existing client. The caller owns the client lifecycle.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisStoreFromURL creates a client from a redis:// or rediss:// URL. Close closes it.
func NewRedisStoreFromURL(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid REDIS_URL: %v", err)
	}
	return &RedisStore{client: redis.NewClient(opts), ownsClient: true}, nil
}

// Get returns the value for key, or false when it does not exist.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

// Set stores value with a server-side expiry of ttl.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "ttl must be positive")
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key with a single DEL.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// DeleteMatching scans for keys matching pattern and unlinks them in batches.
func (s *RedisStore) DeleteMatching(ctx context.Context, pattern string) (int64, error) {
	var (
		removed int64
		batch   = make([]string, 0, scanBatchSize)
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.client.Unlink(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("redis unlink: %w", err)
		}
		removed += n
		batch = batch[:0]
		return nil
	}

	iter := s.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan: %w", err)
	}
	if err := flush(); err != nil {
		return removed, err
	}
	return removed, nil
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the client when the store created it.
func (s *RedisStore) Close() error {
	if !s.ownsClient {
		return nil
	}
	return s.client.Close()
}
