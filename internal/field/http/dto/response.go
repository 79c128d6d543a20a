package dto

import (
	cacheDomain "github.com/allisson/phivault/internal/cache/domain"
)

// EncryptFieldResponse carries the sealed envelope. Envelope is "" for absent values.
type EncryptFieldResponse struct {
	Envelope string `json:"envelope"`
}

// DecryptFieldResponse carries the opened value.
type DecryptFieldResponse struct {
	Value string `json:"value"`
}

// InvalidateResponse reports how many cache entries were removed.
type InvalidateResponse struct {
	Removed int64 `json:"removed"`
}

// CacheStatsResponse mirrors the decryption cache counters.
type CacheStatsResponse struct {
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	Sets          int64   `json:"sets"`
	Invalidations int64   `json:"invalidations"`
	Errors        int64   `json:"errors"`
	HitRatio      float64 `json:"hit_ratio"`
}

// MapStatsToResponse converts cache counters into a response.
func MapStatsToResponse(stats cacheDomain.Stats) CacheStatsResponse {
	return CacheStatsResponse(stats)
}
