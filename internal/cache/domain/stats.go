package domain

// Stats is a point-in-time snapshot of decryption cache counters.
type Stats struct {
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	Sets          int64   `json:"sets"`
	Invalidations int64   `json:"invalidations"`
	Errors        int64   `json:"errors"`
	HitRatio      float64 `json:"hit_ratio"`
}

// ComputeHitRatio returns hits/(hits+misses), or 0 before any lookup.
func ComputeHitRatio(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
