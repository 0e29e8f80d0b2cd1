package cache

import "fmt"

// Snapshot is the aggregate cache report.
type Snapshot struct {
	Hits          int64   `json:"cache_hits"`
	Misses        int64   `json:"cache_misses"`
	HitRate       float64 `json:"hit_rate_percent"`
	HitRateText   string  `json:"hit_rate"`
	TotalRequests int64   `json:"total_requests"`
	MemoryUsed    string  `json:"memory_used"`
	TotalKeys     int64   `json:"total_keys"`
}

// newSnapshot derives the hit rate (percent, 0 when no requests were seen).
func newSnapshot(hits, misses int64, info Info) Snapshot {
	total := hits + misses
	rate := 0.0
	if total > 0 {
		rate = float64(hits) / float64(total) * 100
	}
	return Snapshot{
		Hits:          hits,
		Misses:        misses,
		HitRate:       rate,
		HitRateText:   fmt.Sprintf("%.2f%%", rate),
		TotalRequests: total,
		MemoryUsed:    info.MemoryUsed,
		TotalKeys:     info.Keys,
	}
}
