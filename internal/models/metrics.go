package models

import "time"

// SystemMetrics is a lightweight snapshot of runtime counters served by the
// stats endpoint, complementing the Prometheus scrape surface.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	JobsSubmitted            uint64    `json:"jobs_submitted"`
	JobsCompleted            uint64    `json:"jobs_completed"`
	JobsFailed               uint64    `json:"jobs_failed"`
	JobsCancelled            uint64    `json:"jobs_cancelled"`
	RecordsExtracted         uint64    `json:"records_extracted"`
	DuplicatesDetected       uint64    `json:"duplicates_detected"`
	ActiveJobs               int       `json:"active_jobs"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// SystemCounts aggregates table-level totals for the stats endpoint.
type SystemCounts struct {
	Collections int `db:"collections" json:"collections"`
	Records     int `db:"records" json:"records"`
	ActiveJobs  int `db:"active_jobs" json:"active_jobs"`
}
