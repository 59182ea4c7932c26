package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docuflow/pdf2csv-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the extraction pipeline, and provides lightweight snapshots
// for the stats endpoint.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	jobsTotal       *prometheus.CounterVec
	jobDuration     prometheus.Observer
	batchDuration   prometheus.Observer
	recordsTotal    prometheus.Counter
	duplicatesTotal prometheus.Counter
	activeJobs      prometheus.Gauge

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	jobsSubmitted        uint64
	jobsCompleted        uint64
	jobsFailed           uint64
	jobsCancelled        uint64
	recordsExtracted     uint64
	duplicatesDetected   uint64
	activeJobCount       int64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	jobsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "processing_jobs_total",
		Help: "Processing jobs by terminal status",
	}, []string{"status"})

	jobDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "processing_job_duration_seconds",
		Help:    "Wall time from job pickup to terminal status",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})

	batchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "extraction_batch_duration_seconds",
		Help:    "Duration of a single extraction batch round trip",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	recordsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "records_extracted_total",
		Help: "Total records persisted by the pipeline",
	})

	duplicatesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "duplicates_detected_total",
		Help: "Total records flagged duplicate by the pipeline",
	})

	activeJobs := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "processing_jobs_active",
		Help: "Jobs currently held by a worker",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHitRatio, cacheHits, cacheMisses,
		jobsTotal, jobDuration, batchDuration, recordsTotal, duplicatesTotal, activeJobs, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		jobsTotal:       jobsTotal,
		jobDuration:     jobDuration,
		batchDuration:   batchDuration,
		recordsTotal:    recordsTotal,
		duplicatesTotal: duplicatesTotal,
		activeJobs:      activeJobs,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// JobSubmitted counts an accepted submission.
func (m *MetricsService) JobSubmitted() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.jobsSubmitted, 1)
}

// JobStarted marks a job as picked up by a worker.
func (m *MetricsService) JobStarted() {
	if m == nil {
		return
	}
	m.activeJobs.Inc()
	atomic.AddInt64(&m.activeJobCount, 1)
}

// JobFinished records a terminal outcome and the job's wall time.
func (m *MetricsService) JobFinished(status models.JobStatus, duration time.Duration) {
	if m == nil {
		return
	}
	m.activeJobs.Dec()
	atomic.AddInt64(&m.activeJobCount, -1)
	m.jobsTotal.WithLabelValues(string(status)).Inc()
	m.jobDuration.Observe(duration.Seconds())
	switch status {
	case models.JobStatusCompleted:
		atomic.AddUint64(&m.jobsCompleted, 1)
	case models.JobStatusFailed:
		atomic.AddUint64(&m.jobsFailed, 1)
	case models.JobStatusCancelled:
		atomic.AddUint64(&m.jobsCancelled, 1)
	}
}

// ObserveBatch records one extraction batch round trip and its yield.
func (m *MetricsService) ObserveBatch(duration time.Duration, records, duplicates int) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(duration.Seconds())
	if records > 0 {
		m.recordsTotal.Add(float64(records))
		atomic.AddUint64(&m.recordsExtracted, uint64(records))
	}
	if duplicates > 0 {
		m.duplicatesTotal.Add(float64(duplicates))
		atomic.AddUint64(&m.duplicatesDetected, uint64(duplicates))
	}
}

// Snapshot returns aggregated metrics suitable for the stats endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		JobsSubmitted:            atomic.LoadUint64(&m.jobsSubmitted),
		JobsCompleted:            atomic.LoadUint64(&m.jobsCompleted),
		JobsFailed:               atomic.LoadUint64(&m.jobsFailed),
		JobsCancelled:            atomic.LoadUint64(&m.jobsCancelled),
		RecordsExtracted:         atomic.LoadUint64(&m.recordsExtracted),
		DuplicatesDetected:       atomic.LoadUint64(&m.duplicatesDetected),
		ActiveJobs:               int(atomic.LoadInt64(&m.activeJobCount)),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
