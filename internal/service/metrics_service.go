package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/consultation-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	cacheLatency       prometheus.Observer
	cacheWrite         prometheus.Observer
	cacheHitRatio      prometheus.Gauge
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	storeQueryDuration *prometheus.HistogramVec
	storeErrors        *prometheus.CounterVec
	fetchedRecords     prometheus.Histogram
	coalesced          prometheus.Counter
	stale              *prometheus.CounterVec
	malformed          prometheus.Counter
	truncated          *prometheus.CounterVec

	cacheHitCount           uint64
	cacheMissCount          uint64
	requestCount            uint64
	requestDurationTotal    uint64
	storeQueryCount         uint64
	storeQueryDurationTotal uint64
	coalescedCount          uint64
	staleCount              uint64
	malformedCount          uint64
	truncatedCount          uint64
}

// NewMetricsService registers the consultation engine collectors on a private registry.
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
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
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

	storeQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "consultation_store_query_duration_seconds",
		Help:    "Duration of record store reads",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consultation_store_errors_total",
		Help: "Record store reads that failed",
	}, []string{"query"})

	fetchedRecords := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "consultation_fetched_records",
		Help:    "Number of records returned per remote fetch",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 200, 500},
	})

	coalesced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consultation_coalesced_fetches_total",
		Help: "Fetches served by an identical in-flight fetch",
	})

	stale := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consultation_stale_requests_total",
		Help: "Responses discarded because a newer request superseded them",
	}, []string{"view"})

	malformed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consultation_malformed_records_total",
		Help: "Records skipped for missing a required field",
	})

	truncated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consultation_truncated_fetches_total",
		Help: "Fetches that reached the safety cap",
	}, []string{"view"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		storeQueryDuration, storeErrors, fetchedRecords, coalesced, stale, malformed, truncated, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		cacheLatency:       cacheLatency,
		cacheWrite:         cacheWrite,
		cacheHitRatio:      cacheHitRatio,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
		storeQueryDuration: storeQueryDuration,
		storeErrors:        storeErrors,
		fetchedRecords:     fetchedRecords,
		coalesced:          coalesced,
		stale:              stale,
		malformed:          malformed,
		truncated:          truncated,
	}
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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
	labelStatus := strconv.Itoa(status)
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
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveStoreQuery records the timing and outcome of a record store read.
func (m *MetricsService) ObserveStoreQuery(label string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	if err != nil {
		m.storeErrors.WithLabelValues(label).Inc()
	}
	atomic.AddUint64(&m.storeQueryCount, 1)
	atomic.AddUint64(&m.storeQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveFetchedRecords records how many records one remote fetch returned.
func (m *MetricsService) ObserveFetchedRecords(count int) {
	if m == nil {
		return
	}
	m.fetchedRecords.Observe(float64(count))
}

// RecordCoalescedFetch counts a fetch that shared an in-flight result.
func (m *MetricsService) RecordCoalescedFetch() {
	if m == nil {
		return
	}
	m.coalesced.Inc()
	atomic.AddUint64(&m.coalescedCount, 1)
}

// RecordStaleRequest counts a discarded superseded response.
func (m *MetricsService) RecordStaleRequest(view string) {
	if m == nil {
		return
	}
	m.stale.WithLabelValues(view).Inc()
	atomic.AddUint64(&m.staleCount, 1)
}

// RecordMalformedRecords counts records skipped for missing required fields.
func (m *MetricsService) RecordMalformedRecords(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.malformed.Add(float64(count))
	atomic.AddUint64(&m.malformedCount, uint64(count))
}

// RecordTruncatedFetch counts a fetch for view that returned as many records as its cap allowed.
func (m *MetricsService) RecordTruncatedFetch(view string) {
	if m == nil {
		return
	}
	m.truncated.WithLabelValues(view).Inc()
	atomic.AddUint64(&m.truncatedCount, 1)
}

// Snapshot returns aggregated metrics suitable for the system metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	storeCount := atomic.LoadUint64(&m.storeQueryCount)
	storeDuration := atomic.LoadUint64(&m.storeQueryDurationTotal)

	var cacheRatio float64
	if lookups := hits + misses; lookups > 0 {
		cacheRatio = float64(hits) / float64(lookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgStoreMs float64
	if storeCount > 0 {
		avgStoreMs = float64(storeDuration) / float64(storeCount) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		StoreQueryCount:          storeCount,
		AverageStoreQueryMs:      avgStoreMs,
		CoalescedFetches:         atomic.LoadUint64(&m.coalescedCount),
		StaleRequests:            atomic.LoadUint64(&m.staleCount),
		MalformedRecords:         atomic.LoadUint64(&m.malformedCount),
		TruncatedFetches:         atomic.LoadUint64(&m.truncatedCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
