package service

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/step-challenge-api/internal/models"
)

const metricsNamespace = "step_challenge"

// Submission outcomes recorded by the submissions counter.
const (
	SubmissionAccepted   = "accepted"
	SubmissionInvalid    = "invalid"
	SubmissionDuplicate  = "duplicate"
	SubmissionStoreError = "store_error"
)

// counter pairs an atomic total for the admin snapshot with its Prometheus series.
type counter struct {
	n    uint64
	prom prometheus.Counter
}

func (c *counter) inc() {
	atomic.AddUint64(&c.n, 1)
	c.prom.Inc()
}

func (c *counter) load() uint64 { return atomic.LoadUint64(&c.n) }

// timer accumulates count and total duration for averages.
type timer struct {
	count uint64
	nanos uint64
}

func (t *timer) add(d time.Duration) {
	atomic.AddUint64(&t.count, 1)
	atomic.AddUint64(&t.nanos, uint64(d.Nanoseconds()))
}

func (t *timer) averageMs() (uint64, float64) {
	count := atomic.LoadUint64(&t.count)
	if count == 0 {
		return 0, 0
	}
	return count, float64(atomic.LoadUint64(&t.nanos)) / float64(count) / float64(time.Millisecond)
}

// MetricsService owns the Prometheus registry and keeps running totals for the
// admin metrics endpoint. A nil *MetricsService records nothing.
type MetricsService struct {
	handler http.Handler

	requestDuration *prometheus.HistogramVec
	storeDuration   *prometheus.HistogramVec
	storeFailuresBy *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram

	requests      timer
	storeOps      timer
	storeFailures uint64

	cacheHits, cacheMisses, cacheRefreshes counter
	submissions                            map[string]*counter
}

// NewMetricsService registers every collector on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	m := &MetricsService{
		handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		storeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "record_store_operation_seconds",
			Help:      "Whole-document record store loads and saves.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		storeFailuresBy: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "record_store_failures_total",
			Help:      "Failed record store operations.",
		}, []string{"operation"}),
		cacheLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "leaderboard_cache_lookup_seconds",
			Help:      "Leaderboard cache lookup latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheWrite: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "leaderboard_cache_store_seconds",
			Help:      "Leaderboard cache write latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	lookups := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "leaderboard_cache_lookups_total",
		Help:      "Leaderboard cache lookups by result.",
	}, []string{"result"})
	m.cacheHits.prom = lookups.WithLabelValues("hit")
	m.cacheMisses.prom = lookups.WithLabelValues("miss")
	m.cacheRefreshes.prom = factory.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "leaderboard_refreshes_total",
		Help:      "Completed background leaderboard refreshes.",
	})

	submissions := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "step_submissions_total",
		Help:      "Step submissions by outcome.",
	}, []string{"outcome"})
	m.submissions = make(map[string]*counter, 4)
	for _, outcome := range []string{SubmissionAccepted, SubmissionInvalid, SubmissionDuplicate, SubmissionStoreError} {
		m.submissions[outcome] = &counter{prom: submissions.WithLabelValues(outcome)}
	}

	return m
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
	m.requests.add(duration)
}

// RecordCacheOperation records a leaderboard cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.inc()
		return
	}
	m.cacheMisses.inc()
}

// ObserveCacheWrite records a leaderboard cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordRefresh counts a completed background leaderboard refresh.
func (m *MetricsService) RecordRefresh() {
	if m == nil {
		return
	}
	m.cacheRefreshes.inc()
}

// ObserveStoreOperation records a record store load or save.
func (m *MetricsService) ObserveStoreOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.storeOps.add(duration)
	if err != nil {
		m.storeFailuresBy.WithLabelValues(operation).Inc()
		atomic.AddUint64(&m.storeFailures, 1)
	}
}

// RecordSubmission counts a submission attempt by outcome. Unknown outcomes are ignored.
func (m *MetricsService) RecordSubmission(outcome string) {
	if m == nil {
		return
	}
	if c, ok := m.submissions[outcome]; ok {
		c.inc()
	}
}

// Snapshot returns the running totals for the admin metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}

	requests, requestAvg := m.requests.averageMs()
	storeOps, storeAvg := m.storeOps.averageMs()
	hits, misses := m.cacheHits.load(), m.cacheMisses.load()

	var ratio float64
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}

	return models.SystemMetrics{
		Requests: models.RequestMetrics{Total: requests, AverageDurationMs: requestAvg},
		Cache: models.CacheMetrics{
			Hits:      hits,
			Misses:    misses,
			HitRatio:  ratio,
			Refreshes: m.cacheRefreshes.load(),
		},
		Store: models.StoreMetrics{
			Operations:        storeOps,
			Failures:          atomic.LoadUint64(&m.storeFailures),
			AverageDurationMs: storeAvg,
		},
		Submissions: models.SubmissionMetrics{
			Accepted:   m.submissions[SubmissionAccepted].load(),
			Invalid:    m.submissions[SubmissionInvalid].load(),
			Duplicate:  m.submissions[SubmissionDuplicate].load(),
			StoreError: m.submissions[SubmissionStoreError].load(),
		},
		GeneratedAt: time.Now().UTC(),
	}
}
