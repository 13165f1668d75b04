package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Object Reader metrics
	ObjectRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deltakit_object_requests_total",
			Help: "Total number of Object Reader requests by backend and operation",
		},
		[]string{"backend", "op"},
	)

	ObjectRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deltakit_object_retries_total",
			Help: "Total number of Object Reader retry attempts by backend",
		},
		[]string{"backend"},
	)

	ObjectRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deltakit_object_request_duration_seconds",
			Help:    "Object Reader request duration in seconds by backend and operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)

	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deltakit_cache_hits_total",
			Help: "Total number of byte-range cache hits",
		},
	)

	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deltakit_cache_misses_total",
			Help: "Total number of byte-range cache misses",
		},
	)

	// Log Replayer metrics
	ReplayDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deltakit_replay_duration_seconds",
			Help:    "Time taken to reconstruct a Snapshot in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CommitsReplayedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deltakit_commits_replayed_total",
			Help: "Total number of commit files applied during replay",
		},
	)

	ActionsAppliedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deltakit_actions_applied_total",
			Help: "Total number of actions applied during replay, by kind",
		},
		[]string{"kind"},
	)

	UnknownActionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deltakit_unknown_actions_total",
			Help: "Total number of unrecognized action kinds skipped during replay",
		},
	)

	// Shard Planner metrics
	PlanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deltakit_plan_duration_seconds",
			Help:    "Time taken to produce a ShardManifest in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	GroupsFormedTotal = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deltakit_plan_groups_formed",
			Help:    "Number of co-location groups formed per plan",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
	)

	PlanMaxLoadImbalance = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deltakit_plan_max_load_imbalance_ratio",
			Help:    "Ratio of the heaviest shard's load to the mean load per plan",
			Buckets: []float64{1.0, 1.05, 1.1, 1.25, 1.5, 2.0, 3.0},
		},
	)

	StickyRelocationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deltakit_sticky_relocations_total",
			Help: "Total number of groups relocated away from their preferred shard",
		},
	)
)

func init() {
	prometheus.MustRegister(ObjectRequestsTotal)
	prometheus.MustRegister(ObjectRetriesTotal)
	prometheus.MustRegister(ObjectRequestDuration)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)

	prometheus.MustRegister(ReplayDuration)
	prometheus.MustRegister(CommitsReplayedTotal)
	prometheus.MustRegister(ActionsAppliedTotal)
	prometheus.MustRegister(UnknownActionsTotal)

	prometheus.MustRegister(PlanDuration)
	prometheus.MustRegister(GroupsFormedTotal)
	prometheus.MustRegister(PlanMaxLoadImbalance)
	prometheus.MustRegister(StickyRelocationsTotal)
}

// Handler returns the Prometheus HTTP handler, exposed by callers that want
// to scrape deltakit's metrics (e.g. a wrapping service); the CLI itself
// never starts an HTTP server.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
