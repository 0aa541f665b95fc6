// Package metrics provides store instrumentation recorders.
//
// Two implementations of store.Recorder ship here: InMemoryRecorder keeps
// counts in memory with no export path, and PrometheusRecorder exports
// counters and histograms through prometheus/client_golang. Both are wired
// into a store with store.WithRecorder.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-drift/statekit/pkg/store"
)

const (
	namespace          = "statekit"
	subsystemStore     = "store"
	subsystemObservers = "observers"
)

// InMemoryRecorder counts store events without exporting them. All
// methods are safe for concurrent use.
type InMemoryRecorder struct {
	commits       atomic.Int64
	rejections    atomic.Int64
	trustedWrites atomic.Int64
	notifyCycles  atomic.Int64
	observerFails atomic.Int64
}

// NewInMemoryRecorder returns a zeroed recorder.
func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// RecordCommit counts committed and rejected commits.
func (r *InMemoryRecorder) RecordCommit(outcome string, _ time.Duration) {
	if outcome == store.OutcomeCommitted {
		r.commits.Add(1)
	} else {
		r.rejections.Add(1)
	}
}

// RecordTrustedWrite counts trusted writes.
func (r *InMemoryRecorder) RecordTrustedWrite(string) {
	r.trustedWrites.Add(1)
}

// RecordNotify counts fan-out cycles and observer failures.
func (r *InMemoryRecorder) RecordNotify(_ time.Duration, failures int) {
	r.notifyCycles.Add(1)
	r.observerFails.Add(int64(failures))
}

// Commits returns the number of successful commits.
func (r *InMemoryRecorder) Commits() int64 { return r.commits.Load() }

// Rejections returns the number of rejected commits, all reasons combined.
func (r *InMemoryRecorder) Rejections() int64 { return r.rejections.Load() }

// TrustedWrites returns the number of trusted writes.
func (r *InMemoryRecorder) TrustedWrites() int64 { return r.trustedWrites.Load() }

// NotifyCycles returns the number of fan-out cycles driven.
func (r *InMemoryRecorder) NotifyCycles() int64 { return r.notifyCycles.Load() }

// ObserverFailures returns the total observer panics captured.
func (r *InMemoryRecorder) ObserverFailures() int64 { return r.observerFails.Load() }

// PrometheusRecorder exports store events as Prometheus metrics:
//
//   - statekit_store_commits_total{outcome}: commit count by outcome
//   - statekit_store_commit_duration_seconds{outcome}: commit latency
//   - statekit_store_trusted_writes_total{field}: trusted write count
//   - statekit_observers_notify_duration_seconds: fan-out latency
//   - statekit_observers_failures_total: observer panics captured
type PrometheusRecorder struct {
	commits        *prometheus.CounterVec
	commitDuration *prometheus.HistogramVec
	trustedWrites  *prometheus.CounterVec
	notifyDuration prometheus.Histogram
	observerFails  prometheus.Counter
}

// NewPrometheusRecorder builds a recorder and registers its collectors
// with reg. Pass prometheus.DefaultRegisterer for the process default.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemStore,
			Name:      "commits_total",
			Help:      "Commit calls by outcome.",
		}, []string{"outcome"}),
		commitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemStore,
			Name:      "commit_duration_seconds",
			Help:      "Commit duration from call to resolution.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		trustedWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemStore,
			Name:      "trusted_writes_total",
			Help:      "Trusted writes by field.",
		}, []string{"field"}),
		notifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemObservers,
			Name:      "notify_duration_seconds",
			Help:      "Fan-out cycle duration.",
			Buckets:   prometheus.DefBuckets,
		}),
		observerFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemObservers,
			Name:      "failures_total",
			Help:      "Observer panics captured during fan-out.",
		}),
	}
	for _, c := range []prometheus.Collector{
		r.commits, r.commitDuration, r.trustedWrites, r.notifyDuration, r.observerFails,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RecordCommit implements store.Recorder.
func (r *PrometheusRecorder) RecordCommit(outcome string, duration time.Duration) {
	r.commits.WithLabelValues(outcome).Inc()
	r.commitDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordTrustedWrite implements store.Recorder.
func (r *PrometheusRecorder) RecordTrustedWrite(field string) {
	r.trustedWrites.WithLabelValues(field).Inc()
}

// RecordNotify implements store.Recorder.
func (r *PrometheusRecorder) RecordNotify(duration time.Duration, failures int) {
	r.notifyDuration.Observe(duration.Seconds())
	if failures > 0 {
		r.observerFails.Add(float64(failures))
	}
}
