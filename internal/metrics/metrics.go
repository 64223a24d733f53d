// Package metrics holds the Prometheus collectors for habit mutations and
// streak recomputes. A nil *Metrics is valid and records nothing.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/julianstephens/streakline/internal/constants"
)

// Outcome labels for mutations
const (
	OutcomeOK       = "ok"
	OutcomeConflict = "conflict"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type Metrics struct {
	registry          *prometheus.Registry
	mutations         *prometheus.CounterVec
	conflictRetries   *prometheus.CounterVec
	recomputeDuration prometheus.Histogram
	lockWait          prometheus.Histogram
	cacheLookups      *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.AppName,
			Name:      "mutations_total",
			Help:      "Completion log mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		conflictRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.AppName,
			Name:      "conflict_retries_total",
			Help:      "Mutations retried after a serialization conflict.",
		}, []string{"operation"}),
		recomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: constants.AppName,
			Name:      "streak_recompute_duration_seconds",
			Help:      "Time spent reading history and recomputing a streak record.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		lockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: constants.AppName,
			Name:      "habit_lock_wait_seconds",
			Help:      "Time spent waiting for the per-habit mutation lock.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.AppName,
			Name:      "streak_cache_lookups_total",
			Help:      "Streak read cache lookups by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.mutations,
		m.conflictRetries,
		m.recomputeDuration,
		m.lockWait,
		m.cacheLookups,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveMutation(operation, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveRetry(operation string) {
	if m == nil {
		return
	}
	m.conflictRetries.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveRecompute(d time.Duration) {
	if m == nil {
		return
	}
	m.recomputeDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.Observe(d.Seconds())
}

func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Push sends the current values to a Prometheus Pushgateway. The CLI exits
// right after a command, so pull-based scraping never sees it.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if m == nil || url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
