package authgate

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful credential verifications.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts failed credential verifications.
	MetricLoginFailure
	// MetricTokenIssued counts bearer tokens issued by the stateless pipeline.
	MetricTokenIssued
	// MetricTokenRejected counts bearer tokens that failed verification.
	MetricTokenRejected
	// MetricSessionCreated counts sessions registered by the session pipeline.
	MetricSessionCreated
	// MetricSessionResolved counts session lookups that found a mapping.
	MetricSessionResolved
	// MetricSessionMissing counts session lookups that found no mapping.
	MetricSessionMissing
	// MetricSessionRefreshed counts sliding-window expiry extensions.
	MetricSessionRefreshed
	// MetricSessionInvalidated counts explicit session invalidations.
	MetricSessionInvalidated
	// MetricStoreFallback counts durable-store failures redirected to the
	// fallback store.
	MetricStoreFallback
	// MetricAccountCreationSuccess counts created accounts.
	MetricAccountCreationSuccess
	// MetricAccountCreationDuplicate counts registrations rejected as
	// duplicates.
	MetricAccountCreationDuplicate
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the engine's lock-free counters. All methods are safe for
// concurrent use; a nil or disabled Metrics drops increments.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a Metrics set; increments are no-ops unless enabled.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether increments are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the given counter.
func (m *Metrics) Inc(id MetricID) {
	if !m.Enabled() || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Snapshot returns a copy of every counter value.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snap
}
