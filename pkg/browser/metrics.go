package browser

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors for browser sessions.
// A nil *Metrics records nothing.
type Metrics struct {
	operations      *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	policyDecisions *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	snapshotRefs    prometheus.Histogram
	redirectWarns   prometheus.Counter
}

// NewMetrics registers the browser collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "openpaw",
				Subsystem: "browser",
				Name:      "operations_total",
				Help:      "Browser session operations by outcome",
			},
			[]string{"op", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "openpaw",
				Subsystem: "browser",
				Name:      "operation_duration_seconds",
				Help:      "Browser session operation latency",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"op"},
		),
		policyDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "openpaw",
				Subsystem: "browser",
				Name:      "policy_decisions_total",
				Help:      "Domain policy decisions for requested navigations",
			},
			[]string{"decision"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "openpaw",
				Subsystem: "browser",
				Name:      "active_sessions",
				Help:      "Number of launched browser sessions",
			},
		),
		snapshotRefs: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "openpaw",
				Subsystem: "browser",
				Name:      "snapshot_refs",
				Help:      "Interactive elements per snapshot",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		redirectWarns: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "openpaw",
				Subsystem: "browser",
				Name:      "disallowed_navigations_total",
				Help:      "Committed main-frame navigations to disallowed URLs",
			},
		),
	}
}

func (m *Metrics) recordOperation(op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) recordDecision(decision string) {
	if m == nil {
		return
	}
	m.policyDecisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) sessionLaunched() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

func (m *Metrics) sessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

func (m *Metrics) recordSnapshot(refs int) {
	if m == nil {
		return
	}
	m.snapshotRefs.Observe(float64(refs))
}

func (m *Metrics) recordDisallowedNavigation() {
	if m == nil {
		return
	}
	m.redirectWarns.Inc()
}
