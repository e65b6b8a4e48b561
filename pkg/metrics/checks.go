package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckMetrics records durations and outcomes per check.
type CheckMetrics struct {
	duration *prometheus.HistogramVec
	passed   *prometheus.CounterVec
	failed   *prometheus.CounterVec
}

// NewCheckMetrics registers the check metrics on the provided registerer.
func NewCheckMetrics(reg prometheus.Registerer) *CheckMetrics {
	if reg == nil {
		return &CheckMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "check_duration_seconds",
		Help:    "Duration of preflight checks in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"suite", "check"})
	passed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "check_passed",
		Help: "Checks that passed.",
	}, []string{"suite", "check"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "check_failed",
		Help: "Checks that failed.",
	}, []string{"suite", "check"})
	reg.MustRegister(duration, passed, failed)
	return &CheckMetrics{
		duration: duration,
		passed:   passed,
		failed:   failed,
	}
}

// ObserveDuration records the duration for the named check.
func (c *CheckMetrics) ObserveDuration(suite, check string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(suite), normalizeLabel(check)).Observe(duration.Seconds())
}

// IncPassed increments the pass counter for the named check.
func (c *CheckMetrics) IncPassed(suite, check string) {
	if c == nil || c.passed == nil {
		return
	}
	c.passed.WithLabelValues(normalizeLabel(suite), normalizeLabel(check)).Inc()
}

// IncFailed increments the failure counter for the named check.
func (c *CheckMetrics) IncFailed(suite, check string) {
	if c == nil || c.failed == nil {
		return
	}
	c.failed.WithLabelValues(normalizeLabel(suite), normalizeLabel(check)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
