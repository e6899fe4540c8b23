package core

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports operation counters, latency histograms,
// and rule-violation counts through a prometheus registry, for scrape-based
// deployments. It implements MetricsRecorder.
type PrometheusMetricsRecorder struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	violations *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder registers the collectors with reg. A nil
// registerer falls back to the default registry. Registration fails when a
// collector with the same name is already present, so per-test registries
// should pass their own prometheus.NewRegistry().
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	rec := &PrometheusMetricsRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aquacore_operations_total",
			Help: "Service operations by name and outcome.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aquacore_operation_duration_seconds",
			Help:    "Service operation latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aquacore_rule_violations_total",
			Help: "Rule violations surfaced by committed operations, by severity.",
		}, []string{"severity"}),
	}
	for _, collector := range []prometheus.Collector{rec.operations, rec.durations, rec.violations} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register prometheus collector: %w", err)
		}
	}
	return rec, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveViolations records rule violations by severity.
func (r *PrometheusMetricsRecorder) ObserveViolations(_ context.Context, severity string, count int) {
	if count <= 0 {
		return
	}
	r.violations.WithLabelValues(severity).Add(float64(count))
}

// violationObserver is the optional extension a MetricsRecorder can implement
// to receive per-severity violation counts alongside operation outcomes.
type violationObserver interface {
	ObserveViolations(ctx context.Context, severity string, count int)
}

func (s *Service) observeViolations(ctx context.Context, violations []Violation) {
	observer, ok := s.metrics.(violationObserver)
	if !ok || len(violations) == 0 {
		return
	}
	counts := make(map[Severity]int)
	for _, v := range violations {
		counts[v.Severity]++
	}
	for severity, count := range counts {
		observer.ObserveViolations(ctx, string(severity), count)
	}
}
