package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"aquacore/pkg/domain"
)

func TestPrometheusRecorderCountsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	ctx := context.Background()
	rec.Observe(ctx, "create_species", true, 12*time.Millisecond)
	rec.Observe(ctx, "create_species", true, 8*time.Millisecond)
	rec.Observe(ctx, "create_species", false, 3*time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	if got := testutil.ToFloat64(rec.operations.WithLabelValues("create_species", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %g", got)
	}
	if got := testutil.ToFloat64(rec.operations.WithLabelValues("create_species", "error")); got != 1 {
		t.Fatalf("expected 1 error, got %g", got)
	}
	if got := testutil.CollectAndCount(rec.durations, "aquacore_operation_duration_seconds"); got != 1 {
		t.Fatalf("expected single latency series, got %d", got)
	}
}

func TestPrometheusRecorderCountsViolations(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	ctx := context.Background()
	rec.ObserveViolations(ctx, "warn", 3)
	rec.ObserveViolations(ctx, "block", 1)
	rec.ObserveViolations(ctx, "log", 0)

	if got := testutil.ToFloat64(rec.violations.WithLabelValues("warn")); got != 3 {
		t.Fatalf("expected 3 warnings, got %g", got)
	}
	if got := testutil.ToFloat64(rec.violations.WithLabelValues("block")); got != 1 {
		t.Fatalf("expected 1 blocking count, got %g", got)
	}
	if got := testutil.CollectAndCount(rec.violations, "aquacore_rule_violations_total"); got != 2 {
		t.Fatalf("expected zero-count severity to be skipped, got %d series", got)
	}
}

func TestPrometheusRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMetricsRecorder(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestServiceFeedsViolationCountsToRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	engine := NewRulesEngine()
	engine.Register(warnRule{})
	svc := NewInMemoryService(engine, WithMetricsRecorder(rec))

	if _, _, err := svc.CreateSpecies(context.Background(), domain.Species{CommonName: "Glass Catfish", MaxSizeCm: 8}); err != nil {
		t.Fatalf("create species: %v", err)
	}

	if got := testutil.ToFloat64(rec.violations.WithLabelValues("warn")); got != 1 {
		t.Fatalf("expected warn violation recorded, got %g", got)
	}
	if got := testutil.ToFloat64(rec.operations.WithLabelValues("create_species", "success")); got != 1 {
		t.Fatalf("expected operation success recorded, got %g", got)
	}
}
