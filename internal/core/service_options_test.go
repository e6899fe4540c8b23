package core

import (
	"context"
	"testing"
	"time"

	"aquacore/pkg/domain"
)

type logLine struct {
	level string
	msg   string
}

type captureLogger struct {
	lines []logLine
}

func (l *captureLogger) Debug(msg string, _ ...any) {
	l.lines = append(l.lines, logLine{level: "debug", msg: msg})
}

func (l *captureLogger) Info(msg string, _ ...any) {
	l.lines = append(l.lines, logLine{level: "info", msg: msg})
}

func (l *captureLogger) Warn(msg string, _ ...any) {
	l.lines = append(l.lines, logLine{level: "warn", msg: msg})
}

func (l *captureLogger) Error(msg string, _ ...any) {
	l.lines = append(l.lines, logLine{level: "error", msg: msg})
}

func (l *captureLogger) has(level, msg string) bool {
	for _, line := range l.lines {
		if line.level == level && line.msg == msg {
			return true
		}
	}
	return false
}

type warnRule struct{}

func (warnRule) Name() string { return "always_warn" }

func (warnRule) Evaluate(context.Context, domain.RuleView, []domain.Change) (domain.Result, error) {
	return domain.Result{Violations: []domain.Violation{{
		Rule:     "always_warn",
		Severity: domain.SeverityWarn,
		Message:  "advisory only",
	}}}, nil
}

func TestDefaultServiceOptionsAreSafe(t *testing.T) {
	opts := defaultServiceOptions()
	if opts.clock == nil {
		t.Fatalf("expected default clock")
	}
	if opts.logger == nil || opts.audit == nil || opts.metrics == nil || opts.tracer == nil {
		t.Fatalf("expected non-nil observability defaults: %+v", opts)
	}
	if loc := opts.clock.Now().Location(); loc != time.UTC {
		t.Fatalf("expected default clock in UTC, got %v", loc)
	}
}

func TestNilOptionValuesKeepDefaults(t *testing.T) {
	svc := NewInMemoryService(nil,
		WithClock(nil),
		WithLogger(nil),
		WithAuditRecorder(nil),
		WithMetricsRecorder(nil),
		WithTracer(nil),
		nil,
	)
	if svc.clock == nil || svc.logger == nil || svc.audit == nil || svc.metrics == nil || svc.tracer == nil {
		t.Fatalf("expected nil option values to be ignored")
	}
	if _, _, err := svc.CreateSpecies(context.Background(), domain.Species{CommonName: "Cherry Barb", MaxSizeCm: 5}); err != nil {
		t.Fatalf("create species: %v", err)
	}
}

func TestLoggerObservesCommit(t *testing.T) {
	logger := &captureLogger{}
	svc := NewInMemoryService(NewRulesEngine(), WithLogger(logger))
	if _, _, err := svc.CreateSpecies(context.Background(), domain.Species{CommonName: "Harlequin Rasbora", MaxSizeCm: 5}); err != nil {
		t.Fatalf("create species: %v", err)
	}
	if !logger.has("debug", "operation committed") {
		t.Fatalf("expected debug commit line, got %+v", logger.lines)
	}
}

func TestLoggerObservesWarnings(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(warnRule{})
	logger := &captureLogger{}
	svc := NewInMemoryService(engine, WithLogger(logger))

	_, res, err := svc.CreateSpecies(context.Background(), domain.Species{CommonName: "Rosy Tetra", MaxSizeCm: 4})
	if err != nil {
		t.Fatalf("create species: %v", err)
	}
	if len(res.Violations) != 1 || res.Violations[0].Rule != "always_warn" {
		t.Fatalf("expected warn violation, got %+v", res.Violations)
	}
	if !logger.has("warn", "operation committed with warnings") {
		t.Fatalf("expected warn commit line, got %+v", logger.lines)
	}
}

func TestLoggerObservesFailures(t *testing.T) {
	logger := &captureLogger{}
	svc := NewInMemoryService(NewRulesEngine(), WithLogger(logger))
	if _, err := svc.DeleteSpecies(context.Background(), "no-such-id"); err == nil {
		t.Fatalf("expected delete of missing species to fail")
	}
	if !logger.has("error", "operation failed") {
		t.Fatalf("expected error line, got %+v", logger.lines)
	}
}
