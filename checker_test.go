package cascade

import (
	"errors"
	"strings"
	"testing"
)

func TestCheckerAllRulesHold(t *testing.T) {
	checker, err := NewChecker([]Rule{
		{Name: "limit range", Expr: "limit > 0 && limit < 100"},
		{Name: "name set", Expr: `name == "demo"`},
	})
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}

	err = checker.Check(map[string]any{"limit": 42, "name": "demo"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestCheckerAggregatesViolations(t *testing.T) {
	checker, err := NewChecker([]Rule{
		{Name: "limit range", Expr: "limit < 100"},
		{Name: "name set", Expr: `name == "demo"`},
	})
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}

	err = checker.Check(map[string]any{"limit": 1000, "name": "other"})
	if err == nil {
		t.Fatal("expected violations")
	}
	msg := err.Error()
	if !strings.Contains(msg, "limit range") || !strings.Contains(msg, "name set") {
		t.Fatalf("missing violations in %q", msg)
	}

	var violation *RuleViolation
	if !errors.As(err, &violation) {
		t.Fatalf("expected a RuleViolation in %v", err)
	}
}

func TestCheckerRequiresBoolean(t *testing.T) {
	checker, err := NewChecker([]Rule{{Name: "not boolean", Expr: "limit + 1"}})
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}
	err = checker.Check(map[string]any{"limit": 1})
	if err == nil {
		t.Fatal("expected a violation for a non-boolean result")
	}
	if !strings.Contains(err.Error(), "want bool") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckerEmptyExpression(t *testing.T) {
	if _, err := NewChecker([]Rule{{Name: "empty"}}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCheckerLogsEvaluations(t *testing.T) {
	var events []EvaluatorLogEvent
	checker, err := NewChecker(
		[]Rule{{Name: "ok", Expr: "true"}, {Name: "bad", Expr: "false"}},
		WithCheckerLogger(EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
			events = append(events, event)
		})),
		WithConfigLabel("app"),
	)
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}

	_ = checker.Check(map[string]any{})
	if len(events) != 2 {
		t.Fatalf("logged %d events, want 2", len(events))
	}
	for _, event := range events {
		if event.Engine != "expr" {
			t.Fatalf("engine = %q", event.Engine)
		}
		if event.Config != "app" {
			t.Fatalf("config = %q", event.Config)
		}
	}
}

func TestCheckerEngineSelection(t *testing.T) {
	checker, err := NewChecker(
		[]Rule{{Name: "limit", Expr: "limit < 100"}},
		WithEngine("cel"),
	)
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}
	if err := checker.Check(map[string]any{"limit": 42}); err != nil {
		t.Fatalf("Check via cel: %v", err)
	}
}
