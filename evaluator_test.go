package cascade

import (
	"fmt"
	"testing"
	"time"
)

func TestExprEvaluatorEvaluate(t *testing.T) {
	evaluator := NewExprEvaluator()
	ctx := CheckContext{Snapshot: map[string]any{"threshold": 10}}

	result, err := evaluator.Evaluate(ctx, "threshold * 2")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result != 20 {
		t.Fatalf("result = %v, want 20", result)
	}
}

func TestExprEvaluatorBuiltins(t *testing.T) {
	evaluator := NewExprEvaluator()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := CheckContext{
		Now:    &now,
		Config: "app",
		Args:   map[string]any{"region": "eu"},
	}

	result, err := evaluator.Evaluate(ctx, `config == "app" && args.region == "eu"`)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result != true {
		t.Fatalf("result = %v, want true", result)
	}
}

func TestExprEvaluatorEmptyExpression(t *testing.T) {
	evaluator := NewExprEvaluator()
	if _, err := evaluator.Evaluate(CheckContext{}, ""); err == nil {
		t.Fatal("expected an error for an empty expression")
	}
}

func TestExprEvaluatorCompileWithCache(t *testing.T) {
	cache := NewMemoryProgramCache()
	evaluator := NewExprEvaluator(ExprWithProgramCache(cache))

	rule, err := evaluator.Compile("limit < 100")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, ok := cache.Get("limit < 100"); !ok {
		t.Fatal("compiled program not cached")
	}

	result, err := rule.Evaluate(CheckContext{Snapshot: map[string]any{"limit": 42}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result != true {
		t.Fatalf("result = %v, want true", result)
	}
}

func TestExprEvaluatorFunctionRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("double", func(args ...any) (any, error) {
		return args[0].(int) * 2, nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	evaluator := NewExprEvaluator(ExprWithFunctionRegistry(registry))
	result, err := evaluator.Evaluate(CheckContext{}, "double(21)")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result != 42 {
		t.Fatalf("result = %v, want 42", result)
	}
}

func TestCELEvaluatorEvaluate(t *testing.T) {
	evaluator := NewCELEvaluator()
	ctx := CheckContext{Snapshot: map[string]any{"limit": 42}, Config: "app"}

	result, err := evaluator.Evaluate(ctx, `limit < 100 && config == "app"`)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result != true {
		t.Fatalf("result = %v, want true", result)
	}
}

func TestCELEvaluatorCompiledRule(t *testing.T) {
	evaluator := NewCELEvaluator(CELWithProgramCache(NewMemoryProgramCache()))
	rule, err := evaluator.Compile("limit >= 0")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	result, err := rule.Evaluate(CheckContext{Snapshot: map[string]any{"limit": 7}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result != true {
		t.Fatalf("result = %v, want true", result)
	}
}

func TestCELEvaluatorFunctionRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("double", func(args ...any) (any, error) {
		switch v := args[0].(type) {
		case int64:
			return v * 2, nil
		case int:
			return int64(v) * 2, nil
		}
		return nil, fmt.Errorf("unsupported operand %T", args[0])
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := registry.Register("answer", func(...any) (any, error) {
		return int64(42), nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	evaluator := NewCELEvaluator(CELWithFunctionRegistry(registry))

	// Arguments travel as a list; the result converts back into CEL space.
	result, err := evaluator.Evaluate(CheckContext{}, `call("double", [21]) == 42`)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result != true {
		t.Fatalf("result = %v, want true", result)
	}

	result, err = evaluator.Evaluate(CheckContext{}, `call("answer") == 42`)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result != true {
		t.Fatalf("result = %v, want true", result)
	}

	if _, err := evaluator.Evaluate(CheckContext{}, `call("missing")`); err == nil {
		t.Fatal("expected an error calling an unregistered function")
	}
}

func TestFunctionRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("Upper", func(args ...any) (any, error) {
		return args[0], nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Names are case-insensitive.
	if _, err := registry.Call("upper", "x"); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if err := registry.Register("upper", nil); err == nil {
		t.Fatal("expected an error registering a nil function")
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatal("expected an error calling an unregistered function")
	}

	clone := registry.Clone()
	if _, err := clone.Call("upper", "x"); err != nil {
		t.Fatalf("Call on clone: %v", err)
	}
}
