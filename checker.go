package cascade

import (
	"errors"
	"fmt"
	"time"
)

// Rule couples a name with a boolean constraint expression. A rule holds
// when its expression evaluates to true against a configuration snapshot.
type Rule struct {
	Name string
	Expr string
}

// RuleViolation describes a single rule that did not hold.
type RuleViolation struct {
	Rule   Rule
	Config string
	Err    error
}

func (v *RuleViolation) Error() string {
	label := v.Rule.Name
	if label == "" {
		label = v.Rule.Expr
	}
	if v.Err != nil {
		return fmt.Sprintf("cascade: rule %q failed: %v", label, v.Err)
	}
	return fmt.Sprintf("cascade: rule %q not satisfied", label)
}

func (v *RuleViolation) Unwrap() error {
	return v.Err
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithEvaluator sets the evaluator used to run rule expressions.
func WithEvaluator(evaluator Evaluator) CheckerOption {
	return func(c *Checker) {
		if evaluator != nil {
			c.evaluator = evaluator
		}
	}
}

// WithEngine selects a built-in engine by name: "expr", "cel", or "js".
// Unknown names and unavailable engines fall back to expr.
func WithEngine(name string) CheckerOption {
	return func(c *Checker) {
		c.evaluator = evaluatorForEngine(name)
	}
}

// WithCheckerLogger attaches a logger invoked after each rule evaluation.
func WithCheckerLogger(logger EvaluatorLogger) CheckerOption {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConfigLabel names the configuration being checked; the label is
// surfaced in violations and log events.
func WithConfigLabel(label string) CheckerOption {
	return func(c *Checker) {
		c.config = label
	}
}

// Checker runs a set of rules against configuration snapshots.
type Checker struct {
	rules     []Rule
	evaluator Evaluator
	logger    EvaluatorLogger
	config    string
}

// NewChecker builds a Checker over rules. The expr engine is used unless
// an option overrides it.
func NewChecker(rules []Rule, opts ...CheckerOption) (*Checker, error) {
	for i, rule := range rules {
		if rule.Expr == "" {
			return nil, fmt.Errorf("%w: rule %d has empty expression", ErrInvalidArgument, i)
		}
	}
	c := &Checker{
		rules:     append([]Rule(nil), rules...),
		evaluator: NewExprEvaluator(),
		logger:    noopEvaluatorLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Rules returns a copy of the configured rules.
func (c *Checker) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Check evaluates every rule against snapshot. All rules run; failures
// are aggregated into the returned error.
func (c *Checker) Check(snapshot map[string]any) error {
	ctx := CheckContext{
		Snapshot: snapshot,
		Config:   c.config,
	}
	var violations []error
	for _, rule := range c.rules {
		if err := c.checkRule(ctx, rule); err != nil {
			violations = append(violations, err)
		}
	}
	return errors.Join(violations...)
}

func (c *Checker) checkRule(ctx CheckContext, rule Rule) error {
	start := time.Now()
	result, err := c.evaluator.Evaluate(ctx, rule.Expr)
	c.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   engineName(c.evaluator),
		Expr:     rule.Expr,
		Config:   c.config,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return &RuleViolation{Rule: rule, Config: c.config, Err: err}
	}
	ok, isBool := result.(bool)
	if !isBool {
		return &RuleViolation{
			Rule:   rule,
			Config: c.config,
			Err:    fmt.Errorf("expression returned %T, want bool", result),
		}
	}
	if !ok {
		return &RuleViolation{Rule: rule, Config: c.config}
	}
	return nil
}

func evaluatorForEngine(name string) Evaluator {
	switch name {
	case "cel":
		return NewCELEvaluator()
	case "js":
		if jsEvaluatorAvailable() {
			return NewJSEvaluator()
		}
		return NewExprEvaluator()
	default:
		return NewExprEvaluator()
	}
}

func engineName(evaluator Evaluator) string {
	switch evaluator.(type) {
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	}
	if named, ok := evaluator.(interface{ engineName() string }); ok {
		return named.engineName()
	}
	return "custom"
}
