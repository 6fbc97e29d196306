package cascade

import (
	"errors"
	"fmt"
)

// EvaluationError ties an engine failure to the expression and configuration
// it happened in.
type EvaluationError struct {
	Engine string
	Expr   string
	Config string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("cascade: %s evaluator expr=%q config=%s: %v", e.Engine, e.Expr, e.Config, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// evalError wraps err with engine, expression and configuration metadata
// unless it already carries it.
func evalError(engine, expr, config string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}
	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Config: config,
		Err:    err,
	}
}
