//go:build js_eval

package cascade

import (
	"fmt"

	"github.com/dop251/goja"
)

// jsEvaluator runs constraint rules as JavaScript expressions on a fresh
// goja runtime per evaluation, so state never leaks between rules.
type jsEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	cfg := applyJSEvaluatorOptions(opts)
	return &jsEvaluator{cache: cfg.cache, registry: cfg.registry}
}

func (e *jsEvaluator) Evaluate(ctx CheckContext, expression string) (any, error) {
	program, err := e.program(expression)
	if err != nil {
		return nil, err
	}
	return e.runProgram(ctx.withDefaults(), expression, program)
}

func (e *jsEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	program, err := e.program(expression)
	if err != nil {
		return nil, err
	}
	return &compiledRule{
		expression: expression,
		run: func(ctx CheckContext) (any, error) {
			return e.runProgram(ctx, expression, program)
		},
	}, nil
}

// program compiles the expression wrapped in an IIFE so bare expressions and
// object literals both evaluate, consulting the cache when one is wired.
func (e *jsEvaluator) program(expression string) (*goja.Program, error) {
	if expression == "" {
		return nil, fmt.Errorf("%w: expression is empty", ErrInvalidArgument)
	}
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	source := fmt.Sprintf("(function(){ return (%s); })()", expression)
	program, err := goja.Compile("", source, false)
	if err != nil {
		return nil, evalError("js", expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

func (e *jsEvaluator) runProgram(ctx CheckContext, expression string, program *goja.Program) (any, error) {
	vm := goja.New()
	env := ctx.bindings()
	e.registry.bindInto(env)
	for name, value := range env {
		vm.Set(name, value)
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, evalError("js", expression, ctx.configLabel(), err)
	}
	return value.Export(), nil
}

func (e *jsEvaluator) engineName() string {
	return "js"
}

func jsEvaluatorAvailable() bool {
	return true
}
