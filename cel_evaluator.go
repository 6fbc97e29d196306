package cascade

import (
	"fmt"
	"reflect"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// celEvaluator runs constraint rules through cel-go. CEL declares variables
// up front, so every top-level snapshot key becomes a dyn declaration and a
// cached program stays tied to the key set it was compiled against.
type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx CheckContext, expression string) (any, error) {
	return e.eval(ctx.withDefaults(), expression)
}

func (e *celEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, fmt.Errorf("%w: expression is empty", ErrInvalidArgument)
	}
	return &compiledRule{
		expression: expression,
		run: func(ctx CheckContext) (any, error) {
			return e.eval(ctx, expression)
		},
	}, nil
}

func (e *celEvaluator) eval(ctx CheckContext, expression string) (any, error) {
	if expression == "" {
		return nil, fmt.Errorf("%w: expression is empty", ErrInvalidArgument)
	}
	program, err := e.program(expression, ctx.snapshotTree())
	if err != nil {
		return nil, evalError("cel", expression, ctx.configLabel(), err)
	}
	out, _, err := program.Eval(ctx.bindings())
	if err != nil {
		return nil, evalError("cel", expression, ctx.configLabel(), err)
	}
	return out.Value(), nil
}

// program compiles expression against the snapshot's key set, consulting the
// cache when one is wired.
func (e *celEvaluator) program(expression string, snapshot map[string]any) (celgo.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := e.environment(snapshot)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

func (e *celEvaluator) environment(snapshot map[string]any) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
		celgo.Variable("metadata", celgo.DynType),
		celgo.Variable("config", celgo.StringType),
		celgo.Variable("scope", celgo.StringType),
	}
	for key := range snapshot {
		opts = append(opts, celgo.Variable(key, celgo.DynType))
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_name",
				[]*celgo.Type{celgo.StringType},
				celgo.DynType,
				celgo.UnaryBinding(func(name ref.Val) ref.Val {
					return e.dispatch(name, nil)
				}),
			),
			celgo.Overload("call_name_args",
				[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
				celgo.DynType,
				celgo.BinaryBinding(func(name, args ref.Val) ref.Val {
					native, err := args.ConvertToNative(reflect.TypeOf([]any{}))
					if err != nil {
						return types.WrapErr(err)
					}
					list, _ := native.([]any)
					return e.dispatch(name, list)
				}),
			),
		))
	}
	return celgo.NewEnv(opts...)
}

// dispatch runs a registry function and lifts its result back into CEL.
func (e *celEvaluator) dispatch(name ref.Val, args []any) ref.Val {
	fn, ok := name.Value().(string)
	if !ok {
		return types.NewErr("cascade: call name must be a string")
	}
	result, err := e.registry.Call(fn, args...)
	if err != nil {
		return types.WrapErr(err)
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}
