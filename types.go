package cascade

import (
	"fmt"
	"time"
)

// CheckContext carries the inputs a constraint rule is evaluated against: the
// exported (flattened) configuration tree plus request metadata.
type CheckContext struct {
	Snapshot any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	Config   string
	Scope    string
}

func (ctx CheckContext) withDefaultNow() CheckContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx CheckContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx CheckContext) withDefaultMaps() CheckContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx CheckContext) withDefaults() CheckContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx CheckContext) configLabel() string {
	if ctx.Config != "" {
		return ctx.Config
	}
	return "merged"
}

// snapshotTree returns the snapshot as a raw tree, or nil when the context
// carries none.
func (ctx CheckContext) snapshotTree() map[string]any {
	tree, _ := ctx.Snapshot.(map[string]any)
	return tree
}

// bindings flattens the context into the variable set rules see: the builtin
// identifiers plus every top-level key of the snapshot tree.
func (ctx CheckContext) bindings() map[string]any {
	env := map[string]any{
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
		"config":   ctx.configLabel(),
		"scope":    ctx.Scope,
	}
	for key, value := range ctx.snapshotTree() {
		env[key] = value
	}
	return env
}

// Evaluator executes constraint expressions against a check context.
type Evaluator interface {
	Evaluate(ctx CheckContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable constraint program.
type CompiledRule interface {
	Evaluate(ctx CheckContext) (any, error)
}

// compiledRule is the shape every engine compiles to: the closure holds the
// prepared engine program.
type compiledRule struct {
	expression string
	run        func(CheckContext) (any, error)
}

func (r *compiledRule) Evaluate(ctx CheckContext) (any, error) {
	if r == nil || r.run == nil {
		return nil, fmt.Errorf("%w: compiled rule is not initialised", ErrInvalidArgument)
	}
	return r.run(ctx.withDefaults())
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}
