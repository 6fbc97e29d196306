package cascade

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function represents a callable registered against evaluators.
type Function func(args ...any) (any, error)

// FunctionRegistry stores custom functions under case-insensitive names so
// every engine resolves "Upper" and "upper" to the same callable.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: map[string]Function{}}
}

func foldName(name string) string {
	return strings.ToLower(name)
}

// Register stores fn under name, rejecting duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("%w: function %q is nil", ErrInvalidArgument, name)
	}
	if name == "" {
		return fmt.Errorf("%w: function name is empty", ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = map[string]Function{}
	}
	key := foldName(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("cascade: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("cascade: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[foldName(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("cascade: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns the registered function names, sorted.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Clone returns a registry with the same function table. Evaluators clone on
// construction so later registrations do not change running engines.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{functions: make(map[string]Function, len(r.functions))}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// bindInto exposes the registry inside an evaluation environment: one entry
// per registered function plus a generic call(name, args...) dispatcher.
// Shared by the engines whose environments are plain variable maps.
func (r *FunctionRegistry) bindInto(env map[string]any) {
	if r == nil {
		return
	}
	env["call"] = func(name string, args ...any) (any, error) {
		return r.Call(name, args...)
	}
	for _, name := range r.Names() {
		fn := name
		env[fn] = func(args ...any) (any, error) {
			return r.Call(fn, args...)
		}
	}
}
