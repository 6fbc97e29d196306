package cascade

import (
	"fmt"
	"strings"
)

// ScratchScope is the reserved name of the transient scope that buffers
// writes until they are flattened into a persisted scope.
const ScratchScope = "_scratch_"

// overrideSuffix marks a key that seals off the same key in every weaker
// scope. It is applied by the implementation on write; callers never supply
// it. The marker lives only in raw mappings and serialized files; everywhere
// else keys travel as (bare name, override flag).
const overrideSuffix = ":"

func splitKey(raw string) (name string, override bool) {
	name = strings.TrimRight(raw, overrideSuffix)
	return name, name != raw
}

func overrideKeyOf(name string) string {
	return name + overrideSuffix
}

func checkKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key must be a non-empty string", ErrInvalidKeyType)
	}
	if strings.HasSuffix(key, overrideSuffix) {
		return fmt.Errorf("%w: %q", ErrReservedKeySuffix, key)
	}
	return nil
}

// OverridableMappingOption configures an overridable mapping on construction.
type OverridableMappingOption func(*overridableConfig)

type overridableConfig struct {
	scratch map[string]any
}

// WithScratch seeds the scratch scope with content. Used when recursively
// building nested views; the mapping takes ownership of the supplied map.
func WithScratch(scratch map[string]any) OverridableMappingOption {
	return func(cfg *overridableConfig) {
		cfg.scratch = scratch
	}
}

// OverridableMapping merges scoped mappings like MergedMapping but never
// touches the caller-supplied scopes on write: every write lands in a private
// scratch scope at the highest priority, marked with the override suffix so
// it seals the same key in every weaker scope. Flattening reconciles scratch
// (and optionally more scopes) down into a persisted scope.
type OverridableMapping struct {
	// pairs[0] is always the scratch scope.
	pairs []ScopedMapping
}

// NewOverridableMapping builds an overridable view over pairs, strongest
// scope first. The list may be empty; a scratch scope is always prepended.
func NewOverridableMapping(pairs []ScopedMapping, opts ...OverridableMappingOption) (*OverridableMapping, error) {
	if err := validatePairs(pairs, false); err != nil {
		return nil, err
	}
	cfg := overridableConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.scratch == nil {
		cfg.scratch = map[string]any{}
	}
	all := make([]ScopedMapping, 0, len(pairs)+1)
	all = append(all, Scoped(ScratchScope, cfg.scratch))
	all = append(all, pairs...)
	return &OverridableMapping{pairs: all}, nil
}

// newOverridableFromPairs builds a view from pre-validated pairs, the first
// of which is already the scratch scope.
func newOverridableFromPairs(pairs []ScopedMapping) *OverridableMapping {
	return &OverridableMapping{pairs: pairs}
}

// hit records one scope's contribution to a key lookup.
type hit struct {
	scope  string
	value  any
	sealed bool
}

// collect walks scopes from scratch downward gathering the value each scope
// holds for key, under either spelling. An override-suffixed occurrence seals
// the lookup: nothing weaker is consulted. Within one scope the override
// spelling wins.
func (o *OverridableMapping) collect(key string) []hit {
	var hits []hit
	for _, pair := range o.pairs {
		if value, ok := pair.Mapping[overrideKeyOf(key)]; ok {
			hits = append(hits, hit{scope: pair.Scope, value: value, sealed: true})
			break
		}
		if value, ok := pair.Mapping[key]; ok {
			hits = append(hits, hit{scope: pair.Scope, value: value})
		}
	}
	return hits
}

// Get resolves key under the sealing rule. Nested mappings recurse into a new
// OverridableMapping whose scratch is lazily materialized inside this view's
// scratch, sequences merge into a read-only MergedSequence, scalars resolve
// to the strongest contribution.
func (o *OverridableMapping) Get(key string) (any, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	hits := o.collect(key)
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	kind := kindOf(hits[0].value)
	for _, h := range hits[1:] {
		if kindOf(h.value) != kind {
			return nil, fmt.Errorf("%w: key %q", ErrTypeConflict, key)
		}
	}

	switch kind {
	case kindMapping:
		var scratch map[string]any
		if hits[0].scope == ScratchScope {
			scratch = hits[0].value.(map[string]any)
			hits = hits[1:]
		} else {
			// Future writes to nested keys need a slot in scratch.
			scratch = map[string]any{}
			o.pairs[0].Mapping[key] = scratch
		}
		nested := make([]ScopedMapping, 0, len(hits)+1)
		nested = append(nested, Scoped(ScratchScope, scratch))
		for _, h := range hits {
			nested = append(nested, Scoped(h.scope, h.value.(map[string]any)))
		}
		return newOverridableFromPairs(nested), nil
	case kindSequence:
		components := make([][]any, len(hits))
		for i, h := range hits {
			components[i] = h.value.([]any)
		}
		return NewMergedSequence(components)
	default:
		return hits[0].value, nil
	}
}

// Set coerces value to the kind already established for key, under either
// spelling, and stores it in scratch as an override so it seals every weaker
// scope.
func (o *OverridableMapping) Set(key string, value any) error {
	if err := checkKey(key); err != nil {
		return err
	}
	overrideKind, hasOverride, err := kindForKey(o.pairs, overrideKeyOf(key))
	if err != nil {
		return err
	}
	bareKind, hasBare, err := kindForKey(o.pairs, key)
	if err != nil {
		return err
	}
	if hasOverride && hasBare && overrideKind != bareKind {
		return fmt.Errorf("%w: key %q", ErrTypeConflict, key)
	}
	kind, hasKind := overrideKind, hasOverride
	if !hasKind {
		kind, hasKind = bareKind, hasBare
	}
	coerced, err := coerceValue(key, value, kind, hasKind)
	if err != nil {
		return err
	}

	scratch := o.pairs[0].Mapping
	delete(scratch, key)
	scratch[overrideKeyOf(key)] = coerced
	return nil
}

// Delete removes both spellings of key from every scope, scratch included.
func (o *OverridableMapping) Delete(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	for _, pair := range o.pairs {
		delete(pair.Mapping, key)
		delete(pair.Mapping, overrideKeyOf(key))
	}
	return nil
}

// Has reports whether any scope holds key under either spelling.
func (o *OverridableMapping) Has(key string) bool {
	return len(o.collect(key)) > 0
}

// Keys enumerates merged keys in first-seen order, scratch first. Override
// spellings are normalized to their bare form and shown once.
func (o *OverridableMapping) Keys() []string {
	seen := map[string]struct{}{}
	var keys []string
	for _, pair := range o.pairs {
		for _, raw := range scopeKeys(pair.Mapping) {
			name, _ := splitKey(raw)
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			keys = append(keys, name)
		}
	}
	return keys
}

// Len returns the number of distinct bare keys across all scopes.
func (o *OverridableMapping) Len() int {
	return len(o.Keys())
}

// ScopesOf returns the ordered scope names that contribute to key under the
// sealing rule, nil when the key is absent everywhere.
func (o *OverridableMapping) ScopesOf(key string) []string {
	if checkKey(key) != nil {
		return nil
	}
	hits := o.collect(key)
	if len(hits) == 0 {
		return nil
	}
	scopes := make([]string, len(hits))
	for i, h := range hits {
		scopes[i] = h.scope
	}
	return scopes
}

// Scope exposes the raw mapping registered under name, scratch included.
func (o *OverridableMapping) Scope(name string) (map[string]any, error) {
	for _, pair := range o.pairs {
		if pair.Scope == name {
			return pair.Mapping, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrScopeNotFound, name)
}

// Scratch exposes the raw scratch mapping holding pending writes.
func (o *OverridableMapping) Scratch() map[string]any {
	return o.pairs[0].Mapping
}

// ScopeNames returns all scope names in priority order, scratch first.
func (o *OverridableMapping) ScopeNames() []string {
	names := make([]string, len(o.pairs))
	for i, pair := range o.pairs {
		names[i] = pair.Scope
	}
	return names
}

// PersistedScopeNames returns the scope names excluding scratch.
func (o *OverridableMapping) PersistedScopeNames() []string {
	return o.ScopeNames()[1:]
}

// Flattened collapses scopes from scratch downward into target and returns a
// new view over deep-copied containers; the receiver is never mutated. An
// empty target selects the strongest persisted scope. The scratch scope comes
// back empty; fully merged intermediate scopes disappear from the result.
func (o *OverridableMapping) Flattened(target string) (*OverridableMapping, error) {
	if target == "" {
		target = ScratchScope
		if len(o.pairs) > 1 {
			target = o.pairs[1].Scope
		}
	}
	if _, err := o.Scope(target); err != nil {
		return nil, err
	}

	pairs := make([]ScopedMapping, len(o.pairs))
	for i, pair := range o.pairs {
		pairs[i] = Scoped(pair.Scope, cloneMapping(pair.Mapping))
	}

	dropped := make([]bool, len(pairs))
	for i := 0; i < len(pairs)-1; i++ {
		if pairs[i].Scope == target {
			break
		}
		mergeScopeMaps(pairs[i].Mapping, pairs[i+1].Mapping)
		if pairs[i].Scope == ScratchScope {
			pairs[i] = Scoped(ScratchScope, map[string]any{})
		} else {
			dropped[i] = true
		}
	}

	remaining := make([]ScopedMapping, 0, len(pairs))
	for i, pair := range pairs {
		if !dropped[i] {
			remaining = append(remaining, pair)
		}
	}
	return newOverridableFromPairs(remaining), nil
}

// mergeScopeMaps merges the stronger scope current into the weaker scope
// next, in place on next, following the flatten merge rule: overrides
// collapse any prior state, fresh keys move down unchanged, colliding keys
// keep next's spelling and combine values (mappings merge recursively,
// sequences concatenate with current first, scalars adopt current's value).
func mergeScopeMaps(current, next map[string]any) {
	for _, raw := range scopeKeys(current) {
		value := current[raw]
		name, isOverride := splitKey(raw)
		override := overrideKeyOf(name)

		if isOverride {
			next[override] = value
			delete(next, name)
			continue
		}

		_, hasBare := next[name]
		_, hasOverride := next[override]
		if !hasBare && !hasOverride {
			next[name] = value
			continue
		}

		spelling := name
		if hasOverride {
			spelling = override
		}
		switch typed := value.(type) {
		case map[string]any:
			if below, ok := next[spelling].(map[string]any); ok {
				mergeScopeMaps(typed, below)
				continue
			}
			next[spelling] = typed
		case []any:
			if below, ok := next[spelling].([]any); ok {
				merged := make([]any, 0, len(typed)+len(below))
				merged = append(merged, typed...)
				merged = append(merged, below...)
				next[spelling] = merged
				continue
			}
			next[spelling] = typed
		default:
			next[spelling] = value
		}
	}
}

// Export fully flattens down to the weakest scope and returns its raw
// mapping: a plain nested structure with no pending scratch content, suitable
// for serialization or schema validation.
func (o *OverridableMapping) Export() (map[string]any, error) {
	lowest := o.pairs[len(o.pairs)-1].Scope
	flat, err := o.Flattened(lowest)
	if err != nil {
		return nil, err
	}
	return flat.Scope(lowest)
}
