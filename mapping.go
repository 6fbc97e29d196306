package cascade

import (
	"fmt"
	"sort"
)

// ScopedMapping pairs a scope name with the raw mapping it owns. Order inside
// a slice of ScopedMapping carries priority: index 0 is the strongest scope.
type ScopedMapping struct {
	Scope   string
	Mapping map[string]any
}

// Scoped is a convenience constructor for a ScopedMapping pair.
func Scoped(name string, mapping map[string]any) ScopedMapping {
	return ScopedMapping{Scope: name, Mapping: mapping}
}

func validatePairs(pairs []ScopedMapping, allowScratch bool) error {
	seen := make(map[string]struct{}, len(pairs))
	for i, pair := range pairs {
		if pair.Scope == "" {
			return fmt.Errorf("%w: scope %d has an empty name", ErrInvalidArgument, i)
		}
		if !allowScratch && pair.Scope == ScratchScope {
			return fmt.Errorf("%w: scope name %q is reserved", ErrInvalidArgument, pair.Scope)
		}
		if pair.Mapping == nil {
			return fmt.Errorf("%w: scope %q has a nil mapping", ErrInvalidArgument, pair.Scope)
		}
		if _, dup := seen[pair.Scope]; dup {
			return fmt.Errorf("%w: duplicate scope %q", ErrInvalidArgument, pair.Scope)
		}
		seen[pair.Scope] = struct{}{}
	}
	return nil
}

// mergedKeys enumerates keys in first-seen order scanning scopes from highest
// to lowest priority, each key once.
func mergedKeys(pairs []ScopedMapping) []string {
	seen := map[string]struct{}{}
	var keys []string
	for _, pair := range pairs {
		for _, key := range scopeKeys(pair.Mapping) {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}

// scopeKeys returns the keys of a raw mapping in a deterministic order. Go
// maps do not preserve insertion order, so lexical order stands in for it
// within a single scope.
func scopeKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// kindForKey resolves the kind established for key across the scopes that
// contain it. Returns hasKind=false when the key is absent everywhere and
// ErrTypeConflict when scopes disagree.
func kindForKey(pairs []ScopedMapping, key string) (valueKind, bool, error) {
	var kind valueKind
	found := false
	for _, pair := range pairs {
		value, ok := pair.Mapping[key]
		if !ok {
			continue
		}
		current := kindOf(value)
		if found && current != kind {
			return 0, false, fmt.Errorf("%w: key %q", ErrTypeConflict, key)
		}
		kind = current
		found = true
	}
	return kind, found, nil
}

// MergedMappingOption configures a merged mapping on construction.
type MergedMappingOption func(*MergedMapping)

// WithPreferredScope sets the preferred scope for writes. Validated against
// the scope list during construction.
func WithPreferredScope(scope string) MergedMappingOption {
	return func(m *MergedMapping) {
		m.preferredScope = scope
	}
}

// MergedMapping presents an ordered list of scoped mappings as one logical
// mapping with priority-based shadowing. Nested containers are wrapped
// recursively; scalar reads resolve to the strongest scope. The view aliases
// the supplied mappings and mutates them in place on writes.
type MergedMapping struct {
	pairs          []ScopedMapping
	preferredScope string
}

// NewMergedMapping builds a merged view over pairs, strongest scope first.
func NewMergedMapping(pairs []ScopedMapping, opts ...MergedMappingOption) (*MergedMapping, error) {
	if len(pairs) == 0 {
		return nil, ErrEmptyInput
	}
	if err := validatePairs(pairs, true); err != nil {
		return nil, err
	}
	m := &MergedMapping{pairs: pairs}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.preferredScope != "" {
		if _, err := m.Scope(m.preferredScope); err != nil {
			return nil, fmt.Errorf("%w: preferred scope %q is not a scope", ErrInvalidArgument, m.preferredScope)
		}
	}
	return m, nil
}

// Len returns the number of distinct keys across all scopes.
func (m *MergedMapping) Len() int {
	return len(mergedKeys(m.pairs))
}

// Keys returns the merged key enumeration, strongest scope first.
func (m *MergedMapping) Keys() []string {
	return mergedKeys(m.pairs)
}

// Has reports whether key is present in any scope.
func (m *MergedMapping) Has(key string) bool {
	for _, pair := range m.pairs {
		if _, ok := pair.Mapping[key]; ok {
			return true
		}
	}
	return false
}

// Get resolves key across scopes. Nested mappings come back as a
// *MergedMapping over the scopes that contain the key, sequences as a
// *MergedMutableSequence bound to the owning scopes, scalars as the strongest
// scope's value.
func (m *MergedMapping) Get(key string) (any, error) {
	if !m.Has(key) {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	kind, _, err := kindForKey(m.pairs, key)
	if err != nil {
		return nil, err
	}

	switch kind {
	case kindMapping:
		var nested []ScopedMapping
		for _, pair := range m.pairs {
			if value, ok := pair.Mapping[key]; ok {
				nested = append(nested, Scoped(pair.Scope, value.(map[string]any)))
			}
		}
		return NewMergedMapping(nested)
	case kindSequence:
		var refs []componentRef
		for _, pair := range m.pairs {
			if _, ok := pair.Mapping[key]; ok {
				refs = append(refs, slotRef{owner: pair.Mapping, key: key})
			}
		}
		return newMergedMutableSequenceRefs(refs), nil
	default:
		for _, pair := range m.pairs {
			if value, ok := pair.Mapping[key]; ok {
				return value, nil
			}
		}
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
}

// Set coerces value to the kind established for key and writes it into the
// writing scope. Container values replace every existing occurrence; the
// other scopes lose the key so no stale partial merges survive.
func (m *MergedMapping) Set(key string, value any) error {
	kind, hasKind, err := kindForKey(m.pairs, key)
	if err != nil {
		return err
	}
	coerced, err := coerceValue(key, value, kind, hasKind)
	if err != nil {
		return err
	}

	switch kindOf(coerced) {
	case kindMapping, kindSequence:
		m.Delete(key)
	}

	scope := m.writingScope(key)
	scope[key] = coerced
	return nil
}

// writingScope picks the first scope that is the preferred scope or already
// holds key; with no preference and no occurrence the strongest scope wins.
func (m *MergedMapping) writingScope(key string) map[string]any {
	for _, pair := range m.pairs {
		if m.preferredScope == "" || m.preferredScope == pair.Scope {
			return pair.Mapping
		}
		if _, ok := pair.Mapping[key]; ok {
			return pair.Mapping
		}
	}
	return m.pairs[0].Mapping
}

// Delete removes key from every scope that holds it.
func (m *MergedMapping) Delete(key string) {
	for _, pair := range m.pairs {
		delete(pair.Mapping, key)
	}
}

// Scope exposes the raw mapping registered under name.
func (m *MergedMapping) Scope(name string) (map[string]any, error) {
	for _, pair := range m.pairs {
		if pair.Scope == name {
			return pair.Mapping, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrScopeNotFound, name)
}

// ScopeNames returns the scope names in priority order.
func (m *MergedMapping) ScopeNames() []string {
	names := make([]string, len(m.pairs))
	for i, pair := range m.pairs {
		names[i] = pair.Scope
	}
	return names
}

// PreferredScope returns the configured preferred writing scope, empty when
// unset.
func (m *MergedMapping) PreferredScope() string {
	return m.preferredScope
}

// SetPreferredScope changes the preferred writing scope. An empty name clears
// the preference.
func (m *MergedMapping) SetPreferredScope(name string) error {
	if name != "" {
		if _, err := m.Scope(name); err != nil {
			return fmt.Errorf("%w: preferred scope %q is not a scope", ErrInvalidArgument, name)
		}
	}
	m.preferredScope = name
	return nil
}
