package cascade

import (
	"fmt"
	"strconv"
)

// valueKind tags the runtime shape of a raw configuration value. Merged views
// classify values once and branch on the tag instead of re-inspecting types at
// every call site.
type valueKind int

const (
	kindNull valueKind = iota
	kindBool
	kindInt
	kindFloat
	kindString
	kindMapping
	kindSequence
	kindOther
)

func (k valueKind) String() string {
	switch k {
	case kindNull:
		return "null"
	case kindBool:
		return "bool"
	case kindInt:
		return "int"
	case kindFloat:
		return "float"
	case kindString:
		return "string"
	case kindMapping:
		return "mapping"
	case kindSequence:
		return "sequence"
	default:
		return "other"
	}
}

// kindOf classifies a raw value. All Go integer widths collapse into kindInt
// so trees decoded by different format backends stay comparable.
func kindOf(value any) valueKind {
	switch value.(type) {
	case nil:
		return kindNull
	case bool:
		return kindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return kindInt
	case float32, float64:
		return kindFloat
	case string:
		return kindString
	case map[string]any:
		return kindMapping
	case []any:
		return kindSequence
	default:
		return kindOther
	}
}

func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	}
	return 0, false
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	if i, ok := asInt(value); ok {
		return float64(i), true
	}
	return 0, false
}

// coerceValue converts value to the kind already established for key across
// the scopes of a merged view. A target of kindOther requires an exact kind
// match; container kinds never convert across each other.
func coerceValue(key string, value any, target valueKind, hasTarget bool) (any, error) {
	if !hasTarget {
		return value, nil
	}
	kind := kindOf(value)
	if kind == target {
		return value, nil
	}

	switch target {
	case kindString:
		switch kind {
		case kindBool:
			return strconv.FormatBool(value.(bool)), nil
		case kindInt:
			i, _ := asInt(value)
			return strconv.Itoa(i), nil
		case kindFloat:
			f, _ := asFloat(value)
			return strconv.FormatFloat(f, 'g', -1, 64), nil
		}
	case kindInt:
		switch kind {
		case kindFloat:
			f, _ := asFloat(value)
			return int(f), nil
		case kindString:
			if i, err := strconv.Atoi(value.(string)); err == nil {
				return i, nil
			}
		case kindBool:
			if value.(bool) {
				return 1, nil
			}
			return 0, nil
		}
	case kindFloat:
		switch kind {
		case kindInt:
			f, _ := asFloat(value)
			return f, nil
		case kindString:
			if f, err := strconv.ParseFloat(value.(string), 64); err == nil {
				return f, nil
			}
		}
	case kindBool:
		// Mirrors truthiness of scalar values; containers never coerce.
		switch kind {
		case kindNull:
			return false, nil
		case kindInt:
			i, _ := asInt(value)
			return i != 0, nil
		case kindFloat:
			f, _ := asFloat(value)
			return f != 0, nil
		case kindString:
			return value.(string) != "", nil
		}
	}

	return nil, fmt.Errorf("%w: cannot assign %s value to key %q of kind %s",
		ErrIncompatibleAssignment, kind, key, target)
}

// cloneTree deep copies a raw configuration tree. Scalars are shared, which is
// safe because every scalar kind the views accept is immutable.
func cloneTree(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneMapping(v)
	case []any:
		return cloneSequence(v)
	default:
		return value
	}
}

func cloneMapping(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = cloneTree(value)
	}
	return out
}

func cloneSequence(s []any) []any {
	out := make([]any, len(s))
	for i, value := range s {
		out[i] = cloneTree(value)
	}
	return out
}
