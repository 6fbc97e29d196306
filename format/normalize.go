package format

import (
	"encoding/json"
	"fmt"
)

// normalizeTree rewrites decoder-specific shapes into the canonical raw tree:
// json.Number and integral floats become int, int64 narrows to int, and
// map[any]any keys (older yaml decoders) become strings.
func normalizeTree(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, item := range typed {
			typed[key] = normalizeTree(item)
		}
		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprintf("%v", key)] = normalizeTree(item)
		}
		return out
	case []any:
		for i, item := range typed {
			typed[i] = normalizeTree(item)
		}
		return typed
	case json.Number:
		if n, err := typed.Int64(); err == nil {
			return int(n)
		}
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	case int64:
		return int(typed)
	default:
		return typed
	}
}

func normalizeMapping(tree map[string]any) map[string]any {
	normalized, ok := normalizeTree(tree).(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return normalized
}
