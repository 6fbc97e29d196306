package format

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

func init() {
	Register("hcl", hclFormatter{})
}

// hclFormatter handles the attributes-only subset of HCL: every top-level
// name is an attribute whose value may be an object, tuple, or scalar.
type hclFormatter struct{}

func (hclFormatter) Load(r io.Reader) (map[string]any, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("format: reading hcl: %w", err)
	}
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(payload, "config.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("format: parsing hcl: %w", diags)
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("format: reading hcl attributes: %w", diags)
	}

	tree := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		value, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("format: evaluating hcl attribute %q: %w", name, diags)
		}
		native, err := ctyToNative(value)
		if err != nil {
			return nil, fmt.Errorf("format: hcl attribute %q: %w", name, err)
		}
		tree[name] = native
	}
	return renameKeys(normalizeMapping(tree), restoreOverrideMarker), nil
}

func (hclFormatter) Dump(w io.Writer, tree map[string]any) error {
	tree = renameKeys(tree, spellOverrideMarker)
	file := hclwrite.NewEmptyFile()
	body := file.Body()
	names := make([]string, 0, len(tree))
	for name := range tree {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value, err := nativeToCty(tree[name])
		if err != nil {
			return fmt.Errorf("format: hcl attribute %q: %w", name, err)
		}
		body.SetAttributeValue(name, value)
	}
	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("format: writing hcl: %w", err)
	}
	return nil
}

func (hclFormatter) Extension() string {
	return ".hcl"
}

// The layering override marker is a trailing ":", which is not legal in an
// HCL attribute name. Scope files spell overridden keys with an "__override"
// suffix instead; loading restores the marker.
const hclOverrideSuffix = "__override"

func spellOverrideMarker(key string) string {
	if name, ok := strings.CutSuffix(key, ":"); ok {
		return name + hclOverrideSuffix
	}
	return key
}

func restoreOverrideMarker(key string) string {
	if name, ok := strings.CutSuffix(key, hclOverrideSuffix); ok {
		return name + ":"
	}
	return key
}

// renameKeys rewrites every mapping key in the tree through rename, descending
// into nested mappings and sequences.
func renameKeys(tree map[string]any, rename func(string) string) map[string]any {
	out := make(map[string]any, len(tree))
	for key, value := range tree {
		out[rename(key)] = renameValues(value, rename)
	}
	return out
}

func renameValues(value any, rename func(string) string) any {
	switch typed := value.(type) {
	case map[string]any:
		return renameKeys(typed, rename)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = renameValues(item, rename)
		}
		return out
	default:
		return value
	}
}

func (hclFormatter) FormatToken(token Token, indent string, format func(string) string) string {
	return formatTokenDefault(token, indent, format)
}

// ctyToNative recursively converts a cty.Value into the raw-tree shape.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		if i, acc := v.AsBigFloat().Int64(); acc == 0 && float64(i) == f {
			return int(i), nil
		}
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0)
		for it := v.ElementIterator(); it.Next(); {
			_, item := it.Element()
			native, err := ctyToNative(item)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil
	case ty.IsObjectType() || ty.IsMapType():
		tree := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			key, item := it.Element()
			native, err := ctyToNative(item)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			tree[key.AsString()] = native
		}
		return tree, nil
	default:
		return nil, fmt.Errorf("unsupported hcl type %s", ty.FriendlyName())
	}
}

// nativeToCty converts a raw-tree value into the cty.Value hclwrite needs.
func nativeToCty(value any) (cty.Value, error) {
	switch typed := value.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case bool:
		return cty.BoolVal(typed), nil
	case int:
		return cty.NumberIntVal(int64(typed)), nil
	case int64:
		return cty.NumberIntVal(typed), nil
	case float64:
		return cty.NumberFloatVal(typed), nil
	case string:
		return cty.StringVal(typed), nil
	case []any:
		if len(typed) == 0 {
			return cty.EmptyTupleVal, nil
		}
		items := make([]cty.Value, 0, len(typed))
		for _, item := range typed {
			converted, err := nativeToCty(item)
			if err != nil {
				return cty.NilVal, err
			}
			items = append(items, converted)
		}
		return cty.TupleVal(items), nil
	case map[string]any:
		if len(typed) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(typed))
		for key, item := range typed {
			converted, err := nativeToCty(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in attribute %q: %w", key, err)
			}
			attrs[key] = converted
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value type %T", value)
	}
}
