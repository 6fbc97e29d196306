// Package schema derives and checks structural descriptors for raw
// configuration trees. A descriptor names a dotted path and the type the
// tree holds at that path; a Document is the full descriptor set for a tree.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FieldDescriptor describes a path and the inferred type.
type FieldDescriptor struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Document is the ordered descriptor set for a configuration tree.
type Document struct {
	Fields []FieldDescriptor `json:"fields"`
}

// Infer derives a Document from tree. Paths are sorted; empty containers
// are described as a whole.
func Infer(tree map[string]any) Document {
	fields := deriveFieldDescriptors(tree, "")
	if fields == nil {
		fields = []FieldDescriptor{}
	}
	return Document{Fields: fields}
}

func deriveFieldDescriptors(value any, prefix string) []FieldDescriptor {
	if value == nil {
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{Path: prefix, Type: "nil"}}
	}

	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			return []FieldDescriptor{{
				Path: prefix,
				Type: "map[string]any",
			}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []FieldDescriptor
		for _, key := range keys {
			nextPrefix := joinPath(prefix, key)
			fields = append(fields, deriveFieldDescriptors(typed[key], nextPrefix)...)
		}
		return fields
	case []any:
		elementType := "any"
		if len(typed) > 0 {
			elementType = typeName(typed[0])
		}
		return []FieldDescriptor{{
			Path: prefix,
			Type: "[]" + elementType,
		}}
	default:
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{
			Path: prefix,
			Type: typeName(typed),
		}}
	}
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", value)
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}

// Violation reports a single descriptor the tree does not satisfy.
type Violation struct {
	Path   string
	Want   string
	Got    string
	Reason string
}

func (v Violation) String() string {
	switch v.Reason {
	case "missing":
		return fmt.Sprintf("%s: missing (want %s)", v.Path, v.Want)
	case "extra":
		return fmt.Sprintf("%s: not declared in schema", v.Path)
	default:
		return fmt.Sprintf("%s: type %s, want %s", v.Path, v.Got, v.Want)
	}
}

// ValidateOption configures Validate.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	strict bool
}

// Strict makes Validate flag paths present in the tree but absent from the
// document. The default tolerates extras.
func Strict() ValidateOption {
	return func(cfg *validateConfig) {
		cfg.strict = true
	}
}

// Validate checks tree against doc and returns every violation found. A nil
// slice means the tree satisfies the document.
func Validate(tree map[string]any, doc Document, opts ...ValidateOption) []Violation {
	cfg := validateConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	actual := Infer(tree)
	byPath := make(map[string]FieldDescriptor, len(actual.Fields))
	for _, field := range actual.Fields {
		byPath[field.Path] = field
	}

	var violations []Violation
	declared := make(map[string]struct{}, len(doc.Fields))
	for _, want := range doc.Fields {
		declared[want.Path] = struct{}{}
		got, ok := byPath[want.Path]
		if !ok {
			violations = append(violations, Violation{
				Path:   want.Path,
				Want:   want.Type,
				Reason: "missing",
			})
			continue
		}
		if !typesCompatible(want.Type, got.Type) {
			violations = append(violations, Violation{
				Path:   want.Path,
				Want:   want.Type,
				Got:    got.Type,
				Reason: "mismatch",
			})
		}
	}
	if cfg.strict {
		for _, field := range actual.Fields {
			if _, ok := declared[field.Path]; !ok {
				violations = append(violations, Violation{
					Path:   field.Path,
					Got:    field.Type,
					Reason: "extra",
				})
			}
		}
	}
	return violations
}

// typesCompatible tolerates the integer widenings format decoders produce:
// an int satisfies int64/float64 descriptors and vice versa, and "any"
// element types accept any sequence.
func typesCompatible(want, got string) bool {
	if want == got {
		return true
	}
	if want == "[]any" && strings.HasPrefix(got, "[]") {
		return true
	}
	if got == "[]any" && strings.HasPrefix(want, "[]") {
		return true
	}
	return numericType(want) && numericType(got)
}

func numericType(name string) bool {
	switch name {
	case "int", "int64", "float64":
		return true
	}
	return false
}

// ToJSON serialises the document for storage alongside configuration files.
func (d Document) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// FromJSON parses a document previously produced by ToJSON.
func FromJSON(payload []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Document{}, err
	}
	if doc.Fields == nil {
		doc.Fields = []FieldDescriptor{}
	}
	return doc, nil
}
