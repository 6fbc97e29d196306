package format

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-cascade"
)

// TokenType classifies the lines a merged view renders to.
type TokenType int

const (
	// TokenAttribute is a key in a mapping.
	TokenAttribute TokenType = iota + 1
	// TokenListItem is one element of a merged sequence.
	TokenListItem
	// TokenValue is a scalar.
	TokenValue
)

// Token is one pretty-print line before rendering: the text, the scopes that
// contribute it, and its nesting depth.
type Token struct {
	Line   string
	Scopes []string
	Indent int
	Type   TokenType
}

// Tokenize flattens a merged view into an ordered token stream. Attributes
// carry the full list of contributing scopes, list items the scope of their
// component, scalars the scope that won the merge.
func Tokenize(obj *cascade.OverridableMapping) ([]Token, error) {
	return tokenize(obj, nil, 0)
}

func tokenize(obj *cascade.OverridableMapping, _ []string, indent int) ([]Token, error) {
	var tokens []Token
	for _, key := range obj.Keys() {
		scopes := obj.ScopesOf(key)
		tokens = append(tokens, Token{
			Line:   key,
			Scopes: scopes,
			Indent: indent,
			Type:   TokenAttribute,
		})
		value, err := obj.Get(key)
		if err != nil {
			return nil, err
		}
		children, err := tokenizeValue(value, scopes, indent+1)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, children...)
	}
	return tokens, nil
}

func tokenizeValue(value any, scopes []string, indent int) ([]Token, error) {
	switch typed := value.(type) {
	case *cascade.OverridableMapping:
		return tokenize(typed, scopes, indent)
	case *cascade.MergedSequence:
		components := typed.Components()
		if len(scopes) != len(components) {
			return nil, fmt.Errorf("format: %d scopes for %d sequence components", len(scopes), len(components))
		}
		var tokens []Token
		for i, component := range components {
			for _, item := range component {
				tokens = append(tokens, Token{
					Line:   fmt.Sprintf("%v", item),
					Scopes: []string{scopes[i]},
					Indent: indent + 1,
					Type:   TokenListItem,
				})
			}
		}
		return tokens, nil
	default:
		if len(scopes) == 0 {
			return nil, fmt.Errorf("format: scalar value without a scope")
		}
		return []Token{{
			Line:   fmt.Sprintf("%v", typed),
			Scopes: scopes[:1],
			Indent: indent,
			Type:   TokenValue,
		}}, nil
	}
}

// PrettyPrint renders obj through formatter and returns the lines plus, per
// line, the scopes that contributed it. formatters may customize how each
// token type renders its text; missing entries pass the text through.
func PrettyPrint(formatter Formatter, obj *cascade.OverridableMapping, formatters map[TokenType]func(string) string) ([]string, [][]string, error) {
	tokens, err := Tokenize(obj)
	if err != nil {
		return nil, nil, err
	}

	const indentBlock = "  "
	lines := make([]string, 0, len(tokens))
	scopes := make([][]string, 0, len(tokens))
	for _, token := range tokens {
		format := formatters[token.Type]
		if format == nil {
			format = func(s string) string { return s }
		}
		lines = append(lines, formatter.FormatToken(token, indentBlock, format))
		if token.Scopes == nil {
			scopes = append(scopes, []string{})
		} else {
			scopes = append(scopes, token.Scopes)
		}
	}
	return lines, scopes, nil
}

// formatTokenDefault is the yaml-ish rendering shared by the built-in
// backends: "key:", "- item", indented scalars.
func formatTokenDefault(token Token, indent string, format func(string) string) string {
	line := format(token.Line)
	switch token.Type {
	case TokenAttribute:
		return strings.Repeat(indent, token.Indent) + line + ":"
	case TokenListItem:
		return strings.Repeat(indent, token.Indent-1) + "- " + line
	default:
		return strings.Repeat(indent, token.Indent) + line
	}
}
