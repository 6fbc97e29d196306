package format

import (
	"encoding/json"
	"fmt"
	"io"
)

func init() {
	Register("json", jsonFormatter{})
}

type jsonFormatter struct{}

func (jsonFormatter) Load(r io.Reader) (map[string]any, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	var tree map[string]any
	if err := decoder.Decode(&tree); err != nil {
		return nil, fmt.Errorf("format: decoding json: %w", err)
	}
	return normalizeMapping(tree), nil
}

func (jsonFormatter) Dump(w io.Writer, tree map[string]any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(tree); err != nil {
		return fmt.Errorf("format: encoding json: %w", err)
	}
	return nil
}

func (jsonFormatter) Extension() string {
	return ".json"
}

func (jsonFormatter) FormatToken(token Token, indent string, format func(string) string) string {
	return formatTokenDefault(token, indent, format)
}
