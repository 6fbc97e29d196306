package format

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

func init() {
	Register("yaml", yamlFormatter{})
}

type yamlFormatter struct{}

func (yamlFormatter) Load(r io.Reader) (map[string]any, error) {
	var tree map[string]any
	if err := yaml.NewDecoder(r).Decode(&tree); err != nil {
		if err == io.EOF {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("format: decoding yaml: %w", err)
	}
	return normalizeMapping(tree), nil
}

func (yamlFormatter) Dump(w io.Writer, tree map[string]any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(tree); err != nil {
		return fmt.Errorf("format: encoding yaml: %w", err)
	}
	return encoder.Close()
}

func (yamlFormatter) Extension() string {
	return ".yaml"
}

func (yamlFormatter) FormatToken(token Token, indent string, format func(string) string) string {
	return formatTokenDefault(token, indent, format)
}
