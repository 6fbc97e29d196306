package format

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

func init() {
	Register("toml", tomlFormatter{})
}

type tomlFormatter struct{}

func (tomlFormatter) Load(r io.Reader) (map[string]any, error) {
	var tree map[string]any
	if _, err := toml.NewDecoder(r).Decode(&tree); err != nil {
		return nil, fmt.Errorf("format: decoding toml: %w", err)
	}
	return normalizeMapping(tree), nil
}

func (tomlFormatter) Dump(w io.Writer, tree map[string]any) error {
	if err := toml.NewEncoder(w).Encode(tree); err != nil {
		return fmt.Errorf("format: encoding toml: %w", err)
	}
	return nil
}

func (tomlFormatter) Extension() string {
	return ".toml"
}

func (tomlFormatter) FormatToken(token Token, indent string, format func(string) string) string {
	return formatTokenDefault(token, indent, format)
}
