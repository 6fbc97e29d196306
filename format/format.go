// Package format registers the serialization backends configuration scopes
// are read from and written to, plus pretty printing of merged views with
// per-line provenance.
package format

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
)

// ErrUnknownFormat is returned when a format name has no registered backend.
var ErrUnknownFormat = errors.New("format: unknown format")

// Loader reads a raw configuration tree from a stream.
type Loader interface {
	Load(r io.Reader) (map[string]any, error)
}

// Dumper writes a raw configuration tree to a stream.
type Dumper interface {
	Dump(w io.Writer, tree map[string]any) error
}

// Formatter is a full serialization backend: it loads, dumps, and renders
// pretty-print tokens for one on-disk format.
type Formatter interface {
	Loader
	Dumper
	// Extension is the file extension used for scope files, dot included.
	Extension() string
	// FormatToken renders one pretty-print token into a line.
	FormatToken(token Token, indent string, format func(string) string) string
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Formatter{}
)

// Register associates name with a backend. Later registrations replace
// earlier ones.
func Register(name string, formatter Formatter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = formatter
}

// Lookup resolves a registered backend by name.
func Lookup(name string) (Formatter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	formatter, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return formatter, nil
}

// Names lists the registered format names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
