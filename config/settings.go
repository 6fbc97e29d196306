// Package config loads and dumps named hierarchical configurations: one file
// per scope, merged through an overridable view, governed by a settings file
// that names the scopes, their directories, and the serialization format.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-cascade"
	"github.com/goliatone/go-cascade/format"
)

// SettingsFileName is the settings file searched for when none is given.
const SettingsFileName = ".cascade.yaml"

var (
	// ErrPendingScratch is returned when dumping an object that still holds
	// unflattened edits in its scratch scope.
	ErrPendingScratch = errors.New("config: pending modifications in scratch")

	// ErrScopeMismatch is returned when an object's scopes differ from the
	// scopes the settings name.
	ErrScopeMismatch = errors.New("config: scopes in the object do not match scopes in settings")

	// ErrSettingsNotFound is returned when no settings file exists between
	// the working directory and the filesystem root.
	ErrSettingsNotFound = errors.New("config: settings file not found")
)

// ScopeDir associates a scope name with the directory holding its files.
type ScopeDir struct {
	Name string `yaml:"name"`
	Dir  string `yaml:"dir"`
}

// Settings governs how named configurations are located and serialized.
type Settings struct {
	Scopes []ScopeDir     `yaml:"scopes"`
	Format string         `yaml:"format"`
	Schema string         `yaml:"schema"`
	Rules  []cascade.Rule `yaml:"rules"`
}

// Validate checks the settings are usable: at least one scope, unique
// non-empty scope names and directories, and a registered format.
func (s Settings) Validate() error {
	if len(s.Scopes) == 0 {
		return fmt.Errorf("%w: at least one scope is required", cascade.ErrInvalidArgument)
	}
	seen := make(map[string]struct{}, len(s.Scopes))
	for _, scope := range s.Scopes {
		if scope.Name == "" || scope.Dir == "" {
			return fmt.Errorf("%w: scope entries need a name and a directory", cascade.ErrInvalidArgument)
		}
		if scope.Name == cascade.ScratchScope {
			return fmt.Errorf("%w: scope name %q is reserved", cascade.ErrInvalidArgument, scope.Name)
		}
		if _, ok := seen[scope.Name]; ok {
			return fmt.Errorf("%w: duplicate scope %q", cascade.ErrInvalidArgument, scope.Name)
		}
		seen[scope.Name] = struct{}{}
	}
	if _, err := format.Lookup(s.Format); err != nil {
		return err
	}
	return nil
}

// ScopeNames returns the scope names in priority order.
func (s Settings) ScopeNames() []string {
	names := make([]string, len(s.Scopes))
	for i, scope := range s.Scopes {
		names[i] = scope.Name
	}
	return names
}

func (s Settings) scopeDirs() map[string]string {
	dirs := make(map[string]string, len(s.Scopes))
	for _, scope := range s.Scopes {
		dirs[scope.Name] = scope.Dir
	}
	return dirs
}

var (
	defaultsMu sync.RWMutex
	defaults   = Settings{Format: "json"}
)

// SetDefaultScopes sets the scopes used when a call passes none.
func SetDefaultScopes(scopes []ScopeDir) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	defaults.Scopes = append([]ScopeDir(nil), scopes...)
}

// SetDefaultFormat sets the serialization format used when a call passes none.
func SetDefaultFormat(name string) error {
	if _, err := format.Lookup(name); err != nil {
		return err
	}
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	defaults.Format = name
	return nil
}

// SetDefaults replaces the default settings wholesale.
func SetDefaults(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	defaults = settings
	return nil
}

// Defaults returns a copy of the current default settings.
func Defaults() Settings {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	out := defaults
	out.Scopes = append([]ScopeDir(nil), defaults.Scopes...)
	out.Rules = append([]cascade.Rule(nil), defaults.Rules...)
	return out
}

// Option overrides one default setting for a single Load/Dump call.
type Option func(*Settings)

// WithScopes overrides the scope table for this call.
func WithScopes(scopes []ScopeDir) Option {
	return func(s *Settings) {
		s.Scopes = append([]ScopeDir(nil), scopes...)
	}
}

// WithFormat overrides the serialization format for this call.
func WithFormat(name string) Option {
	return func(s *Settings) {
		s.Format = name
	}
}

// WithSchema overrides the schema document path for this call.
func WithSchema(path string) Option {
	return func(s *Settings) {
		s.Schema = path
	}
}

// WithRules overrides the constraint rules for this call.
func WithRules(rules []cascade.Rule) Option {
	return func(s *Settings) {
		s.Rules = append([]cascade.Rule(nil), rules...)
	}
}

func retrieveSettings(opts []Option) (Settings, error) {
	settings := Defaults()
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// SetupFromFile reads a settings file and installs it as the defaults. Scope
// directories are resolved relative to the settings file location.
func SetupFromFile(path string) (Settings, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: reading settings: %w", err)
	}
	var settings Settings
	if err := yaml.Unmarshal(payload, &settings); err != nil {
		return Settings{}, fmt.Errorf("config: parsing settings: %w", err)
	}
	if settings.Format == "" {
		settings.Format = "json"
	}
	base := filepath.Dir(path)
	for i, scope := range settings.Scopes {
		if scope.Dir != "" && !filepath.IsAbs(scope.Dir) {
			settings.Scopes[i].Dir = filepath.Join(base, scope.Dir)
		}
	}
	if settings.Schema != "" && !filepath.IsAbs(settings.Schema) {
		settings.Schema = filepath.Join(base, settings.Schema)
	}
	if err := SetDefaults(settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// SearchFileInPath looks for name starting at dir and walking up to the
// filesystem root. An empty dir starts at the working directory.
func SearchFileInPath(dir, name string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = cwd
	}
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: %q", ErrSettingsNotFound, name)
		}
		dir = parent
	}
}
