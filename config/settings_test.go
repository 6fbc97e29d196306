package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-cascade"
)

func TestSettingsValidate(t *testing.T) {
	cases := []struct {
		name     string
		settings Settings
		wantErr  bool
	}{
		{
			name: "valid",
			settings: Settings{
				Scopes: []ScopeDir{{Name: "site", Dir: "/etc/app"}, {Name: "user", Dir: "/home/app"}},
				Format: "json",
			},
		},
		{
			name:     "no scopes",
			settings: Settings{Format: "json"},
			wantErr:  true,
		},
		{
			name: "empty directory",
			settings: Settings{
				Scopes: []ScopeDir{{Name: "site"}},
				Format: "json",
			},
			wantErr: true,
		},
		{
			name: "reserved scope name",
			settings: Settings{
				Scopes: []ScopeDir{{Name: cascade.ScratchScope, Dir: "/tmp"}},
				Format: "json",
			},
			wantErr: true,
		},
		{
			name: "duplicate scope",
			settings: Settings{
				Scopes: []ScopeDir{{Name: "user", Dir: "/a"}, {Name: "user", Dir: "/b"}},
				Format: "json",
			},
			wantErr: true,
		},
		{
			name: "unknown format",
			settings: Settings{
				Scopes: []ScopeDir{{Name: "user", Dir: "/a"}},
				Format: "nope",
			},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.settings.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestSetupFromFile(t *testing.T) {
	restoreDefaults(t)
	dir := t.TempDir()
	payload := []byte(`
scopes:
  - name: site
    dir: scopes/site
  - name: user
    dir: /abs/user
format: yaml
schema: schema.json
`)
	path := filepath.Join(dir, SettingsFileName)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	settings, err := SetupFromFile(path)
	if err != nil {
		t.Fatalf("SetupFromFile: %v", err)
	}
	if settings.Format != "yaml" {
		t.Fatalf("format = %q", settings.Format)
	}
	// Relative paths resolve against the settings file; absolute ones stay.
	if want := filepath.Join(dir, "scopes", "site"); settings.Scopes[0].Dir != want {
		t.Fatalf("site dir = %q, want %q", settings.Scopes[0].Dir, want)
	}
	if settings.Scopes[1].Dir != "/abs/user" {
		t.Fatalf("user dir = %q", settings.Scopes[1].Dir)
	}
	if want := filepath.Join(dir, "schema.json"); settings.Schema != want {
		t.Fatalf("schema = %q, want %q", settings.Schema, want)
	}

	installed := Defaults()
	if installed.Format != "yaml" || len(installed.Scopes) != 2 {
		t.Fatalf("defaults = %+v", installed)
	}
}

func TestSetupFromFileInvalid(t *testing.T) {
	restoreDefaults(t)
	path := filepath.Join(t.TempDir(), SettingsFileName)
	if err := os.WriteFile(path, []byte("scopes: []\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := SetupFromFile(path); err == nil {
		t.Fatal("expected an error for settings without scopes")
	}
}

func TestSearchFileInPath(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	path := filepath.Join(root, SettingsFileName)
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	found, err := SearchFileInPath(nested, SettingsFileName)
	if err != nil {
		t.Fatalf("SearchFileInPath: %v", err)
	}
	if found != path {
		t.Fatalf("found = %q, want %q", found, path)
	}

	if _, err := SearchFileInPath(t.TempDir(), "no_such_file.yaml"); !errors.Is(err, ErrSettingsNotFound) {
		t.Fatalf("expected ErrSettingsNotFound, got %v", err)
	}
}

// restoreDefaults puts the package defaults back once a test that mutates
// them finishes.
func restoreDefaults(t *testing.T) {
	t.Helper()
	prior := Defaults()
	t.Cleanup(func() {
		defaultsMu.Lock()
		defaults = prior
		defaultsMu.Unlock()
	})
}
