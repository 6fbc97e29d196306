package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-cascade/config"
	"github.com/goliatone/go-cascade/store"
)

func TestParseValue(t *testing.T) {
	cases := []struct {
		raw  string
		want any
	}{
		{"30", 30},
		{"-7", -7},
		{"1.5", 1.5},
		{"1e3", float64(1000)},
		{"true", true},
		{"null", nil},
		{`"quoted"`, "quoted"},
		{"plain text", "plain text"},
		{`[1, 2]`, []any{float64(1), float64(2)}},
	}
	for _, tc := range cases {
		got := parseValue(tc.raw)
		switch want := tc.want.(type) {
		case []any:
			list, ok := got.([]any)
			if !ok || len(list) != len(want) {
				t.Fatalf("parseValue(%q) = %#v", tc.raw, got)
			}
		default:
			if got != tc.want {
				t.Fatalf("parseValue(%q) = %#v, want %#v", tc.raw, got, tc.want)
			}
		}
	}
}

func TestSetJSONPatchesFile(t *testing.T) {
	dir := t.TempDir()
	settings := config.Settings{
		Scopes: []config.ScopeDir{{Name: "user", Dir: dir}},
		Format: "json",
	}
	target := filepath.Join(dir, "app.json")
	if err := os.WriteFile(target, []byte(`{"timeout": 30, "name": "demo"}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := setJSON(settings, "app", "user", "limits.max", 100); err != nil {
		t.Fatalf("setJSON: %v", err)
	}
	payload, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(payload)
	// A targeted patch keeps the untouched parts of the document intact.
	if !strings.Contains(content, `"timeout": 30`) || !strings.Contains(content, `"max":100`) {
		t.Fatalf("patched file = %s", content)
	}
}

func TestSetJSONCreatesMissingFile(t *testing.T) {
	dir := t.TempDir()
	settings := config.Settings{
		Scopes: []config.ScopeDir{{Name: "user", Dir: dir}},
		Format: "json",
	}

	if err := setJSON(settings, "app", "user", "timeout", 45); err != nil {
		t.Fatalf("setJSON: %v", err)
	}
	payload, err := os.ReadFile(filepath.Join(dir, "app.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(payload), `"timeout":45`) {
		t.Fatalf("file = %s", payload)
	}
}

func TestSetTree(t *testing.T) {
	dir := t.TempDir()
	settings := config.Settings{
		Scopes: []config.ScopeDir{{Name: "user", Dir: dir}},
		Format: "yaml",
	}
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	if err := setTree(cmd, settings, "app", "user", "limits.max", 100); err != nil {
		t.Fatalf("setTree: %v", err)
	}

	fileStore, err := store.NewFileStore(map[string]string{"user": dir}, "yaml")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	tree, _, ok, err := fileStore.Load(context.Background(), store.Ref{Config: "app", Scope: "user"})
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	limits, ok := tree["limits"].(map[string]any)
	if !ok || limits["max"] != 100 {
		t.Fatalf("tree = %#v", tree)
	}

	// Writing through an existing scalar is refused.
	if err := setTree(cmd, settings, "app", "user", "limits.max.deep", 1); err == nil {
		t.Fatal("expected an error crossing a non-mapping value")
	}
}
