package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func testFileStore(t *testing.T) (*FileStore, map[string]string) {
	t.Helper()
	dirs := map[string]string{
		"site": filepath.Join(t.TempDir(), "site"),
		"user": filepath.Join(t.TempDir(), "user"),
	}
	s, err := NewFileStore(dirs, "json")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s, dirs
}

func TestNewFileStoreErrors(t *testing.T) {
	if _, err := NewFileStore(nil, "json"); err == nil {
		t.Fatal("expected an error for an empty scope table")
	}
	if _, err := NewFileStore(map[string]string{"user": ""}, "json"); err == nil {
		t.Fatal("expected an error for an empty directory")
	}
	if _, err := NewFileStore(map[string]string{"user": "/tmp/x"}, "nope"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestFileStorePath(t *testing.T) {
	s, dirs := testFileStore(t)

	path, err := s.Path(Ref{Config: "app", Scope: "user"})
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if want := filepath.Join(dirs["user"], "app.json"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}

	if _, err := s.Path(Ref{Config: "app", Scope: "global"}); !errors.Is(err, ErrUnknownScope) {
		t.Fatalf("expected ErrUnknownScope, got %v", err)
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	s, _ := testFileStore(t)

	_, _, ok, err := s.Load(context.Background(), Ref{Config: "app", Scope: "user"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatal("missing file reported ok=true")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, _ := testFileStore(t)
	ref := Ref{Config: "app", Scope: "site"}
	tree := map[string]any{
		"timeout": 30,
		"nested":  map[string]any{"items": []any{1, 2}},
	}

	saved, err := s.Save(context.Background(), ref, tree, Meta{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.SnapshotID == "" || saved.Path == "" {
		t.Fatalf("meta = %+v", saved)
	}

	loaded, meta, ok, err := s.Load(context.Background(), ref)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(loaded, tree) {
		t.Fatalf("tree = %#v, want %#v", loaded, tree)
	}
	if meta.Path != saved.Path {
		t.Fatalf("path = %q, want %q", meta.Path, saved.Path)
	}
}

func TestFileStoreSaveCreatesDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deep", "scopes", "user")
	s, err := NewFileStore(map[string]string{"user": dir}, "yaml")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, err := s.Save(context.Background(), Ref{Config: "app", Scope: "user"}, map[string]any{"a": 1}, Meta{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, _, ok, err := s.Load(context.Background(), Ref{Config: "app", Scope: "user"})
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if loaded["a"] != 1 {
		t.Fatalf("tree = %#v", loaded)
	}
}
