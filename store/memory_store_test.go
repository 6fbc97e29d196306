package store

import (
	"context"
	"reflect"
	"testing"
)

func TestMemoryStoreAbsent(t *testing.T) {
	s := NewMemoryStore()

	_, _, ok, err := s.Load(context.Background(), Ref{Config: "app", Scope: "user"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatal("absent snapshot reported ok=true")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ref := Ref{Config: "app", Scope: "user"}
	tree := map[string]any{"timeout": 30}

	saved, err := s.Save(context.Background(), ref, tree, Meta{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.SnapshotID == "" {
		t.Fatal("Save did not assign a snapshot id")
	}
	if saved.UpdatedAt.IsZero() {
		t.Fatal("Save did not assign a timestamp")
	}

	loaded, meta, ok, err := s.Load(context.Background(), ref)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(loaded, tree) {
		t.Fatalf("tree = %#v", loaded)
	}
	if meta.SnapshotID != saved.SnapshotID {
		t.Fatalf("snapshot id = %q, want %q", meta.SnapshotID, saved.SnapshotID)
	}
}

func TestMemoryStoreKeepsCallerMeta(t *testing.T) {
	s := NewMemoryStore()
	ref := Ref{Config: "app", Scope: "user"}

	saved, err := s.Save(context.Background(), ref, map[string]any{}, Meta{
		SnapshotID: "fixed",
		Extra:      map[string]string{"origin": "test"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.SnapshotID != "fixed" {
		t.Fatalf("snapshot id = %q", saved.SnapshotID)
	}
	if saved.Extra["origin"] != "test" {
		t.Fatalf("extra = %#v", saved.Extra)
	}
}

func TestMemoryStoreValidatesRefs(t *testing.T) {
	s := NewMemoryStore()
	for _, ref := range []Ref{{}, {Config: "app"}, {Scope: "user"}} {
		if _, _, _, err := s.Load(context.Background(), ref); err == nil {
			t.Fatalf("Load(%+v) accepted an invalid ref", ref)
		}
		if _, err := s.Save(context.Background(), ref, nil, Meta{}); err == nil {
			t.Fatalf("Save(%+v) accepted an invalid ref", ref)
		}
	}
}
