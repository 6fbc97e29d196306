// Package store persists raw configuration trees, one file or record per
// (configuration, scope) pair. Stores make no merging decisions; they hand
// trees to the layering views and write back what flattening produced.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownScope is returned when a ref names a scope the store was not
// configured with.
var ErrUnknownScope = errors.New("store: unknown scope")

// Ref identifies one persisted snapshot: a configuration name within a scope.
type Ref struct {
	Config string
	Scope  string
}

// Meta is storage-owned metadata used for provenance and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	Path       string            `json:"path,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads and saves one raw tree per scope reference. Load reports
// ok=false for an absent snapshot; absence is not an error.
type Store interface {
	Load(ctx context.Context, ref Ref) (tree map[string]any, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, tree map[string]any, meta Meta) (Meta, error)
}

func validateRef(ref Ref) error {
	if ref.Config == "" {
		return fmt.Errorf("store: config name is required")
	}
	if ref.Scope == "" {
		return fmt.Errorf("store: scope name is required")
	}
	return nil
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.Path != "" {
		out.Path = override.Path
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
