package config

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-cascade"
	"github.com/goliatone/go-cascade/schema"
	"github.com/goliatone/go-cascade/store"
)

// Source records where one scope of a loaded configuration came from.
type Source struct {
	Scope      string
	Path       string
	SnapshotID string
}

// Load reads every scope file of the named configuration and merges them into
// an overridable view, strongest scope first. Scopes whose file does not
// exist contribute an empty mapping so they stay writable.
func Load(ctx context.Context, name string, opts ...Option) (*cascade.OverridableMapping, []Source, error) {
	settings, err := retrieveSettings(opts)
	if err != nil {
		return nil, nil, err
	}
	fileStore, err := store.NewFileStore(settings.scopeDirs(), settings.Format)
	if err != nil {
		return nil, nil, err
	}

	pairs := make([]cascade.ScopedMapping, 0, len(settings.Scopes))
	sources := make([]Source, 0, len(settings.Scopes))
	for _, scope := range settings.Scopes {
		ref := store.Ref{Config: name, Scope: scope.Name}
		tree, meta, ok, err := fileStore.Load(ctx, ref)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			tree = map[string]any{}
			meta.Path, _ = fileStore.Path(ref)
		}
		pairs = append(pairs, cascade.Scoped(scope.Name, tree))
		sources = append(sources, Source{
			Scope:      scope.Name,
			Path:       meta.Path,
			SnapshotID: meta.SnapshotID,
		})
	}

	cfg, err := cascade.NewOverridableMapping(pairs)
	if err != nil {
		return nil, nil, err
	}
	return cfg, sources, nil
}

// Dump writes each scope of cfg to its file. The object must carry no
// pending scratch edits, and its scope set must match the settings scope set.
// Empty scopes are skipped rather than written as empty files.
func Dump(ctx context.Context, cfg *cascade.OverridableMapping, name string, opts ...Option) error {
	settings, err := retrieveSettings(opts)
	if err != nil {
		return err
	}
	if len(cfg.Scratch()) > 0 {
		return ErrPendingScratch
	}
	persisted := cfg.PersistedScopeNames()
	expected := settings.ScopeNames()
	if len(persisted) != len(expected) {
		return fmt.Errorf("%w: object has %v, settings have %v", ErrScopeMismatch, persisted, expected)
	}
	for i, scope := range expected {
		if persisted[i] != scope {
			return fmt.Errorf("%w: object has %v, settings have %v", ErrScopeMismatch, persisted, expected)
		}
	}

	fileStore, err := store.NewFileStore(settings.scopeDirs(), settings.Format)
	if err != nil {
		return err
	}
	for _, scope := range persisted {
		tree, err := cfg.Scope(scope)
		if err != nil {
			return err
		}
		if len(tree) == 0 {
			continue
		}
		if _, err := fileStore.Save(ctx, store.Ref{Config: name, Scope: scope}, tree, store.Meta{}); err != nil {
			return err
		}
	}
	return nil
}

// Validate exports cfg and checks it against the settings' schema document
// and constraint rules. Either may be absent; with neither configured the
// call is a no-op.
func Validate(cfg *cascade.OverridableMapping, opts ...Option) error {
	settings, err := retrieveSettings(opts)
	if err != nil {
		return err
	}
	tree, err := cfg.Export()
	if err != nil {
		return err
	}

	if settings.Schema != "" {
		payload, err := os.ReadFile(settings.Schema)
		if err != nil {
			return fmt.Errorf("config: reading schema: %w", err)
		}
		doc, err := schema.FromJSON(payload)
		if err != nil {
			return fmt.Errorf("config: parsing schema: %w", err)
		}
		if violations := schema.Validate(tree, doc); len(violations) > 0 {
			return fmt.Errorf("config: schema validation failed: %v", violations)
		}
	}

	if len(settings.Rules) > 0 {
		checker, err := cascade.NewChecker(settings.Rules)
		if err != nil {
			return err
		}
		if err := checker.Check(tree); err != nil {
			return fmt.Errorf("config: rule validation failed: %w", err)
		}
	}
	return nil
}
