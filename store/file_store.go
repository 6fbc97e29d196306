package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-cascade/format"
)

// FileStore keeps one file per (configuration, scope) pair: each scope maps
// to a directory, and the configuration name plus the backend's extension
// names the file inside it. A missing file is an absent snapshot.
type FileStore struct {
	dirs      map[string]string
	formatter format.Formatter
}

// NewFileStore builds a store over the scope→directory table using the named
// serialization backend.
func NewFileStore(dirs map[string]string, formatName string) (*FileStore, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("store: at least one scope directory is required")
	}
	formatter, err := format.Lookup(formatName)
	if err != nil {
		return nil, err
	}
	table := make(map[string]string, len(dirs))
	for scope, dir := range dirs {
		if scope == "" || dir == "" {
			return nil, fmt.Errorf("store: scope and directory must be non-empty")
		}
		table[scope] = dir
	}
	return &FileStore{dirs: table, formatter: formatter}, nil
}

// Path returns the file a ref resolves to, whether or not it exists.
func (s *FileStore) Path(ref Ref) (string, error) {
	if err := validateRef(ref); err != nil {
		return "", err
	}
	dir, ok := s.dirs[ref.Scope]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScope, ref.Scope)
	}
	return filepath.Join(dir, ref.Config+s.formatter.Extension()), nil
}

func (s *FileStore) Load(_ context.Context, ref Ref) (map[string]any, Meta, bool, error) {
	path, err := s.Path(ref)
	if err != nil {
		return nil, Meta{}, false, err
	}

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, Meta{}, false, nil
	}
	if err != nil {
		return nil, Meta{}, false, fmt.Errorf("store: opening %s: %w", path, err)
	}
	defer file.Close()

	tree, err := s.formatter.Load(file)
	if err != nil {
		return nil, Meta{}, false, fmt.Errorf("store: loading %s: %w", path, err)
	}

	meta := Meta{
		SnapshotID: uuid.NewString(),
		Path:       path,
	}
	if info, err := file.Stat(); err == nil {
		meta.UpdatedAt = info.ModTime()
	}
	return tree, meta, true, nil
}

func (s *FileStore) Save(_ context.Context, ref Ref, tree map[string]any, meta Meta) (Meta, error) {
	path, err := s.Path(ref)
	if err != nil {
		return Meta{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Meta{}, fmt.Errorf("store: creating scope directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return Meta{}, fmt.Errorf("store: creating %s: %w", path, err)
	}
	if err := s.formatter.Dump(file, tree); err != nil {
		file.Close()
		return Meta{}, fmt.Errorf("store: writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return Meta{}, fmt.Errorf("store: closing %s: %w", path, err)
	}

	saved := mergeMeta(Meta{
		SnapshotID: uuid.NewString(),
		Path:       path,
		UpdatedAt:  time.Now().UTC(),
	}, meta)
	saved.Path = path
	return saved, nil
}
