package creds

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirStore keeps one file per snapshot inside a single directory, named
// by the snapshot key. The directory is shared across restarts; files
// are written 0600 since they hold live session cookies.
type DirStore struct {
	dir string
}

// NewDirStore creates the directory if needed and returns a store over it.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("dirstore: mkdir %s: %w", dir, err)
	}
	return &DirStore{dir: dir}, nil
}

func (s *DirStore) Put(_ context.Context, key, payload string) error {
	path := filepath.Join(s.dir, key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(payload), 0o600); err != nil {
		return fmt.Errorf("dirstore: write %s: %w", key, err)
	}
	// Rename so readers never observe a partially written snapshot.
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("dirstore: commit %s: %w", key, err)
	}
	return nil
}

func (s *DirStore) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("dirstore: list %s: %w", s.dir, err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) == ".tmp" {
			continue
		}
		keys = append(keys, e.Name())
	}
	return keys, nil
}

func (s *DirStore) Get(_ context.Context, key string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("dirstore: read %s: %w", key, err)
	}
	return string(data), nil
}
