package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the snapshot as a single JSON file on local disk.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Write serializes the snapshot to the store's path, creating intermediate
// directories as needed. Any prior snapshot is overwritten.
func (s *FileStore) Write(ctx context.Context, snap *Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %q: %w", s.path, err)
	}
	return nil
}

// Read loads and validates the stored snapshot.
func (s *FileStore) Read(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %q: %w", s.path, err)
	}
	return Decode(data)
}
