package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the single state document. Load returns (nil, nil) when no
// document exists yet.
type Store interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Close() error
}

// FileStore keeps the state document in one JSON file, the server-side
// equivalent of the browser's local storage. Writes go through a temp file
// and rename so a crash never leaves a half-written document.
type FileStore struct {
	path string
}

// newFileStore creates the parent directory if needed.
func newFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load reads the state document.
func (f *FileStore) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save writes the state document atomically.
func (f *FileStore) Save(data []byte) error {
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Close is a no-op for file storage.
func (f *FileStore) Close() error {
	return nil
}
