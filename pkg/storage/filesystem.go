package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore owns a single file on disk and replaces it atomically on write.
type FileStore struct {
	path string
}

// NewFileStore ensures the parent directory exists and returns a handle.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		path = "./data.json"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Exists reports whether the file is present.
func (s *FileStore) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat data file: %w", err)
}

// Read returns the full file contents.
func (s *FileStore) Read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	return data, nil
}

// Write replaces the file contents. Data lands in a sibling temp file that is
// synced and renamed over the target, so readers never observe a partial write.
func (s *FileStore) Write(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp data file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp data file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp data file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp data file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// CreateExclusive writes data only if the file does not exist yet. It reports
// false without error when another writer got there first.
func (s *FileStore) CreateExclusive(data []byte) (bool, error) {
	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("create data file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(s.path)
		return false, fmt.Errorf("write data file: %w", err)
	}
	if err := file.Close(); err != nil {
		return false, fmt.Errorf("close data file: %w", err)
	}
	return true, nil
}

// Path exposes the underlying path (useful for logging).
func (s *FileStore) Path() string {
	return s.path
}
