package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

const tmpPattern = ".contactnotes-tmp-*"

// File implements Provider backed by one file on the local file system.
type File struct {
	path string // absolute path to the snapshot file
}

// NewFile creates a Provider for the snapshot at path. The parent directory
// is created if needed; the file itself may not exist yet.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, fmt.Errorf("storage: path is a directory: %s", abs)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir: %w", err)
	}
	return &File{path: abs}, nil
}

// Path returns the absolute snapshot path.
func (f *File) Path() string {
	return f.path
}

// Read returns the raw bytes of the snapshot.
func (f *File) Read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}
	return data, nil
}

// Write atomically replaces the snapshot: tmp file → fsync → rename.
func (f *File) Write(content []byte) error {
	dir := filepath.Dir(f.path)

	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// IsTemp reports whether name is a temporary file created by Write.
func IsTemp(name string) bool {
	ok, _ := filepath.Match(tmpPattern, filepath.Base(name))
	return ok
}
