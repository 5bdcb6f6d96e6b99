package notestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/starford/contactnotes/internal/checksum"
	"github.com/starford/contactnotes/internal/storage"
)

// FileStore keeps every note in memory and rewrites the whole JSON snapshot
// on each mutation. Mutations are serialised by mu.
type FileStore struct {
	mu    sync.RWMutex
	file  storage.Provider
	notes Notes
	sum   string // checksum of the last snapshot read or written
}

// Compile-time interface check.
var _ Store = (*FileStore)(nil)

// OpenFile loads the snapshot at path. A missing or empty file yields an
// empty store.
func OpenFile(path string) (*FileStore, error) {
	file, err := storage.NewFile(path)
	if err != nil {
		return nil, err
	}
	return NewFileStore(file)
}

// NewFileStore loads the snapshot held by file.
func NewFileStore(file storage.Provider) (*FileStore, error) {
	s := &FileStore{file: file, notes: Notes{}}
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the snapshot location.
func (s *FileStore) Path() string {
	return s.file.Path()
}

// Get returns the note for email. It never fails.
func (s *FileStore) Get(_ context.Context, email string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notes[email], nil
}

// Set upserts the note and synchronously rewrites the snapshot. If the write
// fails the in-memory mapping is restored, so memory never runs ahead of disk.
func (s *FileStore) Set(_ context.Context, email, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.notes[email]
	s.notes[email] = note

	data, err := json.Marshal(s.notes)
	if err == nil {
		err = s.file.Write(data)
	}
	if err != nil {
		if existed {
			s.notes[email] = prev
		} else {
			delete(s.notes, email)
		}
		return fmt.Errorf("notestore: persist: %w", err)
	}
	s.sum = checksum.Sum(data)
	return nil
}

// Snapshot returns a copy of every note.
func (s *FileStore) Snapshot(_ context.Context) (Notes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notes.clone(), nil
}

// Reload re-reads the snapshot from disk and reports whether its content
// differed from what the store last saw.
//
// The read happens under the write lock so a concurrent Set cannot land
// between reading the file and installing its content.
func (s *FileStore) Reload() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.file.Read()
	if errors.Is(err, os.ErrNotExist) {
		data = nil
	} else if err != nil {
		return false, fmt.Errorf("notestore: load: %w", err)
	}

	if !checksum.Changed(s.sum, data) {
		return false, nil
	}

	notes := Notes{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &notes); err != nil {
			return false, fmt.Errorf("notestore: decode %s: %w", s.file.Path(), err)
		}
		if notes == nil {
			notes = Notes{}
		}
	}
	s.notes = notes
	s.sum = checksum.Sum(data)
	return true, nil
}

// Close is a no-op; every mutation is already on disk.
func (s *FileStore) Close() error {
	return nil
}
