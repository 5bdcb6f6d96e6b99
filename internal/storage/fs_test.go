package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempFile(t *testing.T) *File {
	t.Helper()
	f, err := NewFile(filepath.Join(t.TempDir(), "notes.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	return f
}

func TestWriteAndRead(t *testing.T) {
	s := tempFile(t)
	content := []byte(`{"a@x.com":"hello"}`)
	if err := s.Write(content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestReadMissingIsNotExist(t *testing.T) {
	s := tempFile(t)
	_, err := s.Read()
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}

func TestNewFileCreatesParentDirs(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a", "b", "notes.json")
	s, err := NewFile(p)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := s.Write([]byte("{}")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Errorf("snapshot not created: %v", err)
	}
}

func TestNewFileRejectsDirectory(t *testing.T) {
	if _, err := NewFile(t.TempDir()); err == nil {
		t.Error("expected error when path is a directory")
	}
}

func TestNewFileRequiresPath(t *testing.T) {
	if _, err := NewFile(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempFile(t)
	_ = s.Write([]byte("original content"))

	updated := []byte("updated content")
	if err := s.Write(updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read()
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(s.Path()), tmpPattern))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestWriteFailsWhenDirRemoved(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	s, err := NewFile(filepath.Join(dir, "notes.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if err := s.Write([]byte("{}")); err == nil {
		t.Error("expected write error when parent directory is missing")
	}
}

func TestIsTemp(t *testing.T) {
	if !IsTemp("/x/.contactnotes-tmp-12345") {
		t.Error("temp name not recognised")
	}
	if IsTemp("/x/notes.json") {
		t.Error("snapshot name recognised as temp")
	}
}
