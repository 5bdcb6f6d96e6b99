package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Token string `yaml:"token"`
}

func (s *sample) Validate() error {
	if s.Port == 0 {
		return errors.New("port is required")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_TOKEN", "from-env")
	path := writeFile(t, "name: demo\nport: 3000\ntoken: ${SAMPLE_TOKEN}\n")

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "demo" || s.Port != 3000 || s.Token != "from-env" {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_Validates(t *testing.T) {
	path := writeFile(t, "name: demo\n")
	var s sample
	if err := Load(path, &s); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadOptional(t *testing.T) {
	s := sample{Name: "default"}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &s)
	if err != nil || found {
		t.Fatalf("missing file: found=%v err=%v", found, err)
	}
	if s.Name != "default" {
		t.Errorf("target modified: %+v", s)
	}

	// Overrides only the keys present and skips validation.
	path := writeFile(t, "name: demo\n")
	found, err = LoadOptional(path, &s)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if s.Name != "demo" || s.Port != 0 {
		t.Errorf("got %+v", s)
	}
}

func TestLoadOptional_BadYAML(t *testing.T) {
	path := writeFile(t, "name: [unterminated\n")
	var s sample
	if _, err := LoadOptional(path, &s); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	def := writeFile(t, "port: 8080\n")
	var s sample
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"), def, &s); err != nil {
		t.Fatal(err)
	}
	if s.Port != 8080 {
		t.Errorf("port = %d", s.Port)
	}
}
