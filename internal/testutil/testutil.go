// Package testutil provides shared fakes and store helpers for tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/oauth2"

	"github.com/starford/contactnotes/internal/models"
	"github.com/starford/contactnotes/internal/notestore"
)

// FileStore opens a JSON note store in a temporary directory.
func FileStore(t *testing.T) *notestore.FileStore {
	t.Helper()
	s, err := notestore.OpenFile(filepath.Join(t.TempDir(), "notes.json"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// SQLiteStore creates a temporary SQLite note store that is cleaned up
// with the test.
func SQLiteStore(t *testing.T) *notestore.SQLiteStore {
	t.Helper()
	dbFile, err := os.CreateTemp("", "contactnotes-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	s, err := notestore.OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Fetcher is a contacts.Fetcher returning canned results.
type Fetcher struct {
	mu       sync.Mutex
	Contacts []models.Contact
	Err      error
	tokens   []string
}

func (f *Fetcher) Fetch(_ context.Context, bearerToken string) ([]models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, bearerToken)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Contacts, nil
}

// Tokens returns the bearer tokens Fetch was called with.
func (f *Fetcher) Tokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

// Provider is an oauth.Provider that accepts a single authorization code.
type Provider struct {
	Code       string
	Token      *oauth2.Token
	User       models.Profile
	ProfileErr error

	mu        sync.Mutex
	exchanges int
}

func (p *Provider) Name() string { return "fake" }

func (p *Provider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + state
}

func (p *Provider) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	p.mu.Lock()
	p.exchanges++
	p.mu.Unlock()
	if code == "" || code != p.Code {
		return nil, &oauth2.RetrieveError{ErrorCode: "invalid_grant"}
	}
	return p.Token, nil
}

func (p *Provider) Profile(_ context.Context, _ *oauth2.Token) (*models.Profile, error) {
	if p.ProfileErr != nil {
		return nil, p.ProfileErr
	}
	u := p.User
	return &u, nil
}

// Exchanges returns how many times Exchange was called.
func (p *Provider) Exchanges() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exchanges
}
