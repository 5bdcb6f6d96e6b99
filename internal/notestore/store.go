// Package notestore persists the free-text note attached to each contact,
// keyed by the contact's email address.
package notestore

import (
	"context"
	"slices"
	"strings"
)

// Notes is an immutable view of the email → note mapping.
type Notes map[string]string

// Get returns the note stored under email, or "" when there is none.
func (n Notes) Get(email string) string {
	return n[email]
}

// Store is the interface for note persistence.
type Store interface {
	// Get returns the note for email ("" when absent).
	Get(ctx context.Context, email string) (string, error)
	// Set upserts the note for email and persists it before returning.
	Set(ctx context.Context, email, note string) error
	// Snapshot returns a copy of every stored note.
	Snapshot(ctx context.Context) (Notes, error)
	Close() error
}

// Match is one search hit.
type Match struct {
	Email string `json:"email"`
	Note  string `json:"note"`
}

// Searcher is implemented by stores that can search natively.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Match, error)
}

// Search returns notes whose email or text contains query (case-insensitive),
// ordered by email. Stores implementing Searcher answer directly.
func Search(ctx context.Context, s Store, query string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 20
	}
	if searcher, ok := s.(Searcher); ok {
		return searcher.Search(ctx, query, limit)
	}
	notes, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := []Match{}
	for _, email := range notes.Emails() {
		note := notes[email]
		if strings.Contains(strings.ToLower(email), q) || strings.Contains(strings.ToLower(note), q) {
			out = append(out, Match{Email: email, Note: note})
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Emails returns the keys in sorted order.
func (n Notes) Emails() []string {
	keys := make([]string, 0, len(n))
	for k := range n {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (n Notes) clone() Notes {
	out := make(Notes, len(n))
	for k, v := range n {
		out[k] = v
	}
	return out
}
