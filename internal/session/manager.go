package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/starford/contactnotes/internal/apperr"
	"github.com/starford/contactnotes/internal/models"
)

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

// Manager ties the session store to the signed cookie.
type Manager struct {
	store   Store
	cookies *Cookies
	ttl     time.Duration
	now     func() time.Time
}

// NewManager creates a Manager. A non-positive ttl means DefaultTTL.
func NewManager(store Store, cookies *Cookies, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:   store,
		cookies: cookies,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Load returns the session referenced by the request cookie, or nil when
// there is none.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	id := m.cookies.Read(r)
	if id == "" {
		return nil, nil
	}
	sess, err := m.store.Get(r.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	return sess, nil
}

// IsAuthenticated reports whether sess carries a principal from a completed
// OAuth handshake.
func (m *Manager) IsAuthenticated(sess *Session) bool {
	return sess != nil && sess.Principal != nil
}

// CompleteLogin attaches token to profile, stores the result as the
// principal of a fresh session and issues its cookie. Any previous session
// of the request is discarded.
func (m *Manager) CompleteLogin(ctx context.Context, w http.ResponseWriter, r *http.Request, profile models.Profile, token *oauth2.Token) (*Principal, error) {
	if old := m.cookies.Read(r); old != "" {
		_ = m.store.Delete(ctx, old)
	}

	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := m.now()
	principal := NewPrincipal(profile, token, now)
	sess := Session{
		ID:        id,
		Principal: principal,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("session: create: %w", err)
	}
	if err := m.cookies.Set(w, id, sess.ExpiresAt); err != nil {
		return nil, err
	}
	return principal, nil
}

// BearerToken returns the access token of the session principal.
func (m *Manager) BearerToken(sess *Session) (string, error) {
	if !m.IsAuthenticated(sess) || sess.Principal.AccessToken == "" {
		return "", apperr.ErrUnauthenticated
	}
	return sess.Principal.AccessToken, nil
}

// End deletes the request's session and clears its cookie. It is idempotent.
func (m *Manager) End(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var err error
	if id := m.cookies.Read(r); id != "" {
		err = m.store.Delete(ctx, id)
	}
	m.cookies.Clear(w)
	return err
}

type sessionContextKey struct{}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// FromContext extracts the session stored by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*Session)
	return sess, ok && sess != nil
}
