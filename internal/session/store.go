// Package session manages browser sessions and the authenticated principal
// attached to them.
package session

import (
	"context"
	"time"
)

// Session is one browser session.
type Session struct {
	ID        string     `json:"id"`
	Principal *Principal `json:"principal,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// Expired reports whether the session is past ExpiresAt.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store defines how sessions are stored and retrieved.
type Store interface {
	Create(ctx context.Context, s Session) error
	// Get returns nil, nil when the session does not exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
