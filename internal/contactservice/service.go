// Package contactservice joins the contact directory with the note store.
package contactservice

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/contactnotes/internal/contacts"
	"github.com/starford/contactnotes/internal/metrics"
	"github.com/starford/contactnotes/internal/models"
	"github.com/starford/contactnotes/internal/notestore"
)

// Events receives note change notifications.
type Events interface {
	NoteSaved(email string)
}

// Service coordinates the fetcher, the note store and change notifications.
type Service struct {
	fetcher contacts.Fetcher
	notes   notestore.Store
	events  Events
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithEvents publishes note saves to e.
func WithEvents(e Events) Option {
	return func(s *Service) { s.events = e }
}

// WithMetrics records fetches and saves in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service.
func NewService(fetcher contacts.Fetcher, notes notestore.Store, opts ...Option) *Service {
	s := &Service{fetcher: fetcher, notes: notes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListContacts fetches the contacts visible to bearerToken, attaches notes
// and sorts them most recently updated first. Fetch failures come back as
// *contacts.FetchError.
func (s *Service) ListContacts(ctx context.Context, bearerToken string) ([]models.ContactView, error) {
	start := time.Now()
	raw, err := s.fetcher.Fetch(ctx, bearerToken)
	s.metrics.ObserveFetch(start, err)
	if err != nil {
		return nil, err
	}

	notes, err := s.notes.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("contactservice: notes snapshot: %w", err)
	}
	return contacts.Merge(raw, notes), nil
}

// SaveNote stores note for email. Any string is accepted for either field.
func (s *Service) SaveNote(ctx context.Context, email, note string) error {
	err := s.notes.Set(ctx, email, note)
	s.metrics.ObserveSave(err)
	if err != nil {
		return err
	}
	if s.events != nil {
		s.events.NoteSaved(email)
	}
	return nil
}

// Note returns the note stored for email, or "".
func (s *Service) Note(ctx context.Context, email string) (string, error) {
	return s.notes.Get(ctx, email)
}
