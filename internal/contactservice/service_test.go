package contactservice

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/contactnotes/internal/contacts"
	"github.com/starford/contactnotes/internal/metrics"
	"github.com/starford/contactnotes/internal/models"
	"github.com/starford/contactnotes/internal/notestore"
	"github.com/starford/contactnotes/internal/testutil"
)

type recordingEvents struct {
	saved []string
}

func (r *recordingEvents) NoteSaved(email string) {
	r.saved = append(r.saved, email)
}

// brokenStore fails every write.
type brokenStore struct {
	notestore.Store
}

func (brokenStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestListContacts_MergesAndSorts(t *testing.T) {
	ctx := context.Background()
	store := testutil.FileStore(t)
	if err := store.Set(ctx, "b@x.com", "met at conf"); err != nil {
		t.Fatal(err)
	}
	fetcher := &testutil.Fetcher{Contacts: []models.Contact{
		{Names: []string{"A"}, Emails: []string{"a@x.com"}, SourceUpdateTimes: []string{"2024-01-01T00:00:00Z"}},
		{Names: []string{"B"}, Emails: []string{"b@x.com"}, SourceUpdateTimes: []string{"2024-06-01T00:00:00Z"}},
	}}
	m := metrics.New()
	svc := NewService(fetcher, store, WithMetrics(m))

	views, err := svc.ListContacts(ctx, "tok")
	if err != nil {
		t.Fatalf("ListContacts: %v", err)
	}
	if len(views) != 2 || views[0].Email != "b@x.com" || views[0].Note != "met at conf" {
		t.Errorf("views = %+v", views)
	}
	if views[1].Note != "" {
		t.Errorf("contact without note got %q", views[1].Note)
	}
	if got := fetcher.Tokens(); len(got) != 1 || got[0] != "tok" {
		t.Errorf("fetcher tokens = %v", got)
	}
}

func TestListContacts_FetchError(t *testing.T) {
	fetchErr := &contacts.FetchError{Err: errors.New("401")}
	svc := NewService(&testutil.Fetcher{Err: fetchErr}, testutil.FileStore(t))

	_, err := svc.ListContacts(context.Background(), "tok")
	var fe *contacts.FetchError
	if !errors.As(err, &fe) {
		t.Errorf("err = %v, want *FetchError", err)
	}
}

func TestSaveNote(t *testing.T) {
	ctx := context.Background()
	events := &recordingEvents{}
	store := testutil.FileStore(t)
	svc := NewService(&testutil.Fetcher{}, store, WithEvents(events))

	if err := svc.SaveNote(ctx, "a@x.com", "hello"); err != nil {
		t.Fatalf("SaveNote: %v", err)
	}
	got, _ := svc.Note(ctx, "a@x.com")
	if got != "hello" {
		t.Errorf("Note = %q", got)
	}
	if len(events.saved) != 1 || events.saved[0] != "a@x.com" {
		t.Errorf("events = %v", events.saved)
	}
}

func TestSaveNote_EmptyValuesAccepted(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&testutil.Fetcher{}, testutil.FileStore(t))
	if err := svc.SaveNote(ctx, "", ""); err != nil {
		t.Fatalf("SaveNote: %v", err)
	}
}

func TestSaveNote_Failure(t *testing.T) {
	events := &recordingEvents{}
	svc := NewService(&testutil.Fetcher{}, brokenStore{testutil.FileStore(t)}, WithEvents(events), WithMetrics(nil))

	if err := svc.SaveNote(context.Background(), "a@x.com", "x"); err == nil {
		t.Fatal("expected error")
	}
	if len(events.saved) != 0 {
		t.Error("failed save must not publish an event")
	}
}
