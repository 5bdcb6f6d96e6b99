// Package contacts fetches the signed-in user's contacts from the People API
// and merges them with locally stored notes.
package contacts

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"

	"github.com/starford/contactnotes/internal/models"
)

const (
	// DefaultPageSize is the largest page the People API accepts.
	DefaultPageSize = 1000
	// ReadMask selects the fields needed for display and ordering.
	ReadMask = "names,emailAddresses,metadata"
)

// Fetcher returns the raw contacts visible to a bearer token.
type Fetcher interface {
	Fetch(ctx context.Context, bearerToken string) ([]models.Contact, error)
}

// FetchError wraps any failure talking to the directory API.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return "contacts: fetch failed: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PeopleFetcher lists "other contacts" through the Google People API.
//
// By default only the first page (up to DefaultPageSize records) is read;
// anything beyond it is silently omitted. WithMaxPages lifts that limit.
type PeopleFetcher struct {
	pageSize   int64
	maxPages   int
	clientOpts []option.ClientOption
}

// PeopleOption configures a PeopleFetcher.
type PeopleOption func(*PeopleFetcher)

// WithPageSize sets the page size requested from the API.
func WithPageSize(n int64) PeopleOption {
	return func(f *PeopleFetcher) {
		if n > 0 {
			f.pageSize = n
		}
	}
}

// WithMaxPages sets how many pages are followed through nextPageToken.
func WithMaxPages(n int) PeopleOption {
	return func(f *PeopleFetcher) {
		if n > 0 {
			f.maxPages = n
		}
	}
}

// WithEndpoint points the client at a different API base URL.
func WithEndpoint(url string) PeopleOption {
	return func(f *PeopleFetcher) {
		f.clientOpts = append(f.clientOpts, option.WithEndpoint(url))
	}
}

// NewPeopleFetcher creates a fetcher with the given options.
func NewPeopleFetcher(opts ...PeopleOption) *PeopleFetcher {
	f := &PeopleFetcher{
		pageSize: DefaultPageSize,
		maxPages: 1,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch lists contacts using bearerToken. It never retries.
func (f *PeopleFetcher) Fetch(ctx context.Context, bearerToken string) ([]models.Contact, error) {
	if bearerToken == "" {
		return nil, &FetchError{Err: errors.New("missing bearer token")}
	}

	svc, err := NewPeopleService(ctx, bearerToken, f.clientOpts...)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	var out []models.Contact
	pageToken := ""
	for page := 0; page < f.maxPages; page++ {
		call := svc.OtherContacts.List().
			PageSize(f.pageSize).
			ReadMask(ReadMask).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, &FetchError{Err: err}
		}
		for _, p := range resp.OtherContacts {
			out = append(out, fromPerson(p))
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return out, nil
}

// NewPeopleService builds a People API client authorised by a static bearer
// token.
func NewPeopleService(ctx context.Context, bearerToken string, opts ...option.ClientOption) (*people.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: bearerToken, TokenType: "Bearer"})
	client := oauth2.NewClient(ctx, ts)
	all := append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	return people.NewService(ctx, all...)
}

func fromPerson(p *people.Person) models.Contact {
	var c models.Contact
	if p == nil {
		return c
	}
	for _, n := range p.Names {
		if n != nil {
			c.Names = append(c.Names, n.DisplayName)
		}
	}
	for _, e := range p.EmailAddresses {
		if e != nil {
			c.Emails = append(c.Emails, e.Value)
		}
	}
	if p.Metadata != nil {
		// Keep positions aligned with the API's sources; only the first counts.
		for _, s := range p.Metadata.Sources {
			t := ""
			if s != nil {
				t = s.UpdateTime
			}
			c.SourceUpdateTimes = append(c.SourceUpdateTimes, t)
		}
	}
	return c
}
