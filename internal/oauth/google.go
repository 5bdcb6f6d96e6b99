package oauth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"

	"github.com/starford/contactnotes/internal/contacts"
	"github.com/starford/contactnotes/internal/models"
)

const googleName = "google"

// profileFields selects what Profile reads from people/me.
const profileFields = "names,emailAddresses,photos"

// Scopes requested at consent: basic profile plus read-only access to
// "other contacts".
var Scopes = []string{
	"profile",
	people.ContactsOtherReadonlyScope,
}

// Google is the Google OAuth provider.
type Google struct {
	cfg        *oauth2.Config
	peopleOpts []option.ClientOption
}

// GoogleOption configures a Google provider.
type GoogleOption func(*Google)

// WithEndpoint overrides the authorization and token endpoints.
func WithEndpoint(ep oauth2.Endpoint) GoogleOption {
	return func(g *Google) {
		g.cfg.Endpoint = ep
	}
}

// WithPeopleEndpoint points profile lookups at a different People API base URL.
func WithPeopleEndpoint(url string) GoogleOption {
	return func(g *Google) {
		g.peopleOpts = append(g.peopleOpts, option.WithEndpoint(url))
	}
}

// NewGoogle creates a Google provider. All three arguments are required.
func NewGoogle(clientID, clientSecret, redirectURL string, opts ...GoogleOption) (*Google, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("oauth: google client id, secret and redirect url are required")
	}
	g := &Google{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       Scopes,
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Google) Name() string {
	return googleName
}

// AuthCodeURL asks for offline access and forces the consent prompt so a
// refresh token is issued on every login.
func (g *Google) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (g *Google) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.New("oauth: missing authorization code")
	}
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth: google token exchange: %w", err)
	}
	return tok, nil
}

func (g *Google) Profile(ctx context.Context, token *oauth2.Token) (*models.Profile, error) {
	if token == nil || token.AccessToken == "" {
		return nil, errors.New("oauth: missing access token")
	}
	svc, err := contacts.NewPeopleService(ctx, token.AccessToken, g.peopleOpts...)
	if err != nil {
		return nil, fmt.Errorf("oauth: people client: %w", err)
	}
	me, err := svc.People.Get("people/me").PersonFields(profileFields).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("oauth: google profile: %w", err)
	}
	return profileFromPerson(me), nil
}

func profileFromPerson(p *people.Person) *models.Profile {
	prof := &models.Profile{ID: p.ResourceName}
	for _, n := range p.Names {
		if n != nil && n.DisplayName != "" {
			prof.DisplayName = n.DisplayName
			break
		}
	}
	for _, e := range p.EmailAddresses {
		if e != nil && e.Value != "" {
			prof.Email = e.Value
			break
		}
	}
	for _, ph := range p.Photos {
		if ph != nil && ph.Url != "" {
			prof.PhotoURL = ph.Url
			break
		}
	}
	return prof
}
