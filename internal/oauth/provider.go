// Package oauth runs the authorization code flow against an identity
// provider and resolves the signed-in user's profile.
package oauth

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/starford/contactnotes/internal/models"
)

// Provider is an OAuth identity provider. Implementations only talk to the
// provider; sessions are handled by the caller.
type Provider interface {
	// Name returns the provider identifier (e.g. "google").
	Name() string

	// AuthCodeURL returns the consent page URL carrying state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for a token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// Profile returns the user the token belongs to.
	Profile(ctx context.Context, token *oauth2.Token) (*models.Profile, error)
}
