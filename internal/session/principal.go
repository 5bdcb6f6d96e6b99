package session

import (
	"time"

	"golang.org/x/oauth2"

	"github.com/starford/contactnotes/internal/models"
)

// Principal is the authenticated user: the provider profile plus the bearer
// token issued for it. The token is stored as issued and never refreshed;
// RefreshToken is kept only so that a future refresh flow has it.
type Principal struct {
	Profile      models.Profile `json:"profile"`
	AccessToken  string         `json:"accessToken"`
	TokenType    string         `json:"tokenType,omitempty"`
	RefreshToken string         `json:"refreshToken,omitempty"`
	IssuedAt     time.Time      `json:"issuedAt"`
	Expiry       time.Time      `json:"expiry,omitzero"`
}

// NewPrincipal attaches token to profile.
func NewPrincipal(profile models.Profile, token *oauth2.Token, now time.Time) *Principal {
	p := &Principal{
		Profile:  profile,
		IssuedAt: now,
	}
	if token != nil {
		p.AccessToken = token.AccessToken
		p.TokenType = token.TokenType
		p.RefreshToken = token.RefreshToken
		p.Expiry = token.Expiry
	}
	return p
}

// Expired reports whether the access token is past its expiry at now.
// Tokens without a known expiry never expire.
func (p *Principal) Expired(now time.Time) bool {
	return !p.Expiry.IsZero() && !now.Before(p.Expiry)
}
