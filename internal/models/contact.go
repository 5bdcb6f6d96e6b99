// Package models defines the domain types shared across packages.
package models

import "time"

// Contact is a raw contact record as returned by the directory API.
// Each slice keeps the API order; any of them may be empty.
type Contact struct {
	Names             []string // display names
	Emails            []string // email addresses
	SourceUpdateTimes []string // RFC 3339 update time of each metadata source
}

// ContactView is the display projection of a Contact joined with its note.
// It is never persisted.
type ContactView struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Note       string     `json:"note"`
	UpdateTime *time.Time `json:"updateTime"`
}

// Profile is the identity provider's view of the signed-in user.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}
