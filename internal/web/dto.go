package web

import (
	"time"

	"github.com/starford/contactnotes/internal/models"
)

// ContactsResponse is the body of GET /api/contacts.
type ContactsResponse struct {
	Contacts []models.ContactView `json:"contacts"`
	Total    int                  `json:"total"`
}

// MeResponse is the body of GET /api/me.
type MeResponse struct {
	Profile      models.Profile `json:"profile"`
	TokenExpiry  *time.Time     `json:"tokenExpiry,omitempty"`
	TokenExpired bool           `json:"tokenExpired"`
}
