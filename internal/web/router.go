// Package web implements the browser-facing routes: OAuth login, the
// contact list with notes, and a small JSON API.
package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/contactnotes/internal/contactservice"
	"github.com/starford/contactnotes/internal/metrics"
	"github.com/starford/contactnotes/internal/oauth"
	"github.com/starford/contactnotes/internal/session"
)

// RouterConfig wires the route layer to its collaborators.
type RouterConfig struct {
	Service  *contactservice.Service
	Sessions *session.Manager
	Provider oauth.Provider
	// Events, if non-nil, is mounted at GET /events for signed-in users.
	Events  http.Handler
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// ProtectSaveNote requires a signed-in session for POST /save-note.
	ProtectSaveNote bool
	// SecureCookies marks the OAuth state cookie Secure.
	SecureCookies bool
}

// NewRouter creates a chi router with every browser and API route mounted.
func NewRouter(cfg RouterConfig) chi.Router {
	h := NewHandler(cfg)

	r := chi.NewRouter()
	r.Use(LoadSession(cfg.Sessions, h.logger))

	r.Get("/", h.Index)
	r.Get("/auth/google", h.Login)
	r.Get("/auth/google/callback", h.Callback)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(cfg.Sessions))
		r.Get("/contacts", h.Contacts)
		if cfg.Events != nil {
			r.Get("/events", cfg.Events.ServeHTTP)
		}
	})

	r.Group(func(r chi.Router) {
		if cfg.ProtectSaveNote {
			r.Use(RequireAuth(cfg.Sessions))
		}
		r.Post("/save-note", h.SaveNote)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireAuthJSON(cfg.Sessions))
		r.Get("/contacts", h.ContactsJSON)
		r.Get("/me", h.Me)
	})

	return r
}
