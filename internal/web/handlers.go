package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/starford/contactnotes/internal/apperr"
	"github.com/starford/contactnotes/internal/contacts"
	"github.com/starford/contactnotes/internal/contactservice"
	"github.com/starford/contactnotes/internal/metrics"
	"github.com/starford/contactnotes/internal/oauth"
	"github.com/starford/contactnotes/internal/session"
)

// User-visible failure messages. No detail beyond these reaches the client.
const (
	msgFetchFailed = "Error fetching contacts."
	msgSaveFailed  = "Error saving note."
)

// maxFormBytes caps the POST /save-note body.
const maxFormBytes = 1 << 20

// Handler holds the route handlers.
type Handler struct {
	svc           *contactservice.Service
	sessions      *session.Manager
	provider      oauth.Provider
	metrics       *metrics.Metrics
	logger        *slog.Logger
	secureCookies bool
	now           func() time.Time
}

// NewHandler creates a Handler from cfg.
func NewHandler(cfg RouterConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		svc:           cfg.Service,
		sessions:      cfg.Sessions,
		provider:      cfg.Provider,
		metrics:       cfg.Metrics,
		logger:        logger,
		secureCookies: cfg.SecureCookies,
		now:           time.Now,
	}
}

// Index handles GET /.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	data := indexData{SignedIn: h.sessions.IsAuthenticated(sess)}
	if data.SignedIn {
		data.Name = sess.Principal.Profile.DisplayName
	}
	h.render(w, "index.html", data)
}

// Login handles GET /auth/google by sending the browser to the consent page.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := oauth.NewState(w, h.secureCookies)
	if err != nil {
		h.logger.Error("oauth state failed", slog.String("error", err.Error()))
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /auth/google/callback. Any failure lands on "/".
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	valid := oauth.ValidState(r)
	oauth.ClearState(w)

	if err := h.completeLogin(w, r, valid); err != nil {
		h.metrics.ObserveLogin(err)
		h.logger.Warn("oauth callback failed", slog.String("error", err.Error()))
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.metrics.ObserveLogin(nil)
	http.Redirect(w, r, "/contacts", http.StatusFound)
}

func (h *Handler) completeLogin(w http.ResponseWriter, r *http.Request, validState bool) error {
	if !validState {
		return apperr.ErrInvalidState
	}
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		return errors.New("provider denied: " + e)
	}

	ctx := r.Context()
	token, err := h.provider.Exchange(ctx, q.Get("code"))
	if err != nil {
		return err
	}
	profile, err := h.provider.Profile(ctx, token)
	if err != nil {
		return err
	}
	principal, err := h.sessions.CompleteLogin(ctx, w, r, *profile, token)
	if err != nil {
		return err
	}
	h.logger.Info("user signed in",
		slog.String("provider", h.provider.Name()),
		slog.String("user", principal.Profile.ID))
	return nil
}

// Contacts handles GET /contacts. A failed fetch answers 500 with a
// plain-text message rather than 200, so clients can tell it from a page.
func (h *Handler) Contacts(w http.ResponseWriter, r *http.Request) {
	token, ok := h.bearerToken(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	views, err := h.svc.ListContacts(r.Context(), token)
	if err != nil {
		h.logFetchError(err)
		writeText(w, http.StatusInternalServerError, msgFetchFailed)
		return
	}
	h.render(w, "contacts.html", contactsData{Contacts: views})
}

// SaveNote handles POST /save-note. Missing fields are stored as "".
func (h *Handler) SaveNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	email := r.PostFormValue("email")
	note := r.PostFormValue("note")

	if err := h.svc.SaveNote(r.Context(), email, note); err != nil {
		h.logger.Error("save note failed", slog.String("error", err.Error()))
		writeText(w, http.StatusInternalServerError, msgSaveFailed)
		return
	}
	http.Redirect(w, r, "/contacts", http.StatusFound)
}

// Logout handles POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(r.Context(), w, r); err != nil {
		h.logger.Warn("logout failed", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// ContactsJSON handles GET /api/contacts.
func (h *Handler) ContactsJSON(w http.ResponseWriter, r *http.Request) {
	token, ok := h.bearerToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}

	views, err := h.svc.ListContacts(r.Context(), token)
	if err != nil {
		h.logFetchError(err)
		status := http.StatusInternalServerError
		var fe *contacts.FetchError
		if errors.As(err, &fe) {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, errorBody("error fetching contacts"))
		return
	}
	writeJSON(w, http.StatusOK, ContactsResponse{Contacts: views, Total: len(views)})
}

// Me handles GET /api/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	p := sess.Principal
	resp := MeResponse{
		Profile:      p.Profile,
		TokenExpired: p.Expired(h.now()),
	}
	if !p.Expiry.IsZero() {
		exp := p.Expiry
		resp.TokenExpiry = &exp
	}
	writeJSON(w, http.StatusOK, resp)
}

// bearerToken returns the access token of the request session. Tokens past
// their expiry are still used; the directory API decides.
func (h *Handler) bearerToken(r *http.Request) (string, bool) {
	sess, _ := session.FromContext(r.Context())
	token, err := h.sessions.BearerToken(sess)
	if err != nil {
		return "", false
	}
	if sess.Principal.Expired(h.now()) {
		h.logger.Warn("access token past expiry", slog.String("user", sess.Principal.Profile.ID))
	}
	return token, true
}

func (h *Handler) logFetchError(err error) {
	h.logger.Error("fetch contacts failed", slog.String("error", err.Error()))
}
