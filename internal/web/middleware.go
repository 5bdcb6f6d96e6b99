package web

import (
	"log/slog"
	"net/http"

	"github.com/starford/contactnotes/internal/session"
)

// LoadSession resolves the session cookie and stores the session in the
// request context. Lookup failures are logged and treated as no session.
func LoadSession(m *session.Manager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := m.Load(r)
			if err != nil {
				logger.Warn("session lookup failed", slog.String("error", err.Error()))
			}
			if sess != nil {
				r = r.WithContext(session.WithSession(r.Context(), sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth redirects requests without a signed-in session to "/".
func RequireAuth(m *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := session.FromContext(r.Context())
			if !m.IsAuthenticated(sess) {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthJSON answers 401 with a JSON body instead of redirecting.
func RequireAuthJSON(m *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := session.FromContext(r.Context())
			if !m.IsAuthenticated(sess) {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
