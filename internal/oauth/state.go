package oauth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"
)

const (
	stateCookieName = "contactnotes_oauth_state"
	stateTTL        = 5 * time.Minute
)

// NewState generates a random state value and stores it in a short-lived
// cookie so the callback can check it.
func NewState(w http.ResponseWriter, secure bool) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("oauth: generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(b)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateTTL.Seconds()),
	})
	return state, nil
}

// ValidState reports whether the state query parameter matches the cookie.
func ValidState(r *http.Request) bool {
	q := r.URL.Query().Get("state")
	if q == "" {
		return false
	}
	c, err := r.Cookie(stateCookieName)
	if err != nil || c.Value == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Value), []byte(q)) == 1
}

// ClearState removes the state cookie.
func ClearState(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
