package session

import (
	"crypto/sha512"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// CookieName is the name of the session cookie.
const CookieName = "contactnotes_session"

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Path     string
	Secure   bool
	SameSite http.SameSite
}

func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// Cookies signs and verifies the session cookie. The cookie carries only the
// session ID; the HMAC key is derived from the session secret.
type Cookies struct {
	codec *securecookie.SecureCookie
	opts  CookieOptions
}

// NewCookies creates a cookie codec keyed by secret.
func NewCookies(secret string, opts CookieOptions) (*Cookies, error) {
	if secret == "" {
		return nil, fmt.Errorf("session: secret is required")
	}
	key := sha512.Sum512([]byte(secret))
	return &Cookies{
		codec: securecookie.New(key[:], nil),
		opts:  opts.normalize(),
	}, nil
}

// Set issues a signed cookie holding id.
func (c *Cookies) Set(w http.ResponseWriter, id string, expiresAt time.Time) error {
	encoded, err := c.codec.Encode(CookieName, id)
	if err != nil {
		return fmt.Errorf("session: encode cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     c.opts.Path,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	})
	return nil
}

// Read returns the session ID carried by r, or "" when the cookie is absent
// or its signature does not verify.
func (c *Cookies) Read(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	var id string
	if err := c.codec.Decode(CookieName, cookie.Value, &id); err != nil {
		return ""
	}
	return id
}

// Clear removes the session cookie from the client.
func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     c.opts.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	})
}
