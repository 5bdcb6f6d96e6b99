package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/contactnotes/internal/contacts"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Notes backends.
const (
	NotesBackendFile   = "file"
	NotesBackendSQLite = "sqlite"
)

// CallbackPath is where the identity provider sends the browser back.
const CallbackPath = "/auth/google/callback"

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Session  SessionConfig     `yaml:"session"`
	Google   GoogleConfig      `yaml:"google"`
	Notes    NotesConfig       `yaml:"notes"`
	Contacts ContactsConfig    `yaml:"contacts"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := c.Google.Validate(); err != nil {
		return fmt.Errorf("google: %w", err)
	}
	if err := c.Notes.Validate(); err != nil {
		return fmt.Errorf("notes: %w", err)
	}
	if err := c.Contacts.Validate(); err != nil {
		return fmt.Errorf("contacts: %w", err)
	}
	return nil
}

// RedirectURL returns the OAuth callback URL: the configured one, or the
// callback path under the base URL.
func (c *Config) RedirectURL() string {
	if c.Google.RedirectURL != "" {
		return c.Google.RedirectURL
	}
	return c.App.HTTP.BaseURLOrDefault() + CallbackPath
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
	// BaseURL is the externally visible origin, e.g. https://notes.example.com.
	BaseURL string `yaml:"base_url"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// BaseURLOrDefault returns BaseURL without a trailing slash, falling back to
// http://localhost:<port>.
func (c *HTTPConfig) BaseURLOrDefault() string {
	if c.BaseURL == "" {
		return fmt.Sprintf("http://localhost:%d", c.Port)
	}
	return strings.TrimRight(c.BaseURL, "/")
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SessionConfig holds browser session configuration.
type SessionConfig struct {
	Secret       string        `yaml:"secret"`
	TTL          time.Duration `yaml:"ttl"`
	Backend      string        `yaml:"backend"`
	SecureCookie bool          `yaml:"secure_cookie"`
	Redis        RedisConfig   `yaml:"redis"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = SessionBackendMemory
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Secret, validation.Required),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
		validation.Field(&c.Backend, validation.Required, validation.In(SessionBackendMemory, SessionBackendRedis)),
	); err != nil {
		return err
	}
	if c.Backend == SessionBackendRedis {
		return c.Redis.Validate()
	}
	return nil
}

// RedisConfig holds the Redis connection used by the redis session backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Validate validates the Redis configuration.
func (c *RedisConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DB, validation.Min(0)),
	)
}

// GoogleConfig holds the OAuth client registration.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// RedirectURL overrides <base_url>/auth/google/callback.
	RedirectURL string `yaml:"redirect_url"`
}

// Validate validates the Google configuration.
func (c *GoogleConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ClientID, validation.Required),
		validation.Field(&c.ClientSecret, validation.Required),
	)
}

// NotesConfig holds note store configuration.
//
// Backend selects the storage:
//   - "file" (default): a JSON object {email: note} at Path, rewritten on
//     every save. Watch reloads it when edited by another process.
//   - "sqlite": a SQLite database at Path. ImportFrom optionally names a
//     JSON notes file whose entries are copied in at startup without
//     overwriting existing rows.
type NotesConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Watch       bool   `yaml:"watch"`
	ImportFrom  string `yaml:"import_from"`
	RequireAuth bool   `yaml:"require_auth"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = NotesBackendFile
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(NotesBackendFile, NotesBackendSQLite)),
		validation.Field(&c.Path, validation.Required),
	)
}

// ContactsConfig controls how the directory API is paged.
type ContactsConfig struct {
	PageSize int `yaml:"page_size"`
	MaxPages int `yaml:"max_pages"`
}

// Validate validates the contacts configuration.
func (c *ContactsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PageSize, validation.Required, validation.Min(1), validation.Max(contacts.DefaultPageSize)),
		validation.Field(&c.MaxPages, validation.Required, validation.Min(1)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
// Secrets and client credentials have no defaults.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 3000,
			},
		},
		Session: SessionConfig{
			TTL:     24 * time.Hour,
			Backend: SessionBackendMemory,
		},
		Notes: NotesConfig{
			Backend:     NotesBackendFile,
			Path:        "./notes.json",
			Watch:       true,
			RequireAuth: true,
		},
		Contacts: ContactsConfig{
			PageSize: contacts.DefaultPageSize,
			MaxPages: 1,
		},
	}
}
