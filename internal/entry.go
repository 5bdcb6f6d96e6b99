// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/contactnotes/internal/contacts"
	"github.com/starford/contactnotes/internal/contactservice"
	"github.com/starford/contactnotes/internal/mcpserver"
	"github.com/starford/contactnotes/internal/metrics"
	"github.com/starford/contactnotes/internal/notestore"
	"github.com/starford/contactnotes/internal/oauth"
	"github.com/starford/contactnotes/internal/session"
	"github.com/starford/contactnotes/internal/sse"
	"github.com/starford/contactnotes/internal/web"
)

var errConfigRequired = errors.New("config is required")

const sessionCleanupInterval = 10 * time.Minute

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("redirect_url", cfg.RedirectURL()),
		slog.String("session_backend", cfg.Session.Backend),
		slog.String("notes_backend", cfg.Notes.Backend),
		slog.String("notes_path", cfg.Notes.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	notes, fileStore, err := openNotes(ctx, cfg.Notes, logger)
	if err != nil {
		return err
	}
	defer notes.Close()

	sessionStore, closeSessions, err := openSessions(ctx, cfg.Session)
	if err != nil {
		return err
	}
	defer closeSessions()

	cookies, err := session.NewCookies(cfg.Session.Secret, session.CookieOptions{Secure: cfg.Session.SecureCookie})
	if err != nil {
		return err
	}
	sessions := session.NewManager(sessionStore, cookies, cfg.Session.TTL)

	provider, err := oauth.NewGoogle(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.RedirectURL())
	if err != nil {
		return err
	}

	fetcher := contacts.NewPeopleFetcher(
		contacts.WithPageSize(int64(cfg.Contacts.PageSize)),
		contacts.WithMaxPages(cfg.Contacts.MaxPages),
	)

	broker := sse.NewBroker(sse.DefaultChangeThrottle)
	defer broker.Close()

	m := metrics.New()

	svc := contactservice.NewService(fetcher, notes,
		contactservice.WithEvents(broker),
		contactservice.WithMetrics(m),
	)

	webRouter := web.NewRouter(web.RouterConfig{
		Service:         svc,
		Sessions:        sessions,
		Provider:        provider,
		Events:          broker,
		Metrics:         m,
		Logger:          logger,
		ProtectSaveNote: cfg.Notes.RequireAuth,
		SecureCookies:   cfg.Session.SecureCookie,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthOK)
	r.Get("/health/ready", healthOK)
	r.Handle("/metrics", m.Handler())

	r.Mount("/", webRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if fileStore != nil && cfg.Notes.Watch {
		g.Go(func() error {
			if err := notestore.Watch(gCtx, fileStore, logger, broker.NotesReloaded); err != nil {
				logger.Warn("notes watcher disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	if mem, ok := sessionStore.(*session.MemoryStore); ok {
		g.Go(func() error {
			ticker := time.NewTicker(sessionCleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gCtx.Done():
					return nil
				case <-ticker.C:
					if n := mem.Cleanup(); n > 0 {
						logger.Debug("expired sessions removed", slog.Int("count", n))
					}
				}
			}
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server",
			slog.String("address", cfg.App.HTTP.Address()),
			slog.String("url", cfg.App.HTTP.BaseURLOrDefault()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Stops the watcher and the session janitor.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// RunMCP serves the note store over MCP on stdin/stdout. Logs go to stderr
// because stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	notes, _, err := openNotes(ctx, cfg.Notes, logger)
	if err != nil {
		return err
	}
	defer notes.Close()

	logger.Info("MCP server starting",
		slog.String("notes_backend", cfg.Notes.Backend),
		slog.String("notes_path", cfg.Notes.Path))

	return mcpserver.New(notes, app.version).ServeStdio()
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// openNotes opens the configured note store. The second result is non-nil
// only for the file backend, which is the one that can be watched.
func openNotes(ctx context.Context, cfg NotesConfig, logger *slog.Logger) (notestore.Store, *notestore.FileStore, error) {
	switch cfg.Backend {
	case NotesBackendSQLite:
		db, err := notestore.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init notes: %w", err)
		}
		if cfg.ImportFrom != "" {
			if err := importNotes(ctx, db, cfg.ImportFrom, logger); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return db, nil, nil
	default:
		fs, err := notestore.OpenFile(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init notes: %w", err)
		}
		return fs, fs, nil
	}
}

func importNotes(ctx context.Context, db *notestore.SQLiteStore, path string, logger *slog.Logger) error {
	src, err := notestore.OpenFile(path)
	if err != nil {
		return fmt.Errorf("import notes: %w", err)
	}
	defer src.Close()

	snap, err := src.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("import notes: %w", err)
	}
	if err := db.Import(ctx, snap); err != nil {
		return fmt.Errorf("import notes: %w", err)
	}
	logger.Info("notes imported", slog.String("from", path), slog.Int("count", len(snap)))
	return nil
}

// openSessions opens the configured session store and returns a function
// releasing it.
func openSessions(ctx context.Context, cfg SessionConfig) (session.Store, func() error, error) {
	if cfg.Backend == SessionBackendRedis {
		client, err := session.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("init sessions: %w", err)
		}
		return session.NewRedisStore(client), client.Close, nil
	}
	return session.NewMemoryStore(), func() error { return nil }, nil
}
