package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/contactnotes/internal"
	pkgconfig "github.com/starford/contactnotes/pkg/config"
)

var version = "dev"

// loadConfig builds the configuration from defaults, the optional YAML file
// and finally any flag or environment variable that was set.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	configPath := cmd.String("config")
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found && cmd.IsSet("config") {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("base-url") {
		cfg.App.HTTP.BaseURL = cmd.String("base-url")
	}
	if cmd.IsSet("session-secret") {
		cfg.Session.Secret = cmd.String("session-secret")
	}
	if cmd.IsSet("redis-addr") {
		cfg.Session.Backend = internal.SessionBackendRedis
		cfg.Session.Redis.Addr = cmd.String("redis-addr")
	}
	if cmd.IsSet("google-client-id") {
		cfg.Google.ClientID = cmd.String("google-client-id")
	}
	if cmd.IsSet("google-client-secret") {
		cfg.Google.ClientSecret = cmd.String("google-client-secret")
	}
	if cmd.IsSet("notes-backend") {
		cfg.Notes.Backend = cmd.String("notes-backend")
	}
	if cmd.IsSet("notes-file") {
		cfg.Notes.Path = cmd.String("notes-file")
	}

	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

// runMCP only needs the notes settings, so OAuth and session settings are
// not validated.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Notes.Validate(); err != nil {
		return fmt.Errorf("config validation failed: notes: %w", err)
	}

	if err := internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "contactnotes",
		Usage:   "Sign in with Google, list your other contacts and keep a private note on each",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP listen port",
				Value:   3000,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Externally visible origin used to build the OAuth callback URL",
				Sources: cli.EnvVars("BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "session-secret",
				Usage:   "Secret used to sign the session cookie",
				Sources: cli.EnvVars("SESSION_SECRET"),
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Keep sessions in Redis at this address instead of in memory",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "google-client-id",
				Usage:   "Google OAuth client ID",
				Sources: cli.EnvVars("GOOGLE_CLIENT_ID"),
			},
			&cli.StringFlag{
				Name:    "google-client-secret",
				Usage:   "Google OAuth client secret",
				Sources: cli.EnvVars("GOOGLE_CLIENT_SECRET"),
			},
			&cli.StringFlag{
				Name:    "notes-backend",
				Usage:   "Note storage backend: file or sqlite",
				Sources: cli.EnvVars("NOTES_BACKEND"),
			},
			&cli.StringFlag{
				Name:    "notes-file",
				Usage:   "Path of the notes file or database",
				Sources: cli.EnvVars("NOTES_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the web application (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the note store to MCP clients over stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
