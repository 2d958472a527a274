// Package main implements the notat CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/mkarlsen/notat/internal"
	"github.com/mkarlsen/notat/internal/session"
	"github.com/mkarlsen/notat/internal/store"
	pkgconfig "github.com/mkarlsen/notat/pkg/config"
)

// errAlreadyReported marks failures whose message the notifier has already
// printed, so main exits nonzero without repeating it.
var errAlreadyReported = errors.New("already reported")

func main() {
	if err := newRootCmd().Run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, errAlreadyReported) {
			fmt.Fprintln(os.Stderr, newRenderer(true).errorLine(err.Error()))
		}
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:  "notat",
		Usage: "Pinned-first notes with a local JSON store, an optional sync server, and MCP tools",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   internal.DefaultConfigPath(),
				Sources: cli.EnvVars("NOTAT_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "store",
				Usage:   "Path to the local notes file",
				Sources: cli.EnvVars("NOTAT_STORE_PATH"),
			},
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of a notat sync server (switches client commands to remote mode)",
				Sources: cli.EnvVars("NOTAT_API_BASE_URL", "NOTAT_API_URL"),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Bearer token sent to the sync server",
				Sources: cli.EnvVars("NOTAT_API_TOKEN"),
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Disable styled output",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log session internals to stderr",
			},
		},
		Commands: []*cli.Command{
			listCmd(),
			showCmd(),
			addCmd(),
			editCmd(),
			pinCmd(),
			unpinCmd(),
			rmCmd(),
			serveCmd(),
			mcpCmd(),
		},
	}
}

// loadConfig builds the effective configuration: defaults, then the config
// file when present, then flag and environment overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	if path := cmd.String("config"); path != "" {
		if _, err := pkgconfig.LoadIfExists(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if v := cmd.String("store"); v != "" {
		cfg.Store.Path = v
	}
	if v := cmd.String("api-url"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := cmd.String("token"); v != "" {
		cfg.API.Token = v
	}
	return cfg, nil
}

// newSession builds a session over the configured store with CLI
// notifications attached. The caller must Close it.
func newSession(cmd *cli.Command) (*session.Session, renderer, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, renderer{}, err
	}

	r := newRenderer(cmd.Bool("plain"))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cmd.Bool("verbose") {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	base := store.BaseURL(cfg.API.BaseURL, cfg.API.FallbackBaseURL)
	st := store.Select(base, cfg.API.Token, cfg.Store.Path)

	sess := session.New(st,
		session.WithLogger(logger),
		session.WithNotifier(r),
		session.WithAutosaveDelay(cfg.Autosave.Delay()),
	)
	return sess, r, nil
}

// verboseLogger returns the debug-level JSON logger used for --verbose runs.
func verboseLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the sync server over the local store",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			opts := []internal.Option{internal.WithConfig(cfg)}
			if cmd.Bool("verbose") {
				opts = append(opts, internal.WithLogger(verboseLogger(os.Stdout)))
			}
			if err := internal.Run(ctx, opts...); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		},
	}
}

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP stdio server over the selected store",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			opts := []internal.Option{internal.WithConfig(cfg)}
			if cmd.Bool("verbose") {
				opts = append(opts, internal.WithLogger(verboseLogger(os.Stderr)))
			}
			if err := internal.RunMCP(ctx, opts...); err != nil {
				return fmt.Errorf("mcp run error: %w", err)
			}
			return nil
		},
	}
}
