package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/slack-go/slack"
	"github.com/urfave/cli/v2"

	"eventbot/internal/bot"
	"eventbot/internal/config"
	"eventbot/internal/directory"
	"eventbot/internal/httpserver"
	"eventbot/internal/reminder"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:     "eventbot",
		Usage:    "Slack bot for scheduling, browsing and joining events.",
		Commands: []*cli.Command{serveCommand()},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP server that receives Slack commands and events.",
		Action: func(c *cli.Context) error {
			logger := setupLogger(os.Getenv("LOG_LEVEL"))

			// Load runtime config from environment (Slack credentials, DB URL).
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Connect to durable storage using a connection pool.
			dir, err := directory.New(cfg.DBURL)
			if err != nil {
				return err
			}
			defer dir.Close()

			// Ensure required tables exist so a fresh database just works.
			if err := dir.EnsureSchema(); err != nil {
				return err
			}

			api := slack.New(cfg.OAuthToken)
			reminders := reminder.NewSynchronizer(api, logger.With("component", "reminder"))
			b := bot.New(dir, reminders, api, logger.With("component", "bot"))

			router := httpserver.NewRouter(cfg, dir, b, logger.With("component", "http"))

			logger.Info("server started", "port", cfg.Port)
			return router.Run(":" + cfg.Port)
		},
	}
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}
