package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/freke242/fortnox-slack-bot/internal/app"
	"github.com/freke242/fortnox-slack-bot/internal/credstore"
	"github.com/freke242/fortnox-slack-bot/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	cmd := &cli.Command{
		Name:  "fortnoxbot",
		Usage: "Fortnox inventory bot for Slack",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: string(app.DefaultConfigLogFormat),
			},
			&cli.StringFlag{
				Name:  "storage--type",
				Usage: "credential storage backend (file|env|keyring)",
				Value: string(app.DefaultConfigStorage),
			},
			&cli.StringFlag{
				Name:  "storage--file",
				Usage: "credentials file for file storage",
				Value: app.DefaultConfigStorageFile,
			},
			&cli.StringFlag{
				Name:  "storage--keyring-service",
				Usage: "service name for keyring storage",
				Value: app.DefaultConfigKeyringService,
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			tokenCommand(),
			checkCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

// setup loads configuration and installs the logger. Every subcommand action
// starts here.
func setup(cmd *cli.Command) (*app.Config, error) {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Set up observability before doing any work
	if err := observability.Instrument(cfg.LogLevel, string(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("failed to set up observability layer: %w", err)
	}

	return cfg, nil
}

// setupWithStore is setup plus the credential store most subcommands need.
func setupWithStore(cmd *cli.Command) (*app.Config, credstore.Store, error) {
	cfg, err := setup(cmd)
	if err != nil {
		return nil, nil, err
	}

	store, err := cfg.Storage.NewStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open credential storage: %w", err)
	}

	return cfg, store, nil
}
