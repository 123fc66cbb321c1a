package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/freke242/fortnox-slack-bot/internal/app"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the Slack bot",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "slack--debug",
				Usage: "verbose logging inside the Slack client",
			},
			&cli.IntFlag{
				Name:  "slack--stock-limit",
				Usage: "maximum rows in a stock listing",
				Value: app.DefaultConfigStockLimit,
			},
			&cli.StringFlag{
				Name:  "fortnox--base-url",
				Usage: "Fortnox API base URL",
				Value: app.DefaultConfigFortnoxBaseURL,
			},
			&cli.StringFlag{
				Name:  "health--addr",
				Usage: "liveness endpoint listen address (empty disables)",
			},
			&cli.StringFlag{
				Name:  "refresh--schedule",
				Usage: "cron expression for in-process token refresh (empty relies on external scheduling)",
			},
			&cli.DurationFlag{
				Name:  "shutdown--timeout",
				Usage: "grace period for shutdown",
				Value: app.DefaultConfigShutdownTimeout,
			},
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	slog.InfoContext(ctx, "starting")

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("app failed to start: %w", err)
	}

	slog.InfoContext(ctx, "stopped gracefully")
	return nil
}
