package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/freke242/fortnox-slack-bot/internal/app"
	"github.com/freke242/fortnox-slack-bot/internal/checkup"
	"github.com/freke242/fortnox-slack-bot/internal/fortnox"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "diagnose configuration and connectivity",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "validate configuration keys",
				Action: checkConfigAction,
			},
			{
				Name:   "credentials",
				Usage:  "detect whitespace or quote damage in the Fortnox client credentials",
				Action: checkCredentialsAction,
			},
			{
				Name:   "setup",
				Usage:  "check credentials file, keys, permissions and connectivity",
				Action: checkSetupAction,
			},
			{
				Name:   "api",
				Usage:  "run a live Fortnox connection test",
				Action: checkAPIAction,
			},
		},
	}
}

func checkConfigAction(ctx context.Context, cmd *cli.Command) error {
	_, store, err := setupWithStore(cmd)
	if err != nil {
		return err
	}

	return render(cmd, checkup.Config(ctx, store))
}

func checkCredentialsAction(ctx context.Context, cmd *cli.Command) error {
	_, store, err := setupWithStore(cmd)
	if err != nil {
		return err
	}

	return render(cmd, checkup.Credentials(ctx, store))
}

func checkSetupAction(ctx context.Context, cmd *cli.Command) error {
	cfg, store, err := setupWithStore(cmd)
	if err != nil {
		return err
	}

	// The file checks only apply when credentials actually live in a file.
	opts := checkup.SetupOptions{}
	if cfg.Storage.Type == app.StorageTypeFile {
		opts.EnvFile = cfg.Storage.File
	}

	return render(cmd, checkup.Setup(ctx, store, opts))
}

func checkAPIAction(ctx context.Context, cmd *cli.Command) error {
	cfg, store, err := setupWithStore(cmd)
	if err != nil {
		return err
	}

	client, err := fortnox.New(app.NewStoreCredentialSource(store), fortnox.WithBaseURL(cfg.Fortnox.BaseURL))
	if err != nil {
		return fmt.Errorf("creating fortnox client: %w", err)
	}

	return render(cmd, checkup.API(ctx, store, client))
}

// render prints a report; a failed report becomes a non-zero exit.
func render(cmd *cli.Command, report *checkup.Report) error {
	fmt.Fprintln(cmd.Root().Writer, report)

	if !report.Passed() {
		return errors.New("check failed")
	}
	return nil
}
