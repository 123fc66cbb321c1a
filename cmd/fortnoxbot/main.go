// Package main is the fortnoxbot entry point.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/freke242/fortnox-slack-bot/cmd/fortnoxbot/commands"
	"github.com/freke242/fortnox-slack-bot/internal/observability"
)

func main() {
	// Mirror the classic dotenv workflow: a local .env feeds the process
	// environment, real environment variables win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := commands.Execute(ctx, os.Args)

	// Flush any buffered log records before deciding the exit code.
	if flushErr := observability.Shutdown(context.Background()); flushErr != nil {
		slog.Error("failed to flush logs", "error", flushErr)
	}

	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
