package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/freke242/fortnox-slack-bot/internal/bot"
	"github.com/freke242/fortnox-slack-bot/internal/credstore"
	"github.com/freke242/fortnox-slack-bot/internal/fortnox"
	"github.com/freke242/fortnox-slack-bot/internal/health"
)

// App orchestrates the lifecycle of the Slack bot and related services.
type App struct {
	cfg       *Config
	store     credstore.Store
	fortnox   *fortnox.Client
	refresher *TokenRefresher
	health    *health.Server
}

// New creates a new App instance.
func New(cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := cfg.Storage.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create credential store: %w", err)
	}

	client, err := fortnox.New(NewStoreCredentialSource(store), fortnox.WithBaseURL(cfg.Fortnox.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create fortnox client: %w", err)
	}

	a := &App{
		cfg:     cfg,
		store:   store,
		fortnox: client,
	}

	if cfg.Refresh.Schedule != "" {
		refresher, err := NewTokenRefresher(store)
		if err != nil {
			return nil, fmt.Errorf("failed to create token refresher: %w", err)
		}
		a.refresher = refresher
	}

	if cfg.Health.Addr != "" {
		a.health = health.NewServer()
	}

	return a, nil
}

// Start starts all services and blocks until shutdown is triggered.
// Uses errgroup for runtime error monitoring and shutdown function collection for coordinated cleanup.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	var shutdownFuncs []func(context.Context) error

	// Fail fast on absent credentials, before any listener is bound or
	// schedule started. The Fortnox keys are read again per API call; this
	// only front-loads the operator error.
	err := a.requireCredentials(ctx,
		credstore.KeySlackBotToken,
		credstore.KeySlackAppToken,
		credstore.KeyFortnoxAccessToken,
		credstore.KeyFortnoxClientSecret,
	)
	if err != nil {
		return err
	}

	b, err := a.newBot(ctx)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// Startup phase: Start services
	if a.health != nil {
		slog.InfoContext(gCtx, "starting health endpoint", "address", a.cfg.Health.Addr)
		healthErrCh, err := a.health.Start(gCtx, a.cfg.Health.Addr)
		if err != nil {
			return fmt.Errorf("health endpoint startup failed: %w", err)
		}
		shutdownFuncs = append(shutdownFuncs, a.health.Shutdown)

		// Monitor runtime errors - errgroup cancels context on first error
		g.Go(func() error {
			select {
			case err := <-healthErrCh:
				if err != nil {
					slog.ErrorContext(gCtx, "health endpoint runtime error", "error", err)
					return fmt.Errorf("health: %w", err)
				}
				return nil
			case <-gCtx.Done():
				return nil
			}
		})
	}

	if a.refresher != nil {
		stopSchedule, err := a.startRefreshSchedule(gCtx)
		if err != nil {
			errs := append([]error{err}, a.stopAll(shutdownFuncs)...)
			return errors.Join(errs...)
		}
		shutdownFuncs = append(shutdownFuncs, stopSchedule)
	}

	g.Go(func() error {
		slog.InfoContext(gCtx, "connecting to slack")
		if err := b.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.ErrorContext(gCtx, "bot runtime error", "error", err)
			return fmt.Errorf("bot: %w", err)
		}
		return nil
	})

	slog.InfoContext(gCtx, "application ready")

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down services")

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}
	errs = append(errs, a.stopAll(shutdownFuncs)...)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}

// stopAll runs collected shutdown functions in reverse order, bounded by the
// configured shutdown timeout.
func (a *App) stopAll(shutdownFuncs []func(context.Context) error) []error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown.Timeout)
	defer cancel()

	var errs []error
	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}
	return errs
}

// requireCredentials reports all missing startup credentials at once, by
// their storage names.
func (a *App) requireCredentials(ctx context.Context, keys ...string) error {
	var missing []string
	for _, key := range keys {
		if _, err := a.store.Get(ctx, key); errors.Is(err, credstore.ErrNotSet) {
			missing = append(missing, key)
		} else if err != nil {
			return fmt.Errorf("reading %s: %w", key, err)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

// newBot reads the Slack tokens and assembles the bot. Both tokens live in
// the credential store alongside the Fortnox keys.
func (a *App) newBot(ctx context.Context) (*bot.Bot, error) {
	botToken, err := a.store.Get(ctx, credstore.KeySlackBotToken)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", credstore.KeySlackBotToken, err)
	}
	appToken, err := a.store.Get(ctx, credstore.KeySlackAppToken)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", credstore.KeySlackAppToken, err)
	}

	return bot.New(botToken, appToken, a.fortnox,
		bot.WithStockLimit(a.cfg.Slack.StockLimit),
		bot.WithDebug(a.cfg.Slack.Debug),
	)
}

// startRefreshSchedule runs the embedded cron schedule. Refresh failures are
// logged and retried at the next tick; they never stop the bot.
func (a *App) startRefreshSchedule(ctx context.Context) (func(context.Context) error, error) {
	logger := cronLogger{logger: slog.Default()}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))

	_, err := c.AddFunc(a.cfg.Refresh.Schedule, func() {
		if err := a.refresher.Refresh(ctx); err != nil {
			slog.ErrorContext(ctx, "scheduled token refresh failed", "error", err)
			return
		}
		if !a.cfg.Refresh.SkipVerify {
			if err := a.fortnox.Ping(ctx); err != nil {
				slog.WarnContext(ctx, "post-refresh verification failed", "error", err)
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule: %w", err)
	}

	slog.InfoContext(ctx, "token refresh schedule enabled", "schedule", a.cfg.Refresh.Schedule)
	c.Start()

	return func(shutdownCtx context.Context) error {
		select {
		case <-c.Stop().Done():
			return nil
		case <-shutdownCtx.Done():
			return fmt.Errorf("waiting for refresh job to finish: %w", shutdownCtx.Err())
		}
	}, nil
}

// cronLogger adapts slog to the cron logger interface.
type cronLogger struct {
	logger *slog.Logger
}

// Compile-time check to ensure cronLogger implements cron.Logger
var _ cron.Logger = (*cronLogger)(nil)

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
