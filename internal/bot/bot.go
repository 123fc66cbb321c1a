// Package bot connects the Fortnox article register to Slack. It receives
// slash commands and mentions over Socket Mode, fetches data through an
// ArticleService, and replies with formatted text.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"golang.org/x/sync/errgroup"

	"github.com/freke242/fortnox-slack-bot/internal/format"
	"github.com/freke242/fortnox-slack-bot/internal/fortnox"
)

// ArticleService is the slice of the Fortnox client the bot needs.
type ArticleService interface {
	GetArticlesInStock(ctx context.Context, minimum float64) ([]fortnox.Article, error)
	GetArticleByNumber(ctx context.Context, articleNumber string) (*fortnox.Article, error)
}

// Compile-time check to ensure the Fortnox client implements ArticleService
var _ ArticleService = (*fortnox.Client)(nil)

// Bot serves Slack slash commands and mention events.
type Bot struct {
	client     *slack.Client
	socket     *socketmode.Client
	articles   ArticleService
	stockLimit int
}

type options struct {
	stockLimit int
	debug      bool
}

// Option configures a Bot.
type Option func(*options)

// WithStockLimit caps the rows a stock listing displays.
func WithStockLimit(limit int) Option {
	return func(o *options) {
		o.stockLimit = limit
	}
}

// WithDebug enables verbose logging inside the Slack client libraries.
func WithDebug(debug bool) Option {
	return func(o *options) {
		o.debug = debug
	}
}

// New creates a Bot wired to Slack over Socket Mode. botToken authenticates
// API calls (xoxb-), appToken the Socket Mode connection (xapp-).
func New(botToken, appToken string, articles ArticleService, opts ...Option) (*Bot, error) {
	if botToken == "" || appToken == "" {
		return nil, fmt.Errorf("missing slack tokens")
	}
	if articles == nil {
		return nil, fmt.Errorf("missing article service")
	}

	cfg := options{stockLimit: format.DefaultStockLimit}
	for _, opt := range opts {
		opt(&cfg)
	}

	api := slack.New(botToken,
		slack.OptionAppLevelToken(appToken),
		slack.OptionDebug(cfg.debug),
	)

	return &Bot{
		client:     api,
		socket:     socketmode.New(api, socketmode.OptionDebug(cfg.debug)),
		articles:   articles,
		stockLimit: cfg.stockLimit,
	}, nil
}

// Run connects to Slack and serves events until the context is canceled.
// Events are handled synchronously in arrival order; the Fortnox calls behind
// them are short and the bot serves a single workspace.
func (b *Bot) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return b.socket.RunContext(gCtx)
	})
	g.Go(func() error {
		return b.eventLoop(gCtx)
	})

	return g.Wait()
}

func (b *Bot) eventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-b.socket.Events:
			if !ok {
				return nil
			}
			b.handleEvent(ctx, evt)
		}
	}
}

func (b *Bot) handleEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		slog.InfoContext(ctx, "connecting to slack")

	case socketmode.EventTypeConnectionError:
		slog.ErrorContext(ctx, "slack connection failed, retrying")

	case socketmode.EventTypeConnected:
		slog.InfoContext(ctx, "connected to slack")

	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			return
		}
		b.ack(evt)
		b.handleSlashCommand(ctx, cmd)

	case socketmode.EventTypeEventsAPI:
		event, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		b.ack(evt)
		b.handleCallbackEvent(ctx, event)

	default:
		slog.DebugContext(ctx, "ignoring event", "type", evt.Type)
	}
}

// ack acknowledges receipt so Slack does not redeliver; the actual reply
// follows separately.
func (b *Bot) ack(evt socketmode.Event) {
	if evt.Request != nil {
		b.socket.Ack(*evt.Request)
	}
}
