package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/freke242/fortnox-slack-bot/internal/format"
)

// Slash commands registered in the Slack app manifest.
const (
	commandStock   = "/fortnox-stock"
	commandArticle = "/fortnox-article"
)

func (b *Bot) handleSlashCommand(ctx context.Context, cmd slack.SlashCommand) {
	logger := slog.With(
		"correlation_id", uuid.NewString(),
		"command", cmd.Command,
		"user", cmd.UserName,
	)
	logger.InfoContext(ctx, "slash command received")

	switch cmd.Command {
	case commandStock:
		b.handleStock(ctx, logger, cmd)
	case commandArticle:
		b.handleArticle(ctx, logger, cmd)
	default:
		logger.WarnContext(ctx, "unknown slash command")
	}
}

// handleStock lists articles in stock, optionally above a minimum quantity.
func (b *Bot) handleStock(ctx context.Context, logger *slog.Logger, cmd slack.SlashCommand) {
	minimum := 0.0
	if text := strings.TrimSpace(cmd.Text); text != "" {
		n, err := strconv.Atoi(text)
		if err != nil {
			b.respond(ctx, logger, cmd, "⚠️ Invalid parameter. Usage: `/fortnox-stock [minimum_quantity]`")
			return
		}
		minimum = float64(n)
		logger.InfoContext(ctx, "filtering by minimum stock", "minimum", n)
	}

	b.respond(ctx, logger, cmd, "🔄 Fetching articles from Fortnox...")

	articles, err := b.articles.GetArticlesInStock(ctx, minimum)
	if err != nil {
		logger.ErrorContext(ctx, "fetching articles failed", "error", err)
		b.respond(ctx, logger, cmd, fmt.Sprintf("❌ Error fetching articles: %v\nPlease check your Fortnox API credentials.", err))
		return
	}

	b.respond(ctx, logger, cmd, format.StockList(articles, b.stockLimit))
}

// handleArticle shows the detail view for one article number.
func (b *Bot) handleArticle(ctx context.Context, logger *slog.Logger, cmd slack.SlashCommand) {
	articleNumber := strings.TrimSpace(cmd.Text)
	if articleNumber == "" {
		b.respond(ctx, logger, cmd, "⚠️ Please provide an article number. Usage: `/fortnox-article <article_number>`")
		return
	}

	b.respond(ctx, logger, cmd, fmt.Sprintf("🔄 Looking up article %s...", articleNumber))

	article, err := b.articles.GetArticleByNumber(ctx, articleNumber)
	if err != nil {
		logger.ErrorContext(ctx, "fetching article failed", "error", err)
		b.respond(ctx, logger, cmd, fmt.Sprintf("❌ Error fetching article: %v\nPlease check the article number and try again.", err))
		return
	}
	if article == nil {
		b.respond(ctx, logger, cmd, fmt.Sprintf("❌ Article %s not found.", articleNumber))
		return
	}

	b.respond(ctx, logger, cmd, format.ArticleDetail(article))
}

// respond replies through the slash command's response URL; the reply is
// visible only to the invoking user.
func (b *Bot) respond(ctx context.Context, logger *slog.Logger, cmd slack.SlashCommand, text string) {
	_, _, err := b.client.PostMessageContext(ctx, cmd.ChannelID,
		slack.MsgOptionResponseURL(cmd.ResponseURL, slack.ResponseTypeEphemeral),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		logger.ErrorContext(ctx, "failed to send response", "error", err)
	}
}

// handleCallbackEvent serves the Events API subscriptions: mentions get the
// help text, plain messages are logged and ignored.
func (b *Bot) handleCallbackEvent(ctx context.Context, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}

	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		slog.InfoContext(ctx, "bot mentioned", "channel", ev.Channel, "user", ev.User)
		_, _, err := b.client.PostMessageContext(ctx, ev.Channel,
			slack.MsgOptionText(format.Help(ev.User), false),
		)
		if err != nil {
			slog.ErrorContext(ctx, "failed to post help message", "error", err)
		}

	case *slackevents.MessageEvent:
		slog.DebugContext(ctx, "message event received", "channel", ev.Channel, "user", ev.User)
	}
}
