package checkup

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/freke242/fortnox-slack-bot/internal/credstore"
)

// configRule is the shape requirement for one credential key. A missing key
// is a failure; a present value with the wrong shape is only a warning, since
// token formats occasionally change upstream.
type configRule struct {
	key         string
	description string
	prefix      string // non-empty: value must start with this
	minLength   int    // non-zero: value must be at least this long
}

var configRules = []configRule{
	{key: credstore.KeySlackBotToken, description: "Slack bot user OAuth token", prefix: "xoxb-"},
	{key: credstore.KeySlackSigningSecret, description: "Slack app signing secret", minLength: 32},
	{key: credstore.KeySlackAppToken, description: "Slack app-level token for Socket Mode", prefix: "xapp-"},
	{key: credstore.KeyFortnoxAccessToken, description: "Fortnox API access token", minLength: 10},
	{key: credstore.KeyFortnoxClientSecret, description: "Fortnox API client secret", minLength: 10},
}

// Config validates the shape of every credential key the bot needs at
// runtime.
func Config(ctx context.Context, store credstore.Store) *Report {
	r := &Report{Title: "🔍 Validating configuration..."}
	validate := validator.New()

	for _, rule := range configRules {
		value, err := store.Get(ctx, rule.key)
		if err != nil {
			if errors.Is(err, credstore.ErrNotSet) {
				r.add(rule.key, StatusFail, "not set (%s)", rule.description)
			} else {
				r.add(rule.key, StatusFail, "read failed: %v", err)
			}
			continue
		}

		if rule.prefix != "" && validate.Var(value, "startswith="+rule.prefix) != nil {
			r.add(rule.key, StatusWarn, "should start with %q, got %q", rule.prefix, head(value, 10))
			continue
		}
		if rule.minLength > 0 && validate.Var(value, fmt.Sprintf("min=%d", rule.minLength)) != nil {
			r.add(rule.key, StatusWarn, "seems too short (length: %d)", len(value))
			continue
		}

		r.add(rule.key, StatusOK, "%s", redact(value))
	}

	return r
}

func head(value string, n int) string {
	if len(value) <= n {
		return value
	}
	return value[:n] + "..."
}
