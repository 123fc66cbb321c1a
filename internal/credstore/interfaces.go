package credstore

import (
	"context"
	"errors"
)

// Well-known credential keys. Stores persist values under these names so that
// a dotenv file written by this program stays interchangeable with one
// maintained by hand.
const (
	KeySlackBotToken       = "SLACK_BOT_TOKEN"
	KeySlackAppToken       = "SLACK_APP_TOKEN"
	KeySlackSigningSecret  = "SLACK_SIGNING_SECRET"
	KeyFortnoxClientID     = "FORTNOX_CLIENT_ID"
	KeyFortnoxClientSecret = "FORTNOX_CLIENT_SECRET"
	KeyFortnoxAccessToken  = "FORTNOX_ACCESS_TOKEN"
	KeyFortnoxRefreshToken = "FORTNOX_REFRESH_TOKEN"
)

// ErrNotSet is returned by Get when a key is missing or holds an empty value.
var ErrNotSet = errors.New("credential not set")

// ErrReadOnly is returned by Set on backends that cannot persist values.
var ErrReadOnly = errors.New("credential storage is read-only")

// Store reads and writes named credentials in persistent storage.
//
// Values are opaque strings; stores never parse them. Token acquisition and
// refresh require a writable store.
type Store interface {
	// Get returns the value stored under key. Returns an error wrapping
	// ErrNotSet if the key is missing or empty.
	Get(ctx context.Context, key string) (string, error)

	// Set persists value under key, replacing any existing value. Returns an
	// error wrapping ErrReadOnly if the backend cannot be written.
	Set(ctx context.Context, key, value string) error
}
