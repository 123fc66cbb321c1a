package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"github.com/freke242/fortnox-slack-bot/internal/credstore"
	"github.com/freke242/fortnox-slack-bot/internal/oauth"
)

// TokenRefresher performs one refresh-token grant per Refresh call and
// persists the result. Apart from the interactive acquisition flow this is
// the only writer of the credential store; the serving path only reads.
type TokenRefresher struct {
	store    credstore.Store
	endpoint oauth2.Endpoint

	writeMu sync.Mutex
}

// RefresherOption configures a TokenRefresher.
type RefresherOption func(*TokenRefresher)

// WithRefreshEndpoint overrides the token endpoint, primarily for tests.
func WithRefreshEndpoint(endpoint oauth2.Endpoint) RefresherOption {
	return func(r *TokenRefresher) {
		r.endpoint = endpoint
	}
}

// NewTokenRefresher creates a TokenRefresher backed by the given store.
func NewTokenRefresher(store credstore.Store, opts ...RefresherOption) (*TokenRefresher, error) {
	if store == nil {
		return nil, fmt.Errorf("missing credential store")
	}

	r := &TokenRefresher{
		store:    store,
		endpoint: oauth.RefreshEndpoint,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Refresh reads the stored refresh token and client credentials, redeems them
// for a new token pair, and persists the access token. The refresh token is
// rewritten only when Fortnox issued one different from the stored value.
// Concurrent invocations are expected to be prevented by the scheduler;
// the mutex only keeps the store writes coherent if that assumption breaks.
func (r *TokenRefresher) Refresh(ctx context.Context) error {
	clientID, clientSecret, refreshToken, err := r.readCredentials(ctx)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "refreshing fortnox access token")

	token, err := oauth.Refresh(ctx, oauth.NewConfig(clientID, clientSecret, r.endpoint), refreshToken)
	if err != nil {
		return err
	}
	if token.AccessToken == "" {
		return fmt.Errorf("token endpoint returned no access token")
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := r.store.Set(ctx, credstore.KeyFortnoxAccessToken, token.AccessToken); err != nil {
		return fmt.Errorf("persisting access token: %w", err)
	}

	if token.RefreshToken != "" && token.RefreshToken != refreshToken {
		slog.InfoContext(ctx, "refresh token rotated, updating storage")
		if err := r.store.Set(ctx, credstore.KeyFortnoxRefreshToken, token.RefreshToken); err != nil {
			// The new access token is already persisted, but losing a rotated
			// refresh token means the next refresh will fail.
			return fmt.Errorf("persisting rotated refresh token: %w", err)
		}
	}

	slog.InfoContext(ctx, "access token refreshed")
	return nil
}

// readCredentials loads everything a refresh grant needs, reporting all
// missing keys at once by their storage names.
func (r *TokenRefresher) readCredentials(ctx context.Context) (clientID, clientSecret, refreshToken string, err error) {
	var missing []string

	read := func(key string) (string, error) {
		value, getErr := r.store.Get(ctx, key)
		if errors.Is(getErr, credstore.ErrNotSet) {
			missing = append(missing, key)
			return "", nil
		}
		return value, getErr
	}

	if clientID, err = read(credstore.KeyFortnoxClientID); err != nil {
		return "", "", "", fmt.Errorf("reading client id: %w", err)
	}
	if clientSecret, err = read(credstore.KeyFortnoxClientSecret); err != nil {
		return "", "", "", fmt.Errorf("reading client secret: %w", err)
	}
	if refreshToken, err = read(credstore.KeyFortnoxRefreshToken); err != nil {
		return "", "", "", fmt.Errorf("reading refresh token: %w", err)
	}

	if len(missing) > 0 {
		return "", "", "", fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}
	return clientID, clientSecret, refreshToken, nil
}
