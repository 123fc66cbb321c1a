package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// ErrStateMismatch is returned when the state on the callback differs from
// the state embedded in the authorization URL. A mismatch indicates a forged
// or stale callback and always aborts the flow before any token request.
var ErrStateMismatch = errors.New("oauth state mismatch")

// Authorization drives one interactive authorization-code grant. Each
// Authorization carries its own random state; create a fresh one per attempt.
type Authorization struct {
	cfg   *oauth2.Config
	state string
}

// NewAuthorization creates an Authorization with a freshly generated state.
func NewAuthorization(cfg *oauth2.Config) (*Authorization, error) {
	state, err := newState()
	if err != nil {
		return nil, err
	}
	return &Authorization{cfg: cfg, state: state}, nil
}

// URL returns the browser URL that starts the grant. Fortnox service
// accounts require access_type=offline and account_type=service.
func (a *Authorization) URL() string {
	return a.cfg.AuthCodeURL(a.state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("account_type", "service"),
	)
}

// Exchange verifies the callback state and, on match, exchanges the
// authorization code for a token pair. The state is checked before any
// request is issued; a mismatch returns ErrStateMismatch without contacting
// the token endpoint.
func (a *Authorization) Exchange(ctx context.Context, res *CallbackResult) (*oauth2.Token, error) {
	if res.State != a.state {
		return nil, ErrStateMismatch
	}

	token, err := a.cfg.Exchange(ctx, res.Code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", wrapTokenError(err))
	}
	return token, nil
}

// newState returns 32 bytes of crypto/rand entropy as URL-safe base64.
func newState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
