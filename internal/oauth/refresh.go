package oauth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenError describes a non-2xx response from the token endpoint.
type TokenError struct {
	StatusCode int
	Body       string
}

// Compile-time check that TokenError implements error
var _ error = (*TokenError)(nil)

func (e *TokenError) Error() string {
	return fmt.Sprintf("token endpoint returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Refresh redeems a refresh token for a new token pair. The returned token
// keeps the old refresh token when Fortnox does not rotate it, so callers can
// compare against the stored value before rewriting storage.
func Refresh(ctx context.Context, cfg *oauth2.Config, refreshToken string) (*oauth2.Token, error) {
	// A token with no access token forces the refresh grant immediately.
	token, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", wrapTokenError(err))
	}
	return token, nil
}

// wrapTokenError converts oauth2's retrieval failure into *TokenError so
// callers can inspect status and body with errors.As.
func wrapTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return &TokenError{
			StatusCode: retrieveErr.Response.StatusCode,
			Body:       string(retrieveErr.Body),
		}
	}
	return err
}
