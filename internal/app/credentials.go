package app

import (
	"context"
	"fmt"

	"github.com/freke242/fortnox-slack-bot/internal/credstore"
	"github.com/freke242/fortnox-slack-bot/internal/fortnox"
)

// StoreCredentialSource adapts a credential store to the Fortnox client's
// per-call credential reads. Reading freshly on every call means a refresh
// performed by another process (or the embedded schedule) is picked up on the
// next API call without a restart.
type StoreCredentialSource struct {
	store credstore.Store
}

// Compile-time check to ensure StoreCredentialSource implements fortnox.CredentialSource
var _ fortnox.CredentialSource = (*StoreCredentialSource)(nil)

// NewStoreCredentialSource creates a StoreCredentialSource backed by store.
func NewStoreCredentialSource(store credstore.Store) *StoreCredentialSource {
	return &StoreCredentialSource{store: store}
}

// Credentials reads the access token and client secret from the store.
func (s *StoreCredentialSource) Credentials(ctx context.Context) (fortnox.Credentials, error) {
	accessToken, err := s.store.Get(ctx, credstore.KeyFortnoxAccessToken)
	if err != nil {
		return fortnox.Credentials{}, fmt.Errorf("reading access token: %w", err)
	}

	clientSecret, err := s.store.Get(ctx, credstore.KeyFortnoxClientSecret)
	if err != nil {
		return fortnox.Credentials{}, fmt.Errorf("reading client secret: %w", err)
	}

	return fortnox.Credentials{
		AccessToken:  accessToken,
		ClientSecret: clientSecret,
	}, nil
}
