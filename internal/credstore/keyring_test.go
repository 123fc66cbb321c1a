package credstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringStoreRoundTrip(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore("fortnox-slack-bot-test")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, KeyFortnoxAccessToken, "tok-1"))

	value, err := store.Get(ctx, KeyFortnoxAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", value)

	_, err = store.Get(ctx, KeyFortnoxRefreshToken)
	assert.ErrorIs(t, err, ErrNotSet)
}

func TestNewKeyringStoreEmptyService(t *testing.T) {
	_, err := NewKeyringStore("")
	assert.Error(t, err)
}
