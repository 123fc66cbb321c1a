package credstore

import (
	"context"
	"fmt"
	"os"
)

// EnvStore reads credentials from the process environment under their
// well-known names. Suitable when tokens are managed by an external secret
// manager, but not for token acquisition or refresh (those need writable
// storage).
type EnvStore struct{}

// Compile-time check to ensure EnvStore implements Store
var _ Store = (*EnvStore)(nil)

// NewEnvStore creates a read-only Store backed by the process environment.
func NewEnvStore() *EnvStore {
	return &EnvStore{}
}

// Get returns the environment variable named key.
func (e *EnvStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s: %w", key, ErrNotSet)
	}
	return value, nil
}

// Set is not supported for environment variables (they are read-only).
func (e *EnvStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return fmt.Errorf("%s: %w", key, ErrReadOnly)
}
