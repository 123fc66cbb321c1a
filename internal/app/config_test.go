package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freke242/fortnox-slack-bot/internal/credstore"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.Equal(t, StorageTypeFile, cfg.Storage.Type)
	assert.Equal(t, ".env", cfg.Storage.File)
	assert.Equal(t, "https://api.fortnox.se/3", cfg.Fortnox.BaseURL)
	assert.Equal(t, 50, cfg.Slack.StockLimit)
	assert.Equal(t, 5*time.Second, cfg.Shutdown.Timeout)
	assert.Empty(t, cfg.Refresh.Schedule)

	assert.NoError(t, cfg.Validate())
}

func TestApplyDefaultsKeyringService(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Type: StorageTypeKeyring}}
	require.NoError(t, cfg.ApplyDefaults())

	assert.Equal(t, "fortnox-slack-bot", cfg.Storage.KeyringService)
	assert.Empty(t, cfg.Storage.File, "file default only applies to file storage")
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Default()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:   "env storage without schedule",
			mutate: func(c *Config) { c.Storage = StorageConfig{Type: StorageTypeEnv} },
		},
		{
			name:   "valid schedule",
			mutate: func(c *Config) { c.Refresh.Schedule = "*/50 * * * *" },
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "LogFormat",
		},
		{
			name:    "unknown storage type",
			mutate:  func(c *Config) { c.Storage.Type = "vault" },
			wantErr: "Type",
		},
		{
			name:    "negative stock limit",
			mutate:  func(c *Config) { c.Slack.StockLimit = -1 },
			wantErr: "StockLimit",
		},
		{
			name:    "invalid base URL",
			mutate:  func(c *Config) { c.Fortnox.BaseURL = "not a url" },
			wantErr: "BaseURL",
		},
		{
			name: "schedule with read-only storage",
			mutate: func(c *Config) {
				c.Storage = StorageConfig{Type: StorageTypeEnv}
				c.Refresh.Schedule = "*/50 * * * *"
			},
			wantErr: "read-only",
		},
		{
			name:    "malformed schedule",
			mutate:  func(c *Config) { c.Refresh.Schedule = "every ten minutes" },
			wantErr: "refresh schedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStorageConfigNewStore(t *testing.T) {
	fileStore, err := (&StorageConfig{Type: StorageTypeFile, File: t.TempDir() + "/.env"}).NewStore()
	require.NoError(t, err)
	assert.IsType(t, &credstore.FileStore{}, fileStore)

	envStore, err := (&StorageConfig{Type: StorageTypeEnv}).NewStore()
	require.NoError(t, err)
	assert.IsType(t, &credstore.EnvStore{}, envStore)

	keyringStore, err := (&StorageConfig{Type: StorageTypeKeyring, KeyringService: "svc"}).NewStore()
	require.NoError(t, err)
	assert.IsType(t, &credstore.KeyringStore{}, keyringStore)

	_, err = (&StorageConfig{Type: "vault"}).NewStore()
	assert.ErrorContains(t, err, "unsupported storage type")
}
