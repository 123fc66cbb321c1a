package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/freke242/fortnox-slack-bot/internal/credstore"
	"github.com/freke242/fortnox-slack-bot/internal/format"
	"github.com/freke242/fortnox-slack-bot/internal/fortnox"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// StorageType represents the different backends supported for stored credentials.
type StorageType string

const (
	StorageTypeFile    StorageType = "file"
	StorageTypeEnv     StorageType = "env"
	StorageTypeKeyring StorageType = "keyring"
)

// Default configuration values
const (
	DefaultConfigLogFormat       = LogFormatText
	DefaultConfigStorage         = StorageTypeFile
	DefaultConfigStorageFile     = ".env"
	DefaultConfigKeyringService  = "fortnox-slack-bot"
	DefaultConfigFortnoxBaseURL  = fortnox.DefaultBaseURL
	DefaultConfigStockLimit      = format.DefaultStockLimit
	DefaultConfigShutdownTimeout = 5 * time.Second
)

// SlackConfig holds Slack-side bot behavior.
type SlackConfig struct {
	// Debug enables verbose logging inside the Slack client libraries.
	Debug bool `json:"debug"`
	// StockLimit caps the rows a stock listing displays.
	StockLimit int `json:"stock_limit" validate:"min=1"`
}

// FortnoxConfig holds Fortnox API configuration.
type FortnoxConfig struct {
	BaseURL string `json:"base_url" validate:"required,url"`
}

// StorageConfig describes where the credential store keeps its keys.
// Credentials themselves are never part of the configuration; they are read
// from and written to the store this section describes.
type StorageConfig struct {
	Type StorageType `json:"type" validate:"required,oneof=file env keyring"`

	// Storage-specific settings (used based on Type)
	File           string `json:"file,omitempty"`            // For file storage: path to the .env-style credentials file
	KeyringService string `json:"keyring_service,omitempty"` // For keyring storage: service name
}

// NewStore creates a credential store from the storage configuration.
func (s *StorageConfig) NewStore() (credstore.Store, error) {
	switch s.Type {
	case StorageTypeFile:
		return credstore.NewFileStore(s.File)
	case StorageTypeEnv:
		return credstore.NewEnvStore(), nil
	case StorageTypeKeyring:
		return credstore.NewKeyringStore(s.KeyringService)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", s.Type)
	}
}

// HealthConfig holds the optional liveness endpoint configuration.
type HealthConfig struct {
	// Addr enables the endpoint when non-empty, e.g. "127.0.0.1:8086".
	Addr string `json:"addr,omitempty"`
}

// RefreshConfig holds the embedded token refresh schedule.
type RefreshConfig struct {
	// Schedule is a standard cron expression; empty disables the embedded
	// refresh (external scheduling assumed).
	Schedule string `json:"schedule,omitempty"`
	// SkipVerify disables the read-only probe after each refresh.
	SkipVerify bool `json:"skip_verify"`
}

// ShutdownConfig holds shutdown behavior configuration.
type ShutdownConfig struct {
	// Timeout for graceful shutdown.
	Timeout time.Duration `json:"timeout"`
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level     `json:"log_level"`
	LogFormat LogFormat      `json:"log_format" validate:"oneof=text json"`
	Slack     SlackConfig    `json:"slack"`
	Fortnox   FortnoxConfig  `json:"fortnox"`
	Storage   StorageConfig  `json:"storage"`
	Health    HealthConfig   `json:"health"`
	Refresh   RefreshConfig  `json:"refresh"`
	Shutdown  ShutdownConfig `json:"shutdown"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Slack.StockLimit == 0 {
		c.Slack.StockLimit = DefaultConfigStockLimit
	}
	if c.Fortnox.BaseURL == "" {
		c.Fortnox.BaseURL = DefaultConfigFortnoxBaseURL
	}
	if c.Storage.Type == "" {
		c.Storage.Type = DefaultConfigStorage
	}
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = DefaultConfigShutdownTimeout
	}

	// Dynamic defaults based on storage type
	switch c.Storage.Type {
	case StorageTypeFile:
		if c.Storage.File == "" {
			c.Storage.File = DefaultConfigStorageFile
		}
	case StorageTypeKeyring:
		if c.Storage.KeyringService == "" {
			c.Storage.KeyringService = DefaultConfigKeyringService
		}
	case StorageTypeEnv:
		// nothing to derive
	}

	return nil
}

// Validate validates the configuration using struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Storage.Type {
	case StorageTypeFile:
		if c.Storage.File == "" {
			return errors.New("file path required for file storage")
		}
	case StorageTypeKeyring:
		if c.Storage.KeyringService == "" {
			return errors.New("keyring_service required for keyring storage")
		}
	case StorageTypeEnv:
	}

	if c.Refresh.Schedule != "" {
		// Scheduled refresh rewrites tokens (env storage is read-only)
		if c.Storage.Type == StorageTypeEnv {
			return errors.New("scheduled token refresh requires writable storage, env is read-only")
		}
		if _, err := cron.ParseStandard(c.Refresh.Schedule); err != nil {
			return fmt.Errorf("invalid refresh schedule: %w", err)
		}
	}

	return nil
}
