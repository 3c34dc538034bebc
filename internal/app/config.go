package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/foliolab/folio/internal/folio"
	"github.com/foliolab/folio/internal/tokenstore"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
	LogFormatOTel LogFormat = "otel"
)

// TokenStorageType represents the persistent-tier backends for stored tokens.
type TokenStorageType string

const (
	TokenStorageTypeFile    TokenStorageType = "file"
	TokenStorageTypeKeyring TokenStorageType = "keyring"
	TokenStorageTypeMemory  TokenStorageType = "memory"
)

// Default configuration values
const (
	DefaultConfigLogFormat         = LogFormatText
	DefaultConfigAuthStorage       = TokenStorageTypeFile
	DefaultConfigAPIBaseURL        = folio.DefaultBaseURL
	DefaultConfigOAuthAuthURL      = "https://github.com/login/oauth/authorize"
	DefaultConfigOAuthCallbackAddr = "127.0.0.1:8910"
	DefaultConfigBridgeOrigin      = "host"

	keyringService = "folio-token"
)

// APIConfig holds backend API configuration.
type APIConfig struct {
	BaseURL string `json:"base_url" validate:"required,url"`
}

// AuthConfig describes how the persistent token tier is constructed. The
// session tier is always in-memory.
type AuthConfig struct {
	// Storage selects the persistent-tier backend.
	Storage TokenStorageType `json:"storage" validate:"required,oneof=file keyring memory"`

	// Storage-specific settings (mutually exclusive based on Storage type)
	File        string `json:"file,omitempty"`         // For file storage: path to token file
	KeyringUser string `json:"keyring_user,omitempty"` // For keyring storage: user identifier
}

// NewTokenStore creates the tiered token store from the authentication
// configuration: an in-memory session tier over the configured persistent tier.
func (a *AuthConfig) NewTokenStore() (*tokenstore.Tiered, error) {
	var (
		persistent tokenstore.Store
		err        error
	)
	switch a.Storage {
	case TokenStorageTypeFile:
		persistent, err = tokenstore.NewFileStore(a.File)
	case TokenStorageTypeKeyring:
		persistent, err = tokenstore.NewKeyringStore(keyringService, a.KeyringUser)
	case TokenStorageTypeMemory:
		persistent = tokenstore.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", a.Storage)
	}
	if err != nil {
		return nil, err
	}

	return tokenstore.NewTiered(tokenstore.NewMemoryStore(), persistent)
}

// OAuthConfig holds the provider-side settings for the login flow.
type OAuthConfig struct {
	ClientID     string `json:"client_id"`
	AuthURL      string `json:"auth_url" validate:"omitempty,url"`
	CallbackAddr string `json:"callback_addr"`
}

// BridgeConfig holds the settings for running embedded under a host.
type BridgeConfig struct {
	// Origin is the label attributed to the host peer on the stream port.
	Origin string `json:"origin"`

	// AllowedOrigins restricts which peers may set or clear credentials.
	// Empty keeps the permissive accept-all behavior.
	AllowedOrigins []string `json:"allowed_origins"`
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level   `json:"log_level"`
	LogFormat LogFormat    `json:"log_format" validate:"oneof=text json otel"`
	API       APIConfig    `json:"api"`
	Auth      AuthConfig   `json:"auth"`
	OAuth     OAuthConfig  `json:"oauth"`
	Bridge    BridgeConfig `json:"bridge"`
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
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultConfigAPIBaseURL
	}
	if c.Auth.Storage == "" {
		c.Auth.Storage = DefaultConfigAuthStorage
	}
	if c.OAuth.AuthURL == "" {
		c.OAuth.AuthURL = DefaultConfigOAuthAuthURL
	}
	if c.OAuth.CallbackAddr == "" {
		c.OAuth.CallbackAddr = DefaultConfigOAuthCallbackAddr
	}
	if c.Bridge.Origin == "" {
		c.Bridge.Origin = DefaultConfigBridgeOrigin
	}

	// Dynamic defaults based on storage type
	switch c.Auth.Storage {
	case TokenStorageTypeFile:
		if c.Auth.File == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("auth.file required (auto-detect failed: %w)", err)
			}
			c.Auth.File = filepath.Join(configDir, "folio", "auth")
		}
	case TokenStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("auth.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Auth.KeyringUser = currentUser.Username
		}
	case TokenStorageTypeMemory:
		// no settings
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Auth.Storage {
	case TokenStorageTypeFile:
		if c.Auth.File == "" {
			return errors.New("file path required for file storage")
		}
	case TokenStorageTypeKeyring:
		if c.Auth.KeyringUser == "" {
			return errors.New("keyring_user required for keyring storage")
		}
	case TokenStorageTypeMemory:
		// nothing to check
	}

	return nil
}
