package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mkarlsen/notat/internal/debounce"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Store    StoreConfig       `yaml:"store"`
	Index    IndexConfig       `yaml:"index"`
	API      APIConfig         `yaml:"api"`
	Autosave AutosaveConfig    `yaml:"autosave"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	if err := c.Autosave.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration for the serve command.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig holds the path to the local notes file.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// IndexConfig holds the SQLite search index configuration.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// APIConfig points client commands at a remote sync server. When both URLs
// are blank the local store is used instead. BaseURL wins over
// FallbackBaseURL when both are set.
type APIConfig struct {
	BaseURL         string `yaml:"base_url"`
	FallbackBaseURL string `yaml:"fallback_base_url"`
	Token           string `yaml:"token"`
}

// AutosaveConfig controls the debounced autosave used by interactive
// consumers. The delay is in milliseconds to keep the YAML plain.
type AutosaveConfig struct {
	DelayMS int `yaml:"delay_ms"`
}

// Delay returns the autosave quiet period as a duration.
func (c *AutosaveConfig) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

// Validate validates the autosave configuration.
func (c *AutosaveConfig) Validate() error {
	if c.DelayMS < 0 {
		return fmt.Errorf("autosave: delay_ms must not be negative")
	}
	return nil
}

// AuthConfig holds authentication configuration for the serve command.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values. The
// defaults are complete enough that every command runs with no config file
// at all.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			Path: DefaultStorePath(),
		},
		Index: IndexConfig{
			Path: DefaultIndexPath(),
		},
		Autosave: AutosaveConfig{
			DelayMS: int(debounce.DefaultDelay / time.Millisecond),
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}

// DefaultStorePath returns the default notes file location under the user's
// home directory.
func DefaultStorePath() string {
	return defaultDataPath("notes.json")
}

// DefaultIndexPath returns the default search index location under the
// user's home directory.
func DefaultIndexPath() string {
	return defaultDataPath("index.db")
}

// DefaultConfigPath returns the default config file location under the
// user's home directory.
func DefaultConfigPath() string {
	return defaultDataPath("config.yaml")
}

func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".notat", name)
	}
	return filepath.Join(home, ".notat", name)
}
