// Package config handles configuration loading for aichat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	apierrors "github.com/diogo/aichat/internal/errors"
	"github.com/diogo/aichat/internal/models"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style" env:"GLAMOUR_STYLE"` // "dark", "light", "dracula", "notty" or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`              // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`         // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`                // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"`        // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// APIKey authenticates against the generative-language endpoint.
	// It is read from the environment only and never written to disk.
	APIKey string `json:"-" env:"GEMINI_API_KEY"`

	Model   string `json:"model" env:"AICHAT_MODEL"`
	BaseURL string `json:"base_url,omitempty" env:"AICHAT_BASE_URL"`
	// RequestTimeout bounds a single request, in seconds. Zero disables the bound.
	RequestTimeout int `json:"request_timeout" env:"AICHAT_TIMEOUT"`

	LogFile  string `json:"log_file,omitempty" env:"AICHAT_LOG_FILE"` // "-" logs to stderr
	LogLevel string `json:"log_level" env:"AICHAT_LOG_LEVEL"`

	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty" env:"AICHAT_THEME"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Model:          models.DefaultModel.Name,
		BaseURL:        models.DefaultBaseURL,
		RequestTimeout: 60,
		LogLevel:       "info",
		TUITheme:       "aurora",
		Markdown:       DefaultMarkdownConfig(),
	}
}

// Timeout returns the request timeout as a duration
func (c Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// Validate checks the settings needed before any request can be sent
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY in the environment or a .env file", apierrors.ErrNoAPIKey)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %d", c.RequestTimeout)
	}
	return nil
}

// GetConfigDir returns the configuration directory path.
// AICHAT_HOME overrides the default ~/.aichat.
func GetConfigDir() (string, error) {
	if dir := os.Getenv("AICHAT_HOME"); dir != "" {
		return filepath.Abs(dir)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".aichat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the log file path, defaulting to aichat.log in the config dir
func GetLogPath(cfg Config) (string, error) {
	if cfg.LogFile != "" {
		return cfg.LogFile, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "aichat.log"), nil
}

// LoadConfig loads the configuration file, then applies .env and environment overrides.
// Precedence: environment > .env > config file > defaults.
func LoadConfig() (Config, error) {
	cfg, err := LoadConfigFile()
	if err != nil {
		return cfg, err
	}

	// .env is optional; existing environment variables are not overridden
	_ = godotenv.Load()

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

// LoadConfigFile loads only the on-disk configuration
func LoadConfigFile() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MaskSecret shortens a secret for display, keeping only its first and last characters
func MaskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", 8) + s[len(s)-4:]
}
