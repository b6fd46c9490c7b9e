package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Media    MediaConfig    `mapstructure:"media"`
	Identity IdentityConfig `mapstructure:"identity"`
	Feed     FeedConfig     `mapstructure:"feed"`
	UI       UIConfig       `mapstructure:"ui"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// MediaConfig holds media service configuration
type MediaConfig struct {
	URL string `mapstructure:"url"` // Media service base URL
}

// IdentityConfig holds identity provider configuration
type IdentityConfig struct {
	URL       string `mapstructure:"url"`        // Identity provider base URL
	ClientKey string `mapstructure:"client_key"` // Credential exchanged for bearer tokens
	Account   string `mapstructure:"account"`    // Display name only
}

// FeedConfig holds feed retrieval configuration
type FeedConfig struct {
	PageSize    int `mapstructure:"page_size"`
	SearchLimit int `mapstructure:"search_limit"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	Theme       string `mapstructure:"theme"`
	DefaultView string `mapstructure:"default_view"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Media: MediaConfig{
			URL: "",
		},
		Identity: IdentityConfig{
			URL:       "",
			ClientKey: "",
		},
		Feed: FeedConfig{
			PageSize:    20,
			SearchLimit: 20,
		},
		UI: UIConfig{
			Theme:       "default",
			DefaultView: "feed",
		},
		Logging: LoggingConfig{
			File:       defaultLogPath(),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reeldeck", "reeldeck.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reeldeck", "reeldeck.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reeldeck")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "reeldeck")
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "reeldeck", "data")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reeldeck", "data")
	}
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("REELDECK")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Save saves the current configuration to file
func Save(cfg *Config) error {
	configPath := defaultConfigPath()

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("media.url", cfg.Media.URL)

	viper.Set("identity.url", cfg.Identity.URL)
	viper.Set("identity.client_key", cfg.Identity.ClientKey)
	viper.Set("identity.account", cfg.Identity.Account)

	viper.Set("feed.page_size", cfg.Feed.PageSize)
	viper.Set("feed.search_limit", cfg.Feed.SearchLimit)

	viper.Set("ui.theme", cfg.UI.Theme)
	viper.Set("ui.default_view", cfg.UI.DefaultView)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)
	viper.Set("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	viper.Set("logging.max_backups", cfg.Logging.MaxBackups)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ClearIdentityConfig removes identity-related configuration (provider
// URL, client key, account) while preserving other settings
func ClearIdentityConfig() error {
	viper.Set("identity.url", "")
	viper.Set("identity.client_key", "")
	viper.Set("identity.account", "")

	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if both service endpoints and the client key are set
func (c *Config) IsConfigured() bool {
	return c.Media.URL != "" && c.Identity.URL != "" && c.Identity.ClientKey != ""
}

// DataPath returns the local data directory
func DataPath() string {
	return defaultDataPath()
}

// ClearData removes all locally persisted data
func ClearData() error {
	dataPath := defaultDataPath()
	if err := os.RemoveAll(dataPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	return nil
}
