package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Drive     DriveConfig     `mapstructure:"drive"`
	Cache     CacheConfig     `mapstructure:"cache"`
	History   HistoryConfig   `mapstructure:"history"`
	Clipboard ClipboardConfig `mapstructure:"clipboard"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DriveConfig holds remote drive backend configuration
type DriveConfig struct {
	URL     string `mapstructure:"url"`     // API base URL, empty for the default
	Token   string `mapstructure:"token"`   // OAuth bearer token
	Offline bool   `mapstructure:"offline"` // skip the remote backend entirely
}

// CacheConfig holds folder cache tuning
type CacheConfig struct {
	TTL         time.Duration `mapstructure:"ttl"`          // 0 means entries never go stale
	NegativeTTL time.Duration `mapstructure:"negative_ttl"` // how long not-found results are remembered
	RetryCap    int           `mapstructure:"retry_cap"`
	RetryBase   time.Duration `mapstructure:"retry_base"`
	DataDir     string        `mapstructure:"data_dir"` // empty means memory-only
}

// HistoryConfig holds recents configuration
type HistoryConfig struct {
	RecentsCapacity int `mapstructure:"recents_capacity"`
}

// ClipboardConfig holds clipboard configuration
type ClipboardConfig struct {
	Mock string `mapstructure:"mock"` // fixed text used instead of the system clipboard
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Drive: DriveConfig{
			URL:     "",
			Token:   "",
			Offline: false,
		},
		Cache: CacheConfig{
			TTL:         0,
			NegativeTTL: 30 * time.Second,
			RetryCap:    3,
			RetryBase:   200 * time.Millisecond,
			DataDir:     defaultDataPath(),
		},
		History: HistoryConfig{
			RecentsCapacity: 10,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "skunav", "skunav.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "skunav", "skunav.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "skunav")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "skunav")
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "skunav")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "skunav")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("SKUNAV")
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

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("drive.url", cfg.Drive.URL)
	viper.Set("drive.token", cfg.Drive.Token)
	viper.Set("drive.offline", cfg.Drive.Offline)

	viper.Set("cache.ttl", cfg.Cache.TTL)
	viper.Set("cache.negative_ttl", cfg.Cache.NegativeTTL)
	viper.Set("cache.retry_cap", cfg.Cache.RetryCap)
	viper.Set("cache.retry_base", cfg.Cache.RetryBase)
	viper.Set("cache.data_dir", cfg.Cache.DataDir)

	viper.Set("history.recents_capacity", cfg.History.RecentsCapacity)

	viper.Set("clipboard.mock", cfg.Clipboard.Mock)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveToken updates just the drive token in the configuration
func SaveToken(token string) error {
	viper.Set("drive.token", token)

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

// IsConfigured returns true if a drive token is set or offline mode is on
func (c *Config) IsConfigured() bool {
	return c.Drive.Offline || c.Drive.Token != ""
}
