package config

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	// DefaultBaseURL is the deployed book backend, used when no override is configured
	DefaultBaseURL = "https://samra82-book-chatbot.hf.space/api/v1"

	DefaultTitle   = "Humanoid Robotics Assistant"
	DefaultWelcome = "Hello! I'm your Humanoid Robotics Assistant.\nAsk me any questions about Physical AI, Humanoid Robotics, or the content from the book."
)

// Config holds the configuration for the chat client
type Config struct {
	BaseURL    string `toml:"base_url" mapstructure:"base_url"`       // Override for DefaultBaseURL (empty = default)
	StorageDir string `toml:"storage_dir" mapstructure:"storage_dir"` // Token storage and TUI log location (empty = next to config file)
	Title      string `toml:"title" mapstructure:"title"`
	Welcome    string `toml:"welcome" mapstructure:"welcome"`
	Style      string `toml:"style" mapstructure:"style"` // glamour style: auto, dark, light, notty
	LogLevel   string `toml:"log_level" mapstructure:"log_level"`
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig() *Config {
	return &Config{
		BaseURL:    "",
		StorageDir: "",
		Title:      DefaultTitle,
		Welcome:    DefaultWelcome,
		Style:      "auto",
		LogLevel:   "warn",
	}
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	baseURL, err := expandEnvVar(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("error expanding base_url: %w", err)
	}
	config.BaseURL = baseURL

	storageDir, err := ResolveStorageDir(config.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("error resolving storage directory '%s': %w", config.StorageDir, err)
	}
	config.StorageDir = storageDir

	return config, nil
}
