package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// expandEnvVar expands environment variable references in the given value
// Supports both $VAR and ${VAR} syntax
// If the environment variable is not set, returns empty string.
func expandEnvVar(value string) (string, error) {
	if !strings.HasPrefix(value, "$") {
		return value, nil
	}

	var envVarName string
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		envVarName = value[2 : len(value)-1]
	} else {
		envVarName = strings.TrimPrefix(value, "$")
	}
	if envVarName == "" {
		return "", fmt.Errorf("empty environment variable reference: %q", value)
	}

	return os.Getenv(envVarName), nil
}

// ResolveBaseURL returns the runtime override if one is set, otherwise DefaultBaseURL.
// The result never ends with a slash.
func ResolveBaseURL(override string) string {
	baseURL := strings.TrimSpace(override)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// GetBaseURL returns the base URL the API client should use
func (c *Config) GetBaseURL() string {
	return ResolveBaseURL(c.BaseURL)
}

// ResolveStorageDir returns the directory holding the token storage file.
// An empty dir means the directory of the config file in use, or
// $HOME/.config/bookchat when no config file was loaded.
// Relative paths are resolved against the config file directory.
func ResolveStorageDir(dir string) (string, error) {
	dir, err := expandEnvVar(dir)
	if err != nil {
		return "", err
	}

	if dir == "" {
		if viper.ConfigFileUsed() != "" {
			return configDir()
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		return filepath.Join(home, ".config", "bookchat"), nil
	}

	return ResolvePath(dir)
}

// ResolvePath converts a relative path to absolute path if needed
func ResolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}

	if viper.ConfigFileUsed() == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("error getting current working directory: %v", err)
		}
		return filepath.Join(cwd, path), nil
	}

	base, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, path), nil
}

// configDir returns the absolute directory of the config file in use
func configDir() (string, error) {
	dir := filepath.Dir(viper.ConfigFileUsed())
	if filepath.IsAbs(dir) {
		return dir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("error getting current working directory: %v", err)
	}
	return filepath.Join(cwd, dir), nil
}
