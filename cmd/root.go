/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/longkey1/bookchat/internal/bookchat/api"
	"github.com/longkey1/bookchat/internal/bookchat/config"
	"github.com/longkey1/bookchat/internal/bookchat/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	verbose  bool
	baseURL  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bookchat",
	Short: "A terminal chat client for the book assistant",
	Long: `bookchat talks to the question-answering backend of the Physical AI and
Humanoid Robotics book. Ask questions in a full-screen chat widget or one at a
time from the shell, ingest pages and inspect retrieved context.
You can configure the tool using a TOML configuration file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/bookchat/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "backend base URL (overrides base_url)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}

	// Set environment variable prefix and automatic env
	viper.SetEnvPrefix("BOOKCHAT") // Set prefix for environment variables
	viper.AutomaticEnv()           // read in environment variables that match

	// Determine config directory for user config
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	userConfigDir := filepath.Join(home, ".config", "bookchat")

	// Set default values from config package
	defaultConfig := config.NewDefaultConfig()
	viper.SetDefault("base_url", defaultConfig.BaseURL)
	viper.SetDefault("storage_dir", defaultConfig.StorageDir)
	viper.SetDefault("title", defaultConfig.Title)
	viper.SetDefault("welcome", defaultConfig.Welcome)
	viper.SetDefault("style", defaultConfig.Style)
	viper.SetDefault("log_level", defaultConfig.LogLevel)

	// Bind environment variables
	viper.BindEnv("base_url", "BOOKCHAT_BASE_URL")
	viper.BindEnv("storage_dir", "BOOKCHAT_STORAGE_DIR")
	viper.BindEnv("style", "BOOKCHAT_STYLE")
	viper.BindEnv("log_level", "BOOKCHAT_LOG_LEVEL")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	} else {
		// System-wide config first (lower priority)
		for _, path := range []string{"/etc/bookchat", "/usr/local/etc/bookchat"} {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		// Try to read system-wide config
		systemConfigLoaded := viper.ReadInConfig() == nil

		// User config (higher priority)
		viper.AddConfigPath(userConfigDir)
		if systemConfigLoaded {
			// Merge user config on top of system config
			if err := viper.MergeInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				}
			}
		} else if err := viper.ReadInConfig(); err != nil { // No system config, just read user config
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			}
		}
	}

	setupLogging(os.Stderr, true)

	log.Debug().
		Str("config_file", viper.ConfigFileUsed()).
		Str("base_url", viper.GetString("base_url")).
		Str("storage_dir", viper.GetString("storage_dir")).
		Str("style", viper.GetString("style")).
		Msg("Configuration loaded")
}

// setupLogging points the global logger at w using the configured level
func setupLogging(w io.Writer, console bool) {
	level, err := zerolog.ParseLevel(strings.ToLower(viper.GetString("log_level")))
	if err != nil || viper.GetString("log_level") == "" {
		level = zerolog.WarnLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// loadConfig loads the configuration, failing the command on error
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newClient builds an API client authenticated from the token store
func newClient(cfg *config.Config) *api.Client {
	store := token.NewStore(cfg.StorageDir)
	return api.NewClient(cfg.GetBaseURL(), api.WithTokenSource(store))
}
