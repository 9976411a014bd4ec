package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/longkey1/bookchat/internal/bookchat/token"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configFields = "configfile, base_url, storage_dir, title, welcome, style, log_level, token"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file and environment variables.

If a field name is specified, only that field's value is displayed.
Available fields: ` + configFields + `

Examples:
  bookchat config              # Show all configuration
  bookchat config base_url     # Show only the resolved backend URL
  bookchat config storage_dir  # Show only the storage directory`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Load configuration from file
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		tokenStatus := "(none)"
		if value, err := token.NewStore(cfg.StorageDir).Token(); err != nil {
			tokenStatus = fmt.Sprintf("(unreadable: %v)", err)
		} else if value != "" {
			tokenStatus = maskToken(value)
		}

		// If a field is specified, show only that field
		if len(args) > 0 {
			field := strings.ToLower(args[0])
			switch field {
			case "configfile":
				fmt.Println(viper.ConfigFileUsed())
			case "base_url", "baseurl":
				fmt.Println(cfg.GetBaseURL())
			case "storage_dir", "storagedir":
				fmt.Println(cfg.StorageDir)
			case "title":
				fmt.Println(cfg.Title)
			case "welcome":
				fmt.Println(cfg.Welcome)
			case "style":
				fmt.Println(cfg.Style)
			case "log_level", "loglevel":
				fmt.Println(cfg.LogLevel)
			case "token":
				fmt.Println(tokenStatus)
			default:
				fmt.Fprintf(os.Stderr, "Unknown field: %s\n", args[0])
				fmt.Fprintf(os.Stderr, "Available fields: %s\n", configFields)
				os.Exit(1)
			}
			return
		}

		// Display all configuration values
		fmt.Printf("ConfigFile: %s\n", viper.ConfigFileUsed())
		fmt.Printf("BaseURL: %s\n", cfg.GetBaseURL())
		fmt.Printf("StorageDir: %s\n", cfg.StorageDir)
		fmt.Printf("Title: %s\n", cfg.Title)
		fmt.Printf("Style: %s\n", cfg.Style)
		fmt.Printf("LogLevel: %s\n", cfg.LogLevel)
		fmt.Printf("Token: %s\n", tokenStatus)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
