package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/longkey1/bookchat/internal/bookchat/token"
	"github.com/spf13/cobra"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the stored API token",
	Long: `Manage the bearer token sent to the backend.

The token is kept in storage.json in the storage directory and read on every
request, so changes apply to a running widget's next message.`,
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the API token",
	Long: `Store the API token. If no token is given as an argument, it reads from stdin.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := tokenStore()
		if err != nil {
			return err
		}

		// Get token from arguments or stdin
		var value string
		if len(args) > 0 {
			value = args[0]
		} else {
			input, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading from stdin: %w", err)
			}
			value = strings.TrimSpace(string(input))
		}

		if err := store.SetToken(value); err != nil {
			return fmt.Errorf("storing token: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Token stored in %s\n", store.Path())
		return nil
	},
}

var tokenShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored API token (masked)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := tokenStore()
		if err != nil {
			return err
		}

		value, err := store.MustToken()
		if errors.Is(err, token.ErrNoToken) {
			fmt.Fprintln(cmd.OutOrStdout(), "No token stored.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), maskToken(value))
		return nil
	},
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := tokenStore()
		if err != nil {
			return err
		}
		if err := store.ClearToken(); err != nil {
			return fmt.Errorf("clearing token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
		return nil
	},
}

func tokenStore() (*token.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return token.NewStore(cfg.StorageDir), nil
}

// maskToken returns a masked version of the token for security
func maskToken(value string) string {
	if len(value) <= 8 {
		return "********"
	}
	return value[:4] + "..." + value[len(value)-4:]
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenShowCmd)
	tokenCmd.AddCommand(tokenClearCmd)
}
