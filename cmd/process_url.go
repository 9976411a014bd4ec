package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// processURLCmd represents the process-url command
var processURLCmd = &cobra.Command{
	Use:   "process-url <url>",
	Short: "Ask the backend to ingest a page",
	Long: `Ask the backend to fetch, chunk and index the page at the given URL so
later questions can cite it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		resp, err := newClient(cfg).ProcessURL(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("processing url: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Status: %s\n", resp.Status)
		if resp.Message != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Message: %s\n", resp.Message)
		}
		if resp.ChunksProcessed != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Chunks: %d\n", *resp.ChunksProcessed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(processURLCmd)
}
