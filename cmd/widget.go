/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/longkey1/bookchat/internal/bookchat/chat"
	"github.com/longkey1/bookchat/internal/bookchat/tui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// logFileName is written inside the storage directory while the widget owns the terminal
const logFileName = "bookchat.log"

var startOpen bool

// widgetCmd represents the widget command
var widgetCmd = &cobra.Command{
	Use:     "widget",
	Aliases: []string{"open"},
	Short:   "Open the chat widget",
	Long: `Open the full-screen chat widget.

The widget starts closed as a small trigger. Keys:
  enter   open the panel, or send the message when open
  ctrl+o  toggle between the open panel and the minimized bar
  esc     minimize
  ctrl+w  close (the conversation is kept)
  ctrl+c  quit

Logs are written to bookchat.log in the storage directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Log to a file while the widget owns the terminal
		if err := os.MkdirAll(cfg.StorageDir, 0755); err != nil {
			return fmt.Errorf("creating storage directory: %w", err)
		}
		logPath := filepath.Join(cfg.StorageDir, logFileName)
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer logFile.Close()
		setupLogging(logFile, false)

		client := newClient(cfg)
		log.Info().Str("base_url", client.BaseURL()).Msg("Starting chat widget")

		// Create the shell around a fresh widget
		model, err := tui.NewShellModel(cmd.Context(), chat.NewWidget(client), cfg.Title, cfg.Welcome, cfg.Style)
		if err != nil {
			return fmt.Errorf("creating widget: %w", err)
		}
		if startOpen {
			model.Shell().Open()
		}

		if err := tui.Run(cmd.Context(), model); err != nil {
			return fmt.Errorf("running widget: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(widgetCmd)

	widgetCmd.Flags().BoolVar(&startOpen, "start-open", false, "start with the panel open")
}
