/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/longkey1/bookchat/internal/bookchat/chat"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var askWidth int

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask the book assistant a single question",
	Long: `Ask a single question and print the answer with its sources and confidence.

If no message is provided as an argument, it reads from stdin.
Markdown is rendered with the configured style on a terminal and as plain text
when the output is piped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Get message from arguments or stdin
		var message string
		if len(args) > 0 {
			message = strings.Join(args, " ")
		} else {
			// Read from stdin
			input, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading from stdin: %w", err)
			}
			message = strings.TrimSpace(string(input))
		}

		// Plain output when piped
		style := cfg.Style
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			style = "notty"
		}
		renderer, err := chat.NewRenderer(style, askWidth)
		if err != nil {
			return fmt.Errorf("creating renderer: %w", err)
		}

		// Send the message through the widget so errors are classified the same way
		widget := chat.NewWidget(newClient(cfg))
		widget.SetInput(message)
		if !widget.Submit(cmd.Context()) {
			return errors.New("message cannot be empty")
		}

		// The reply is the last message in the transcript
		messages := widget.Messages()
		reply := messages[len(messages)-1]
		if reply.Sender == chat.SenderSystem {
			return errors.New(reply.Text)
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderer.RenderMessage(reply))
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "Session: %s\n", widget.SessionID())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().IntVarP(&askWidth, "width", "w", 80, "word wrap width for the answer (0 disables wrapping)")
}
