/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/longkey1/bookchat/internal/bookchat/stub"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	stubAddr  string
	stubToken string
)

// stubCmd represents the stub command
var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run a local stand-in for the backend",
	Long: `Run a local backend with canned answers for development.

Point the client at it with:
  bookchat --base-url http://localhost:8080/api/v1 widget`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []stub.Option
		if stubToken != "" {
			opts = append(opts, stub.WithToken(stubToken))
		}

		srv := &http.Server{
			Addr:              stubAddr,
			Handler:           stub.NewServer(opts...).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", stubAddr).Str("prefix", stub.PathPrefix).Msg("Stub backend listening")
			errCh <- srv.ListenAndServe()
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "Stub backend listening on %s%s\n", stubAddr, stub.PathPrefix)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving stub backend: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down stub backend: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stubCmd)

	stubCmd.Flags().StringVar(&stubAddr, "addr", ":8080", "listen address")
	stubCmd.Flags().StringVar(&stubToken, "token", "", "require this bearer token on chat, process-url and retrieve")
}
