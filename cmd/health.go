/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var probe bool

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the backend health",
	Long: `Query the backend health endpoint and print its payload.

With --probe, only report whether the backend is reachable. The probe sends no
credentials and exits with status 1 when the backend is down.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := newClient(cfg)

		// Probe mode only reports reachability
		if probe {
			ok := client.TestConnection(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			if !ok {
				os.Exit(1)
			}
			return nil
		}

		health, err := client.HealthCheck(cmd.Context())
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}

		var out bytes.Buffer
		if err := json.Indent(&out, health.Raw, "", "  "); err != nil {
			return fmt.Errorf("formatting health payload: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().BoolVar(&probe, "probe", false, "only report whether the backend is reachable")
}
