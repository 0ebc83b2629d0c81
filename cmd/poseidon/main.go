// Package main is the entry point for the poseidon trading back-office server.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "poseidon",
		Short: "Trading back-office web application",
		Long: `poseidon serves the back-office screens for bids, curve points, ratings,
rules, trades and user accounts.

Configuration is read from POSEIDON_* environment variables (or a .env file).
POSEIDON_AUTH__SESSION_SECRET must always be set.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd(), newMigrateCmd(), newUserCmd())
	return rootCmd
}
