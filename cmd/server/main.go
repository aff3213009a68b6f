// Command server runs the webhooker service and its maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "webhooker",
		Short: "Hook store with a WebSocket broadcast channel",
		Long: `webhooker serves user-owned hooks behind bearer authentication and
relays every WebSocket message to all connected clients.

Configuration is read from WEBHOOKER_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := serveCmd()
	rootCmd.RunE = serve.RunE

	rootCmd.AddCommand(
		serve,
		migrateCmd(),
		hashCmd(),
		userCmd(),
		versionCmd(),
	)
	return rootCmd
}
