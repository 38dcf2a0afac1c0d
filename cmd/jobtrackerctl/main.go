// Command jobtrackerctl is the operator tool: it checks the deployment,
// applies migrations and manages accounts directly against the store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "jobtrackerctl",
		Short: "Operate a job tracker deployment",
		Long: `jobtrackerctl talks to the store configured through the same
environment variables (and .env file) as the API server.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(checkCmd(&logLevel))
	cmd.AddCommand(migrateCmd(&logLevel))
	cmd.AddCommand(usersCmd(&logLevel))
	return cmd
}
