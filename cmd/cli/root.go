// Package cli implements the reliscore-admin command line tool.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reliscore-admin",
	Short: "Administrative CLI for the ReliScore scoring service.",
	Long: `reliscore-admin triggers scoring runs against a running ReliScore
server and generates synthetic telemetry fixtures for local testing.`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
