// Package cmd defines the command-line interface of the bill tracker:
// a long-running API server (serve) and a one-shot ingestion run (ingest).
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "billtracker",
	Short: "Legislative bill tracking backend",
	Long: `billtracker ingests recently updated bills from the Congress.gov API,
generates AI-assisted impact analyses through an OpenAI-compatible model
endpoint, and serves the resulting documents over a JSON API.`,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
