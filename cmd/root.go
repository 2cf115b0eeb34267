package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jukei",
	Short: "CSV-driven LINE reply bot",
	Long:  "Jukei answers LINE webhook events from an ordered CSV rule table.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
