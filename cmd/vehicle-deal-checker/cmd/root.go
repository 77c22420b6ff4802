// Package cmd implements the CLI commands for vehicle-deal-checker.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "vehicle-deal-checker",
	Short: "Value used-vehicle listings and rate the deal",
	Long: "An API-first service that extracts vehicle details from a listing with an LLM, " +
		"estimates its market value from brand/region price data, and rates the asking price.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		adjustCmd(),
		rateCmd(),
		versionCmd(),
	)
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
