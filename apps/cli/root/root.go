package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the CMS operator CLI. Subcommands are attached in wire.go.
var rootCmd = &cobra.Command{
	Use:           "cmsctl",
	Short:         "CareCrest CMS operator CLI",
	Long:          "Operator utilities for the hospital CMS (dev tokens, migrations, slug backfill, seed data).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
