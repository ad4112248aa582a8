package cmd

import "github.com/spf13/cobra"

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "prbranch",
	Short: "Branch reconciliation engine for automated pull requests",
	Long: `prbranch materializes a working tree's uncommitted changes and
workflow-produced commits as a single pull-request branch, creating it
fresh or updating it in place against a named base.`,
}

func init() {
	rootCmd.Version = Version
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
