// Package main provides the entry point for the spantree CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spantree/spantree/cmd/spantree/commands"
	"github.com/spantree/spantree/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "spantree",
		Short: "Spantree - interval overlap queries over span datasets",
		Long: `Spantree indexes span datasets in an augmented interval tree and
answers overlap and point queries from the command line or over HTTP.

Commands:
  query     Run overlap/point queries against a dataset
  stats     Show index statistics for a dataset
  serve     Serve queries over HTTP with Prometheus metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewStatsCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "spantree %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
