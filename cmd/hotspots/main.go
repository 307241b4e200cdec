// Package main provides the entry point for the hotspots CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hotspots-dev/hotspots/cmd/hotspots/commands"
	"github.com/hotspots-dev/hotspots/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hotspots",
		Short: "Git-native structural complexity and risk analysis",
		Long: `hotspots computes per-function structural complexity metrics from
source and aggregates them into a local risk score, tracked per commit.

Commands:
  analyze   Compute a snapshot or parent-relative delta at HEAD
  prune     Remove snapshots unreachable from any tracked ref
  compact   Set the snapshot store's compaction level`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewPruneCommand())
	rootCmd.AddCommand(commands.NewCompactCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		code := 1
		if ec, ok := err.(interface{ ExitCode() int }); ok {
			code = ec.ExitCode()
		}

		os.Exit(code)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
