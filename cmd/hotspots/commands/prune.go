package commands

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hotspots-dev/hotspots/internal/gitcontext"
	"github.com/hotspots-dev/hotspots/internal/prune"
	"github.com/hotspots-dev/hotspots/internal/snapshot"
)

type pruneCmd struct {
	unreachable bool
	olderThan   int
	dryRun      bool
}

// NewPruneCommand builds the `hotspots prune` subcommand (§4.M/§6).
func NewPruneCommand() *cobra.Command {
	pc := &pruneCmd{}

	cmd := &cobra.Command{
		Use:   "prune [path]",
		Short: "Remove snapshots no longer reachable from any tracked ref",
		Args:  cobra.MaximumNArgs(1),
		RunE:  pc.run,
	}

	cmd.Flags().BoolVar(&pc.unreachable, "unreachable", true, "Prune commits unreachable from refs/heads/*")
	cmd.Flags().IntVar(&pc.olderThan, "older-than", 0, "Additionally require the commit to be older than N days")
	cmd.Flags().BoolVar(&pc.dryRun, "dry-run", false, "Report the prune plan without deleting anything")

	return cmd
}

func (pc *pruneCmd) run(cmd *cobra.Command, args []string) error {
	repoRoot := "."
	if len(args) > 0 {
		repoRoot = args[0]
	}

	absRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return err
	}

	git := gitcontext.New(absRoot)
	store := snapshot.New(absRoot)

	opts := prune.Options{
		DryRun:     pc.dryRun,
		HasMaxAge:  cmd.Flags().Changed("older-than"),
		MaxAgeDays: pc.olderThan,
	}

	plan, err := prune.Run(git, store, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if pc.dryRun {
		fmt.Fprintf(out, "would prune %d snapshot(s):\n", len(plan.ToPrune))
		for _, sha := range plan.ToPrune {
			fmt.Fprintln(out, sha)
		}
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Pruned []string `json:"pruned"`
	}{Pruned: plan.ToPrune})
}
