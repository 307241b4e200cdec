package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hotspots-dev/hotspots/internal/snapshot"
)

type compactCmd struct {
	level int
}

// NewCompactCommand builds the `hotspots compact` subcommand (§6).
// Only level 0 has a distinct on-disk form today; levels 1 and 2 merely
// stamp the index's compaction_level field, per spec.md's Open
// Questions note that higher levels are metadata-only placeholders.
func NewCompactCommand() *cobra.Command {
	cc := &compactCmd{}

	cmd := &cobra.Command{
		Use:   "compact [path]",
		Short: "Set the snapshot store's compaction level",
		Args:  cobra.MaximumNArgs(1),
		RunE:  cc.run,
	}

	cmd.Flags().IntVar(&cc.level, "level", 0, "Compaction level: 0, 1, or 2")

	return cmd
}

func (cc *compactCmd) run(cmd *cobra.Command, args []string) error {
	if cc.level < 0 || cc.level > 2 {
		return fmt.Errorf("compact: level must be 0, 1, or 2, got %d", cc.level)
	}

	repoRoot := "."
	if len(args) > 0 {
		repoRoot = args[0]
	}

	absRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return err
	}

	store := snapshot.New(absRoot)
	if err := store.SetCompactionLevel(cc.level); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "compaction level set to %d\n", cc.level)

	return nil
}
