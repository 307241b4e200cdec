// Package prune implements the reachability pruner of §4.M: removes
// snapshots whose commit is no longer reachable from any tracked ref,
// optionally gated by age, never touching a reachable snapshot.
package prune

import (
	"time"

	"github.com/hotspots-dev/hotspots/internal/determinism"
	"github.com/hotspots-dev/hotspots/internal/gitcontext"
	"github.com/hotspots-dev/hotspots/internal/snapshot"
)

// Options configures a prune run.
type Options struct {
	RefPatterns []string // default refs/heads/* when empty
	MaxAgeDays  int       // 0 means no age gate
	HasMaxAge   bool
	DryRun      bool
}

// Plan is the outcome of step 1-2 of §4.M's algorithm: the candidate
// set, computed before any deletion.
type Plan struct {
	Reachable map[string]bool
	ToPrune   []string // sorted ASCII-ascending
}

// ComputePlan computes the prune candidate set without deleting anything.
func ComputePlan(git *gitcontext.Client, store *snapshot.Store, opts Options) (*Plan, error) {
	reachable, err := git.ReachableFromRefs(opts.RefPatterns...)
	if err != nil {
		return nil, err
	}

	idx, err := store.RebuildIndex()
	if err != nil {
		return nil, err
	}

	var cutoff time.Time
	if opts.HasMaxAge {
		cutoff = time.Now().AddDate(0, 0, -opts.MaxAgeDays)
	}

	var toPrune []string
	for _, entry := range idx.Commits {
		if reachable[entry.SHA] {
			continue
		}
		if opts.HasMaxAge {
			committed := time.Unix(entry.Timestamp, 0).UTC()
			if !committed.Before(cutoff) {
				continue
			}
		}
		toPrune = append(toPrune, entry.SHA)
	}

	determinism.SortStringsASCII(toPrune)

	return &Plan{Reachable: reachable, ToPrune: toPrune}, nil
}

// Run executes the full algorithm: Plan, then (unless DryRun) delete
// and reindex.
func Run(git *gitcontext.Client, store *snapshot.Store, opts Options) (*Plan, error) {
	plan, err := ComputePlan(git, store, opts)
	if err != nil {
		return nil, err
	}

	if opts.DryRun || len(plan.ToPrune) == 0 {
		return plan, nil
	}

	if err := store.DeleteAndReindex(plan.ToPrune); err != nil {
		return nil, err
	}

	return plan, nil
}
