// Package commands implements CLI command handlers for hotspots,
// grounded on the teacher's own cmd/codefang/commands package: one
// constructor function per subcommand returning a *cobra.Command, a
// struct holding parsed flags, and a progressf-style stderr reporter
// for non-silent runs.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hotspots-dev/hotspots/internal/config"
	"github.com/hotspots-dev/hotspots/internal/delta"
	"github.com/hotspots-dev/hotspots/internal/engine"
	"github.com/hotspots-dev/hotspots/internal/gitcontext"
	"github.com/hotspots-dev/hotspots/internal/langdispatch"
	"github.com/hotspots-dev/hotspots/internal/mode"
	"github.com/hotspots-dev/hotspots/internal/policy"
	"github.com/hotspots-dev/hotspots/internal/render"
	"github.com/hotspots-dev/hotspots/internal/report"
	"github.com/hotspots-dev/hotspots/internal/snapshot"
	"github.com/hotspots-dev/hotspots/pkg/version"
)

const (
	modeSnapshot = "snapshot"
	modeDelta    = "delta"

	formatJSON = "json"
	formatText = "text"
	formatHTML = "html"
)

type analyzeCmd struct {
	mode       string
	format     string
	top        int
	hasTop     bool
	minLRS     float64
	hasMinLRS  bool
	configPath string
	runPolicy  bool
	failOn     string
	forcePR    bool
	baseBranch string
	noColor    bool

	warnThresholds policy.Thresholds
}

// NewAnalyzeCommand builds the `hotspots analyze` subcommand (§6).
func NewAnalyzeCommand() *cobra.Command {
	ac := &analyzeCmd{}

	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze structural complexity at the current commit",
		Args:  cobra.MaximumNArgs(1),
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.mode, "mode", modeSnapshot, "Output mode: snapshot or delta")
	cmd.Flags().StringVar(&ac.format, "format", formatJSON, "Output format: json, text, html")
	cmd.Flags().IntVar(&ac.top, "top", 0, "Limit human views to the top N functions by lrs")
	cmd.Flags().Float64Var(&ac.minLRS, "min-lrs", 0, "Hide functions below this lrs in human views")
	cmd.Flags().StringVar(&ac.configPath, "config", "", "Explicit configuration file path")
	cmd.Flags().BoolVar(&ac.runPolicy, "policy", false, "Evaluate policy rules against the computed delta")
	cmd.Flags().StringVar(&ac.failOn, "fail-on", string(policy.FailOnError), "Exit-code demotion: error, warn, never")
	cmd.Flags().BoolVar(&ac.forcePR, "force-pr", false, "Force pull-request mode regardless of CI environment")
	cmd.Flags().StringVar(&ac.baseBranch, "base", "", "PR base branch, required when PR mode resolves the parent")
	cmd.Flags().BoolVar(&ac.noColor, "no-color", os.Getenv("NO_COLOR") != "", "Disable colored text output")

	return cmd
}

func (ac *analyzeCmd) run(cmd *cobra.Command, args []string) error {
	repoRoot := "."
	if len(args) > 0 {
		repoRoot = args[0]
	}

	absRoot, err := filepath.Abs(repoRoot)
	if err != nil {
		return err
	}

	ac.hasTop = cmd.Flags().Changed("top")
	ac.hasMinLRS = cmd.Flags().Changed("min-lrs")

	cfg, err := config.Load(ac.configPath, absRoot)
	if err != nil {
		return err
	}

	if !ac.hasTop && cfg.HasTop {
		ac.top, ac.hasTop = cfg.Top, true
	}
	if !ac.hasMinLRS && cfg.HasMinLRS {
		ac.minLRS, ac.hasMinLRS = cfg.MinLRS, true
	}
	ac.warnThresholds = cfg.WarningThresholds

	git := gitcontext.New(absRoot)
	gitCtx, err := git.Extract()
	if err != nil {
		return err
	}

	registry := langdispatch.NewRegistry()

	opts := engine.ApplyConfig(engine.Options{}, cfg)

	result, err := engine.Run(cmd.Context(), absRoot, registry, opts)
	if err != nil {
		return err
	}

	var branch *string
	if gitCtx.Branch != "" {
		b := gitCtx.Branch
		branch = &b
	}

	snap := &snapshot.Snapshot{
		SchemaVersion: snapshot.SchemaVersion,
		Commit: snapshot.Commit{
			SHA:       gitCtx.HeadSHA,
			Parents:   gitCtx.Parents,
			Timestamp: gitCtx.Timestamp,
			Branch:    branch,
		},
		Analysis: snapshot.Analysis{
			Scope:        absRoot,
			ToolVersion:  version.Version,
			ConfigDigest: cfg.Digest(),
		},
		Functions: result.Functions,
	}

	store := snapshot.New(absRoot)
	runMode := mode.Detect(ac.forcePR)

	if mode.ShouldPersist(runMode) {
		if err := store.Write(snap); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()

	if ac.mode == modeSnapshot {
		return ac.renderFunctions(out, result.Functions)
	}

	return ac.runDelta(cmd, git, store, gitCtx, snap, runMode, out)
}

func (ac *analyzeCmd) runDelta(
	cmd *cobra.Command,
	git *gitcontext.Client,
	store *snapshot.Store,
	gitCtx gitcontext.Context,
	current *snapshot.Snapshot,
	runMode mode.Mode,
	out io.Writer,
) error {
	parentResult, err := mode.ResolveParent(runMode, git, gitCtx.HeadSHA, ac.baseBranch, gitCtx.Parents)
	if err != nil {
		return err
	}

	if parentResult.Warning != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", parentResult.Warning)
	}

	var d *delta.Delta
	var parentFunctions []report.FunctionRecord

	if parentResult.ParentSHA == "" || !store.Has(parentResult.ParentSHA) {
		d = delta.Baseline(current.Commit.SHA, current.Functions)
	} else {
		parentSnap, err := store.Load(parentResult.ParentSHA)
		if err != nil {
			return err
		}

		if err := delta.CheckCompatible(current, parentSnap, 0, 0); err != nil {
			return err
		}

		parentFunctions = parentSnap.Functions
		d = delta.Compute(current.Commit.SHA, parentResult.ParentSHA, current.Functions, parentFunctions)
	}

	var outcome policy.Outcome
	if ac.runPolicy {
		outcome = policy.Evaluate(d, current.Functions, parentFunctions, ac.warnThresholds)
	}

	if err := ac.renderDelta(out, d, outcome); err != nil {
		return err
	}

	if ac.runPolicy {
		code := policy.ExitCode(outcome, policy.FailOn(ac.failOn))
		if code != 0 {
			return &exitCodeError{code: code}
		}
	}

	return nil
}

func (ac *analyzeCmd) renderFunctions(out io.Writer, functions []report.FunctionRecord) error {
	filters := report.Filters{
		MinLRS:    ac.minLRS,
		HasMinLRS: ac.hasMinLRS,
		TopN:      ac.top,
		HasTopN:   ac.hasTop,
	}

	switch ac.format {
	case formatText:
		render.Text(out, report.Apply(functions, filters), ac.noColor)
		return nil
	case formatHTML:
		return render.HTML(out, report.Apply(functions, filters))
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(functions)
	}
}

type deltaDocument struct {
	*delta.Delta
	PolicyResults *policy.Outcome `json:"policy_results,omitempty"`
}

func (ac *analyzeCmd) renderDelta(out io.Writer, d *delta.Delta, outcome policy.Outcome) error {
	doc := deltaDocument{Delta: d}
	if ac.runPolicy {
		doc.PolicyResults = &outcome
	}

	switch ac.format {
	case formatText:
		for _, rec := range d.Deltas {
			fmt.Fprintf(out, "%-8s %s\n", rec.Status, rec.FunctionID)
		}
		for _, r := range outcome.Failed {
			fmt.Fprintf(out, "BLOCKING %s: %s\n", r.ID, r.Message)
		}
		for _, r := range outcome.Warnings {
			fmt.Fprintf(out, "WARNING  %s: %s\n", r.ID, r.Message)
		}
		return nil
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
}

// exitCodeError carries a non-zero process exit code from a policy
// failure; main reads it through ExitCode() and exits with that code.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string { return "policy violations found" }

func (e *exitCodeError) ExitCode() int { return e.code }
