// Package policy evaluates the fixed rule set of §4.L over a computed
// delta, producing blocking and warning results. It is a pure function
// of (delta, config): no I/O, no clock.
package policy

import (
	"fmt"
	"sort"

	"github.com/hotspots-dev/hotspots/internal/delta"
	"github.com/hotspots-dev/hotspots/internal/report"
)

// Severity is a violation's exit-code weight.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityWarning  Severity = "warning"
)

// Rule IDs, named exactly as in §4.L's table.
const (
	RuleCriticalIntroduction      = "critical-introduction"
	RuleExcessiveRiskRegression   = "excessive-risk-regression"
	RuleWatchThreshold            = "watch-threshold"
	RuleAttentionThreshold        = "attention-threshold"
	RuleRapidGrowth               = "rapid-growth"
	RuleSuppressionMissingReason  = "suppression-missing-reason"
	RuleNetRepoRegression         = "net-repo-regression"
)

// Result is one rule firing against one function (or the repo as a
// whole, for net-repo-regression).
type Result struct {
	ID         string                 `json:"id"`
	Severity   Severity               `json:"severity"`
	FunctionID string                 `json:"function_id,omitempty"`
	Message    string                 `json:"message"`
	Metadata   map[string]any         `json:"metadata,omitempty"`
}

// Outcome bundles everything a policy run produces.
type Outcome struct {
	Failed   []Result `json:"failed"`
	Warnings []Result `json:"warnings"`
}

// Thresholds are the tunable bounds of §6's warning_thresholds config
// key, plus the two blocking-rule thresholds.
type Thresholds struct {
	RegressionThreshold  float64 // excessive-risk-regression, default 1.0
	RapidGrowthFraction  float64 // rapid-growth, default 0.5
	WatchMin             float64 // default 2.5
	WatchMax             float64 // default 3.0
	AttentionMin         float64 // default 5.5
	AttentionMax         float64 // default 6.0
}

// DefaultThresholds returns §4.L's literal default bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RegressionThreshold: 1.0,
		RapidGrowthFraction: 0.5,
		WatchMin:            2.5,
		WatchMax:            3.0,
		AttentionMin:        5.5,
		AttentionMax:        6.0,
	}
}

// FailOn controls the exit-code demotion policy of §6: "error" (the
// default — only blocking violations fail), "warn" (warnings also
// fail), or "never" (always succeeds regardless of violations).
type FailOn string

const (
	FailOnError FailOn = "error"
	FailOnWarn  FailOn = "warn"
	FailOnNever FailOn = "never"
)

// Evaluate applies every §4.L rule to d. current is the full current
// function list (needed for net-repo-regression's repo-wide sum, since
// delta records omit unchanged metadata the sum still needs). parent is
// nil for a baseline delta.
func Evaluate(d *delta.Delta, current, parent []report.FunctionRecord, t Thresholds) Outcome {
	var out Outcome

	add := func(r Result) {
		if r.Severity == SeverityBlocking {
			out.Failed = append(out.Failed, r)
		} else {
			out.Warnings = append(out.Warnings, r)
		}
	}

	for _, rec := range d.Deltas {
		suppressed := rec.SuppressionReason != nil

		if suppressed && *rec.SuppressionReason == "" {
			add(Result{
				ID:         RuleSuppressionMissingReason,
				Severity:   SeverityWarning,
				FunctionID: rec.FunctionID,
				Message:    fmt.Sprintf("%s is suppressed with an empty reason", rec.FunctionID),
			})
		}

		if d.Baseline {
			// Per §4.L: baseline deltas skip all function-level policies.
			continue
		}

		if suppressed {
			// Exempt from every remaining function-level rule (§4.L);
			// still counted in net-repo-regression below.
			continue
		}

		evaluateFunctionRules(rec, t, add)
	}

	if !d.Baseline {
		evaluateNetRepoRegression(current, parent, add)
	}

	sortResults(out.Failed)
	sortResults(out.Warnings)

	return out
}

func evaluateFunctionRules(rec delta.Record, t Thresholds, add func(Result)) {
	switch rec.Status {
	case delta.StatusNew:
		if rec.After != nil && rec.After.Band == "critical" {
			add(Result{
				ID:         RuleCriticalIntroduction,
				Severity:   SeverityBlocking,
				FunctionID: rec.FunctionID,
				Message:    fmt.Sprintf("%s introduced at critical risk", rec.FunctionID),
			})
		}
	case delta.StatusModified:
		wasCritical := rec.Before != nil && rec.Before.Band == "critical"
		isCritical := rec.After != nil && rec.After.Band == "critical"
		if isCritical && !wasCritical {
			add(Result{
				ID:         RuleCriticalIntroduction,
				Severity:   SeverityBlocking,
				FunctionID: rec.FunctionID,
				Message:    fmt.Sprintf("%s regressed to critical risk", rec.FunctionID),
			})
		}

		if rec.Delta != nil && rec.Delta.LRS >= t.RegressionThreshold {
			add(Result{
				ID:         RuleExcessiveRiskRegression,
				Severity:   SeverityBlocking,
				FunctionID: rec.FunctionID,
				Message:    fmt.Sprintf("%s lrs increased by %.2f", rec.FunctionID, rec.Delta.LRS),
				Metadata:   map[string]any{"delta_lrs": rec.Delta.LRS},
			})
		}

		if rec.Before != nil && rec.After != nil && rec.Before.LRS > 0 &&
			rec.After.LRS >= (1+t.RapidGrowthFraction)*rec.Before.LRS {
			add(Result{
				ID:         RuleRapidGrowth,
				Severity:   SeverityWarning,
				FunctionID: rec.FunctionID,
				Message:    fmt.Sprintf("%s lrs grew from %.2f to %.2f", rec.FunctionID, rec.Before.LRS, rec.After.LRS),
			})
		}
	}

	if rec.After != nil {
		checkWatchAndAttention(rec.FunctionID, rec.After.LRS, t, add)
	}
}

func checkWatchAndAttention(functionID string, lrs float64, t Thresholds, add func(Result)) {
	if lrs >= t.WatchMin && lrs < t.WatchMax {
		add(Result{
			ID:         RuleWatchThreshold,
			Severity:   SeverityWarning,
			FunctionID: functionID,
			Message:    fmt.Sprintf("%s lrs %.2f is in the watch band", functionID, lrs),
		})
	}
	if lrs >= t.AttentionMin && lrs < t.AttentionMax {
		add(Result{
			ID:         RuleAttentionThreshold,
			Severity:   SeverityWarning,
			FunctionID: functionID,
			Message:    fmt.Sprintf("%s lrs %.2f is in the attention band", functionID, lrs),
		})
	}
}

func evaluateNetRepoRegression(current, parent []report.FunctionRecord, add func(Result)) {
	var curSum, parentSum float64
	for _, fr := range current {
		curSum += fr.LRS
	}
	for _, fr := range parent {
		parentSum += fr.LRS
	}
	if curSum > parentSum {
		add(Result{
			ID:       RuleNetRepoRegression,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("repo-wide lrs sum increased from %.2f to %.2f", parentSum, curSum),
			Metadata: map[string]any{"before": parentSum, "after": curSum},
		})
	}
}

func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.FunctionID < b.FunctionID
	})
}

// ExitCode applies §6's fail-on demotion policy to an Outcome.
func ExitCode(o Outcome, failOn FailOn) int {
	switch failOn {
	case FailOnNever:
		return 0
	case FailOnWarn:
		if len(o.Failed) > 0 || len(o.Warnings) > 0 {
			return 1
		}
		return 0
	default:
		if len(o.Failed) > 0 {
			return 1
		}
		return 0
	}
}
