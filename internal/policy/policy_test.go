package policy_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotspots-dev/hotspots/internal/delta"
	"github.com/hotspots-dev/hotspots/internal/policy"
	"github.com/hotspots-dev/hotspots/internal/report"
)

func side(lrs float64, band string) *delta.Side {
	return &delta.Side{LRS: lrs, Band: band}
}

func TestCriticalIntroductionBlocksOnNew(t *testing.T) {
	d := &delta.Delta{
		Deltas: []delta.Record{
			{FunctionID: "a.go::f", Status: delta.StatusNew, After: side(7.0, "critical")},
		},
	}

	out := policy.Evaluate(d, nil, nil, policy.DefaultThresholds())

	require.Len(t, out.Failed, 1)
	require.Equal(t, policy.RuleCriticalIntroduction, out.Failed[0].ID)
}

func TestCriticalIntroductionBlocksOnRegression(t *testing.T) {
	d := &delta.Delta{
		Deltas: []delta.Record{
			{
				FunctionID: "a.go::f",
				Status:     delta.StatusModified,
				Before:     side(8.5, "high"),
				After:      side(9.2, "critical"),
				Delta:      &delta.FieldDelta{LRS: 0.7},
			},
		},
	}

	out := policy.Evaluate(d, nil, nil, policy.DefaultThresholds())

	require.Len(t, out.Failed, 1)
	require.Equal(t, policy.RuleCriticalIntroduction, out.Failed[0].ID)
}

func TestCriticalToCriticalDoesNotReFire(t *testing.T) {
	d := &delta.Delta{
		Deltas: []delta.Record{
			{
				FunctionID: "a.go::f",
				Status:     delta.StatusModified,
				Before:     side(7.0, "critical"),
				After:      side(7.1, "critical"),
				Delta:      &delta.FieldDelta{LRS: 0.1},
			},
		},
	}

	out := policy.Evaluate(d, nil, nil, policy.DefaultThresholds())

	for _, f := range out.Failed {
		require.NotEqual(t, policy.RuleCriticalIntroduction, f.ID)
	}
}

func TestExcessiveRiskRegressionBlocks(t *testing.T) {
	d := &delta.Delta{
		Deltas: []delta.Record{
			{
				FunctionID: "a.go::f",
				Status:     delta.StatusModified,
				Before:     side(2.0, "low"),
				After:      side(3.2, "moderate"),
				Delta:      &delta.FieldDelta{LRS: 1.2},
			},
		},
	}

	out := policy.Evaluate(d, nil, nil, policy.DefaultThresholds())

	require.Len(t, out.Failed, 1)
	require.Equal(t, policy.RuleExcessiveRiskRegression, out.Failed[0].ID)
}

func TestRapidGrowthWarns(t *testing.T) {
	d := &delta.Delta{
		Deltas: []delta.Record{
			{
				FunctionID: "a.go::f",
				Status:     delta.StatusModified,
				Before:     side(1.0, "low"),
				After:      side(1.6, "low"),
				Delta:      &delta.FieldDelta{LRS: 0.6},
			},
		},
	}

	out := policy.Evaluate(d, nil, nil, policy.DefaultThresholds())

	found := false
	for _, w := range out.Warnings {
		if w.ID == policy.RuleRapidGrowth {
			found = true
		}
	}
	require.True(t, found)
}

func TestWatchAndAttentionThresholdWarnings(t *testing.T) {
	th := policy.DefaultThresholds()

	watch := &delta.Delta{Deltas: []delta.Record{
		{FunctionID: "a.go::f", Status: delta.StatusUnchanged, After: side(2.7, "low")},
	}}
	out := policy.Evaluate(watch, nil, nil, th)
	require.Len(t, out.Warnings, 1)
	require.Equal(t, policy.RuleWatchThreshold, out.Warnings[0].ID)

	attention := &delta.Delta{Deltas: []delta.Record{
		{FunctionID: "a.go::f", Status: delta.StatusUnchanged, After: side(5.7, "moderate")},
	}}
	out = policy.Evaluate(attention, nil, nil, th)
	require.Len(t, out.Warnings, 1)
	require.Equal(t, policy.RuleAttentionThreshold, out.Warnings[0].ID)
}

func TestSuppressionMissingReasonWarns(t *testing.T) {
	empty := ""
	d := &delta.Delta{
		Deltas: []delta.Record{
			{FunctionID: "a.go::f", Status: delta.StatusUnchanged, After: side(1.0, "low"), SuppressionReason: &empty},
		},
	}

	out := policy.Evaluate(d, nil, nil, policy.DefaultThresholds())

	require.Len(t, out.Warnings, 1)
	require.Equal(t, policy.RuleSuppressionMissingReason, out.Warnings[0].ID)
}

func TestSuppressedFunctionExemptFromOtherRules(t *testing.T) {
	reason := "legacy, tracked in TICKET-1"
	d := &delta.Delta{
		Deltas: []delta.Record{
			{
				FunctionID:        "a.go::f",
				Status:            delta.StatusModified,
				Before:            side(1.0, "low"),
				After:             side(8.0, "critical"),
				Delta:             &delta.FieldDelta{LRS: 7.0},
				SuppressionReason: &reason,
			},
		},
	}

	out := policy.Evaluate(d, nil, nil, policy.DefaultThresholds())

	require.Empty(t, out.Failed)
	require.Empty(t, out.Warnings)
}

func TestBaselineSkipsFunctionLevelRules(t *testing.T) {
	d := &delta.Delta{
		Baseline: true,
		Deltas: []delta.Record{
			{FunctionID: "a.go::f", Status: delta.StatusNew, After: side(9.0, "critical")},
		},
	}

	out := policy.Evaluate(d, nil, nil, policy.DefaultThresholds())

	require.Empty(t, out.Failed)
}

func TestNetRepoRegressionWarnsOnSumIncrease(t *testing.T) {
	d := &delta.Delta{Deltas: []delta.Record{}}
	current := []report.FunctionRecord{{FunctionID: "a", LRS: 10}}
	parent := []report.FunctionRecord{{FunctionID: "a", LRS: 5}}

	out := policy.Evaluate(d, current, parent, policy.DefaultThresholds())

	require.Len(t, out.Warnings, 1)
	require.Equal(t, policy.RuleNetRepoRegression, out.Warnings[0].ID)
}

func TestExitCodeFailOnModes(t *testing.T) {
	withFailure := policy.Outcome{Failed: []policy.Result{{ID: "x"}}}
	withWarning := policy.Outcome{Warnings: []policy.Result{{ID: "x"}}}
	clean := policy.Outcome{}

	require.Equal(t, 1, policy.ExitCode(withFailure, policy.FailOnError))
	require.Equal(t, 0, policy.ExitCode(withWarning, policy.FailOnError))
	require.Equal(t, 1, policy.ExitCode(withWarning, policy.FailOnWarn))
	require.Equal(t, 0, policy.ExitCode(clean, policy.FailOnWarn))
	require.Equal(t, 0, policy.ExitCode(withFailure, policy.FailOnNever))
}
