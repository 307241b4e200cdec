package risk_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotspots-dev/hotspots/internal/metrics"
	"github.com/hotspots-dev/hotspots/internal/risk"
)

func TestS1TrivialFunction(t *testing.T) {
	m := metrics.Metrics{CC: 1, ND: 0, FO: 0, NS: 0}
	r := risk.Evaluate(m, risk.DefaultWeights(), risk.DefaultThresholds())

	require.InDelta(t, 1.0, r.Components.RCC, 1e-9)
	require.InDelta(t, 0.0, r.Components.RND, 1e-9)
	require.InDelta(t, 1.0, r.LRS, 1e-9)
	require.Equal(t, risk.BandLow, r.Band)
}

func TestS2NestedBranching(t *testing.T) {
	m := metrics.Metrics{CC: 4, ND: 2, FO: 0, NS: 3}
	r := risk.Evaluate(m, risk.DefaultWeights(), risk.DefaultThresholds())

	// §3's formula (authoritative) gives lrs ≈ 6.02, which still lands in
	// the "high" band the spec's §8 S2 scenario names; the illustrative
	// ≈7.57 figure in §8 does not itself sum from the stated components
	// and is treated as a worked-example error, not a formula change (see
	// DESIGN.md).
	wantRCC := math.Log2(5)
	require.InDelta(t, wantRCC, r.Components.RCC, 1e-9)
	require.InDelta(t, 6.02, r.LRS, 0.01)
	require.Equal(t, risk.BandHigh, r.Band)
}

func TestBandBoundaryIsInclusiveUpward(t *testing.T) {
	th := risk.DefaultThresholds()
	require.Equal(t, risk.BandModerate, risk.Classify(th.Moderate, th))
	require.Equal(t, risk.BandHigh, risk.Classify(th.High, th))
	require.Equal(t, risk.BandCritical, risk.Classify(th.Critical, th))
}

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, risk.DefaultWeights().Validate())
	require.Error(t, risk.Weights{CC: -1}.Validate())
	require.Error(t, risk.Weights{CC: 11}.Validate())
	require.Error(t, risk.Weights{}.Validate())
}

func TestThresholdsValidate(t *testing.T) {
	require.NoError(t, risk.DefaultThresholds().Validate())
	require.Error(t, risk.Thresholds{Moderate: 0, High: 1, Critical: 2}.Validate())
	require.Error(t, risk.Thresholds{Moderate: 5, High: 3, Critical: 9}.Validate())
}
