// Package risk implements the Local Risk Score transform and band
// classification of §3/§4.F: a pure function over (metrics, weights,
// thresholds) using only integer-to-float widening, log2, min, and
// summation in a fixed order, so the result is bit-stable across
// platforms.
package risk

import (
	"fmt"
	"math"

	"github.com/hotspots-dev/hotspots/internal/metrics"
)

// Default bounds per §3.
const (
	ccCap = 6.0
	ndCap = 8.0
	foCap = 6.0
	nsCap = 6.0
)

// Weights are the LRS weighting coefficients. Each must be in [0,10]
// with at least one positive.
type Weights struct {
	CC float64 `json:"cc"`
	ND float64 `json:"nd"`
	FO float64 `json:"fo"`
	NS float64 `json:"ns"`
}

// DefaultWeights returns the spec-default weighting (1.0, 0.8, 0.6, 0.7).
func DefaultWeights() Weights {
	return Weights{CC: 1.0, ND: 0.8, FO: 0.6, NS: 0.7}
}

// Validate enforces the [0,10] bound and "at least one positive" rule.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{"cc": w.CC, "nd": w.ND, "fo": w.FO, "ns": w.NS} {
		if v < 0 || v > 10 {
			return fmt.Errorf("weight %s=%v out of range [0,10]", name, v)
		}
	}

	if w.CC <= 0 && w.ND <= 0 && w.FO <= 0 && w.NS <= 0 {
		return fmt.Errorf("at least one weight must be positive")
	}

	return nil
}

// Thresholds are the band boundaries. Must be strictly ordered and
// positive.
type Thresholds struct {
	Moderate float64 `json:"moderate"`
	High     float64 `json:"high"`
	Critical float64 `json:"critical"`
}

// DefaultThresholds returns the spec-default band boundaries (3.0, 6.0, 9.0).
func DefaultThresholds() Thresholds {
	return Thresholds{Moderate: 3.0, High: 6.0, Critical: 9.0}
}

// Validate enforces strict ordering and positivity.
func (t Thresholds) Validate() error {
	if t.Moderate <= 0 || t.High <= 0 || t.Critical <= 0 {
		return fmt.Errorf("thresholds must be positive")
	}

	if !(t.Moderate < t.High && t.High < t.Critical) {
		return fmt.Errorf("thresholds must be strictly ordered: moderate < high < critical")
	}

	return nil
}

// Band classifies a function's risk level.
type Band string

const (
	BandLow      Band = "low"
	BandModerate Band = "moderate"
	BandHigh     Band = "high"
	BandCritical Band = "critical"
)

// Components holds the bounded, transformed components that feed LRS.
type Components struct {
	RCC float64 `json:"r_cc"`
	RND float64 `json:"r_nd"`
	RFO float64 `json:"r_fo"`
	RNS float64 `json:"r_ns"`
}

// logTransform applies min(log2(x+1), cap) to a count metric.
func logTransform(v uint32, cap float64) float64 {
	return math.Min(math.Log2(float64(v)+1), cap)
}

// clampTransform applies min(v, cap) to a depth/count metric that is
// not log-scaled.
func clampTransform(v uint32, cap float64) float64 {
	return math.Min(float64(v), cap)
}

// ComputeComponents applies the §3 transforms to raw metrics.
func ComputeComponents(m metrics.Metrics) Components {
	return Components{
		RCC: logTransform(m.CC, ccCap),
		RND: clampTransform(m.ND, ndCap),
		RFO: logTransform(m.FO, foCap),
		RNS: clampTransform(m.NS, nsCap),
	}
}

// Score computes the final LRS as a fixed-order weighted sum. Fixed
// order (cc, nd, fo, ns) keeps floating-point summation bit-stable
// across platforms for identical inputs.
func Score(c Components, w Weights) float64 {
	return w.CC*c.RCC + w.ND*c.RND + w.FO*c.RFO + w.NS*c.RNS
}

// Classify assigns a band using the strict-< boundary rule of §4.F: a
// score exactly at a threshold lies in the band above it.
func Classify(lrs float64, t Thresholds) Band {
	switch {
	case lrs < t.Moderate:
		return BandLow
	case lrs < t.High:
		return BandModerate
	case lrs < t.Critical:
		return BandHigh
	default:
		return BandCritical
	}
}

// Result bundles everything the report assembler needs for one function.
type Result struct {
	Components Components
	LRS        float64
	Band       Band
}

// Evaluate is the full pure pipeline: metrics -> components -> LRS -> band.
func Evaluate(m metrics.Metrics, w Weights, t Thresholds) Result {
	c := ComputeComponents(m)
	lrs := Score(c, w)

	return Result{Components: c, LRS: lrs, Band: Classify(lrs, t)}
}
