// Package metrics computes the four raw structural metrics (§4.E) from
// a function's CFG plus frontend-supplied ancillary measurements. It
// observes nothing but its inputs: no filesystem, no locale, no clock.
package metrics

import "github.com/hotspots-dev/hotspots/internal/cfg"

// Metrics holds the four bounded non-negative integer metrics for one
// function.
type Metrics struct {
	CC uint32 `json:"cc"`
	ND uint32 `json:"nd"`
	FO uint32 `json:"fo"`
	NS uint32 `json:"ns"`
}

// Inputs bundles what a frontend must supply alongside a CFG to compute
// final metrics: the max nesting depth, the fan-out set size, the
// non-structured exit count, and the language-specific CC increment
// (switch/match cases, catch clauses, short-circuit operators,
// comprehension filters, Java synchronized blocks — see §4.C).
type Inputs struct {
	NestingDepth   int
	FanOut         int
	NonStructExits int
	CCIncrement    int
}

// saturatingUint32 clamps a non-negative int into uint32, saturating at
// the maximum rather than overflowing. Realistic values are small; this
// only guards pathological fixtures.
func saturatingUint32(v int) uint32 {
	if v < 0 {
		return 0
	}

	const maxU32 = 1<<32 - 1
	if v > maxU32 {
		return maxU32
	}

	return uint32(v)
}

// Extract computes the four metrics for one function given its CFG and
// the frontend's ancillary measurements.
func Extract(g *cfg.Graph, in Inputs) Metrics {
	cc := g.CyclomaticBase() + in.CCIncrement

	return Metrics{
		CC: saturatingUint32(cc),
		ND: saturatingUint32(in.NestingDepth),
		FO: saturatingUint32(in.FanOut),
		NS: saturatingUint32(in.NonStructExits),
	}
}
