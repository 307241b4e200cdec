// Package report assembles the ordered, filtered FunctionRecord list
// for a single analysis run (§4.I) and serializes it deterministically,
// grounded on the teacher's report assembly idiom in its own reporting
// layer (stable key order, explicit field structs rather than map[string]any).
package report

import (
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hotspots-dev/hotspots/internal/metrics"
	"github.com/hotspots-dev/hotspots/internal/risk"
)

// Metrics mirrors §3's non-negative integer metric quadruple.
type Metrics = metrics.Metrics

// Risk mirrors §3's real-valued risk component quadruple.
type Risk struct {
	RCC float64 `json:"r_cc"`
	RND float64 `json:"r_nd"`
	RFO float64 `json:"r_fo"`
	RNS float64 `json:"r_ns"`
}

// FunctionRecord is §3's FunctionRecord, field order fixed for stable
// JSON key order on every encode.
type FunctionRecord struct {
	FunctionID         string  `json:"function_id"`
	File               string  `json:"file"`
	Line               int     `json:"line"`
	Metrics            Metrics `json:"metrics"`
	Risk               Risk    `json:"risk"`
	LRS                float64 `json:"lrs"`
	Band               string  `json:"band"`
	SuppressionReason  *string `json:"suppression_reason,omitempty"`
}

// Filters are applied before ordering for human views; the canonical
// snapshot ordering is unfiltered and always function_id ascending.
type Filters struct {
	MinLRS         float64
	HasMinLRS      bool
	TopN           int
	HasTopN        bool
	IncludeGlobs   []string
	ExcludeGlobs   []string
}

// FromRisk converts a risk.Result plus identity/position data into the
// wire FunctionRecord shape.
func FromRisk(functionID, file string, line int, m Metrics, result risk.Result, suppression *string) FunctionRecord {
	return FunctionRecord{
		FunctionID: functionID,
		File:       file,
		Line:       line,
		Metrics:    m,
		Risk: Risk{
			RCC: result.Components.RCC,
			RND: result.Components.RND,
			RFO: result.Components.RFO,
			RNS: result.Components.RNS,
		},
		LRS:               result.LRS,
		Band:              string(result.Band),
		SuppressionReason: suppression,
	}
}

// SortCanonical orders records function_id ASCII-ascending, the order
// every persisted snapshot must use.
func SortCanonical(records []FunctionRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].FunctionID < records[j].FunctionID
	})
}

// SortHuman orders records (lrs desc, file asc, line asc, function_id
// asc), the default ordering for human-facing views.
func SortHuman(records []FunctionRecord) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.LRS != b.LRS {
			return a.LRS > b.LRS
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.FunctionID < b.FunctionID
	})
}

// Apply filters records for a human view. It does not mutate the
// canonical snapshot list; callers filter a copy.
func Apply(records []FunctionRecord, f Filters) []FunctionRecord {
	out := make([]FunctionRecord, 0, len(records))
	for _, r := range records {
		if f.HasMinLRS && r.LRS < f.MinLRS {
			continue
		}
		if len(f.IncludeGlobs) > 0 && !matchesAny(r.File, f.IncludeGlobs) {
			continue
		}
		if matchesAny(r.File, f.ExcludeGlobs) {
			continue
		}
		out = append(out, r)
	}

	SortHuman(out)

	if f.HasTopN && f.TopN >= 0 && len(out) > f.TopN {
		out = out[:f.TopN]
	}

	return out
}

func matchesAny(file string, globs []string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, file); err == nil && ok {
			return true
		}
	}
	return false
}
