// Package delta computes parent-relative deltas between two snapshots
// (§4.K): a pure join over function_id that classifies each function
// as new/deleted/modified/unchanged and computes numeric deltas.
package delta

import (
	"sort"

	"github.com/hotspots-dev/hotspots/internal/herrors"
	"github.com/hotspots-dev/hotspots/internal/report"
	"github.com/hotspots-dev/hotspots/internal/snapshot"
)

const SchemaVersion = 1

// Status classifies a function's presence across the two snapshots.
type Status string

const (
	StatusNew       Status = "new"
	StatusDeleted   Status = "deleted"
	StatusModified  Status = "modified"
	StatusUnchanged Status = "unchanged"
)

// Side captures one snapshot's view of a function for a delta record.
type Side struct {
	Metrics report.Metrics `json:"metrics"`
	LRS     float64        `json:"lrs"`
	Band    string          `json:"band"`
}

// FieldDelta is after-before per numeric field; may be negative.
type FieldDelta struct {
	CC  int64   `json:"cc"`
	ND  int64   `json:"nd"`
	FO  int64   `json:"fo"`
	NS  int64   `json:"ns"`
	LRS float64 `json:"lrs"`
}

// BandTransition is present only when before/after bands differ.
type BandTransition struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Record is one function's delta entry.
type Record struct {
	FunctionID     string          `json:"function_id"`
	Status         Status          `json:"status"`
	Before         *Side           `json:"before,omitempty"`
	After          *Side           `json:"after,omitempty"`
	Delta          *FieldDelta     `json:"delta,omitempty"`
	BandTransition *BandTransition `json:"band_transition,omitempty"`

	SuppressionReason *string `json:"-"`
}

// CommitRef identifies the pair of commits a delta was computed across.
type CommitRef struct {
	SHA    string `json:"sha"`
	Parent string `json:"parent"`
}

// Delta is §6's canonical delta JSON document, minus policy_results
// (attached by the caller after running internal/policy).
type Delta struct {
	SchemaVersion int       `json:"schema_version"`
	Commit        CommitRef `json:"commit"`
	Baseline      bool      `json:"baseline"`
	Deltas        []Record  `json:"deltas"`
}

// CheckCompatible fails fast (§4.K "Disallowed") when two snapshots
// cannot be diffed: differing schema version or compaction level.
func CheckCompatible(current, parent *snapshot.Snapshot, currentCompaction, parentCompaction int) error {
	if current.SchemaVersion != parent.SchemaVersion {
		return &herrors.IncompatibleSnapshots{
			Current: current.Commit.SHA,
			Parent:  parent.Commit.SHA,
			Reason:  "schema_version mismatch",
		}
	}
	if currentCompaction != parentCompaction {
		return &herrors.IncompatibleSnapshots{
			Current: current.Commit.SHA,
			Parent:  parent.Commit.SHA,
			Reason:  "compaction level mismatch",
		}
	}
	return nil
}

// Baseline builds the delta for a commit whose parent snapshot does
// not exist: every current function is reported new, per §4.K.
func Baseline(currentSHA string, current []report.FunctionRecord) *Delta {
	records := make([]Record, 0, len(current))
	for _, fr := range current {
		records = append(records, Record{
			FunctionID:        fr.FunctionID,
			Status:            StatusNew,
			After:             sideOf(fr),
			SuppressionReason: fr.SuppressionReason,
		})
	}
	sortRecords(records)

	return &Delta{
		SchemaVersion: SchemaVersion,
		Commit:        CommitRef{SHA: currentSHA, Parent: ""},
		Baseline:      true,
		Deltas:        records,
	}
}

// Compute joins current and parent function lists by function_id and
// classifies each per §4.K's algorithm.
func Compute(currentSHA, parentSHA string, current, parent []report.FunctionRecord) *Delta {
	byID := make(map[string]report.FunctionRecord, len(parent))
	for _, fr := range parent {
		byID[fr.FunctionID] = fr
	}

	seen := make(map[string]bool, len(current))
	var records []Record

	for _, after := range current {
		seen[after.FunctionID] = true
		before, existed := byID[after.FunctionID]

		if !existed {
			records = append(records, Record{
				FunctionID:        after.FunctionID,
				Status:            StatusNew,
				After:             sideOf(after),
				SuppressionReason: after.SuppressionReason,
			})
			continue
		}

		if recordsEqual(before, after) {
			records = append(records, Record{
				FunctionID:        after.FunctionID,
				Status:            StatusUnchanged,
				Before:            sideOf(before),
				After:             sideOf(after),
				SuppressionReason: after.SuppressionReason,
			})
			continue
		}

		rec := Record{
			FunctionID:        after.FunctionID,
			Status:            StatusModified,
			Before:            sideOf(before),
			After:             sideOf(after),
			Delta:             fieldDelta(before, after),
			SuppressionReason: after.SuppressionReason,
		}
		if before.Band != after.Band {
			rec.BandTransition = &BandTransition{From: before.Band, To: after.Band}
		}
		records = append(records, rec)
	}

	for _, before := range parent {
		if seen[before.FunctionID] {
			continue
		}
		records = append(records, Record{
			FunctionID: before.FunctionID,
			Status:     StatusDeleted,
			Before:     sideOf(before),
		})
	}

	sortRecords(records)

	return &Delta{
		SchemaVersion: SchemaVersion,
		Commit:        CommitRef{SHA: currentSHA, Parent: parentSHA},
		Baseline:      false,
		Deltas:        records,
	}
}

func sideOf(fr report.FunctionRecord) *Side {
	return &Side{Metrics: fr.Metrics, LRS: fr.LRS, Band: fr.Band}
}

func recordsEqual(a, b report.FunctionRecord) bool {
	return a.Metrics == b.Metrics && a.LRS == b.LRS && a.Band == b.Band
}

func fieldDelta(before, after report.FunctionRecord) *FieldDelta {
	return &FieldDelta{
		CC:  int64(after.Metrics.CC) - int64(before.Metrics.CC),
		ND:  int64(after.Metrics.ND) - int64(before.Metrics.ND),
		FO:  int64(after.Metrics.FO) - int64(before.Metrics.FO),
		NS:  int64(after.Metrics.NS) - int64(before.Metrics.NS),
		LRS: after.LRS - before.LRS,
	}
}

func sortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].FunctionID < records[j].FunctionID
	})
}
