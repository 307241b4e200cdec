package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotspots-dev/hotspots/internal/aggregate"
	"github.com/hotspots-dev/hotspots/internal/report"
)

func rec(file string, lrs float64, band string) report.FunctionRecord {
	return report.FunctionRecord{FunctionID: file + "::f", File: file, LRS: lrs, Band: band}
}

func TestComputeFileRollups(t *testing.T) {
	records := []report.FunctionRecord{
		rec("a/b/c.go", 3.0, "moderate"),
		rec("a/b/c.go", 7.0, "critical"),
		rec("a/d.go", 1.0, "low"),
	}

	result := aggregate.Compute(records)

	require.Len(t, result.Files, 2)

	var cFile aggregate.Entry
	for _, f := range result.Files {
		if f.Path == "a/b/c.go" {
			cFile = f
		}
	}
	require.InDelta(t, 10.0, cFile.SumLRS, 1e-9)
	require.InDelta(t, 7.0, cFile.MaxLRS, 1e-9)
	require.Equal(t, 1, cFile.HighPlusCount)
}

func TestComputeDirectoryRollupsFoldByPrefix(t *testing.T) {
	records := []report.FunctionRecord{
		rec("a/b/c.go", 3.0, "high"),
		rec("a/d.go", 1.0, "low"),
	}

	result := aggregate.Compute(records)

	byPath := map[string]aggregate.Entry{}
	for _, d := range result.Directories {
		byPath[d.Path] = d
	}

	require.Contains(t, byPath, "a")
	require.Contains(t, byPath, "a/b")
	require.InDelta(t, 4.0, byPath["a"].SumLRS, 1e-9)
	require.Equal(t, 1, byPath["a"].HighPlusCount)
	require.InDelta(t, 3.0, byPath["a/b"].SumLRS, 1e-9)
}

func TestComputeTopLevelFileHasNoDirectory(t *testing.T) {
	records := []report.FunctionRecord{rec("root.go", 1.0, "low")}

	result := aggregate.Compute(records)

	require.Empty(t, result.Directories)
}

func TestComputeIsSortedByPath(t *testing.T) {
	records := []report.FunctionRecord{
		rec("z.go", 1.0, "low"),
		rec("a.go", 1.0, "low"),
	}

	result := aggregate.Compute(records)

	require.Equal(t, "a.go", result.Files[0].Path)
	require.Equal(t, "z.go", result.Files[1].Path)
}

func TestComputeEmptyInput(t *testing.T) {
	result := aggregate.Compute(nil)

	require.Empty(t, result.Files)
	require.Empty(t, result.Directories)
}
