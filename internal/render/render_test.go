package render_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotspots-dev/hotspots/internal/render"
	"github.com/hotspots-dev/hotspots/internal/report"
)

func sampleRecords() []report.FunctionRecord {
	return []report.FunctionRecord{
		{FunctionID: "a.go::f", File: "a.go", Line: 3, Metrics: report.Metrics{CC: 1}, LRS: 1.0, Band: "low"},
		{FunctionID: "b.go::g", File: "b.go", Line: 7, Metrics: report.Metrics{CC: 9}, LRS: 8.5, Band: "critical"},
	}
}

func TestTextRendersEveryFunction(t *testing.T) {
	var buf bytes.Buffer

	render.Text(&buf, sampleRecords(), true)

	out := buf.String()
	require.Contains(t, out, "a.go::f")
	require.Contains(t, out, "b.go::g")
	require.Contains(t, out, "2 functions listed")
}

func TestTextNoColorOmitsEscapeCodes(t *testing.T) {
	var buf bytes.Buffer

	render.Text(&buf, sampleRecords(), true)

	require.NotContains(t, buf.String(), "\x1b[")
}

func TestHTMLRendersTableAndCount(t *testing.T) {
	var buf bytes.Buffer

	err := render.HTML(&buf, sampleRecords())

	require.NoError(t, err)
	out := buf.String()
	require.Contains(t, out, "2 functions analyzed")
	require.Contains(t, out, "a.go::f")
	require.Contains(t, out, `class="band-critical"`)
}

func TestHTMLEmptyRecords(t *testing.T) {
	var buf bytes.Buffer

	err := render.HTML(&buf, nil)

	require.NoError(t, err)
	require.True(t, strings.Contains(buf.String(), "0 functions analyzed"))
}
