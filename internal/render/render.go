// Package render formats a function report for the three output modes
// of §6 (text, JSON, html). JSON marshaling is handled directly by the
// caller against the report/delta/policy wire types; this package
// covers the two human-facing renderers, grounded on the teacher's own
// go-pretty table formatting (internal/analyzers/common/formatter.go)
// and its html/template-based report pages
// (pkg/analyzers/common/plotpage/templates.go), plus fatih/color for
// band-tinted terminal output and dustin/go-humanize for the summary
// line's counts.
package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hotspots-dev/hotspots/internal/report"
)

// bandColor returns the fatih/color printer for a risk band, or nil
// when color output is disabled.
func bandColor(band string, noColor bool) *color.Color {
	if noColor {
		return nil
	}

	switch band {
	case "critical":
		return color.New(color.FgRed, color.Bold)
	case "high":
		return color.New(color.FgRed)
	case "moderate":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func colorize(c *color.Color, s string) string {
	if c == nil {
		return s
	}

	return c.Sprint(s)
}

// Text writes a go-pretty table of records to w, one row per function,
// sorted as the caller provides (callers pass report.Apply's output for
// the filtered/human-sorted view).
func Text(w io.Writer, records []report.FunctionRecord, noColor bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Function", "File", "Line", "CC", "ND", "FO", "NS", "LRS", "Band"})

	for _, r := range records {
		band := colorize(bandColor(r.Band, noColor), r.Band)
		t.AppendRow(table.Row{
			r.FunctionID, r.File, r.Line,
			r.Metrics.CC, r.Metrics.ND, r.Metrics.FO, r.Metrics.NS,
			fmt.Sprintf("%.2f", r.LRS), band,
		})
	}

	t.Render()

	fmt.Fprintf(w, "\n%s functions listed\n", humanize.Comma(int64(len(records))))
}

const htmlTemplateSource = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>hotspots report</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
tr.band-critical { background: #fdd; }
tr.band-high { background: #fee8d6; }
tr.band-moderate { background: #fff6d6; }
</style>
</head>
<body>
<h1>hotspots report</h1>
<p>{{.Count}} functions analyzed.</p>
<table>
<tr><th>Function</th><th>File</th><th>Line</th><th>CC</th><th>ND</th><th>FO</th><th>NS</th><th>LRS</th><th>Band</th></tr>
{{range .Records}}<tr class="band-{{.Band}}">
<td>{{.FunctionID}}</td><td>{{.File}}</td><td>{{.Line}}</td>
<td>{{.Metrics.CC}}</td><td>{{.Metrics.ND}}</td><td>{{.Metrics.FO}}</td><td>{{.Metrics.NS}}</td>
<td>{{printf "%.2f" .LRS}}</td><td>{{.Band}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`

var htmlTemplate = template.Must(template.New("report").Parse(htmlTemplateSource))

type htmlData struct {
	Count   int
	Records []report.FunctionRecord
}

// HTML writes a single-page HTML report of records to w.
func HTML(w io.Writer, records []report.FunctionRecord) error {
	return htmlTemplate.Execute(w, htmlData{Count: len(records), Records: records})
}
