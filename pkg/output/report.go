package output

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/sidediff/pkg/models"
)

const (
	// IndexFile is the HTML index written next to the rendered files
	IndexFile = "index.html"
	// ReportFile is the machine-readable batch report
	ReportFile = "report.json"
)

// WriteReportFiles writes index.html and report.json into dir
func WriteReportFiles(report *models.Report, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	writers := []struct {
		name  string
		write func(io.Writer, *models.Report) error
	}{
		{IndexFile, WriteIndex},
		{ReportFile, WriteReportJSON},
	}
	for _, wr := range writers {
		if err := writeFile(filepath.Join(dir, wr.name), report, wr.write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, report *models.Report, write func(io.Writer, *models.Report) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if err := write(file, report); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return file.Close()
}

// WriteReportJSON writes the report as indented JSON
func WriteReportJSON(w io.Writer, report *models.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"bytes": func(n int64) string { return humanize.Bytes(uint64(n)) },
	"when":  func(t time.Time) string { return t.Format(time.RFC3339) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>sidediff {{.Left}} vs {{.Right}}</title>
<style>
body { font-family: sans-serif; }
table { border-collapse: collapse; }
td, th { padding: 2px 8px; text-align: left; }
tr.identical td.status { color: #2a7d2a; }
tr.different td.status, tr.missing-left td.status, tr.missing-right td.status { color: #b36b00; }
tr.failed td.status { color: #c62828; }
</style>
</head>
<body>
<h1>{{.Left}} vs {{.Right}}</h1>
<p>Operation {{.OperationID}}, {{when .StartTime}}, {{.Duration}}. Status: <strong>{{.Status}}</strong>.</p>
<p>{{.Totals.Files}} files: {{.Totals.Identical}} identical, {{.Totals.Different}} different, {{.Totals.MissingLeft}} missing left, {{.Totals.MissingRight}} missing right, {{.Totals.Failed}} failed. {{bytes .Totals.BytesCompared}} compared.</p>
<table>
<tr><th>Path</th><th>Status</th><th>Changed</th><th>Left only</th><th>Right only</th><th>Not aligned</th></tr>
{{- range .Files}}
<tr class="{{.Status}}"><td>{{if .Output}}<a href="{{.Output}}">{{.Path}}</a>{{else}}{{.Path}}{{end}}</td><td class="status">{{.Status}}{{if .Error}}: {{.Error}}{{end}}</td><td>{{.Stats.Changed}}</td><td>{{.Stats.LeftOnly}}</td><td>{{.Stats.RightOnly}}</td><td>{{.Stats.LeftDropped}}/{{.Stats.RightDropped}}</td></tr>
{{- end}}
</table>
</body>
</html>
`))

// WriteIndex writes an HTML page linking every rendered file
func WriteIndex(w io.Writer, report *models.Report) error {
	return indexTemplate.Execute(w, report)
}

// WriteSummary writes a human-readable batch summary
func WriteSummary(w io.Writer, report *models.Report) error {
	var b strings.Builder
	t := report.Totals

	fmt.Fprintf(&b, "Batch comparison %s\n", report.OperationID)
	fmt.Fprintf(&b, "  Left:   %s\n", report.Left)
	fmt.Fprintf(&b, "  Right:  %s\n", report.Right)
	if report.OutputDir != "" {
		fmt.Fprintf(&b, "  Output: %s\n", report.OutputDir)
	}
	fmt.Fprintf(&b, "\n")

	for _, f := range report.Files {
		if f.Status == models.FileIdentical {
			continue
		}
		fmt.Fprintf(&b, "  %-13s %s", f.Status, f.Path)
		if f.Error != "" {
			fmt.Fprintf(&b, " (%s)", f.Error)
		} else if f.Status == models.FileDifferent {
			fmt.Fprintf(&b, " (%d changed, %d left only, %d right only)",
				f.Stats.Changed, f.Stats.LeftOnly, f.Stats.RightOnly)
		}
		fmt.Fprintf(&b, "\n")
	}
	if t.Files > t.Identical {
		fmt.Fprintf(&b, "\n")
	}

	fmt.Fprintf(&b, "  Files:      %s (%d identical, %d different, %d missing left, %d missing right, %d failed)\n",
		humanize.Comma(int64(t.Files)), t.Identical, t.Different, t.MissingLeft, t.MissingRight, t.Failed)
	fmt.Fprintf(&b, "  Compared:   %s\n", humanize.Bytes(uint64(t.BytesCompared)))
	fmt.Fprintf(&b, "  Duration:   %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "  Status:     %s\n", report.Status)

	_, err := io.WriteString(w, b.String())
	return err
}
