package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/sdejongh/sidediff/pkg/models"
)

func sampleReport() *models.Report {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := &models.Report{
		OperationID: "op-1",
		Left:        "/srv/a",
		Right:       "peer:8790",
		OutputDir:   "/tmp/out",
		StartTime:   start,
		EndTime:     start.Add(1500 * time.Millisecond),
		Files: []models.FileResult{
			{Path: "same.txt", Status: models.FileIdentical, Output: "same.txt.html", Stats: models.Stats{LeftBytes: 4, RightBytes: 4}},
			{Path: "dir/<b>.txt", Status: models.FileDifferent, Output: "dir/<b>.txt.html", Stats: models.Stats{Changed: 2, LeftOnly: 1}},
			{Path: "gone.txt", Status: models.FileFailed, Error: "left: unauthorized"},
		},
	}
	r.Finalize(false)
	return r
}

func TestWriteIndex(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteIndex(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteIndex() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`<a href="same.txt.html">same.txt</a>`,
		`<tr class="failed">`,
		`failed: left: unauthorized`,
		`dir/&lt;b&gt;.txt`,
		`Status: <strong>failed</strong>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("index missing %q", want)
		}
	}
	if strings.Contains(out, "<b>.txt") {
		t.Error("file paths must be escaped in the index")
	}
}

func TestWriteReportJSON(t *testing.T) {
	report := sampleReport()
	var buf bytes.Buffer
	if err := WriteReportJSON(&buf, report); err != nil {
		t.Fatalf("WriteReportJSON() error = %v", err)
	}

	var decoded models.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report.json is not valid: %v", err)
	}
	if diff := cmp.Diff(report.Totals, decoded.Totals); diff != "" {
		t.Errorf("Totals mismatch (-want +got):\n%s", diff)
	}
	if decoded.Status != models.StatusFailed {
		t.Errorf("Status = %q, want %q", decoded.Status, models.StatusFailed)
	}
}

func TestWriteReportFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if err := WriteReportFiles(sampleReport(), dir); err != nil {
		t.Fatalf("WriteReportFiles() error = %v", err)
	}
	for _, name := range []string{IndexFile, ReportFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s not written: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Batch comparison op-1",
		"different     dir/<b>.txt (2 changed, 1 left only, 0 right only)",
		"failed        gone.txt (left: unauthorized)",
		"Files:      3 (1 identical, 1 different, 0 missing left, 0 missing right, 1 failed)",
		"Duration:   1.5s",
		"Status:     failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "identical     same.txt") {
		t.Error("identical files should not be listed")
	}
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf)

	bar.Start(3)
	bar.FileDone(models.FileResult{Path: "a", Status: models.FileIdentical})
	bar.FileDone(models.FileResult{Path: "b", Status: models.FileMissingRight})
	bar.FileDone(models.FileResult{Path: "c", Status: models.FileFailed})
	bar.Finish(sampleReport())

	out := buf.String()
	if !strings.Contains(out, "3 / 3") {
		t.Errorf("progress output missing final counters:\n%q", out)
	}
	if !strings.Contains(out, "1 difference, 1 failure") {
		t.Errorf("progress output missing tally:\n%q", out)
	}
}

func TestProgressBar_FinishWithoutStart(t *testing.T) {
	bar := NewProgressBar(&bytes.Buffer{})
	bar.FileDone(models.FileResult{Status: models.FileDifferent})
	bar.Finish(&models.Report{})
}

func TestStatusLine(t *testing.T) {
	tests := []struct {
		different, failed int
		want              string
	}{
		{0, 0, "no differences"},
		{2, 0, "2 differences"},
		{0, 1, "1 failure"},
		{1, 3, "1 difference, 3 failures"},
	}
	for _, tt := range tests {
		if got := statusLine(tt.different, tt.failed); got != tt.want {
			t.Errorf("statusLine(%d, %d) = %q, want %q", tt.different, tt.failed, got, tt.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}
