package output

import (
	"io"
	"os"
	"runtime"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize/english"
	"golang.org/x/term"

	"github.com/sdejongh/sidediff/pkg/models"
)

const progressTemplate = `{{counters . }} {{bar . "[" "=" ">" " " "]"}} {{percent . }} {{etime . }} {{string . "status"}}`

// updateInterval returns the refresh interval of the bar.
// Windows terminals redraw ANSI sequences slowly.
func updateInterval() time.Duration {
	if runtime.GOOS == "windows" {
		return 300 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// IsTerminal reports whether w is a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ProgressBar renders batch progress as a single terminal bar
type ProgressBar struct {
	writer io.Writer
	bar    *pb.ProgressBar

	different int
	failed    int
}

// NewProgressBar creates a progress bar writing to w (stderr when nil)
func NewProgressBar(w io.Writer) *ProgressBar {
	if w == nil {
		w = os.Stderr
	}
	return &ProgressBar{writer: w}
}

// Start draws an empty bar for totalFiles files
func (p *ProgressBar) Start(totalFiles int) {
	p.bar = pb.New(totalFiles)
	p.bar.SetTemplateString(progressTemplate)
	p.bar.SetWriter(p.writer)
	p.bar.SetRefreshRate(updateInterval())
	if f, ok := p.writer.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			p.bar.SetWidth(width)
		}
	}
	p.bar.Set("status", "")
	p.bar.Start()
}

// FileDone advances the bar and shows the running tally
func (p *ProgressBar) FileDone(result models.FileResult) {
	if p.bar == nil {
		return
	}
	switch result.Status {
	case models.FileIdentical:
	case models.FileFailed:
		p.failed++
	default:
		p.different++
	}
	p.bar.Set("status", statusLine(p.different, p.failed))
	p.bar.Increment()
}

// Finish stops the bar
func (p *ProgressBar) Finish(report *models.Report) {
	if p.bar == nil {
		return
	}
	p.bar.Finish()
}

func statusLine(different, failed int) string {
	if different == 0 && failed == 0 {
		return "no differences"
	}
	line := ""
	if different > 0 {
		line = english.Plural(different, "difference", "differences")
	}
	if failed > 0 {
		if line != "" {
			line += ", "
		}
		line += english.Plural(failed, "failure", "failures")
	}
	return line
}
