package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/sdejongh/sidediff/pkg/models"
)

const maxColumnWidth = 60

var rowMarkers = map[models.Class]string{
	models.ClassMatch:     "=",
	models.ClassDiff:      "~",
	models.ClassLeftOnly:  "<",
	models.ClassRightOnly: ">",
}

// TextRenderer renders a result as a side-by-side terminal view
type TextRenderer struct{}

// NewTextRenderer creates a new plain text renderer
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Render writes one line per row followed by a summary
func (r *TextRenderer) Render(w io.Writer, result *models.Result) error {
	width := 0
	for _, row := range result.Rows {
		width = max(width, utf8.RuneCountInString(row.Left))
	}
	width = min(max(width, utf8.RuneCountInString(result.LeftTitle)), maxColumnWidth)

	var b strings.Builder
	if result.HasTitles() {
		fmt.Fprintf(&b, "     %s | %s\n", pad(result.LeftTitle, width), result.RightTitle)
		fmt.Fprintf(&b, "%s\n", strings.Repeat("-", width+12))
	}

	for _, row := range result.Rows {
		fmt.Fprintf(&b, "%s %s %s | %s %s\n",
			rowMarkers[row.Class],
			lineNumber(row.LeftLine), pad(row.Left, width),
			lineNumber(row.RightLine), row.Right)
	}

	s := result.Stats
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "Left:   %s lines, %s\n", humanize.Comma(int64(s.LeftLines)), humanize.Bytes(uint64(s.LeftBytes)))
	fmt.Fprintf(&b, "Right:  %s lines, %s\n", humanize.Comma(int64(s.RightLines)), humanize.Bytes(uint64(s.RightBytes)))
	fmt.Fprintf(&b, "Rows:   %d matched, %d changed, %d left only, %d right only\n",
		s.Matched, s.Changed, s.LeftOnly, s.RightOnly)
	if s.LeftDropped > 0 || s.RightDropped > 0 {
		fmt.Fprintf(&b, "Not aligned: %d trailing left lines, %d trailing right lines\n",
			s.LeftDropped, s.RightDropped)
	}
	if result.Equal {
		fmt.Fprintf(&b, "Status: identical\n")
	} else {
		fmt.Fprintf(&b, "Status: different\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Extension returns the file extension
func (r *TextRenderer) Extension() string {
	return ".txt"
}

// Name returns the renderer name
func (r *TextRenderer) Name() string {
	return "text"
}

func lineNumber(n int) string {
	if n == 0 {
		return "    "
	}
	return fmt.Sprintf("%4d", n)
}

// pad truncates or right-pads s to width runes
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		runes := []rune(s)
		return string(runes[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-n)
}
