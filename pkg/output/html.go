package output

import (
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/sdejongh/sidediff/pkg/compare"
	"github.com/sdejongh/sidediff/pkg/models"
)

const nbsp = "&nbsp;"

// pageStyle is embedded in standalone pages only; fragments are styled by the embedding page
const pageStyle = `table.basictable { border-collapse: collapse; font-family: monospace; }
table.basictable td { padding: 0 4px; vertical-align: top; }
table.basictable tr.titles th { text-align: left; }
td.match { }
td.extra, span.extra { background: #dfd; }
span.diff { background: #fdd; }
span.match { }
`

// HTMLRenderer renders a result as a four-column table
type HTMLRenderer struct {
	standalone bool
}

// NewHTMLRenderer creates an HTML renderer. A standalone renderer wraps the
// table in a complete page with a default stylesheet.
func NewHTMLRenderer(standalone bool) *HTMLRenderer {
	return &HTMLRenderer{standalone: standalone}
}

// Render writes the table markup
func (r *HTMLRenderer) Render(w io.Writer, result *models.Result) error {
	var b strings.Builder
	if r.standalone {
		b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
		b.WriteString(escapeText(pageTitle(result)))
		b.WriteString("</title>\n<style>\n")
		b.WriteString(pageStyle)
		b.WriteString("</style>\n</head>\n<body>\n")
	}
	writeTable(&b, result)
	if r.standalone {
		b.WriteString("</body>\n</html>\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Extension returns the file extension
func (r *HTMLRenderer) Extension() string {
	return ".html"
}

// Name returns the renderer name
func (r *HTMLRenderer) Name() string {
	if r.standalone {
		return "page"
	}
	return "html"
}

// Table compares left and right and returns the table markup
func Table(left, right, leftTitle, rightTitle string, opts ...compare.Option) string {
	opts = append(opts, compare.WithTitles(leftTitle, rightTitle))
	var b strings.Builder
	writeTable(&b, compare.Compare(left, right, opts...))
	return b.String()
}

func writeTable(b *strings.Builder, result *models.Result) {
	b.WriteString("<table class=\"basictable\">\n")
	if result.HasTitles() {
		b.WriteString("<tr class=\"titles\"><th></th><th>")
		b.WriteString(escapeText(result.LeftTitle))
		b.WriteString("</th><th></th><th>")
		b.WriteString(escapeText(result.RightTitle))
		b.WriteString("</th></tr>\n")
	}
	for _, row := range result.Rows {
		writeRow(b, row)
	}
	b.WriteString("</table>\n")
}

func writeRow(b *strings.Builder, row models.Row) {
	b.WriteString("<tr>")
	switch row.Class {
	case models.ClassMatch:
		writeCell(b, row.LeftLine, "match", escapeText(row.Left))
		writeCell(b, row.RightLine, "match", escapeText(row.Right))
	case models.ClassDiff:
		var left, right string
		if row.Chars != nil {
			left, right = renderStream(row.Chars.Left), renderStream(row.Chars.Right)
		}
		writeCell(b, row.LeftLine, "", left)
		writeCell(b, row.RightLine, "", right)
	case models.ClassLeftOnly:
		writeCell(b, row.LeftLine, "extra", escapeText(row.Left))
		b.WriteString("<td></td><td></td>")
	case models.ClassRightOnly:
		b.WriteString("<td></td><td></td>")
		writeCell(b, row.RightLine, "extra", escapeText(row.Right))
	}
	b.WriteString("</tr>\n")
}

func writeCell(b *strings.Builder, line int, class, content string) {
	b.WriteString("<td>")
	b.WriteString(strconv.Itoa(line))
	b.WriteString("</td>")
	if class == "" {
		b.WriteString("<td>")
	} else {
		b.WriteString("<td class=\"")
		b.WriteString(class)
		b.WriteString("\">")
	}
	b.WriteString(content)
	b.WriteString("</td>")
}

// renderStream emits one span per run; an empty stream is an empty span
func renderStream(stream models.CharStream) string {
	runs := compare.Runs(stream)
	if len(runs) == 0 {
		return "<span></span>"
	}
	var b strings.Builder
	for _, run := range runs {
		b.WriteString("<span class=\"")
		b.WriteString(string(run.Class))
		b.WriteString("\">")
		b.WriteString(escapeText(run.Text))
		b.WriteString("</span>")
	}
	return b.String()
}

// escapeText entity-encodes s, then turns spaces of the escaped text into
// non-breaking spaces. The order matters: escaping after the substitution
// would encode the ampersand of &nbsp;.
func escapeText(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), " ", nbsp)
}

func pageTitle(result *models.Result) string {
	switch {
	case result.LeftTitle != "" && result.RightTitle != "":
		return result.LeftTitle + " vs " + result.RightTitle
	case result.LeftTitle != "":
		return result.LeftTitle
	case result.RightTitle != "":
		return result.RightTitle
	default:
		return "comparison"
	}
}
