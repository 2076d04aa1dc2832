package compare

import "strings"

// DefaultTabWidth is the number of spaces a tab expands to
const DefaultTabWidth = 4

// Tokenize expands tabs and splits text into lines.
// A trailing newline yields a trailing empty line, and an empty text yields a
// single empty line.
func Tokenize(text string, tabWidth int) []string {
	if tabWidth < 0 {
		tabWidth = DefaultTabWidth
	}
	if strings.IndexByte(text, '\t') >= 0 {
		text = strings.ReplaceAll(text, "\t", strings.Repeat(" ", tabWidth))
	}
	return strings.Split(text, "\n")
}
