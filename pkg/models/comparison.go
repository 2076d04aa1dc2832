package models

// Class categorizes an aligned row or a single character of a line
type Class string

const (
	// ClassMatch indicates the value also occurs somewhere on the other side
	ClassMatch Class = "match"
	// ClassDiff indicates both sides hold a value unique to their own side
	ClassDiff Class = "diff"
	// ClassLeftOnly indicates a unique left value paired with nothing
	ClassLeftOnly Class = "left-only"
	// ClassRightOnly indicates a unique right value paired with nothing
	ClassRightOnly Class = "right-only"
	// ClassExtra marks a character present on one side only inside a diff row
	ClassExtra Class = "extra"
)

// CharEntry is one classified character of a line
type CharEntry struct {
	Text  string `json:"text"`
	Class Class  `json:"class"`
}

// CharStream is the ordered, classified content of one side of a diff row
type CharStream []CharEntry

// Text reassembles the characters of the stream
func (s CharStream) Text() string {
	n := 0
	for _, e := range s {
		n += len(e.Text)
	}
	b := make([]byte, 0, n)
	for _, e := range s {
		b = append(b, e.Text...)
	}
	return string(b)
}

// CharDiff holds both classified character streams of a line-level diff row
type CharDiff struct {
	Left  CharStream `json:"left"`
	Right CharStream `json:"right"`
}

// Run is a maximal contiguous span of same-classified characters
type Run struct {
	Text  string `json:"text"`
	Class Class  `json:"class"`
}

// Row is one aligned pairing of a left and/or right line.
// Line numbers are 1-based; 0 means the side is absent.
type Row struct {
	Class     Class     `json:"class"`
	LeftLine  int       `json:"left_line,omitempty"`
	Left      string    `json:"left,omitempty"`
	RightLine int       `json:"right_line,omitempty"`
	Right     string    `json:"right,omitempty"`
	Chars     *CharDiff `json:"chars,omitempty"`
}

// HasLeft reports whether the row carries a left line
func (r Row) HasLeft() bool {
	return r.LeftLine > 0
}

// HasRight reports whether the row carries a right line
func (r Row) HasRight() bool {
	return r.RightLine > 0
}

// Stats summarizes a comparison
type Stats struct {
	LeftBytes  int `json:"left_bytes"`
	RightBytes int `json:"right_bytes"`
	LeftLines  int `json:"left_lines"`
	RightLines int `json:"right_lines"`
	Matched    int `json:"matched"`
	Changed    int `json:"changed"`
	LeftOnly   int `json:"left_only"`
	RightOnly  int `json:"right_only"`

	// Lines never reached because alignment stopped at the end of the shorter side
	LeftDropped  int `json:"left_dropped"`
	RightDropped int `json:"right_dropped"`
}

// Result is the output of comparing two texts
type Result struct {
	LeftTitle  string `json:"left_title,omitempty"`
	RightTitle string `json:"right_title,omitempty"`
	Rows       []Row  `json:"rows"`
	Stats      Stats  `json:"stats"`

	// Equal is true when both texts are byte-identical. Membership alignment
	// can report only match rows for reordered lines, so this is the authority.
	Equal bool `json:"equal"`
}

// HasTitles reports whether a title row should be emitted
func (r *Result) HasTitles() bool {
	return r.LeftTitle != "" || r.RightTitle != ""
}
