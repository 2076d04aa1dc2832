package compare

import "github.com/sdejongh/sidediff/pkg/models"

// Options configures a comparison
type Options struct {
	TabWidth   int
	CharUnit   CharUnit
	DrainTails bool
	LeftTitle  string
	RightTitle string
}

// Option mutates Options
type Option func(*Options)

// DefaultOptions returns the settings matching the historical output
func DefaultOptions() Options {
	return Options{
		TabWidth:   DefaultTabWidth,
		CharUnit:   CharUnitByte,
		DrainTails: !LegacyTruncation,
	}
}

// WithTabWidth sets the number of spaces a tab expands to
func WithTabWidth(n int) Option {
	return func(o *Options) { o.TabWidth = n }
}

// WithCharUnit sets the unit of the character pass
func WithCharUnit(u CharUnit) Option {
	return func(o *Options) { o.CharUnit = u }
}

// WithDrainTails emits the unreached tail of the longer side instead of dropping it
func WithDrainTails(drain bool) Option {
	return func(o *Options) { o.DrainTails = drain }
}

// WithTitles sets the column titles
func WithTitles(left, right string) Option {
	return func(o *Options) {
		o.LeftTitle = left
		o.RightTitle = right
	}
}

// Compare runs the two-level comparison of left and right.
//
// Lines are aligned first; lines classified as diff are compared again
// character by character. Compare holds no state and does not modify its
// inputs, so it is safe for concurrent use.
func Compare(left, right string, opts ...Option) *models.Result {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !o.CharUnit.Valid() {
		o.CharUnit = CharUnitByte
	}
	alignOpts := AlignOptions{DrainTails: o.DrainTails}

	a := Tokenize(left, o.TabWidth)
	b := Tokenize(right, o.TabWidth)
	steps := Align(a, b, alignOpts)

	result := &models.Result{
		LeftTitle:  o.LeftTitle,
		RightTitle: o.RightTitle,
		Rows:       make([]models.Row, 0, len(steps)),
		Equal:      left == right,
	}
	result.Stats.LeftBytes = len(left)
	result.Stats.RightBytes = len(right)
	result.Stats.LeftLines = len(a)
	result.Stats.RightLines = len(b)

	for _, s := range steps {
		row := models.Row{Class: s.Class}
		if s.Left >= 0 {
			row.LeftLine = s.Left + 1
			row.Left = a[s.Left]
		}
		if s.Right >= 0 {
			row.RightLine = s.Right + 1
			row.Right = b[s.Right]
		}

		switch s.Class {
		case models.ClassMatch:
			result.Stats.Matched++
		case models.ClassDiff:
			result.Stats.Changed++
			chars := DiffChars(row.Left, row.Right, o.CharUnit, alignOpts)
			row.Chars = &chars
		case models.ClassLeftOnly:
			result.Stats.LeftOnly++
		case models.ClassRightOnly:
			result.Stats.RightOnly++
		}

		result.Rows = append(result.Rows, row)
	}

	usedLeft, usedRight := consumed(steps)
	result.Stats.LeftDropped = len(a) - usedLeft
	result.Stats.RightDropped = len(b) - usedRight

	return result
}
