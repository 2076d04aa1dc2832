package compare

import (
	"unicode/utf8"

	"github.com/sdejongh/sidediff/pkg/models"
)

// CharUnit selects how a line is split for the character pass
type CharUnit string

const (
	// CharUnitByte splits lines into single bytes. Multi-byte UTF-8
	// sequences may end up in different runs.
	CharUnitByte CharUnit = "byte"
	// CharUnitRune splits lines into Unicode scalar values
	CharUnitRune CharUnit = "rune"
)

// Valid reports whether u is a known unit
func (u CharUnit) Valid() bool {
	return u == CharUnitByte || u == CharUnitRune
}

// DiffChars classifies the characters of two differing lines. It reuses
// Classify and Align at character granularity and folds the steps into one
// stream per side; a diff step is terminal here.
func DiffChars(left, right string, unit CharUnit, opts AlignOptions) models.CharDiff {
	a, b := splitUnits(left, unit), splitUnits(right, unit)

	out := models.CharDiff{
		Left:  make(models.CharStream, 0, len(a)),
		Right: make(models.CharStream, 0, len(b)),
	}
	for _, s := range Align(a, b, opts) {
		switch s.Class {
		case models.ClassMatch:
			out.Left = append(out.Left, models.CharEntry{Text: a[s.Left], Class: models.ClassMatch})
			out.Right = append(out.Right, models.CharEntry{Text: b[s.Right], Class: models.ClassMatch})
		case models.ClassDiff:
			out.Left = append(out.Left, models.CharEntry{Text: a[s.Left], Class: models.ClassDiff})
			out.Right = append(out.Right, models.CharEntry{Text: b[s.Right], Class: models.ClassDiff})
		case models.ClassLeftOnly:
			out.Left = append(out.Left, models.CharEntry{Text: a[s.Left], Class: models.ClassExtra})
		case models.ClassRightOnly:
			out.Right = append(out.Right, models.CharEntry{Text: b[s.Right], Class: models.ClassExtra})
		}
	}
	return out
}

func splitUnits(s string, unit CharUnit) []string {
	if unit == CharUnitRune {
		units := make([]string, 0, utf8.RuneCountInString(s))
		for len(s) > 0 {
			_, size := utf8.DecodeRuneInString(s)
			units = append(units, s[:size])
			s = s[size:]
		}
		return units
	}

	units := make([]string, len(s))
	for i := range len(s) {
		units[i] = s[i : i+1]
	}
	return units
}

// Runs merges consecutive entries of the same class
func Runs(stream models.CharStream) []models.Run {
	var runs []models.Run
	start := 0
	for i := 1; i <= len(stream); i++ {
		if i < len(stream) && stream[i].Class == stream[start].Class {
			continue
		}
		run := models.Run{Class: stream[start].Class}
		run.Text = stream[start:i].Text()
		runs = append(runs, run)
		start = i
	}
	return runs
}
