package compare

import "github.com/sdejongh/sidediff/pkg/models"

// LegacyTruncation keeps the historical termination rule of Align: the walk
// stops at the end of the shorter sequence and the remaining tail of the
// longer one is never emitted. AlignOptions.DrainTails overrides it.
const LegacyTruncation = true

// AlignOptions tunes the row synchronizer
type AlignOptions struct {
	// DrainTails emits the unreached tail of the longer sequence as
	// left-only or right-only steps instead of dropping it.
	DrainTails bool
}

// Step is one aligned position. Left and Right are indexes into the two
// sequences, -1 when the side is absent.
type Step struct {
	Class models.Class
	Left  int
	Right int
}

// Align walks a and b with one cursor each and pairs elements using their
// shared/unique classification:
//
//	shared, shared  -> match       advance both
//	unique, unique  -> diff        advance both
//	unique, shared  -> left-only   advance left
//	shared, unique  -> right-only  advance right
//
// Every step advances at least one cursor, so the walk is bounded by
// len(a)+len(b) steps.
func Align[T comparable](a, b []T, opts AlignOptions) []Step {
	sharedA, sharedB := Classify(a, b)

	steps := make([]Step, 0, max(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case sharedA[i] && sharedB[j]:
			steps = append(steps, Step{Class: models.ClassMatch, Left: i, Right: j})
			i++
			j++
		case !sharedA[i] && !sharedB[j]:
			steps = append(steps, Step{Class: models.ClassDiff, Left: i, Right: j})
			i++
			j++
		case !sharedA[i]:
			steps = append(steps, Step{Class: models.ClassLeftOnly, Left: i, Right: -1})
			i++
		default:
			steps = append(steps, Step{Class: models.ClassRightOnly, Left: -1, Right: j})
			j++
		}
	}

	if opts.DrainTails {
		for ; i < len(a); i++ {
			steps = append(steps, Step{Class: models.ClassLeftOnly, Left: i, Right: -1})
		}
		for ; j < len(b); j++ {
			steps = append(steps, Step{Class: models.ClassRightOnly, Left: -1, Right: j})
		}
	}

	return steps
}

// consumed returns how many elements of each side the steps reached
func consumed(steps []Step) (left, right int) {
	for _, s := range steps {
		if s.Left >= 0 {
			left = s.Left + 1
		}
		if s.Right >= 0 {
			right = s.Right + 1
		}
	}
	return left, right
}
