package compare

// Classify marks every element of a and b as shared when its value occurs
// anywhere in the other sequence.
//
// Matching is by value presence only. Position and multiplicity are ignored:
// a value repeated three times in a and present once in b is shared at all
// three positions.
func Classify[T comparable](a, b []T) (sharedA, sharedB []bool) {
	return membership(a, presence(b)), membership(b, presence(a))
}

func presence[T comparable](s []T) map[T]struct{} {
	set := make(map[T]struct{}, len(s))
	for _, v := range s {
		set[v] = struct{}{}
	}
	return set
}

func membership[T comparable](s []T, set map[T]struct{}) []bool {
	shared := make([]bool, len(s))
	for i, v := range s {
		_, shared[i] = set[v]
	}
	return shared
}
