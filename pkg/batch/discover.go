package batch

import (
	"context"
	"sort"

	"github.com/sdejongh/sidediff/pkg/storage"
)

// Discover returns the sorted union of files listed below dir by every
// lister, minus excluded paths. A path present on one side only is kept so
// the runner can report it as missing on the other.
func Discover(ctx context.Context, dir string, exclude *Excluder, listers ...storage.Lister) ([]string, error) {
	seen := make(map[string]struct{})
	for _, l := range listers {
		files, err := l.List(ctx, dir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if exclude.Match(f.Path) {
				continue
			}
			seen[f.Path] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
