package batch

import (
	"fmt"
	"path"
	"strings"
)

// Excluder filters relative paths by glob patterns.
// Patterns support:
//   - Basename globs: *.tmp, *.log
//   - Directory patterns: .git/, node_modules/
//   - Path globs, anchored at any directory: build/*, docs/*.md
//   - Any-depth patterns: **/testdata, **/*.min.js
type Excluder struct {
	patterns []string
}

// NewExcluder validates patterns and returns an Excluder
func NewExcluder(patterns []string) (*Excluder, error) {
	var kept []string
	for _, p := range patterns {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
		if p == "" {
			continue
		}
		probe := strings.TrimSuffix(strings.ReplaceAll(p, "**/", ""), "/")
		if _, err := path.Match(probe, ""); err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		kept = append(kept, p)
	}
	return &Excluder{patterns: kept}, nil
}

// Match reports whether the slash-separated relative path is excluded
func (e *Excluder) Match(rel string) bool {
	if e == nil {
		return false
	}
	base := path.Base(rel)

	for _, p := range e.patterns {
		switch {
		case strings.HasSuffix(p, "/"):
			if inDir(rel, strings.TrimSuffix(p, "/")) {
				return true
			}
		case strings.HasPrefix(p, "**/"):
			if anyDepth(rel, strings.TrimPrefix(p, "**/")) {
				return true
			}
		case strings.Contains(p, "/"):
			if trailing(rel, p) {
				return true
			}
		default:
			if glob(p, base) {
				return true
			}
		}
	}
	return false
}

// inDir reports whether any directory component of rel is named dir
func inDir(rel, dir string) bool {
	return strings.HasPrefix(rel, dir+"/") ||
		rel == dir ||
		strings.Contains(rel, "/"+dir+"/")
}

// trailing matches pattern against rel and each of its trailing sub-paths
func trailing(rel, pattern string) bool {
	parts := strings.Split(rel, "/")
	for i := range parts {
		if glob(pattern, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

// anyDepth is trailing plus a match on any single component
func anyDepth(rel, pattern string) bool {
	if trailing(rel, pattern) {
		return true
	}
	for _, part := range strings.Split(rel, "/") {
		if glob(pattern, part) {
			return true
		}
	}
	return false
}

func glob(pattern, name string) bool {
	matched, _ := path.Match(pattern, name)
	return matched
}
