package watch

import (
	"path"
	"path/filepath"
)

// PatternFilter filters workspace-relative paths with include/exclude globs.
// Patterns are matched against both the base name and the slash-separated
// relative path.
type PatternFilter struct {
	Include []string
	Exclude []string
}

func NewPatternFilter(include, exclude []string) *PatternFilter {
	return &PatternFilter{
		Include: include,
		Exclude: exclude,
	}
}

// TrackedFilter accepts exactly the given relative paths and rejects hidden
// and editor swap files.
func TrackedFilter(paths []string) *PatternFilter {
	include := make([]string, len(paths))
	for i, p := range paths {
		include[i] = path.Clean(filepath.ToSlash(p))
	}
	return NewPatternFilter(include, []string{".*", "*~", "*.swp"})
}

// Matches reports whether p passes the filter. Excludes win over includes;
// with no include patterns everything not excluded passes.
func (f *PatternFilter) Matches(p string) bool {
	rel := path.Clean(filepath.ToSlash(p))
	base := path.Base(rel)

	for _, pattern := range f.Exclude {
		if matchAny(pattern, base, rel) {
			return false
		}
	}

	if len(f.Include) == 0 {
		return true
	}

	for _, pattern := range f.Include {
		if matchAny(pattern, base, rel) {
			return true
		}
	}
	return false
}

func matchAny(pattern string, candidates ...string) bool {
	for _, c := range candidates {
		if matched, _ := path.Match(pattern, c); matched {
			return true
		}
	}
	return false
}
