package watch_test

import (
	"testing"

	"github.com/felixgeelhaar/autorefine/internal/infrastructure/watch"
)

func TestPatternFilter_IncludeOnly(t *testing.T) {
	f := watch.NewPatternFilter([]string{"*.py", "*.html"}, nil)

	tests := []struct {
		path  string
		match bool
	}{
		{"webapp/main.py", true},
		{"webapp/templates/index.html", true},
		{"README.md", false},
		{"webapp/static/copy.js", false},
	}

	for _, tt := range tests {
		if got := f.Matches(tt.path); got != tt.match {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.match)
		}
	}
}

func TestPatternFilter_ExcludeOnly(t *testing.T) {
	f := watch.NewPatternFilter(nil, []string{"*.tmp", "*.log"})

	tests := []struct {
		path  string
		match bool
	}{
		{"webapp/main.py", true},
		{"output.tmp", false},
		{"logs/debug.log", false},
	}

	for _, tt := range tests {
		if got := f.Matches(tt.path); got != tt.match {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.match)
		}
	}
}

func TestTrackedFilter(t *testing.T) {
	f := watch.TrackedFilter([]string{"webapp/main.py", "webapp/templates/index.html"})

	tests := []struct {
		path  string
		match bool
	}{
		{"webapp/main.py", true},
		{"./webapp/main.py", true},
		{"webapp/templates/index.html", true},
		{"webapp/templates/paper.html", false},
		{"webapp/.main.py.12345", false},
		{"main.py", false},
		{"webapp/main.py.swp", false},
	}

	for _, tt := range tests {
		if got := f.Matches(tt.path); got != tt.match {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.match)
		}
	}
}

func TestPatternFilter_NoPatterns(t *testing.T) {
	f := watch.NewPatternFilter(nil, nil)

	if !f.Matches("anything.txt") {
		t.Error("empty filter should match everything")
	}
}
