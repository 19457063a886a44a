package application_test

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/autorefine/pkg/application"
	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/autorefine/pkg/domain/evaluation"
	"github.com/google/go-cmp/cmp"
)

func TestParsePatch(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want application.Patch
	}{
		{
			name: "keys",
			in:   "---main---\nprint(1)\n---index---\n<p>hi</p>\n",
			want: application.Patch{"main": "print(1)", "index": "<p>hi</p>"},
		},
		{
			name: "base names and padded markers",
			in:   "  --- main.py ---  \nprint(2)\n---index.html---\n<p/>",
			want: application.Patch{"main": "print(2)", "index": "<p/>"},
		},
		{
			name: "full path label",
			in:   "---webapp/main.py---\nprint(3)",
			want: application.Patch{"main": "print(3)"},
		},
		{
			name: "partial patch",
			in:   "---index---\n<div></div>",
			want: application.Patch{"index": "<div></div>"},
		},
		{
			name: "unknown label dropped",
			in:   "---style.css---\nbody{}\n---main---\nprint(4)",
			want: application.Patch{"main": "print(4)"},
		},
		{
			name: "preamble ignored",
			in:   "Sure! Here are the files.\n---main---\nprint(5)",
			want: application.Patch{"main": "print(5)"},
		},
		{
			name: "last duplicate wins",
			in:   "---main---\nold\n---main---\nnew",
			want: application.Patch{"main": "new"},
		},
		{
			name: "fences stripped",
			in:   "---main---\n```python\nprint(6)\n```\n---index---\n```html\n<p/>\n```",
			want: application.Patch{"main": "print(6)", "index": "<p/>"},
		},
		{
			name: "dash rule is content",
			in:   "---main---\na = 1\n---\nb = 2",
			want: application.Patch{"main": "a = 1\n---\nb = 2"},
		},
		{
			name: "empty block dropped",
			in:   "---main---\n\n---index---\n<p/>",
			want: application.Patch{"index": "<p/>"},
		},
		{
			name: "no markers",
			in:   "I made no changes.",
			want: application.Patch{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := application.ParsePatch(tt.in, testLayout(t))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePatch mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePatch_CRLF(t *testing.T) {
	got := application.ParsePatch("---main---\r\nprint(1)\r\n", testLayout(t))
	if got["main"] != "print(1)" {
		t.Errorf("main = %q", got["main"])
	}
}

func TestPatch_KeysFollowLayoutOrder(t *testing.T) {
	layout := testLayout(t)
	p := application.Patch{"index": "x", "main": "y"}
	if diff := cmp.Diff([]artifact.Key{"main", "index"}, p.Keys(layout)); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
}

func TestPatchPrompt(t *testing.T) {
	layout := testLayout(t)
	report := evaluation.Report{Warnings: []string{"missing mount"}, Aggregate: 12}
	prompt := application.PatchPrompt(report, artifact.Artifact{"main": "MAIN", "index": "INDEX"}, layout)

	for _, want := range []string{
		"missing mount",
		"\"overall_score\": 12",
		"=== webapp/main.py ===\nMAIN",
		"NEVER return empty files.",
		"---main---\n(full code)\n---index---\n(full code)",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
