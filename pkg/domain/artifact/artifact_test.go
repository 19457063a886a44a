package artifact

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func webFiles() []FileSpec {
	return []FileSpec{
		{Key: "main", Path: "webapp/main.py"},
		{Key: "index", Path: "webapp/templates/index.html"},
		{Key: "js", Path: "webapp/static/copy.js"},
	}
}

func TestNewLayout_PreservesOrder(t *testing.T) {
	l, err := NewLayout(webFiles())
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	if diff := cmp.Diff([]Key{"main", "index", "js"}, l.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if p, ok := l.Path("index"); !ok || p != "webapp/templates/index.html" {
		t.Errorf("Path(index) = %q, %v", p, ok)
	}
	if l.Has("paper") {
		t.Error("paper should not be tracked")
	}
}

func TestNewLayout_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		files []FileSpec
	}{
		{"empty", nil},
		{"blank key", []FileSpec{{Key: " ", Path: "a.py"}}},
		{"key with space", []FileSpec{{Key: "my file", Path: "a.py"}}},
		{"absolute path", []FileSpec{{Key: "a", Path: "/etc/passwd"}}},
		{"escaping path", []FileSpec{{Key: "a", Path: "../a.py"}}},
		{"missing path", []FileSpec{{Key: "a"}}},
		{"duplicate key", []FileSpec{{Key: "a", Path: "a.py"}, {Key: "a", Path: "b.py"}}},
		{"duplicate path", []FileSpec{{Key: "a", Path: "x/a.py"}, {Key: "b", Path: "x/./a.py"}}},
		{"flattened collision", []FileSpec{{Key: "a", Path: "x/y.py"}, {Key: "b", Path: "x_y.py"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLayout(tt.files); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLayout_Resolve(t *testing.T) {
	l, err := NewLayout(webFiles())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		label string
		want  Key
		ok    bool
	}{
		{"main", "main", true},
		{" main ", "main", true},
		{"main.py", "main", true},
		{"copy.js", "js", true},
		{"webapp/templates/index.html", "index", true},
		{"paper.html", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := l.Resolve(tt.label)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.label, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFlatten(t *testing.T) {
	if got := Flatten("webapp/templates/index.html"); got != "webapp_templates_index.html" {
		t.Errorf("Flatten = %q", got)
	}
	if got := Flatten("./main.py"); got != "main.py" {
		t.Errorf("Flatten = %q", got)
	}
}

func TestArtifact_CloneIsIndependent(t *testing.T) {
	a := Artifact{"main": "v1", "index": "<html>"}
	c := a.Clone()
	c["main"] = "v2"

	if a["main"] != "v1" {
		t.Error("clone shares storage with original")
	}
	if diff := cmp.Diff([]Key{"index", "main"}, a.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

type mapStore struct {
	keys []Key
	data map[Key]string
}

func (s mapStore) Read(_ context.Context, k Key) string              { return s.data[k] }
func (s mapStore) Write(context.Context, Key, string) error           { return nil }
func (s mapStore) SafeWrite(context.Context, Key, string, string) (bool, error) {
	return true, nil
}
func (s mapStore) Backup(context.Context, []Key) error { return nil }
func (s mapStore) Restore(context.Context) error       { return nil }
func (s mapStore) Keys() []Key                         { return s.keys }

func TestSnapshot_ReadsEveryTrackedKey(t *testing.T) {
	s := mapStore{keys: []Key{"main", "js"}, data: map[Key]string{"main": "print(1)"}}

	got := Snapshot(context.Background(), s)
	want := Artifact{"main": "print(1)", "js": ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}
