// Package artifact models the generated file set under refinement.
package artifact

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// Key is a stable logical identifier for a tracked file ("main", "index", ...).
type Key string

// Artifact maps logical keys to file content.
type Artifact map[Key]string

// Clone returns an independent copy.
func (a Artifact) Clone() Artifact {
	out := make(Artifact, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Keys returns the artifact's keys in lexical order.
func (a Artifact) Keys() []Key {
	keys := make([]Key, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// FileSpec describes one tracked file: where it lives and how it is produced
// and judged.
type FileSpec struct {
	Key         Key    `yaml:"key" json:"key"`
	Path        string `yaml:"path" json:"path"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Prompt      string `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	Rubric      string `yaml:"rubric,omitempty" json:"rubric,omitempty"`
}

// FlattenSeparator replaces path separators in backup file names.
const FlattenSeparator = "_"

// Flatten turns a workspace relative path into a single file name.
func Flatten(rel string) string {
	return strings.ReplaceAll(path.Clean(rel), "/", FlattenSeparator)
}

// Layout is the ordered, validated set of tracked files.
type Layout struct {
	files []FileSpec
	index map[Key]int
}

// NewLayout validates the file specs and builds a layout. Keys, paths and
// flattened backup names must all be unique.
func NewLayout(files []FileSpec) (*Layout, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("layout must track at least one file")
	}

	l := &Layout{
		files: make([]FileSpec, 0, len(files)),
		index: make(map[Key]int, len(files)),
	}
	paths := make(map[string]Key, len(files))
	flat := make(map[string]Key, len(files))

	for _, f := range files {
		if strings.TrimSpace(string(f.Key)) == "" {
			return nil, fmt.Errorf("file key cannot be empty")
		}
		if strings.ContainsAny(string(f.Key), " \t\r\n") {
			return nil, fmt.Errorf("file key %q must not contain whitespace", f.Key)
		}
		if f.Path == "" || path.IsAbs(f.Path) || strings.HasPrefix(path.Clean(f.Path), "..") {
			return nil, fmt.Errorf("file %q: path %q must be workspace relative", f.Key, f.Path)
		}
		if _, dup := l.index[f.Key]; dup {
			return nil, fmt.Errorf("duplicate file key %q", f.Key)
		}
		clean := path.Clean(f.Path)
		if other, dup := paths[clean]; dup {
			return nil, fmt.Errorf("files %q and %q share path %q", other, f.Key, clean)
		}
		name := Flatten(clean)
		if other, dup := flat[name]; dup {
			return nil, fmt.Errorf("files %q and %q collide in backup name %q", other, f.Key, name)
		}

		f.Path = clean
		paths[clean] = f.Key
		flat[name] = f.Key
		l.index[f.Key] = len(l.files)
		l.files = append(l.files, f)
	}

	return l, nil
}

// Keys returns the tracked keys in layout order.
func (l *Layout) Keys() []Key {
	keys := make([]Key, len(l.files))
	for i, f := range l.files {
		keys[i] = f.Key
	}
	return keys
}

// Files returns a copy of the file specs in layout order.
func (l *Layout) Files() []FileSpec {
	out := make([]FileSpec, len(l.files))
	copy(out, l.files)
	return out
}

// Spec returns the file spec for key.
func (l *Layout) Spec(key Key) (FileSpec, bool) {
	i, ok := l.index[key]
	if !ok {
		return FileSpec{}, false
	}
	return l.files[i], true
}

// Path returns the workspace relative path for key.
func (l *Layout) Path(key Key) (string, bool) {
	f, ok := l.Spec(key)
	return f.Path, ok
}

// Has reports whether key is tracked.
func (l *Layout) Has(key Key) bool {
	_, ok := l.index[key]
	return ok
}

// Resolve maps a free-text label to a tracked key. The label may be the key
// itself or the base name of the key's path ("main.py" for webapp/main.py).
func (l *Layout) Resolve(label string) (Key, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}
	if l.Has(Key(label)) {
		return Key(label), true
	}
	for _, f := range l.files {
		if path.Base(f.Path) == label || f.Path == label {
			return f.Key, true
		}
	}
	return "", false
}
