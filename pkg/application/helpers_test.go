package application_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/felixgeelhaar/autorefine/pkg/domain"
	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/autorefine/pkg/domain/evaluation"
	"github.com/felixgeelhaar/autorefine/pkg/domain/refinement"
)

func testLayout(t *testing.T) *artifact.Layout {
	t.Helper()
	l, err := artifact.NewLayout([]artifact.FileSpec{
		{Key: "main", Path: "webapp/main.py", Prompt: "write main.py", Rubric: "- Must mount /static"},
		{Key: "index", Path: "webapp/templates/index.html", Description: "landing page"},
	})
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	return l
}

// memStore is an in-memory artifact.Store with the same guard semantics as
// the real backends.
type memStore struct {
	mu       sync.Mutex
	layout   *artifact.Layout
	files    artifact.Artifact
	backup   artifact.Artifact
	absent   map[artifact.Key]bool
	scaffold map[string]string
	backups  int
	restores int
	writeErr error
}

func newMemStore(layout *artifact.Layout, files artifact.Artifact) *memStore {
	if files == nil {
		files = artifact.Artifact{}
	}
	return &memStore{layout: layout, files: files.Clone(), scaffold: map[string]string{}}
}

func (s *memStore) Keys() []artifact.Key { return s.layout.Keys() }

func (s *memStore) Read(ctx context.Context, key artifact.Key) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[key]
}

func (s *memStore) Write(ctx context.Context, key artifact.Key, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.files[key] = text
	return nil
}

func (s *memStore) SafeWrite(ctx context.Context, key artifact.Key, oldText, newText string) (bool, error) {
	if err := artifact.CheckReplacement(oldText, newText, artifact.DefaultCorruptionGuardRatio); err != nil {
		return false, nil
	}
	if err := s.Write(ctx, key, newText); err != nil {
		return false, err
	}
	return true, nil
}

func (s *memStore) Backup(ctx context.Context, keys []artifact.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backup = artifact.Artifact{}
	s.absent = map[artifact.Key]bool{}
	for _, k := range keys {
		if v, ok := s.files[k]; ok {
			s.backup[k] = v
		} else {
			s.absent[k] = true
		}
	}
	s.backups++
	return nil
}

func (s *memStore) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backup == nil {
		return artifact.ErrNoBackup
	}
	for k, v := range s.backup {
		s.files[k] = v
	}
	for k := range s.absent {
		delete(s.files, k)
	}
	s.restores++
	return nil
}

func (s *memStore) WriteScaffold(ctx context.Context, rel, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scaffold[rel] = content
	return nil
}

func (s *memStore) snapshot() artifact.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Clone()
}

// scriptedScorer returns the scripted aggregates in order, repeating the last.
// UnknownScore entries yield the sentinel report.
type scriptedScorer struct {
	scores []float64
	seen   []artifact.Artifact
}

func (s *scriptedScorer) Evaluate(ctx context.Context, a artifact.Artifact) evaluation.Report {
	i := len(s.seen)
	if i >= len(s.scores) {
		i = len(s.scores) - 1
	}
	s.seen = append(s.seen, a.Clone())
	if s.scores[i] == evaluation.UnknownScore {
		return evaluation.Unknown()
	}
	return evaluation.Report{
		SubScores: map[artifact.Key]float64{"main": s.scores[i] / 2, "index": s.scores[i] / 2},
		Warnings:  []string{"tighten error handling"},
		Aggregate: s.scores[i],
	}
}

func (s *scriptedScorer) calls() int { return len(s.seen) }

// scriptedGenerator answers each call with the next response.
type scriptedGenerator struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	if len(g.responses) == 0 {
		return "", nil
	}
	i := len(g.prompts) - 1
	if i >= len(g.responses) {
		i = len(g.responses) - 1
	}
	return g.responses[i], nil
}

// routedGenerator answers evaluation and patch prompts differently.
type routedGenerator struct {
	eval  string
	patch string
}

func (g *routedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "Code Evaluation Agent") {
		return g.eval, nil
	}
	return g.patch, nil
}

type auditSpy struct {
	mu      sync.Mutex
	actions []string
	runIDs  []string
}

var _ domain.RunAuditLogger = (*auditSpy)(nil)

func (a *auditSpy) Log(action, actor string, metadata map[string]interface{}) error {
	return a.LogRun("", action, actor, metadata)
}

func (a *auditSpy) LogRun(runID, action, actor string, metadata map[string]interface{}) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
	a.runIDs = append(a.runIDs, runID)
	return nil
}

type runSpy struct {
	results []*refinement.Result
}

func (r *runSpy) AppendRun(result *refinement.Result) error {
	r.results = append(r.results, result)
	return nil
}

func patchFor(blocks map[string]string) string {
	var b strings.Builder
	b.WriteString("Here are the fixes.\n")
	for label, body := range blocks {
		b.WriteString("---" + label + "---\n" + body + "\n")
	}
	return b.String()
}
