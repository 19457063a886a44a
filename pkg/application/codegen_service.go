package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	infraAI "github.com/felixgeelhaar/autorefine/pkg/ai"
	"github.com/felixgeelhaar/autorefine/pkg/domain/ai"
	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/autorefine/pkg/domain/planning"
)

// ScaffoldWriter stores untracked support files such as README or
// requirements lists.
type ScaffoldWriter interface {
	WriteScaffold(ctx context.Context, rel, content string) error
}

// CodeGenService produces the initial workspace: scaffold files verbatim and
// one generation per tracked file.
type CodeGenService struct {
	store    artifact.Store
	scaffold ScaffoldWriter
	gen      ai.Generator
	layout   *artifact.Layout
	files    map[string]string
	logger   *slog.Logger
}

// Compile-time check that CodeGenService implements TaskHandler
var _ TaskHandler = (*CodeGenService)(nil)

func NewCodeGenService(store artifact.Store, scaffold ScaffoldWriter, gen ai.Generator, layout *artifact.Layout, files map[string]string, logger *slog.Logger) *CodeGenService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CodeGenService{
		store:    store,
		scaffold: scaffold,
		gen:      gen,
		layout:   layout,
		files:    files,
		logger:   logger,
	}
}

// InitWorkspace writes the scaffold files in path order.
func (s *CodeGenService) InitWorkspace(ctx context.Context) ([]string, error) {
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if err := s.scaffold.WriteScaffold(ctx, p, s.files[p]); err != nil {
			return nil, fmt.Errorf("write scaffold %s: %w", p, err)
		}
	}
	return paths, nil
}

// GenerateResult lists what a generation pass wrote.
type GenerateResult struct {
	Written []artifact.Key
	Skipped []artifact.Key
}

// Generate asks for every tracked file in layout order. A failed or empty
// generation skips that file only.
func (s *CodeGenService) Generate(ctx context.Context) (GenerateResult, error) {
	var res GenerateResult
	for _, f := range s.layout.Files() {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		raw, err := s.gen.Generate(ctx, generationPrompt(f))
		if err != nil {
			s.logger.Warn("generation failed", "key", f.Key, "error", err)
			res.Skipped = append(res.Skipped, f.Key)
			continue
		}

		ok, err := s.store.SafeWrite(ctx, f.Key, "", infraAI.StripCodeFences(raw))
		if err != nil {
			return res, err
		}
		if !ok {
			res.Skipped = append(res.Skipped, f.Key)
			continue
		}
		res.Written = append(res.Written, f.Key)
	}
	return res, nil
}

func (s *CodeGenService) Handle(ctx context.Context, task planning.Task) (TaskResult, error) {
	switch task.ID {
	case planning.TaskInitWorkspace:
		paths, err := s.InitWorkspace(ctx)
		if err != nil {
			return TaskResult{}, err
		}
		return TaskResult{Status: TaskStatusOK, Files: paths}, nil

	case planning.TaskGenerateArtifact:
		res, err := s.Generate(ctx)
		if err != nil {
			return TaskResult{}, err
		}
		files := make([]string, 0, len(res.Written))
		for _, k := range res.Written {
			p, _ := s.layout.Path(k)
			files = append(files, p)
		}
		out := TaskResult{Status: TaskStatusOK, Files: files}
		if len(res.Skipped) > 0 {
			out.Message = fmt.Sprintf("skipped %v", res.Skipped)
		}
		return out, nil
	}
	return TaskResult{}, ErrUnknownTask
}

func generationPrompt(f artifact.FileSpec) string {
	if f.Prompt != "" {
		return f.Prompt
	}
	return fmt.Sprintf("Create the file %s.\n\nPurpose: %s\n\nOutput only the complete file content.", f.Path, f.Description)
}
