package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/autorefine/pkg/domain/ai"
	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/autorefine/pkg/domain/evaluation"
	"github.com/xeipuuv/gojsonschema"
)

// Scorer assesses an artifact. Implementations never fail; an assessment
// that cannot be obtained is reported as evaluation.Unknown().
type Scorer interface {
	Evaluate(ctx context.Context, a artifact.Artifact) evaluation.Report
}

// Evaluator asks the generation service to grade every tracked file against
// its rubric and decodes the JSON verdict.
type Evaluator struct {
	gen    ai.Generator
	layout *artifact.Layout
	limits evaluation.Limits
	schema *gojsonschema.Schema
	logger *slog.Logger
}

// Compile-time check that Evaluator implements Scorer
var _ Scorer = (*Evaluator)(nil)

func NewEvaluator(gen ai.Generator, layout *artifact.Layout, limits evaluation.Limits, logger *slog.Logger) (*Evaluator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if limits.MaxSubScore <= 0 || limits.MaxScore <= 0 {
		limits = evaluation.DefaultLimits(layout.Keys())
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(evaluation.Schema(layout.Keys(), limits)))
	if err != nil {
		return nil, fmt.Errorf("compile evaluation schema: %w", err)
	}
	return &Evaluator{
		gen:    gen,
		layout: layout,
		limits: limits,
		schema: schema,
		logger: logger,
	}, nil
}

func (e *Evaluator) Evaluate(ctx context.Context, a artifact.Artifact) evaluation.Report {
	raw, err := e.gen.Generate(ctx, e.Prompt(a))
	if err != nil {
		e.logger.Warn("evaluation request failed", "error", err)
		return evaluation.Unknown()
	}

	payload := extractJSONObject(raw)
	if payload == "" {
		e.logger.Warn("evaluation response contains no JSON object", "length", len(raw))
		return evaluation.Unknown()
	}

	result, err := e.schema.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		e.logger.Warn("evaluation response is not valid JSON", "error", err)
		return evaluation.Unknown()
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		e.logger.Warn("evaluation response failed schema validation", "errors", strings.Join(details, "; "))
		return evaluation.Unknown()
	}

	report, err := evaluation.Decode([]byte(payload), e.layout.Keys())
	if err != nil {
		e.logger.Warn("evaluation response could not be decoded", "error", err)
		return evaluation.Unknown()
	}
	return report
}

// Prompt renders the assessment prompt for a.
func (e *Evaluator) Prompt(a artifact.Artifact) string {
	files := e.layout.Files()

	var b strings.Builder
	b.WriteString("You are a strict Code Evaluation Agent.\n\n")
	fmt.Fprintf(&b, "Your task is to evaluate a generated project of %d files.\n\n", len(files))
	b.WriteString("### Evaluation Rules\n\n")
	for i, f := range files {
		fmt.Fprintf(&b, "%d. %s\n", i+1, f.Path)
		if rubric := strings.TrimSpace(f.Rubric); rubric != "" {
			b.WriteString(rubric)
			b.WriteString("\n")
		} else if f.Description != "" {
			fmt.Fprintf(&b, "- Must fulfil its purpose: %s\n", f.Description)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%d. Overall\n", len(files)+1)
	b.WriteString("- Project should be logically runnable\n")
	b.WriteString("- Files must be consistent with each other\n\n")

	b.WriteString("### Output Format (pure JSON, no comments, no explanation):\n\n{\n")
	for _, f := range files {
		fmt.Fprintf(&b, "  \"score_%s\": <0-%g>,\n", f.Key, e.limits.MaxSubScore)
	}
	b.WriteString("  \"fatal_errors\": [],\n  \"warnings\": [],\n  \"suggestions\": [],\n")
	fmt.Fprintf(&b, "  \"overall_score\": <0-%g>\n}\n\n", e.limits.MaxScore)

	b.WriteString("### Code to Evaluate:\n\n")
	for _, f := range files {
		fmt.Fprintf(&b, "=== %s ===\n%s\n\n", f.Path, a[f.Key])
	}
	b.WriteString("Return ONLY valid JSON.\n")
	return b.String()
}

// extractJSONObject returns the first complete JSON object embedded in prose
// or a fenced block, ignoring any text after it. It returns "" when there is
// none.
func extractJSONObject(text string) string {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		var obj map[string]json.RawMessage
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		if err := dec.Decode(&obj); err != nil || len(obj) == 0 {
			continue
		}
		return text[i : i+int(dec.InputOffset())]
	}
	return ""
}
