package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/autorefine/pkg/application"
	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/autorefine/pkg/domain/evaluation"
	"github.com/google/go-cmp/cmp"
)

func newEvaluator(t *testing.T, gen *scriptedGenerator) *application.Evaluator {
	t.Helper()
	layout := testLayout(t)
	e, err := application.NewEvaluator(gen, layout, evaluation.DefaultLimits(layout.Keys()), nil)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	return e
}

func TestEvaluator_ParsesReportFromProse(t *testing.T) {
	payload := `{"score_main": 8, "score_index": 7, "fatal_errors": [], "warnings": ["no static mount"], "suggestions": ["add tests"], "overall_score": 15}`
	tests := []struct {
		name     string
		response string
	}{
		{"fenced with trailing prose", "Here is my assessment:\n```json\n" + payload + "\n```\nLet me know if you need more."},
		{"braces after the object", "Here is the assessment:\n" + payload + "\nTip: render titles with {{ paper.title }} in the template."},
		{"braces before the object", "Templates use {{ paper.title }} and {% for p in papers %}.\n" + payload},
		{"closing brace inside a string", strings.Replace(payload, `"add tests"`, `"close the {% endfor %} block}"`, 1) + " {done}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEvaluator(t, &scriptedGenerator{responses: []string{tt.response}})

			got := e.Evaluate(context.Background(), artifact.Artifact{"main": "print(1)"})
			if got.Aggregate != 15 {
				t.Fatalf("Aggregate = %g, want 15", got.Aggregate)
			}
			want := map[artifact.Key]float64{"main": 8, "index": 7}
			if diff := cmp.Diff(want, got.SubScores); diff != "" {
				t.Errorf("sub-scores mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"no static mount"}, got.Warnings); diff != "" {
				t.Errorf("warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluator_DerivesAggregateFromSubScores(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{`{"score_main": 6, "score_index": 9}`}}
	got := newEvaluator(t, gen).Evaluate(context.Background(), artifact.Artifact{})
	if got.Aggregate != 15 {
		t.Errorf("Aggregate = %g, want 15", got.Aggregate)
	}
}

func TestEvaluator_DegradesToUnknown(t *testing.T) {
	tests := []struct {
		name string
		gen  *scriptedGenerator
	}{
		{"transport error", &scriptedGenerator{err: errors.New("timeout")}},
		{"empty", &scriptedGenerator{responses: []string{""}}},
		{"prose only", &scriptedGenerator{responses: []string{"The code looks fine overall."}}},
		{"broken json", &scriptedGenerator{responses: []string{`{"overall_score": 30,`}}},
		{"sub-score out of range", &scriptedGenerator{responses: []string{`{"score_main": 15, "overall_score": 20}`}}},
		{"overall out of range", &scriptedGenerator{responses: []string{`{"overall_score": 99}`}}},
		{"no scores", &scriptedGenerator{responses: []string{`{"warnings": ["x"]}`}}},
		{"wrong type", &scriptedGenerator{responses: []string{`{"overall_score": "high"}`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newEvaluator(t, tt.gen).Evaluate(context.Background(), artifact.Artifact{})
			if got.Known() {
				t.Errorf("expected unknown report, got %+v", got)
			}
			if got.Aggregate != evaluation.UnknownScore {
				t.Errorf("Aggregate = %g, want sentinel", got.Aggregate)
			}
		})
	}
}

func TestEvaluator_PromptCoversEveryFile(t *testing.T) {
	gen := &scriptedGenerator{}
	e := newEvaluator(t, gen)

	prompt := e.Prompt(artifact.Artifact{"main": "MAIN-BODY", "index": "INDEX-BODY"})
	for _, want := range []string{
		"=== webapp/main.py ===\nMAIN-BODY",
		"=== webapp/templates/index.html ===\nINDEX-BODY",
		"- Must mount /static",
		"landing page",
		`"score_main": <0-10>`,
		`"overall_score": <0-20>`,
		"Return ONLY valid JSON.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
