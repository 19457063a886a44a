package ai_test

import (
	"context"
	"errors"
	"testing"

	infraAI "github.com/felixgeelhaar/autorefine/pkg/ai"
	"github.com/felixgeelhaar/autorefine/pkg/domain/ai"
)

type usageSpy struct {
	model   string
	in, out int
	err     error
}

func (u *usageSpy) RecordTokenUsage(model string, in, out int) error {
	u.model, u.in, u.out = model, in, out
	return u.err
}

type capturingProvider struct {
	req ai.CompletionRequest
	err error
}

func (p *capturingProvider) ID() string { return "capture" }

func (p *capturingProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	p.req = req
	if p.err != nil {
		return nil, p.err
	}
	return &ai.CompletionResponse{
		Text:  "```python\nprint(1)\n```",
		Model: "m1",
		Usage: ai.TokenUsage{InputTokens: 9, OutputTokens: 2},
	}, nil
}

func TestTextGenerator_PassesOptionsAndRecordsUsage(t *testing.T) {
	prov := &capturingProvider{}
	usage := &usageSpy{}
	g := infraAI.NewTextGenerator(prov, infraAI.DefaultGeneratorOptions(), usage, nil)

	out, err := g.Generate(context.Background(), "write main.py")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "```python\nprint(1)\n```" {
		t.Errorf("raw output should be returned unchanged, got %q", out)
	}
	if prov.req.Temperature != 0.2 || prov.req.MaxTokens != 2048 {
		t.Errorf("request = %+v", prov.req)
	}
	if prov.req.System == "" {
		t.Error("expected system prompt")
	}
	if usage.model != "m1" || usage.in != 9 || usage.out != 2 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestTextGenerator_UsageErrorIsNotFatal(t *testing.T) {
	g := infraAI.NewTextGenerator(&capturingProvider{}, infraAI.GeneratorOptions{}, &usageSpy{err: errors.New("disk full")}, nil)
	if _, err := g.Generate(context.Background(), "x"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

func TestTextGenerator_PropagatesProviderError(t *testing.T) {
	g := infraAI.NewTextGenerator(&capturingProvider{err: errors.New("down")}, infraAI.GeneratorOptions{}, nil, nil)
	if _, err := g.Generate(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestMockProvider_ReplaysResponses(t *testing.T) {
	p := &infraAI.MockProvider{Model: "m", Responses: []string{"a", "b"}}
	ctx := context.Background()
	var got []string
	for i := 0; i < 3; i++ {
		resp, err := p.Complete(ctx, ai.CompletionRequest{Prompt: "p"})
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
		got = append(got, resp.Text)
	}
	if got[0] != "a" || got[1] != "b" || got[2] != "b" {
		t.Errorf("got %v", got)
	}
	if p.Calls() != 3 || len(p.Prompts()) != 3 {
		t.Errorf("calls = %d", p.Calls())
	}
}
