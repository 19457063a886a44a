package ai

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/autorefine/pkg/domain/ai"
)

// MockProvider replays canned responses in order and then repeats the last
// one. With no responses it returns empty text. It never touches the network.
type MockProvider struct {
	Model     string
	Responses []string

	mu      sync.Mutex
	calls   int
	prompts []string
}

func (p *MockProvider) ID() string {
	return "mock:" + p.Model
}

func (p *MockProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.prompts = append(p.prompts, req.Prompt)
	text := ""
	if n := len(p.Responses); n > 0 {
		i := p.calls
		if i >= n {
			i = n - 1
		}
		text = p.Responses[i]
	}
	p.calls++

	return &ai.CompletionResponse{
		Text:  text,
		Model: p.Model,
		Usage: ai.TokenUsage{
			InputTokens:  len(req.Prompt) / 4,
			OutputTokens: len(text) / 4,
		},
	}, nil
}

// Calls returns how many completions were requested.
func (p *MockProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Prompts returns the prompts received so far.
func (p *MockProvider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.prompts))
	copy(out, p.prompts)
	return out
}
