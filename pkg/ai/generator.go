package ai

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/autorefine/pkg/domain/ai"
)

// UsageRecorder accumulates token spend.
type UsageRecorder interface {
	RecordTokenUsage(model string, inputTokens, outputTokens int) error
}

// GeneratorOptions are the fixed request parameters of a TextGenerator.
type GeneratorOptions struct {
	System      string
	Temperature float32
	MaxTokens   int
}

// DefaultGeneratorOptions mirrors the settings the code roles were tuned with.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		System:      "You are a professional software engineer. Output ONLY valid pure code. Do NOT include markdown or ```.",
		Temperature: 0.2,
		MaxTokens:   2048,
	}
}

// TextGenerator adapts a Provider to the ai.Generator capability.
type TextGenerator struct {
	provider ai.Provider
	opts     GeneratorOptions
	usage    UsageRecorder
	logger   *slog.Logger
}

// Compile-time check that TextGenerator implements ai.Generator
var _ ai.Generator = (*TextGenerator)(nil)

// NewTextGenerator wraps provider. usage and logger may be nil.
func NewTextGenerator(provider ai.Provider, opts GeneratorOptions, usage UsageRecorder, logger *slog.Logger) *TextGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextGenerator{provider: provider, opts: opts, usage: usage, logger: logger}
}

// ProviderID returns the wrapped provider's identity.
func (g *TextGenerator) ProviderID() string {
	return g.provider.ID()
}

// Generate returns the raw completion text. Fences are left for the caller.
func (g *TextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.provider.Complete(ctx, ai.CompletionRequest{
		Prompt:      prompt,
		System:      g.opts.System,
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	if g.usage != nil {
		if err := g.usage.RecordTokenUsage(resp.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens); err != nil {
			g.logger.Warn("failed to record token usage", "error", err)
		}
	}

	return resp.Text, nil
}
