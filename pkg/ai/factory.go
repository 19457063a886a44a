package ai

import (
	"fmt"
	"net/http"
	"os"

	"github.com/felixgeelhaar/autorefine/pkg/domain/ai"
)

// ProviderSettings selects and configures a backend.
type ProviderSettings struct {
	Name      string
	Model     string
	BaseURL   string
	APIKeyEnv string
	Client    *http.Client
}

// DefaultAPIKeyEnv returns the conventional API key variable for a provider.
func DefaultAPIKeyEnv(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "dashscope":
		return "DASHSCOPE_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	}
	return ""
}

const dashscopeBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

func NewProvider(s ProviderSettings) (ai.Provider, error) {
	keyEnv := s.APIKeyEnv
	if keyEnv == "" {
		keyEnv = DefaultAPIKeyEnv(s.Name)
	}
	apiKey := ""
	if keyEnv != "" {
		apiKey = os.Getenv(keyEnv)
	}

	switch s.Name {
	case "ollama", "":
		model := s.Model
		if model == "" {
			model = "llama3"
		}
		return NewOllamaProviderWithClient(model, s.BaseURL, s.Client), nil
	case "mock":
		return &MockProvider{Model: s.Model}, nil
	case "openai":
		return NewOpenAIProviderWithClient(s.Model, apiKey, s.BaseURL, s.Client), nil
	case "dashscope":
		base := s.BaseURL
		if base == "" {
			base = dashscopeBaseURL
		}
		model := s.Model
		if model == "" {
			model = "qwen-plus"
		}
		return NewOpenAIProviderWithClient(model, apiKey, base, s.Client), nil
	case "anthropic":
		return NewAnthropicProviderWithClient(s.Model, apiKey, s.BaseURL, s.Client), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", s.Name)
	}
}

// GetDefaultProvider applies AUTOREFINE_AI_PROVIDER / AUTOREFINE_AI_MODEL
// overrides before building the provider.
func GetDefaultProvider(s ProviderSettings) (ai.Provider, error) {
	if envProvider := os.Getenv("AUTOREFINE_AI_PROVIDER"); envProvider != "" {
		s.Name = envProvider
	}
	if envModel := os.Getenv("AUTOREFINE_AI_MODEL"); envModel != "" {
		s.Model = envModel
	}
	return NewProvider(s)
}
