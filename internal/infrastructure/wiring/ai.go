package wiring

import (
	"time"

	"github.com/felixgeelhaar/autorefine/internal/infrastructure/config"
	infraai "github.com/felixgeelhaar/autorefine/pkg/ai"
	domainai "github.com/felixgeelhaar/autorefine/pkg/domain/ai"
)

// evalSystemPrompt replaces the code-only system prompt for scoring calls.
const evalSystemPrompt = "You are a strict reviewer. Output ONLY the requested JSON object."

// LoadAIProvider builds the configured backend behind the retry and timeout
// wrapper.
func LoadAIProvider(cfg config.AIConfig) (domainai.Provider, error) {
	resilienceConfig := infraai.DefaultResilienceConfig()
	if cfg.MaxRetries > 0 {
		resilienceConfig.MaxRetries = cfg.MaxRetries
	}
	if cfg.RetryDelayMs > 0 {
		resilienceConfig.RetryDelay = time.Duration(cfg.RetryDelayMs) * time.Millisecond
	}
	if cfg.TimeoutSec > 0 {
		resilienceConfig.Timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}

	baseProvider, err := infraai.GetDefaultProvider(infraai.ProviderSettings{
		Name:      cfg.Provider,
		Model:     cfg.Model,
		BaseURL:   cfg.BaseURL,
		APIKeyEnv: cfg.APIKeyEnv,
	})
	if err != nil {
		return nil, err
	}

	return infraai.NewResilientProviderWithConfig(baseProvider, resilienceConfig), nil
}

// generatorOptions returns the request settings for code generation and for
// evaluation. Both share temperature and token limits.
func generatorOptions(cfg config.AIConfig) (code, eval infraai.GeneratorOptions) {
	code = infraai.DefaultGeneratorOptions()
	if cfg.SystemPrompt != "" {
		code.System = cfg.SystemPrompt
	}
	if cfg.Temperature > 0 {
		code.Temperature = cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		code.MaxTokens = cfg.MaxTokens
	}
	eval = code
	eval.System = evalSystemPrompt
	return code, eval
}
