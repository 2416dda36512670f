package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"geosummary/internal/config"
	"geosummary/internal/httpx"
)

// NewFromConfig builds the configured provider, sending through the shared
// external HTTP client, wrapped with logging. A missing API key is returned
// as ErrMissingCredential before any network call.
func NewFromConfig(ctx context.Context, cfg config.Config, logger *zap.Logger) (Generator, error) {
	client := httpx.ExternalHTTPClient()

	var (
		g   Generator
		err error
	)
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		g, err = NewOpenAI(cfg.OpenAIAPIKey, cfg.LLMModel, WithHTTPClient(client))
	case config.ProviderAnthropic:
		g, err = NewAnthropic(cfg.AnthropicAPIKey, cfg.LLMModel, WithHTTPClient(client))
	case config.ProviderGemini:
		g, err = NewGemini(ctx, cfg.GeminiAPIKey, cfg.LLMModel, WithHTTPClient(client))
	case config.ProviderStub:
		g = NewStub(DemoReply)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s generator: %w", cfg.LLMProvider, err)
	}
	return WithLogging(g, logger), nil
}
