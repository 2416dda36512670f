package summary

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"geosummary/internal/config"
	"geosummary/internal/integrations/llm"
	"geosummary/internal/reply"
)

// NewFromConfig wires the configured generator, label sets and parameters.
// A missing API key comes back as llm.ErrMissingCredential.
func NewFromConfig(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Summarizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	gen, err := llm.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []reply.Option{reply.WithLanguage(cfg.ReplyLanguage)}
	if cfg.LabelSetPath != "" {
		sets, err := reply.LoadLabelSets(cfg.LabelSetPath)
		if err != nil {
			return nil, fmt.Errorf("label sets: %w", err)
		}
		opts = append(opts, reply.WithLabelSets(sets))
	}
	parser := reply.NewParser(logger, opts...)

	params := Params{
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
		JSONMode:    cfg.LLMJSONMode,
		PayloadMode: cfg.PayloadMode,
		TokenBudget: cfg.LLMPromptTokenBudget,
	}
	return New(gen, llm.NewPromptBuilder(cfg.ReplyLanguage), parser, params, logger), nil
}
