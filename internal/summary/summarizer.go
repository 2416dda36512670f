package summary

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"geosummary/internal/audit"
	"geosummary/internal/config"
	"geosummary/internal/domain"
	"geosummary/internal/integrations/llm"
	"geosummary/internal/reply"
	"geosummary/internal/util/jsonutil"
)

// MethodError marks a result that is a fixed failure message rather than
// text recovered from a reply.
const MethodError = "error"

// Shown when the generator call fails.
const (
	UpstreamSummary         = "An error occurred while generating the AI summary. Please check the API key and try again."
	UpstreamRecommendations = "AI recommendations are not available. Review the analysis results manually and prepare an optimization plan."
)

// Params are the generation parameters and payload selection of one Summarizer.
type Params struct {
	MaxTokens   int
	Temperature float64
	JSONMode    bool
	// PayloadMode is config.PayloadCompact or config.PayloadStructured.
	PayloadMode string
	// TokenBudget caps the estimated size of a structured payload; larger
	// payloads are replaced by the compact one.
	TokenBudget int
}

func DefaultParams() Params {
	return Params{
		MaxTokens:   2000,
		Temperature: 0.7,
		PayloadMode: config.PayloadCompact,
		TokenBudget: 4000,
	}
}

// Summarizer runs the whole pipeline for one audit batch: payload, prompt,
// one generator call, reply parsing.
type Summarizer struct {
	gen       llm.Generator
	compactor *audit.Compactor
	extractor *audit.Extractor
	prompts   llm.PromptBuilder
	parser    *reply.Parser
	params    Params
	logger    *zap.Logger
}

func New(gen llm.Generator, prompts llm.PromptBuilder, parser *reply.Parser, params Params, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if parser == nil {
		parser = reply.NewParser(logger)
	}
	return &Summarizer{
		gen:       gen,
		compactor: audit.NewCompactor(logger),
		extractor: audit.NewExtractor(logger),
		prompts:   prompts,
		parser:    parser,
		params:    params,
		logger:    logger,
	}
}

// Summarize never fails: a generator failure yields the fixed apology pair
// and a malformed reply is repaired by the parser.
func (s *Summarizer) Summarize(ctx context.Context, batch domain.Batch) domain.ParsedResult {
	log := s.logger.With(zap.String("request_id", uuid.NewString()))
	ctx = llm.ContextWithLogger(ctx, log)

	prompt, err := s.prompts.Build(s.payload(batch, log))
	if err != nil {
		log.Warn("payload not serializable, sending error marker", zap.Error(err))
		prompt, err = s.prompts.Build(domain.Compacted{Err: fmt.Errorf("payload: %w", err)})
	}
	if err != nil {
		log.Error("building prompt", zap.Error(err))
		return upstreamFailure()
	}

	resp, err := s.gen.Generate(ctx, llm.Request{
		System:      prompt.System,
		User:        prompt.User,
		MaxTokens:   s.params.MaxTokens,
		Temperature: s.params.Temperature,
		JSONMode:    s.params.JSONMode,
	})
	if err != nil {
		var upErr *llm.UpstreamError
		if errors.As(err, &upErr) {
			log.Error("generating summary", zap.String("provider", upErr.Provider), zap.Error(upErr.Err))
		} else {
			log.Error("generating summary", zap.Error(err))
		}
		return upstreamFailure()
	}
	return s.parser.WithLogger(log).Parse(resp.Text)
}

// payload picks the structured projection when configured and within the
// token budget, else the compact one.
func (s *Summarizer) payload(batch domain.Batch, log *zap.Logger) any {
	if s.params.PayloadMode == config.PayloadStructured {
		ex := s.extractor.Extract(batch, "")
		data, err := jsonutil.MarshalNoEscape(ex)
		if err == nil {
			tokens := llm.EstimateTokens(string(data))
			if s.params.TokenBudget <= 0 || tokens <= s.params.TokenBudget {
				log.Debug("using structured payload", zap.Int("estimated_tokens", tokens))
				return ex
			}
			log.Info("structured payload over budget, using compact payload",
				zap.Int("estimated_tokens", tokens),
				zap.Int("budget", s.params.TokenBudget),
			)
		} else {
			log.Warn("marshaling structured payload", zap.Error(err))
		}
	}
	c := s.compactor.Compact(batch)
	if !c.OK() {
		log.Warn("audit batch has no usable records", zap.Error(c.Err))
	}
	return c
}

func upstreamFailure() domain.ParsedResult {
	return domain.ParsedResult{
		Summary:         UpstreamSummary,
		Recommendations: UpstreamRecommendations,
		Method:          MethodError,
	}
}
