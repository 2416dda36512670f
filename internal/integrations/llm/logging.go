package llm

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type loggerKey struct{}

// ContextWithLogger attaches a request-scoped logger that WithLogging uses
// instead of its own.
func ContextWithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func loggerFrom(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return fallback
}

// WithLogging wraps a generator with request/response logging. Token usage
// is also summed over the wrapper's lifetime, which for the watch loop spans
// every scheduled run.
func WithLogging(next Generator, logger *zap.Logger) Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logging{next: next, logger: logger}
}

type logging struct {
	next   Generator
	logger *zap.Logger

	mu    sync.Mutex
	total Usage
}

func (l *logging) Name() string { return l.next.Name() }

func (l *logging) Generate(ctx context.Context, req Request) (Response, error) {
	log := loggerFrom(ctx, l.logger).With(zap.String("provider", l.next.Name()))
	log.Info("llm request",
		zap.Int("prompt_bytes", len(req.System)+len(req.User)),
		zap.Int("estimated_tokens", EstimateTokens(req.System)+EstimateTokens(req.User)),
		zap.Int("max_tokens", req.MaxTokens),
		zap.Float64("temperature", req.Temperature),
		zap.Bool("json_mode", req.JSONMode),
	)
	start := time.Now()
	resp, err := l.next.Generate(ctx, req)
	if err != nil {
		log.Error("llm error", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return resp, err
	}
	l.mu.Lock()
	l.total.Add(resp.Usage)
	total := l.total
	l.mu.Unlock()

	log.Info("llm response",
		zap.String("model", resp.Model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("reply_bytes", len(resp.Text)),
		zap.Int64("tokens_in", resp.Usage.InputTokens),
		zap.Int64("tokens_out", resp.Usage.OutputTokens),
		zap.Int64("cache_read", resp.Usage.CacheReadInputTokens),
		zap.Int64("tokens_total", resp.Usage.TotalTokens()),
		zap.Int64("session_tokens", total.TotalTokens()),
	)
	return resp, nil
}
