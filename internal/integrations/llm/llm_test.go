package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"geosummary/internal/config"
)

func TestStubRecordsRequests(t *testing.T) {
	s := NewStub("reply")
	resp, err := s.Generate(context.Background(), Request{User: "one"})
	require.NoError(t, err)
	assert.Equal(t, "reply", resp.Text)

	_, _ = s.Generate(context.Background(), Request{User: "two"})
	reqs := s.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "two", reqs[1].User)
}

func TestStubFailures(t *testing.T) {
	s := &Stub{Err: errors.New("quota")}
	_, err := s.Generate(context.Background(), Request{})
	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "stub API error: quota", err.Error())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewStub("x").Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUsageAdd(t *testing.T) {
	u := Usage{InputTokens: 3, OutputTokens: 2}
	u.Add(Usage{InputTokens: 10, OutputTokens: 1, CacheReadInputTokens: 4})
	assert.Equal(t, int64(13), u.InputTokens)
	assert.Equal(t, int64(16), u.TotalTokens())
	assert.Equal(t, int64(4), u.CacheReadInputTokens)
}

func TestPromptBuilderEmbedsPayload(t *testing.T) {
	payload := map[string]any{"urls": []string{"https://example.com/?a=1&b=<2>"}}
	p, err := NewPromptBuilder("hu").Build(payload)
	require.NoError(t, err)

	assert.Contains(t, p.System, "Hungarian")
	assert.Contains(t, p.System, `{"summary": "...", "recommendations": "..."}`)
	assert.Contains(t, p.User, `"https://example.com/?a=1&b=<2>"`)
	assert.Contains(t, p.User, "max 600 words")
	assert.True(t, strings.HasSuffix(p.User, `{"summary": "...", "recommendations": "..."}`))
}

func TestPromptBuilderAutoLanguage(t *testing.T) {
	p, err := NewPromptBuilder("auto").Build(map[string]int{"n": 1})
	require.NoError(t, err)
	assert.Contains(t, p.System, "language of the audited pages")
}

func TestPromptBuilderRejectsUnmarshalable(t *testing.T) {
	_, err := NewPromptBuilder("en").Build(map[string]any{"f": func() {}})
	assert.Error(t, err)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("a", 100)))
}

func TestWithLoggingUsesContextLogger(t *testing.T) {
	baseCore, baseLogs := observer.New(zapcore.InfoLevel)
	reqCore, reqLogs := observer.New(zapcore.InfoLevel)

	g := WithLogging(NewStub("hello"), zap.New(baseCore))
	assert.Equal(t, "stub", g.Name())

	ctx := ContextWithLogger(context.Background(), zap.New(reqCore).With(zap.String("request_id", "r1")))
	_, err := g.Generate(ctx, Request{User: "prompt"})
	require.NoError(t, err)

	assert.Equal(t, 0, baseLogs.Len())
	entries := reqLogs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "llm request", entries[0].Message)
	assert.Equal(t, "llm response", entries[1].Message)
	assert.Equal(t, "r1", entries[1].ContextMap()["request_id"])
	assert.Equal(t, "stub", entries[1].ContextMap()["provider"])
}

func TestWithLoggingSumsUsage(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	stub := NewStub("hello")
	stub.Usage = Usage{InputTokens: 120, OutputTokens: 30, CacheReadInputTokens: 50}
	g := WithLogging(stub, zap.New(core))

	for i := 0; i < 2; i++ {
		_, err := g.Generate(context.Background(), Request{User: "prompt"})
		require.NoError(t, err)
	}

	responses := logs.FilterMessage("llm response").All()
	require.Len(t, responses, 2)
	assert.Equal(t, int64(150), responses[0].ContextMap()["tokens_total"])
	assert.Equal(t, int64(150), responses[0].ContextMap()["session_tokens"])
	assert.Equal(t, int64(150), responses[1].ContextMap()["tokens_total"])
	assert.Equal(t, int64(300), responses[1].ContextMap()["session_tokens"])
}

func TestWithLoggingLogsErrors(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	g := WithLogging(&Stub{Err: errors.New("down")}, zap.New(core))

	_, err := g.Generate(context.Background(), Request{})
	require.Error(t, err)
	errs := logs.FilterMessage("llm error").All()
	require.Len(t, errs, 1)
	assert.Equal(t, zapcore.ErrorLevel, errs[0].Level)
}

func TestNewFromConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	g, err := NewFromConfig(context.Background(), config.Config{LLMProvider: config.ProviderStub}, zap.NewNop())
	require.NoError(t, err)
	resp, err := g.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, DemoReply, resp.Text)

	_, err = NewFromConfig(context.Background(), config.Config{LLMProvider: config.ProviderOpenAI}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingCredential)

	g, err = NewFromConfig(context.Background(), config.Config{
		LLMProvider:     config.ProviderAnthropic,
		AnthropicAPIKey: "sk-ant",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", g.Name())

	_, err = NewFromConfig(context.Background(), config.Config{LLMProvider: "mystery"}, zap.NewNop())
	assert.Error(t, err)
}
