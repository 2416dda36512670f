package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini API generator. An empty apiKey falls back to
// GEMINI_API_KEY.
func NewGemini(ctx context.Context, apiKey, model string, opts ...Option) (*GeminiGenerator, error) {
	key, err := ResolveAPIKey(apiKey, "GEMINI_API_KEY")
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = defaultGeminiModel
	}
	o := collectOptions(opts)
	cfg := &genai.ClientConfig{APIKey: key, Backend: genai.BackendGeminiAPI}
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}
	if o.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Name() string { return "gemini" }

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	temperature := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   int32(req.MaxTokens),
	}
	if req.JSONMode {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.User), cfg)
	if err != nil {
		return Response{}, upstream(g.Name(), err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Response{}, upstream(g.Name(), ErrEmptyReply)
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return Response{}, upstream(g.Name(), ErrEmptyReply)
	}
	out := Response{Text: sb.String(), Model: g.model}
	if m := resp.UsageMetadata; m != nil {
		out.Usage = Usage{
			InputTokens:  int64(m.PromptTokenCount),
			OutputTokens: int64(m.CandidatesTokenCount),
		}
	}
	return out, nil
}
