package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds a chat-completions generator. An empty apiKey falls back
// to OPENAI_API_KEY.
func NewOpenAI(apiKey, model string, opts ...Option) (*OpenAIGenerator, error) {
	key, err := ResolveAPIKey(apiKey, "OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	o := collectOptions(opts)
	cfg := openai.DefaultConfig(key)
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (g *OpenAIGenerator) Name() string { return "openai" }

func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := g.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return Response{}, upstream(g.Name(), err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Response{}, upstream(g.Name(), ErrEmptyReply)
	}
	return Response{
		Text:  resp.Choices[0].Message.Content,
		Model: g.model,
		Usage: Usage{
			InputTokens:  int64(resp.Usage.PromptTokens),
			OutputTokens: int64(resp.Usage.CompletionTokens),
		},
	}, nil
}
