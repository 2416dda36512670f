package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Request is one generation call: a system instruction, the user prompt and
// the sampling parameters.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
	// JSONMode asks the provider to constrain the reply to a JSON object
	// where it supports that.
	JSONMode bool
}

type Response struct {
	Text  string
	Model string
	Usage Usage
}

// Generator is the narrow interface to an external text-generation service.
// Implementations make exactly one upstream call per Generate and report
// every failure as an *UpstreamError.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (Response, error)
}

type Usage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

func (u Usage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

// ErrMissingCredential is returned by provider constructors when no API key
// was given and none is set in the environment.
var ErrMissingCredential = errors.New("missing API credential")

// ErrEmptyReply marks a provider response without any text.
var ErrEmptyReply = errors.New("empty reply")

// UpstreamError wraps any failure of the external call.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func upstream(provider string, err error) error {
	return &UpstreamError{Provider: provider, Err: err}
}

// ResolveAPIKey returns explicit when set, otherwise the value of envKey.
func ResolveAPIKey(explicit, envKey string) (string, error) {
	if key := strings.TrimSpace(explicit); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(os.Getenv(envKey)); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%w: set %s", ErrMissingCredential, envKey)
}
