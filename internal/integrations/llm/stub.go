package llm

import (
	"context"
	"sync"
)

// Stub is an offline Generator returning a fixed reply or error. It records
// the requests it receives.
type Stub struct {
	Reply string
	Err   error
	Usage Usage

	mu       sync.Mutex
	requests []Request
}

func NewStub(reply string) *Stub { return &Stub{Reply: reply} }

func (s *Stub) Name() string { return "stub" }

func (s *Stub) Generate(ctx context.Context, req Request) (Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Response{}, upstream(s.Name(), err)
	}
	if s.Err != nil {
		return Response{}, upstream(s.Name(), s.Err)
	}
	return Response{Text: s.Reply, Model: "stub", Usage: s.Usage}, nil
}

// Requests returns the requests seen so far.
func (s *Stub) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// DemoReply is what the "stub" provider answers, for trying the pipeline
// without credentials.
const DemoReply = `{"summary": "Offline demo reply: no text-generation service was called. The audit payload was built and the reply parser ran normally.", "recommendations": "Configure llm_provider and an API key to receive generated recommendations for the audited pages."}`
