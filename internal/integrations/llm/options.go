package llm

import "net/http"

type providerOptions struct {
	httpClient *http.Client
	baseURL    string
}

// Option customizes a provider client.
type Option func(*providerOptions)

// WithHTTPClient sets the transport the provider sends requests through.
func WithHTTPClient(c *http.Client) Option {
	return func(o *providerOptions) { o.httpClient = c }
}

// WithBaseURL points the provider at another endpoint, such as a proxy or a
// test server.
func WithBaseURL(u string) Option {
	return func(o *providerOptions) { o.baseURL = u }
}

func collectOptions(opts []Option) providerOptions {
	var o providerOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
