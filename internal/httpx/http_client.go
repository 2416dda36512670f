package httpx

import (
	"net/http"
	"time"
)

const defaultExternalHTTPTimeout = 90 * time.Second

var externalHTTPClient = &http.Client{
	Timeout: defaultExternalHTTPTimeout,
}

// ExternalHTTPClient is the client every generator provider sends through,
// so one timeout bounds the single upstream call of a request.
func ExternalHTTPClient() *http.Client {
	return externalHTTPClient
}

// ConfigureExternalHTTPClient sets the shared timeout and returns the value
// applied. A non-positive timeout restores the default.
func ConfigureExternalHTTPClient(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		timeout = defaultExternalHTTPTimeout
	}
	externalHTTPClient.Timeout = timeout
	return timeout
}
