package domain

// ParsedResult is what callers receive: both fields are always non-empty.
type ParsedResult struct {
	Summary         string
	Recommendations string
	// Method names the reply-parsing stage that produced the fields, or
	// "error" when the pair is a fixed failure message.
	Method string
}
