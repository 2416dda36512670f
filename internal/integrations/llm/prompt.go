package llm

import (
	"fmt"
	"strings"

	"geosummary/internal/util/jsonutil"
)

// Prompt is the system and user text of one generation request.
type Prompt struct {
	System string
	User   string
}

var languageNames = map[string]string{
	"cs": "Czech",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"hu": "Hungarian",
	"it": "Italian",
	"nl": "Dutch",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"sk": "Slovak",
}

// PromptBuilder wraps an audit payload in the fixed instruction that asks
// for a two-field JSON reply.
type PromptBuilder struct {
	language string
}

// NewPromptBuilder takes the reply language code; "auto" or an unknown code
// lets the model pick the language of the audited pages.
func NewPromptBuilder(language string) PromptBuilder {
	return PromptBuilder{language: language}
}

func (b PromptBuilder) Build(payload any) (Prompt, error) {
	data, err := jsonutil.MarshalNoEscape(payload)
	if err != nil {
		return Prompt{}, fmt.Errorf("marshaling audit payload: %w", err)
	}

	var sys strings.Builder
	sys.WriteString("You are a GEO (Generative Engine Optimization) expert. ")
	sys.WriteString(`CRITICAL: reply ONLY with valid JSON in the form {"summary": "...", "recommendations": "..."}. `)
	if name, ok := languageNames[b.language]; ok {
		sys.WriteString("Write both fields in " + name + ".")
	} else {
		sys.WriteString("Write both fields in the language of the audited pages.")
	}

	var user strings.Builder
	user.WriteString("Analyze these GEO audit results:\n\n")
	user.WriteString("1. SUMMARY (max 600 words): AI readiness score, meta data, schema, content, platform compatibility\n")
	user.WriteString("2. RECOMMENDATIONS (max 600 words): prioritized improvement plan\n\n")
	user.WriteString("Data:\n")
	user.Write(data)
	user.WriteString("\n\nIMPORTANT: reply ONLY with this JSON structure and nothing else:\n")
	user.WriteString(`{"summary": "...", "recommendations": "..."}`)

	return Prompt{System: sys.String(), User: user.String()}, nil
}

// EstimateTokens is a rough token count, one token per four bytes.
func EstimateTokens(s string) int {
	return len(s) / 4
}
