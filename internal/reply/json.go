package reply

import (
	"encoding/json"
	"fmt"
	"strings"

	"geosummary/internal/util/jsonutil"
)

const (
	keySummary         = "summary"
	keyRecommendations = "recommendations"
)

// strictJSON reads both fields from a JSON object reply. It fails only when
// the text is not an object or neither key is present; a single missing or
// empty key gets the sentinel text instead.
func strictJSON(text string) (Fields, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return Fields{}, false
	}
	rawSummary, hasSummary := obj[keySummary]
	rawRecs, hasRecs := obj[keyRecommendations]
	if !hasSummary && !hasRecs {
		return Fields{}, false
	}
	f := Fields{
		Summary:         fieldText(rawSummary),
		Recommendations: fieldText(rawRecs),
	}
	if f.Summary == "" {
		f.Summary = SummaryUnavailable
	}
	if f.Recommendations == "" {
		f.Recommendations = RecommendationsUnavailable
	}
	return f, true
}

// embeddedJSON tries each top-level object found inside surrounding prose.
func embeddedJSON(text string) (Fields, bool) {
	for _, candidate := range findJSONCandidates(text) {
		if f, ok := strictJSON(candidate); ok {
			return f, true
		}
	}
	return Fields{}, false
}

// fieldText renders a reply value as text. Models sometimes send the
// recommendations as a list; items are joined one per line.
func fieldText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case []any:
		lines := make([]string, 0, len(x))
		for _, item := range x {
			if s := fieldText(item); s != "" {
				lines = append(lines, s)
			}
		}
		return strings.Join(lines, "\n")
	case float64, bool:
		return fmt.Sprint(x)
	default:
		b, err := jsonutil.MarshalNoEscape(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// findJSONCandidates returns the top-level {...} spans of s, skipping braces
// inside JSON strings.
func findJSONCandidates(s string) []string {
	var candidates []string
	depth, start := 0, -1
	inString, escape := false, false
	for i := 0; i < len(s); i++ {
		b := s[i]
		if escape {
			escape = false
			continue
		}
		if inString {
			switch b {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidates = append(candidates, s[start:i+1])
				start = -1
			}
		}
	}
	return candidates
}
