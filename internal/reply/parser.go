package reply

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"geosummary/internal/domain"
)

// Parse methods reported in domain.ParsedResult.
const (
	MethodJSON         = "json"
	MethodJSONEmbedded = "json_embedded"
	MethodPattern      = "pattern"
	MethodSplit        = "split"
)

// Texts used when a field cannot be recovered from the reply.
const (
	SummaryUnavailable         = "Could not generate the summary."
	RecommendationsUnavailable = "Could not generate the recommendations."
	RecommendationsFallback    = "Automatic recommendation generation failed. Please review the analysis results manually."
	SummaryPartial             = "Summary generation partially failed."
)

const (
	LanguageAuto    = "auto"
	defaultLanguage = "hu"

	minFieldRunes  = 50
	rawSummaryMax  = 800
	minBreakOffset = 100
	logHeadRunes   = 200
)

var (
	fenceRe       = regexp.MustCompile("```json|```")
	jsonLabelRe   = regexp.MustCompile(`(?i)^json\s*`)
	jsonCharsRe   = regexp.MustCompile(`[{}"]`)
	spaceRunRe    = regexp.MustCompile(`\s+`)
	leadingJunkRe = regexp.MustCompile(`^[:\-\s]*`)
)

// Reply is one raw generator reply in the forms the stages read.
type Reply struct {
	Raw string
	// Normalized has code fences removed; the JSON stages read it.
	Normalized string
	// Cleaned has fences and JSON punctuation removed; the pattern and
	// split stages read it.
	Cleaned string
}

func NewReply(raw string) Reply {
	cleaned := fenceRe.ReplaceAllString(raw, "")
	cleaned = jsonLabelRe.ReplaceAllString(cleaned, "")
	cleaned = jsonCharsRe.ReplaceAllString(cleaned, "")
	return Reply{Raw: raw, Normalized: Normalize(raw), Cleaned: cleaned}
}

// Fields is a possibly partial summary/recommendations pair.
type Fields struct {
	Summary         string
	Recommendations string
}

func (f Fields) complete() bool { return f.Summary != "" && f.Recommendations != "" }

// Parser turns a generator reply into the two output fields. It never fails:
// whatever the reply looks like, both fields come back non-empty.
type Parser struct {
	logger   *zap.Logger
	sets     map[string]LabelSet
	language string
	detector LanguageDetector
}

type Option func(*Parser)

// WithLabelSets adds label sets, replacing built-in sets of the same name.
func WithLabelSets(sets map[string]LabelSet) Option {
	return func(p *Parser) {
		for name, ls := range sets {
			p.sets[name] = ls
		}
	}
}

// WithLanguage selects the label set by language code, or LanguageAuto to
// detect it per reply.
func WithLanguage(code string) Option {
	return func(p *Parser) {
		if code != "" {
			p.language = code
		}
	}
}

func WithDetector(d LanguageDetector) Option {
	return func(p *Parser) { p.detector = d }
}

func NewParser(logger *zap.Logger, opts ...Option) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Parser{logger: logger, sets: BuiltinLabelSets(), language: defaultLanguage}
	for _, opt := range opts {
		opt(p)
	}
	if p.language == LanguageAuto && p.detector == nil {
		codes := make([]string, 0, len(p.sets))
		for code := range p.sets {
			codes = append(codes, code)
		}
		p.detector = NewLanguageDetector(codes...)
	}
	return p
}

// WithLogger returns a copy of the parser logging to l.
func (p *Parser) WithLogger(l *zap.Logger) *Parser {
	cp := *p
	cp.logger = l
	return &cp
}

func (p *Parser) Parse(raw string) domain.ParsedResult {
	r := NewReply(raw)
	if f, ok := strictJSON(r.Normalized); ok {
		return p.done(f, MethodJSON, r)
	}
	if f, ok := embeddedJSON(r.Normalized); ok {
		return p.done(f, MethodJSONEmbedded, r)
	}
	p.logger.Warn("reply is not valid JSON, parsing text",
		zap.String("reply_head", truncateRunes(r.Normalized, logHeadRunes)),
	)

	ls := p.labelsFor(r.Cleaned)
	f := extractPatterns(r.Cleaned, ls)
	method := MethodPattern
	if !f.complete() {
		f = splitProportional(r.Cleaned, ls.BreakWords, f)
		method = MethodSplit
	}
	f = guarantee(cleanup(f, ls), r.Raw)
	p.logger.Debug("reply labels", zap.String("label_set", ls.Name))
	return p.done(f, method, r)
}

func (p *Parser) done(f Fields, method string, r Reply) domain.ParsedResult {
	p.logger.Info("reply parsed",
		zap.String("method", method),
		zap.Int("reply_len", utf8.RuneCountInString(r.Raw)),
		zap.Int("summary_len", utf8.RuneCountInString(f.Summary)),
		zap.Int("recommendations_len", utf8.RuneCountInString(f.Recommendations)),
	)
	return domain.ParsedResult{Summary: f.Summary, Recommendations: f.Recommendations, Method: method}
}

func (p *Parser) labelsFor(text string) LabelSet {
	code := p.language
	if code == LanguageAuto {
		code = defaultLanguage
		if detected, ok := p.detector.Detect(text); ok {
			code = detected
		}
	}
	if ls, ok := p.sets[code]; ok {
		return ls
	}
	return Hungarian
}

// extractPatterns runs the templates in order. A field found by one
// template is kept even if a later template also matches it.
func extractPatterns(text string, ls LabelSet) Fields {
	var f Fields
	for _, t := range ls.Templates {
		if f.Summary == "" {
			f.Summary = firstCapture(t.Summary, text)
		}
		if f.Recommendations == "" {
			f.Recommendations = firstCapture(t.Recommendations, text)
		}
		if f.complete() {
			break
		}
	}
	return f
}

func firstCapture(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// splitProportional fills the missing fields by cutting the text at a break
// word, or at the midpoint. Only the first occurrence of each break word is
// considered, and it is used only when it sits past the opening paragraph.
func splitProportional(text string, breakWords []string, f Fields) Fields {
	runes := []rune(text)
	lower := lowerRunes(runes)
	at := len(runes) / 2
	for _, w := range breakWords {
		if pos := indexRunes(lower, lowerRunes([]rune(w)), 0); pos > minBreakOffset {
			at = pos
			break
		}
	}
	if f.Summary == "" {
		f.Summary = strings.TrimSpace(string(runes[:at]))
	}
	if f.Recommendations == "" {
		f.Recommendations = strings.TrimSpace(string(runes[at:]))
	}
	return f
}

func cleanup(f Fields, ls LabelSet) Fields {
	f.Summary = tidy(f.Summary)
	f.Recommendations = tidy(f.Recommendations)
	if ls.recPrefix != nil {
		f.Recommendations = ls.recPrefix.ReplaceAllString(f.Recommendations, "")
	}
	return f
}

func tidy(s string) string {
	return leadingJunkRe.ReplaceAllString(spaceRunRe.ReplaceAllString(s, " "), "")
}

// guarantee enforces the output contract: a summary too short to be useful
// is replaced by the start of the raw reply, short recommendations by a
// fixed notice.
func guarantee(f Fields, raw string) Fields {
	if utf8.RuneCountInString(f.Summary) < minFieldRunes {
		f.Summary = truncateRunes(raw, rawSummaryMax)
	}
	if utf8.RuneCountInString(f.Recommendations) < minFieldRunes {
		f.Recommendations = RecommendationsFallback
	}
	f.Summary = strings.TrimSpace(f.Summary)
	if f.Summary == "" {
		f.Summary = SummaryPartial
	}
	f.Recommendations = strings.TrimSpace(f.Recommendations)
	return f
}

func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

// indexRunes returns the first index >= from where sub occurs in s, or -1.
func indexRunes(s, sub []rune, from int) int {
	if len(sub) == 0 {
		return -1
	}
	for i := from; i+len(sub) <= len(s); i++ {
		match := true
		for j := range sub {
			if s[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
