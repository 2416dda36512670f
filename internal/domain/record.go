package domain

import (
	"bytes"
	"encoding/json"
)

// AuditRecord is one analyzed URL from an AI-readiness audit. Every section is
// optional; accessors return 0, false or empty when a section is missing.
type AuditRecord struct {
	URL              Text                     `json:"url"`
	AIReadinessScore Number                   `json:"ai_readiness_score"`
	MetaAndHeadings  Opt[MetaSection]         `json:"meta_and_headings"`
	Schema           Opt[SchemaSection]       `json:"schema"`
	ContentQuality   Opt[ContentQuality]      `json:"content_quality"`
	AIMetricsSummary Opt[AIMetricsSummary]    `json:"ai_metrics_summary"`
	PlatformAnalysis PlatformAnalysis         `json:"platform_analysis"`
	AIContentEval    Opt[AIContentEvaluation] `json:"ai_content_evaluation"`
	PageSpeed        Opt[PageSpeed]           `json:"pagespeed_insights"`
	RobotsTxt        Opt[RobotsTxt]           `json:"robots_txt"`
	Sitemap          Opt[Sitemap]             `json:"sitemap"`
	MobileFriendly   Opt[MobileFriendly]      `json:"mobile_friendly"`
	HTMLSizeKB       Number                   `json:"html_size_kb"`

	hasURL   bool
	hasError bool
}

type auditRecordAlias AuditRecord

func (r *AuditRecord) UnmarshalJSON(b []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	var alias auditRecordAlias
	if err := json.Unmarshal(b, &alias); err != nil {
		return err
	}
	*r = AuditRecord(alias)
	_, r.hasURL = keys["url"]
	_, r.hasError = keys["error"]
	return nil
}

// NewAuditRecord builds a record in code; it is valid because it has a URL.
func NewAuditRecord(url string, score float64) AuditRecord {
	return AuditRecord{URL: Text(url), AIReadinessScore: Number(score), hasURL: true}
}

// HasURL reports whether the record carried a "url" key. Records without one
// are not audit results and are excluded everywhere.
func (r AuditRecord) HasURL() bool { return r.hasURL }

// HasError reports whether the analyzer marked the record as failed.
func (r AuditRecord) HasError() bool { return r.hasError }

// WithError marks the record as failed, as the analyzer does with an "error" key.
func (r AuditRecord) WithError() AuditRecord {
	r.hasError = true
	return r
}

func (r AuditRecord) Score() float64 { return r.AIReadinessScore.Float() }

// SchemaTotal is the number of schema elements, summed over types when the
// analyzer reported a per-type count.
func (r AuditRecord) SchemaTotal() float64 { return r.Schema.Get().Count.Total() }

// WordCount comes from content_quality.readability regardless of whether the
// content section reported an error.
func (r AuditRecord) WordCount() int {
	return r.ContentQuality.Get().Readability.Get().WordCount.Int()
}

func (r AuditRecord) HasViewport() bool { return r.MobileFriendly.Get().HasViewport.Bool() }

type MetaSection struct {
	Title                 Text   `json:"title"`
	TitleLength           Number `json:"title_length"`
	TitleOptimal          Flag   `json:"title_optimal"`
	Description           Text   `json:"description"`
	DescriptionLength     Number `json:"description_length"`
	DescriptionOptimal    Flag   `json:"description_optimal"`
	Headings              Object `json:"headings"`
	H1Count               Number `json:"h1_count"`
	HeadingHierarchyValid Flag   `json:"heading_hierarchy_valid"`
	HasOGTags             Flag   `json:"has_og_tags"`
	HasTwitterCard        Flag   `json:"has_twitter_card"`
}

type SchemaSection struct {
	Count             SchemaCount `json:"count"`
	HasBreadcrumbs    Flag        `json:"has_breadcrumbs"`
	HasSearchAction   Flag        `json:"has_search_action"`
	ValidationStatus  Text        `json:"validation_status"`
	GoogleValidation  Object      `json:"google_validation"`
	CompletenessScore Number      `json:"schema_completeness_score"`
	Effectiveness     Object      `json:"effectiveness_analysis"`
}

// SchemaCount is either a per-type mapping ({"Article": 1, ...}) or a flat
// number. Type order follows the document.
type SchemaCount struct {
	total  float64
	types  []string
	byType map[string]float64
}

// NewSchemaCount builds a per-type count in the given type order.
func NewSchemaCount(types []string, counts map[string]float64) SchemaCount {
	c := SchemaCount{types: append([]string(nil), types...), byType: map[string]float64{}}
	for _, t := range types {
		c.byType[t] = counts[t]
		c.total += counts[t]
	}
	return c
}

// FlatSchemaCount builds a count without type information.
func FlatSchemaCount(n float64) SchemaCount { return SchemaCount{total: n} }

func (c *SchemaCount) UnmarshalJSON(b []byte) error {
	*c = SchemaCount{}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		keys, fields, ok := orderedObject(trimmed)
		if !ok {
			return nil
		}
		c.byType = make(map[string]float64, len(keys))
		for _, k := range keys {
			var n Number
			_ = n.UnmarshalJSON(fields[k])
			c.types = append(c.types, k)
			c.byType[k] = n.Float()
			c.total += n.Float()
		}
		return nil
	}
	var n Number
	_ = n.UnmarshalJSON(trimmed)
	c.total = n.Float()
	return nil
}

func (c SchemaCount) MarshalJSON() ([]byte, error) {
	if c.byType == nil {
		return json.Marshal(c.total)
	}
	return json.Marshal(c.byType)
}

func (c SchemaCount) Total() float64 { return c.total }

// Types lists schema types in document order; empty for a flat count.
func (c SchemaCount) Types() []string { return append([]string{}, c.types...) }

type ContentQuality struct {
	Error               Flag                  `json:"error"`
	OverallQualityScore Number                `json:"overall_quality_score"`
	Readability         Opt[Readability]      `json:"readability"`
	KeywordAnalysis     Opt[KeywordAnalysis]  `json:"keyword_analysis"`
	ContentDepth        Opt[ContentDepth]     `json:"content_depth"`
	AuthoritySignals    Opt[AuthoritySignals] `json:"authority_signals"`
	SemanticRichness    Opt[SemanticRichness] `json:"semantic_richness"`
}

type Readability struct {
	WordCount        Number `json:"word_count"`
	ReadabilityScore Number `json:"readability_score"`
}

type KeywordAnalysis struct {
	VocabularyRichness Number `json:"vocabulary_richness"`
}

type ContentDepth struct {
	DepthScore Number `json:"depth_score"`
}

type AuthoritySignals struct {
	AuthorityScore Number `json:"authority_score"`
}

type SemanticRichness struct {
	SemanticScore Number `json:"semantic_score"`
}

type AIMetricsSummary struct {
	WeightedAverage  Number `json:"weighted_average"`
	IndividualScores Object `json:"individual_scores"`
	Level            Text   `json:"level"`
}

type AIContentEvaluation struct {
	Error           Flag   `json:"error"`
	OverallAIScore  Number `json:"overall_ai_score"`
	AIQualityScores Object `json:"ai_quality_scores"`
}

type PageSpeed struct {
	Mobile  Object `json:"mobile"`
	Desktop Object `json:"desktop"`
}

type RobotsTxt struct {
	CanFetch Flag `json:"can_fetch"`
}

type Sitemap struct {
	Exists Flag `json:"exists"`
}

type MobileFriendly struct {
	HasViewport      Flag `json:"has_viewport"`
	ResponsiveImages Flag `json:"responsive_images"`
}

// orderedObject decodes a JSON object keeping key order.
func orderedObject(b []byte) ([]string, map[string]json.RawMessage, bool) {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, nil, false
	}
	var keys []string
	fields := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, false
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, false
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, false
		}
		if _, seen := fields[key]; !seen {
			keys = append(keys, key)
		}
		fields[key] = raw
	}
	return keys, fields, true
}
