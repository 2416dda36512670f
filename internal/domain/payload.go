package domain

import (
	"encoding/json"

	"geosummary/internal/util/jsonutil"
)

// CompactPayload is the size-bounded projection sent to the generator.
type CompactPayload struct {
	Summary   CompactSummary     `json:"summary"`
	Scores    []CompactScore     `json:"scores"`
	KeyIssues []KeyIssue         `json:"key_issues"`
	Platforms map[string]float64 `json:"platforms"`
}

type CompactSummary struct {
	URLsCount int      `json:"urls_count"`
	URLs      []string `json:"urls"`
}

type CompactScore struct {
	URL         string  `json:"url"`
	AIScore     float64 `json:"ai_score"`
	MetaTitleOK bool    `json:"meta_title_ok"`
	MetaDescOK  bool    `json:"meta_desc_ok"`
	SchemaCount float64 `json:"schema_count"`
	WordCount   int     `json:"word_count"`
	MobileOK    bool    `json:"mobile_ok"`
}

type KeyIssue struct {
	URL    string   `json:"url"`
	Score  float64  `json:"score"`
	Issues []string `json:"issues"`
}

// Compacted is the compactor's outcome: a payload, or an error marker that
// serializes as {"error": "..."} so a prompt can still be built from it.
type Compacted struct {
	Payload *CompactPayload
	Err     error
}

func (c Compacted) OK() bool { return c.Err == nil && c.Payload != nil }

func (c Compacted) MarshalJSON() ([]byte, error) {
	if !c.OK() {
		return marshalErrorMarker(c.Err)
	}
	return jsonutil.MarshalNoEscape(c.Payload)
}

// StructuredPayload is the fuller projection covering every valid record.
type StructuredPayload struct {
	Overview              Overview           `json:"overview"`
	Scores                ScoreStats         `json:"scores"`
	PlatformCompatibility map[string]float64 `json:"platform_compatibility"`
	CriticalIssues        []CriticalIssue    `json:"critical_issues"`
	QuickWins             []QuickWin         `json:"quick_wins"`
	DetailedResults       []DetailedResult   `json:"detailed_results"`
}

type Overview struct {
	TotalURLs    int      `json:"total_urls"`
	AnalysisDate string   `json:"analysis_date"`
	URLsAnalyzed []string `json:"urls_analyzed"`
}

type ScoreStats struct {
	AverageAIReadiness float64 `json:"average_ai_readiness"`
	MinScore           float64 `json:"min_score"`
	MaxScore           float64 `json:"max_score"`
	ExcellentCount     int     `json:"excellent_count"`
	GoodCount          int     `json:"good_count"`
	AverageCount       int     `json:"average_count"`
	PoorCount          int     `json:"poor_count"`
}

type CriticalIssue struct {
	URL        string   `json:"url"`
	Score      float64  `json:"score"`
	MainIssues []string `json:"main_issues"`
}

type QuickWin struct {
	URL          string `json:"url"`
	Type         string `json:"type"`
	CurrentState string `json:"current_state"`
	TargetState  string `json:"target_state"`
	Impact       string `json:"impact"`
	Effort       string `json:"effort"`
}

type DetailedResult struct {
	URL              string                   `json:"url"`
	AIReadinessScore float64                  `json:"ai_readiness_score"`
	AILevel          ReadinessBand            `json:"ai_level"`
	Meta             DetailedMeta             `json:"meta"`
	Schema           DetailedSchema           `json:"schema"`
	AIMetrics        DetailedAIMetrics        `json:"ai_metrics"`
	Content          *DetailedContent         `json:"content,omitempty"`
	Platforms        map[string]PlatformScore `json:"platforms,omitempty"`
	AIEvaluation     *DetailedAIEvaluation    `json:"ai_evaluation,omitempty"`
	Performance      *DetailedPerformance     `json:"performance,omitempty"`
	Technical        DetailedTechnical        `json:"technical"`
}

type FieldStatus struct {
	Exists  bool `json:"exists"`
	Length  int  `json:"length"`
	Optimal bool `json:"optimal"`
}

type DetailedMeta struct {
	Title                 FieldStatus `json:"title"`
	Description           FieldStatus `json:"description"`
	Headings              Object      `json:"headings"`
	H1Count               int         `json:"h1_count"`
	HeadingHierarchyValid bool        `json:"heading_hierarchy_valid"`
	OGTags                bool        `json:"og_tags"`
	TwitterCard           bool        `json:"twitter_card"`
}

type DetailedSchema struct {
	Count             float64  `json:"count"`
	Types             []string `json:"types"`
	HasBreadcrumbs    bool     `json:"has_breadcrumbs"`
	HasSearchAction   bool     `json:"has_search_action"`
	ValidationStatus  string   `json:"validation_status"`
	GoogleValidation  Object   `json:"google_validation"`
	CompletenessScore float64  `json:"completeness_score"`
	Effectiveness     Object   `json:"effectiveness"`
}

type DetailedAIMetrics struct {
	WeightedAverage  float64 `json:"weighted_average"`
	IndividualScores Object  `json:"individual_scores"`
	Level            string  `json:"level"`
}

type DetailedContent struct {
	OverallScore       float64 `json:"overall_score"`
	WordCount          int     `json:"word_count"`
	ReadabilityScore   float64 `json:"readability_score"`
	VocabularyRichness float64 `json:"vocabulary_richness"`
	DepthScore         float64 `json:"depth_score"`
	AuthorityScore     float64 `json:"authority_score"`
	SemanticScore      float64 `json:"semantic_score"`
}

type PlatformScore struct {
	CompatibilityScore float64 `json:"compatibility_score"`
	HybridScore        float64 `json:"hybrid_score"`
	AIScore            float64 `json:"ai_score"`
	OptimizationLevel  string  `json:"optimization_level"`
	AIEnhanced         bool    `json:"ai_enhanced"`
}

type DetailedAIEvaluation struct {
	OverallScore   float64 `json:"overall_score"`
	PlatformScores Object  `json:"platform_scores"`
	HasEvaluation  bool    `json:"has_evaluation"`
}

type DetailedPerformance struct {
	Mobile  Object `json:"mobile"`
	Desktop Object `json:"desktop"`
}

type DetailedTechnical struct {
	RobotsAllowed    bool    `json:"robots_allowed"`
	SitemapExists    bool    `json:"sitemap_exists"`
	MobileViewport   bool    `json:"mobile_viewport"`
	ResponsiveImages bool    `json:"responsive_images"`
	HTMLSizeKB       float64 `json:"html_size_kb"`
}

// Facts derives the rule inputs from the detailed view, so content that
// the analyzer flagged as failed counts as no content.
func (d DetailedResult) Facts() PageFacts {
	f := PageFacts{
		URL:                d.URL,
		TitleExists:        d.Meta.Title.Exists,
		TitleLength:        d.Meta.Title.Length,
		TitleOptimal:       d.Meta.Title.Optimal,
		DescriptionExists:  d.Meta.Description.Exists,
		DescriptionLength:  d.Meta.Description.Length,
		DescriptionOptimal: d.Meta.Description.Optimal,
		SchemaCount:        d.Schema.Count,
		MobileViewport:     d.Technical.MobileViewport,
	}
	if d.Content != nil {
		f.WordCount = d.Content.WordCount
	}
	return f
}

// Extracted is the structured extractor's outcome. Exactly one of Payload,
// Err or Fallback is meaningful; Fallback is the untouched input returned
// when extraction itself failed.
type Extracted struct {
	Payload  *StructuredPayload
	Err      error
	Fallback json.RawMessage
}

func (e Extracted) OK() bool { return e.Payload != nil }

func (e Extracted) MarshalJSON() ([]byte, error) {
	switch {
	case e.Payload != nil:
		return jsonutil.MarshalNoEscape(e.Payload)
	case len(e.Fallback) > 0:
		return e.Fallback, nil
	default:
		return marshalErrorMarker(e.Err)
	}
}

func marshalErrorMarker(err error) ([]byte, error) {
	if err == nil {
		err = ErrNoData
	}
	return json.Marshal(map[string]string{"error": err.Error()})
}
