package audit

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"geosummary/internal/domain"
)

const (
	criticalScore     = 40
	defaultDate       = "N/A"
	defaultValidation = "standard"
	defaultLevel      = "Unknown"
	defaultOptLevel   = "N/A"
)

// Extractor builds the full structured projection of a batch: aggregate
// statistics, per-URL detail, critical issues and quick wins.
type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract covers every analyzable record. date overrides the batch's own
// analysis date when set. If extraction panics on unexpected input, the
// untouched document is returned as the fallback.
func (e *Extractor) Extract(batch domain.Batch, date string) (out domain.Extracted) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extract: failed, returning input unchanged", zap.Any("panic", r))
			out = domain.Extracted{Err: fmt.Errorf("extract: %v", r), Fallback: batch.Raw}
		}
	}()

	records := batch.Analyzable()
	if len(records) == 0 {
		e.logger.Warn("extract: no analyzable records", zap.Int("records", len(batch.Records)))
		return domain.Extracted{Err: domain.ErrNoData}
	}
	if date == "" {
		date = batch.AnalysisDate
	}
	if date == "" {
		date = defaultDate
	}

	p := &domain.StructuredPayload{
		Overview: domain.Overview{
			TotalURLs:    len(records),
			AnalysisDate: date,
			URLsAnalyzed: make([]string, 0, len(records)),
		},
		PlatformCompatibility: map[string]float64{},
		CriticalIssues:        []domain.CriticalIssue{},
		QuickWins:             []domain.QuickWin{},
		DetailedResults:       make([]domain.DetailedResult, 0, len(records)),
	}

	scores := make([]float64, 0, len(records))
	for _, r := range records {
		d := detailOf(r)
		f := d.Facts()
		p.Overview.URLsAnalyzed = append(p.Overview.URLsAnalyzed, d.URL)
		scores = append(scores, d.AIReadinessScore)

		if d.AIReadinessScore < criticalScore {
			p.CriticalIssues = append(p.CriticalIssues, domain.CriticalIssue{
				URL:        d.URL,
				Score:      d.AIReadinessScore,
				MainIssues: DetectIssues(f),
			})
		}
		p.QuickWins = append(p.QuickWins, DetectQuickWins(f)...)
		p.DetailedResults = append(p.DetailedResults, d)
	}

	p.Scores = scoreStats(scores)
	for _, name := range domain.KnownPlatforms {
		var compat []float64
		for _, d := range p.DetailedResults {
			if ps, ok := d.Platforms[name]; ok {
				compat = append(compat, ps.CompatibilityScore)
			}
		}
		if len(compat) > 0 {
			p.PlatformCompatibility[name] = mean(compat)
		}
	}

	e.logger.Debug("extract: payload built",
		zap.Int("urls", p.Overview.TotalURLs),
		zap.Int("critical", len(p.CriticalIssues)),
		zap.Int("quick_wins", len(p.QuickWins)),
	)
	return domain.Extracted{Payload: p}
}

func scoreStats(scores []float64) domain.ScoreStats {
	st := domain.ScoreStats{MinScore: math.Inf(1), MaxScore: math.Inf(-1)}
	for _, s := range scores {
		st.MinScore = math.Min(st.MinScore, s)
		st.MaxScore = math.Max(st.MaxScore, s)
		switch domain.Classify(s) {
		case domain.BandExcellent:
			st.ExcellentCount++
		case domain.BandGood:
			st.GoodCount++
		case domain.BandAverage:
			st.AverageCount++
		default:
			st.PoorCount++
		}
	}
	st.AverageAIReadiness = mean(scores)
	return st
}

// detailOf is replaced in tests.
var detailOf = detail

func detail(r domain.AuditRecord) domain.DetailedResult {
	meta := r.MetaAndHeadings.Get()
	schema := r.Schema.Get()
	metrics := r.AIMetricsSummary.Get()
	mobile := r.MobileFriendly.Get()

	d := domain.DetailedResult{
		URL:              r.URL.String(),
		AIReadinessScore: r.Score(),
		AILevel:          domain.Classify(r.Score()),
		Meta: domain.DetailedMeta{
			Title: domain.FieldStatus{
				Exists:  meta.Title != "",
				Length:  meta.TitleLength.Int(),
				Optimal: meta.TitleOptimal.Bool(),
			},
			Description: domain.FieldStatus{
				Exists:  meta.Description != "",
				Length:  meta.DescriptionLength.Int(),
				Optimal: meta.DescriptionOptimal.Bool(),
			},
			Headings:              orEmpty(meta.Headings),
			H1Count:               meta.H1Count.Int(),
			HeadingHierarchyValid: meta.HeadingHierarchyValid.Bool(),
			OGTags:                meta.HasOGTags.Bool(),
			TwitterCard:           meta.HasTwitterCard.Bool(),
		},
		Schema: domain.DetailedSchema{
			Count:             schema.Count.Total(),
			Types:             schema.Count.Types(),
			HasBreadcrumbs:    schema.HasBreadcrumbs.Bool(),
			HasSearchAction:   schema.HasSearchAction.Bool(),
			ValidationStatus:  orDefault(schema.ValidationStatus.String(), defaultValidation),
			GoogleValidation:  orEmpty(schema.GoogleValidation),
			CompletenessScore: schema.CompletenessScore.Float(),
			Effectiveness:     orEmpty(schema.Effectiveness),
		},
		AIMetrics: domain.DetailedAIMetrics{
			WeightedAverage:  metrics.WeightedAverage.Float(),
			IndividualScores: orEmpty(metrics.IndividualScores),
			Level:            orDefault(metrics.Level.String(), defaultLevel),
		},
		Technical: domain.DetailedTechnical{
			RobotsAllowed:    r.RobotsTxt.Get().CanFetch.Bool(),
			SitemapExists:    r.Sitemap.Get().Exists.Bool(),
			MobileViewport:   mobile.HasViewport.Bool(),
			ResponsiveImages: mobile.ResponsiveImages.Bool(),
			HTMLSizeKB:       r.HTMLSizeKB.Float(),
		},
	}

	if cq := r.ContentQuality.Get(); r.ContentQuality.Truthy() && !cq.Error.Bool() {
		d.Content = &domain.DetailedContent{
			OverallScore:       cq.OverallQualityScore.Float(),
			WordCount:          cq.Readability.Get().WordCount.Int(),
			ReadabilityScore:   cq.Readability.Get().ReadabilityScore.Float(),
			VocabularyRichness: cq.KeywordAnalysis.Get().VocabularyRichness.Float(),
			DepthScore:         cq.ContentDepth.Get().DepthScore.Float(),
			AuthorityScore:     cq.AuthoritySignals.Get().AuthorityScore.Float(),
			SemanticScore:      cq.SemanticRichness.Get().SemanticScore.Float(),
		}
	}

	if r.PlatformAnalysis.Usable() {
		d.Platforms = map[string]domain.PlatformScore{}
		for _, name := range r.PlatformAnalysis.Names() {
			e, _ := r.PlatformAnalysis.Entry(name)
			d.Platforms[name] = domain.PlatformScore{
				CompatibilityScore: e.CompatibilityScore.Float(),
				HybridScore:        e.HybridScore.Float(),
				AIScore:            e.AIScore.Float(),
				OptimizationLevel:  orDefault(e.OptimizationLevel.String(), defaultOptLevel),
				AIEnhanced:         e.AIEnhanced.Bool(),
			}
		}
	}

	if ev := r.AIContentEval.Get(); r.AIContentEval.Truthy() && !ev.Error.Bool() {
		d.AIEvaluation = &domain.DetailedAIEvaluation{
			OverallScore:   ev.OverallAIScore.Float(),
			PlatformScores: orEmpty(ev.AIQualityScores),
			HasEvaluation:  true,
		}
	}

	if r.PageSpeed.Truthy() {
		ps := r.PageSpeed.Get()
		d.Performance = &domain.DetailedPerformance{
			Mobile:  orEmpty(ps.Mobile),
			Desktop: orEmpty(ps.Desktop),
		}
	}
	return d
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orEmpty(o domain.Object) domain.Object {
	if o == nil {
		return domain.Object{}
	}
	return o
}
