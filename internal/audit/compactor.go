package audit

import (
	"math"

	"go.uber.org/zap"

	"geosummary/internal/domain"
)

// Limits of the compact payload. They encode the generator's prompt budget.
const (
	MaxListedURLs   = 3
	MaxDetailedURLs = 2
	listedURLLen    = 50
	detailedURLLen  = 30
	keyIssueScore   = 50
)

type Compactor struct {
	logger *zap.Logger
}

func NewCompactor(logger *zap.Logger) *Compactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compactor{logger: logger}
}

// Compact reduces a batch to the bounded payload sent to the generator.
// A batch without any record carrying a URL yields an error marker.
func (c *Compactor) Compact(batch domain.Batch) domain.Compacted {
	records := batch.WithURL()
	if len(records) == 0 {
		c.logger.Warn("compact: no records with url", zap.Int("records", len(batch.Records)))
		return domain.Compacted{Err: domain.ErrNoData}
	}

	p := &domain.CompactPayload{
		Summary:   domain.CompactSummary{URLsCount: len(records)},
		Scores:    make([]domain.CompactScore, 0, MaxDetailedURLs),
		KeyIssues: []domain.KeyIssue{},
		Platforms: map[string]float64{},
	}
	for i, r := range records {
		if i == MaxListedURLs {
			break
		}
		p.Summary.URLs = append(p.Summary.URLs, truncateRunes(r.URL.String(), listedURLLen))
	}

	platformScores := map[string][]float64{}
	for i, r := range records {
		if i == MaxDetailedURLs {
			break
		}
		f := r.Facts()
		score := domain.CompactScore{
			URL:         truncateRunes(f.URL, detailedURLLen),
			AIScore:     r.Score(),
			MetaTitleOK: f.TitleOptimal,
			MetaDescOK:  f.DescriptionOptimal,
			SchemaCount: f.SchemaCount,
			WordCount:   f.WordCount,
			MobileOK:    f.MobileViewport,
		}
		p.Scores = append(p.Scores, score)

		if r.PlatformAnalysis.Usable() {
			for _, name := range domain.KnownPlatforms {
				if e, ok := r.PlatformAnalysis.Entry(name); ok {
					platformScores[name] = append(platformScores[name], e.CompatibilityScore.Float())
				}
			}
		}

		if score.AIScore < keyIssueScore {
			p.KeyIssues = append(p.KeyIssues, domain.KeyIssue{
				URL:    score.URL,
				Score:  score.AIScore,
				Issues: compactIssueCodes(f),
			})
		}
	}
	for name, scores := range platformScores {
		p.Platforms[name] = round1(mean(scores))
	}

	c.logger.Debug("compact: payload built",
		zap.Int("urls", p.Summary.URLsCount),
		zap.Int("detailed", len(p.Scores)),
		zap.Int("key_issues", len(p.KeyIssues)),
	)
	return domain.Compacted{Payload: p}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
