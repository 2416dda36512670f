package audit

import (
	"fmt"

	"geosummary/internal/domain"
)

const (
	maxMainIssues    = 5
	maxCompactIssues = 3
	thinContentWords = 300
)

// DetectIssues lists failing checks for one page in priority order, at most
// five labels.
func DetectIssues(f domain.PageFacts) []string {
	issues := make([]string, 0, maxMainIssues)
	if !f.TitleOptimal {
		issues = append(issues, "Title tag is not optimal")
	}
	if !f.DescriptionOptimal {
		issues = append(issues, "Meta description missing or not optimal")
	}
	if f.SchemaCount == 0 {
		issues = append(issues, "No Schema.org markup")
	}
	if f.WordCount < thinContentWords {
		issues = append(issues, "Thin content (under 300 words)")
	}
	if !f.MobileViewport {
		issues = append(issues, "No mobile viewport")
	}
	if len(issues) > maxMainIssues {
		issues = issues[:maxMainIssues]
	}
	return issues
}

// compactIssueCodes is the short form used in the compact payload; the
// viewport check is left out there.
func compactIssueCodes(f domain.PageFacts) []string {
	codes := make([]string, 0, 4)
	if !f.TitleOptimal {
		codes = append(codes, "title")
	}
	if !f.DescriptionOptimal {
		codes = append(codes, "description")
	}
	if f.SchemaCount == 0 {
		codes = append(codes, "schema")
	}
	if f.WordCount < thinContentWords {
		codes = append(codes, "content")
	}
	if len(codes) > maxCompactIssues {
		codes = codes[:maxCompactIssues]
	}
	return codes
}

const (
	ImpactHigh   = "High"
	ImpactMedium = "Medium"
	EffortLow    = "Low"
	EffortMedium = "Medium"
)

const (
	QuickWinTitle       = "Title optimization"
	QuickWinDescription = "Add meta description"
	QuickWinSchema      = "Add Schema.org markup"
)

// DetectQuickWins returns the low-effort fixes that apply to one page. The
// rules are independent, so a page can yield several wins.
func DetectQuickWins(f domain.PageFacts) []domain.QuickWin {
	var wins []domain.QuickWin
	if f.TitleExists && !f.TitleOptimal && (f.TitleLength < 30 || f.TitleLength > 60) {
		wins = append(wins, domain.QuickWin{
			URL:          f.URL,
			Type:         QuickWinTitle,
			CurrentState: fmt.Sprintf("%d characters", f.TitleLength),
			TargetState:  "30-60 characters",
			Impact:       ImpactHigh,
			Effort:       EffortLow,
		})
	}
	if !f.DescriptionExists || f.DescriptionLength < 120 {
		wins = append(wins, domain.QuickWin{
			URL:          f.URL,
			Type:         QuickWinDescription,
			CurrentState: fmt.Sprintf("%d characters", f.DescriptionLength),
			TargetState:  "120-160 characters",
			Impact:       ImpactMedium,
			Effort:       EffortLow,
		})
	}
	if f.SchemaCount == 0 {
		wins = append(wins, domain.QuickWin{
			URL:          f.URL,
			Type:         QuickWinSchema,
			CurrentState: "0 schema elements",
			TargetState:  "At least FAQ or Article schema",
			Impact:       ImpactHigh,
			Effort:       EffortMedium,
		})
	}
	return wins
}
