package reply

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template is one summary/recommendations pattern pair. Each pattern's first
// capture group is the field text.
type Template struct {
	Summary         *regexp.Regexp
	Recommendations *regexp.Regexp
}

// LabelSet holds the language-specific labels the pattern and split stages
// look for.
type LabelSet struct {
	Name       string
	Templates  []Template
	BreakWords []string
	// recPrefix strips a leftover recommendations heading from the start of
	// the recommendations field.
	recPrefix *regexp.Regexp
}

// NewLabelSet compiles a label set. Patterns are matched case-insensitively
// with "." spanning newlines.
func NewLabelSet(name string, pairs [][2]string, breakWords, recLabels []string) (LabelSet, error) {
	ls := LabelSet{Name: name, BreakWords: append([]string(nil), breakWords...)}
	for i, p := range pairs {
		sum, err := regexp.Compile(`(?is)` + p[0])
		if err != nil {
			return LabelSet{}, fmt.Errorf("label set %s: template %d summary: %w", name, i+1, err)
		}
		rec, err := regexp.Compile(`(?is)` + p[1])
		if err != nil {
			return LabelSet{}, fmt.Errorf("label set %s: template %d recommendations: %w", name, i+1, err)
		}
		if sum.NumSubexp() < 1 || rec.NumSubexp() < 1 {
			return LabelSet{}, fmt.Errorf("label set %s: template %d needs a capture group in both patterns", name, i+1)
		}
		ls.Templates = append(ls.Templates, Template{Summary: sum, Recommendations: rec})
	}
	if len(recLabels) > 0 {
		quoted := make([]string, 0, len(recLabels))
		for _, l := range recLabels {
			quoted = append(quoted, regexp.QuoteMeta(l))
		}
		re, err := regexp.Compile(`(?i)^(?:` + strings.Join(quoted, "|") + `)[:\s]*`)
		if err != nil {
			return LabelSet{}, fmt.Errorf("label set %s: recommendation labels: %w", name, err)
		}
		ls.recPrefix = re
	}
	return ls, nil
}

func mustLabelSet(name string, pairs [][2]string, breakWords, recLabels []string) LabelSet {
	ls, err := NewLabelSet(name, pairs, breakWords, recLabels)
	if err != nil {
		panic(err)
	}
	return ls
}

// Hungarian is the default set. Hungarian replies mix in English headings
// often enough that both are matched.
var Hungarian = mustLabelSet("hu",
	[][2]string{
		{`summary[:\s]+(.*?)(?:recommendations|javaslat)`, `recommendations[:\s]+(.*)`},
		{`1\.\s*(?:összefoglaló|summary)[:\s]*(.*?)(?:2\.|recommendations|javaslat)`, `2\.\s*(?:javaslatok|recommendations)[:\s]*(.*)`},
		{`ÖSSZEFOGLALÓ[:\s]*(.*?)(?:JAVASLATOK|RECOMMENDATIONS)`, `(?:JAVASLATOK|RECOMMENDATIONS)[:\s]*(.*)`},
		{`(?:összefoglaló|summary)[:\s]*(.*?)(?:javaslatok|recommendations|ajánlások)`, `(?:javaslatok|recommendations|ajánlások)[:\s]*(.*)`},
	},
	[]string{"javaslatok", "recommendations", "ajánlások", "2.", "következtetések"},
	[]string{"javaslatok", "recommendations", "ajánlások"},
)

var English = mustLabelSet("en",
	[][2]string{
		{`summary[:\s]+(.*?)recommendations`, `recommendations[:\s]+(.*)`},
		{`1\.\s*summary[:\s]*(.*?)(?:2\.|recommendations)`, `2\.\s*recommendations[:\s]*(.*)`},
		{`(?:summary|overview)[:\s]*(.*?)(?:recommendations|suggestions|next steps)`, `(?:recommendations|suggestions|next steps)[:\s]*(.*)`},
	},
	[]string{"recommendations", "suggestions", "next steps", "2.", "conclusions"},
	[]string{"recommendations", "suggestions", "next steps"},
)

// BuiltinLabelSets returns the sets available without configuration.
func BuiltinLabelSets() map[string]LabelSet {
	return map[string]LabelSet{Hungarian.Name: Hungarian, English.Name: English}
}

type labelSetFile struct {
	LabelSets map[string]labelSetYAML `yaml:"label_sets"`
}

type labelSetYAML struct {
	Templates []struct {
		Summary         string `yaml:"summary"`
		Recommendations string `yaml:"recommendations"`
	} `yaml:"templates"`
	BreakWords           []string `yaml:"break_words"`
	RecommendationLabels []string `yaml:"recommendation_labels"`
}

// LoadLabelSets reads extra label sets from a YAML file, keyed by language
// code. A set with the name of a built-in one replaces it.
func LoadLabelSets(path string) (map[string]LabelSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label sets: %w", err)
	}
	var file labelSetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse label sets: %w", err)
	}
	if len(file.LabelSets) == 0 {
		return nil, errors.New("parse label sets: no label_sets defined")
	}

	names := make([]string, 0, len(file.LabelSets))
	for name := range file.LabelSets {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make(map[string]LabelSet, len(names))
	for _, name := range names {
		raw := file.LabelSets[name]
		if len(raw.Templates) == 0 {
			return nil, fmt.Errorf("label set %s: at least one template is required", name)
		}
		pairs := make([][2]string, 0, len(raw.Templates))
		for _, t := range raw.Templates {
			if strings.TrimSpace(t.Summary) == "" || strings.TrimSpace(t.Recommendations) == "" {
				return nil, fmt.Errorf("label set %s: templates need both summary and recommendations patterns", name)
			}
			pairs = append(pairs, [2]string{t.Summary, t.Recommendations})
		}
		ls, err := NewLabelSet(name, pairs, raw.BreakWords, raw.RecommendationLabels)
		if err != nil {
			return nil, err
		}
		sets[name] = ls
	}
	return sets, nil
}
