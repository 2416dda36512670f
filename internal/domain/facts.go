package domain

// PageFacts is the per-URL view the issue and quick-win rules read.
type PageFacts struct {
	URL                string
	TitleExists        bool
	TitleLength        int
	TitleOptimal       bool
	DescriptionExists  bool
	DescriptionLength  int
	DescriptionOptimal bool
	SchemaCount        float64
	WordCount          int
	MobileViewport     bool
}

// Facts derives the rule inputs straight from a record.
func (r AuditRecord) Facts() PageFacts {
	meta := r.MetaAndHeadings.Get()
	return PageFacts{
		URL:                r.URL.String(),
		TitleExists:        meta.Title != "",
		TitleLength:        meta.TitleLength.Int(),
		TitleOptimal:       meta.TitleOptimal.Bool(),
		DescriptionExists:  meta.Description != "",
		DescriptionLength:  meta.DescriptionLength.Int(),
		DescriptionOptimal: meta.DescriptionOptimal.Bool(),
		SchemaCount:        r.SchemaTotal(),
		WordCount:          r.WordCount(),
		MobileViewport:     r.HasViewport(),
	}
}
