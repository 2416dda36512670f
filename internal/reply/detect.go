package reply

import (
	"sort"

	"github.com/pemistahl/lingua-go"
)

// LanguageDetector guesses the language code ("hu", "en", ...) of a reply.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

var linguaLanguages = map[string]lingua.Language{
	"cs": lingua.Czech,
	"de": lingua.German,
	"en": lingua.English,
	"es": lingua.Spanish,
	"fr": lingua.French,
	"hu": lingua.Hungarian,
	"it": lingua.Italian,
	"nl": lingua.Dutch,
	"pl": lingua.Polish,
	"pt": lingua.Portuguese,
	"ro": lingua.Romanian,
	"sk": lingua.Slovak,
}

type linguaDetector struct {
	detector lingua.LanguageDetector
	codes    map[lingua.Language]string
}

// NewLanguageDetector builds a detector restricted to the given codes.
// Unknown codes are ignored; English and Hungarian are always included.
func NewLanguageDetector(codes ...string) LanguageDetector {
	wanted := map[string]bool{"en": true, "hu": true}
	for _, c := range codes {
		if _, ok := linguaLanguages[c]; ok {
			wanted[c] = true
		}
	}
	keys := make([]string, 0, len(wanted))
	for c := range wanted {
		keys = append(keys, c)
	}
	sort.Strings(keys)

	d := &linguaDetector{codes: make(map[lingua.Language]string, len(keys))}
	langs := make([]lingua.Language, 0, len(keys))
	for _, c := range keys {
		l := linguaLanguages[c]
		langs = append(langs, l)
		d.codes[l] = c
	}
	d.detector = lingua.NewLanguageDetectorBuilder().FromLanguages(langs...).Build()
	return d
}

func (d *linguaDetector) Detect(text string) (string, bool) {
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	code, ok := d.codes[lang]
	return code, ok
}
