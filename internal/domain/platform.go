package domain

import (
	"bytes"
	"encoding/json"

	"geosummary/internal/util/jsonutil"
)

// KnownPlatforms are the AI platforms whose compatibility is averaged across
// records, in reporting order.
var KnownPlatforms = []string{"chatgpt", "claude", "gemini", "bing_chat"}

// PlatformEntry is one platform's block inside platform_analysis.
type PlatformEntry struct {
	CompatibilityScore Number `json:"compatibility_score"`
	HybridScore        Number `json:"hybrid_score"`
	AIScore            Number `json:"ai_score"`
	OptimizationLevel  Text   `json:"optimization_level"`
	AIEnhanced         Flag   `json:"ai_enhanced"`
}

// PlatformAnalysis maps platform name to its entry. The analyzer also writes
// a "summary" key and, on failure, an "error" key; neither is a platform.
type PlatformAnalysis struct {
	failed  bool
	keys    int
	names   []string
	entries map[string]PlatformEntry
}

// NewPlatformAnalysis builds an analysis with entries in the given order.
func NewPlatformAnalysis(names []string, entries map[string]PlatformEntry) PlatformAnalysis {
	pa := PlatformAnalysis{entries: make(map[string]PlatformEntry, len(names))}
	for _, n := range names {
		if _, ok := entries[n]; !ok {
			continue
		}
		pa.names = append(pa.names, n)
		pa.entries[n] = entries[n]
	}
	pa.keys = len(pa.names)
	return pa
}

func (p *PlatformAnalysis) UnmarshalJSON(b []byte) error {
	*p = PlatformAnalysis{}
	keys, fields, ok := orderedObject(bytes.TrimSpace(b))
	if !ok {
		return nil
	}
	p.keys = len(keys)
	p.entries = make(map[string]PlatformEntry)
	for _, k := range keys {
		raw := fields[k]
		if k == "error" {
			var f Flag
			_ = f.UnmarshalJSON(raw)
			p.failed = f.Bool()
			continue
		}
		if k == "summary" {
			continue
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		var e PlatformEntry
		if err := json.Unmarshal(trimmed, &e); err != nil {
			continue
		}
		p.names = append(p.names, k)
		p.entries[k] = e
	}
	return nil
}

func (p PlatformAnalysis) MarshalJSON() ([]byte, error) {
	if p.entries == nil {
		return []byte("null"), nil
	}
	return jsonutil.MarshalNoEscape(p.entries)
}

// Usable reports whether the section is present, non-empty and not marked
// as failed.
func (p PlatformAnalysis) Usable() bool { return p.keys > 0 && !p.failed }

// Names lists platforms in document order.
func (p PlatformAnalysis) Names() []string { return append([]string{}, p.names...) }

// Entry returns the platform's block and whether it was reported.
func (p PlatformAnalysis) Entry(name string) (PlatformEntry, bool) {
	e, ok := p.entries[name]
	return e, ok
}
