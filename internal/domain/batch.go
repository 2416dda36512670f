package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoData is the reason reported when a batch has no record with a URL.
var ErrNoData = errors.New("no data")

// Batch is an audit input in any of its three accepted shapes: a single
// record, an object with a "results" list, or a bare list of records.
type Batch struct {
	// Records holds every object element of the input, valid or not.
	Records []AuditRecord
	// AnalysisDate is the top-level "analysis_date" of an object input.
	AnalysisDate string
	// Root is the top-level object when the input was an object with a URL.
	// Some analyzer versions put the single result there next to "results".
	Root *AuditRecord
	// Raw is the untouched input.
	Raw json.RawMessage
}

// NewBatch builds a batch from records created in code.
func NewBatch(records ...AuditRecord) Batch {
	return Batch{Records: records}
}

// ParseBatch decodes an audit document. Only malformed JSON is an error; any
// well-formed document yields a batch, possibly without valid records.
func ParseBatch(data []byte) (Batch, error) {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return Batch{}, fmt.Errorf("parse audit document: invalid JSON")
	}
	b := Batch{Raw: append(json.RawMessage(nil), trimmed...)}
	switch trimmed[0] {
	case '[':
		b.Records = decodeRecords(trimmed)
	case '{':
		var top map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &top); err != nil {
			return Batch{}, fmt.Errorf("parse audit document: %w", err)
		}
		var date Text
		if raw, ok := top["analysis_date"]; ok {
			_ = date.UnmarshalJSON(raw)
		}
		b.AnalysisDate = date.String()

		var root AuditRecord
		if err := json.Unmarshal(trimmed, &root); err == nil && root.HasURL() {
			b.Root = &root
		}
		if results, ok := top["results"]; ok {
			b.Records = decodeRecords(results)
		} else if b.Root != nil {
			b.Records = []AuditRecord{*b.Root}
		}
	}
	return b, nil
}

// decodeRecords keeps object elements of a JSON list and skips everything
// else. A non-list reads as empty.
func decodeRecords(raw json.RawMessage) []AuditRecord {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}
	records := make([]AuditRecord, 0, len(elems))
	for _, e := range elems {
		e = bytes.TrimSpace(e)
		if len(e) == 0 || e[0] != '{' {
			continue
		}
		var r AuditRecord
		if err := json.Unmarshal(e, &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	return records
}

// WithURL returns the records that carry a "url" key, in input order.
func (b Batch) WithURL() []AuditRecord {
	var out []AuditRecord
	for _, r := range b.Records {
		if r.HasURL() {
			out = append(out, r)
		}
	}
	return out
}

// Analyzable returns records with a URL and without an analyzer error. When
// none qualify, a root object with a URL is used on its own.
func (b Batch) Analyzable() []AuditRecord {
	var out []AuditRecord
	for _, r := range b.Records {
		if r.HasURL() && !r.HasError() {
			out = append(out, r)
		}
	}
	if len(out) == 0 && b.Root != nil {
		out = []AuditRecord{*b.Root}
	}
	return out
}
