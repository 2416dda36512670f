package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"geosummary/internal/util/jsonutil"
)

// Audit reports are produced by several generations of the analyzer and the
// same key is not always the same JSON type. The scalar types below decode
// whatever they are given and fall back to the zero value instead of failing
// the whole record.

// Number is a lenient float64: numbers, numeric strings and booleans decode,
// anything else reads as 0.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = 0
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	switch x := v.(type) {
	case float64:
		*n = Number(x)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			*n = Number(f)
		}
	case bool:
		if x {
			*n = 1
		}
	}
	// NaN and infinities cannot be serialized back to JSON.
	if f := float64(*n); math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
	}
	return nil
}

func (n Number) Float() float64 { return float64(n) }
func (n Number) Int() int       { return int(n) }

// Flag is a lenient boolean using truthiness: non-zero numbers, non-empty
// strings and non-empty collections are true.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	*f = false
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	*f = Flag(truthy(v))
	return nil
}

func (f Flag) Bool() bool { return bool(f) }

// Text is a lenient string: scalars are rendered, collections read as "".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = ""
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	switch x := v.(type) {
	case string:
		*t = Text(x)
	case float64:
		*t = Text(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		*t = Text(strconv.FormatBool(x))
	}
	return nil
}

func (t Text) String() string { return string(t) }

// Opt holds an optional section. A missing, null or wrongly shaped section
// reads as absent; accessors on the zero value return defaults.
type Opt[T any] struct {
	val  *T
	keys int
}

// Some wraps a present section. It counts as non-empty.
func Some[T any](v T) Opt[T] { return Opt[T]{val: &v, keys: 1} }

func (o *Opt[T]) UnmarshalJSON(b []byte) error {
	o.val, o.keys = nil, 0
	if isNull(b) {
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	o.val = &v
	var fields map[string]json.RawMessage
	if json.Unmarshal(b, &fields) == nil {
		o.keys = len(fields)
	}
	return nil
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if o.val == nil {
		return []byte("null"), nil
	}
	return jsonutil.MarshalNoEscape(*o.val)
}

// Present reports whether the section was supplied.
func (o Opt[T]) Present() bool { return o.val != nil }

// Truthy reports whether the section was supplied as a non-empty object.
func (o Opt[T]) Truthy() bool { return o.val != nil && o.keys > 0 }

// Get returns the section, or its zero value when absent.
func (o Opt[T]) Get() T {
	if o.val == nil {
		var zero T
		return zero
	}
	return *o.val
}

// Object is a passthrough JSON object that tolerates non-object input.
type Object map[string]any

func (o *Object) UnmarshalJSON(b []byte) error {
	*o = nil
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	*o = m
	return nil
}

// Truthy reports whether the object has any keys.
func (o Object) Truthy() bool { return len(o) > 0 }

// ErrorSet reports whether the object carries a truthy "error" key, the
// analyzer's convention for a section that failed to compute.
func (o Object) ErrorSet() bool { return truthy(o["error"]) }

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

func isNull(b []byte) bool {
	return len(bytes.TrimSpace(b)) == 0 || bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}
