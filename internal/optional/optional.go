// Package optional provides a JSON-aware three-state value: absent, null, or set.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value records whether a JSON field was present in a document and, if so,
// whether it was null. The zero Value is absent and is skipped by the
// encoder when the field is tagged omitzero.
type Value[T any] struct {
	present bool
	null    bool
	v       T
}

// Of returns a present, non-null Value.
func Of[T any](v T) Value[T] {
	return Value[T]{present: true, v: v}
}

// Present reports whether the field appeared in the decoded document.
func (o Value[T]) Present() bool { return o.present }

// IsNull reports whether the field was present with a null value.
func (o Value[T]) IsNull() bool { return o.present && o.null }

// Get returns the value and true when present and non-null.
func (o Value[T]) Get() (T, bool) {
	if !o.present || o.null {
		var zero T
		return zero, false
	}
	return o.v, true
}

// IsZero lets encoding/json omit absent values under omitzero.
func (o Value[T]) IsZero() bool { return !o.present }

func (o *Value[T]) UnmarshalJSON(b []byte) error {
	o.present = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.null = true
		var zero T
		o.v = zero
		return nil
	}
	o.null = false
	return json.Unmarshal(b, &o.v)
}

func (o Value[T]) MarshalJSON() ([]byte, error) {
	if !o.present || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}
