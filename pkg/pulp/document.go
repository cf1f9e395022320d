// Package pulp provides stateless helpers for validating and extracting
// data from Pulp 3 REST API responses.
package pulp

import "encoding/json"

// Document wraps a decoded JSON value (object, array, scalar, or null)
// and exposes safe typed accessors. A Document never mutates the value
// it wraps; accessors return (value, ok) pairs instead of panicking on
// shape mismatches.
type Document struct {
	value any
}

// NewDocument wraps an already-decoded JSON value.
func NewDocument(v any) Document {
	return Document{value: v}
}

// DecodeDocument parses raw JSON bytes into a Document.
func DecodeDocument(data []byte) (Document, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Document{}, err
	}
	return Document{value: v}, nil
}

// Value returns the wrapped JSON value unchanged.
func (d Document) Value() any { return d.value }

// IsNull reports whether the document holds JSON null.
func (d Document) IsNull() bool { return d.value == nil }

// Object returns the document as a JSON object.
func (d Document) Object() (map[string]any, bool) {
	obj, ok := d.value.(map[string]any)
	return obj, ok
}

// Array returns the document as an ordered sequence of Documents.
func (d Document) Array() ([]Document, bool) {
	raw, ok := d.value.([]any)
	if !ok {
		return nil, false
	}
	out := make([]Document, len(raw))
	for i, v := range raw {
		out[i] = Document{value: v}
	}
	return out, true
}

// Field looks up a key on an object document. The ok result is false
// when the document is not an object or the key is absent; a key that is
// present with an explicit null value yields (null Document, true), so
// callers can tell absence apart from null.
func (d Document) Field(name string) (Document, bool) {
	obj, ok := d.Object()
	if !ok {
		return Document{}, false
	}
	v, ok := obj[name]
	if !ok {
		return Document{}, false
	}
	return Document{value: v}, true
}

// StringField returns the string value of a field, false when the field
// is absent or not a string.
func (d Document) StringField(name string) (string, bool) {
	f, ok := d.Field(name)
	if !ok {
		return "", false
	}
	s, ok := f.value.(string)
	return s, ok
}

// StringSliceField returns a field holding an array of strings.
// Non-string entries are skipped.
func (d Document) StringSliceField(name string) ([]string, bool) {
	f, ok := d.Field(name)
	if !ok {
		return nil, false
	}
	arr, ok := f.value.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}
