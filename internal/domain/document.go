package domain

import (
	"reflect"
	"strings"
)

// Document is a schemaless record as posted by the client.
type Document map[string]any

// IDField is the identifier key every store backend uses.
const IDField = "_id"

const (
	QueryCollection          = "query"
	RecommendationCollection = "recommendation"
)

// Filter matches documents whose field values equal the given ones.
// Keys may be dotted paths into embedded objects, e.g. "queryUser.email".
type Filter map[string]any

// WithoutID returns a shallow copy of d with the identifier removed.
func (d Document) WithoutID() Document {
	out := make(Document, len(d))
	for k, v := range d {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	return out
}

// Lookup resolves a dotted path against nested objects.
func (d Document) Lookup(path []string) (any, bool) {
	var cur any = map[string]any(d)
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	}
	return nil, false
}

// Apply merges fields into d the way a $set does: dotted keys address
// embedded objects, creating them when missing. Embedded objects on the
// path are copied before they are changed. Apply reports whether any
// value differs from before.
func (d Document) Apply(fields Document) bool {
	modified := false
	for key, value := range fields {
		path := strings.Split(key, ".")
		if old, ok := d.Lookup(path); ok && reflect.DeepEqual(old, value) {
			continue
		}
		setPath(d, path, value)
		modified = true
	}
	return modified
}

func setPath(m map[string]any, path []string, value any) {
	if len(path) == 1 {
		m[path[0]] = value
		return
	}
	child := map[string]any{}
	if existing, ok := asMap(m[path[0]]); ok {
		for k, v := range existing {
			child[k] = v
		}
	}
	setPath(child, path[1:], value)
	m[path[0]] = child
}
