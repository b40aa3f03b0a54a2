package kie

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Field is a flattened (dotted path, value) pair. It marshals as a two-element
// array so error breakdowns read naturally in the score report.
type Field [2]string

// Path returns the dotted field path.
func (f Field) Path() string { return f[0] }

// Value returns the leaf value.
func (f Field) Value() string { return f[1] }

// NormalizeStructure canonicalizes a decoded extraction before flattening:
// dict keys are visited in (length, lexical) order, scalar values are boxed
// into single-element string lists, empty values are dropped, lists of dicts
// normalize element-wise, and scalar lists keep only non-empty
// string/number elements.
func NormalizeStructure(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := sortedKeys(t)
		out := make(map[string]any, len(t))
		for _, k := range keys {
			value := NormalizeStructure(t[k])
			if isEmpty(value) {
				continue
			}
			if _, ok := value.([]any); !ok {
				value = []any{value}
			}
			out[k] = value
		}
		return out
	case []any:
		if allDicts(t) {
			out := make([]any, 0, len(t))
			for _, item := range t {
				norm := NormalizeStructure(item)
				if !isEmpty(norm) {
					out = append(out, norm)
				}
			}
			return out
		}
		out := make([]any, 0, len(t))
		for _, item := range t {
			s, ok := scalarString(item)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		s, _ := scalarString(t)
		s = strings.TrimSpace(s)
		if s == "" {
			return []any{}
		}
		return []any{s}
	}
}

// Flatten converts a normalized structure into its field pairs. List elements
// repeat the parent path, so repeated line items contribute one pair per
// field occurrence.
func Flatten(v any) []Field {
	var fields []Field
	var walk func(value any, path string)
	walk = func(value any, path string) {
		switch t := value.(type) {
		case map[string]any:
			for _, k := range sortedKeys(t) {
				childPath := k
				if path != "" {
					childPath = path + "." + k
				}
				walk(t[k], childPath)
			}
		case []any:
			for _, item := range t {
				walk(item, path)
			}
		default:
			s, _ := scalarString(t)
			fields = append(fields, Field{path, s})
		}
	}
	walk(v, "")
	return fields
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

func allDicts(items []any) bool {
	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case string:
		return t == ""
	default:
		return false
	}
}

// scalarString renders a leaf value the way it appeared in the source JSON.
// Numbers decoded with json.Number keep their literal text.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case bool:
		return strconv.FormatBool(t), false
	case nil:
		return "", false
	default:
		return "", false
	}
}
