// Package kie implements the key-information-extraction scoring pipeline:
// model-output post-processing, value normalization, structure flattening,
// and the micro-averaged field F1.
package kie

import (
	"regexp"
	"strings"
)

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFenceRe  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
	spacesRe    = regexp.MustCompile(`\s+`)
)

// FullwidthToHalfwidth folds fullwidth punctuation and letters to their ASCII
// counterparts and strips characters that OCR-style ground truth treats as
// noise (hyphens, en-dashes, trailing periods). Predictions and labels must
// go through the same mapping or the field F1 is meaningless.
func FullwidthToHalfwidth(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == 0x3000:
			b.WriteRune(0x0020)
		case r == 0xFFE5: // ￥
			b.WriteRune(0x00A5)
		case r == 0x2014: // —
			b.WriteRune(0x002D)
		case r == 0x2103: // ℃
			b.WriteRune(0x00B0)
			b.WriteRune('C')
		case r >= 0xFF01 && r <= 0xFF5E:
			b.WriteRune(r - 0xFEE0)
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	out = strings.ReplaceAll(out, "、", ",")
	out = strings.ReplaceAll(out, "-", "")
	out = strings.ReplaceAll(out, "–", "")
	out = strings.ReplaceAll(out, "’", "'")
	out = strings.TrimRight(out, "。.")
	return out
}

// RemoveUnnecessarySpaces unwraps a code fence if present and deletes all
// remaining whitespace.
func RemoveUnnecessarySpaces(text string) string {
	if strings.Contains(text, "```json") {
		if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
			text = strings.TrimSpace(m[1])
		}
	} else if strings.Contains(text, "```") {
		if m := anyFenceRe.FindStringSubmatch(text); m != nil {
			text = strings.TrimSpace(m[1])
		}
	}
	return spacesRe.ReplaceAllString(text, "")
}

// NormalizeText is the comparison normalization applied to every string value
// on both the prediction and ground-truth side.
func NormalizeText(text string) string {
	return RemoveUnnecessarySpaces(FullwidthToHalfwidth(text))
}

// NormalizeStrings applies f to every string value in a decoded JSON tree.
// Dicts recurse; list elements recurse when dicts and map when strings;
// other scalars pass through unchanged.
func NormalizeStrings(v any, f func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = NormalizeStrings(val, f)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			switch it := item.(type) {
			case map[string]any:
				out[i] = NormalizeStrings(it, f)
			case string:
				out[i] = f(it)
			default:
				out[i] = item
			}
		}
		return out
	case string:
		return f(t)
	default:
		return v
	}
}
