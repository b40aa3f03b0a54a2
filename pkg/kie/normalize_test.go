package kie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFullwidthToHalfwidth(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ＡＢＣ１２３", "ABC123"},
		{"￥１００", "¥100"},
		{"２５℃", "25°C"},
		{"a—b", "ab"}, // em-dash folds to hyphen, hyphens are stripped
		{"a-b–c", "abc"},
		{"it’s", "it's"},
		{"总计。", "总计"},
		{"end.", "end"},
		{"顿、号", "顿,号"},
		{"　x", " x"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FullwidthToHalfwidth(tc.in), "input %q", tc.in)
	}
}

func TestRemoveUnnecessarySpaces(t *testing.T) {
	require.Equal(t, `{"a":"b"}`, RemoveUnnecessarySpaces(" {\"a\": \"b\"} "))
	require.Equal(t, `{"a":1}`, RemoveUnnecessarySpaces("```json\n{\"a\": 1}\n```"))
	require.Equal(t, "xy", RemoveUnnecessarySpaces("```\nx y\n```"))
}

func TestNormalizeText(t *testing.T) {
	require.Equal(t, "¥1,000", NormalizeText("￥１，０００"))
	require.Equal(t, "TOTAL:12.30", NormalizeText("TOTAL: 12.30"))
}

func TestNormalizeStringsNested(t *testing.T) {
	in := map[string]any{
		"total": "１２",
		"items": []any{
			map[string]any{"name": "ｃａｋｅ"},
			"ｊｕｉｃｅ",
			3.0,
		},
	}
	out := NormalizeStrings(in, NormalizeText).(map[string]any)
	require.Equal(t, "12", out["total"])
	items := out["items"].([]any)
	require.Equal(t, "cake", items[0].(map[string]any)["name"])
	require.Equal(t, "juice", items[1])
	require.Equal(t, 3.0, items[2])
}
