package kie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlattenRepeatedListElements(t *testing.T) {
	data := map[string]any{
		"menu": []any{
			map[string]any{"name": []any{"cake"}, "count": []any{"2"}},
			map[string]any{"name": []any{"juice"}, "count": []any{"1"}},
		},
	}

	fields := Flatten(data)
	require.ElementsMatch(t, []Field{
		{"menu.name", "cake"},
		{"menu.count", "2"},
		{"menu.name", "juice"},
		{"menu.count", "1"},
	}, fields)
}

func TestNormalizeStructureBoxesScalars(t *testing.T) {
	norm := NormalizeStructure(map[string]any{"total": "12.00"})
	m, ok := norm.(map[string]any)
	require.True(t, ok)
	require.Equal(t, []any{"12.00"}, m["total"])
}

func TestNormalizeStructureDropsEmptyValues(t *testing.T) {
	norm := NormalizeStructure(map[string]any{
		"total":   "",
		"store":   map[string]any{},
		"items":   []any{},
		"address": "main st",
	})
	m := norm.(map[string]any)
	require.NotContains(t, m, "total")
	require.NotContains(t, m, "store")
	require.NotContains(t, m, "items")
	require.Contains(t, m, "address")
}

func TestNormalizeStructureScalarListFiltering(t *testing.T) {
	norm := NormalizeStructure([]any{" a ", "", 3.5, []any{"nested"}})
	require.Equal(t, []any{"a", "3.5"}, norm)
}

func TestFlattenNestedPaths(t *testing.T) {
	data := map[string]any{
		"store": map[string]any{
			"name": "Acme",
			"addr": map[string]any{"city": "Springfield"},
		},
	}
	fields := Flatten(NormalizeStructure(data))
	require.ElementsMatch(t, []Field{
		{"store.name", "Acme"},
		{"store.addr.city", "Springfield"},
	}, fields)
}
