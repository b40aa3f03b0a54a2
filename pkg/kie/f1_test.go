package kie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalF1PerfectMatch(t *testing.T) {
	answers := map[string]any{
		"a.jpg": map[string]any{"total": "12.00", "date": "2024-01-01"},
	}
	preds := map[string]any{
		"a.jpg": map[string]any{"total": "12.00", "date": "2024-01-01"},
	}

	res := CalF1(preds, answers)
	require.InDelta(t, 1.0, res.F1, 1e-3)
	require.Equal(t, 2, res.TotalTP)
	require.Zero(t, res.TotalFNFP)
	require.Empty(t, res.PerDoc)
}

func TestCalF1MissingPrediction(t *testing.T) {
	answers := map[string]any{
		"a.jpg": map[string]any{"total": "12.00"},
	}

	res := CalF1(map[string]any{}, answers)
	require.InDelta(t, 0.0, res.F1, 1e-3)
	require.Equal(t, 1, res.TotalFNFP)
	require.Len(t, res.PerDoc["a.jpg"].FN, 1)
}

func TestCalF1FalsePositiveAndNegative(t *testing.T) {
	answers := map[string]any{
		"a.jpg": map[string]any{"total": "12.00"},
	}
	preds := map[string]any{
		"a.jpg": map[string]any{"total": "13.00", "extra": "x"},
	}

	// 0 tp, 2 fp, 1 fn.
	res := CalF1(preds, answers)
	require.Equal(t, 0, res.TotalTP)
	require.Equal(t, 3, res.TotalFNFP)
	doc := res.PerDoc["a.jpg"]
	require.Len(t, doc.FP, 2)
	require.Len(t, doc.FN, 1)
	require.Equal(t, 3, doc.ErrorNum)
	require.Equal(t, 1, doc.ErrorInfo["counter_extra"])
	require.Equal(t, 2, doc.ErrorInfo["counter_total"])
}

func TestCalF1DuplicateValuesConsumeOnce(t *testing.T) {
	answers := map[string]any{
		"a.jpg": map[string]any{"item": []any{"tea", "tea"}},
	}
	preds := map[string]any{
		"a.jpg": map[string]any{"item": []any{"tea"}},
	}

	res := CalF1(preds, answers)
	require.Equal(t, 1, res.TotalTP)
	require.Equal(t, 1, res.TotalFNFP)
}

func TestCalF1IgnoresUnknownDocuments(t *testing.T) {
	answers := map[string]any{
		"a.jpg": map[string]any{"total": "1"},
	}
	preds := map[string]any{
		"a.jpg":     map[string]any{"total": "1"},
		"ghost.jpg": map[string]any{"total": "999"},
	}

	res := CalF1(preds, answers)
	require.Equal(t, 1, res.TotalTP)
	require.Zero(t, res.TotalFNFP)
}

func TestCalF1PerFieldAccuracy(t *testing.T) {
	answers := map[string]any{
		"a.jpg": map[string]any{"total": "1", "date": "d"},
		"b.jpg": map[string]any{"total": "2"},
	}
	preds := map[string]any{
		"a.jpg": map[string]any{"total": "1", "date": "wrong"},
		"b.jpg": map[string]any{"total": "2"},
	}

	res := CalF1(preds, answers)
	require.Equal(t, 2, res.PerField["total"].TotalTP)
	require.Zero(t, res.PerField["total"].TotalFNorFP)
	require.InDelta(t, 1.0, res.PerField["total"].Acc, 1e-3)
	// date: 1 fp + 1 fn.
	require.Equal(t, 2, res.PerField["date"].TotalFNorFP)
	require.InDelta(t, 0.0, res.PerField["date"].Acc, 1e-3)
}
