package kie

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortedFieldPathsWorstFirst(t *testing.T) {
	fields := map[string]*FieldStat{
		"aa_good": {TotalTP: 5, TotalFNorFP: 0},
		"mm_soso": {TotalTP: 3, TotalFNorFP: 1},
		"zz_bad":  {TotalTP: 1, TotalFNorFP: 2},
	}
	require.Equal(t, []string{"zz_bad", "mm_soso", "aa_good"}, SortedFieldPaths(fields))
}

func TestSortedFieldPathsTieBreaksByPath(t *testing.T) {
	fields := map[string]*FieldStat{
		"beta":  {TotalFNorFP: 1},
		"alpha": {TotalFNorFP: 1},
	}
	require.Equal(t, []string{"alpha", "beta"}, SortedFieldPaths(fields))
}

func TestSortedDocNamesWorstFirst(t *testing.T) {
	docs := map[string]*DocErrors{
		"a.jpg": {ErrorNum: 1},
		"b.jpg": {ErrorNum: 4},
		"c.jpg": {ErrorNum: 2},
	}
	require.Equal(t, []string{"b.jpg", "c.jpg", "a.jpg"}, SortedDocNames(docs))
}

func TestDatasetReportMarshalKeepsWorstFirstOrder(t *testing.T) {
	report := DatasetReport{
		Dataset: "Retail",
		Summary: Summary{F1Score: 0.5},
		ClassF1: map[string]*FieldStat{
			"aa_good": {TotalTP: 5, TotalFNorFP: 0, Acc: 1},
			"zz_bad":  {TotalTP: 1, TotalFNorFP: 2, Acc: 0.5},
		},
		ErrorInfo: map[string]*DocErrors{
			"a.jpg": {ErrorNum: 1, ErrorInfo: map[string]int{"counter_zz_bad": 1}},
			"z.jpg": {ErrorNum: 3, ErrorInfo: map[string]int{"counter_zz_bad": 3}},
		},
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)
	out := string(data)

	// Alphabetical map marshaling would put aa_good before zz_bad.
	require.Less(t, strings.Index(out, `"zz_bad"`), strings.Index(out, `"aa_good"`))
	require.Less(t, strings.Index(out, `"z.jpg"`), strings.Index(out, `"a.jpg"`))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "Retail", decoded["dataset"])
	require.Len(t, decoded["class_f1_score"], 2)
	require.Len(t, decoded["f1_error_info"], 2)
}

func TestRunReportMarshalNestsOrderedDatasets(t *testing.T) {
	report := RunReport{
		Datasets: []DatasetReport{{
			Dataset: "Retail",
			ClassF1: map[string]*FieldStat{
				"aa_good": {TotalFNorFP: 0},
				"zz_bad":  {TotalFNorFP: 2},
			},
			ErrorInfo: map[string]*DocErrors{},
		}},
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)
	out := string(data)
	require.Less(t, strings.Index(out, `"zz_bad"`), strings.Index(out, `"aa_good"`))
}
