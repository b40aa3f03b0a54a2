package kie

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Summary is the headline block of one dataset's evaluation.
type Summary struct {
	F1Score          float64 `json:"f1_score"`
	TotalPredictions int     `json:"total_predictions"`
	TotalGroundTruth int     `json:"total_ground_truth"`
	MatchedSamples   int     `json:"matched_samples"`
}

// DatasetReport is the evaluation result for one dataset.
type DatasetReport struct {
	Dataset   string                `json:"dataset"`
	Summary   Summary               `json:"summary"`
	ClassF1   map[string]*FieldStat `json:"class_f1_score"`
	ErrorInfo map[string]*DocErrors `json:"f1_error_info"`
}

// SortedFieldPaths orders field paths by total_fn_or_fp descending, path
// ascending on ties, so the worst fields come first in every report format.
func SortedFieldPaths(fields map[string]*FieldStat) []string {
	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		a, b := fields[paths[i]], fields[paths[j]]
		if a.TotalFNorFP != b.TotalFNorFP {
			return a.TotalFNorFP > b.TotalFNorFP
		}
		return paths[i] < paths[j]
	})
	return paths
}

// SortedDocNames orders document names by error_num descending, name ascending
// on ties.
func SortedDocNames(docs map[string]*DocErrors) []string {
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := docs[names[i]], docs[names[j]]
		if a.ErrorNum != b.ErrorNum {
			return a.ErrorNum > b.ErrorNum
		}
		return names[i] < names[j]
	})
	return names
}

// MarshalJSON writes class_f1_score and f1_error_info as objects whose keys
// keep the worst-first order, which encoding/json's map handling would
// otherwise replace with alphabetical keys.
func (d DatasetReport) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"dataset":`)
	if err := encodeValue(&buf, d.Dataset); err != nil {
		return nil, err
	}
	buf.WriteString(`,"summary":`)
	if err := encodeValue(&buf, d.Summary); err != nil {
		return nil, err
	}
	buf.WriteString(`,"class_f1_score":`)
	if err := encodeOrdered(&buf, SortedFieldPaths(d.ClassF1), func(k string) any { return d.ClassF1[k] }); err != nil {
		return nil, err
	}
	buf.WriteString(`,"f1_error_info":`)
	if err := encodeOrdered(&buf, SortedDocNames(d.ErrorInfo), func(k string) any { return d.ErrorInfo[k] }); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func encodeOrdered(buf *bytes.Buffer, keys []string, value func(string) any) error {
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeValue(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := encodeValue(buf, value(k)); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// OverallSummary aggregates a multi-dataset run.
type OverallSummary struct {
	NumDatasets      int     `json:"num_datasets"`
	AverageF1Score   float64 `json:"average_f1_score"`
	TotalPredictions int     `json:"total_predictions"`
	TotalGroundTruth int     `json:"total_ground_truth"`
	TotalMatched     int     `json:"total_matched_samples"`
}

// RunReport is the full score report. It marshals as an object keyed by
// dataset name, with an extra _summary entry for multi-dataset runs.
type RunReport struct {
	Datasets []DatasetReport
	Summary  *OverallSummary
}

func (r RunReport) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Datasets)+1)
	for _, ds := range r.Datasets {
		out[ds.Dataset] = ds
	}
	if r.Summary != nil {
		out["_summary"] = r.Summary
	}
	return json.Marshal(out)
}

// EvaluateDataset normalizes both sides, runs the field F1, and packages the
// result. preds and groundTruth map document names to decoded extractions.
func EvaluateDataset(name string, preds, groundTruth map[string]any) DatasetReport {
	normPreds := NormalizeStrings(preds, NormalizeText).(map[string]any)
	normGTs := NormalizeStrings(groundTruth, NormalizeText).(map[string]any)

	res := CalF1(normPreds, normGTs)

	matched := 0
	for docName := range normPreds {
		if _, ok := normGTs[docName]; ok {
			matched++
		}
	}

	return DatasetReport{
		Dataset: name,
		Summary: Summary{
			F1Score:          res.F1,
			TotalPredictions: len(normPreds),
			TotalGroundTruth: len(normGTs),
			MatchedSamples:   matched,
		},
		ClassF1:   res.PerField,
		ErrorInfo: res.PerDoc,
	}
}

// Summarize fills in the cross-dataset summary for multi-dataset runs.
func Summarize(datasets []DatasetReport) *OverallSummary {
	if len(datasets) < 2 {
		return nil
	}
	s := &OverallSummary{NumDatasets: len(datasets)}
	var totalF1 float64
	for _, ds := range datasets {
		totalF1 += ds.Summary.F1Score
		s.TotalPredictions += ds.Summary.TotalPredictions
		s.TotalGroundTruth += ds.Summary.TotalGroundTruth
		s.TotalMatched += ds.Summary.MatchedSamples
	}
	s.AverageF1Score = totalF1 / float64(len(datasets))
	return s
}
