package runlog

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/core"
)

func TestSanitizeModelName(t *testing.T) {
	require.Equal(t, "openai_gpt-4o-mini", SanitizeModelName("openai/gpt-4o-mini"))
	require.Equal(t, "claude-3-5-haiku-latest", SanitizeModelName("claude-3-5-haiku-latest"))
	require.Equal(t, "a_b_c", SanitizeModelName("a b:c"))
}

func TestResultPath(t *testing.T) {
	path := ResultPath("results", "Retail", "org/model")
	require.Equal(t, filepath.Join("results", "Retail", "result_org_model.jsonl"), path)
}

func TestExtractImageName(t *testing.T) {
	require.Equal(t, "receipt.jpg", ExtractImageName("images/receipt.jpg"))
	require.Equal(t, "receipt.jpg", ExtractImageName("receipt.jpg"))
}

func TestWriterAppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result_mock.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(core.Prediction{
		Dataset:     "Retail",
		URL:         "images/a.jpg",
		ModelResult: map[string]any{"total": "12.50"},
	}))
	require.NoError(t, w.Append(core.Prediction{
		Dataset:       "Retail",
		URL:           "images/b.jpg",
		Error:         "request failed",
		RetryAttempts: 10,
	}))
	require.NoError(t, w.Append(core.Prediction{
		Dataset: "Retail",
		URL:     "images/c.jpg",
		ModelResult: map[string]any{
			"_raw_text":    "not json",
			"_parse_error": "unexpected token",
		},
	}))
	require.Equal(t, 3, w.Count())
	require.NoError(t, w.Close())

	var warnings bytes.Buffer
	preds, err := LoadPredictions(path, &warnings)
	require.NoError(t, err)

	// Only the parseable prediction survives.
	require.Len(t, preds["Retail"], 1)
	result, ok := preds["Retail"]["a.jpg"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "12.50", result["total"])

	require.Contains(t, warnings.String(), "request failed")
	require.Contains(t, warnings.String(), "never parsed")
}

func TestLoadPredictionsSkipsBadLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.jsonl")
	content := `{"dataset":"Retail","url":"images/a.jpg","model_result":{"k":"v"}}
not json at all
{"dataset":"Retail","model_result":{"k":"v"}}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	var warnings bytes.Buffer
	preds, err := LoadPredictions(path, &warnings)
	require.NoError(t, err)
	require.Len(t, preds["Retail"], 1)
	require.Contains(t, warnings.String(), "line 2")
	require.Contains(t, warnings.String(), "missing url")
}

func TestBundle(t *testing.T) {
	dir := t.TempDir()
	resultPath := filepath.Join(dir, "result_mock.jsonl")
	require.NoError(t, os.WriteFile(resultPath, []byte(`{"dataset":"Retail"}`+"\n"), 0644))

	zipPath := filepath.Join(dir, "run.zip")
	report := map[string]any{"Retail": map[string]any{"f1_score": 0.9}}
	require.NoError(t, Bundle(zipPath, report, map[string]string{"Retail": resultPath}))

	r, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer r.Close()

	names := make(map[string]bool)
	for _, f := range r.File {
		names[f.Name] = true
	}
	require.True(t, names["report.json"])
	require.True(t, names["results/Retail/result_mock.jsonl"])
}
