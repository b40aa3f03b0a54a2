package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadQA(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qa.jsonl")
	writeFile(t, path, `{"url":"a.jpg","prompt":"{\"total\":\"\"}"}
{"dataset":"Other","url":"b.jpg","prompt":"{}"}

{"url":"c.jpg","prompt":"{}"}
`)

	records, err := LoadQA(path, "Retail", 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "Retail", records[0].Dataset)
	require.Equal(t, "Other", records[1].Dataset)
	require.Equal(t, "a.jpg", records[0].URL)
}

func TestLoadQALimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qa.jsonl")
	writeFile(t, path, `{"url":"a.jpg","prompt":"{}"}
{"url":"b.jpg","prompt":"{}"}
{"url":"c.jpg","prompt":"{}"}
`)

	records, err := LoadQA(path, "Retail", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestLoadQAMissingFields(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "nourl.jsonl")
	writeFile(t, path, `{"prompt":"{}"}`+"\n")
	_, err := LoadQA(path, "Retail", 0)
	require.ErrorContains(t, err, "missing required field: url")

	path = filepath.Join(dir, "noprompt.jsonl")
	writeFile(t, path, `{"url":"a.jpg"}`+"\n")
	_, err = LoadQA(path, "Retail", 0)
	require.ErrorContains(t, err, "missing required field: prompt")
}

func TestLoadLabels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "label.json")
	writeFile(t, path, `{"a.jpg":{"total":"12.00"},"doc1":{"invoice":"X"}}`)

	labels, err := LoadLabels(path)
	require.NoError(t, err)
	require.Len(t, labels, 2)
	require.Contains(t, labels, "a.jpg")

	require.True(t, IsImageName("a.JPG"))
	require.True(t, IsImageName("scan.webp"))
	require.False(t, IsImageName("doc1"))
	require.False(t, IsImageName("report.pdf"))
}
