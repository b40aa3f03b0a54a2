package convert

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "images.zip")
	writeZip(t, archive, map[string]string{
		"a.jpg":        "aaa",
		"sub/b.png":    "bbb",
		"sub/deep/c.jpg": "ccc",
	})

	dest := filepath.Join(dir, "extracted")
	require.NoError(t, Extract(archive, dest))

	data, err := os.ReadFile(filepath.Join(dest, "sub", "b.png"))
	require.NoError(t, err)
	require.Equal(t, "bbb", string(data))
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bad.zip")
	writeZip(t, archive, map[string]string{"../escape.txt": "nope"})

	err := Extract(archive, filepath.Join(dir, "extracted"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "escapes destination")
}

func TestExtractUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.rar")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	err := Extract(path, filepath.Join(dir, "out"))
	require.Error(t, err)
}

func TestIndexFind(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "receipt_001.jpg"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "form.png"), []byte("b"), 0644))

	ix, err := BuildIndex(dir)
	require.NoError(t, err)
	require.True(t, ix.HasImages())

	// Exact.
	path, ok := ix.Find("receipt_001.jpg")
	require.True(t, ok)
	require.Equal(t, filepath.Join(dir, "receipt_001.jpg"), path)

	// Stem under a different extension.
	path, ok = ix.Find("form.jpg")
	require.True(t, ok)
	require.Equal(t, filepath.Join(dir, "nested", "form.png"), path)

	// Containment.
	_, ok = ix.Find("001.jpg")
	require.True(t, ok)

	_, ok = ix.Find("missing.jpg")
	require.False(t, ok)
}

func TestIndexFindExactSkipsContainment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img_1492.jpg"), []byte("a"), 0644))

	ix, err := BuildIndex(dir)
	require.NoError(t, err)

	// "1492.jpg" must not resolve to img_1492.jpg in exact mode.
	_, ok := ix.FindExact("1492.jpg")
	require.False(t, ok)

	_, ok = ix.FindExact("img_1492.jpg")
	require.True(t, ok)
}

func TestIndexFindPDF(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "INVOICE_42.PDF"), []byte("p"), 0644))

	ix, err := BuildIndex(dir)
	require.NoError(t, err)

	path, ok := ix.FindPDF("invoice_42")
	require.True(t, ok)
	require.Equal(t, filepath.Join(dir, "INVOICE_42.PDF"), path)

	path, ok = ix.FindPDF("invoice_42.jpg")
	require.True(t, ok)
	require.Equal(t, filepath.Join(dir, "INVOICE_42.PDF"), path)

	_, ok = ix.FindPDF("receipt_7")
	require.False(t, ok)
}

func TestExtractTSVImages(t *testing.T) {
	dir := t.TempDir()
	img1 := base64.StdEncoding.EncodeToString([]byte("first-image"))
	img2 := base64.StdEncoding.EncodeToString([]byte("second-image"))
	tsv := "image\timage_name\n" + img1 + "\tdoc_a.jpg\n" + img2 + "\t\n"
	tsvPath := filepath.Join(dir, "dump.tsv")
	require.NoError(t, os.WriteFile(tsvPath, []byte(tsv), 0644))

	outDir := filepath.Join(dir, "out")
	imageMap, err := ExtractTSVImages(tsvPath, outDir)
	require.NoError(t, err)
	require.Len(t, imageMap, 2)

	data, err := os.ReadFile(imageMap["doc_a.jpg"])
	require.NoError(t, err)
	require.Equal(t, "first-image", string(data))

	// Rows without a name fall back to the index.
	_, ok := imageMap["img_1.jpg"]
	require.True(t, ok)
}

func TestExtractTSVImagesCommaDelimited(t *testing.T) {
	dir := t.TempDir()
	img := base64.StdEncoding.EncodeToString([]byte("csv-image"))
	csvData := "image,image_name\n" + img + ",x.png\n"
	path := filepath.Join(dir, "dump.tsv")
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0644))

	imageMap, err := ExtractTSVImages(path, filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.Contains(t, imageMap, "x.png")
}

func TestCopyFileSkipsSameSize(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jpg")
	dest := filepath.Join(dir, "dest.jpg")
	require.NoError(t, os.WriteFile(src, []byte("abc"), 0644))
	require.NoError(t, os.WriteFile(dest, []byte("xyz"), 0644))

	// Same size: dest is left alone.
	require.NoError(t, copyFile(src, dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "xyz", string(data))

	// Different size: dest is replaced.
	require.NoError(t, os.WriteFile(src, []byte("longer-content"), 0644))
	require.NoError(t, copyFile(src, dest))
	data, err = os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "longer-content", string(data))
}

func TestRegistryLookup(t *testing.T) {
	require.Len(t, Registry(), 11)

	c, ok := Lookup("sroie")
	require.True(t, ok)
	require.Equal(t, []string{"Retail"}, c.Categories)

	_, ok = Lookup("unknown")
	require.False(t, ok)
}
