package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestResolveImagesDirectFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "images", "receipt.jpg"))

	imgs, err := ResolveImages(dir, "images/receipt.jpg")
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "images", "receipt.jpg")}, imgs)
}

func TestResolveImagesUnderImagesDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "images", "receipt.jpg"))

	imgs, err := ResolveImages(dir, "receipt.jpg")
	require.NoError(t, err)
	require.Len(t, imgs, 1)
}

func TestResolveImagesDirectoryNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "images", "doc1", "page_10.jpg"))
	touch(t, filepath.Join(dir, "images", "doc1", "page_2.jpg"))
	touch(t, filepath.Join(dir, "images", "doc1", "page_1.jpg"))

	imgs, err := ResolveImages(dir, "doc1")
	require.NoError(t, err)
	require.Len(t, imgs, 3)
	require.Equal(t, "page_1.jpg", filepath.Base(imgs[0]))
	require.Equal(t, "page_2.jpg", filepath.Base(imgs[1]))
	require.Equal(t, "page_10.jpg", filepath.Base(imgs[2]))
}

func TestResolveImagesStemMatch(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "images", "form.png"))

	imgs, err := ResolveImages(dir, "form.jpg")
	require.NoError(t, err)
	require.Equal(t, "form.png", filepath.Base(imgs[0]))
}

func TestResolveImagesMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := ResolveImages(dir, "nope.jpg")
	require.ErrorContains(t, err, "cannot resolve image")
}

func TestNaturalLess(t *testing.T) {
	require.True(t, naturalLess("page_2.jpg", "page_10.jpg"))
	require.False(t, naturalLess("page_10.jpg", "page_2.jpg"))
	require.True(t, naturalLess("a.jpg", "b.jpg"))
	require.True(t, naturalLess("img9.png", "img10.png"))
}
