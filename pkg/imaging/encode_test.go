package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestEncodeJPEGSmallImageKeepsSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "small.png")
	writePNG(t, path, 100, 60)

	data, err := EncodeJPEG(path)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 100, decoded.Bounds().Dx())
	require.Equal(t, 60, decoded.Bounds().Dy())
}

func TestEncodeJPEGDownscalesToPixelBudget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.png")
	// 2000x1200 = 2.4M pixels, above the budget.
	writePNG(t, path, 2000, 1200)

	data, err := EncodeJPEG(path)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	w, h := decoded.Bounds().Dx(), decoded.Bounds().Dy()
	require.LessOrEqual(t, w*h, MaxPixels)
	// Aspect ratio preserved within rounding.
	require.InDelta(t, 2000.0/1200.0, float64(w)/float64(h), 0.01)
}

func TestEncodeJPEGMissingFile(t *testing.T) {
	_, err := EncodeJPEG(filepath.Join(t.TempDir(), "absent.png"))
	require.Error(t, err)
}

func TestDataURL(t *testing.T) {
	url := DataURL([]byte{0xFF, 0xD8})
	require.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))
}
