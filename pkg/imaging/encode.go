// Package imaging prepares document images for multimodal API calls: decode,
// downscale to a fixed pixel budget, and re-encode as JPEG so payload sizes
// stay bounded regardless of the source dataset's formats.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxPixels caps width*height before encoding. Larger images are scaled down
// proportionally.
const MaxPixels = 1605632

const jpegQuality = 95

// EncodeJPEG decodes an image file, downscales it to the pixel budget when
// needed, and returns it re-encoded as JPEG.
func EncodeJPEG(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imaging: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imaging: decode %s: %w", path, err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if pixels := w * h; pixels > MaxPixels {
		scale := math.Sqrt(float64(MaxPixels) / float64(pixels))
		nw := int(float64(w) * scale)
		nh := int(float64(h) * scale)
		if nw < 1 {
			nw = 1
		}
		if nh < 1 {
			nh = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("imaging: encode %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// DataURL wraps JPEG bytes as a base64 data URL for OpenAI-style image parts.
func DataURL(jpegData []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)
}
