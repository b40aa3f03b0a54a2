package convert

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
)

const (
	renderDPI     = 200
	renderQuality = 95
)

// RenderPDF renders every page of a PDF to outDir as page_<n>.jpg, numbered
// from 1. Returns the page count.
func RenderPDF(pdfPath, outDir string) (int, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return 0, err
	}
	defer doc.Close()

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, err
	}
	pages := doc.NumPage()
	for n := 0; n < pages; n++ {
		img, err := doc.ImageDPI(n, renderDPI)
		if err != nil {
			return n, err
		}
		dest := filepath.Join(outDir, fmt.Sprintf("page_%d.jpg", n+1))
		if err := saveJPEG(img, dest); err != nil {
			return n, err
		}
	}
	return pages, nil
}

// RenderFirstPage renders only the first page to destPath.
func RenderFirstPage(pdfPath, destPath string) error {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return err
	}
	defer doc.Close()

	img, err := doc.ImageDPI(0, renderDPI)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	return saveJPEG(img, destPath)
}

func saveJPEG(img image.Image, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: renderQuality}); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
