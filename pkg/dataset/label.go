package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Labels maps document names (image filenames, or PDF stems for rendered
// documents) to their ground-truth extraction.
type Labels map[string]any

// LabelPath returns the default label.json location for a dataset.
func LabelPath(datasetsDir, dataset string) string {
	return filepath.Join(datasetsDir, dataset, "label.json")
}

// LoadLabels reads a dataset's label.json.
func LoadLabels(path string) (Labels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	var labels Labels
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	return labels, nil
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".bmp":  true,
}

// IsImageName reports whether a label key names an image file.
func IsImageName(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}
