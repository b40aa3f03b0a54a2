// Package convert materializes the per-category images/ directories from the
// heterogeneous upstream distributions (archives, parquet shards, TSV dumps,
// PDF collections). Each converter is driven by the target category's
// label.json: its keys name the files to produce.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/dataset"
)

// Options locates the raw source material and the category layout.
type Options struct {
	// SourceDir holds upstream downloads and archives, one subdirectory per
	// source dataset.
	SourceDir string
	// DatasetsDir is the category layout root (label.json, qa.jsonl, images/).
	DatasetsDir string
	// Log receives progress and warning lines. Defaults to io.Discard.
	Log io.Writer
}

func (o Options) log() io.Writer {
	if o.Log == nil {
		return io.Discard
	}
	return o.Log
}

// Result counts what a converter materialized.
type Result struct {
	Copied  int
	Missing []string
}

// Converter prepares one source dataset's categories.
type Converter struct {
	Name        string
	Categories  []string
	Description string
	Run         func(ctx context.Context, opts Options) (Result, error)
}

// Registry lists all converters in a stable order.
func Registry() []Converter {
	return []Converter{
		sroieConverter(),
		cordConverter(),
		funsdConverter(),
		sibrConverter(),
		poieConverter(),
		ephoieConverter(),
		docileConverter(),
		deepformConverter(),
		hwFormsConverter(),
		nanonetsConverter(),
		cellConverter(),
	}
}

// Lookup finds a converter by name.
func Lookup(name string) (Converter, bool) {
	for _, c := range Registry() {
		if c.Name == name {
			return c, true
		}
	}
	return Converter{}, false
}

// labelImageNames returns the sorted image-file keys of a category's
// label.json.
func labelImageNames(datasetsDir, category string) ([]string, error) {
	labels, err := dataset.LoadLabels(dataset.LabelPath(datasetsDir, category))
	if err != nil {
		return nil, err
	}
	var names []string
	for key := range labels {
		if dataset.IsImageName(key) {
			names = append(names, key)
		}
	}
	sort.Strings(names)
	return names, nil
}

// labelDocNames returns the sorted non-image keys, used by the PDF-backed
// datasets where keys name documents rather than image files.
func labelDocNames(datasetsDir, category string) ([]string, error) {
	labels, err := dataset.LoadLabels(dataset.LabelPath(datasetsDir, category))
	if err != nil {
		return nil, err
	}
	var names []string
	for key := range labels {
		if !dataset.IsImageName(key) {
			names = append(names, key)
		}
	}
	sort.Strings(names)
	return names, nil
}

// copyFile copies src to dest, skipping the copy when dest already exists
// with the same size.
func copyFile(src, dest string) error {
	if di, err := os.Stat(dest); err == nil {
		si, err := os.Stat(src)
		if err == nil && di.Size() == si.Size() {
			return nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}

// copyLabelImages resolves every label-keyed image through the index and
// copies it into the category's images/ directory.
func copyLabelImages(opts Options, category string, ix *Index, exactOnly bool) (Result, error) {
	names, err := labelImageNames(opts.DatasetsDir, category)
	if err != nil {
		return Result{}, err
	}
	imagesDir := filepath.Join(opts.DatasetsDir, category, "images")
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return Result{}, err
	}

	var res Result
	for _, name := range names {
		var src string
		var ok bool
		if exactOnly {
			src, ok = ix.FindExact(name)
		} else {
			src, ok = ix.Find(name)
		}
		if !ok {
			res.Missing = append(res.Missing, name)
			continue
		}
		if err := copyFile(src, filepath.Join(imagesDir, name)); err != nil {
			fmt.Fprintf(opts.log(), "convert: %s: copy %s: %v\n", category, name, err)
			res.Missing = append(res.Missing, name)
			continue
		}
		res.Copied++
	}
	return res, nil
}
