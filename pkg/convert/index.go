package convert

import (
	"io/fs"
	"path/filepath"
	"strings"
)

var matchExts = []string{".jpg", ".jpeg", ".png", ".bmp"}

type indexedFile struct {
	name string
	path string
}

// Index is a recursive file listing used to resolve label keys against
// whatever layout an upstream archive extracted to.
type Index struct {
	files []indexedFile
}

// BuildIndex walks root and records every regular file.
func BuildIndex(root string) (*Index, error) {
	ix := &Index{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ix.files = append(ix.files, indexedFile{name: d.Name(), path: path})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ix, nil
}

// HasImages reports whether the index contains at least one image file, used
// to detect an already-extracted archive.
func (ix *Index) HasImages() bool {
	for _, f := range ix.files {
		for _, ext := range matchExts {
			if strings.HasSuffix(strings.ToLower(f.name), ext) {
				return true
			}
		}
	}
	return false
}

// Find resolves name with three strategies: exact filename, same stem under a
// different image extension, then case-insensitive containment either way.
func (ix *Index) Find(name string) (string, bool) {
	if path, ok := ix.FindExact(name); ok {
		return path, true
	}
	lower := strings.ToLower(name)
	for _, f := range ix.files {
		fl := strings.ToLower(f.name)
		if strings.Contains(fl, lower) || strings.Contains(lower, fl) {
			return f.path, true
		}
	}
	return "", false
}

// FindExact resolves name by exact filename, then by stem under the known
// image extensions. The containment strategy is skipped: categories fed by
// several sources would otherwise match "1492" against "img_1492.jpg".
func (ix *Index) FindExact(name string) (string, bool) {
	for _, f := range ix.files {
		if f.name == name {
			return f.path, true
		}
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	for _, ext := range matchExts {
		want := stem + ext
		for _, f := range ix.files {
			if f.name == want {
				return f.path, true
			}
		}
	}
	return "", false
}

// FindPDF resolves a document name to a PDF path, case-insensitively: exact
// "<name>.pdf" first, then stem equality, then stem containment.
func (ix *Index) FindPDF(name string) (string, bool) {
	stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	want := stem + ".pdf"
	for _, f := range ix.files {
		if strings.ToLower(f.name) == want {
			return f.path, true
		}
	}
	for _, f := range ix.files {
		fl := strings.ToLower(f.name)
		if filepath.Ext(fl) != ".pdf" {
			continue
		}
		if strings.TrimSuffix(fl, ".pdf") == stem {
			return f.path, true
		}
	}
	for _, f := range ix.files {
		fl := strings.ToLower(f.name)
		if filepath.Ext(fl) != ".pdf" {
			continue
		}
		fstem := strings.TrimSuffix(fl, ".pdf")
		if strings.Contains(fstem, stem) || strings.Contains(stem, fstem) {
			return f.path, true
		}
	}
	return "", false
}
