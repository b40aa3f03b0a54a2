package convert

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks a zip, tar, or tar.gz archive into dest.
func Extract(archivePath, dest string) error {
	if _, err := os.Stat(archivePath); err != nil {
		return fmt.Errorf("convert: archive not found: %s", archivePath)
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}
	lower := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return extractZip(archivePath, dest)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return extractTar(archivePath, dest, true)
	case strings.HasSuffix(lower, ".tar"):
		return extractTar(archivePath, dest, false)
	}
	return fmt.Errorf("convert: unsupported archive format: %s", archivePath)
}

// ExtractNested sweeps dir for archives the first extraction left behind and
// unpacks each one in place.
func ExtractNested(dir string) error {
	var archives []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		lower := strings.ToLower(d.Name())
		if strings.HasSuffix(lower, ".zip") || strings.HasSuffix(lower, ".tar") ||
			strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
			archives = append(archives, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, archive := range archives {
		if err := Extract(archive, dir); err != nil {
			return err
		}
	}
	return nil
}

// safeJoin rejects entry names that would escape dest.
func safeJoin(dest, name string) (string, error) {
	path := filepath.Join(dest, filepath.FromSlash(name))
	if !strings.HasPrefix(path, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("convert: archive entry escapes destination: %s", name)
	}
	return path, nil
}

func extractZip(archivePath, dest string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()
	for _, f := range r.File {
		path, err := safeJoin(dest, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0755); err != nil {
				return err
			}
			continue
		}
		if err := writeZipEntry(f, path); err != nil {
			return err
		}
	}
	return nil
}

func writeZipEntry(f *zip.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	in, err := f.Open()
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func extractTar(archivePath, dest string, gzipped bool) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	var reader io.Reader = f
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gz.Close()
		reader = gz
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		path, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			out, err := os.Create(path)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}
