package runlog

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Bundle packages a score report and its prediction logs into a single zip
// for archival or sharing. Result files keep their results/<dataset>/ layout.
func Bundle(zipPath string, report any, resultFiles map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(zipPath), 0755); err != nil {
		return err
	}
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := zip.NewWriter(f)
	if report != nil {
		if err := writeZipJSON(w, "report.json", report); err != nil {
			w.Close()
			return err
		}
	}
	for dataset, path := range resultFiles {
		name := fmt.Sprintf("results/%s/%s", dataset, filepath.Base(path))
		if err := writeZipFile(w, name, path); err != nil {
			w.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}

func writeZipJSON(writer *zip.Writer, name string, data any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return err
	}

	payload := buf.Bytes()
	size := uint64(len(payload))
	header := &zip.FileHeader{
		Name:               name,
		Method:             zip.Store,
		UncompressedSize64: size,
		CompressedSize64:   size,
		CRC32:              crc32.ChecksumIEEE(payload),
	}
	header.SetModTime(time.Unix(0, 0))
	header.Flags &^= 0x8 // no data descriptor

	entry, err := writer.CreateRaw(header)
	if err != nil {
		return err
	}
	_, err = entry.Write(payload)
	return err
}

func writeZipFile(writer *zip.Writer, name, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	entry, err := writer.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, in)
	return err
}
