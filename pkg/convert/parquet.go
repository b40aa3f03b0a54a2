package convert

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// imageColumnPaths are the column layouts the upstream parquet shards use for
// embedded image bytes, most specific first. HuggingFace image columns are a
// {bytes, path} group.
var imageColumnPaths = [][]string{
	{"image", "bytes"},
	{"image"},
	{"image_bytes"},
	{"image_data"},
	{"data"},
}

// ExtractParquetImages writes every row's embedded image to outDir, naming
// rows through nameFor. Existing files are reused. Returns filename to path.
func ExtractParquetImages(path, outDir string, nameFor func(idx int) string) (map[string]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("convert: open parquet %s: %w", path, err)
	}

	schema := pf.Schema()
	imageCol := -1
	for _, candidate := range imageColumnPaths {
		if leaf, ok := schema.Lookup(candidate...); ok {
			imageCol = leaf.ColumnIndex
			break
		}
	}
	if imageCol < 0 {
		return nil, fmt.Errorf("convert: no image column in %s", path)
	}

	imageMap := make(map[string]string)
	idx := 0
	buf := make([]parquet.Row, 32)
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		for {
			n, readErr := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				filename := nameFor(idx)
				idx++
				dest := filepath.Join(outDir, filename)
				if fi, err := os.Stat(dest); err == nil && fi.Size() > 0 {
					imageMap[filename] = dest
					continue
				}
				data := rowImageBytes(row, imageCol)
				if len(data) == 0 {
					continue
				}
				if err := os.WriteFile(dest, data, 0644); err != nil {
					rows.Close()
					return nil, err
				}
				imageMap[filename] = dest
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				rows.Close()
				return nil, readErr
			}
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
	}
	return imageMap, nil
}

// rowImageBytes pulls the image column's value out of a row, decoding a
// base64 data URL when the shard stores one instead of raw bytes.
func rowImageBytes(row parquet.Row, imageCol int) []byte {
	for _, v := range row {
		if v.Column() != imageCol || v.IsNull() {
			continue
		}
		data := v.ByteArray()
		if bytes.HasPrefix(data, []byte("data:image")) {
			if i := bytes.IndexByte(data, ','); i >= 0 {
				decoded, err := base64.StdEncoding.DecodeString(string(data[i+1:]))
				if err == nil {
					return decoded
				}
			}
			return nil
		}
		out := make([]byte, len(data))
		copy(out, data)
		return out
	}
	return nil
}

// FindParquetFiles lists parquet files under dir whose relative path starts
// with prefix. An empty prefix matches everything.
func FindParquetFiles(dir, prefix string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".parquet" {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if prefix == "" || hasPathPrefix(rel, prefix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func hasPathPrefix(rel, prefix string) bool {
	return len(rel) >= len(prefix) && filepath.ToSlash(rel)[:len(prefix)] == prefix
}
