package convert

import (
	"bufio"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var tsvImageColumns = []string{"image", "image_data", "image_base64"}
var tsvNameColumns = []string{"image_name", "filename", "file_name"}

// ExtractTSVImages decodes the base64 image column of a TSV (or comma
// delimited) dump into outDir. Row filenames come from the name column when
// present, otherwise img_<idx>.jpg. Returns filename to path.
func ExtractTSVImages(tsvPath, outDir string) (map[string]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}
	f, err := os.Open(tsvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 1<<20)
	firstLine, err := br.ReadString('\n')
	if err != nil && firstLine == "" {
		return nil, fmt.Errorf("convert: empty tsv %s", tsvPath)
	}
	delimiter := ','
	if strings.ContainsRune(firstLine, '\t') {
		delimiter = '\t'
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	br.Reset(f)

	reader := csv.NewReader(br)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("convert: read tsv header %s: %w", tsvPath, err)
	}
	imageCol := columnIndex(header, tsvImageColumns)
	if imageCol < 0 {
		imageCol = 0
	}
	nameCol := columnIndex(header, tsvNameColumns)

	imageMap := make(map[string]string)
	for idx := 0; ; idx++ {
		row, err := reader.Read()
		if err != nil {
			break
		}
		if imageCol >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[imageCol])
		if value == "" {
			continue
		}

		filename := fmt.Sprintf("img_%d.jpg", idx)
		if nameCol >= 0 && nameCol < len(row) && strings.TrimSpace(row[nameCol]) != "" {
			filename = strings.TrimSpace(row[nameCol])
		}
		dest := filepath.Join(outDir, filename)
		if fi, err := os.Stat(dest); err == nil && fi.Size() > 0 {
			imageMap[filename] = dest
			continue
		}

		data, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			if i := strings.IndexByte(value, ','); i >= 0 {
				data, err = base64.StdEncoding.DecodeString(value[i+1:])
			}
			if err != nil {
				continue
			}
		}
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return nil, err
		}
		imageMap[filename] = dest
	}
	return imageMap, nil
}

func columnIndex(header []string, candidates []string) int {
	for _, want := range candidates {
		for i, col := range header {
			if strings.TrimSpace(col) == want {
				return i
			}
		}
	}
	return -1
}
