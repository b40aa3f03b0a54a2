package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/core"
)

// Dir returns a dataset's directory under the datasets root.
func Dir(datasetsDir, dataset string) string {
	return filepath.Join(datasetsDir, dataset)
}

// QAPath returns the default qa.jsonl location for a dataset.
func QAPath(datasetsDir, dataset string) string {
	return filepath.Join(datasetsDir, dataset, "qa.jsonl")
}

// LoadQA reads qa.jsonl for a dataset. Records missing the dataset field
// inherit the dataset name; records missing url or prompt are rejected.
// limit > 0 stops after that many records.
func LoadQA(path, dataset string, limit int) ([]core.QARecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 16*1024*1024)

	var records []core.QARecord
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec core.QARecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("dataset: %s line %d: %w", path, lineNum, err)
		}
		if rec.Dataset == "" {
			rec.Dataset = dataset
		}
		if rec.URL == "" {
			return nil, fmt.Errorf("dataset: %s line %d: missing required field: url", path, lineNum)
		}
		if rec.Prompt == "" {
			return nil, fmt.Errorf("dataset: %s line %d: missing required field: prompt", path, lineNum)
		}
		records = append(records, rec)
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	return records, nil
}
