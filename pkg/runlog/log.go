// Package runlog reads and writes the result_<model>.jsonl prediction logs
// that connect the inference and scoring stages.
package runlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/core"
)

var unsafeNameChars = regexp.MustCompile(`[^\w\-]`)

// SanitizeModelName makes a model identifier filesystem-safe, so
// "openai/gpt-4o-mini" becomes "openai_gpt-4o-mini".
func SanitizeModelName(model string) string {
	return unsafeNameChars.ReplaceAllString(model, "_")
}

// ResultPath is the canonical prediction log location for a dataset and model.
func ResultPath(resultsDir, dataset, model string) string {
	return filepath.Join(resultsDir, dataset, "result_"+SanitizeModelName(model)+".jsonl")
}

// ExtractImageName strips the images/ prefix a qa.jsonl url carries, leaving
// the label.json key.
func ExtractImageName(url string) string {
	return strings.TrimPrefix(url, "images/")
}

// Writer appends predictions to a JSONL log, flushing after every record so
// an interrupted run keeps everything written so far.
type Writer struct {
	f     *os.File
	bw    *bufio.Writer
	count int
}

func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, bw: bufio.NewWriter(f)}, nil
}

func (w *Writer) Append(p core.Prediction) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if _, err := w.bw.Write(data); err != nil {
		return err
	}
	if err := w.bw.WriteByte('\n'); err != nil {
		return err
	}
	w.count++
	return w.bw.Flush()
}

// Count is the number of records appended so far.
func (w *Writer) Count() int {
	return w.count
}

func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// LoadPredictions reads a prediction log into scoreable form, keyed by
// dataset then image name. Records without a usable extraction are skipped
// with a warning on warn; malformed lines are skipped with their line number.
func LoadPredictions(path string, warn io.Writer) (map[string]map[string]any, error) {
	if warn == nil {
		warn = io.Discard
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	predictions := make(map[string]map[string]any)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record struct {
			Dataset     string          `json:"dataset"`
			URL         string          `json:"url"`
			ModelResult json.RawMessage `json:"model_result"`
			Error       string          `json:"error"`
		}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			fmt.Fprintf(warn, "runlog: line %d: invalid json, skipping: %v\n", lineNum, err)
			continue
		}

		dataset := record.Dataset
		if dataset == "" {
			dataset = "unknown"
		}
		if record.URL == "" {
			fmt.Fprintf(warn, "runlog: line %d: missing url, skipping\n", lineNum)
			continue
		}
		imageName := ExtractImageName(record.URL)

		if record.Error != "" {
			fmt.Fprintf(warn, "runlog: %s/%s failed: %s\n", dataset, imageName, record.Error)
		}
		if len(record.ModelResult) == 0 || string(record.ModelResult) == "null" {
			fmt.Fprintf(warn, "runlog: %s/%s has no prediction, skipping\n", dataset, imageName)
			continue
		}

		result, err := decodeResult(record.ModelResult)
		if err != nil {
			fmt.Fprintf(warn, "runlog: line %d: bad model_result, skipping: %v\n", lineNum, err)
			continue
		}
		if m, ok := result.(map[string]any); ok {
			if parseErr, found := m["_parse_error"]; found {
				fmt.Fprintf(warn, "runlog: %s/%s never parsed as JSON, skipping: %v\n", dataset, imageName, parseErr)
				continue
			}
		}

		if predictions[dataset] == nil {
			predictions[dataset] = make(map[string]any)
		}
		predictions[dataset][imageName] = result
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return predictions, nil
}

// decodeResult keeps number literals as json.Number so integer and float
// renderings survive into scoring unchanged.
func decodeResult(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
