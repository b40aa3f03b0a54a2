package kie

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// ParseModelJSON turns a raw model response into a decoded JSON value.
// Reasoning traces are stripped, a ```json fence is extracted (closing an
// unterminated one first), and parse failures fall back to json-repair before
// giving up. Numbers decode as json.Number so their literal text survives
// into scoring.
func ParseModelJSON(raw string) (any, error) {
	cleaned := strings.TrimSpace(thinkRe.ReplaceAllString(raw, ""))
	if strings.Contains(cleaned, "```json") {
		if !strings.HasSuffix(strings.TrimRight(cleaned, " \t\r\n"), "```") {
			cleaned += "```"
		}
		if m := jsonFenceRe.FindStringSubmatch(cleaned); m != nil {
			cleaned = strings.TrimSpace(m[1])
		}
	}

	parsed, parseErr := decodeJSON(cleaned)
	if parseErr == nil {
		return parsed, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(cleaned)
	if repairErr != nil {
		return nil, fmt.Errorf("standard parsing failed: %v; json-repair failed: %v", parseErr, repairErr)
	}
	parsed, err := decodeJSON(repaired)
	if err != nil {
		return nil, fmt.Errorf("standard parsing failed: %v; repaired output failed: %v", parseErr, err)
	}
	return parsed, nil
}

func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
