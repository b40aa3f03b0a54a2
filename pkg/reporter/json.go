package reporter

import (
	"encoding/json"
	"io"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/kie"
)

type JSONReporter struct {
	Writer  io.Writer
	Pretty  bool
	Compact bool
}

func (r JSONReporter) Report(report kie.RunReport) error {
	encoder := json.NewEncoder(r.Writer)
	if r.Pretty && !r.Compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(report)
}
