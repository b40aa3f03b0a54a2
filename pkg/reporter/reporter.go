package reporter

import "github.com/NEUIR/UNIKIE-BENCH/pkg/kie"

// Reporter writes a score report.
type Reporter interface {
	Report(report kie.RunReport) error
}

const (
	FormatJSON     = "json"
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)
