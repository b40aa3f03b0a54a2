package reporter

import (
	"fmt"
	"io"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/kie"
)

type MarkdownReporter struct {
	Writer io.Writer
}

func (r MarkdownReporter) Report(report kie.RunReport) error {
	if _, err := fmt.Fprintf(r.Writer, "# KIE Benchmark Report\n\n"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(r.Writer, "## Summary\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(r.Writer, "| Dataset | F1 | Predictions | Ground truth | Matched |\n|---|---|---|---|---|\n"); err != nil {
		return err
	}
	for _, ds := range report.Datasets {
		if _, err := fmt.Fprintf(r.Writer, "| %s | %.4f | %d | %d | %d |\n",
			escapePipe(ds.Dataset),
			ds.Summary.F1Score,
			ds.Summary.TotalPredictions,
			ds.Summary.TotalGroundTruth,
			ds.Summary.MatchedSamples,
		); err != nil {
			return err
		}
	}
	if report.Summary != nil {
		if _, err := fmt.Fprintf(r.Writer, "| average | %.4f | %d | %d | %d |\n",
			report.Summary.AverageF1Score,
			report.Summary.TotalPredictions,
			report.Summary.TotalGroundTruth,
			report.Summary.TotalMatched,
		); err != nil {
			return err
		}
	}

	for _, ds := range report.Datasets {
		if len(ds.ClassF1) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(r.Writer, "\n## %s fields\n\n", escapePipe(ds.Dataset)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(r.Writer, "| Field | Accuracy | TP | FN+FP |\n|---|---|---|---|\n"); err != nil {
			return err
		}
		for _, path := range kie.SortedFieldPaths(ds.ClassF1) {
			stat := ds.ClassF1[path]
			if _, err := fmt.Fprintf(r.Writer, "| %s | %.4f | %d | %d |\n",
				escapePipe(path), stat.Acc, stat.TotalTP, stat.TotalFNorFP); err != nil {
				return err
			}
		}
	}
	return nil
}

func escapePipe(input string) string {
	if input == "" {
		return ""
	}
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if r == '|' {
			out = append(out, '\\', r)
		} else if r == '\n' || r == '\r' {
			out = append(out, ' ')
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}
