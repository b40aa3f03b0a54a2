package reporter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/kie"
)

type CSVReporter struct {
	Writer io.Writer
}

// Report writes one row per dataset and field, so the per-field accuracies
// stay greppable.
func (r CSVReporter) Report(report kie.RunReport) error {
	writer := csv.NewWriter(r.Writer)
	header := []string{"dataset", "field", "f1_or_acc", "tp", "fn_or_fp"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, ds := range report.Datasets {
		record := []string{
			ds.Dataset,
			"_overall",
			strconv.FormatFloat(ds.Summary.F1Score, 'f', 4, 64),
			"",
			"",
		}
		if err := writer.Write(record); err != nil {
			return err
		}
		for _, path := range kie.SortedFieldPaths(ds.ClassF1) {
			stat := ds.ClassF1[path]
			record := []string{
				ds.Dataset,
				path,
				strconv.FormatFloat(stat.Acc, 'f', 4, 64),
				strconv.Itoa(stat.TotalTP),
				strconv.Itoa(stat.TotalFNorFP),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}
