package reporter

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/kie"
)

type TableReporter struct {
	Writer io.Writer
}

func (r TableReporter) Report(report kie.RunReport) error {
	table := tablewriter.NewWriter(r.Writer)
	table.Header([]string{"Dataset", "F1", "Predictions", "Ground truth", "Matched"})
	for _, ds := range report.Datasets {
		table.Append([]string{
			ds.Dataset,
			fmt.Sprintf("%.4f", ds.Summary.F1Score),
			fmt.Sprintf("%d", ds.Summary.TotalPredictions),
			fmt.Sprintf("%d", ds.Summary.TotalGroundTruth),
			fmt.Sprintf("%d", ds.Summary.MatchedSamples),
		})
	}
	if report.Summary != nil {
		table.Append([]string{
			"average",
			fmt.Sprintf("%.4f", report.Summary.AverageF1Score),
			fmt.Sprintf("%d", report.Summary.TotalPredictions),
			fmt.Sprintf("%d", report.Summary.TotalGroundTruth),
			fmt.Sprintf("%d", report.Summary.TotalMatched),
		})
	}
	table.Render()
	return nil
}
