package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/dataset"
	"github.com/NEUIR/UNIKIE-BENCH/pkg/kie"
	"github.com/NEUIR/UNIKIE-BENCH/pkg/reporter"
	"github.com/NEUIR/UNIKIE-BENCH/pkg/runlog"
)

func newScoreCommand() *cobra.Command {
	var (
		predPath    string
		datasetName string
		datasetsDir string
		outputPath  string
		format      string
		bundlePath  string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a prediction log against ground-truth labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			if predPath == "" {
				return errors.New("prediction file is required")
			}
			datasetsResolved := resolveString(datasetsDir, appConfig.DatasetsDir)
			if datasetsResolved == "" {
				datasetsResolved = "datasets"
			}
			formatResolved := resolveString(format, appConfig.Format)
			if formatResolved == "" {
				formatResolved = "table"
			}
			outputResolved := resolveString(outputPath, appConfig.Output)
			if outputResolved == "" {
				outputResolved = evalPath(predPath)
			}

			predictions, err := runlog.LoadPredictions(predPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if len(predictions) == 0 {
				return fmt.Errorf("no scoreable predictions in %s", predPath)
			}

			var names []string
			if datasetName != "" {
				if _, ok := predictions[datasetName]; !ok {
					return fmt.Errorf("dataset %s not found in predictions (available: %v)", datasetName, datasetNames(predictions))
				}
				names = []string{datasetName}
			} else {
				names = datasetNames(predictions)
			}

			var report kie.RunReport
			for _, name := range names {
				labels, err := dataset.LoadLabels(dataset.LabelPath(datasetsResolved, name))
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "score: %s: %v\n", name, err)
					continue
				}
				ds := kie.EvaluateDataset(name, predictions[name], labels)
				report.Datasets = append(report.Datasets, ds)
				logger.Info("dataset scored",
					zap.String("dataset", name),
					zap.Float64("f1", ds.Summary.F1Score),
					zap.Int("matched", ds.Summary.MatchedSamples))
			}
			if len(report.Datasets) == 0 {
				return errors.New("no dataset could be scored")
			}
			report.Summary = kie.Summarize(report.Datasets)

			file, err := os.Create(outputResolved)
			if err != nil {
				return err
			}
			jsonRep := reporter.JSONReporter{Writer: file, Pretty: true}
			if err := jsonRep.Report(report); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			logger.Info("report written", zap.String("path", outputResolved))

			rep, err := buildReporter(formatResolved, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := rep.Report(report); err != nil {
				return err
			}

			if bundlePath != "" {
				files := map[string]string{}
				for _, name := range names {
					files[name] = predPath
				}
				if err := runlog.Bundle(bundlePath, report, files); err != nil {
					return err
				}
				logger.Info("bundle written", zap.String("path", bundlePath))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&predPath, "pred", "", "prediction jsonl file (output of infer)")
	cmd.Flags().StringVar(&datasetName, "dataset", "", "score only this dataset (default: all in the log)")
	cmd.Flags().StringVar(&datasetsDir, "datasets-dir", "", "root directory of converted datasets")
	cmd.Flags().StringVar(&outputPath, "output", "", "JSON report path (default: <pred>_eval.json)")
	cmd.Flags().StringVar(&format, "format", "", "stdout report format (table, json, markdown, csv)")
	cmd.Flags().StringVar(&bundlePath, "bundle", "", "also write a zip bundling report and predictions")

	return cmd
}

// evalPath derives results/D/result_M_eval.json from results/D/result_M.jsonl.
func evalPath(predPath string) string {
	stem := strings.TrimSuffix(predPath, filepath.Ext(predPath))
	return stem + "_eval.json"
}

func datasetNames(predictions map[string]map[string]any) []string {
	names := make([]string, 0, len(predictions))
	for name := range predictions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildReporter(format string, writer io.Writer) (reporter.Reporter, error) {
	switch format {
	case reporter.FormatJSON:
		return reporter.JSONReporter{Writer: writer, Pretty: true}, nil
	case reporter.FormatTable:
		return reporter.TableReporter{Writer: writer}, nil
	case reporter.FormatMarkdown:
		return reporter.MarkdownReporter{Writer: writer}, nil
	case reporter.FormatCSV:
		return reporter.CSVReporter{Writer: writer}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}
