package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/convert"
)

func newConvertCommand() *cobra.Command {
	var (
		sourceDir   string
		datasetsDir string
	)

	cmd := &cobra.Command{
		Use:   "convert <source-dataset>",
		Short: "Materialize category images from an upstream dataset",
		Long: "Prepares the images/ directory of the categories fed by one upstream " +
			"source dataset. Run `kiebench list` to see the available converters.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			converter, ok := convert.Lookup(name)
			if !ok {
				return fmt.Errorf("unknown source dataset: %s (available: %s)", name, converterNames())
			}

			opts := convert.Options{
				SourceDir:   resolveString(sourceDir, appConfig.SourceDir),
				DatasetsDir: resolveString(datasetsDir, appConfig.DatasetsDir),
				Log:         cmd.ErrOrStderr(),
			}
			if opts.SourceDir == "" {
				opts.SourceDir = "dataset_source"
			}
			if opts.DatasetsDir == "" {
				opts.DatasetsDir = "datasets"
			}

			logger.Info("converting",
				zap.String("source", name),
				zap.Strings("categories", converter.Categories))

			res, err := converter.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Copied: %d\n", res.Copied)
			if len(res.Missing) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Missing: %d\n", len(res.Missing))
				for _, miss := range res.Missing {
					fmt.Fprintf(cmd.ErrOrStderr(), "  missing: %s\n", miss)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceDir, "source-dir", "", "directory of raw upstream downloads")
	cmd.Flags().StringVar(&datasetsDir, "datasets-dir", "", "root directory of converted datasets")

	return cmd
}

func converterNames() string {
	var names []string
	for _, c := range convert.Registry() {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}
