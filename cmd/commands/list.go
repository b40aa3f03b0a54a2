package commands

import (
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/NEUIR/UNIKIE-BENCH/pkg/convert"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available components",
		RunE: func(cmd *cobra.Command, args []string) error {
			writeList("Providers", []string{"openai", "anthropic", "gemini", "mock"})
			writeList("Formats", []string{"table", "json", "markdown", "csv"})
			writeConverters()
			return nil
		},
	}
	return cmd
}

func writeList(title string, items []string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{title})
	for _, item := range items {
		table.Append([]string{item})
	}
	table.Render()
}

func writeConverters() {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Converter", "Categories", "Description"})
	for _, c := range convert.Registry() {
		table.Append([]string{c.Name, strings.Join(c.Categories, ", "), c.Description})
	}
	table.Render()
}
