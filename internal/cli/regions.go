package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/permcatalog/edu-catalog/internal/catalog"
)

type regionSummary struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

func newRegionsCmd() *cobra.Command {
	var (
		in     inputFlags
		pinned []string
		output string
	)

	cmd := &cobra.Command{
		Use:     "regions",
		Short:   "List regions in display order with their row counts",
		Example: `  catalogctl regions --in catalog.db --pin "Пермский край"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			ds, err := in.load(cmd.Context())
			if err != nil {
				return err
			}

			var summary []regionSummary
			for _, name := range catalog.OrderRegions(ds.Regions(), pinned) {
				summary = append(summary, regionSummary{Name: name, Rows: len(ds.Rows(name))})
			}

			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			rows := make([]table.Row, 0, len(summary))
			for _, s := range summary {
				rows = append(rows, table.Row{s.Name, s.Rows})
			}
			writeTable(cmd.OutOrStdout(), table.Row{"Region", "Rows"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.path, "in", "", "dataset file to read")
	cmd.Flags().StringVar(&in.format, "format", "", "input format (default: from extension)")
	cmd.Flags().StringVar(&in.charset, "charset", "", "legacy charset of the input")
	cmd.Flags().StringSliceVar(&pinned, "pin", nil, "regions listed first, in order")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
