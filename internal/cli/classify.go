package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/permcatalog/edu-catalog/internal/catalog"
)

type classification struct {
	Code  string        `json:"code"`
	Level catalog.Level `json:"level"`
	Label string        `json:"label"`
}

func newClassifyCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "classify CODE...",
		Short:   "Print the education level of program codes",
		Example: `  catalogctl classify 09.03.02 09.02.07 5.2.3`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}

			results := make([]classification, 0, len(args))
			for _, code := range args {
				level := catalog.Classify(code)
				results = append(results, classification{Code: code, Level: level, Label: level.Label()})
			}

			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			rows := make([]table.Row, 0, len(results))
			for _, r := range results {
				rows = append(rows, table.Row{r.Code, r.Level, r.Label})
			}
			writeTable(cmd.OutOrStdout(), table.Row{"Code", "Level", "Label"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}
