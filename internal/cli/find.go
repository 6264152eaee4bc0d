package cli

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/permcatalog/edu-catalog/internal/storage"
)

func newFindCmd() *cobra.Command {
	var (
		dbPath string
		code   string
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:     "find",
		Short:   "Find institutions offering directions whose code starts with a prefix",
		Example: `  catalogctl find --db catalog.db --code 09.03`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			ctx := cmd.Context()

			if _, err := os.Stat(dbPath); err != nil {
				return err
			}
			db, err := storage.OpenReadOnly(ctx, dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			matches, err := db.FindByCode(ctx, code, limit)
			if err != nil {
				return err
			}

			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), matches)
			}
			rows := make([]table.Row, 0, len(matches))
			for _, m := range matches {
				rows = append(rows, table.Row{m.Region, m.Number, m.Institution, m.Code, m.Title})
			}
			writeTable(cmd.OutOrStdout(), table.Row{"Region", "№", "Institution", "Code", "Title"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "catalog.db", "SQLite catalog to search")
	cmd.Flags().StringVar(&code, "code", "", "code prefix, e.g. 09.03")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of matches")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}
