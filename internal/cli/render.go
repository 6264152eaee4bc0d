package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/permcatalog/edu-catalog/internal/catalog"
)

func newRenderCmd() *cobra.Command {
	var (
		in     inputFlags
		region string
		query  string
		policy string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the JSON view of a region, filtered by a query",
		Long: `render applies the same filtering, grouping and highlighting as the
server and prints the result as JSON. An unknown or empty region falls back
to the default region, then to the first one.`,
		Example: `  catalogctl render --in data/catalog.js --region "Пермский край" --q информатика`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := catalog.ParseVocationalPolicy(policy)
			if err != nil {
				return err
			}
			ds, err := in.load(cmd.Context())
			if err != nil {
				return err
			}

			resolved := catalog.PickRegion(catalog.OrderRegions(ds.Regions(), nil), region, catalog.DefaultRegion)
			if region != "" && resolved != region {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "region %q not found, using %q\n", region, resolved)
			}

			v := catalog.BuildView(ds.Rows(resolved), query, p)
			v.Region = resolved
			return writeJSON(cmd.OutOrStdout(), v)
		},
	}

	cmd.Flags().StringVar(&in.path, "in", "", "dataset file to read")
	cmd.Flags().StringVar(&in.format, "format", "", "input format (default: from extension)")
	cmd.Flags().StringVar(&in.charset, "charset", "", "legacy charset of the input")
	cmd.Flags().StringVar(&region, "region", "", "region to render")
	cmd.Flags().StringVarP(&query, "q", "q", "", "search query")
	cmd.Flags().StringVar(&policy, "vocational-label", string(catalog.VocationalAuto), "vocational section label: auto, always or never")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
