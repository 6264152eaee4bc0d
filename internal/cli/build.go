package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/permcatalog/edu-catalog/internal/storage"
)

func newBuildCmd() *cobra.Command {
	var (
		in     inputFlags
		out    string
		source string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Decode a dataset file and write the SQLite catalog",
		Example: `  catalogctl build --in data/catalog.js --out catalog.db
  catalogctl build --in legacy.json --charset windows-1251 --out catalog.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ds, err := in.load(ctx)
			if err != nil {
				return err
			}
			if source == "" {
				source = filepath.Base(in.path)
			}

			// Build next to the target and rename, so a crash never leaves a
			// half-written catalog at the output path.
			tmp := out + ".tmp"
			_ = os.Remove(tmp)
			db, err := storage.New(ctx, tmp)
			if err != nil {
				return err
			}
			if err := db.SaveDataset(ctx, ds, source); err != nil {
				_ = db.Close()
				return fmt.Errorf("save dataset: %w", err)
			}
			written, err := writtenRows(ctx, db)
			if err == nil && written != ds.Count() {
				err = fmt.Errorf("catalog holds %d rows, dataset has %d", written, ds.Count())
			}
			if err == nil {
				err = db.Checkpoint(ctx)
			}
			if err != nil {
				_ = db.Close()
				return err
			}
			if err := db.Close(); err != nil {
				return err
			}
			for _, suffix := range []string{"-wal", "-shm"} {
				_ = os.Remove(tmp + suffix)
			}
			if err := os.Rename(tmp, out); err != nil {
				return fmt.Errorf("install catalog: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d regions, %d rows\n", out, len(ds), ds.Count())
			return nil
		},
	}

	cmd.Flags().StringVar(&in.path, "in", "", "dataset file to read")
	cmd.Flags().StringVar(&in.format, "format", "", "input format: json, js, yaml or sqlite (default: from extension)")
	cmd.Flags().StringVar(&in.charset, "charset", "", "legacy charset of the input, e.g. windows-1251")
	cmd.Flags().StringVar(&out, "out", "catalog.db", "SQLite catalog to write")
	cmd.Flags().StringVar(&source, "source", "", "source label stored in the catalog (default: input file name)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func writtenRows(ctx context.Context, db *storage.DB) (int, error) {
	counts, err := db.CountRows(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}
