package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/permcatalog/edu-catalog/internal/config"
	"github.com/permcatalog/edu-catalog/internal/r2client"
	"github.com/permcatalog/edu-catalog/internal/storage"
)

// statter is implemented by stores that can confirm an upload landed.
type statter interface {
	Stat(ctx context.Context, key string) (r2client.ObjectInfo, error)
}

func newPublishCmd(opts Options) *cobra.Command {
	var dbPath, key string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Compress a SQLite catalog and upload it to R2",
		Long: `publish validates the catalog, compresses it with zstd and uploads it
under the configured object key. Credentials come from the CATALOG_R2_*
environment variables (a .env file is honored).`,
		Example: `  catalogctl publish --db catalog.db
  catalogctl publish --db catalog.db --key staging/catalog.db.zst`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.LoadUnvalidated()
			if err != nil {
				return err
			}
			if !cfg.R2Configured() {
				return fmt.Errorf("R2 is not configured: set %s (or %s), %s, %s and %s",
					config.EnvR2AccountID, config.EnvR2Endpoint, config.EnvR2AccessKeyID,
					config.EnvR2SecretAccessKey, config.EnvR2BucketName)
			}
			if key == "" {
				key = cfg.R2ObjectKey
			}

			metadata, err := catalogMetadata(cmd, dbPath)
			if err != nil {
				return err
			}

			dir, err := os.MkdirTemp("", "catalogctl-*")
			if err != nil {
				return err
			}
			defer func() { _ = os.RemoveAll(dir) }()

			compressed := filepath.Join(dir, "catalog.db.zst")
			if err := r2client.CompressFile(dbPath, compressed); err != nil {
				return err
			}
			f, err := os.Open(compressed)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			uploader, err := opts.NewUploader(ctx, cfg.R2())
			if err != nil {
				return err
			}
			etag, err := uploader.Upload(ctx, key, f, r2client.ContentTypeZstd, metadata)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "published %s (etag %s, %s regions, %s rows)\n",
				key, etag, metadata["regions"], metadata["rows"])

			if s, ok := uploader.(statter); ok {
				info, err := s.Stat(ctx, key)
				if err != nil {
					return fmt.Errorf("verify upload: %w", err)
				}
				if info.ETag != etag {
					return fmt.Errorf("verify upload: etag %s, want %s", info.ETag, etag)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "verified %d bytes\n", info.Size)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "catalog.db", "SQLite catalog to publish")
	cmd.Flags().StringVar(&key, "key", "", "object key (default: "+config.EnvR2ObjectKey+")")
	return cmd
}

// catalogMetadata opens the catalog, checks it loads and summarizes it as
// object metadata.
func catalogMetadata(cmd *cobra.Command, dbPath string) (map[string]string, error) {
	ctx := cmd.Context()
	if _, err := os.Stat(dbPath); err != nil {
		return nil, err
	}

	db, err := storage.OpenReadOnly(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	ds, err := db.LoadDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid catalog: %w", dbPath, err)
	}
	builtAt, _ := db.GetMeta(ctx, storage.MetaBuiltAt)
	source, _ := db.GetMeta(ctx, storage.MetaSource)

	return map[string]string{
		"regions":  strconv.Itoa(len(ds)),
		"rows":     strconv.Itoa(ds.Count()),
		"built-at": builtAt,
		"source":   source,
	}, nil
}
