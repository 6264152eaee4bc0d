// Package cli implements catalogctl, the offline tool that builds, inspects
// and publishes catalog datasets.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/permcatalog/edu-catalog/internal/buildinfo"
	"github.com/permcatalog/edu-catalog/internal/r2client"
)

// Uploader stores a published catalog object.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string, metadata map[string]string) (string, error)
}

// Options injects dependencies that reach outside the process.
type Options struct {
	// NewUploader builds the object store client for publish. Defaults to
	// an R2 client.
	NewUploader func(ctx context.Context, cfg r2client.Config) (Uploader, error)
}

// NewRootCmd creates the catalogctl command tree.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.NewUploader == nil {
		opts.NewUploader = func(ctx context.Context, cfg r2client.Config) (Uploader, error) {
			return r2client.New(ctx, cfg)
		}
	}

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Build, inspect and publish the institution catalog",
		Long: `catalogctl works with catalog datasets offline.

Datasets are read from JSON, YAML, a window.catalogData script or a SQLite
catalog, each optionally zstd-compressed. "build" turns any of them into the
SQLite catalog that "publish" uploads for the server's r2 source.`,
		Version:       buildinfo.Release(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newBuildCmd(),
		newPublishCmd(opts),
		newClassifyCmd(),
		newRenderCmd(),
		newRegionsCmd(),
		newFindCmd(),
	)
	return root
}
