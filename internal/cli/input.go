package cli

import (
	"context"
	"fmt"

	"github.com/permcatalog/edu-catalog/internal/catalog"
	"github.com/permcatalog/edu-catalog/internal/dataset"
)

// inputFlags are shared by the commands that read a dataset file.
type inputFlags struct {
	path    string
	format  string
	charset string
}

func (f *inputFlags) load(ctx context.Context) (catalog.Dataset, error) {
	if f.path == "" {
		return nil, fmt.Errorf("--in is required")
	}
	src, err := dataset.NewFileSource(f.path, dataset.Format(f.format), f.charset)
	if err != nil {
		return nil, err
	}
	ds, _, err := src.Load(ctx)
	return ds, err
}
