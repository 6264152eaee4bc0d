package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/permcatalog/edu-catalog/internal/catalog"
	domerrors "github.com/permcatalog/edu-catalog/internal/errors"
	"github.com/permcatalog/edu-catalog/internal/r2client"
	"github.com/permcatalog/edu-catalog/internal/storage"
)

// Source yields datasets. Version must be cheap; it is polled to detect
// changes before a full Load.
type Source interface {
	Name() string
	Version(ctx context.Context) (string, error)
	Load(ctx context.Context) (catalog.Dataset, string, error)
}

// MetadataSource is a Source that can describe the dataset it last loaded,
// such as the publish metadata of an R2 object.
type MetadataSource interface {
	Source
	Metadata() map[string]string
}

// FileSource reads a dataset file from disk: JSON, a window.catalogData
// script, YAML or a SQLite catalog, each optionally zstd-compressed.
type FileSource struct {
	Path string
	// Format overrides detection from the file extension.
	Format Format
	// Charset is the legacy encoding of text formats (empty = UTF-8).
	Charset string
}

// NewFileSource validates path and charset up front.
func NewFileSource(path string, format Format, charset string) (*FileSource, error) {
	if format == "" {
		f, _, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = f
	}
	if _, err := LookupCharset(charset); err != nil {
		return nil, err
	}
	return &FileSource{Path: path, Format: format, Charset: charset}, nil
}

// Name implements Source.
func (s *FileSource) Name() string { return "file" }

// Version returns the file's modification time and size.
func (s *FileSource) Version(_ context.Context) (string, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return "", wrapNotExist(s.Path, err)
	}
	return strconv.FormatInt(info.ModTime().UnixNano(), 36) + "-" + strconv.FormatInt(info.Size(), 36), nil
}

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) (catalog.Dataset, string, error) {
	version, err := s.Version(ctx)
	if err != nil {
		return nil, "", err
	}

	_, compressed, _ := DetectFormat(s.Path)
	format := s.Format
	if format == "" {
		if format, _, err = DetectFormat(s.Path); err != nil {
			return nil, "", err
		}
	}

	if format == FormatSQLite {
		ds, err := s.loadSQLite(ctx, compressed)
		return ds, version, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, "", wrapNotExist(s.Path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		zr, err := zstdReader(f)
		if err != nil {
			return nil, "", domerrors.NewDecodeError(s.Path, string(format), err)
		}
		defer zr.Close()
		r = zr
	}

	enc, err := LookupCharset(s.Charset)
	if err != nil {
		return nil, "", err
	}

	ds, err := Decode(decodeCharset(r, enc), format)
	if err != nil {
		return nil, "", domerrors.NewDecodeError(s.Path, string(format), err)
	}
	return ds, version, nil
}

func (s *FileSource) loadSQLite(ctx context.Context, compressed bool) (catalog.Dataset, error) {
	if !compressed {
		return LoadSQLite(ctx, s.Path)
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, wrapNotExist(s.Path, err)
	}
	defer f.Close()
	return loadCompressedSQLite(ctx, f)
}

// LoadSQLite reads a SQLite catalog file into memory.
func LoadSQLite(ctx context.Context, path string) (catalog.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, wrapNotExist(path, err)
	}
	db, err := storage.OpenReadOnly(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	return db.LoadDataset(ctx)
}

// loadCompressedSQLite decompresses a zstd SQLite catalog into a temporary
// directory, loads it and removes the copy.
func loadCompressedSQLite(ctx context.Context, r io.Reader) (catalog.Dataset, error) {
	dir, err := os.MkdirTemp("", "catalog-*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, "catalog.db")
	if err := r2client.DecompressStream(r, path); err != nil {
		return nil, domerrors.NewDecodeError("catalog.db.zst", string(FormatSQLite), err)
	}
	return LoadSQLite(ctx, path)
}

func wrapNotExist(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, domerrors.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", path, err)
}

// ObjectStore is the subset of the R2 client a remote source needs.
type ObjectStore interface {
	HeadObject(ctx context.Context, key string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, r2client.ObjectInfo, error)
}

// R2Source loads a zstd-compressed SQLite catalog published to R2.
// The object's ETag is its version.
type R2Source struct {
	Store ObjectStore
	Key   string

	mu   sync.Mutex
	meta map[string]string
}

// Name implements Source.
func (s *R2Source) Name() string { return "r2" }

// Version implements Source.
func (s *R2Source) Version(ctx context.Context) (string, error) {
	etag, err := s.Store.HeadObject(ctx, s.Key)
	if errors.Is(err, r2client.ErrNotFound) {
		return "", fmt.Errorf("r2 %s: %w", s.Key, domerrors.ErrNotFound)
	}
	return etag, err
}

// Load implements Source.
func (s *R2Source) Load(ctx context.Context) (catalog.Dataset, string, error) {
	body, info, err := s.Store.Download(ctx, s.Key)
	if errors.Is(err, r2client.ErrNotFound) {
		return nil, "", fmt.Errorf("r2 %s: %w", s.Key, domerrors.ErrNotFound)
	}
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = body.Close() }()

	ds, err := loadCompressedSQLite(ctx, body)
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	s.meta = maps.Clone(info.Metadata)
	s.mu.Unlock()
	return ds, info.ETag, nil
}

// Metadata returns the user metadata of the last loaded object, as written
// by catalogctl publish.
func (s *R2Source) Metadata() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.meta)
}

// StaticSource serves a fixed in-memory dataset.
type StaticSource struct {
	Dataset catalog.Dataset
	Tag     string
	Meta    map[string]string
}

// Name implements Source.
func (s *StaticSource) Name() string { return "static" }

// Version implements Source.
func (s *StaticSource) Version(context.Context) (string, error) { return s.Tag, nil }

// Load implements Source.
func (s *StaticSource) Load(context.Context) (catalog.Dataset, string, error) {
	return s.Dataset, s.Tag, nil
}

// Metadata implements MetadataSource.
func (s *StaticSource) Metadata() map[string]string { return maps.Clone(s.Meta) }
