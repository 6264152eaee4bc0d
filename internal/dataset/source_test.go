package dataset

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/permcatalog/edu-catalog/internal/catalog"
	domerrors "github.com/permcatalog/edu-catalog/internal/errors"
	"github.com/permcatalog/edu-catalog/internal/r2client"
	"github.com/permcatalog/edu-catalog/internal/storage"
)

func sampleDataset() catalog.Dataset {
	return catalog.Dataset{
		"Пермский край": {
			catalog.HeadingRow("Высшее образование"),
			catalog.InstitutionRow(catalog.Institution{
				Number:     "1",
				Name:       "ПГНИУ",
				Directions: []catalog.Direction{{Code: "09.03.02", Title: "ИСиТ"}},
			}),
		},
		"Алтайский край": {
			catalog.InstitutionRow(catalog.Institution{Number: "2", Name: "АлтГУ"}),
		},
	}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// buildCatalogDB writes ds to a SQLite catalog and returns its path.
func buildCatalogDB(t *testing.T, ds catalog.Dataset) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := storage.New(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.SaveDataset(ctx, ds, "test"))
	require.NoError(t, db.Checkpoint(ctx))
	require.NoError(t, db.Close())
	return path
}

func compressBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestFileSource_JSON(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "catalog.json", []byte(sampleJSON))

	src, err := NewFileSource(path, "", "")
	require.NoError(t, err)

	ds, version, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, version)
	assert.Len(t, ds["Пермский край"], 4)

	v2, err := src.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, version, v2)
}

func TestFileSource_CompressedLegacyCharset(t *testing.T) {
	t.Parallel()
	encoded, err := charmap.Windows1251.NewEncoder().Bytes([]byte(`{"Пермский край": [{"name": "Колледж"}]}`))
	require.NoError(t, err)
	path := writeFile(t, "catalog.json.zst", compressBytes(t, encoded))

	src, err := NewFileSource(path, "", "windows-1251")
	require.NoError(t, err)

	ds, _, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Колледж", ds["Пермский край"][0].Institution.Name)
}

func TestFileSource_SQLite(t *testing.T) {
	t.Parallel()
	path := buildCatalogDB(t, sampleDataset())

	src, err := NewFileSource(path, "", "")
	require.NoError(t, err)

	ds, _, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleDataset(), ds)
}

func TestFileSource_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewFileSource("catalog.csv", "", "")
	assert.ErrorIs(t, err, domerrors.ErrUnsupportedFormat)

	_, err = NewFileSource("catalog.json", "", "no-such-charset")
	assert.ErrorIs(t, err, domerrors.ErrUnsupportedFormat)

	src, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json"), "", "")
	require.NoError(t, err)
	_, _, err = src.Load(context.Background())
	assert.ErrorIs(t, err, domerrors.ErrNotFound)

	bad := writeFile(t, "bad.json", []byte(`{"R": [`))
	src, err = NewFileSource(bad, "", "")
	require.NoError(t, err)
	_, _, err = src.Load(context.Background())
	var decodeErr *domerrors.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

type fakeObjectStore struct {
	objects map[string][]byte
	etags   map[string]string
	meta    map[string]map[string]string
}

func (f *fakeObjectStore) HeadObject(_ context.Context, key string) (string, error) {
	if _, ok := f.objects[key]; !ok {
		return "", r2client.ErrNotFound
	}
	return f.etags[key], nil
}

func (f *fakeObjectStore) Download(_ context.Context, key string) (io.ReadCloser, r2client.ObjectInfo, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, r2client.ObjectInfo{}, r2client.ErrNotFound
	}
	info := r2client.ObjectInfo{ETag: f.etags[key], Size: int64(len(data)), Metadata: f.meta[key]}
	return io.NopCloser(bytes.NewReader(data)), info, nil
}

func TestR2Source(t *testing.T) {
	t.Parallel()
	raw, err := os.ReadFile(buildCatalogDB(t, sampleDataset()))
	require.NoError(t, err)

	store := &fakeObjectStore{
		objects: map[string][]byte{"catalog/catalog.db.zst": compressBytes(t, raw)},
		etags:   map[string]string{"catalog/catalog.db.zst": "etag-1"},
		meta: map[string]map[string]string{
			"catalog/catalog.db.zst": {"regions": "2", "built-at": "2026-10-01T08:00:00Z"},
		},
	}
	src := &R2Source{Store: store, Key: "catalog/catalog.db.zst"}

	version, err := src.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "etag-1", version)
	assert.Empty(t, src.Metadata(), "nothing loaded yet")

	ds, etag, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "etag-1", etag)
	assert.Equal(t, sampleDataset(), ds)
	assert.Equal(t, "2026-10-01T08:00:00Z", src.Metadata()["built-at"])

	// The snapshot carries the object metadata.
	st, _ := newTestStore(src)
	_, err = st.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2", st.Current().Meta["regions"])

	missing := &R2Source{Store: store, Key: "nope"}
	_, err = missing.Version(context.Background())
	assert.ErrorIs(t, err, domerrors.ErrNotFound)
	_, _, err = missing.Load(context.Background())
	assert.ErrorIs(t, err, domerrors.ErrNotFound)
}

func TestLookupCharset(t *testing.T) {
	t.Parallel()
	for _, label := range []string{"", "utf-8", "windows-1251", "cp1251", "koi8-r"} {
		_, err := LookupCharset(label)
		assert.NoError(t, err, label)
	}
}
