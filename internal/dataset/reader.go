package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	domerrors "github.com/permcatalog/edu-catalog/internal/errors"
)

// LookupCharset resolves a WHATWG encoding label such as "windows-1251" or
// "koi8-r". An empty label means UTF-8.
func LookupCharset(label string) (encoding.Encoding, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: charset %q", domerrors.ErrUnsupportedFormat, label)
	}
	return enc, nil
}

// decodeCharset wraps r so that it yields UTF-8.
func decodeCharset(r io.Reader, enc encoding.Encoding) io.Reader {
	if enc == nil || enc == unicode.UTF8 {
		return r
	}
	return transform.NewReader(r, enc.NewDecoder())
}

// zstdReader wraps r in a streaming zstd decoder. Close releases the decoder.
func zstdReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return dec.IOReadCloser(), nil
}
