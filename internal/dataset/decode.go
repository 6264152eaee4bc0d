// Package dataset loads catalog datasets from files, SQLite catalogs and R2,
// and serves them to the web layer as immutable snapshots.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"

	"github.com/permcatalog/edu-catalog/internal/catalog"
	domerrors "github.com/permcatalog/edu-catalog/internal/errors"
	"github.com/permcatalog/edu-catalog/internal/stringutil"
)

// Format is a dataset encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatJS     Format = "js" // window.catalogData = {...};
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// DetectFormat infers the format from a file name. A trailing ".zst" is
// reported separately as compressed.
func DetectFormat(path string) (format Format, compressed bool, err error) {
	name := strings.ToLower(filepath.Base(path))
	if trimmed, ok := strings.CutSuffix(name, ".zst"); ok {
		name, compressed = trimmed, true
	}

	switch filepath.Ext(name) {
	case ".json":
		return FormatJSON, compressed, nil
	case ".js":
		return FormatJS, compressed, nil
	case ".yaml", ".yml":
		return FormatYAML, compressed, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, compressed, nil
	}
	return "", compressed, fmt.Errorf("%w: %q", domerrors.ErrUnsupportedFormat, path)
}

// FlexString accepts any JSON/YAML value in a text field. Strings are kept,
// numbers and booleans are stringified, and objects, arrays and null become
// "". It never fails: hand-edited datasets put numbers in address and phone
// fields, and a bad field must not reject the dataset.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = ""
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if json.Unmarshal(data, &s) == nil {
			*f = FlexString(s)
		}
	case 't', 'f':
		var b bool
		if json.Unmarshal(data, &b) == nil {
			*f = FlexString(strconv.FormatBool(b))
		}
	case '{', '[', 'n':
	default:
		var n json.Number
		if json.Unmarshal(data, &n) == nil {
			*f = FlexString(n.String())
		}
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *FlexString) UnmarshalYAML(value *yaml.Node) error {
	*f = ""
	if value.Kind == yaml.ScalarNode && value.Tag != "!!null" {
		*f = FlexString(value.Value)
	}
	return nil
}

// flexList decodes an array, skipping elements of the wrong shape. Any
// non-array value decodes to nil.
type flexList[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (l *flexList[T]) UnmarshalJSON(data []byte) error {
	*l = nil
	var items []json.RawMessage
	if json.Unmarshal(data, &items) != nil || items == nil {
		return nil
	}
	out := make(flexList[T], 0, len(items))
	for _, raw := range items {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var item T
		if json.Unmarshal(raw, &item) == nil {
			out = append(out, item)
		}
	}
	*l = out
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *flexList[T]) UnmarshalYAML(value *yaml.Node) error {
	*l = nil
	if value.Kind != yaml.SequenceNode {
		return nil
	}
	out := make(flexList[T], 0, len(value.Content))
	for _, node := range value.Content {
		if node.Tag == "!!null" {
			continue
		}
		var item T
		if node.Decode(&item) == nil {
			out = append(out, item)
		}
	}
	*l = out
	return nil
}

type rawDirection struct {
	Code  FlexString `json:"code" yaml:"code"`
	Title FlexString `json:"title" yaml:"title"`
}

// rawRow is the union of every record shape found in datasets.
type rawRow struct {
	Type  FlexString `json:"type" yaml:"type"`
	Title FlexString `json:"title" yaml:"title"`

	Level    FlexString             `json:"level" yaml:"level"`
	Programs flexList[rawDirection] `json:"programs" yaml:"programs"`

	Number     FlexString             `json:"number" yaml:"number"`
	Name       FlexString             `json:"name" yaml:"name"`
	Site       FlexString             `json:"site" yaml:"site"`
	Website    FlexString             `json:"website" yaml:"website"`
	Group      FlexString             `json:"group" yaml:"group"`
	VK         FlexString             `json:"vk" yaml:"vk"`
	Address    FlexString             `json:"address" yaml:"address"`
	Tel        FlexString             `json:"tel" yaml:"tel"`
	Phone      FlexString             `json:"phone" yaml:"phone"`
	Email      FlexString             `json:"email" yaml:"email"`
	Directions flexList[rawDirection] `json:"directions" yaml:"directions"`
}

func (r rawRow) row() catalog.Row {
	if strings.TrimSpace(string(r.Type)) == "heading" {
		return catalog.HeadingRow(string(r.Title))
	}
	if r.Level != "" && r.Programs != nil {
		return catalog.ProgramsRow(catalog.ProgramBlock{
			Level:    string(r.Level),
			Programs: directions(r.Programs),
		})
	}
	return catalog.InstitutionRow(catalog.Institution{
		Number:     string(r.Number),
		Name:       string(r.Name),
		Site:       stringutil.FirstNonEmpty(string(r.Site), string(r.Website)),
		Group:      stringutil.FirstNonEmpty(string(r.Group), string(r.VK)),
		Address:    string(r.Address),
		Phone:      stringutil.FirstNonEmpty(string(r.Tel), string(r.Phone)),
		Email:      string(r.Email),
		Directions: directions(r.Directions),
	})
}

func directions(raw flexList[rawDirection]) []catalog.Direction {
	if len(raw) == 0 {
		return nil
	}
	out := make([]catalog.Direction, 0, len(raw))
	for _, d := range raw {
		out = append(out, catalog.Direction{Code: string(d.Code), Title: string(d.Title)})
	}
	return out
}

// Decode parses a text dataset. SQLite catalogs are not text; use a Source.
func Decode(r io.Reader, format Format) (catalog.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatJS:
		return decodeScript(data)
	}
	return nil, fmt.Errorf("%w: %q", domerrors.ErrUnsupportedFormat, format)
}

// stripScriptAssignment turns `window.catalogData = {...};` into `{...}`.
func stripScriptAssignment(data []byte) []byte {
	body := bytes.TrimSpace(data)
	if len(body) > 0 && body[0] != '{' && body[0] != '[' {
		if i := bytes.IndexByte(body, '='); i >= 0 {
			body = body[i+1:]
		}
	}
	body = bytes.TrimSpace(body)
	body = bytes.TrimSuffix(body, []byte(";"))
	return bytes.TrimSpace(body)
}

// decodeScript parses the object literal of a catalog script. Plain JSON is
// tried first; otherwise the literal is read as JSON5, which covers bare
// keys, single quotes, comments and trailing commas.
func decodeScript(data []byte) (catalog.Dataset, error) {
	body := stripScriptAssignment(data)
	if ds, err := decodeJSON(body); err == nil {
		return ds, nil
	}

	var literal map[string]any
	if err := json5.Unmarshal(body, &literal); err != nil {
		return nil, fmt.Errorf("%w: object literal: %w", domerrors.ErrInvalidInput, err)
	}
	normalized, err := json.Marshal(literal)
	if err != nil {
		return nil, fmt.Errorf("%w: object literal: %w", domerrors.ErrInvalidInput, err)
	}
	return decodeJSON(normalized)
}

func decodeJSON(data []byte) (catalog.Dataset, error) {
	var regions map[string]json.RawMessage
	if err := json.Unmarshal(data, &regions); err != nil {
		return nil, fmt.Errorf("%w: %w", domerrors.ErrInvalidInput, err)
	}

	ds := make(catalog.Dataset, len(regions))
	for name, raw := range regions {
		var rows flexList[rawRow]
		_ = json.Unmarshal(raw, &rows)
		addRegion(ds, name, rows)
	}
	return ds, nil
}

func decodeYAML(data []byte) (catalog.Dataset, error) {
	var regions map[string]yaml.Node
	if err := yaml.Unmarshal(data, &regions); err != nil {
		return nil, fmt.Errorf("%w: %w", domerrors.ErrInvalidInput, err)
	}

	ds := make(catalog.Dataset, len(regions))
	for name, node := range regions {
		var rows flexList[rawRow]
		_ = node.Decode(&rows)
		addRegion(ds, name, rows)
	}
	return ds, nil
}

// addRegion converts raw rows, trimming the region name. A region whose value
// is not a list is kept with no rows; entries that are not objects are
// skipped.
func addRegion(ds catalog.Dataset, name string, raw flexList[rawRow]) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	rows := ds[name]
	if rows == nil {
		rows = make([]catalog.Row, 0, len(raw))
	}
	for _, r := range raw {
		rows = append(rows, r.row())
	}
	ds[name] = rows
}
