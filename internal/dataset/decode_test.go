package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permcatalog/edu-catalog/internal/catalog"
	domerrors "github.com/permcatalog/edu-catalog/internal/errors"
)

const sampleJSON = `{
  "Пермский край": [
    {"type": "heading", "title": "Высшее образование"},
    {
      "number": 1,
      "name": "ПГНИУ",
      "website": "https://psu.ru",
      "vk": "https://vk.com/psu",
      "address": "Пермь",
      "tel": "+7 342 239-64-35",
      "email": "info@psu.ru",
      "directions": [{"code": "09.03.02", "title": "ИСиТ"}]
    },
    {"level": "ДПО", "programs": [{"title": "Курсы"}]},
    {"level": "Без программ"}
  ],
  " Алтайский край ": "not a list"
}`

func TestDecode_JSON(t *testing.T) {
	t.Parallel()
	ds, err := Decode(strings.NewReader(sampleJSON), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, []string{"Алтайский край", "Пермский край"}, ds.Regions())
	assert.Empty(t, ds["Алтайский край"])

	rows := ds["Пермский край"]
	require.Len(t, rows, 4)
	assert.Equal(t, catalog.HeadingRow("Высшее образование"), rows[0])

	inst := rows[1].Institution
	assert.Equal(t, catalog.KindInstitution, rows[1].Kind)
	assert.Equal(t, "1", inst.Number)
	assert.Equal(t, "https://psu.ru", inst.Site)
	assert.Equal(t, "https://vk.com/psu", inst.Group)
	assert.Equal(t, "+7 342 239-64-35", inst.Phone)
	assert.Equal(t, []catalog.Direction{{Code: "09.03.02", Title: "ИСиТ"}}, inst.Directions)

	assert.Equal(t, catalog.ProgramsRow(catalog.ProgramBlock{
		Level:    "ДПО",
		Programs: []catalog.Direction{{Title: "Курсы"}},
	}), rows[2])

	// A level without a programs array is an institution record.
	assert.Equal(t, catalog.KindInstitution, rows[3].Kind)
}

func TestDecode_AliasPrecedence(t *testing.T) {
	t.Parallel()
	ds, err := Decode(strings.NewReader(`{"R": [{"site": "a", "website": "b", "group": "", "vk": "v", "tel": "1", "phone": "2"}]}`), FormatJSON)
	require.NoError(t, err)

	inst := ds["R"][0].Institution
	assert.Equal(t, "a", inst.Site)
	assert.Equal(t, "v", inst.Group)
	assert.Equal(t, "1", inst.Phone)
}

func TestDecode_JS(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		script string
	}{
		{"json body", "window.catalogData = " + sampleJSON + ";\n"},
		{"object literal", `window.catalogData = {
  'Пермский край': [
    { type: 'heading', title: 'Высшее образование' },
    { number: 1, name: 'ПГНИУ', directions: [ { code: '09.03.02', title: 'ИСиТ' } ] },
    { level: 'ДПО', programs: [ { title: 'Курсы' } ] },
    { level: 'Без программ' }
  ],
  ' Алтайский край ': 'not a list'
};`},
		{"comments and trailing commas", `// generated
window.catalogData = {
  // Пермь
  "Пермский край": [
    /* separator */
    {"type": "heading", "title": "Высшее образование"},
    {"number": 1, "name": "ПГНИУ", "directions": [{"code": "09.03.02", "title": "ИСиТ"},]},
    {"level": "ДПО", "programs": [{"title": "Курсы"}]},
    {"level": "Без программ"},
  ],
};`},
		{"minified bare keys", `window.catalogData={"Пермский край":[{type:"heading",title:"Высшее образование"},{number:1,name:"ПГНИУ",directions:[{code:"09.03.02",title:"ИСиТ"}]},{level:"ДПО",programs:[{title:"Курсы"}]},{level:"Без программ"}]};`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ds, err := Decode(strings.NewReader(tt.script), FormatJS)
			require.NoError(t, err)
			require.Len(t, ds["Пермский край"], 4)
			assert.Equal(t, "1", ds["Пермский край"][1].Institution.Number)
			assert.Equal(t, catalog.KindPrograms, ds["Пермский край"][2].Kind)
		})
	}
}

func TestDecode_MalformedFieldsDegrade(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		row   string
		check func(t *testing.T, inst catalog.Institution)
	}{
		{"numeric address", `{"name": "A", "address": 12}`, func(t *testing.T, inst catalog.Institution) {
			assert.Equal(t, "12", inst.Address)
		}},
		{"object site", `{"name": "A", "site": {"u": 1}, "website": "https://a.ru"}`, func(t *testing.T, inst catalog.Institution) {
			assert.Equal(t, "https://a.ru", inst.Site)
		}},
		{"array email", `{"name": "A", "email": ["a@b.ru"]}`, func(t *testing.T, inst catalog.Institution) {
			assert.Empty(t, inst.Email)
		}},
		{"boolean vk", `{"name": "A", "vk": true}`, func(t *testing.T, inst catalog.Institution) {
			assert.Equal(t, "true", inst.Group)
		}},
		{"object number", `{"number": {"x": 1}, "name": "A"}`, func(t *testing.T, inst catalog.Institution) {
			assert.Empty(t, inst.Number)
			assert.Equal(t, "A", inst.Name)
		}},
		{"directions not a list", `{"name": "A", "directions": "none"}`, func(t *testing.T, inst catalog.Institution) {
			assert.Nil(t, inst.Directions)
		}},
		{"bad direction entries skipped", `{"name": "A", "directions": ["09.03.02", null, {"code": 9, "title": "ИСиТ"}]}`, func(t *testing.T, inst catalog.Institution) {
			assert.Equal(t, []catalog.Direction{{Code: "9", Title: "ИСиТ"}}, inst.Directions)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ds, err := Decode(strings.NewReader(`{"R": [`+tt.row+`]}`), FormatJSON)
			require.NoError(t, err)
			require.Len(t, ds["R"], 1)
			assert.Equal(t, "A", ds["R"][0].Institution.Name)
			tt.check(t, ds["R"][0].Institution)
		})
	}
}

func TestDecode_SkipsNonObjectRows(t *testing.T) {
	t.Parallel()
	ds, err := Decode(strings.NewReader(`{"R": ["oops", 3, null, {"name": "A", "programs": "x", "level": "ДПО"}]}`), FormatJSON)
	require.NoError(t, err)
	require.Len(t, ds["R"], 1)
	assert.Equal(t, catalog.KindInstitution, ds["R"][0].Kind, "level without a programs list")
}

func TestDecode_YAMLMalformedFieldsDegrade(t *testing.T) {
	t.Parallel()
	doc := `
R:
  - just a string
  - name: A
    address: {street: Ленина}
    phone: 2396435
    directions: none
  - level: ДПО
    programs:
      - {code: 1.2.3, title: Аспирантура}
      - not a program
`
	ds, err := Decode(strings.NewReader(doc), FormatYAML)
	require.NoError(t, err)

	rows := ds["R"]
	require.Len(t, rows, 2)
	assert.Empty(t, rows[0].Institution.Address)
	assert.Equal(t, "2396435", rows[0].Institution.Phone)
	assert.Nil(t, rows[0].Institution.Directions)
	assert.Equal(t, []catalog.Direction{{Code: "1.2.3", Title: "Аспирантура"}}, rows[1].Programs.Programs)
}

func TestDecode_YAML(t *testing.T) {
	t.Parallel()
	doc := `
Пермский край:
  - type: heading
    title: Высшее образование
  - number: 12
    name: Колледж
    phone: "+7 342 000"
    directions:
      - {code: 09.02.07, title: Программирование}
  - level: ДПО
    programs: []
`
	ds, err := Decode(strings.NewReader(doc), FormatYAML)
	require.NoError(t, err)

	rows := ds["Пермский край"]
	require.Len(t, rows, 3)
	assert.Equal(t, "12", rows[1].Institution.Number)
	assert.Equal(t, "09.02.07", rows[1].Institution.Directions[0].Code)
	assert.Equal(t, catalog.KindPrograms, rows[2].Kind)
	assert.Empty(t, rows[2].Programs.Programs)
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader(`[1, 2]`), FormatJSON)
	assert.ErrorIs(t, err, domerrors.ErrInvalidInput)

	_, err = Decode(strings.NewReader(`window.catalogData = {"R": [`), FormatJS)
	assert.ErrorIs(t, err, domerrors.ErrInvalidInput)

	_, err = Decode(strings.NewReader(`{}`), FormatSQLite)
	assert.ErrorIs(t, err, domerrors.ErrUnsupportedFormat)
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path       string
		format     Format
		compressed bool
		wantErr    bool
	}{
		{"data/catalog.json", FormatJSON, false, false},
		{"scripts/data.JS", FormatJS, false, false},
		{"catalog.yml", FormatYAML, false, false},
		{"catalog.yaml.zst", FormatYAML, true, false},
		{"catalog.db.zst", FormatSQLite, true, false},
		{"catalog.sqlite", FormatSQLite, false, false},
		{"catalog.csv", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			format, compressed, err := DetectFormat(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, domerrors.ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.compressed, compressed)
		})
	}
}

func TestStripScriptAssignment(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `{"a": "x=y"}`, string(stripScriptAssignment([]byte(` window.catalogData = {"a": "x=y"}; `))))
	assert.Equal(t, `{"a": "x=y"}`, string(stripScriptAssignment([]byte(`{"a": "x=y"}`))))
	assert.Equal(t, `{a: 1}`, string(stripScriptAssignment([]byte("// data\nwindow.catalogData={a: 1};"))))
}
