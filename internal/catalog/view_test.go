package catalog

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildView_EmptyState(t *testing.T) {
	t.Parallel()

	v := BuildView(sampleRows(), "астрономия", VocationalAuto)
	assert.True(t, v.Empty)
	assert.Empty(t, v.Rows)

	v = BuildView(sampleRows(), "", VocationalAuto)
	assert.False(t, v.Empty)
	assert.Len(t, v.Rows, 4)

	v = BuildView(nil, "", VocationalAuto)
	assert.True(t, v.Empty)
}

func TestBuildView_Institution(t *testing.T) {
	t.Parallel()
	rows := []Row{InstitutionRow(Institution{
		Number:  "12",
		Name:    "Колледж связи",
		Site:    "https://example.ru",
		Group:   "https://vk.com/college",
		Address: "Пермь, ул. Ленина, 1",
		Phone:   "+7 342 000-00-00",
		Email:   "info@example.ru",
		Directions: []Direction{
			{Code: "11.02.15", Title: "Инфокоммуникационные сети"},
		},
	})}

	v := BuildView(rows, "связ", VocationalAuto)

	require.Len(t, v.Rows, 1)
	row := v.Rows[0]
	assert.Equal(t, "institution", row.Kind)
	assert.Equal(t, template.HTML("12"), row.Number)
	assert.Equal(t, template.HTML("Колледж <mark>связ</mark>и"), row.Name)

	require.Len(t, row.Contacts, 5)
	assert.True(t, row.Contacts[0].External)
	assert.True(t, row.Contacts[1].External)
	assert.Empty(t, row.Contacts[2].Href)
	assert.Empty(t, row.Contacts[3].Href)
	assert.Equal(t, "mailto:info@example.ru", row.Contacts[4].Href)
	assert.False(t, row.Contacts[4].External)

	require.Len(t, row.Sections, 1)
	assert.Empty(t, row.Sections[0].Label)
	assert.Equal(t, "vocational", row.Sections[0].Level)
	assert.True(t, row.Sections[0].Items[0].HasCode)
}

func TestBuildView_SkipsMissingContacts(t *testing.T) {
	t.Parallel()
	v := BuildView([]Row{InstitutionRow(Institution{Name: "Школа", Email: " "})}, "", VocationalAuto)

	require.Len(t, v.Rows, 1)
	assert.Empty(t, v.Rows[0].Contacts)
	assert.Empty(t, v.Rows[0].Sections)
}

func TestBuildView_ProgramBlock(t *testing.T) {
	t.Parallel()
	v := BuildView(sampleRows(), "кройки", VocationalAuto)

	require.Len(t, v.Rows, 1)
	row := v.Rows[0]
	assert.Equal(t, "programs", row.Kind)
	assert.Equal(t, template.HTML("Дополнительное образование"), row.Level)
	require.Len(t, row.Programs, 1)
	assert.False(t, row.Programs[0].HasCode)
	assert.Equal(t, template.HTML("Курсы <mark>кройки</mark> и шитья"), row.Programs[0].Title)
}
