package catalog

import (
	"html/template"
	"strings"
)

// View is the render model of one region's filtered listing.
type View struct {
	Region string    `json:"region"`
	Query  string    `json:"query"`
	Rows   []RowView `json:"rows"`
	// Empty is set when no row survived filtering; the "no results"
	// element is shown exactly when Empty is true.
	Empty bool `json:"empty"`
}

// RowView is a highlighted, render-ready row. Fields not used by Kind are
// zero.
type RowView struct {
	Kind string `json:"kind"`

	// heading
	Title template.HTML `json:"title,omitempty"`

	// institution
	Number   template.HTML `json:"number,omitempty"`
	Name     template.HTML `json:"name,omitempty"`
	Contacts []ContactView `json:"contacts,omitempty"`
	Sections []SectionView `json:"sections,omitempty"`

	// programs
	Level    template.HTML `json:"level,omitempty"`
	Programs []ItemView    `json:"programs,omitempty"`
}

// ContactView is one entry of an institution's contact list.
// Href is empty for plain-text contacts.
type ContactView struct {
	Label    string        `json:"label"`
	Href     string        `json:"href,omitempty"`
	Text     template.HTML `json:"text"`
	External bool          `json:"external,omitempty"`
}

// SectionView is a level group of directions. Label is empty for unlabeled
// groups.
type SectionView struct {
	Level string     `json:"level"`
	Label string     `json:"label,omitempty"`
	Items []ItemView `json:"items"`
}

// ItemView is a highlighted code/title pair.
type ItemView struct {
	Code    template.HTML `json:"code,omitempty"`
	Title   template.HTML `json:"title"`
	HasCode bool          `json:"-"`
}

// BuildView filters rows by query and converts the survivors to view rows.
// The result is a pure function of its inputs.
func BuildView(rows []Row, query string, policy VocationalPolicy) View {
	q := strings.TrimSpace(query)
	h := NewHighlighter(q)

	filtered := Filter(rows, q)
	v := View{Query: q, Rows: make([]RowView, 0, len(filtered))}
	for _, r := range filtered {
		v.Rows = append(v.Rows, buildRow(r, h, policy))
	}
	v.Empty = len(v.Rows) == 0
	return v
}

func buildRow(r Row, h *Highlighter, policy VocationalPolicy) RowView {
	switch r.Kind {
	case KindHeading:
		return RowView{Kind: r.Kind.String(), Title: h.HTML(r.Heading.Title)}
	case KindPrograms:
		return RowView{
			Kind:     r.Kind.String(),
			Level:    h.HTML(r.Programs.Level),
			Programs: items(r.Programs.Programs, h),
		}
	default:
		inst := r.Institution
		groups := GroupDirections(inst.Directions, policy)
		sections := make([]SectionView, 0, len(groups))
		for _, g := range groups {
			sections = append(sections, SectionView{
				Level: g.Level.String(),
				Label: g.Label,
				Items: items(g.Directions, h),
			})
		}
		return RowView{
			Kind:     r.Kind.String(),
			Number:   h.HTML(inst.Number),
			Name:     h.HTML(inst.Name),
			Contacts: contacts(inst, h),
			Sections: sections,
		}
	}
}

func items(dirs []Direction, h *Highlighter) []ItemView {
	out := make([]ItemView, 0, len(dirs))
	for _, d := range dirs {
		code := strings.TrimSpace(d.Code)
		out = append(out, ItemView{
			Code:    h.HTML(code),
			Title:   h.HTML(d.Title),
			HasCode: code != "",
		})
	}
	return out
}

func contacts(inst Institution, h *Highlighter) []ContactView {
	var out []ContactView
	if s := strings.TrimSpace(inst.Site); s != "" {
		out = append(out, ContactView{Label: "Сайт:", Href: s, Text: h.HTML(s), External: true})
	}
	if s := strings.TrimSpace(inst.Group); s != "" {
		out = append(out, ContactView{Label: "Группа VK:", Href: s, Text: h.HTML(s), External: true})
	}
	if s := strings.TrimSpace(inst.Address); s != "" {
		out = append(out, ContactView{Label: "Адрес:", Text: h.HTML(s)})
	}
	if s := strings.TrimSpace(inst.Phone); s != "" {
		out = append(out, ContactView{Label: "Тел.:", Text: h.HTML(s)})
	}
	if s := strings.TrimSpace(inst.Email); s != "" {
		out = append(out, ContactView{Label: "E-mail:", Href: "mailto:" + s, Text: h.HTML(s)})
	}
	return out
}
