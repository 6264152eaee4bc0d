package catalog

import "github.com/permcatalog/edu-catalog/internal/stringutil"

// Filter returns the rows matching a free-text query, preserving order.
//
// The query is trimmed and matched case-insensitively as a substring.
// Heading rows survive only an empty query. The input is never modified.
func Filter(rows []Row, query string) []Row {
	q := stringutil.NormalizeQuery(query)
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.matches(q) {
			out = append(out, r)
		}
	}
	return out
}

func (r Row) matches(q string) bool {
	switch r.Kind {
	case KindHeading:
		return q == ""
	case KindPrograms:
		if q == "" {
			return true
		}
		return stringutil.ContainsFold(r.Programs.Level, q) || anyDirection(r.Programs.Programs, q)
	default:
		if q == "" {
			return true
		}
		inst := r.Institution
		return stringutil.ContainsFold(inst.Number, q) ||
			stringutil.ContainsFold(inst.Name, q) ||
			anyDirection(inst.Directions, q)
	}
}

func anyDirection(dirs []Direction, q string) bool {
	for _, d := range dirs {
		if stringutil.ContainsFold(d.Code, q) || stringutil.ContainsFold(d.Title, q) {
			return true
		}
	}
	return false
}
