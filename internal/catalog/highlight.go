package catalog

import (
	"html/template"
	"regexp"
	"strings"
)

// Highlighter wraps case-insensitive occurrences of a query in <mark> tags.
// A zero or nil Highlighter only escapes text.
type Highlighter struct {
	re *regexp.Regexp
}

// NewHighlighter compiles a highlighter for the trimmed query.
// The query is quoted, so any user input yields a valid pattern.
func NewHighlighter(query string) *Highlighter {
	q := strings.TrimSpace(query)
	if q == "" {
		return &Highlighter{}
	}
	return &Highlighter{re: regexp.MustCompile("(?i)" + regexp.QuoteMeta(q))}
}

// HTML returns text as safe HTML with every match wrapped in <mark>.
// The matched text keeps its original casing; everything is HTML-escaped.
func (h *Highlighter) HTML(text string) template.HTML {
	if h == nil || h.re == nil || text == "" {
		return template.HTML(template.HTMLEscapeString(text)) //nolint:gosec // escaped above
	}

	matches := h.re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return template.HTML(template.HTMLEscapeString(text)) //nolint:gosec // escaped above
	}

	var b strings.Builder
	b.Grow(len(text) + len(matches)*len("<mark></mark>"))
	last := 0
	for _, m := range matches {
		b.WriteString(template.HTMLEscapeString(text[last:m[0]]))
		b.WriteString("<mark>")
		b.WriteString(template.HTMLEscapeString(text[m[0]:m[1]]))
		b.WriteString("</mark>")
		last = m[1]
	}
	b.WriteString(template.HTMLEscapeString(text[last:]))
	return template.HTML(b.String()) //nolint:gosec // all parts escaped
}

// Highlight is a one-shot helper around NewHighlighter.
func Highlight(text, query string) template.HTML {
	return NewHighlighter(query).HTML(text)
}
