// Package catalog holds the institution catalog data model and the pure
// presentation logic built on it: program level classification, grouping of
// directions by level, search filtering and match highlighting.
//
// Nothing in this package performs I/O. A Dataset is treated as immutable
// once loaded; every view is recomputed from it on demand.
package catalog

// Kind discriminates the row variants of a region listing.
type Kind int

const (
	// KindInstitution is a catalog entry with contacts and directions.
	KindInstitution Kind = iota
	// KindHeading is a section separator carrying only a title.
	KindHeading
	// KindPrograms is a legacy block with a fixed level label and programs.
	KindPrograms
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindPrograms:
		return "programs"
	default:
		return "institution"
	}
}

// Direction is a single degree program offered by an institution.
type Direction struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// Institution is a catalog entry (one table row).
// Contact fields are optional and render only when present.
type Institution struct {
	Number     string      `json:"number"`
	Name       string      `json:"name"`
	Site       string      `json:"site,omitempty"`
	Group      string      `json:"group,omitempty"` // VK community link
	Address    string      `json:"address,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	Email      string      `json:"email,omitempty"`
	Directions []Direction `json:"directions"`
}

// Heading is a visual separator row.
type Heading struct {
	Title string `json:"title"`
}

// ProgramBlock is the older record shape: a level label with its programs.
// Programs in a block are never classified.
type ProgramBlock struct {
	Level    string      `json:"level"`
	Programs []Direction `json:"programs"`
}

// Row is one entry of a region listing. Exactly one of the variant fields is
// meaningful, selected by Kind.
type Row struct {
	Kind        Kind
	Heading     Heading
	Institution Institution
	Programs    ProgramBlock
}

// HeadingRow wraps a heading title into a Row.
func HeadingRow(title string) Row {
	return Row{Kind: KindHeading, Heading: Heading{Title: title}}
}

// InstitutionRow wraps an institution into a Row.
func InstitutionRow(inst Institution) Row {
	return Row{Kind: KindInstitution, Institution: inst}
}

// ProgramsRow wraps a legacy program block into a Row.
func ProgramsRow(block ProgramBlock) Row {
	return Row{Kind: KindPrograms, Programs: block}
}

// Dataset maps a region name to its ordered rows.
type Dataset map[string][]Row

// Rows returns the rows of a region, or nil when the region is unknown.
func (d Dataset) Rows(region string) []Row {
	if d == nil {
		return nil
	}
	return d[region]
}

// Count returns the total number of rows across all regions.
func (d Dataset) Count() int {
	n := 0
	for _, rows := range d {
		n += len(rows)
	}
	return n
}
