package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/permcatalog/edu-catalog/internal/sliceutil"
)

// DefaultRegion is selected when a request names no known region.
const DefaultRegion = "Пермский край"

// Regions returns the dataset's region names in display order.
func (d Dataset) Regions() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	return OrderRegions(names, nil)
}

// OrderRegions sorts region names with Russian collation.
//
// Pinned names that exist in names are moved to the front in the given order.
// Blank and duplicate names are dropped.
func OrderRegions(names, pinned []string) []string {
	present := make(map[string]bool, len(names))
	rest := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || present[n] {
			continue
		}
		present[n] = true
		rest = append(rest, n)
	}

	// collate.Collator is not safe for concurrent use.
	c := collate.New(language.Russian)
	c.SortStrings(rest)

	head := make([]string, 0, len(pinned))
	for _, p := range pinned {
		p = strings.TrimSpace(p)
		if present[p] {
			head = append(head, p)
		}
	}
	head = sliceutil.Deduplicate(head, func(s string) string { return s })
	if len(head) == 0 {
		return rest
	}

	out := make([]string, 0, len(rest))
	out = append(out, head...)
	for _, n := range rest {
		if !slices.Contains(head, n) {
			out = append(out, n)
		}
	}
	return out
}

// PickRegion resolves the region to display: the requested one when known,
// else the fallback, else the first in order. It returns "" for no regions.
func PickRegion(ordered []string, requested, fallback string) string {
	for _, want := range []string{strings.TrimSpace(requested), fallback} {
		if want != "" && slices.Contains(ordered, want) {
			return want
		}
	}
	if len(ordered) > 0 {
		return ordered[0]
	}
	return ""
}
