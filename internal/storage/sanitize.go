package storage

import "strings"

var likeEscaper = strings.NewReplacer(
	`\`, `\\`, // backslash first
	"%", `\%`,
	"_", `\_`,
)

// sanitizeSearchTerm escapes LIKE wildcards for use with ESCAPE '\'.
func sanitizeSearchTerm(term string) string {
	return likeEscaper.Replace(term)
}
