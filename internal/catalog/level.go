package catalog

import (
	"fmt"
	"strings"
)

// Level is a degree classification derived from a program code.
type Level int

const (
	LevelUnclassified Level = iota
	LevelBachelor
	LevelSpecialist
	LevelMaster
	LevelPostgraduate
	LevelResidency
	LevelAssistantship
	LevelVocational
)

// higherOrder is the display order of higher-education levels.
// Vocational and unclassified sections always follow it, in that order.
var higherOrder = []Level{
	LevelBachelor,
	LevelSpecialist,
	LevelMaster,
	LevelPostgraduate,
	LevelResidency,
	LevelAssistantship,
}

// String returns a stable identifier used in JSON and logs.
func (l Level) String() string {
	switch l {
	case LevelBachelor:
		return "bachelor"
	case LevelSpecialist:
		return "specialist"
	case LevelMaster:
		return "master"
	case LevelPostgraduate:
		return "postgraduate"
	case LevelResidency:
		return "residency"
	case LevelAssistantship:
		return "assistantship"
	case LevelVocational:
		return "vocational"
	default:
		return "unclassified"
	}
}

// Label returns the human-readable section heading of the level.
func (l Level) Label() string {
	switch l {
	case LevelBachelor:
		return "Бакалавриат"
	case LevelSpecialist:
		return "Специалитет"
	case LevelMaster:
		return "Магистратура"
	case LevelPostgraduate:
		return "Аспирантура"
	case LevelResidency:
		return "Ординатура"
	case LevelAssistantship:
		return "Ассистентура"
	case LevelVocational:
		return "Среднее профильное образование"
	default:
		return "Другое"
	}
}

// IsHigher reports whether the level is a higher-education level.
func (l Level) IsHigher() bool {
	return l >= LevelBachelor && l <= LevelAssistantship
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Classify maps a program code (e.g. "09.03.02") to its level.
// The first matching rule wins; an absent or unrecognized code is unclassified.
func Classify(code string) Level {
	c := strings.TrimSpace(code)
	if c == "" {
		return LevelUnclassified
	}

	switch {
	case strings.Contains(c, ".02."):
		return LevelVocational
	case strings.Contains(c, ".03."):
		return LevelBachelor
	case strings.Contains(c, ".04."):
		return LevelMaster
	case strings.Contains(c, ".05."):
		return LevelSpecialist
	case hasPostgraduatePrefix(c):
		return LevelPostgraduate
	case strings.Contains(c, ".08."):
		return LevelResidency
	case strings.Contains(c, ".09."):
		return LevelAssistantship
	}
	return LevelUnclassified
}

// hasPostgraduatePrefix matches the "N." scientific specialty prefix, N in 1..6.
func hasPostgraduatePrefix(c string) bool {
	return len(c) >= 2 && c[0] >= '1' && c[0] <= '6' && c[1] == '.'
}

// VocationalPolicy decides when vocational directions get their own labeled
// section.
type VocationalPolicy string

const (
	// VocationalAuto labels vocational directions only when the institution
	// also offers at least one higher-education direction.
	VocationalAuto VocationalPolicy = "auto"
	// VocationalAlways always labels vocational directions.
	VocationalAlways VocationalPolicy = "always"
	// VocationalNever renders vocational directions without a label.
	VocationalNever VocationalPolicy = "never"
)

// ParseVocationalPolicy parses a policy name. Empty input means VocationalAuto.
func ParseVocationalPolicy(s string) (VocationalPolicy, error) {
	switch p := VocationalPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return VocationalAuto, nil
	case VocationalAuto, VocationalAlways, VocationalNever:
		return p, nil
	default:
		return "", fmt.Errorf("unknown vocational policy %q (want auto, always or never)", s)
	}
}
