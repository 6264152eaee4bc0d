package catalog

// Section is a run of directions sharing a level.
// An empty Label means the section renders without a heading.
type Section struct {
	Level      Level       `json:"level"`
	Label      string      `json:"label,omitempty"`
	Directions []Direction `json:"directions"`
}

// GroupDirections partitions directions by classified level.
//
// Sections come out in display order: the higher-education levels, then
// vocational, then unclassified. Order within a section follows the input.
// The unclassified section never has a label; the vocational one is labeled
// according to policy.
func GroupDirections(dirs []Direction, policy VocationalPolicy) []Section {
	if len(dirs) == 0 {
		return nil
	}

	buckets := make(map[Level][]Direction)
	hasHigher := false
	for _, d := range dirs {
		level := Classify(d.Code)
		if level.IsHigher() {
			hasHigher = true
		}
		buckets[level] = append(buckets[level], d)
	}

	sections := make([]Section, 0, len(buckets))
	for _, level := range higherOrder {
		if items, ok := buckets[level]; ok {
			sections = append(sections, Section{Level: level, Label: level.Label(), Directions: items})
		}
	}

	if items, ok := buckets[LevelVocational]; ok {
		s := Section{Level: LevelVocational, Directions: items}
		if labelVocational(policy, hasHigher) {
			s.Label = LevelVocational.Label()
		}
		sections = append(sections, s)
	}

	if items, ok := buckets[LevelUnclassified]; ok {
		sections = append(sections, Section{Level: LevelUnclassified, Directions: items})
	}

	return sections
}

func labelVocational(policy VocationalPolicy, hasHigher bool) bool {
	switch policy {
	case VocationalAlways:
		return true
	case VocationalNever:
		return false
	default:
		return hasHigher
	}
}
