package stringutil

import "testing"

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Empty", "", ""},
		{"Spaces only", "   ", ""},
		{"Trim and lower", "  ПГНИУ ", "пгниу"},
		{"Latin", "MiXeD", "mixed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeQuery(tt.input); got != tt.want {
				t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestContainsFold(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		query string
		want  bool
	}{
		{"Empty query matches", "anything", "", true},
		{"Empty query matches empty", "", "", true},
		{"Empty subject", "", "a", false},
		{"Cyrillic case-insensitive", "Пермский Политех", "политех", true},
		{"Code substring", "09.03.02", ".03.", true},
		{"No match", "Медицина", "право", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsFold(tt.s, tt.query); got != tt.want {
				t.Errorf("ContainsFold(%q, %q) = %v, want %v", tt.s, tt.query, got, tt.want)
			}
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", " https://a.ru "); got != "https://a.ru" {
		t.Errorf("FirstNonEmpty() = %q, want %q", got, "https://a.ru")
	}
	if got := FirstNonEmpty(); got != "" {
		t.Errorf("FirstNonEmpty() = %q, want empty", got)
	}
}
