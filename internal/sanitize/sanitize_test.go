package sanitize

import (
	"strings"
	"testing"
)

func TestStudySlug(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "snacks", "snacks"},
		{"spaces", "Coffee Study 2026", "Coffee-Study-2026"},
		{"path traversal", "../../etc/passwd", "etcpasswd"},
		{"repeated separators", "a  --  b__c", "a-b_c"},
		{"leading and trailing separators", " -study- ", "study"},
		{"unicode dropped", "café", "caf"},
		{"empty", "", DefaultSlug},
		{"nothing usable", "!!!", DefaultSlug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StudySlug(tt.input); got != tt.want {
				t.Errorf("StudySlug(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStudySlug_Truncates(t *testing.T) {
	got := StudySlug(strings.Repeat("a", MaxSlugLength+10))
	if len(got) != MaxSlugLength {
		t.Errorf("len = %d, want %d", len(got), MaxSlugLength)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "price", "price"},
		{"trims", "  $1.99 ", "$1.99"},
		{"control chars", "pri\x00ce\n", "price"},
		{"keeps unicode", "größe", "größe"},
		{"delete char", "a\x7fb", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.input); got != tt.want {
				t.Errorf("Label(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
