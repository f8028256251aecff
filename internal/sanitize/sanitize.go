// Package sanitize cleans user-supplied names before they reach file paths
// and exported table headers.
package sanitize

import (
	"regexp"
	"strings"
)

// MaxSlugLength is the maximum length of a study folder slug.
const MaxSlugLength = 64

// MaxLabelLength is the maximum length of an attribute name or level label.
const MaxLabelLength = 200

// DefaultSlug is used when a study name has no usable characters.
const DefaultSlug = "study"

var (
	// reRepeatedHyphens matches 2 or more consecutive hyphens.
	reRepeatedHyphens = regexp.MustCompile(`-{2,}`)

	// reRepeatedUnderscores matches 2 or more consecutive underscores.
	reRepeatedUnderscores = regexp.MustCompile(`_{2,}`)
)

// StudySlug turns a study name into a folder-safe slug: whitespace becomes a
// hyphen, only [a-zA-Z0-9-_] is kept, repeats collapse, and the result is
// truncated to MaxSlugLength. Names with nothing usable yield DefaultSlug.
func StudySlug(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.TrimSpace(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteRune('-')
		}
	}
	s := b.String()

	s = reRepeatedHyphens.ReplaceAllString(s, "-")
	s = reRepeatedUnderscores.ReplaceAllString(s, "_")

	if len(s) > MaxSlugLength {
		s = s[:MaxSlugLength]
	}
	s = strings.Trim(s, "-_")

	if s == "" {
		return DefaultSlug
	}
	return s
}

// Label strips control characters and surrounding whitespace from an
// attribute name or level label and enforces MaxLabelLength.
func Label(input string) string {
	s := strings.TrimSpace(stripControlChars(input))
	if len(s) > MaxLabelLength {
		s = s[:MaxLabelLength]
	}
	return s
}

// stripControlChars removes ASCII control characters (0x00-0x1F and 0x7F).
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
