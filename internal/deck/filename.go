package deck

import (
	"fmt"
	"strings"
)

const FileExtension = ".pptx"

const allowedPunctuation = "-_.() "

// Filename derives the output name from grade, subject and topic. Distinct topics
// may map to the same name.
func Filename(grade int, subject, topic string) string {
	base := fmt.Sprintf("Class%d_%s_%s_presentation", grade, subject, topic)
	base = strings.ReplaceAll(base, " ", "_")
	return collapseUnderscores(sanitize(base)) + FileExtension
}

func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isAllowedRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAllowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	default:
		return strings.ContainsRune(allowedPunctuation, r)
	}
}

func collapseUnderscores(s string) string {
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return s
}
