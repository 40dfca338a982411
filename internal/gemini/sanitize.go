package gemini

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	invisibleReplacer = strings.NewReplacer(
		"\u2060", "", "\u180E", "",
		"\u200B", " ", "\u200C", " ",
		"\u200D", "", "\uFEFF", "",
		"\u00AD", "", "\u205F", " ",
		"\u202A", "", "\u202B", "",
		"\u202C", "", "\u202D", "", "\u202E", "",
	)

	controlCharsRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	listMarkerRegex   = regexp.MustCompile(`^(?:[-*+\x{2022}]|\d+[.)])\s+`)
	emphasisRegex     = regexp.MustCompile("[*_`~]{1,3}")
)

// sanitizeJoke flattens a generated joke to one plain-text line: invisible
// and control characters go, list markers and markdown emphasis are
// stripped, and whitespace runs collapse to a single space.
func sanitizeJoke(s string) string {
	s = invisibleReplacer.Replace(s)
	s = controlCharsRegex.ReplaceAllString(s, "")
	s = normalizeWhitespace(s)
	s = listMarkerRegex.ReplaceAllString(s, "")
	s = emphasisRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.Trim(s, "\"\u00AB\u00BB"))
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteRune(' ')
				space = true
			}
			continue
		}
		b.WriteRune(r)
		space = false
	}
	return strings.TrimSpace(b.String())
}
