package db

import (
	"strings"
	"unicode"
)

// Slugify normalizes a title into a URL slug: lowercase, keep letters,
// digits, underscores and hyphens, collapse whitespace runs into a
// single hyphen, then truncate to maxLen runes.
func Slugify(title string, maxLen int) string {
	lowered := strings.ToLower(strings.TrimSpace(title))

	var b strings.Builder
	pendingHyphen := false
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if pendingHyphen && b.Len() > 0 {
				b.WriteRune('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			pendingHyphen = true
		}
	}

	slug := b.String()
	if maxLen > 0 {
		runes := []rune(slug)
		if len(runes) > maxLen {
			slug = string(runes[:maxLen])
		}
	}
	return strings.Trim(slug, "-")
}
