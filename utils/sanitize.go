package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	DisplayNameMinLen = 1
	DisplayNameMaxLen = 32
)

// Characters stripped from display names before validation. Covers the
// usual HTML/script injection vectors alongside path separators.
const disallowedDisplayNameChars = `<>"'&/\`

// SanitizeDisplayName normalizes a proposed display name: NFKC fold, strip
// control and injection characters, trim surrounding whitespace. Runs
// BEFORE length validation so that e.g. "  <x>  " is judged by what remains.
func SanitizeDisplayName(raw string) string {
	folded := norm.NFKC.String(raw)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsControl(r) {
			continue
		}
		if strings.ContainsRune(disallowedDisplayNameChars, r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.TrimSpace(b.String())
}

// ValidDisplayName reports whether an already-sanitized name is acceptable.
func ValidDisplayName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= DisplayNameMinLen && n <= DisplayNameMaxLen
}
