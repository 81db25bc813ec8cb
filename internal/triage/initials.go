package triage

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// PlaceholderInitials is shown when no initials can be derived.
const PlaceholderInitials = "?"

const maxInitials = 2

// InitialsOf derives up to two uppercase initials from an email-like
// identifier: "jane.doe@example.com" becomes "JD", "bob" becomes "B".
func InitialsOf(identifier string) string {
	if identifier == "" {
		return PlaceholderInitials
	}

	local, _, _ := strings.Cut(identifier, "@")

	var b strings.Builder
	n := 0
	for _, segment := range strings.Split(local, ".") {
		if n == maxInitials {
			break
		}
		r, size := utf8.DecodeRuneInString(segment)
		if size == 0 {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		n++
	}

	if b.Len() == 0 {
		return PlaceholderInitials
	}
	return b.String()
}
