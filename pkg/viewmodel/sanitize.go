package viewmodel

import (
	"strings"
	"unicode"
)

// blocked is the set of characters stripped from labels to form ids.
const blocked = `&/\#,+()$~%.'":*?<>{}`

// Sanitize derives a tile id from a label by removing the blocked character
// set and all whitespace. It is total and idempotent.
func Sanitize(label string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || strings.ContainsRune(blocked, r) {
			return -1
		}
		return r
	}, label)
}
