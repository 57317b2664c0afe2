package journal

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// isXMLForbidden matches control code points and the BOM range that are not
// allowed in XML character data.
func isXMLForbidden(r rune) bool {
	switch {
	case r <= 8, r == 11, r == 12:
		return true
	case r >= 14 && r <= 31:
		return true
	case r == 0xFFFE, r == 0xFFFF:
		return true
	}
	return false
}

// Sanitize strips XML-illegal code points from free text before it is stored.
// Ill-formed UTF-8 is replaced with U+FFFD.
func Sanitize(s string) string {
	t := transform.Chain(runes.ReplaceIllFormed(), runes.Remove(runes.Predicate(isXMLForbidden)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.Map(func(r rune) rune {
			if isXMLForbidden(r) {
				return -1
			}
			return r
		}, s)
	}
	return out
}
