package text

import "strings"

// Normalize collapses any run of whitespace (including newlines and
// non-breaking spaces) into a single space and trims the ends. It is
// idempotent, and empty input yields empty output.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
