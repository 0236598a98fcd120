package utils

import "regexp"

var (
	nameRe    = regexp.MustCompile(`^[\p{L}\- ]{2,50}$`)
	phoneRe   = regexp.MustCompile(`^\+?\d{10,15}$`)
	phoneJunk = regexp.MustCompile(`[^\d+]`)
)

// ValidName accepts 2-50 letters (any alphabet), hyphens and spaces.
func ValidName(s string) bool {
	return nameRe.MatchString(s)
}

// ValidPhone accepts an optionally +-prefixed number of 10 to 15 digits,
// ignoring separators like spaces, dashes and parentheses.
func ValidPhone(s string) bool {
	return phoneRe.MatchString(NormalizePhone(s))
}

// NormalizePhone strips everything but digits and a leading plus.
func NormalizePhone(s string) string {
	return phoneJunk.ReplaceAllString(s, "")
}
