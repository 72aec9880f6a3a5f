package message

import "regexp"

var reLineBreak = regexp.MustCompile("[\r\n]+")

// SanitizeLine collapses line breaks so s renders as exactly one wire line.
func SanitizeLine(s string) string {
	return reLineBreak.ReplaceAllString(s, " ")
}
