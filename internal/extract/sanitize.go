package extract

import "strings"

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\t", " ")

// SanitizeText normalizes line endings and tabs, then drops every C0 and C1
// control character except newline; DEL and invalid UTF-8 are dropped too.
// Postgres text columns reject NUL bytes, so extracted text always passes
// through here.
func SanitizeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = lineEndings.Replace(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r < 0x20, r == 0x7F, r >= 0x80 && r <= 0x9F:
			return -1
		default:
			return r
		}
	}, s)
}
