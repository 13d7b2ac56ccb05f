package identifier

import "strings"

// EQuote renders s as a PostgreSQL escape string literal e'...', doubling
// any backslash or apostrophe (spec §4.9's e_quote: "the sole escaping
// mechanism used for default values, comments, and quoted literals").
func EQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 3)
	b.WriteString("e'")
	for _, r := range s {
		if r == '\\' || r == '\'' {
			b.WriteRune(r)
		}
		b.WriteRune(r)
	}
	b.WriteByte('\'')
	return b.String()
}
