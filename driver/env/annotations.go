package env

import "strings"

// Annotation is spec §6's "annotation mirror": one annotation instance's
// element-value entries, sourced from a "//ddr:Name key=\"value\" ..."
// doc-comment directive line, since Go source carries no native
// annotation facility. Every entry found in the directive is explicit;
// this source-based mapping has no further concept of a "defaulted"
// entry beyond simple absence.
type Annotation struct {
	Name   string
	Values map[string]string
}

// Value looks up key, reporting whether it was present in the directive.
func (a Annotation) Value(key string) (string, bool) {
	v, ok := a.Values[key]
	return v, ok
}

// parseDirective parses the text following "ddr:" in a directive comment
// line ("Name key=\"v\" key2=\"v2\"") into an Annotation.
func parseDirective(rest string) (Annotation, bool) {
	fields := tokenizeDirective(rest)
	if len(fields) == 0 {
		return Annotation{}, false
	}
	a := Annotation{Name: fields[0], Values: map[string]string{}}
	for _, f := range fields[1:] {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		a.Values[key] = strings.Trim(value, `"`)
	}
	return a, true
}

// tokenizeDirective splits rest on spaces, treating a double-quoted span
// as one field so a value can itself contain spaces (e.g.
// install="CREATE TYPE widget;").
func tokenizeDirective(rest string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range rest {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == ' ' && !inQuotes:
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}
