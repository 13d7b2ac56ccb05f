package emit

import (
	"fmt"
	"strings"

	"github.com/go-ddr/ddrgen"
	"github.com/go-ddr/ddrgen/annotation"
	"github.com/go-ddr/ddrgen/identifier"
	"github.com/go-ddr/ddrgen/schedule"
)

// Render builds the descriptor text from a Schedule result: a BEGIN
// INSTALL/END INSTALL block of DeployStrings in install order, and a
// BEGIN REMOVE/END REMOVE block of UndeployStrings in remove order
// (spec §4.9). Every statement and every implementor name is checked
// for lexability first; ok is false, and text is empty, if any of them
// fail, with one diagnostic per failure reported to sink.
func Render(result schedule.Result, sink ddr.Sink) (text string, ok bool) {
	install, installOK := renderBlock("INSTALL", result.Install, annotation.Snippet.DeployStrings, sink)
	remove, removeOK := renderBlock("REMOVE", result.Remove, annotation.Snippet.UndeployStrings, sink)
	if !installOK || !removeOK {
		return "", false
	}

	var b strings.Builder
	b.WriteString("SQLActions[]={\n")
	quote(&b, install)
	b.WriteString(",\n")
	quote(&b, remove)
	b.WriteString("\n}\n")
	return b.String(), true
}

// quote writes block wrapped in the descriptor's own literal-string
// delimiters. Unlike a host-language string literal, a double quote
// embedded in block (e.g. a delimited SQL identifier) is not escaped
// here: the descriptor format's outer quotes are a block delimiter, not
// a nested string literal.
func quote(b *strings.Builder, block string) {
	b.WriteByte('"')
	b.WriteString(block)
	b.WriteByte('"')
}

// renderBlock assembles one BEGIN <name>/END <name> block out of every
// snippet's statements, in order, each wrapped in its own implementor
// condition when one applies.
func renderBlock(name string, snippets []annotation.Snippet, extract func(annotation.Snippet) []string, sink ddr.Sink) (string, bool) {
	var b strings.Builder
	b.WriteString("BEGIN ")
	b.WriteString(name)
	ok := true

	for _, sn := range snippets {
		implName, hasImpl := sn.ImplementorName()
		if hasImpl && !identifier.ValidHostAlphabet(implName.Folded()) {
			ddr.Errorf(sink, nil, "%s: implementor name %q is outside the restricted identifier alphabet", sn.Owner(), implName.Raw())
			ok = false
		}
		for _, stmt := range extract(sn) {
			if reason := unlexableReason(stmt); reason != "" {
				ddr.Errorf(sink, nil, "%s: %v", sn.Owner(), &ddr.LexabilityError{
					Implementor: implName.Raw(),
					Fragment:    stmt,
					Reason:      reason,
				})
				ok = false
				continue
			}
			b.WriteByte('\n')
			b.WriteString(wrap(implName, hasImpl, stmt))
		}
	}

	b.WriteByte('\n')
	b.WriteString("END ")
	b.WriteString(name)
	if !ok {
		return "", false
	}
	return b.String(), true
}

// wrap applies the implementor BEGIN/END condition to one statement, or
// returns it unwrapped when the snippet names no implementor (spec
// §4.9). Statements already carry their own terminating ";" (every
// carrier's Deploy/UndeployStrings produces complete statements), so
// the unwrapped case emits stmt as-is rather than appending another one.
func wrap(name identifier.Simple, has bool, stmt string) string {
	if !has {
		return stmt
	}
	return fmt.Sprintf("BEGIN %s\n%s\nEND %s;", name.String(), stmt, name.String())
}

// unlexableReason runs the descriptor's own tokenizing rules over stmt
// and returns why it would desynchronize that reader, or "" if it's
// safe: a backslash escapes whatever follows it regardless of state: a
// single or double quote otherwise opens a span that only a matching,
// undoubled quote of the same kind closes (a doubled quote inside a span
// is a literal, per spec §4.9's e_quote convention); a bare ';', '\'' or
// '"' outside any span needs no further escaping on its own, but a span
// left open at the end of the statement means a later statement's text
// would be read as though still quoted.
func unlexableReason(stmt string) string {
	const (
		none = iota
		single
		double
	)
	state := none
	runes := []rune(stmt)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\\' {
			i++
			continue
		}
		switch state {
		case single:
			if r == '\'' {
				if i+1 < len(runes) && runes[i+1] == '\'' {
					i++
					continue
				}
				state = none
			}
		case double:
			if r == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					i++
					continue
				}
				state = none
			}
		default:
			switch r {
			case '\'':
				state = single
			case '"':
				state = double
			}
		}
	}
	switch state {
	case single:
		return "unterminated single-quoted span"
	case double:
		return "unterminated double-quoted span"
	default:
		return ""
	}
}
