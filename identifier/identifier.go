package identifier

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// foldCase implements the SQL regular folding rule (ASCII-only downcase)
// for unquoted identifiers: A-Z become a-z, every other character is kept
// as it is.
var foldCase asciiFold

type asciiFold struct{}

func (asciiFold) String(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// The host alphabet is the stricter identifier alphabet accepted by the
// descriptor's own lexer (used when building a Simple out of a
// host-language-style name): ASCII letters, digits, and underscore,
// must not start with a digit.
// ValidHostAlphabet reports whether s could round-trip as an implementor
// block name: the emitter's lexability check applies this same
// restricted alphabet to a BEGIN/END name, since the descriptor's own
// lexer cannot delimit it the way a quoted SQL identifier can.
func ValidHostAlphabet(s string) bool { return validHostAlphabet(s) }

func validHostAlphabet(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Simple is an unqualified SQL identifier: either case-folded (an
// unquoted/unexpected-case identifier) or delimited (quoted, case
// preserved, wider character set allowed).
type Simple struct {
	raw       string
	delimited bool
}

// NewSimpleFromSQL builds a Simple from SQL literal syntax: a double-quoted
// span is delimited and case-preserving; anything else is folded.
func NewSimpleFromSQL(s string) Simple {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return Simple{raw: strings.ReplaceAll(s[1:len(s)-1], `""`, `"`), delimited: true}
	}
	return Simple{raw: foldCase.String(s)}
}

// NewSimpleFromHost builds a Simple from a host-language-style name (e.g.
// a method or class simple name). Host names are always case-preserving
// and delimited, since the descriptor lexer's identifier rule is stricter
// than SQL's own and names arriving this way (Java-ish identifiers) are
// not expected to be case-folded implicitly.
func NewSimpleFromHost(name string) (Simple, error) {
	if !validHostAlphabet(name) {
		return Simple{}, fmt.Errorf("identifier: %q is not a valid host identifier", name)
	}
	return Simple{raw: name, delimited: true}, nil
}

// Folded returns the comparison form of the identifier.
func (s Simple) Folded() string {
	if s.delimited {
		return s.raw
	}
	return foldCase.String(s.raw)
}

// Delimited reports whether the identifier must be quoted to round-trip
// its original case/character set.
func (s Simple) Delimited() bool { return s.delimited }

// Raw returns the stored spelling: the folded form for an undelimited
// identifier, the case-preserved text for a delimited one.
func (s Simple) Raw() string { return s.raw }

// Equal reports whether two identifiers are the same once folded.
func (s Simple) Equal(o Simple) bool { return s.Folded() == o.Folded() }

// EqualWarn is like Equal but additionally reports whether the two
// spellings differ only in quoting (same folded form, one delimited and
// the other not) — the case spec §4.1 calls out as warning-worthy.
func (s Simple) EqualWarn(o Simple) (equal, differsByQuoting bool) {
	equal = s.Equal(o)
	differsByQuoting = equal && s.delimited != o.delimited
	return
}

// String renders the identifier the way it must appear in emitted SQL:
// quoted (via lib/pq's QuoteIdentifier, which doubles embedded double
// quotes) if delimited or if it is not already in folded form.
func (s Simple) String() string {
	if s.delimited || s.raw != foldCase.String(s.raw) {
		return pq.QuoteIdentifier(s.raw)
	}
	return s.raw
}

// operatorAlphabet is the SQL operator character set.
const operatorAlphabet = "+-*/<>=~!@#%^&|`?"

// Operator is an SQL operator name, drawn from the restricted punctuation
// alphabet; it is always a local name, never independently qualified (the
// qualifier lives on the enclosing Qualified).
type Operator struct {
	symbol string
}

// NewOperator validates sym against the SQL operator character alphabet.
func NewOperator(sym string) (Operator, error) {
	if sym == "" {
		return Operator{}, fmt.Errorf("identifier: empty operator name")
	}
	for _, r := range sym {
		if !strings.ContainsRune(operatorAlphabet, r) {
			return Operator{}, fmt.Errorf("identifier: %q contains a character outside the SQL operator alphabet", sym)
		}
	}
	return Operator{symbol: sym}, nil
}

// Folded returns the operator symbol; operator names are not case-folded
// (they contain no letters).
func (o Operator) Folded() string { return o.symbol }

// String renders the bare operator symbol.
func (o Operator) String() string { return o.symbol }

// LocalName is either a Simple or an Operator; exactly one of the two
// accessors is meaningful, selected by IsOperator.
type LocalName struct {
	simple   Simple
	operator Operator
	isOp     bool
}

// NewLocalSimple wraps a Simple as a LocalName.
func NewLocalSimple(s Simple) LocalName { return LocalName{simple: s} }

// NewLocalOperator wraps an Operator as a LocalName.
func NewLocalOperator(o Operator) LocalName { return LocalName{operator: o, isOp: true} }

// IsOperator reports whether this local name is an Operator.
func (l LocalName) IsOperator() bool { return l.isOp }

// Simple returns the wrapped Simple; valid only if !IsOperator().
func (l LocalName) Simple() Simple { return l.simple }

// Operator returns the wrapped Operator; valid only if IsOperator().
func (l LocalName) Operator() Operator { return l.operator }

// Folded returns the comparison form of the local name.
func (l LocalName) Folded() string {
	if l.isOp {
		return l.operator.Folded()
	}
	return l.simple.Folded()
}

func (l LocalName) String() string {
	if l.isOp {
		return l.operator.String()
	}
	return l.simple.String()
}

// Qualified is an optionally-schema-qualified SQL name.
type Qualified struct {
	qualifier *Simple
	local     LocalName
}

// NewQualified builds a Qualified local name with no qualifier.
func NewQualified(local LocalName) Qualified {
	return Qualified{local: local}
}

// WithQualifier returns a copy of q qualified by schema. Round-trips
// through local.WithQualifier(q) per spec §4.1.
func (q Qualified) WithQualifier(schema Simple) Qualified {
	cp := q
	cp.qualifier = &schema
	return cp
}

// Qualifier returns the schema qualifier, if any.
func (q Qualified) Qualifier() (Simple, bool) {
	if q.qualifier == nil {
		return Simple{}, false
	}
	return *q.qualifier, true
}

// Local returns the unqualified local name.
func (q Qualified) Local() LocalName { return q.local }

// Key returns a stable, comparable string for use as a map key: the
// folded qualifier (or empty) joined with the folded local name.
func (q Qualified) Key() string {
	qual := ""
	if q.qualifier != nil {
		qual = q.qualifier.Folded()
	}
	return qual + "." + q.local.Folded()
}

// Equal compares two qualified names by folded qualifier and local name.
func (q Qualified) Equal(o Qualified) bool { return q.Key() == o.Key() }

// String renders the name as it appears in most contexts: an operator
// local name is wrapped in OPERATOR(...); a Simple local name is printed
// dotted with its qualifier.
func (q Qualified) String() string {
	qual := ""
	if q.qualifier != nil {
		qual = q.qualifier.String() + "."
	}
	if q.local.IsOperator() {
		return fmt.Sprintf("OPERATOR(%s%s)", qual, q.local.String())
	}
	return qual + q.local.String()
}

// Unwrapped renders the name the way it must appear in CREATE/DROP
// headers: never OPERATOR(...)-wrapped, even for an operator local name.
func (q Qualified) Unwrapped() string {
	qual := ""
	if q.qualifier != nil {
		qual = q.qualifier.String() + "."
	}
	return qual + q.local.String()
}
