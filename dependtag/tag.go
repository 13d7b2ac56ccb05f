// Package dependtag provides the tagged dependency keys (spec §4.2) used
// to wire the install/remove dependency graph built by package graph.
package dependtag

import (
	"fmt"
	"strings"

	"github.com/go-ddr/ddrgen/identifier"
)

// Kind discriminates the Tag variants.
type Kind int

const (
	// Explicit is a free-form string tag from an annotation's
	// provides/requires list.
	Explicit Kind = iota
	// Type is the implicit tag a declared type contributes.
	Type
	// Function is the implicit tag a declared function contributes,
	// keyed by name and parameter signature.
	Function
	// Operator is the implicit tag a declared operator contributes,
	// keyed by name and two-element (possibly one-sided) signature.
	Operator
)

func (k Kind) String() string {
	switch k {
	case Explicit:
		return "Explicit"
	case Type:
		return "Type"
	case Function:
		return "Function"
	case Operator:
		return "Operator"
	default:
		return "Unknown"
	}
}

// Tag is a hashable, equatable dependency key. Equality is by variant then
// content; for Function and Operator the signature must match
// element-wise, with an absent operand ("None") matching only another
// absent operand (spec §4.2).
type Tag struct {
	kind      Kind
	explicit  string
	name      identifier.Qualified
	signature []identifier.DBType // nil entries represent "None" (absent operand)
}

// NewExplicit builds an Explicit(String) tag.
func NewExplicit(s string) Tag {
	return Tag{kind: Explicit, explicit: s}
}

// NewType builds a Type(qname) tag.
func NewType(name identifier.Qualified) Tag {
	return Tag{kind: Type, name: name}
}

// NewFunction builds a Function(qname, signature) tag.
func NewFunction(name identifier.Qualified, signature []identifier.DBType) Tag {
	return Tag{kind: Function, name: name, signature: append([]identifier.DBType(nil), signature...)}
}

// NewOperator builds an Operator(qname, [left, right]) tag. Either operand
// may be nil to represent the deprecated unary absent-operand case.
func NewOperator(name identifier.Qualified, left, right identifier.DBType) Tag {
	return Tag{kind: Operator, name: name, signature: []identifier.DBType{left, right}}
}

// Kind reports the tag's variant.
func (t Tag) Kind() Kind { return t.kind }

// ForType returns the implicit Type tag a DBType contributes, or false if
// t's base isn't a Named type (spec §4.1's depend_tag rule, implemented
// here rather than as a DBType method to avoid a dependtag<->identifier
// import cycle: identifier never imports dependtag).
func ForType(t identifier.DBType) (Tag, bool) {
	name, ok := identifier.NamedBase(t)
	if !ok {
		return Tag{}, false
	}
	return NewType(name), true
}

// dbTypeKey renders a DBType (or nil, for an absent operand) into a
// stable comparison string.
func dbTypeKey(t identifier.DBType) string {
	if t == nil {
		return "<none>"
	}
	return t.String(false)
}

// Key returns a stable, comparable string usable as a Go map key.
func (t Tag) Key() string {
	var b strings.Builder
	b.WriteString(t.kind.String())
	b.WriteByte('|')
	switch t.kind {
	case Explicit:
		b.WriteString(t.explicit)
	case Type:
		b.WriteString(t.name.Key())
	case Function:
		b.WriteString(t.name.Key())
		for _, p := range t.signature {
			b.WriteByte(',')
			b.WriteString(dbTypeKey(p))
		}
	case Operator:
		b.WriteString(t.name.Key())
		for _, p := range t.signature {
			b.WriteByte(',')
			b.WriteString(dbTypeKey(p))
		}
	}
	return b.String()
}

// Equal reports whether two tags are the same dependency key.
func (t Tag) Equal(o Tag) bool { return t.Key() == o.Key() }

// String renders a stable diagnostic form: "(Variant)value" plus the
// signature for Function/Operator, per spec §4.2.
func (t Tag) String() string {
	switch t.kind {
	case Explicit:
		return fmt.Sprintf("(Explicit)%s", t.explicit)
	case Type:
		return fmt.Sprintf("(Type)%s", t.name.String())
	case Function:
		return fmt.Sprintf("(Function)%s(%s)", t.name.String(), joinSig(t.signature))
	case Operator:
		return fmt.Sprintf("(Operator)%s(%s)", t.name.String(), joinSig(t.signature))
	default:
		return "(Unknown)"
	}
}

func joinSig(sig []identifier.DBType) string {
	parts := make([]string, len(sig))
	for i, p := range sig {
		parts[i] = dbTypeKey(p)
	}
	return strings.Join(parts, ", ")
}

// AllowsMultipleProviders reports whether this tag variant may legally
// have more than one provider in the dependency graph. Implicit tags
// (Type, Function, Operator) have at most one provider; explicit tags
// may have several (spec §3 invariant).
func (t Tag) AllowsMultipleProviders() bool { return t.kind == Explicit }
