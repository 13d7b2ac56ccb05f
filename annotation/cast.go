package annotation

import (
	"fmt"
	"strings"

	"github.com/go-ddr/ddrgen"
	"github.com/go-ddr/ddrgen/dependtag"
	"github.com/go-ddr/ddrgen/identifier"
)

// CastPath is the WITH FUNCTION / WITHOUT FUNCTION / WITH INOUT clause.
type CastPath int

const (
	PathFunction CastPath = iota
	PathBinary
	PathInOut
)

// CastContext is the AS ASSIGNMENT / AS IMPLICIT clause; the zero value
// is an explicit-only cast (neither).
type CastContext int

const (
	CastExplicitOnly CastContext = iota
	CastAssignment
	CastImplicit
)

// Cast is the carrier for an @Cast annotation (spec §4.5): either
// attached to a method (the method's own Function snippet supplies the
// underlying function), or standalone with explicit from=/to=/path=.
type Cast struct {
	Base

	From              identifier.DBType
	To                identifier.DBType
	Path              CastPath
	FunctionName      identifier.Qualified
	FunctionSignature []identifier.DBType
	HasFunction       bool // true when annotating a method or path=FUNCTION
	Context           CastContext
	Comment           string
}

// NewCast returns a Cast carrier for owner.
func NewCast(owner string) *Cast {
	return &Cast{Base: Base{OwnerName: owner}}
}

// Characterize implements Snippet (spec §4.5).
func (c *Cast) Characterize(sink ddr.Sink) []dependtag.Tag {
	if c.From == nil || c.To == nil {
		ddr.Errorf(sink, nil, "%v", &ddr.MalformedAnnotationError{Element: c.OwnerName, Reason: "cast requires a function or explicit from/to types"})
		return nil
	}
	loc := fmt.Sprintf("cast (%s AS %s)", c.From.String(false), c.To.String(false))

	switch c.Path {
	case PathFunction:
		if !c.HasFunction {
			ddr.Errorf(sink, nil, "%s: a function-path cast requires an underlying function, either a method annotation or path=FUNCTION with a named function", loc)
			return nil
		}
		switch len(c.FunctionSignature) {
		case 1, 2:
		default:
			ddr.Errorf(sink, nil, "%s: the underlying function must take one or two parameters", loc)
			return nil
		}
	case PathBinary, PathInOut:
		if c.HasFunction {
			ddr.Errorf(sink, nil, "%s: WITHOUT FUNCTION and WITH INOUT casts take no underlying function", loc)
			return nil
		}
	}

	sameType := c.From.String(false) == c.To.String(false)
	if sameType && !(c.Path == PathFunction && len(c.FunctionSignature) > 1) {
		ddr.Errorf(sink, nil, "%s: a same-type cast is only meaningful with an additional modifier parameter", loc)
		return nil
	}

	var requires []dependtag.Tag
	if c.Path == PathFunction {
		requires = append(requires, dependtag.NewFunction(c.FunctionName, c.FunctionSignature))
	}
	if tag, ok := dependtag.ForType(c.From); ok {
		requires = append(requires, tag)
	}
	if tag, ok := dependtag.ForType(c.To); ok {
		requires = append(requires, tag)
	}
	c.SetImplicitRequires(requires...)
	return c.ProvidedTags()
}

// DeployStrings implements Snippet.
func (c *Cast) DeployStrings() []string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE CAST (%s AS %s) ", c.From.String(false), c.To.String(false))
	switch c.Path {
	case PathBinary:
		b.WriteString("WITHOUT FUNCTION")
	case PathInOut:
		b.WriteString("WITH INOUT")
	default:
		parts := make([]string, len(c.FunctionSignature))
		for i, t := range c.FunctionSignature {
			parts[i] = t.String(false)
		}
		fmt.Fprintf(&b, "WITH FUNCTION %s(%s)", c.FunctionName, strings.Join(parts, ", "))
	}
	switch c.Context {
	case CastAssignment:
		b.WriteString(" AS ASSIGNMENT")
	case CastImplicit:
		b.WriteString(" AS IMPLICIT")
	}
	b.WriteString(";")
	out := []string{b.String()}
	if c.Comment != "" {
		out = append(out, fmt.Sprintf("COMMENT ON CAST (%s AS %s) IS %s;", c.From.String(false), c.To.String(false), identifier.EQuote(c.Comment)))
	}
	return out
}

// UndeployStrings implements Snippet.
func (c *Cast) UndeployStrings() []string {
	return []string{fmt.Sprintf("DROP CAST (%s AS %s);", c.From.String(false), c.To.String(false))}
}

var _ Snippet = (*Cast)(nil)
