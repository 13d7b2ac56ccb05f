package annotation

import (
	"fmt"
	"strings"

	"github.com/go-ddr/ddrgen"
	"github.com/go-ddr/ddrgen/dependtag"
	"github.com/go-ddr/ddrgen/identifier"
)

// Operator is the carrier for an @Operator annotation (spec §4.6). A
// non-synthetic operator's function and operand types come from the
// annotated method (or an explicit function= override); a synthetic one
// is derived by commutation/negation from a sibling non-synthetic
// operator, a job package synth performs before Characterize runs here —
// Characterize only validates the already-resolved result.
type Operator struct {
	Base

	Symbol identifier.Operator
	Schema identifier.Simple
	HasSchema bool

	FunctionName identifier.Qualified
	HasFunction  bool

	// SyntheticToken is "", "SELF", "TWIN", or a named sibling operator
	// reference; non-empty marks this operator synthetic (spec §4.6).
	SyntheticToken string

	LeftType  identifier.DBType
	RightType identifier.DBType
	HasLeft   bool
	HasRight  bool

	CommutatorIsSelf bool
	Commutator       identifier.Operator
	HasCommutator    bool

	NegatorIsSelf bool
	Negator       identifier.Operator
	HasNegator    bool

	Hashes   bool
	Merges   bool
	Volatile bool // underlying function's volatility; hashes/merges require non-volatile

	Restrict    identifier.Qualified
	HasRestrict bool
	Join        identifier.Qualified
	HasJoin     bool
	Comment     string

	// ResolvedFunction/ResolvedSignature are filled in by package synth
	// before Characterize for a synthetic operator; Unresolvable marks
	// that no derivation path was found.
	ResolvedFunction  identifier.Qualified
	ResolvedSignature []identifier.DBType
	Unresolvable      bool
}

// NewOperator returns an Operator carrier for owner.
func NewOperator(owner string) *Operator {
	return &Operator{Base: Base{OwnerName: owner}}
}

func (o *Operator) isSynthetic() bool { return o.SyntheticToken != "" }

// qname renders the schema-qualified operator name.
func (o *Operator) qname() identifier.Qualified {
	local := identifier.NewLocalOperator(o.Symbol)
	q := identifier.NewQualified(local)
	if o.HasSchema {
		q = q.WithQualifier(o.Schema)
	}
	return q
}

// Characterize implements Snippet (spec §4.6).
func (o *Operator) Characterize(sink ddr.Sink) []dependtag.Tag {
	loc := fmt.Sprintf("operator %s", o.qname())

	if o.isSynthetic() {
		if o.HasFunction {
			ddr.Errorf(sink, nil, "%s: function= and synthetic= are mutually exclusive", loc)
			return nil
		}
		if o.HasLeft || o.HasRight {
			ddr.Errorf(sink, nil, "%s: operand types must not be explicit on a synthetic operator", loc)
			return nil
		}
		if o.Unresolvable {
			ddr.Errorf(sink, nil, "%s: no derivation path", loc)
			return nil
		}
		o.FunctionName = o.ResolvedFunction
		switch len(o.ResolvedSignature) {
		case 1:
			o.LeftType, o.HasLeft = o.ResolvedSignature[0], true
		case 2:
			o.LeftType, o.HasLeft = o.ResolvedSignature[0], true
			o.RightType, o.HasRight = o.ResolvedSignature[1], true
		}
	} else if !o.HasFunction {
		ddr.Errorf(sink, nil, "%s: a non-synthetic operator requires function= or an annotated method", loc)
		return nil
	}

	if o.HasCommutator && !o.CommutatorIsSelf && o.Commutator.String() == o.Symbol.String() {
		ddr.Errorf(sink, nil, "%s: commutator must not be itself; use SELF", loc)
		return nil
	}
	if o.HasNegator && !o.NegatorIsSelf && o.Negator.String() == o.Symbol.String() {
		ddr.Errorf(sink, nil, "%s: negator must not be itself; use SELF", loc)
		return nil
	}
	sameOperandTypes := o.HasLeft && o.HasRight && o.LeftType.String(false) == o.RightType.String(false)
	if o.CommutatorIsSelf && o.HasLeft && o.HasRight && !sameOperandTypes {
		ddr.Errorf(sink, nil, "%s: SELF commutator is only valid when operand types match", loc)
		return nil
	}
	if o.SyntheticToken == "TWIN" && o.HasLeft && o.HasRight && sameOperandTypes {
		ddr.Errorf(sink, nil, "%s: TWIN is only valid when operand types differ", loc)
		return nil
	}
	if o.Hashes || o.Merges {
		if !(o.HasLeft && o.HasRight) {
			ddr.Errorf(sink, nil, "%s: hashes/merges require a binary operator", loc)
			return nil
		}
		if !o.HasCommutator {
			ddr.Errorf(sink, nil, "%s: hashes/merges require a commutator", loc)
			return nil
		}
		if o.Volatile {
			ddr.Errorf(sink, nil, "%s: hashes/merges require a non-volatile underlying function", loc)
			return nil
		}
	}

	operands := o.OperandTypes()
	o.SetImplicitProvides(dependtag.NewOperator(o.qname(), o.LeftTypeOrNil(), o.RightTypeOrNil()))

	requires := make([]dependtag.Tag, 0, len(operands)+1)
	for _, t := range operands {
		if tag, ok := dependtag.ForType(t); ok {
			requires = append(requires, tag)
		}
	}
	requires = append(requires, dependtag.NewFunction(o.FunctionName, operands))
	o.SetImplicitRequires(requires...)

	return o.ProvidedTags()
}

// LeftTypeOrNil returns the left operand type, or nil for a right-unary
// operator.
func (o *Operator) LeftTypeOrNil() identifier.DBType {
	if o.HasLeft {
		return o.LeftType
	}
	return nil
}

// RightTypeOrNil returns the right operand type, or nil for a
// left-unary operator.
func (o *Operator) RightTypeOrNil() identifier.DBType {
	if o.HasRight {
		return o.RightType
	}
	return nil
}

// OperandTypes returns the operator's operand types in left-to-right
// order, omitting whichever side is absent for a unary operator.
func (o *Operator) OperandTypes() []identifier.DBType {
	var out []identifier.DBType
	if o.HasLeft {
		out = append(out, o.LeftType)
	}
	if o.HasRight {
		out = append(out, o.RightType)
	}
	return out
}

// DeployStrings implements Snippet.
func (o *Operator) DeployStrings() []string {
	var b strings.Builder
	parts := make([]string, len(o.OperandTypes()))
	for i, t := range o.OperandTypes() {
		parts[i] = t.String(false)
	}
	fmt.Fprintf(&b, "CREATE OPERATOR %s (PROCEDURE = %s(%s)", o.qname(), o.FunctionName, strings.Join(parts, ", "))
	if o.HasLeft {
		fmt.Fprintf(&b, ", LEFTARG = %s", o.LeftType.String(false))
	}
	if o.HasRight {
		fmt.Fprintf(&b, ", RIGHTARG = %s", o.RightType.String(false))
	}
	if o.HasCommutator {
		fmt.Fprintf(&b, ", COMMUTATOR = %s", o.commutatorRef())
	}
	if o.HasNegator {
		fmt.Fprintf(&b, ", NEGATOR = %s", o.negatorRef())
	}
	if o.HasRestrict {
		fmt.Fprintf(&b, ", RESTRICT = %s", o.Restrict)
	}
	if o.HasJoin {
		fmt.Fprintf(&b, ", JOIN = %s", o.Join)
	}
	if o.Hashes {
		b.WriteString(", HASHES")
	}
	if o.Merges {
		b.WriteString(", MERGES")
	}
	b.WriteString(");")
	out := []string{b.String()}
	if o.Comment != "" {
		out = append(out, fmt.Sprintf("COMMENT ON OPERATOR %s(%s) IS %s;", o.qname(), strings.Join(parts, ", "), identifier.EQuote(o.Comment)))
	}
	return out
}

func (o *Operator) commutatorRef() string {
	if o.CommutatorIsSelf {
		return o.Symbol.String()
	}
	return o.Commutator.String()
}

func (o *Operator) negatorRef() string {
	if o.NegatorIsSelf {
		return o.Symbol.String()
	}
	return o.Negator.String()
}

// UndeployStrings implements Snippet: DROP OPERATOR, using NONE for an
// absent operand (spec §4.6).
func (o *Operator) UndeployStrings() []string {
	left := "NONE"
	if o.HasLeft {
		left = o.LeftType.String(false)
	}
	right := "NONE"
	if o.HasRight {
		right = o.RightType.String(false)
	}
	return []string{fmt.Sprintf("DROP OPERATOR %s (%s, %s);", o.qname().Unwrapped(), left, right)}
}

var _ Snippet = (*Operator)(nil)
