package annotation

import (
	"fmt"
	"strings"

	"github.com/go-ddr/ddrgen"
	"github.com/go-ddr/ddrgen/dependtag"
	"github.com/go-ddr/ddrgen/identifier"
)

// FinalFuncModify is the FINALFUNC_MODIFY clause: the aggregate
// finalizer's effect on its transition state.
type FinalFuncModify int

const (
	FinalFuncModifyNone FinalFuncModify = iota
	FinalFuncModifyReadOnly
	FinalFuncModifyShareable
	FinalFuncModifyReadWrite
)

func (f FinalFuncModify) clause() string {
	switch f {
	case FinalFuncModifyReadOnly:
		return "READ_ONLY"
	case FinalFuncModifyShareable:
		return "SHAREABLE"
	case FinalFuncModifyReadWrite:
		return "READ_WRITE"
	default:
		return ""
	}
}

// AggregatePlan is one @Aggregate.Plan: the accumulate/combine/finish
// functions and transition-state description, used once for the
// ordinary plan and again, optionally, for the moving-aggregate plan
// (spec §4.7, §6's annotation surface).
type AggregatePlan struct {
	StateType              identifier.DBType
	AccumulateFirstParam   identifier.DBType // the accumulator's first parameter type, used to default StateType
	StateSize              *int
	InitialState           string
	HasInitialState        bool
	Accumulate             identifier.Qualified
	AccumulateSignature    []identifier.DBType
	Combine                identifier.Qualified
	HasCombine             bool
	Finish                 identifier.Qualified
	HasFinish              bool
	FinishExtra            bool
	FinishModify           FinalFuncModify
	Remove                 identifier.Qualified
	HasRemove              bool
	Serialize              identifier.Qualified
	HasSerialize           bool
	Deserialize            identifier.Qualified
	HasDeserialize         bool
	Polymorphic            bool
}

func (p *AggregatePlan) resolvedStateType() identifier.DBType {
	if p.StateType != nil {
		return p.StateType
	}
	return p.AccumulateFirstParam
}

// Aggregate is the carrier for an @Aggregate annotation (spec §4.7).
type Aggregate struct {
	Base

	Name           identifier.Qualified
	DirectArgs     []identifier.DBType
	AggregatedArgs []identifier.DBType
	OrderedSet     bool
	Hypothetical   bool
	Variadic       bool // one boolean form
	VariadicBoth   bool // two-boolean form; requires OrderedSet

	HasSortOperator bool
	SortOperator    identifier.Operator

	Parallel Parallel
	Comment  string

	Plan       AggregatePlan
	MovingPlan *AggregatePlan
}

// NewAggregate returns an Aggregate carrier for owner.
func NewAggregate(owner string) *Aggregate {
	return &Aggregate{Base: Base{OwnerName: owner}}
}

// Characterize implements Snippet (spec §4.7).
func (a *Aggregate) Characterize(sink ddr.Sink) []dependtag.Tag {
	loc := fmt.Sprintf("aggregate %s", a.Name)

	if a.OrderedSet && len(a.AggregatedArgs) == 0 {
		ddr.Errorf(sink, nil, "%s: an ordered-set aggregate requires nonempty aggregated args", loc)
		return nil
	}
	if a.Hypothetical {
		n := len(a.AggregatedArgs)
		if len(a.DirectArgs) < n || !sameTypeTail(a.DirectArgs, a.AggregatedArgs) {
			ddr.Errorf(sink, nil, "%s: a hypothetical-set aggregate's direct args must end with the aggregated args' types", loc)
			return nil
		}
	}
	if a.VariadicBoth && !a.OrderedSet {
		ddr.Errorf(sink, nil, "%s: a two-boolean variadic marker requires an ordered-set aggregate", loc)
		return nil
	}
	if a.HasSortOperator {
		if a.OrderedSet || a.Variadic || a.VariadicBoth || len(a.AggregatedArgs) != 1 {
			ddr.Errorf(sink, nil, "%s: sortOperator requires a unary, non-ordered-set, non-variadic aggregate", loc)
			return nil
		}
	}
	if !validatePlan(&a.Plan, loc, "", sink) {
		return nil
	}
	if a.MovingPlan != nil {
		if !a.MovingPlan.HasRemove {
			ddr.Errorf(sink, nil, "%s: a moving plan requires a remove function", loc)
			return nil
		}
		if !validatePlan(a.MovingPlan, loc, "moving ", sink) {
			return nil
		}
	}
	if !a.Plan.HasFinish && len(a.DirectArgs) > 0 {
		ddr.Errorf(sink, nil, "%s: a missing finalizer with nonempty direct args is an error", loc)
		return nil
	}

	a.SetImplicitProvides(dependtag.NewFunction(a.Name, append(append([]identifier.DBType{}, a.DirectArgs...), a.AggregatedArgs...)))

	var requires []dependtag.Tag
	for _, t := range a.DirectArgs {
		if tag, ok := dependtag.ForType(t); ok {
			requires = append(requires, tag)
		}
	}
	for _, t := range a.AggregatedArgs {
		if tag, ok := dependtag.ForType(t); ok {
			requires = append(requires, tag)
		}
	}
	requires = append(requires,
		dependtag.NewFunction(a.Plan.Accumulate, a.Plan.AccumulateSignature),
	)
	if a.Plan.HasFinish {
		requires = append(requires, dependtag.NewFunction(a.Plan.Finish, []identifier.DBType{a.Plan.resolvedStateType()}))
	}
	a.SetImplicitRequires(requires...)
	return a.ProvidedTags()
}

func sameTypeTail(direct, aggregated []identifier.DBType) bool {
	offset := len(direct) - len(aggregated)
	for i, t := range aggregated {
		if direct[offset+i].String(false) != t.String(false) {
			return false
		}
	}
	return true
}

func validatePlan(p *AggregatePlan, loc, which string, sink ddr.Sink) bool {
	if (p.HasSerialize || p.HasDeserialize) && !p.HasCombine {
		ddr.Errorf(sink, nil, "%s: %sserialize/deserialize require a combine function", loc, which)
		return false
	}
	if (p.HasSerialize || p.HasDeserialize) && p.resolvedStateType().Base() != identifier.DBType(identifier.TypeInternal) {
		ddr.Errorf(sink, nil, "%s: %sserialize/deserialize require the state type to be the internal-opaque type", loc, which)
		return false
	}
	return true
}

// DeployStrings implements Snippet (spec §4.7).
func (a *Aggregate) DeployStrings() []string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE AGGREGATE %s(%s) (", a.Name, a.argList())
	fmt.Fprintf(&b, "STYPE = %s", a.Plan.resolvedStateType().String(false))
	if a.Plan.StateSize != nil {
		fmt.Fprintf(&b, ", SSPACE = %d", *a.Plan.StateSize)
	}
	if a.Plan.HasInitialState {
		fmt.Fprintf(&b, ", INITCOND = %s", identifier.EQuote(a.Plan.InitialState))
	}
	fmt.Fprintf(&b, ", SFUNC = %s", a.Plan.Accumulate)
	if a.Plan.HasCombine {
		fmt.Fprintf(&b, ", COMBINEFUNC = %s", a.Plan.Combine)
	}
	if a.Plan.HasFinish {
		fmt.Fprintf(&b, ", FINALFUNC = %s", a.Plan.Finish)
		if a.Plan.FinishExtra {
			b.WriteString(", FINALFUNC_EXTRA")
		}
		if clause := a.Plan.FinishModify.clause(); clause != "" {
			fmt.Fprintf(&b, ", FINALFUNC_MODIFY = %s", clause)
		}
	}
	if a.Plan.HasSerialize {
		fmt.Fprintf(&b, ", SERIALFUNC = %s", a.Plan.Serialize)
	}
	if a.Plan.HasDeserialize {
		fmt.Fprintf(&b, ", DESERIALFUNC = %s", a.Plan.Deserialize)
	}
	if a.MovingPlan != nil {
		fmt.Fprintf(&b, ", MSTYPE = %s", a.MovingPlan.resolvedStateType().String(false))
		if a.MovingPlan.StateSize != nil {
			fmt.Fprintf(&b, ", MSSPACE = %d", *a.MovingPlan.StateSize)
		}
		fmt.Fprintf(&b, ", MSFUNC = %s, MINVFUNC = %s", a.MovingPlan.Accumulate, a.MovingPlan.Remove)
		if a.MovingPlan.HasFinish {
			fmt.Fprintf(&b, ", MFINALFUNC = %s", a.MovingPlan.Finish)
		}
		if a.MovingPlan.HasInitialState {
			fmt.Fprintf(&b, ", MINITCOND = %s", identifier.EQuote(a.MovingPlan.InitialState))
		}
	}
	if a.HasSortOperator {
		fmt.Fprintf(&b, ", SORTOP = %s", a.SortOperator)
	}
	b.WriteString(", PARALLEL = ")
	b.WriteString(a.Parallel.String())
	if a.Hypothetical {
		b.WriteString(", HYPOTHETICAL")
	}
	b.WriteString(");")
	out := []string{b.String()}
	if a.Comment != "" {
		out = append(out, fmt.Sprintf("COMMENT ON AGGREGATE %s(%s) IS %s;", a.Name, a.argList(), identifier.EQuote(a.Comment)))
	}
	return out
}

func (a *Aggregate) argList() string {
	direct := make([]string, len(a.DirectArgs))
	for i, t := range a.DirectArgs {
		direct[i] = t.String(false)
	}
	if len(a.AggregatedArgs) == 0 {
		return strings.Join(direct, ", ")
	}
	agg := make([]string, len(a.AggregatedArgs))
	for i, t := range a.AggregatedArgs {
		agg[i] = t.String(false)
	}
	if a.OrderedSet {
		return strings.Join(direct, ", ") + " ORDER BY " + strings.Join(agg, ", ")
	}
	return strings.Join(agg, ", ")
}

// UndeployStrings implements Snippet.
func (a *Aggregate) UndeployStrings() []string {
	return []string{fmt.Sprintf("DROP AGGREGATE %s(%s);", a.Name.Unwrapped(), a.argList())}
}

var _ Snippet = (*Aggregate)(nil)
