package annotation

import (
	"fmt"
	"strings"

	"github.com/go-ddr/ddrgen"
	"github.com/go-ddr/ddrgen/dependtag"
	"github.com/go-ddr/ddrgen/identifier"
)

// Trust distinguishes a trusted (sandboxed) language binding from its
// unsandboxed variant (spec §6 driver options ddr.name.trusted/untrusted).
type Trust int

const (
	Trusted Trust = iota
	Unsandboxed
)

// Volatility is a function's PostgreSQL volatility category.
type Volatility int

const (
	Volatile Volatility = iota
	Stable
	Immutable
)

func (v Volatility) String() string {
	switch v {
	case Stable:
		return "STABLE"
	case Immutable:
		return "IMMUTABLE"
	default:
		return "VOLATILE"
	}
}

// Security is a function's SECURITY DEFINER/INVOKER mode.
type Security int

const (
	SecurityInvoker Security = iota
	SecurityDefiner
)

// Parallel is a function's PARALLEL safety category.
type Parallel int

const (
	ParallelUnsafe Parallel = iota
	ParallelRestricted
	ParallelSafe
)

func (p Parallel) String() string {
	switch p {
	case ParallelRestricted:
		return "RESTRICTED"
	case ParallelSafe:
		return "SAFE"
	default:
		return "UNSAFE"
	}
}

// HostShape is the raw return-kind classification the environment
// collaborator derives by walking a method's signature (spec §4.5): a
// record-sink trailing parameter with boolean return, an iterator
// return, a provider/handle return, or a void return with one
// trigger-data parameter.
type HostShape int

const (
	HostShapeScalar HostShape = iota
	HostShapeRecordSink
	HostShapeIterator
	HostShapeProvider
	HostShapeVoidTriggerData
)

// ReturnShape is the resolved shape of a function's SQL return clause
// after reconciling the host classification against the type=/out=
// annotation elements (spec §9's decision table).
type ReturnShape struct {
	Composite bool
	Set       bool
	Trigger   bool
}

func (s ReturnShape) String() string {
	switch {
	case s.Trigger:
		return "trigger"
	case s.Set && s.Composite:
		return "setof composite"
	case s.Set:
		return "setof"
	case s.Composite:
		return "composite"
	default:
		return "scalar"
	}
}

// Parameter is one function parameter whose SQL type has already been
// resolved through the type mapper at population time (spec §4.4's
// get_sql_type is called by the driver before the carrier is built, so
// this package never needs a HostType or a *typemap.Map of its own).
type Parameter struct {
	Name     string
	Type     identifier.DBType
	Optional bool // a default-value annotation makes the parameter optional
}

// OutParameter is one comma-separated name/type pair from an out=
// annotation element (spec §4.5).
type OutParameter struct {
	Name string
	Type identifier.DBType
}

// Function is the carrier for an @Function-annotated routine (spec
// §4.5). Parameter and return types arrive already resolved by the
// driver; Characterize validates the combination and derives the
// implicit provides/requires tags.
type Function struct {
	Base

	Name               identifier.Qualified
	HostSimpleName     string
	Parameters         []Parameter
	ReturnType         identifier.DBType // explicit type= annotation, if any
	Out                []OutParameter
	HostShape          HostShape
	TrailerHasSQLType  bool
	Variadic           bool
	OnNullInputDefault bool // true unless strict/RETURNS NULL ON NULL INPUT requested
	Strict             bool
	Security           Security
	Effects            Volatility
	Trust              Trust
	ExplicitLanguage   string
	Parallel           Parallel
	Leakproof          bool
	Cost               *int
	Rows               *int
	Settings           []string
	Triggers           []*Trigger
	Comment            string

	// NameTrusted/NameUntrusted are the configured host language binding
	// identifiers (ddr.name.trusted/ddr.name.untrusted, spec §6),
	// injected by the driver via SetHostLanguageNames before
	// Characterize runs. Left zero-valued, languageName falls back to
	// "java"/"javaU" so a carrier built directly (outside the driver, as
	// in this package's own tests) still resolves to a usable default.
	NameTrusted   string
	NameUntrusted string

	// Subsumed marks that this function's own DROP FUNCTION was folded
	// into an owning BaseUDT's DROP TYPE ... CASCADE by the scheduler's
	// cycle breaker (spec §4.8); UndeployStrings then emits nothing.
	Subsumed bool

	shape      ReturnShape
	shapeOK    bool
	shapeWarns []string
}

// NewFunction returns a Function carrier for owner.
func NewFunction(owner string) *Function {
	return &Function{Base: Base{OwnerName: owner}}
}

// Characterize implements Snippet (spec §4.5).
func (f *Function) Characterize(sink ddr.Sink) []dependtag.Tag {
	if f.Name.Local().String() == "" {
		f.Name = identifier.NewQualified(identifier.NewLocalSimple(identifier.NewSimpleFromSQL(identifier.DefaultSQLName(f.HostSimpleName))))
	}

	if f.Trust == Unsandboxed && f.ExplicitLanguage != "" {
		sink.Report(ddr.Diagnostic{
			Severity: ddr.Error,
			Message:  fmt.Sprintf("function %s: trust and an explicit language name are mutually exclusive", f.Name),
		})
		return nil
	}

	shape, err := f.classifyShape()
	if err != nil {
		sink.Report(ddr.Diagnostic{Severity: ddr.Error, Message: fmt.Sprintf("function %s: %v", f.Name, err)})
		return nil
	}
	for _, w := range f.shapeWarns {
		sink.Report(ddr.Diagnostic{Severity: ddr.Warning, Message: fmt.Sprintf("function %s: %s", f.Name, w)})
	}
	f.shape = shape
	f.shapeOK = true

	if f.Variadic {
		last := f.lastNonOutputParameter()
		if last == nil || !last.Type.IsArray() {
			sink.Report(ddr.Diagnostic{
				Severity: ddr.Error,
				Message:  fmt.Sprintf("function %s: variadic requires the last non-output parameter to be an array", f.Name),
			})
			return nil
		}
	}

	sig := make([]identifier.DBType, len(f.Parameters))
	for i, p := range f.Parameters {
		sig[i] = p.Type
	}
	f.SetImplicitProvides(dependtag.NewFunction(f.Name, sig))

	requires := make([]dependtag.Tag, 0, len(f.Parameters)+len(f.Out)+1)
	if rt, ok := f.resultTypeForRequires(); ok {
		if tag, has := dependtag.ForType(rt); has {
			requires = append(requires, tag)
		}
	}
	for _, p := range f.Parameters {
		if tag, has := dependtag.ForType(p.Type); has {
			requires = append(requires, tag)
		}
	}
	for _, o := range f.Out {
		if tag, has := dependtag.ForType(o.Type); has {
			requires = append(requires, tag)
		}
	}
	f.SetImplicitRequires(requires...)

	return f.ProvidedTags()
}

// resultTypeForRequires returns the declared return type for requires-tag
// purposes, when one is available (a composite/record/trigger shape has
// no scalar return type to depend on).
func (f *Function) resultTypeForRequires() (identifier.DBType, bool) {
	if f.shape.Trigger || f.shape.Composite || f.ReturnType == nil {
		return nil, false
	}
	return f.ReturnType, true
}

func (f *Function) lastNonOutputParameter() *Parameter {
	if len(f.Parameters) == 0 {
		return nil
	}
	return &f.Parameters[len(f.Parameters)-1]
}

// classifyShape reconciles the host return-kind classification against
// the out=/type= annotation elements, per the decision table in spec §9.
func (f *Function) classifyShape() (ReturnShape, error) {
	hostShape := func() ReturnShape {
		switch f.HostShape {
		case HostShapeIterator:
			return ReturnShape{Set: true}
		case HostShapeProvider:
			return ReturnShape{Set: true, Composite: true}
		case HostShapeVoidTriggerData:
			return ReturnShape{Trigger: true}
		case HostShapeRecordSink:
			return ReturnShape{Composite: f.TrailerHasSQLType}
		default:
			return ReturnShape{}
		}
	}
	isRecord := f.ReturnType != nil && f.ReturnType.Base() == identifier.DBType(identifier.TypeRecord)

	switch {
	case len(f.Out) == 0 && f.ReturnType == nil:
		return hostShape(), nil
	case len(f.Out) == 0 && isRecord:
		return ReturnShape{Composite: true}, nil
	case len(f.Out) == 0:
		if f.HostShape == HostShapeRecordSink && !f.TrailerHasSQLType {
			return hostShape(), nil
		}
		return ReturnShape{Composite: true}, nil
	case len(f.Out) == 1 && f.ReturnType == nil:
		if f.HostShape == HostShapeRecordSink && !f.TrailerHasSQLType {
			return ReturnShape{}, fmt.Errorf("an OUT parameter on a may-be-composite function requires @SQLType on the trailing record sink")
		}
		return ReturnShape{}, nil
	case len(f.Out) == 1 && isRecord:
		f.shapeWarns = append(f.shapeWarns, "OUT parameter declared RECORD; some backends limit single-OUT RECORD support")
		return ReturnShape{Composite: true}, nil
	case len(f.Out) == 1:
		return ReturnShape{}, fmt.Errorf("an OUT parameter already carries its own type; type= is not allowed")
	case f.ReturnType == nil: // many, none
		return ReturnShape{Composite: true}, nil
	default: // many, any
		return ReturnShape{}, fmt.Errorf("type= is not allowed with more than one OUT parameter")
	}
}

// DeployStrings implements Snippet (spec §4.5): CREATE OR REPLACE
// FUNCTION ... followed by an optional COMMENT ON FUNCTION and every
// trigger's own deploy strings.
func (f *Function) DeployStrings() []string {
	var b strings.Builder
	b.WriteString("CREATE OR REPLACE FUNCTION ")
	b.WriteString(f.Name.String())
	b.WriteString("(")
	b.WriteString(f.paramList())
	b.WriteString(") RETURNS ")
	if f.shape.Set {
		b.WriteString("SETOF ")
	}
	b.WriteString(f.resultTypeName())
	b.WriteString(" LANGUAGE ")
	b.WriteString(f.languageName())
	b.WriteString(" ")
	b.WriteString(f.Effects.String())
	if f.Leakproof {
		b.WriteString(" LEAKPROOF")
	}
	if f.Strict {
		b.WriteString(" RETURNS NULL ON NULL INPUT")
	}
	if f.Security == SecurityDefiner {
		b.WriteString(" SECURITY DEFINER")
	}
	b.WriteString(" PARALLEL ")
	b.WriteString(f.Parallel.String())
	if f.Cost != nil {
		fmt.Fprintf(&b, " COST %d", *f.Cost)
	}
	if f.Rows != nil && f.shape.Set {
		fmt.Fprintf(&b, " ROWS %d", *f.Rows)
	}
	for _, s := range f.Settings {
		b.WriteString(" SET ")
		b.WriteString(s)
	}
	b.WriteString(" AS ")
	b.WriteString(identifier.EQuote(f.functionBody()))
	b.WriteString(";")

	out := []string{b.String()}
	if f.Comment != "" {
		out = append(out, fmt.Sprintf("COMMENT ON FUNCTION %s(%s) IS %s;", f.Name, f.typeOnlyParamList(), identifier.EQuote(f.Comment)))
	}
	for _, t := range f.Triggers {
		out = append(out, t.deployForOwner(f)...)
	}
	return out
}

// UndeployStrings implements Snippet: every trigger's drop statement
// precedes DROP FUNCTION, unless Subsumed (spec §4.8's BaseUDT cycle
// breaker), in which case the owning type's CASCADE already covers it.
func (f *Function) UndeployStrings() []string {
	if f.Subsumed {
		return nil
	}
	out := make([]string, 0, len(f.Triggers)+1)
	for _, t := range f.Triggers {
		out = append(out, t.undeployForOwner(f)...)
	}
	out = append(out, fmt.Sprintf("DROP FUNCTION %s(%s);", f.Name.Unwrapped(), f.typeOnlyParamList()))
	return out
}

func (f *Function) paramList() string {
	parts := make([]string, 0, len(f.Parameters)+len(f.Out))
	for _, p := range f.Parameters {
		if p.Name != "" {
			parts = append(parts, p.Name+" "+p.Type.String(true))
		} else {
			parts = append(parts, p.Type.String(true))
		}
	}
	for _, o := range f.Out {
		parts = append(parts, "OUT "+o.Name+" "+o.Type.String(false))
	}
	return strings.Join(parts, ", ")
}

func (f *Function) typeOnlyParamList() string {
	parts := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		parts[i] = p.Type.String(false)
	}
	return strings.Join(parts, ", ")
}

func (f *Function) resultTypeName() string {
	if f.shape.Trigger {
		return "trigger"
	}
	if f.shape.Composite {
		if len(f.Out) > 0 {
			return "record"
		}
		if f.ReturnType != nil {
			return f.ReturnType.String(false)
		}
		return "record"
	}
	if f.ReturnType != nil {
		return f.ReturnType.String(false)
	}
	return identifier.TypeVoid.String(false)
}

// SetHostLanguageNames implements annotation.HostLanguageConfigurable.
func (f *Function) SetHostLanguageNames(trusted, untrusted string) {
	f.NameTrusted, f.NameUntrusted = trusted, untrusted
}

func (f *Function) languageName() string {
	if f.ExplicitLanguage != "" {
		return f.ExplicitLanguage
	}
	trusted := f.NameTrusted
	if trusted == "" {
		trusted = "java"
	}
	untrusted := f.NameUntrusted
	if untrusted == "" {
		untrusted = trusted + "U"
	}
	if f.Trust == Unsandboxed {
		return untrusted
	}
	return trusted
}

// functionBody is a placeholder for the host-supplied method reference
// string the real emitter substitutes; kept abstract here since the
// binding format is a property of the runtime bridge, out of this
// spec's scope (spec §1).
func (f *Function) functionBody() string {
	return f.Name.Unwrapped()
}

var _ Snippet = (*Function)(nil)
var _ HostLanguageConfigurable = (*Function)(nil)
