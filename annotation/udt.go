package annotation

import (
	"fmt"
	"unicode"

	"github.com/go-ddr/ddrgen"
	"github.com/go-ddr/ddrgen/dependtag"
	"github.com/go-ddr/ddrgen/identifier"
)

// Alignment is a base type's required memory alignment.
type Alignment int

const (
	AlignChar Alignment = iota
	AlignInt2
	AlignInt4
	AlignDouble
)

func (a Alignment) String() string {
	switch a {
	case AlignInt2:
		return "int2"
	case AlignInt4:
		return "int4"
	case AlignDouble:
		return "double"
	default:
		return "char"
	}
}

// Storage is a base type's TOAST storage strategy.
type Storage int

const (
	StoragePlain Storage = iota
	StorageExternal
	StorageExtended
	StorageMain
)

func (s Storage) String() string {
	switch s {
	case StorageExternal:
		return "external"
	case StorageExtended:
		return "extended"
	case StorageMain:
		return "main"
	default:
		return "plain"
	}
}

// Shell is the synthetic "CREATE TYPE name" declaration with no
// attributes that BaseUDT's cycle breaker inserts ahead of the type's
// I/O functions (spec §4.8).
type Shell struct {
	Base
	Name identifier.Qualified
}

// Characterize implements Snippet: a Shell provides the UDT's own type
// tag, standing in for the BaseUDT vertex that is temporarily zeroed out
// during cycle-breaking.
func (s *Shell) Characterize(sink ddr.Sink) []dependtag.Tag {
	s.SetImplicitProvides(dependtag.NewType(s.Name))
	return s.ProvidedTags()
}

// DeployStrings implements Snippet.
func (s *Shell) DeployStrings() []string {
	return []string{fmt.Sprintf("CREATE TYPE %s;", s.Name)}
}

// UndeployStrings implements Snippet: a shell never emits its own DROP —
// the owning BaseUDT's DROP TYPE ... CASCADE subsumes it.
func (s *Shell) UndeployStrings() []string { return nil }

var _ Snippet = (*Shell)(nil)

// BaseUDT is the carrier for an @BaseUDT-annotated scalar type (spec
// §4.5): a fixed-representation type backed by four synthetic I/O
// functions (input, output, receive, send) with a canonical,
// Postgres-mandated signature.
type BaseUDT struct {
	Base

	Name           identifier.Qualified
	Input          identifier.Qualified
	Output         identifier.Qualified
	Receive        identifier.Qualified
	Send           identifier.Qualified
	TypmodIn       *identifier.Qualified
	TypmodOut      *identifier.Qualified
	Analyze        *identifier.Qualified
	InternalLength int // -1 means variable-length
	PassedByValue  bool
	Alignment      Alignment
	Storage        Storage
	Category       byte // must be a single printable ASCII character
	Delimiter      byte

	shell *Shell
}

// NewBaseUDT returns a BaseUDT carrier for owner.
func NewBaseUDT(owner string) *BaseUDT {
	return &BaseUDT{Base: Base{OwnerName: owner}}
}

// Characterize implements Snippet (spec §4.5): validates the
// alignment/length/storage combination and the category rule, then
// derives the implicit provides/requires tags.
func (u *BaseUDT) Characterize(sink ddr.Sink) []dependtag.Tag {
	ok := true
	if !unicode.IsPrint(rune(u.Category)) || u.Category > unicode.MaxASCII {
		ddr.Errorf(sink, nil, "base type %s: category must be a single printable ASCII character", u.Name)
		ok = false
	}
	if u.PassedByValue {
		switch u.InternalLength {
		case 1, 2, 4, 8:
		default:
			ddr.Errorf(sink, nil, "base type %s: pass-by-value requires an internal length of 1, 2, 4, or 8", u.Name)
			ok = false
		}
		if u.Storage != StoragePlain {
			ddr.Errorf(sink, nil, "base type %s: pass-by-value requires plain storage", u.Name)
			ok = false
		}
	}
	if u.InternalLength == -1 && u.Storage == StoragePlain {
		ddr.Errorf(sink, nil, "base type %s: a variable-length type cannot use plain storage", u.Name)
		ok = false
	}
	if !ok {
		return nil
	}

	u.SetImplicitProvides(dependtag.NewType(u.Name))

	self := identifier.Named{Name: u.Name}
	requires := []dependtag.Tag{
		dependtag.NewFunction(u.Input, []identifier.DBType{identifier.TypeCString}),
		dependtag.NewFunction(u.Output, []identifier.DBType{self}),
		dependtag.NewFunction(u.Receive, []identifier.DBType{identifier.TypeInternal}),
		dependtag.NewFunction(u.Send, []identifier.DBType{self}),
	}
	if u.TypmodIn != nil {
		requires = append(requires, dependtag.NewFunction(*u.TypmodIn, []identifier.DBType{identifier.Array{Elem: identifier.TypeCString}}))
	}
	if u.TypmodOut != nil {
		requires = append(requires, dependtag.NewFunction(*u.TypmodOut, []identifier.DBType{identifier.TypeInteger}))
	}
	if u.Analyze != nil {
		requires = append(requires, dependtag.NewFunction(*u.Analyze, []identifier.DBType{identifier.TypeInternal}))
	}
	u.SetImplicitRequires(requires...)
	return u.ProvidedTags()
}

// DeployStrings implements Snippet: CREATE TYPE name (parameterized
// representation clause). The text is the same whether or not the
// cycle breaker's shell (a bare CREATE TYPE name;) was emitted before it.
func (u *BaseUDT) DeployStrings() []string {
	return []string{fmt.Sprintf(
		"CREATE TYPE %s (INPUT = %s, OUTPUT = %s, RECEIVE = %s, SEND = %s%s, %s, %s, ALIGNMENT = %s, STORAGE = %s, CATEGORY = '%c'%s);",
		u.Name, u.Input, u.Output, u.Receive, u.Send,
		u.optionalFuncClauses(),
		u.internalLengthText(),
		u.passedByValueText(),
		u.Alignment, u.Storage, u.Category,
		u.delimiterText(),
	)}
}

// UndeployStrings implements Snippet: DROP TYPE ... CASCADE, which also
// removes the I/O functions when Subsumed.
func (u *BaseUDT) UndeployStrings() []string {
	return []string{fmt.Sprintf("DROP TYPE %s CASCADE;", u.Name.Unwrapped())}
}

func (u *BaseUDT) optionalFuncClauses() string {
	s := ""
	if u.TypmodIn != nil {
		s += fmt.Sprintf(", TYPMOD_IN = %s", u.TypmodIn)
	}
	if u.TypmodOut != nil {
		s += fmt.Sprintf(", TYPMOD_OUT = %s", u.TypmodOut)
	}
	if u.Analyze != nil {
		s += fmt.Sprintf(", ANALYZE = %s", u.Analyze)
	}
	return s
}

func (u *BaseUDT) internalLengthText() string {
	if u.InternalLength == -1 {
		return "INTERNALLENGTH = VARIABLE"
	}
	return fmt.Sprintf("INTERNALLENGTH = %d", u.InternalLength)
}

func (u *BaseUDT) passedByValueText() string {
	if u.PassedByValue {
		return "PASSEDBYVALUE"
	}
	return "PASSEDBYVALUE = false"
}

func (u *BaseUDT) delimiterText() string {
	if u.Delimiter == 0 {
		return ""
	}
	return fmt.Sprintf(", DELIMITER = '%c'", u.Delimiter)
}

// Shell lazily builds (or returns the already-built) Shell snippet this
// UDT's cycle breaker inserts ahead of its I/O functions.
func (u *BaseUDT) Shell() *Shell {
	if u.shell == nil {
		u.shell = &Shell{Base: Base{OwnerName: u.OwnerName + "$shell"}, Name: u.Name}
	}
	return u.shell
}

var _ Snippet = (*BaseUDT)(nil)

// MappedUDT is the carrier for an @MappedUDT-annotated composite type
// backed directly by a host class, with no synthetic I/O functions
// (spec §4.5).
type MappedUDT struct {
	Base

	Name       identifier.Qualified
	ClassName  string
	Attributes []UDTAttribute
}

// UDTAttribute is one field of a structured MappedUDT declaration.
type UDTAttribute struct {
	Name string
	Type identifier.DBType
}

// NewMappedUDT returns a MappedUDT carrier for owner.
func NewMappedUDT(owner string) *MappedUDT {
	return &MappedUDT{Base: Base{OwnerName: owner}}
}

// Characterize implements Snippet: provides the type tag only if a
// structure was declared (spec §4.5).
func (u *MappedUDT) Characterize(sink ddr.Sink) []dependtag.Tag {
	if len(u.Attributes) > 0 {
		u.SetImplicitProvides(dependtag.NewType(u.Name))
	}
	return u.ProvidedTags()
}

// DeployStrings implements Snippet.
func (u *MappedUDT) DeployStrings() []string {
	out := make([]string, 0, 2)
	if len(u.Attributes) > 0 {
		parts := ""
		for i, a := range u.Attributes {
			if i > 0 {
				parts += ", "
			}
			parts += a.Name + " " + a.Type.String(false)
		}
		out = append(out, fmt.Sprintf("CREATE TYPE %s AS (%s);", u.Name, parts))
	}
	out = append(out, fmt.Sprintf("SELECT sqlj.add_type_mapping(%s, %s);",
		identifier.EQuote(u.Name.Unwrapped()), identifier.EQuote(u.ClassName)))
	return out
}

// UndeployStrings implements Snippet.
func (u *MappedUDT) UndeployStrings() []string {
	out := []string{fmt.Sprintf("SELECT sqlj.drop_type_mapping(%s);", identifier.EQuote(u.Name.Unwrapped()))}
	if len(u.Attributes) > 0 {
		out = append(out, fmt.Sprintf("DROP TYPE %s;", u.Name.Unwrapped()))
	}
	return out
}

var _ Snippet = (*MappedUDT)(nil)

// SQLType is not a DAG participant of its own: it is the carrier for an
// @SQLType annotation element attached to a parameter, return trailer, or
// attribute, supplying the explicit SQL type text (and optional default
// literal) that the owning carrier resolves through GetSQLType at
// population time (spec §4.4, §4.5). It is kept as a plain value type
// rather than a Snippet, since nothing ever schedules or emits it
// independently of its owner.
type SQLType struct {
	Text    string
	Default string
	HasAny  bool // true if the annotation set "any" rather than a concrete text
}
