package typemap

import (
	"fmt"
	"go/types"
	"sort"

	"github.com/go-ddr/ddrgen/identifier"
)

// Entry is one (host type, DB type) pairing in the mapper's ordered list.
type Entry struct {
	Host HostType
	DB   identifier.DBType

	// Any marks the universal "any"/interface{} entry, suppressed from
	// covariant (return-type) lookups since it is never a safe inferred
	// return type (spec §4.4).
	Any bool
}

// Map is a mutable ordered list of (host type, DBType) pairs. Before
// Freeze, Add appends in insertion order for seeding; after Freeze, the
// list is reordered by subtype precedence and Lookup uses the frozen
// order.
type Map struct {
	entries []Entry
	frozen  bool
}

// NewMap returns a Map seeded with platform primitives, their pointer
// ("boxed") counterparts, numeric widenings, the string type, time.Time
// as timestamp, math/big's Rat and Int as numeric, opaque byte slices as
// bytea, a generic row marker as record, and the empty interface as any
// (spec §4.4). No host type is seeded for date or time of day.
func NewMap() *Map {
	m := &Map{}
	prim := func(kind types.BasicKind, dt identifier.DBType) {
		t := types.Typ[kind]
		m.entries = append(m.entries, Entry{Host: Go(t), DB: dt})
		m.entries = append(m.entries, Entry{Host: Go(types.NewPointer(t)), DB: dt})
	}
	prim(types.Bool, identifier.TypeBoolean)
	prim(types.Int8, identifier.TypeSmallInt)
	prim(types.Int16, identifier.TypeSmallInt)
	prim(types.Int32, identifier.TypeInteger)
	prim(types.Int, identifier.TypeInteger)
	prim(types.Int64, identifier.TypeBigInt)
	prim(types.Float32, identifier.TypeReal)
	prim(types.Float64, identifier.TypeDouble)
	prim(types.String, identifier.TypeText)

	m.entries = append(m.entries,
		Entry{Host: Go(types.NewSlice(types.Typ[types.Byte])), DB: identifier.TypeBytea},
		Entry{Host: Named{QualifiedName: "time.Time"}, DB: identifier.TypeTimestamp},
		Entry{Host: Named{QualifiedName: "math/big.Rat"}, DB: identifier.TypeNumeric},
		Entry{Host: Named{QualifiedName: "math/big.Int"}, DB: identifier.TypeNumeric},
		Entry{Host: Named{QualifiedName: "ddr/runtime.Record"}, DB: identifier.TypeRecord},
	)
	if anyType := types.Universe.Lookup("any"); anyType != nil {
		m.entries = append(m.entries, Entry{Host: Go(anyType.Type()), DB: identifier.TypeAny, Any: true})
	} else {
		m.entries = append(m.entries, Entry{Host: Named{QualifiedName: "any"}, DB: identifier.TypeAny, Any: true})
	}
	return m
}

// Add registers an additional (host, DB) pair, e.g. a mapped UDT's host
// class. It panics if the map is already frozen: callers must register
// every mapping before the first Freeze, per spec §4.4's single
// first-round freeze.
func (m *Map) Add(host HostType, db identifier.DBType) {
	if m.frozen {
		panic("typemap: Add called after Freeze")
	}
	m.entries = append(m.entries, Entry{Host: host, DB: db})
}

// Freeze reorders entries by subtype precedence: for any two entries
// where one host type is assignable to the other, the more specific
// (narrower) one sorts first. Entries with no assignability relation in
// either direction are ordered by their host key, a deterministic
// tie-break. After Freeze, Lookup does a first-match linear scan.
func (m *Map) Freeze() {
	sort.SliceStable(m.entries, func(i, j int) bool {
		hi, hj := m.entries[i].Host, m.entries[j].Host
		iSpecific := hi.AssignableTo(hj)
		jSpecific := hj.AssignableTo(hi)
		switch {
		case iSpecific && !jSpecific:
			return true
		case jSpecific && !iSpecific:
			return false
		default:
			return hi.Key() < hj.Key()
		}
	})
	m.frozen = true
}

// Lookup resolves host to its mapped DBType. In the default (covariant)
// direction it finds the first frozen entry whose host type host is
// assignable to. In the contravariant direction — used for function
// parameters — it scans the list in reverse and tests assignability the
// other way round: the first entry whose host type is assignable to
// host. The universal any entry is never matched as part of this scan;
// for a covariant (return-type) lookup it never matches at all, since it
// is never a safe inferred return type, while for a contravariant lookup
// it is tried only as a last-resort fallback once nothing more specific
// matched.
func (m *Map) Lookup(host HostType, contravariant bool) (identifier.DBType, bool) {
	n := len(m.entries)
	for k := 0; k < n; k++ {
		idx := k
		if contravariant {
			idx = n - 1 - k
		}
		e := m.entries[idx]
		if e.Any {
			continue
		}
		var match bool
		if contravariant {
			match = e.Host.AssignableTo(host)
		} else {
			match = host.AssignableTo(e.Host)
		}
		if match {
			return e.DB, true
		}
	}
	if contravariant {
		for _, e := range m.entries {
			if e.Any {
				return e.DB, true
			}
		}
	}
	return nil, false
}

// DefaultSpec carries a parameter or attribute's default-value literal
// as written by the author, and whether it targets a record type (in
// which case the literal is wrapped in ROW(...) before casting). The
// DEFAULT NULL short-circuit for an optional marker is handled by
// GetSQLType's separate optional parameter, not by this type.
type DefaultSpec struct {
	Literal string
	Record  bool
}

// GetSQLType implements get_sql_type (spec §4.4): an explicit annotation
// wins outright; otherwise an array element type (elem non-nil) maps to
// an Array of the element's mapped type; otherwise host is looked up
// directly. When optional is true the result is wrapped in a DEFAULT NULL
// clause, whether or not def is given; otherwise, if def is non-nil, it
// is wrapped in a quoted literal explicitly cast to the resolved type (or
// wrapped in ROW(...) first for a record default).
func GetSQLType(m *Map, host HostType, elem HostType, explicit identifier.DBType, contravariant bool, def *DefaultSpec, optional bool) (identifier.DBType, error) {
	var base identifier.DBType
	switch {
	case explicit != nil:
		base = explicit
	case elem != nil:
		elemType, ok := m.Lookup(elem, contravariant)
		if !ok {
			return nil, fmt.Errorf("typemap: no SQL type mapped for array element %s", elem.Key())
		}
		base = identifier.Array{Elem: elemType}
	default:
		dt, ok := m.Lookup(host, contravariant)
		if !ok {
			return nil, fmt.Errorf("typemap: no SQL type mapped for %s", host.Key())
		}
		base = dt
	}

	if optional {
		return identifier.WithDefault{Type: base, Default: "DEFAULT NULL"}, nil
	}
	if def == nil {
		return base, nil
	}
	return identifier.WithDefault{Type: base, Default: renderDefault(base, def)}, nil
}

// renderDefault formats a default-value clause: an e_quote-escaped
// string literal explicitly cast to the target type, or that literal
// wrapped in ROW(...) first when the target is a record default.
// Literal escaping goes through identifier.EQuote, spec §4.9's "sole
// escaping mechanism used for default values, comments, and quoted
// literals" — the same call every other carrier's default/comment
// literal uses.
func renderDefault(base identifier.DBType, def *DefaultSpec) string {
	literal := def.Literal
	if def.Record {
		literal = "ROW(" + literal + ")"
	}
	return fmt.Sprintf("DEFAULT %s::%s", identifier.EQuote(literal), base.String(false))
}
