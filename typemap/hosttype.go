package typemap

import "go/types"

// HostType identifies a host-language type the annotation processor can
// map to a DBType. Implementations must support a stable diagnostic key
// and an assignability test so the mapper can order entries by subtype
// precedence and resolve lookups against an argument's actual type.
type HostType interface {
	// Key returns the canonical name used for comparison, tie-breaking,
	// and diagnostics.
	Key() string

	// AssignableTo reports whether a value of this type may be used
	// where other is expected.
	AssignableTo(other HostType) bool
}

// GoType adapts a go/types.Type into a HostType.
type GoType struct {
	T types.Type
}

// Go wraps t as a HostType.
func Go(t types.Type) GoType { return GoType{T: t} }

// Key returns t's canonical type string (e.g. "int64", "[]byte", "time.Time").
func (g GoType) Key() string { return types.TypeString(g.T, nil) }

// AssignableTo reports whether g's type is assignable to other's type,
// per go/types.AssignableTo. Non-GoType others never match.
func (g GoType) AssignableTo(other HostType) bool {
	o, ok := other.(GoType)
	if !ok {
		return false
	}
	return types.AssignableTo(g.T, o.T)
}

// Named is a HostType identified by a fully qualified name, e.g.
// "time.Time" or a synthetic marker such as "ddr/runtime.Record". Named
// library types are matched by identity rather than go/types'
// assignability machinery, since the mapper seeds them once at
// construction and never needs to reason about their structure.
type Named struct {
	QualifiedName string
}

func (n Named) Key() string { return n.QualifiedName }

func (n Named) AssignableTo(other HostType) bool {
	o, ok := other.(Named)
	return ok && n.QualifiedName == o.QualifiedName
}

// NamedFromGoType builds the Named host type a resolved named type
// should be looked up under, so that driver/env's real go/types.Named
// values line up with the symbolic entries Map seeds for types like
// time.Time.
func NamedFromGoType(t *types.Named) HostType {
	obj := t.Obj()
	if pkg := obj.Pkg(); pkg != nil {
		return Named{QualifiedName: pkg.Path() + "." + obj.Name()}
	}
	return Named{QualifiedName: obj.Name()}
}

// ArrayElem returns the element HostType of a slice or array type, and
// whether t is one. Callers use this to detect the array shape before
// calling GetSQLType, per spec §4.4's "detect array/record first": a
// byte slice is excluded, since the mapper's seeded bytea entry already
// owns that shape as a scalar mapping rather than an array-of-byte.
func ArrayElem(t types.Type) (HostType, bool) {
	var elem types.Type
	switch u := t.Underlying().(type) {
	case *types.Slice:
		elem = u.Elem()
	case *types.Array:
		elem = u.Elem()
	default:
		return nil, false
	}
	if b, ok := elem.Underlying().(*types.Basic); ok && b.Kind() == types.Byte {
		return nil, false
	}
	return Go(elem), true
}
