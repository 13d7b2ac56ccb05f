package env

import "go/types"

// Kind classifies a TypeMirror the way spec §6 enumerates them:
// "primitive/array/declared/void/error".
type Kind int

const (
	KindDeclared Kind = iota
	KindPrimitive
	KindArray
	KindVoid
	KindError
)

var errorType = types.Universe.Lookup("error").Type()

// TypeMirror wraps a go/types.Type, giving the driver the
// parameter/return type operations spec §6 asks the environment
// collaborator for, without the driver importing go/types itself.
type TypeMirror struct {
	t types.Type
}

// NewTypeMirror wraps t. Exported so driver/env's callers (the annotation
// layer that turns resolved elements into carriers) can build one
// directly from a types.Type it already has in hand.
func NewTypeMirror(t types.Type) TypeMirror { return TypeMirror{t: t} }

// Underlying returns the wrapped go/types.Type, for callers that need to
// fall through to go/types directly for something this mirror doesn't
// expose.
func (m TypeMirror) Underlying() types.Type { return m.t }

// IsVoid reports whether this mirror wraps no type at all (a function
// with no return value).
func (m TypeMirror) IsVoid() bool { return m.t == nil }

// IsSame reports whether m and o name identical types.
func (m TypeMirror) IsSame(o TypeMirror) bool {
	if m.t == nil || o.t == nil {
		return m.t == o.t
	}
	return types.Identical(m.t, o.t)
}

// IsAssignable reports whether a value of type m can be assigned to a
// variable of type to.
func (m TypeMirror) IsAssignable(to TypeMirror) bool {
	if m.t == nil || to.t == nil {
		return false
	}
	return types.AssignableTo(m.t, to.t)
}

// DirectSupertypes returns the embedded interfaces of an interface type,
// or the embedded fields of a struct type: Go's nearest analogues to a
// declared type's direct supertype list.
func (m TypeMirror) DirectSupertypes() []TypeMirror {
	if m.t == nil {
		return nil
	}
	switch u := m.t.Underlying().(type) {
	case *types.Interface:
		out := make([]TypeMirror, 0, u.NumEmbeddeds())
		for i := 0; i < u.NumEmbeddeds(); i++ {
			out = append(out, TypeMirror{t: u.EmbeddedType(i)})
		}
		return out
	case *types.Struct:
		var out []TypeMirror
		for i := 0; i < u.NumFields(); i++ {
			if u.Field(i).Embedded() {
				out = append(out, TypeMirror{t: u.Field(i).Type()})
			}
		}
		return out
	default:
		return nil
	}
}

// Erasure strips generic type arguments from an instantiated named type,
// Go's nearest analogue to Java's type erasure; any other type is its own
// erasure.
func (m TypeMirror) Erasure() TypeMirror {
	named, ok := m.t.(*types.Named)
	if !ok {
		return m
	}
	if orig := named.Origin(); orig != nil {
		return TypeMirror{t: orig}
	}
	return m
}

// TypeArguments returns the type arguments of an instantiated generic
// named type, or nil if m is not a generic instantiation.
func (m TypeMirror) TypeArguments() []TypeMirror {
	named, ok := m.t.(*types.Named)
	if !ok {
		return nil
	}
	args := named.TypeArgs()
	if args == nil {
		return nil
	}
	out := make([]TypeMirror, args.Len())
	for i := 0; i < args.Len(); i++ {
		out[i] = TypeMirror{t: args.At(i)}
	}
	return out
}

// ComponentType returns the element type of an array or slice mirror.
func (m TypeMirror) ComponentType() (TypeMirror, bool) {
	switch t := m.t.(type) {
	case *types.Array:
		return TypeMirror{t: t.Elem()}, true
	case *types.Slice:
		return TypeMirror{t: t.Elem()}, true
	default:
		return TypeMirror{}, false
	}
}

// Kind classifies m per spec §6's primitive/array/declared/void/error
// enumeration.
func (m TypeMirror) Kind() Kind {
	if m.t == nil {
		return KindVoid
	}
	if types.Identical(m.t, errorType) {
		return KindError
	}
	switch m.t.(type) {
	case *types.Basic:
		return KindPrimitive
	case *types.Array, *types.Slice:
		return KindArray
	default:
		return KindDeclared
	}
}

// String renders the mirrored type the way go/types itself would print
// it, for diagnostics.
func (m TypeMirror) String() string {
	if m.t == nil {
		return "void"
	}
	return m.t.String()
}
