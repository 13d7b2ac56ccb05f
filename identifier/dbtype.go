package identifier

import (
	"fmt"
	"strings"

	"ariga.io/atlas/sql/postgres"
)

// DBType is a reference to an SQL type: a reserved keyword type, a
// schema-qualified named type, an array of either, or either wrapped with
// a default-value clause. Spec §3.
type DBType interface {
	// IsArray reports whether this DBType is an array-of some element.
	IsArray() bool
	// String renders the type reference; includeDefault controls whether
	// a WithDefault wrapper's clause is appended.
	String(includeDefault bool) string
	// Base strips any WithDefault wrapper, returning the underlying type.
	Base() DBType
}

// Reserved is a host-language keyword SQL type, e.g. "integer". The
// vocabulary reuses ariga.io/atlas/sql/postgres's exported Postgres type
// name constants instead of inventing a parallel set of literals (see
// DESIGN.md).
type Reserved struct {
	Name string
}

// Common reserved type name builders, grounded on the atlas/sql/postgres
// constants the teacher already imports (compiler/gen/type_field.go).
var (
	TypeBoolean      = Reserved{Name: postgres.TypeBoolean}
	TypeSmallInt     = Reserved{Name: postgres.TypeSmallInt}
	TypeInteger      = Reserved{Name: postgres.TypeInteger}
	TypeBigInt       = Reserved{Name: postgres.TypeBigInt}
	TypeReal         = Reserved{Name: postgres.TypeReal}
	TypeDouble       = Reserved{Name: postgres.TypeDouble}
	TypeNumeric      = Reserved{Name: postgres.TypeNumeric}
	TypeText         = Reserved{Name: postgres.TypeText}
	TypeVarchar      = Reserved{Name: postgres.TypeVarChar}
	TypeChar         = Reserved{Name: postgres.TypeChar}
	TypeBytea        = Reserved{Name: postgres.TypeBytea}
	TypeDate         = Reserved{Name: postgres.TypeDate}
	TypeTime         = Reserved{Name: postgres.TypeTime}
	TypeTimestamp    = Reserved{Name: postgres.TypeTimestamp}
	TypeTimestampTZ  = Reserved{Name: postgres.TypeTimestampWTZ}
	TypeInterval     = Reserved{Name: postgres.TypeInterval}
	TypeUUID         = Reserved{Name: postgres.TypeUUID}
	TypeJSON         = Reserved{Name: postgres.TypeJSON}
	TypeJSONB        = Reserved{Name: postgres.TypeJSONB}
	TypeXML          = Reserved{Name: postgres.TypeXML}
	TypeRecord       = Reserved{Name: "record"}
	TypeVoid         = Reserved{Name: "void"}
	TypeAny          = Reserved{Name: "any"}
	TypeTrigger      = Reserved{Name: "trigger"}
	TypeCString      = Reserved{Name: "cstring"}
	TypeInternal     = Reserved{Name: "internal"}
	TypeOid          = Reserved{Name: "oid"}
)

func (r Reserved) IsArray() bool { return false }
func (r Reserved) Base() DBType  { return r }
func (r Reserved) String(bool) string {
	return r.Name
}

// Named is a schema-qualified named type, e.g. pg_catalog.bytea or a
// user-declared base/mapped UDT.
type Named struct {
	Name Qualified
}

func (n Named) IsArray() bool { return false }
func (n Named) Base() DBType  { return n }
func (n Named) String(bool) string {
	return n.Name.String()
}

// Array is a DBType wrapping an element type with an array subscript
// suffix.
type Array struct {
	Elem DBType
}

func (a Array) IsArray() bool { return true }

// Base unwraps through the element type, since an array's Type depend tag
// (if any) comes from its element, not the array wrapper itself.
func (a Array) Base() DBType { return a.Elem.Base() }
func (a Array) String(includeDefault bool) string {
	return a.Elem.String(includeDefault) + "[]"
}

// WithDefault wraps a DBType with an opaque default-value clause text,
// appended only when emission requests it (includeDefault).
type WithDefault struct {
	Type    DBType
	Default string // e.g. "DEFAULT e'...'::type" or "DEFAULT NULL"
}

func (w WithDefault) IsArray() bool { return w.Type.IsArray() }
func (w WithDefault) Base() DBType  { return w.Type.Base() }
func (w WithDefault) String(includeDefault bool) string {
	s := w.Type.String(includeDefault)
	if includeDefault && w.Default != "" {
		s += " " + w.Default
	}
	return s
}

// NamedBase reports whether t's base is a Named type, returning its
// qualified name. Used by dependtag.ForType to compute the implicit Type
// tag a DBType contributes (spec §4.1: "depend_tag ... yielding a Type tag
// only for Named base, else none").
func NamedBase(t DBType) (Qualified, bool) {
	switch b := t.Base().(type) {
	case Named:
		return b.Name, true
	default:
		return Qualified{}, false
	}
}

// ParseSQLType parses a permissive type expression: a base name (possibly
// schema.local or a delimited identifier), an optional trailing array
// suffix ("[]" or "[n]"), per spec §4.1 ("from_sql_type_annotation").
// Unrecognized base names become a Named reference rather than an error,
// since the parser preserves the original text when uncertain.
func ParseSQLType(s string) (DBType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("identifier: empty SQL type annotation")
	}
	array := false
	for strings.HasSuffix(s, "]") {
		open := strings.LastIndex(s, "[")
		if open < 0 {
			return nil, fmt.Errorf("identifier: unbalanced array suffix in %q", s)
		}
		s = strings.TrimSpace(s[:open])
		array = true
	}
	base := reservedByName(s)
	var dt DBType
	if base != nil {
		dt = *base
	} else {
		dt = Named{Name: parseQualifiedSQLName(s)}
	}
	if array {
		dt = Array{Elem: dt}
	}
	return dt, nil
}

func reservedByName(s string) *Reserved {
	folded := strings.ToLower(strings.TrimSpace(s))
	all := []Reserved{
		TypeBoolean, TypeSmallInt, TypeInteger, TypeBigInt, TypeReal, TypeDouble,
		TypeNumeric, TypeText, TypeVarchar, TypeChar, TypeBytea, TypeDate, TypeTime,
		TypeTimestamp, TypeTimestampTZ, TypeInterval, TypeUUID, TypeJSON, TypeJSONB,
		TypeXML, TypeRecord, TypeVoid, TypeAny, TypeTrigger, TypeCString, TypeInternal,
		TypeOid,
	}
	for _, r := range all {
		if strings.ToLower(r.Name) == folded {
			rv := r
			return &rv
		}
	}
	return nil
}

// parseQualifiedSQLName splits "schema.local" or a bare/delimited local
// name into a Qualified, preserving quoting.
func parseQualifiedSQLName(s string) Qualified {
	if idx := splitUnquotedDot(s); idx >= 0 {
		q := NewSimpleFromSQL(s[:idx])
		local := NewSimpleFromSQL(s[idx+1:])
		return NewQualified(NewLocalSimple(local)).WithQualifier(q)
	}
	return NewQualified(NewLocalSimple(NewSimpleFromSQL(s)))
}

// splitUnquotedDot finds the index of a '.' outside any double-quoted
// span, or -1 if none exists.
func splitUnquotedDot(s string) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case '.':
			if !inQuote {
				return i
			}
		}
	}
	return -1
}
