// Package identifier provides the case-folded SQL identifier model and the
// SQL type reference model (DBType) used throughout the generator.
//
// Two identifier forms exist: [Simple], an unqualified identifier that is
// case-folded unless delimited, and [Qualified], an optional schema
// qualifier plus a local name that is either a [Simple] or an [Operator].
//
// DBType models a reference to an SQL type: [Reserved] (a keyword type
// name), [Named] (a schema-qualified type name), an array of either, or
// either wrapped [WithDefault] a default-value clause.
package identifier
