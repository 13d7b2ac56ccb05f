// Package typemap implements the ordered host-type-to-DBType mapping
// (spec §4.4): a mutable list seeded with platform primitives, frozen
// after the first processing round into subtype-priority order, and
// queried through get_sql_type-style lookups that resolve array/record
// shapes, explicit type annotations, and default-value serialization.
//
// Host types are represented with go/types.Type rather than reflect.Type:
// the driver collaborator (package driver/env) resolves annotated
// elements through golang.org/x/tools/go/packages, which hands back
// go/types values, so the mapper's notion of "host type" is generalized
// from the reflect.Type field on velox's compiler/gen.Storage driver
// table (compiler/gen/storage.go) to the compile-time type system the
// annotation processor actually walks.
package typemap
