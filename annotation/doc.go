// Package annotation implements the typed carriers for declared routines,
// triggers, user-defined types, casts, operators, and aggregates (spec
// §4.5–§4.7): the Snippet contract, and the characterize/deploy/undeploy
// logic for each carrier kind.
//
// Carriers are grounded on velox's loaded-schema carrier structs
// (compiler/load/schema.go's Field/Edge/Index, populated by NewField/
// NewEdge/NewIndex from a reflective walk over an annotated struct) and
// on its Annotation/Merger capability-interface pattern
// (schema/edge/annotation.go), generalized from ent-schema fields and
// edges to install/remove SQL fragments keyed on dependency tags instead
// of storage columns.
package annotation
