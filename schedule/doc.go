// Package schedule orders a set of already-characterized snippets into
// install and remove sequences by building two dependency graphs over
// their provides/requires tags and draining them in dependency order,
// breaking the one kind of cycle the annotation model can produce — a
// BaseUDT and its own I/O functions (spec §4.8).
package schedule
