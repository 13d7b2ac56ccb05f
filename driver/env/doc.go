// Package env implements spec §6's environment collaborator against real
// Go source: resolving a canonical name to its declared element, mirroring
// parameter/return types (same-type, assignability, direct supertypes,
// erasure), reading annotation directives out of doc comments, and
// extracting a doc comment's first sentence — all atop
// golang.org/x/tools/go/packages and go/types rather than a specific host
// compiler's own annotation-processing API, which spec.md deliberately
// stays abstract over.
//
// Go carries no native annotation facility, so this package treats a
// "//ddr:Name key=\"value\" ..." doc-comment directive line as the
// annotation mirror spec §6 asks for; see Element.Annotations.
package env
