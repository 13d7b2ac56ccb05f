// Package synth derives synthetic operators by commutation and negation
// from the non-synthetic operators annotating the same host element (spec
// §4.6), populating annotation.Operator's ResolvedFunction/
// ResolvedSignature/Unresolvable fields before Characterize runs.
package synth
