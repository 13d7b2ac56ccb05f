package annotation

import (
	"github.com/go-ddr/ddrgen"
	"github.com/go-ddr/ddrgen/dependtag"
	"github.com/go-ddr/ddrgen/identifier"
)

// Snippet is the contract every annotation carrier implements: validate
// and fill in implicit fields, declare the dependency tags it offers and
// consumes, and serialize install/remove SQL fragments (spec §4.5).
type Snippet interface {
	// Owner returns the canonical name of the annotated element, used in
	// diagnostics and as half of the snippets map key (spec §5).
	Owner() string

	// Characterize validates the populated carrier and fills in any
	// implicit fields (defaulted name, inferred return shape, and so on).
	// It reports diagnostics to sink and returns the set of depend tags
	// this snippet provides; a malformed carrier may return none and
	// still leave diagnostics for the caller to inspect.
	Characterize(sink ddr.Sink) []dependtag.Tag

	// Requires returns the depend tags this snippet consumes. Valid only
	// after Characterize.
	Requires() []dependtag.Tag

	// ProvidedTags returns the depend tags this snippet offers (the same
	// set Characterize returned). Valid only after Characterize; the
	// scheduler calls it again once the full snippet set is known, rather
	// than threading Characterize's return value around separately.
	ProvidedTags() []dependtag.Tag

	// ImplementorName returns the wrapping BEGIN/END block name this
	// snippet's statements should be enclosed in, or ok=false if its
	// statements are unwrapped.
	ImplementorName() (name identifier.Simple, ok bool)

	// DeployStrings returns the BEGIN INSTALL statements this snippet
	// contributes, in order, unwrapped (the emitter applies implementor
	// wrapping).
	DeployStrings() []string

	// UndeployStrings returns the BEGIN REMOVE statements, in order.
	UndeployStrings() []string
}

// HostLanguageConfigurable is implemented by carriers whose emitted SQL
// names a trusted/untrusted host language binding. The driver injects
// the configured ddr.name.trusted/ddr.name.untrusted values (spec §6)
// into any round snippet implementing this before calling Characterize.
type HostLanguageConfigurable interface {
	SetHostLanguageNames(trusted, untrusted string)
}

// Base holds the fields common to every carrier: the owning element's
// canonical name, the tags it explicitly provides/requires (spec
// §4.5's "populating a carrier" contract always accepts these two
// repeatable string-array elements), and an optional implementor name.
type Base struct {
	OwnerName        string
	ExplicitProvides  []string
	ExplicitRequires  []string
	Implementor       identifier.Simple
	HasImplementor    bool
	implicitProvides  []dependtag.Tag
	implicitRequires  []dependtag.Tag
}

// Owner implements Snippet.
func (b *Base) Owner() string { return b.OwnerName }

// ImplementorName implements Snippet.
func (b *Base) ImplementorName() (identifier.Simple, bool) {
	return b.Implementor, b.HasImplementor
}

// SetImplicitProvides records the tags a carrier's Characterize derives
// on top of ExplicitProvides.
func (b *Base) SetImplicitProvides(tags ...dependtag.Tag) { b.implicitProvides = tags }

// SetImplicitRequires records the tags a carrier's Characterize derives
// on top of ExplicitRequires.
func (b *Base) SetImplicitRequires(tags ...dependtag.Tag) { b.implicitRequires = tags }

// ProvidedTags merges the explicit string-tag provides with any implicit
// tags Characterize derived.
func (b *Base) ProvidedTags() []dependtag.Tag {
	tags := make([]dependtag.Tag, 0, len(b.ExplicitProvides)+len(b.implicitProvides))
	for _, s := range b.ExplicitProvides {
		tags = append(tags, dependtag.NewExplicit(s))
	}
	tags = append(tags, b.implicitProvides...)
	return tags
}

// Requires implements Snippet: it merges the explicit string-tag
// requires with any implicit tags Characterize derived.
func (b *Base) Requires() []dependtag.Tag {
	tags := make([]dependtag.Tag, 0, len(b.ExplicitRequires)+len(b.implicitRequires))
	for _, s := range b.ExplicitRequires {
		tags = append(tags, dependtag.NewExplicit(s))
	}
	tags = append(tags, b.implicitRequires...)
	return tags
}
