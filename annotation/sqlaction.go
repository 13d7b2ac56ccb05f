package annotation

import (
	"github.com/go-ddr/ddrgen"
	"github.com/go-ddr/ddrgen/dependtag"
)

// SQLAction carries free-form install/remove SQL (spec §4.5): the
// simplest carrier, with no inferred shape of its own.
type SQLAction struct {
	Base
	Install []string
	Remove  []string
}

// NewSQLAction returns an SQLAction for the given owner, with the
// explicit provides/requires/implementor fields of Base left zero-valued
// for the caller to set before Characterize.
func NewSQLAction(owner string) *SQLAction {
	return &SQLAction{Base: Base{OwnerName: owner}}
}

// Characterize just records the explicit tags; there is nothing to
// infer for free-form SQL (spec §4.5: "characterize just records the
// explicit tags and returns the singleton {self}").
func (a *SQLAction) Characterize(sink ddr.Sink) []dependtag.Tag {
	return a.ProvidedTags()
}

// DeployStrings returns the install statements verbatim.
func (a *SQLAction) DeployStrings() []string { return a.Install }

// UndeployStrings returns the remove statements verbatim.
func (a *SQLAction) UndeployStrings() []string { return a.Remove }

var _ Snippet = (*SQLAction)(nil)
