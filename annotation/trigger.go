package annotation

import (
	"fmt"
	"strings"

	"github.com/go-ddr/ddrgen"
	"github.com/go-ddr/ddrgen/dependtag"
	"github.com/go-ddr/ddrgen/identifier"
)

// TriggerScope is the FOR EACH ROW/STATEMENT clause.
type TriggerScope int

const (
	ScopeRow TriggerScope = iota
	ScopeStatement
)

// TriggerCalled is the BEFORE/AFTER/INSTEAD OF clause.
type TriggerCalled int

const (
	Before TriggerCalled = iota
	After
	InsteadOf
)

func (c TriggerCalled) String() string {
	switch c {
	case After:
		return "AFTER"
	case InsteadOf:
		return "INSTEAD OF"
	default:
		return "BEFORE"
	}
}

// TriggerEvent is one of INSERT/UPDATE/DELETE/TRUNCATE.
type TriggerEvent int

const (
	Insert TriggerEvent = iota
	Update
	Delete
	Truncate
)

func (e TriggerEvent) String() string {
	switch e {
	case Update:
		return "UPDATE"
	case Delete:
		return "DELETE"
	case Truncate:
		return "TRUNCATE"
	default:
		return "INSERT"
	}
}

// Trigger is the carrier for an @Trigger-annotated routine (spec §4.5).
// It never emits its own deploy/undeploy strings: the owning Function
// does, via deployForOwner/undeployForOwner, since a trigger has no
// meaning detached from the function it calls.
type Trigger struct {
	Base

	Name       string
	Schema     string
	Table      identifier.Qualified
	Scope      TriggerScope
	Called     TriggerCalled
	Events     []TriggerEvent
	Columns    []string // UPDATE OF columns, non-empty only with Update in Events
	When       string   // raw WHEN(...) condition text, not parsed (spec §1 non-goal)
	Constraint bool
	From       identifier.Qualified
	HasFrom    bool
	TableOld   string
	TableNew   string
	Arguments  []string
}

// NewTrigger returns a Trigger carrier for owner.
func NewTrigger(owner string) *Trigger {
	return &Trigger{Base: Base{OwnerName: owner}}
}

// Characterize validates the trigger's compatibility rules (spec §4.5)
// and always returns the empty set: the owning function emits the
// trigger's SQL, so a Trigger never provides a tag of its own.
func (t *Trigger) Characterize(sink ddr.Sink) []dependtag.Tag {
	loc := fmt.Sprintf("trigger %s", t.triggerName())

	if t.hasEvent(Truncate) && t.Scope == ScopeRow {
		ddr.Errorf(sink, nil, "%s: TRUNCATE forbids row-scope", loc)
	}
	if t.Called == InsteadOf {
		if t.When != "" {
			ddr.Errorf(sink, nil, "%s: INSTEAD OF forbids a WHEN condition", loc)
		}
		if len(t.Columns) > 0 {
			ddr.Errorf(sink, nil, "%s: INSTEAD OF forbids a column list", loc)
		}
		if t.Scope == ScopeStatement {
			ddr.Errorf(sink, nil, "%s: INSTEAD OF forbids statement-scope", loc)
		}
	}
	if t.TableOld != "" || t.TableNew != "" {
		if t.Called != After {
			ddr.Errorf(sink, nil, "%s: a transition table reference requires AFTER", loc)
		}
		for _, e := range t.Events {
			if e == Truncate {
				ddr.Errorf(sink, nil, "%s: a transition table reference is inconsistent with TRUNCATE", loc)
			}
		}
	}
	if t.Constraint && (t.Called != After || t.Scope != ScopeRow) {
		ddr.Errorf(sink, nil, "%s: a constraint trigger requires AFTER and row-scope", loc)
	}
	if t.HasFrom && !t.Constraint {
		ddr.Errorf(sink, nil, "%s: FROM is only valid on a constraint trigger", loc)
	}
	if len(t.Columns) > 0 && !t.hasEvent(Update) {
		ddr.Errorf(sink, nil, "%s: a column list requires UPDATE among the trigger events", loc)
	}
	return nil
}

func (t *Trigger) hasEvent(e TriggerEvent) bool {
	for _, have := range t.Events {
		if have == e {
			return true
		}
	}
	return false
}

func (t *Trigger) triggerName() string {
	if t.Name != "" {
		return t.Name
	}
	return "(unnamed)"
}

// Requires, DeployStrings, and UndeployStrings are never called on a
// Trigger directly — the scheduler and emitter only ever see the owning
// Function's snippet — but are implemented to satisfy Snippet so a
// Trigger can still be registered in the snippets map for diagnostics
// keyed by (owner, subclass) (spec §5).
func (t *Trigger) DeployStrings() []string   { return nil }
func (t *Trigger) UndeployStrings() []string { return nil }

func (t *Trigger) eventList() string {
	parts := make([]string, len(t.Events))
	for i, e := range t.Events {
		parts[i] = e.String()
		if e == Update && len(t.Columns) > 0 {
			parts[i] += " OF " + strings.Join(t.Columns, ", ")
		}
	}
	return strings.Join(parts, " OR ")
}

// deployForOwner renders CREATE [CONSTRAINT] TRIGGER for t, calling
// owner's function.
func (t *Trigger) deployForOwner(owner *Function) []string {
	var b strings.Builder
	b.WriteString("CREATE ")
	if t.Constraint {
		b.WriteString("CONSTRAINT ")
	}
	b.WriteString("TRIGGER ")
	b.WriteString(t.Name)
	b.WriteString(" ")
	b.WriteString(t.Called.String())
	b.WriteString(" ")
	b.WriteString(t.eventList())
	b.WriteString(" ON ")
	b.WriteString(t.Table.String())
	if t.HasFrom {
		b.WriteString(" FROM ")
		b.WriteString(t.From.String())
	}
	if t.TableOld != "" || t.TableNew != "" {
		b.WriteString(" REFERENCING")
		if t.TableOld != "" {
			fmt.Fprintf(&b, " OLD TABLE AS %s", t.TableOld)
		}
		if t.TableNew != "" {
			fmt.Fprintf(&b, " NEW TABLE AS %s", t.TableNew)
		}
	}
	b.WriteString(" FOR EACH ")
	if t.Scope == ScopeStatement {
		b.WriteString("STATEMENT")
	} else {
		b.WriteString("ROW")
	}
	if t.When != "" {
		fmt.Fprintf(&b, " WHEN (%s)", t.When)
	}
	fmt.Fprintf(&b, " EXECUTE FUNCTION %s(%s);", owner.Name.String(), strings.Join(t.Arguments, ", "))
	return []string{b.String()}
}

// undeployForOwner renders DROP TRIGGER for t.
func (t *Trigger) undeployForOwner(owner *Function) []string {
	return []string{fmt.Sprintf("DROP TRIGGER %s ON %s;", t.Name, t.Table.Unwrapped())}
}

var _ Snippet = (*Trigger)(nil)
