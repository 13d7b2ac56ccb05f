package ddr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure kinds enumerated in spec §7. Typed
// errors below wrap these so callers can use errors.Is against a kind
// without caring which specific carrier produced it.
var (
	// ErrMalformedAnnotation indicates an annotation combination the
	// model forbids (e.g. both trust and language set on a Function).
	ErrMalformedAnnotation = errors.New("ddr: malformed annotation")

	// ErrUnresolved indicates a missing explicit requires tag or an
	// unknown member reference.
	ErrUnresolved = errors.New("ddr: unresolved type or missing provider")

	// ErrCycle indicates the scheduler could not break a dependency
	// cycle for one or more consumer tags.
	ErrCycle = errors.New("ddr: dependency cycle could not be broken")

	// ErrLexability indicates emitted SQL would not survive the
	// descriptor's own lexer.
	ErrLexability = errors.New("ddr: produced SQL is not lexable")

	// ErrEnvironment indicates an inconsistency in the annotated source
	// itself (ambiguous UDT I/O method match, non-public enclosure, ...).
	ErrEnvironment = errors.New("ddr: environment inconsistency")
)

// MalformedAnnotationError reports an impossible annotation combination.
// Per spec §7, processing of the affected snippet continues (so further
// diagnostics can surface) but the snippet is excluded from emission.
type MalformedAnnotationError struct {
	Element string // the annotated element's descriptive name
	Reason  string
}

func (e *MalformedAnnotationError) Error() string {
	return fmt.Sprintf("ddr: %s: %s", e.Element, e.Reason)
}

func (e *MalformedAnnotationError) Is(target error) bool { return target == ErrMalformedAnnotation }

// UnresolvedTagError reports a requires tag with no provider.
type UnresolvedTagError struct {
	Tag string
}

func (e *UnresolvedTagError) Error() string {
	return fmt.Sprintf("ddr: no provider for required tag %s", e.Tag)
}

func (e *UnresolvedTagError) Is(target error) bool { return target == ErrUnresolved }

// CycleError reports one consumer tag that remained unsatisfied when the
// scheduler gave up.
type CycleError struct {
	Tag      string
	Consumer string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("ddr: cannot schedule %s: tag %s never became available", e.Consumer, e.Tag)
}

func (e *CycleError) Is(target error) bool { return target == ErrCycle }

// LexabilityError reports an emitted fragment that fails the balanced-quote
// lexability check.
type LexabilityError struct {
	Implementor string
	Fragment    string
	Reason      string
}

func (e *LexabilityError) Error() string {
	return fmt.Sprintf("ddr: fragment for %q is not lexable: %s", e.Implementor, e.Reason)
}

func (e *LexabilityError) Is(target error) bool { return target == ErrLexability }

// EnvironmentError reports an inconsistency found while characterizing
// annotated source (e.g. two I/O methods matching the same UDT slot).
type EnvironmentError struct {
	Element string
	Reason  string
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("ddr: %s: %s", e.Element, e.Reason)
}

func (e *EnvironmentError) Is(target error) bool { return target == ErrEnvironment }
