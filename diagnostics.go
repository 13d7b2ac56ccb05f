package ddr

import "fmt"

// Severity classifies a Diagnostic.
type Severity int

const (
	// Warning diagnostics never suppress emission.
	Warning Severity = iota
	// Error diagnostics suppress emission once processing of the current
	// round completes, but never stop characterization early: every
	// error gets a chance to be reported (spec §7).
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Location points at the source of a diagnostic, when available.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Line == 0 {
		return l.File
	}
	if l.Column == 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Diagnostic is a single warning or error surfaced during processing.
type Diagnostic struct {
	Severity Severity
	Message  string
	Loc      *Location
}

func (d Diagnostic) String() string {
	if loc := d.Loc.String(); loc != "" {
		return fmt.Sprintf("%s: %s: %s", loc, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Sink is the diagnostic collaborator (spec §6): a write-only facade a
// host compiler environment provides so the core can surface warnings and
// errors with source locations without depending on that environment's
// own diagnostic API.
type Sink interface {
	Report(Diagnostic)
}

// Warnf reports a warning-severity diagnostic to sink.
func Warnf(sink Sink, loc *Location, format string, args ...any) {
	sink.Report(Diagnostic{Severity: Warning, Message: fmt.Sprintf(format, args...), Loc: loc})
}

// Errorf reports an error-severity diagnostic to sink.
func Errorf(sink Sink, loc *Location, format string, args ...any) {
	sink.Report(Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), Loc: loc})
}

// CollectingSink is a Sink that keeps every diagnostic in memory, in the
// order reported. It is the default used outside a real compiler
// environment (tests, the standalone driver).
type CollectingSink struct {
	Diagnostics []Diagnostic
}

// Report appends d to the sink.
func (s *CollectingSink) Report(d Diagnostic) {
	s.Diagnostics = append(s.Diagnostics, d)
}

// Warnf reports a warning-severity diagnostic.
func (s *CollectingSink) Warnf(loc *Location, format string, args ...any) {
	s.Report(Diagnostic{Severity: Warning, Message: fmt.Sprintf(format, args...), Loc: loc})
}

// Errorf reports an error-severity diagnostic.
func (s *CollectingSink) Errorf(loc *Location, format string, args ...any) {
	s.Report(Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), Loc: loc})
}

// HasErrors reports whether any Error-severity diagnostic was collected.
func (s *CollectingSink) HasErrors() bool {
	for _, d := range s.Diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the Error-severity diagnostics.
func (s *CollectingSink) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range s.Diagnostics {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}
