// Package diag implements the diagnostics engine: continuable
// diagnostics gated per phase, a hint stack so errors
// surfaced during lowering carry "while elaborating instance ..."
// context, and a distinct Fatal class for core invariant violations
// (unreachable switch arms) that abort elaboration immediately.
package diag

import (
	"fmt"
	"sort"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is one recorded finding.
type Diagnostic struct {
	Severity Severity
	Location string
	Message  string
	Hints    []string
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s: %s", d.Location, d.Severity, d.Message)
	for _, h := range d.Hints {
		s += "\n  " + h
	}
	return s
}

// Fatal is a programmer-error class: an unreachable case in a switch
// over a tree/Verilog kind. It is raised with panic(Fatal{...}) and
// recovered only at the two root driver entry points, terminating
// elaboration immediately. The recursion-depth cap is not a Fatal: it
// is reported as an ordinary error diagnostic.
type Fatal struct {
	Location string
	Message  string
}

func (f Fatal) Error() string {
	return fmt.Sprintf("%s: fatal: %s", f.Location, f.Message)
}

// Sink collects diagnostics for one elaboration run. It is not
// goroutine-safe: elaboration is single-threaded by design.
type Sink struct {
	diags []Diagnostic
	hints []string
}

// NewSink creates an empty diagnostics sink.
func NewSink() *Sink {
	return &Sink{}
}

// PushHint pushes a hint onto the stack; every diagnostic recorded
// while it is active carries it. Callers must Pop on every exit
// path, including error paths.
func (s *Sink) PushHint(hint string) {
	s.hints = append(s.hints, hint)
}

// PopHint pops the most recently pushed hint.
func (s *Sink) PopHint() {
	if len(s.hints) == 0 {
		return
	}
	s.hints = s.hints[:len(s.hints)-1]
}

func (s *Sink) snapshotHints() []string {
	if len(s.hints) == 0 {
		return nil
	}
	out := make([]string, len(s.hints))
	copy(out, s.hints)
	return out
}

// Errorf records a continuable error diagnostic.
func (s *Sink) Errorf(loc string, format string, args ...interface{}) {
	s.diags = append(s.diags, Diagnostic{
		Severity: SeverityError,
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
		Hints:    s.snapshotHints(),
	})
}

// Warnf records a continuable warning diagnostic.
func (s *Sink) Warnf(loc string, format string, args ...interface{}) {
	s.diags = append(s.diags, Diagnostic{
		Severity: SeverityWarning,
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
		Hints:    s.snapshotHints(),
	})
}

// ErrorCount returns the number of error-severity diagnostics
// recorded so far. The recursor gates each phase on this count.
func (s *Sink) ErrorCount() int {
	n := 0
	for _, d := range s.diags {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error was recorded.
func (s *Sink) HasErrors() bool {
	return s.ErrorCount() > 0
}

// All returns every recorded diagnostic, errors before warnings,
// each group in recording order.
func (s *Sink) All() []Diagnostic {
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity > out[j].Severity // SeverityError(1) before SeverityWarning(0)
	})
	return out
}

// Fatalf raises a Fatal, to be recovered at a root driver boundary.
func Fatalf(loc string, format string, args ...interface{}) {
	panic(Fatal{Location: loc, Message: fmt.Sprintf(format, args...)})
}
