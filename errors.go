package peg

import (
	"fmt"
	"strings"
)

// ParseError is the structured failure value every Rule produces on
// no-match. It carries the deepest position reached while trying to
// satisfy the rule (and, for Choice, the per-alternative sub-causes
// that led there) so a caller can report both "what finally failed"
// and "what else was tried".
type ParseError struct {
	Message string
	At      Location
	Causes  []*ParseError
}

func NewParseError(message string, at Location) *ParseError {
	return &ParseError{Message: message, At: at}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s @ %s", e.Message, e.At)
}

// Deepest returns the sub-cause (possibly e itself) whose position is
// furthest into the input, implementing the "deepest point reached
// across all tried alternatives" reporting rule (spec §4.D).
func (e *ParseError) Deepest() *ParseError {
	deepest := e
	for _, c := range e.Causes {
		if d := c.Deepest(); d.At.Offset > deepest.At.Offset {
			deepest = d
		}
	}
	return deepest
}

// Report renders the CLI-facing "Line L, column C: <message>" header
// followed by recursively indented sub-causes (spec §6, §7).
func (e *ParseError) Report() string {
	var b strings.Builder
	e.report(&b, 0)
	return b.String()
}

func (e *ParseError) report(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(b, "Line %d, column %d: %s\n", e.At.Line, e.At.Column, e.Message)
	for _, c := range e.Causes {
		c.report(b, depth+1)
	}
}

// ConfigError signals a programmer error in how a grammar was
// assembled (unbound reference, redefined rule, empty rule body,
// variadic-keyword action) rather than a user-visible parse failure.
// It is never produced by ordered choice and never swallowed by it —
// it always propagates straight to the top of parse (spec §7).
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return "grammar configuration error: " + e.Message }

func newConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// NotFullyConsumedError is raised only by the top-level Parser.Parse
// when the whole input wasn't consumed.
type NotFullyConsumedError struct {
	At   Location
	Tail string
}

func (e *NotFullyConsumedError) Error() string {
	tail := e.Tail
	const maxTail = 40
	if len(tail) > maxTail {
		tail = tail[:maxTail] + "..."
	}
	return fmt.Sprintf("Line %d, column %d: input not fully consumed, remaining: %q", e.At.Line, e.At.Column, tail)
}

// allFailed builds the "All alternatives failed" composite error a
// Choice raises when none of its sub-rules match.
func allFailed(at Location, causes []*ParseError) *ParseError {
	return &ParseError{Message: "all alternatives failed", At: at, Causes: causes}
}
