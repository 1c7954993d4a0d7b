package peg

import (
	"fmt"
	"regexp"
)

// Literal matches an exact string.
type Literal struct {
	Value string
	name  string
}

// NewLiteral builds a Literal rule matching s verbatim.
func NewLiteral(s string) *Literal {
	return &Literal{Value: s, name: fmt.Sprintf("%q", s)}
}

func (l *Literal) Name() string { return l.name }

func (l *Literal) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	traceEnter(ctx, l.name, c.Location())
	start := c.Location()
	if c.StartsWith(l.Value) {
		traceExit(ctx, true)
		return NewValueString(l.Value, NewSpan(start, c.Location())), nil
	}
	traceExit(ctx, false)
	got := "EOF"
	if r, ok := c.Current(); ok {
		got = string(r)
	}
	return nil, NewParseError(fmt.Sprintf("expected %q, got %q", l.Value, got), start)
}

// Pattern matches a compiled regular expression anchored at the
// current offset.
type Pattern struct {
	Re   *regexp.Regexp
	name string
}

// NewPattern builds a Pattern rule from a regular expression. The
// expression is automatically anchored with `\A` so FindStringIndex
// only ever reports a match that starts at offset 0 of the remaining
// input, matching the spec's "anchored at the current offset".
func NewPattern(expr string) (*Pattern, error) {
	re, err := regexp.Compile(`\A(?:` + expr + `)`)
	if err != nil {
		return nil, err
	}
	return &Pattern{Re: re, name: "/" + expr + "/"}, nil
}

func (p *Pattern) Name() string { return p.name }

func (p *Pattern) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	traceEnter(ctx, p.name, c.Location())
	start := c.Location()
	if matched, ok := c.Match(p.Re); ok {
		traceExit(ctx, true)
		return NewValueString(matched, NewSpan(start, c.Location())), nil
	}
	traceExit(ctx, false)
	return nil, NewParseError(fmt.Sprintf("expected pattern %s", p.name), start)
}
