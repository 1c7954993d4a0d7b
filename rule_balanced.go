package peg

import "fmt"

// Balanced matches Open, then runs to the matching Close, honouring
// nesting and backslash-escapes, and yields the content strictly
// between the outer delimiters (spec §8 "Balanced('(',')') on
// '(a(b)c)' -> the matched parenthesised content, advance 7").
//
// It isn't one of the headline Rule variants in §3, but §8 tests it
// directly and §4.F's meta-grammar needs it for `balanced_paren` /
// `balanced_braces` (rule parameter lists, action and predicate code
// blocks, `$(...)` externals) — none of which are regular languages,
// so a plain Pattern can't express them.
type Balanced struct {
	Open, Close rune
	name        string
}

func NewBalanced(name string, open, close rune) *Balanced {
	return &Balanced{Open: open, Close: close, name: name}
}

func (b *Balanced) Name() string { return b.name }

func (b *Balanced) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	traceEnter(ctx, b.name, c.Location())
	start := c.Location()

	head, ok := c.Current()
	if !ok || head != b.Open {
		traceExit(ctx, false)
		return nil, NewParseError(fmt.Sprintf("expected %q", b.Open), start)
	}
	advanceOne(c)

	contentStart := c.Location()
	depth := 1
	for {
		r, ok := c.Current()
		if !ok {
			c.RewindTo(start)
			traceExit(ctx, false)
			return nil, NewParseError(fmt.Sprintf("unterminated %q...%q", b.Open, b.Close), start)
		}
		if r == '\\' {
			advanceOne(c)
			if _, ok := c.Current(); ok {
				advanceOne(c)
			}
			continue
		}
		contentEnd := c.Location()
		advanceOne(c)
		switch r {
		case b.Open:
			depth++
		case b.Close:
			depth--
			if depth == 0 {
				traceExit(ctx, true)
				text := string(c.input[contentStart.Offset:contentEnd.Offset])
				return NewValueString(text, NewSpan(start, c.Location())), nil
			}
		}
	}
}

// advanceOne steps the cursor forward by exactly one rune, keeping
// line/column bookkeeping consistent with Cursor.advance.
func advanceOne(c *Cursor) {
	r, ok := c.Current()
	if !ok {
		return
	}
	c.advance(string(r))
}
