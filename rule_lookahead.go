package peg

import "fmt"

// Lookahead attempts Body and always rewinds the cursor to its entry
// position — it never consumes input. Positive succeeds iff Body
// succeeds; negative is the complement. Both directions are
// implemented symmetrically with no hidden state, resolving the open
// question in spec §9 about the `And` variant some sources left
// referencing an undefined local.
type Lookahead struct {
	Body     Rule
	Positive bool
	name     string
}

func NewLookahead(name string, body Rule, positive bool) *Lookahead {
	return &Lookahead{Body: body, Positive: positive, name: name}
}

func (l *Lookahead) Name() string { return l.name }

func (l *Lookahead) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	traceEnter(ctx, l.name, c.Location())
	start := c.Location()
	_, err := l.Body.eval(ctx, c)
	c.RewindTo(start)

	if l.Positive {
		if err != nil {
			traceExit(ctx, false)
			return nil, NewParseError(fmt.Sprintf("lookahead failed (positive): %s", l.Body.Name()), start)
		}
		traceExit(ctx, true)
		return newIgnored(NewSpan(start, start)), nil
	}

	if err == nil {
		traceExit(ctx, false)
		return nil, NewParseError(fmt.Sprintf("lookahead matched (negative): %s", l.Body.Name()), start)
	}
	traceExit(ctx, true)
	return newIgnored(NewSpan(start, start)), nil
}

// SemanticPredicateFn is a host-language test run over the results a
// Sequence has collected so far. It succeeds iff it returns true; it
// never consumes input.
type SemanticPredicateFn func(values []Value) bool

// SemanticPredicate wraps a host test as a zero-width rule. It is
// called with the enclosing Sequence's collected results so far (the
// same values an Action would receive), so it can inspect them; the
// engine never interprets the callback's body itself, only threads
// the accumulator through (spec §3, §4.C).
type SemanticPredicate struct {
	Test SemanticPredicateFn
	name string
}

func NewSemanticPredicate(name string, test SemanticPredicateFn) *SemanticPredicate {
	return &SemanticPredicate{Test: test, name: name}
}

func (p *SemanticPredicate) Name() string { return p.name }

func (p *SemanticPredicate) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	traceEnter(ctx, p.name, c.Location())
	start := c.Location()
	if p.Test(ctx.values) {
		traceExit(ctx, true)
		return newIgnored(NewSpan(start, start)), nil
	}
	traceExit(ctx, false)
	return nil, NewParseError(fmt.Sprintf("predicate not satisfied: %s", p.name), start)
}
