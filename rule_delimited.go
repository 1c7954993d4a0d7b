package peg

import "fmt"

// DelimitedBy matches Delim, a run of content up to the next
// unescaped occurrence of Delim, then Delim again, yielding the
// content with every Escape-prefixed rune kept as that rune alone (so
// Escape-Delim yields a literal Delim and Escape-Escape a literal
// Escape). It
// works at the rune level, honoring backslash-style escapes, the same
// way Balanced does for nested brackets — ported from
// original_source/pwpeg/helpers.py's DelimitedBy/AllBut pair, which
// together describe exactly this "everything but the delimiter,
// unless escaped" shape. Escape == 0 disables escape handling
// entirely (a bare "anything but Delim" run).
type DelimitedBy struct {
	Delim, Escape rune
	name          string
}

func NewDelimitedBy(name string, delim, escape rune) *DelimitedBy {
	return &DelimitedBy{Delim: delim, Escape: escape, name: name}
}

func (d *DelimitedBy) Name() string { return d.name }

func (d *DelimitedBy) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	traceEnter(ctx, d.name, c.Location())
	start := c.Location()

	head, ok := c.Current()
	if !ok || head != d.Delim {
		traceExit(ctx, false)
		return nil, NewParseError(fmt.Sprintf("expected delimiter %q", d.Delim), start)
	}
	advanceOne(c)

	var content []rune
	for {
		r, ok := c.Current()
		if !ok {
			c.RewindTo(start)
			traceExit(ctx, false)
			return nil, NewParseError(fmt.Sprintf("unterminated %q...%q", d.Delim, d.Delim), start)
		}
		if d.Escape != 0 && r == d.Escape {
			advanceOne(c)
			if next, ok := c.Current(); ok {
				content = append(content, next)
				advanceOne(c)
			}
			continue
		}
		if r == d.Delim {
			advanceOne(c)
			traceExit(ctx, true)
			return NewValueString(string(content), NewSpan(start, c.Location())), nil
		}
		content = append(content, r)
		advanceOne(c)
	}
}

// Separated matches Item, then between AtLeast-1 and AtMost-1 further
// repetitions of (Separator Item), collecting every Item's value and
// dropping the separators into a *ValueSequence. AtMost == Unbounded
// means no upper bound. Ported from original_source/pwpeg/helpers.py's
// RepeatingSeparated, generalized so the five spellings that file
// exposes (ZeroOrMoreSeparated, OneOrMoreSeparated, ExactlySeparated,
// RepetitionSeparated) are one shared implementation with different
// bounds.
func Separated(name string, item, separator Rule, atLeast, atMost int) Rule {
	if atMost == 0 {
		empty := NewSequence(name, nil)
		empty.Action = func(vs []Value, span Span) Value { return NewValueSequence(nil, span) }
		return empty
	}
	pair := NewSequence(name+"Pair", []Rule{separator, item})
	pair.Action = func(vs []Value, span Span) Value { return vs[1] }

	restMin := 0
	if atLeast > 0 {
		restMin = atLeast - 1
	}
	restMax := Unbounded
	if atMost != Unbounded {
		restMax = atMost - 1
	}
	rest := NewRepetition(name+"Rest", restMin, restMax, pair)

	head := NewSequence(name+"Head", []Rule{item, rest})
	head.Action = func(vs []Value, span Span) Value {
		more := vs[1].(*ValueSequence).Items
		items := make([]Value, 0, len(more)+1)
		items = append(items, vs[0])
		items = append(items, more...)
		return NewValueSequence(items, span)
	}

	if atLeast > 0 {
		return head
	}

	// An AtLeast of zero means the whole thing may match nothing; wrap
	// head as optional and turn a non-match into an empty sequence
	// rather than Absent, so callers can treat the result uniformly as
	// a list of items.
	wrapped := NewSequence(name, []Rule{NewOptional(name+"Opt", head)})
	wrapped.Action = func(vs []Value, span Span) Value {
		if IsAbsent(vs[0]) {
			return NewValueSequence(nil, span)
		}
		return vs[0]
	}
	return wrapped
}

// ZeroOrMoreSeparated matches Item (Separator Item)* zero or more
// times.
func ZeroOrMoreSeparated(name string, item, separator Rule) Rule {
	return Separated(name, item, separator, 0, Unbounded)
}

// OneOrMoreSeparated matches Item (Separator Item)* one or more times.
func OneOrMoreSeparated(name string, item, separator Rule) Rule {
	return Separated(name, item, separator, 1, Unbounded)
}

// ExactlySeparated matches exactly n Items separated by Separator.
func ExactlySeparated(name string, item, separator Rule, n int) Rule {
	return Separated(name, item, separator, n, n)
}

// RepetitionSeparated matches between atLeast and atMost Items
// separated by Separator.
func RepetitionSeparated(name string, item, separator Rule, atLeast, atMost int) Rule {
	return Separated(name, item, separator, atLeast, atMost)
}
