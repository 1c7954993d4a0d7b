package peg

import "fmt"

// RepetitionAction post-processes the ordered sequence of inner
// results a Repetition collected.
type RepetitionAction func(items []Value, span Span) Value

// Unbounded is the sentinel Max value meaning "no upper bound".
const Unbounded = -1

// Repetition greedily matches Body between Min and Max times (Max ==
// Unbounded means infinity). It never backtracks into an iteration it
// already committed to: on the first failing iteration it rewinds
// only that iteration's partial progress and stops (spec §4.C
// "Repetition").
type Repetition struct {
	Min, Max int
	Body     Rule
	Skip     Rule
	Action   RepetitionAction
	name     string
}

func NewRepetition(name string, min, max int, body Rule) *Repetition {
	return &Repetition{Min: min, Max: max, Body: body, name: name}
}

func (r *Repetition) Name() string { return r.name }

func (r *Repetition) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	traceEnter(ctx, r.name, c.Location())
	childCtx := ctx.withSkip(r.Skip)
	start := c.Location()

	var items []Value
	count := 0
	for r.Max == Unbounded || count < r.Max {
		iterStart := c.Location()
		trySkip(childCtx, c)

		val, err := r.Body.eval(childCtx, c)
		if err != nil {
			c.RewindTo(iterStart)
			break
		}
		// A zero-width match would loop forever; stop (without
		// counting it) rather than spin, matching the "consecutive
		// non-empty" reading of the repetition property.
		if c.Location().Offset == iterStart.Offset {
			c.RewindTo(iterStart)
			break
		}
		items = append(items, val)
		count++
	}

	if count < r.Min {
		c.RewindTo(start)
		traceExit(ctx, false)
		return nil, NewParseError(fmt.Sprintf("expected at least %d matches of %s, got %d", r.Min, r.Body.Name(), count), start)
	}

	span := NewSpan(start, c.Location())
	traceExit(ctx, true)
	if r.Action != nil {
		return r.Action(items, span), nil
	}
	return NewValueSequence(items, span), nil
}

// Optional matches Body zero or one times. Unlike a bare
// Repetition(0, 1, body), it never produces a ValueSequence — it
// yields the inner value on a match or the Absent sentinel otherwise,
// so an action can tell "matched nothing" apart from "matched an
// empty sequence" (spec §3 "Optional").
type Optional struct {
	Body Rule
	name string
}

func NewOptional(name string, body Rule) *Optional {
	return &Optional{Body: body, name: name}
}

func (o *Optional) Name() string { return o.name }

func (o *Optional) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	traceEnter(ctx, o.name, c.Location())
	start := c.Location()
	val, err := o.Body.eval(ctx, c)
	if err != nil {
		c.RewindTo(start)
		traceExit(ctx, true)
		return NewAbsent(NewSpan(start, start)), nil
	}
	traceExit(ctx, true)
	return val, nil
}
