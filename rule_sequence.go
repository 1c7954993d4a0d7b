package peg

// SequenceAction receives the Sequence's collected, non-ignored
// values positionally and produces the value that replaces the
// would-be tuple. It may panic to signal a programmer error — such a
// failure is not recoverable by ordered choice (spec §4.C "Actions").
type SequenceAction func(values []Value, span Span) Value

// Sequence matches each sub-rule in order. Before every subrule, the
// first included, it optionally consumes whatever the skip rule
// matches; Skip, if set, overrides
// any skip inherited from an enclosing rule for the duration of this
// sequence's own subrules.
type Sequence struct {
	Items  []Rule
	Skip   Rule
	Action SequenceAction
	name   string
}

func NewSequence(name string, items []Rule) *Sequence {
	return &Sequence{Items: items, name: name}
}

func (s *Sequence) Name() string { return s.name }

func (s *Sequence) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	traceEnter(ctx, s.name, c.Location())
	childCtx := ctx.withSkip(s.Skip)
	start := c.Location()

	var collected []Value
	for i, sub := range s.Items {
		skipStart := c.Location()
		didSkip := trySkip(childCtx, c)
		posAfterSkip := c.Location()

		val, err := sub.eval(childCtx.withValues(collected), c)
		if err != nil {
			c.RewindTo(start)
			traceExit(ctx, false)
			return nil, err
		}

		// A trailing skip that was immediately followed by a
		// zero-width final subrule must not be attributed to this
		// sequence's span (spec §4.C).
		if i == len(s.Items)-1 && didSkip && c.Location().Offset == posAfterSkip.Offset {
			c.RewindTo(skipStart)
		}

		if !isIgnored(val) {
			collected = append(collected, val)
		}
	}

	span := NewSpan(start, c.Location())
	traceExit(ctx, true)

	if s.Action != nil {
		return s.Action(collected, span), nil
	}
	if len(collected) == 1 {
		return collected[0], nil
	}
	return NewValueSequence(collected, span), nil
}
