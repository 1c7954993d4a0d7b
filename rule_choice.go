package peg

// ChoiceAction post-processes whichever alternative matched.
type ChoiceAction func(value Value) Value

// Choice tries its alternatives strictly in order and returns the
// value of the first to succeed. If none succeed it fails with a
// composite error whose Causes are the per-alternative errors (spec
// §4.C "Ordered choice").
type Choice struct {
	Items  []Rule
	Action ChoiceAction
	name   string
}

func NewChoice(name string, items []Rule) *Choice {
	return &Choice{Items: items, name: name}
}

func (ch *Choice) Name() string { return ch.name }

func (ch *Choice) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	traceEnter(ctx, ch.name, c.Location())
	start := c.Location()
	var causes []*ParseError

	for _, alt := range ch.Items {
		val, err := alt.eval(ctx, c)
		if err == nil {
			traceExit(ctx, true)
			if ch.Action != nil {
				return ch.Action(val), nil
			}
			return val, nil
		}
		c.RewindTo(start)
		causes = append(causes, err)
	}

	traceExit(ctx, false)
	return nil, allFailed(start, causes)
}
