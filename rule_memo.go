package peg

// Memo evaluates Body exactly once; the value it captured from that
// first evaluation is then replayed as a literal match for every
// subsequent invocation. The meta-grammar uses this to lock the
// indentation prefix discovered on the first line of an indented
// action block so later lines must repeat that exact prefix (spec §3
// "Memo", §4.F "Indented block action").
//
// Memoisation here is deliberately scoped to a single Memo instance,
// not a full packrat table (spec §9 "Memoisation scope"): a fresh
// grammar assembly produces fresh Memo instances, so state never
// leaks across distinct top-level parses of the same compiled
// grammar object as long as each parse gets its own Environment (see
// Parser.Clone).
type Memo struct {
	Body    Rule
	name    string
	matched bool
	locked  string
}

func NewMemo(name string, body Rule) *Memo {
	return &Memo{Body: body, name: name}
}

func (m *Memo) Name() string { return m.name }

func (m *Memo) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	traceEnter(ctx, m.name, c.Location())
	if !m.matched {
		val, err := m.Body.eval(ctx, c)
		if err != nil {
			traceExit(ctx, false)
			return nil, err
		}
		m.matched = true
		m.locked = val.Text()
		traceExit(ctx, true)
		return val, nil
	}

	start := c.Location()
	if c.StartsWith(m.locked) {
		traceExit(ctx, true)
		return NewValueString(m.locked, NewSpan(start, c.Location())), nil
	}
	traceExit(ctx, false)
	return nil, NewParseError("expected to repeat locked value "+m.name, start)
}

// Reset clears the locked value, allowing the Memo to be reused for a
// fresh top-level parse without cloning the whole grammar.
func (m *Memo) Reset() {
	m.matched = false
	m.locked = ""
}
