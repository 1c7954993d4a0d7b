package peg

// Rule is the tagged value every grammar element implements. A Rule
// advances a Cursor on success and leaves it untouched on failure —
// no partial state ever survives a failing parse (spec §3 invariant).
type Rule interface {
	// Name is a stable, human-readable label used only for
	// diagnostics (trace spans, error messages). It is never used
	// to identify the rule for equality or lookup.
	Name() string

	// eval attempts to match the rule at the cursor's current
	// position. On success it returns a Value and advances the
	// cursor by a non-negative amount. On failure it restores the
	// cursor to its entry position and returns a *ParseError.
	eval(ctx *evalCtx, c *Cursor) (Value, *ParseError)
}

// Environment maps rule names to the Rule they name, built once per
// grammar and read-only for the duration of every parse that uses it.
// It is what lets References and mutually recursive rules resolve
// without the rules owning pointers to each other (spec §9, "Recursive
// grammars without cycles-in-ownership").
type Environment map[string]Rule

// Bind installs a rule under a name, completing a forward reference.
// Redefining an already-bound name is a configuration error, matching
// the Grammar AST side rule that redefining an emitted rule name is an
// error.
func (e Environment) Bind(name string, r Rule) error {
	if _, exists := e[name]; exists {
		return newConfigError("rule %q redefined", name)
	}
	e[name] = r
	return nil
}

// Lookup resolves name against the environment, or returns a
// ConfigError if nothing was ever bound under it — an unresolved
// reference is a fatal configuration error, not a recoverable parse
// failure (spec §4.C "References").
func (e Environment) Lookup(name string) (Rule, *ConfigError) {
	r, ok := e[name]
	if !ok {
		return nil, newConfigError("unbound rule reference %q", name)
	}
	return r, nil
}

// evalCtx threads the grammar environment and the currently
// inherited skip rule through a single top-level parse. It is
// deliberately not part of the Rule values themselves: the same Rule
// tree can be evaluated under different inherited skips by different
// callers (e.g. a rule reused from two different parent sequences).
type evalCtx struct {
	env    Environment
	skip   Rule // nil means "no skip in effect"
	tracer *tracer
	values []Value // the enclosing Sequence's items collected so far, for SemanticPredicate
}

// withSkip returns a copy of ctx with a new inherited skip rule. A
// rule that declares its own skip overrides whatever was inherited
// while its own subrules are evaluated (spec §4.C "Skip discipline").
func (ctx *evalCtx) withSkip(skip Rule) *evalCtx {
	if skip == nil {
		return ctx
	}
	cp := *ctx
	cp.skip = skip
	return &cp
}

// withValues returns a copy of ctx carrying values as what a
// SemanticPredicate evaluated next in the same Sequence should see
// (spec §3 "SemanticPredicate(fn) — runs a host-language test over
// results so far").
func (ctx *evalCtx) withValues(values []Value) *evalCtx {
	cp := *ctx
	cp.values = values
	return &cp
}

// trySkip attempts to consume ctx.skip once, swallowing any failure
// (a skip that doesn't match simply consumes nothing).
func trySkip(ctx *evalCtx, c *Cursor) bool {
	if ctx.skip == nil {
		return false
	}
	start := c.Location()
	// The skip rule itself runs with no skip, or a skip that is a
	// Sequence or Repetition would try itself before its own items.
	noSkip := *ctx
	noSkip.skip = nil
	if _, err := ctx.skip.eval(&noSkip, c); err != nil {
		c.RewindTo(start)
		return false
	}
	return c.Location().Offset > start.Offset
}

func traceEnter(ctx *evalCtx, name string, at Location) {
	if ctx.tracer != nil {
		ctx.tracer.enter(name, at)
	}
}

func traceExit(ctx *evalCtx, ok bool) {
	if ctx.tracer != nil {
		ctx.tracer.exit(ok)
	}
}
