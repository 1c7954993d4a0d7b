package peg

import "fmt"

// Parser is the public entry point for running a compiled grammar
// against input text (spec §6 "Public engine API").
type Parser struct {
	top                      Rule
	env                      Environment
	trace                    bool
	sessionID                string
	furthestFailureReporting bool
}

// NewParser builds a Parser that runs topRule against an environment
// containing every named rule it (transitively) references. Furthest-
// failure reporting defaults on, matching DefaultConfig's
// Compiler.FurthestFailureReporting.
func NewParser(topRule Rule, env Environment) *Parser {
	return &Parser{top: topRule, env: env, sessionID: NewSessionID(), furthestFailureReporting: true}
}

// EnableTrace turns on structured per-rule tracing for every
// subsequent Parse/PartialParse call made by this Parser.
func (p *Parser) EnableTrace(enabled bool) { p.trace = enabled }

// SetFurthestFailureReporting controls whether a failed Parse/
// PartialParse reports the deepest position reached across every
// tried alternative (ParseError.Deepest, spec §4.D) or the literal
// top-level error Choice/Sequence raised. Config.Compiler's
// FurthestFailureReporting field (spec SPEC_FULL §4.H) drives this for
// pegc's own compiler and REPL.
func (p *Parser) SetFurthestFailureReporting(enabled bool) { p.furthestFailureReporting = enabled }

// Parse succeeds iff the entire input is consumed, returning the top
// rule's value. Any *ConfigError raised while resolving a Reference
// or evaluating an action is never mistaken for a recoverable parse
// failure: it's propagated as a distinct error type straight out of
// Parse (spec §7 "Grammar configuration error").
func (p *Parser) Parse(text string) (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if cfgErr, ok := r.(*ConfigError); ok {
				err = cfgErr
				return
			}
			panic(r)
		}
	}()

	c := NewCursor(text)
	ctx := p.newCtx()

	val, perr := p.top.eval(ctx, c)
	if perr != nil {
		return nil, p.reportedError(perr)
	}
	if c.HasNext() {
		return nil, &NotFullyConsumedError{At: c.Location(), Tail: c.Remainder()}
	}
	return val, nil
}

// reportedError applies furthestFailureReporting to a raw ParseError.
func (p *Parser) reportedError(perr *ParseError) error {
	if p.furthestFailureReporting {
		return perr.Deepest()
	}
	return perr
}

// PartialParse matches as much of the top rule as it can and returns
// both the number of runes consumed and the resulting value, without
// requiring the whole input to be consumed.
func (p *Parser) PartialParse(text string) (advance int, result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if cfgErr, ok := r.(*ConfigError); ok {
				err = cfgErr
				return
			}
			panic(r)
		}
	}()

	c := NewCursor(text)
	ctx := p.newCtx()

	val, perr := p.top.eval(ctx, c)
	if perr != nil {
		return 0, nil, p.reportedError(perr)
	}
	return c.Location().Offset, val, nil
}

func (p *Parser) newCtx() *evalCtx {
	var tr *tracer
	if p.trace {
		tr = newTracer(p.sessionID)
	}
	return &evalCtx{env: p.env, tracer: tr}
}

// Clone returns a Parser over a fresh copy of the environment in which
// every Memo or ParamRule bound directly in the environment, and the
// top rule if it is one, is replaced by a fresh instance (spec §5
// "Shared state"). Memo and ParamRule instances nested inside other
// rules are not replaced and stay shared with the original Parser.
func (p *Parser) Clone() *Parser {
	cloned := make(Environment, len(p.env))
	for name, r := range p.env {
		cloned[name] = resetRule(r)
	}
	np := NewParser(resetRule(p.top), cloned)
	np.trace = p.trace
	np.furthestFailureReporting = p.furthestFailureReporting
	return np
}

// resetRule returns a rule equivalent to r but with any Memo state
// cleared and ParamRule caches emptied; structural rules are left
// untouched (they hold no per-parse state of their own).
func resetRule(r Rule) Rule {
	switch v := r.(type) {
	case *Memo:
		fresh := NewMemo(v.name, v.Body)
		return fresh
	case *ParamRule:
		fresh := NewParamRule(v.name, v.Factory)
		fresh.Action = v.Action
		return fresh
	default:
		return r
	}
}

func (p *Parser) String() string {
	return fmt.Sprintf("Parser(top=%s, rules=%d)", p.top.Name(), len(p.env))
}
