package peg

import "fmt"

// RuleFactory materialises a concrete Rule for one argument tuple.
// It is invoked at most once per distinct tuple (ParamRule caches the
// result), which is what lets a parametrised rule's body reference
// its own formal parameters via closures supplied by the factory's
// caller.
type RuleFactory func(args []Value) Rule

// ParamRule is a grammar-level factory, not itself a plain rule: the
// spec (§9 "Parametrised rules vs. plain rules") is explicit that the
// factory and the rule it produces are two different kinds sharing
// only the "callable as grammar element" trait — modelled here by
// ParamRule still implementing Rule (so it can sit in a Sequence/
// Choice like any other item) while keeping its own Instantiate as
// the one place argument tuples turn into concrete sub-rules.
type ParamRule struct {
	Factory RuleFactory
	Action  SequenceAction
	name    string

	cache map[string]Rule
}

func NewParamRule(name string, factory RuleFactory) *ParamRule {
	return &ParamRule{Factory: factory, name: name, cache: map[string]Rule{}}
}

func (p *ParamRule) Name() string { return p.name }

// Instantiate materialises (or reuses, from cache, keyed by key) the
// concrete rule for one call site's argument tuple.
func (p *ParamRule) Instantiate(key string, args []Value) Rule {
	if cached, ok := p.cache[key]; ok {
		return cached
	}
	concrete := p.Factory(args)
	p.cache[key] = concrete
	return concrete
}

func (p *ParamRule) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	panic(newConfigError("parametrised rule %q used directly instead of through a call site", p.name))
}

// ParamRuleCall is the concrete, per-call-site rule a grammar actually
// parses: "foo(bar)" becomes a ParamRuleCall wrapping the Factory's
// cached instantiation, with the ParamRule's Action (if any) wrapping
// the cached rule's result (spec §4.C "ParamRule").
type ParamRuleCall struct {
	Param *ParamRule
	Key   string
	Args  []Value
	name  string
}

func NewParamRuleCall(param *ParamRule, key string, args []Value) *ParamRuleCall {
	return &ParamRuleCall{
		Param: param,
		Key:   key,
		Args:  args,
		name:  fmt.Sprintf("%s(%s)", param.name, key),
	}
}

func (c *ParamRuleCall) Name() string { return c.name }

func (pc *ParamRuleCall) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	traceEnter(ctx, pc.name, c.Location())
	concrete := pc.Param.Instantiate(pc.Key, pc.Args)
	val, err := concrete.eval(ctx, c)
	if err != nil {
		traceExit(ctx, false)
		return nil, err
	}
	traceExit(ctx, true)
	if pc.Param.Action != nil {
		if seq, ok := val.(*ValueSequence); ok {
			return pc.Param.Action(seq.Items, seq.Span()), nil
		}
		return pc.Param.Action([]Value{val}, val.Span()), nil
	}
	return val, nil
}
