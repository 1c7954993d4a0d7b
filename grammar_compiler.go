package peg

import (
	"fmt"
	"strings"
)

// Emitter turns a parsed Grammar AST into target-language source
// text. Each target (Go, Python, ...) implements this by walking the
// AST with its own type switches over the node types (spec §4.G).
type Emitter interface {
	Emit(file *File) (string, error)
}

// Compiler is the external entry point that turns PEG grammar source
// into either emitted target-language text (Compile) or a live,
// directly runnable Environment (BuildRules) — spec §6's two
// grammar-consuming interfaces, §4.F/§4.G for how each is produced.
type Compiler struct {
	meta *MetaGrammar
	cfg  Config
}

// NewCompiler builds a Compiler with its own private meta-grammar
// instance and DefaultConfig(); it is safe for concurrent use once
// constructed, since the meta-grammar's Environment is read-only after
// NewMetaGrammar returns.
func NewCompiler() *Compiler {
	return NewCompilerWithConfig(DefaultConfig())
}

// NewCompilerWithConfig builds a Compiler whose grammar-parsing,
// rule-building and error-reporting behavior is driven by cfg (spec
// SPEC_FULL §4.H) instead of the zero-config defaults.
func NewCompilerWithConfig(cfg Config) *Compiler {
	return &Compiler{meta: NewMetaGrammar(), cfg: cfg}
}

// Parse runs the meta-grammar over source and returns the resulting
// Grammar AST root. A malformed file that the meta-grammar can't even
// recover an ErrorNode from (e.g. input matching none of File's
// choices) reports its error position subject to
// cfg.Compiler.FurthestFailureReporting, same as any other Parse call.
func (c *Compiler) Parse(source string) (*File, error) {
	p := c.meta.Parser()
	p.SetFurthestFailureReporting(c.cfg.Compiler.FurthestFailureReporting)
	val, err := p.Parse(source)
	if err != nil {
		return nil, err
	}
	nv, ok := val.(nodeValue)
	if !ok {
		return nil, fmt.Errorf("peg: meta-grammar produced %T, expected a Grammar AST node", val)
	}
	file, ok := nv.n.(*File)
	if !ok {
		return nil, fmt.Errorf("peg: meta-grammar produced %T, expected *File", nv.n)
	}
	return file, nil
}

// Compile parses source and hands the resulting AST to emit. It
// refuses to emit a grammar that contains any malformed declaration
// (spec §3's ErrorNode) — those are reported together rather than
// silently skipped.
func (c *Compiler) Compile(source string, emit Emitter) (string, error) {
	file, err := c.Parse(source)
	if err != nil {
		return "", err
	}
	if errs := file.Errors(); len(errs) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "grammar has %d malformed declaration(s):\n", len(errs))
		for _, e := range errs {
			fmt.Fprintf(&b, "  line %d, column %d: %s\n", e.Span().Start.Line, e.Span().Start.Column, e.Message)
		}
		return "", fmt.Errorf("%s", b.String())
	}
	return emit.Emit(file)
}

// BuildRules assembles a live Environment directly from a parsed
// Grammar AST, without a code generation round trip — the interface
// SPEC_FULL §6 adds so the REPL (and tests) can try a grammar
// immediately. The engine itself fully supports a SemanticPredicate
// that inspects the enclosing Sequence's accumulated values (see
// SemanticPredicate.eval); what BuildRules specifically can't do is
// interpret the literal Go snippet a grammar's `&{code}` predicate
// carries as source text, since that would require compiling and
// running arbitrary host code at grammar-build time. So every
// Predicate built here always succeeds, and every group produces the
// engine's default Sequence/Choice/Repetition shape rather than
// whatever the grammar's own ActionCode would have built once
// compiled and run as a real program. This is enough to exercise a
// grammar's recognition shape interactively; running its exact
// emitted semantics still requires Compile plus the emitted program.
func (c *Compiler) BuildRules(file *File) (Environment, error) {
	if errs := file.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("grammar has %d malformed declaration(s), first: %s", len(errs), errs[0].Message)
	}

	b := &ruleBuilder{env: Environment{}, arity: map[string]int{}, handleSpaces: c.cfg.Grammar.HandleSpaces}
	for _, d := range file.Decls {
		if decl, ok := d.(*RuleDecl); ok && decl.IsParametrised() {
			b.arity[decl.Name] = len(decl.Params)
		}
	}
	if c.cfg.Grammar.AddBuiltins {
		b.spliceBuiltins()
	}

	var buildErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if cfgErr, ok := r.(*ConfigError); ok {
					buildErr = cfgErr
					return
				}
				panic(r)
			}
		}()
		for _, d := range file.Decls {
			decl, ok := d.(*RuleDecl)
			if !ok {
				continue
			}
			if err := b.declareRule(decl); err != nil {
				buildErr = err
				return
			}
		}
	}()
	if buildErr != nil {
		return nil, buildErr
	}
	return b.env, nil
}

// ruleBuilder walks a Grammar AST once, turning every RuleDecl into a
// Rule bound in env. Parametrised-rule arguments are resolved lazily
// (through the Environment at eval time, exactly like a plain
// Reference) so declaration order never matters, matching the
// engine's own "no cycles in ownership" design (spec §9).
type ruleBuilder struct {
	env          Environment
	arity        map[string]int // rule name -> parameter count, parametrised rules only
	handleSpaces bool           // Config.Grammar.HandleSpaces
	builtins     map[string]bool
}

// spliceBuiltins binds the builtin rules Config.Grammar.AddBuiltins
// promises (spec SPEC_FULL §4.H: "EOF, Letter, Digit, Space") directly
// into env, before any user declaration is processed, so a grammar can
// reference them by plain RuleCall without declaring them itself. They
// are bound outside declareRule's normal Bind path (which rejects
// redefinition) so a grammar that *does* declare a rule of the same
// name silently shadows the builtin instead of erroring — the builtin
// is a convenience default, not a reservation.
func (b *ruleBuilder) spliceBuiltins() {
	b.builtins = map[string]bool{}
	for name, rule := range map[string]Rule{
		"EOF":    NewLookahead("EOF", NewPattern0(`(?s:.)`), false),
		"Letter": NewPattern0(`[a-zA-Z]`),
		"Digit":  NewPattern0(`[0-9]`),
		"Space":  NewPattern0(`[ \t\r\n]`),
	} {
		b.env[name] = rule
		b.builtins[name] = true
	}
}

// bindRule installs rule under name, allowing it to silently replace a
// builtin spliced in by spliceBuiltins but still rejecting a genuine
// redefinition of a user-declared rule (spec §9 "redefining an
// emitted rule name is an error").
func (b *ruleBuilder) bindRule(name string, rule Rule) error {
	if b.builtins[name] {
		delete(b.builtins, name)
		b.env[name] = rule
		return nil
	}
	return b.env.Bind(name, rule)
}

// defaultSpacesSkip builds the whitespace-and-comment skip rule
// Config.Grammar.HandleSpaces splices onto a rule declared without its
// own explicit `skip` clause (spec SPEC_FULL §4.H), grounded on
// metagrammar.go's own `Spacing` rule.
func defaultSpacesSkip(label string) Rule {
	return NewRepetition(label+"Skip", 0, Unbounded, NewChoice(label+"SkipItem", []Rule{
		NewPattern0(`[ \t\r\n]+`),
		NewSequence(label+"Comment", []Rule{NewLiteral("#"), NewPattern0(`[^\n]*`)}),
	}))
}

func (b *ruleBuilder) declareRule(decl *RuleDecl) error {
	var skip Rule
	switch {
	case decl.Skip != nil:
		body := b.buildItem(decl.Skip, nil, nil, decl.Name+"Skip")
		skip = NewRepetition(decl.Name+"Skip", 0, Unbounded, body)
	case b.handleSpaces:
		skip = defaultSpacesSkip(decl.Name)
	}

	if !decl.IsParametrised() {
		rule := b.buildChoices(decl.Choices, nil, skip, decl.Name)
		return b.bindRule(decl.Name, rule)
	}

	params := decl.Params
	choices := decl.Choices
	name := decl.Name
	factory := func(args []Value) Rule {
		if len(args) != len(params) {
			panic(newConfigError("rule %q instantiated with %d args, wants %d", name, len(args), len(params)))
		}
		scope := make(map[string]Rule, len(params))
		for i, p := range params {
			argName := args[i].Text()
			r, cfgErr := b.env.Lookup(argName)
			if cfgErr != nil {
				panic(newConfigError("rule %q argument %d (%q): %s", name, i, argName, cfgErr.Message))
			}
			scope[p] = r
		}
		return b.buildChoices(choices, scope, skip, name)
	}
	return b.bindRule(decl.Name, NewParamRule(decl.Name, factory))
}

func (b *ruleBuilder) buildChoices(pc *ProductionChoices, scope map[string]Rule, skip Rule, label string) Rule {
	items := make([]Rule, len(pc.Groups))
	for i, g := range pc.Groups {
		items[i] = b.buildGroup(g, scope, skip, fmt.Sprintf("%s#%d", label, i))
	}
	if len(items) == 1 {
		return items[0]
	}
	return NewChoice(label, items)
}

func (b *ruleBuilder) buildGroup(g *ProductionGroup, scope map[string]Rule, skip Rule, label string) Rule {
	items := make([]Rule, len(g.Items))
	for i, it := range g.Items {
		items[i] = b.buildItem(it, scope, skip, label)
	}
	seq := NewSequence(label, items)
	seq.Skip = skip
	return seq
}

func (b *ruleBuilder) buildItem(n Node, scope map[string]Rule, skip Rule, label string) Rule {
	switch v := n.(type) {
	case *Production:
		body := b.buildExpr(v.Expr, scope, skip, label)
		return b.applyRep(body, v.Rep, skip, label)
	case *LookAhead:
		prodRule := b.buildItem(v.Prod, scope, skip, label)
		return NewLookahead(label+"!", prodRule, v.Positive)
	case *Predicate:
		// A grammar's &{code} predicate carries its test as opaque host
		// source text (see BuildRules's doc comment); BuildRules has no
		// interpreter for it, so it always succeeds here. SemanticPredicate
		// itself does receive real accumulated values (rule_sequence.go,
		// rule_lookahead.go) — this stub is scoped to compiled-grammar
		// predicates only, not a limitation of the engine.
		return NewSemanticPredicate(label+"&", func([]Value) bool { return true })
	default:
		panic(newConfigError("unexpected group item %T", n))
	}
}

func (b *ruleBuilder) applyRep(body Rule, rep *RepSpec, skip Rule, label string) Rule {
	if rep == nil {
		return body
	}
	switch rep.Kind {
	case RepStar:
		r := NewRepetition(label+"*", 0, Unbounded, body)
		r.Skip = skip
		return r
	case RepPlus:
		r := NewRepetition(label+"+", 1, Unbounded, body)
		r.Skip = skip
		return r
	case RepOptional:
		return NewOptional(label+"?", body)
	case RepExact:
		r := NewRepetition(label+"<n>", rep.Min, rep.Max, body)
		r.Skip = skip
		return r
	case RepBounds:
		lo, hi := rep.Min, rep.Max
		if lo < 0 {
			lo = 0
		}
		if hi < 0 {
			hi = Unbounded
		}
		r := NewRepetition(label+"<a,b>", lo, hi, body)
		r.Skip = skip
		return r
	default:
		return body
	}
}

func (b *ruleBuilder) buildExpr(n Node, scope map[string]Rule, skip Rule, label string) Rule {
	switch v := n.(type) {
	case *LiteralExpr:
		return NewLiteral(v.Value)
	case *PatternExpr:
		expr := v.Expr
		if flags := inlineReFlags(v.Flags); flags != "" {
			expr = "(?" + flags + ")" + expr
		}
		p, err := NewPattern(expr)
		if err != nil {
			panic(newConfigError("invalid pattern /%s/%s: %s", v.Expr, v.Flags, err))
		}
		return p
	case *RuleCall:
		return b.buildRuleCall(v, scope)
	case *GroupNode:
		return b.buildChoices(v.Choices, scope, skip, label+"/")
	case *ExternalExpr:
		return b.buildExternal(v)
	default:
		panic(newConfigError("unexpected atom %T", n))
	}
}

func (b *ruleBuilder) buildRuleCall(rc *RuleCall, scope map[string]Rule) Rule {
	if scope != nil {
		if r, ok := scope[rc.Name]; ok {
			return r
		}
	}
	if arity, isParam := b.arity[rc.Name]; isParam {
		if len(rc.Args) != arity {
			panic(newConfigError("rule %q called with %d args, wants %d", rc.Name, len(rc.Args), arity))
		}
		args := make([]Value, len(rc.Args))
		keyParts := make([]string, len(rc.Args))
		for i, a := range rc.Args {
			args[i] = nodeToArgValue(a)
			keyParts[i] = args[i].Text()
		}
		return &lazyParamCall{name: rc.Name, args: args, key: strings.Join(keyParts, ",")}
	}
	return NewReference(rc.Name)
}

func (b *ruleBuilder) buildExternal(e *ExternalExpr) Rule {
	if e.Code != "" {
		panic(newConfigError("external $(...) code cannot be interpreted without code generation: %q", e.Code))
	}
	switch e.Name {
	case "EOF":
		return NewLookahead("EOF", NewPattern0(`(?s:.)`), false)
	default:
		panic(newConfigError("unknown external rule $%s ($EOF is the only one BuildRules resolves)", e.Name))
	}
}

// lazyParamCall defers resolving a parametrised-rule call site to
// first eval, exactly like a plain Reference, so a call to a rule
// declared later in the same file builds without error (spec §9
// "Recursive grammars without cycles-in-ownership" applies equally to
// parametrised rules).
type lazyParamCall struct {
	name string
	args []Value
	key  string
}

func (l *lazyParamCall) Name() string { return fmt.Sprintf("%s(%s)", l.name, l.key) }

func (l *lazyParamCall) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	target, cfgErr := ctx.env.Lookup(l.name)
	if cfgErr != nil {
		panic(cfgErr)
	}
	pr, ok := target.(*ParamRule)
	if !ok {
		panic(newConfigError("rule %q is not parametrised", l.name))
	}
	return (&ParamRuleCall{Param: pr, Key: l.key, Args: l.args, name: l.Name()}).eval(ctx, c)
}

// nodeToArgValue turns a parametrised rule-call argument expression
// into the Value a RuleFactory receives. Arguments are themselves
// rule-name references (e.g. `list(Digit)`), so the text is all a
// factory needs to resolve the actual substituted rule.
func nodeToArgValue(n Node) Value {
	if lit, ok := n.(*LiteralExpr); ok {
		return NewValueString(lit.Value, lit.Span())
	}
	return NewValueString(n.String(), n.Span())
}

// inlineReFlags filters a PEG pattern's flag letters down to the ones
// Go's RE2 engine accepts as an inline `(?flags)` group.
func inlineReFlags(flags string) string {
	var b strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's', 'U':
			b.WriteRune(f)
		}
	}
	return b.String()
}
