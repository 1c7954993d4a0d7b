package peg

import (
	"fmt"
	"strconv"
	"strings"
)

// MetaGrammar is the PEG-of-PEG: it recognises the concrete syntax of
// spec §4.F using nothing but this package's own Rule combinators,
// the same way the teacher's grammar_parser.go is itself a hand
// written recursive-descent parser for the same family of grammars.
// Every production below mirrors one EBNF line from §4.F.
type MetaGrammar struct {
	env Environment
	top Rule
}

// NewMetaGrammar assembles the meta-grammar once; it is safe to reuse
// across many Parse calls (spec §5 "the grammar environment... is
// built once and then read-only").
func NewMetaGrammar() *MetaGrammar {
	env := Environment{}

	lexSkip := NewRepetition("Spacing", 0, Unbounded, NewChoice("SpacingItem", []Rule{
		NewPattern0(`[ \t\r\n]+`),
		NewSequence("Comment", []Rule{NewLiteral("#"), NewPattern0(`[^\n]*`)}),
	}))
	_ = env.Bind("Spacing", lexSkip)

	ident := NewPattern0(`[a-zA-Z_][a-zA-Z0-9_]*`)
	_ = env.Bind("Ident", ident)

	// string := "'..." | '"..."' | '\' run-of-non-special
	stringLit := NewChoice("StringLit", []Rule{
		NewPattern0(`'(?:\\.|[^'\\])*'`),
		NewPattern0(`"(?:\\.|[^"\\])*"`),
		NewPattern0(`\\[^\s'"/]+`),
	})
	_ = env.Bind("StringLit", stringLit)

	// regexp := '/' ... '/' flags?
	regexLit := NewPattern0(`/(?:\\.|[^/\\\n])*/[a-zA-Z]*`)
	_ = env.Bind("RegexLit", regexLit)

	balancedParen := NewBalanced("BalancedParen", '(', ')')
	balancedBrace := NewBalanced("BalancedBrace", '{', '}')
	_ = env.Bind("BalancedParen", balancedParen)
	_ = env.Bind("BalancedBrace", balancedBrace)

	// rep := '*' | '+' | '?' | '<' num '>' | '<' num? ',' num? '>'
	repSuffix := newRepSuffixRule()
	_ = env.Bind("Rep", repSuffix)

	choicesRef := NewReference("Choices")

	// atom := regexp | string | rule_call | external | '[' choices ']'
	ruleCall := newRuleCallRule()
	external := newExternalRule()
	groupNode := NewSequence("GroupNode", []Rule{
		NewLiteral("["), choicesRef, NewLiteral("]"),
	})
	groupNode.Skip = lexSkip
	groupNode.Action = func(vs []Value, span Span) Value {
		choices := vs[1].(nodeValue).n.(*ProductionChoices)
		return wrapNode(NewGroupNode(choices, true, span))
	}

	atom := NewChoice("Atom", []Rule{
		mapToNode(regexLit, func(text string, span Span) Node {
			body, flags := splitRegexLit(text)
			return NewPatternExpr(body, flags, span)
		}),
		mapToNode(stringLit, func(text string, span Span) Node {
			return NewLiteralExpr(unquoteLit(text), span)
		}),
		ruleCall,
		external,
		groupNode,
	})
	_ = env.Bind("Atom", atom)

	// label := ident ':'
	// production := label? !rule_decl atom rep?
	ruleDeclLookalike := NewSequence("RuleDeclLookalike", []Rule{
		ident,
		NewOptional("ParamsOpt", wrapParens(balancedParen)),
		lexSkip,
		NewLiteral("="),
	})

	production := NewSequence("Production", []Rule{
		NewOptional("LabelOpt", NewSequence("Label", []Rule{ident, NewLiteral(":")})),
		NewLookahead("NotRuleDecl", ruleDeclLookalike, false),
		atom,
		NewOptional("RepOpt", repSuffix),
	})
	production.Skip = lexSkip
	production.Action = func(vs []Value, span Span) Value {
		label := ""
		if v, ok := vs[0].(*ValueSequence); ok && len(v.Items) > 0 {
			label = v.Items[0].Text()
		}
		expr := vs[1].(nodeValue).n
		var rep *RepSpec
		if rv, ok := vs[2].(repValue); ok {
			rep = rv.r
		}
		return wrapNode(NewProduction(label, expr, rep, span))
	}
	_ = env.Bind("Production", production)
	productionRef := NewReference("Production")

	// look_ahead := ('!' | '&') production rep?
	lookAhead := NewSequence("LookAhead", []Rule{
		NewChoice("LookAheadSigil", []Rule{NewLiteral("!"), NewLiteral("&")}),
		productionRef,
	})
	lookAhead.Skip = lexSkip
	lookAhead.Action = func(vs []Value, span Span) Value {
		sigil := vs[0].(*ValueString).Value
		prod := vs[1].(nodeValue).n.(*Production)
		return wrapNode(NewLookAhead(sigil == "&", prod, span))
	}

	// predicate := '&' balanced_braces
	predicate := NewSequence("Predicate", []Rule{NewLiteral("&"), balancedBrace})
	predicate.Skip = lexSkip
	predicate.Action = func(vs []Value, span Span) Value {
		code := vs[1].(*ValueString).Value
		return wrapNode(NewPredicate(code, span))
	}

	// item := look_ahead | production | predicate
	// (predicate and look_ahead both start with '&'; look_ahead loses
	// cleanly on "&{" because Atom never starts with '{', so trying it
	// first is safe and matches the EBNF's own ordering)
	item := NewChoice("Item", []Rule{lookAhead, productionRef, predicate})
	_ = env.Bind("Item", item)

	action := newActionRule()
	_ = env.Bind("Action", action)

	// group := item+ action?
	group := NewSequence("Group", []Rule{
		NewRepetition("Items", 1, Unbounded, item),
		NewOptional("ActionOpt", action),
	})
	group.Skip = lexSkip
	group.Action = func(vs []Value, span Span) Value {
		items := vs[0].(*ValueSequence)
		var nodes []Node
		for _, it := range items.Items {
			nodes = append(nodes, it.(nodeValue).n)
		}
		var act *ActionCode
		if av, ok := vs[1].(nodeValue); ok {
			act = av.n.(*ActionCode)
		}
		return wrapNode(NewProductionGroup(nodes, act, span))
	}
	_ = env.Bind("Group", group)

	// choices := group ( '|' group )*
	orGroup := NewSequence("OrGroup", []Rule{NewLiteral("|"), group})
	orGroup.Action = func(vs []Value, span Span) Value { return vs[1] }

	choices := NewSequence("Choices", []Rule{
		group,
		NewRepetition("MoreGroups", 0, Unbounded, orGroup),
	})
	choices.Skip = lexSkip
	choices.Action = func(vs []Value, span Span) Value {
		groups := []*ProductionGroup{vs[0].(nodeValue).n.(*ProductionGroup)}
		if rest, ok := vs[1].(*ValueSequence); ok {
			for _, g := range rest.Items {
				groups = append(groups, g.(nodeValue).n.(*ProductionGroup))
			}
		}
		return wrapNode(NewProductionChoices(groups, span))
	}
	_ = env.Bind("Choices", choices)

	// rule_name := ident ( '(' balanced_paren ')' )?
	ruleName := NewSequence("RuleName", []Rule{
		ident,
		NewOptional("ParamsOpt", wrapParens(balancedParen)),
	})
	ruleName.Skip = lexSkip

	// opt_skip := ( 'skip' production )?
	skipClause := NewSequence("SkipClause", []Rule{NewLiteral("skip"), productionRef})
	skipClause.Skip = lexSkip
	skipClause.Action = func(vs []Value, span Span) Value { return vs[1] }
	optSkip := NewOptional("OptSkip", skipClause)

	ruleDecl := NewSequence("RuleDecl", []Rule{
		ruleName, optSkip, NewLiteral("="), choices,
	})
	ruleDecl.Skip = lexSkip
	ruleDecl.Action = func(vs []Value, span Span) Value {
		nameSeq := vs[0].(*ValueSequence)
		name := nameSeq.Items[0].Text()
		var params []string
		if !IsAbsent(nameSeq.Items[1]) {
			raw := nameSeq.Items[1].Text()
			if strings.TrimSpace(raw) != "" {
				for _, part := range strings.Split(raw, ",") {
					params = append(params, strings.TrimSpace(part))
				}
			}
		}
		var skip Node
		if sv, ok := vs[1].(nodeValue); ok {
			skip = sv.n
		}
		ch := vs[3].(nodeValue).n.(*ProductionChoices)
		return wrapNode(NewRuleDecl(name, params, skip, ch, span))
	}
	_ = env.Bind("RuleDecl", ruleDecl)

	// opt_code := ( '%%' anything_until_%% '%%' )?
	codeBlock := NewSequence("CodeBlock", []Rule{
		NewLiteral("%%"), NewPattern0(`(?s:.*?)(?:%%)`),
	})
	codeBlock.Action = func(vs []Value, span Span) Value { return vs[1] }
	optCode := func() Rule { return NewOptional("OptCode", codeBlock) }

	topFile := NewSequence("File", []Rule{
		optCode(),
		NewRepetition("Decls", 1, Unbounded, recoveringRuleDecl(ruleDecl)),
		optCode(),
	})
	topFile.Skip = lexSkip
	topFile.Action = func(vs []Value, span Span) Value {
		header, hasHeader := "", false
		if hv, ok := vs[0].(*ValueString); ok {
			header, hasHeader = strings.TrimSuffix(hv.Value, "%%"), true
		}
		footer, hasFooter := "", false
		if fv, ok := vs[2].(*ValueString); ok {
			footer, hasFooter = strings.TrimSuffix(fv.Value, "%%"), true
		}
		decls := vs[1].(*ValueSequence)
		var nodes []Node
		for _, d := range decls.Items {
			nodes = append(nodes, d.(nodeValue).n)
		}
		return wrapNode(NewFile(header, hasHeader, nodes, footer, hasFooter, span))
	}
	_ = env.Bind("File", topFile)

	// Trailing Spacing is consumed outside topFile, where no inherited
	// skip runs first: inside it, the skip before a zero-width last item
	// is rewound, which would leave a final newline unconsumed.
	file := NewSequence("FileWithTrailer", []Rule{topFile, lexSkip})
	file.Action = func(vs []Value, span Span) Value { return vs[0] }

	return &MetaGrammar{env: env, top: file}
}

// Parser returns a Parser that runs this meta-grammar. Its results are
// nodeValue boxes around Grammar AST Nodes; Compiler.Parse unboxes them.
func (m *MetaGrammar) Parser() *Parser { return NewParser(m.top, m.env) }

// nodeValue lets a Grammar AST Node ride through the engine's Value
// channel (the engine's generic Value interface and the Grammar AST's
// Node interface are deliberately distinct types — §3 vs §4.E — so
// the meta-grammar's actions box a Node inside a Value here and the
// Compiler unboxes it once parsing finishes).
type nodeValue struct {
	n    Node
	span Span
}

func wrapNode(n Node) nodeValue     { return nodeValue{n: n, span: n.Span()} }
func (v nodeValue) Span() Span      { return v.span }
func (v nodeValue) String() string  { return v.n.String() }
func (v nodeValue) Text() string    { return v.n.String() }

// repValue boxes a *RepSpec the same way nodeValue boxes a Node.
type repValue struct {
	r    *RepSpec
	span Span
}

func (v repValue) Span() Span     { return v.span }
func (v repValue) String() string { return v.r.String() }
func (v repValue) Text() string   { return v.r.String() }

// mapToNode wraps a plain-value rule (Literal/Pattern) so its result
// becomes a nodeValue via f, letting it sit directly in a Choice
// alongside rules that already produce nodeValue (ruleCall, external,
// groupNode).
func mapToNode(r Rule, f func(text string, span Span) Node) Rule {
	return &mappedRule{inner: r, f: f}
}

type mappedRule struct {
	inner Rule
	f     func(text string, span Span) Node
}

func (m *mappedRule) Name() string { return m.inner.Name() }
func (m *mappedRule) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	val, err := m.inner.eval(ctx, c)
	if err != nil {
		return nil, err
	}
	return wrapNode(m.f(val.Text(), val.Span())), nil
}

// NewPattern0 compiles expr and panics on a malformed built-in
// pattern — a broken meta-grammar regex is a programmer error in this
// package, never a runtime concern for a caller.
func NewPattern0(expr string) *Pattern {
	p, err := NewPattern(expr)
	if err != nil {
		panic(fmt.Sprintf("peg: invalid built-in pattern %q: %s", expr, err))
	}
	return p
}

// wrapParens builds a `( balanced )` rule that returns the enclosed
// content directly; balanced (a Balanced('(', ')')) consumes both
// parentheses itself and yields only the text between them.
func wrapParens(balanced Rule) Rule {
	s := NewSequence("Parens", []Rule{balanced})
	s.Action = func(vs []Value, span Span) Value { return vs[0] }
	return s
}

func newRepSuffixRule() Rule {
	star := mapRep(NewLiteral("*"), &RepSpec{Kind: RepStar, Min: -1, Max: -1})
	plus := mapRep(NewLiteral("+"), &RepSpec{Kind: RepPlus, Min: -1, Max: -1})
	opt := mapRep(NewLiteral("?"), &RepSpec{Kind: RepOptional, Min: -1, Max: -1})

	exact := NewSequence("RepExact", []Rule{NewLiteral("<"), NewPattern0(`[0-9]+`), NewLiteral(">")})
	exact.Action = func(vs []Value, span Span) Value {
		n, _ := strconv.Atoi(vs[1].Text())
		return repValue{r: &RepSpec{Kind: RepExact, Min: n, Max: n}, span: span}
	}

	bounds := NewSequence("RepBounds", []Rule{
		NewLiteral("<"),
		NewOptional("LoOpt", NewPattern0(`[0-9]+`)),
		NewLiteral(","),
		NewOptional("HiOpt", NewPattern0(`[0-9]+`)),
		NewLiteral(">"),
	})
	bounds.Action = func(vs []Value, span Span) Value {
		lo, hi := -1, -1
		if !IsAbsent(vs[1]) {
			lo, _ = strconv.Atoi(vs[1].Text())
		}
		if !IsAbsent(vs[3]) {
			hi, _ = strconv.Atoi(vs[3].Text())
		}
		return repValue{r: &RepSpec{Kind: RepBounds, Min: lo, Max: hi}, span: span}
	}

	return NewChoice("Rep", []Rule{exact, bounds, star, plus, opt})
}

func mapRep(r Rule, spec *RepSpec) Rule {
	return &mappedRepRule{inner: r, spec: spec}
}

type mappedRepRule struct {
	inner Rule
	spec  *RepSpec
}

func (m *mappedRepRule) Name() string { return m.inner.Name() }
func (m *mappedRepRule) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	val, err := m.inner.eval(ctx, c)
	if err != nil {
		return nil, err
	}
	return repValue{r: m.spec, span: val.Span()}, nil
}

func newRuleCallRule() Rule {
	balancedParen := NewBalanced("BalancedParen", '(', ')')
	ident := NewPattern0(`[a-zA-Z_][a-zA-Z0-9_]*`)
	seq := NewSequence("RuleCall", []Rule{
		ident,
		NewOptional("ArgsOpt", wrapParens(balancedParen)),
	})
	seq.Action = func(vs []Value, span Span) Value {
		name := vs[0].Text()
		var args []Node
		if !IsAbsent(vs[1]) {
			raw := vs[1].Text()
			if strings.TrimSpace(raw) != "" {
				for _, part := range strings.Split(raw, ",") {
					args = append(args, NewLiteralExpr(strings.TrimSpace(part), span))
				}
			}
		}
		return wrapNode(NewRuleCall(name, args, span))
	}
	return seq
}

func newExternalRule() Rule {
	ident := NewPattern0(`[a-zA-Z_][a-zA-Z0-9_]*`)
	balancedParen := NewBalanced("BalancedParen", '(', ')')
	named := NewSequence("ExternalNamed", []Rule{NewLiteral("$"), ident})
	named.Action = func(vs []Value, span Span) Value {
		return wrapNode(NewExternalExpr(vs[1].Text(), "", span))
	}
	coded := NewSequence("ExternalCoded", []Rule{NewLiteral("$"), balancedParen})
	coded.Action = func(vs []Value, span Span) Value {
		return wrapNode(NewExternalExpr("", vs[1].Text(), span))
	}
	return NewChoice("External", []Rule{coded, named})
}

func newActionRule() Rule {
	balancedBrace := NewBalanced("BalancedBrace", '{', '}')
	brace := mapToNode(balancedBrace, func(text string, span Span) Node {
		return NewActionCode(text, ActionBrace, span)
	})

	arrowLine := NewSequence("ArrowLine", []Rule{
		NewLiteral("->"), NewPattern0(`[ \t]*`), NewPattern0(`[^\n]*`),
	})
	arrowLine.Action = func(vs []Value, span Span) Value {
		code := vs[2].Text()
		kind := ActionArrowLine
		if strings.Contains(code, "\n") {
			kind = ActionArrowBlock
		}
		return wrapNode(NewActionCode(code, kind, span))
	}

	arrowBlock := &indentedBlockAction{}

	// arrowBlock must be tried before arrowLine: arrowLine's trailing
	// `[^\n]*` happily matches zero characters right before a newline,
	// so it would otherwise always win and an indented block would
	// never get a chance to start.
	return NewChoice("Action", []Rule{arrowBlock, arrowLine, brace})
}

// indentedBlockAction implements `'->' NL indented_block`. The first
// non-empty continuation line's leading whitespace is locked (via a
// freshly allocated engine Memo, scoped to this single eval call so
// state never leaks across separate action blocks or separate
// top-level parses — spec §9 "Memoisation scope") and every
// subsequent line must repeat that exact prefix to stay part of the
// block.
type indentedBlockAction struct{}

func (a *indentedBlockAction) Name() string { return "ArrowBlock" }

func (a *indentedBlockAction) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	start := c.Location()

	// This sub-parser reads its own indentation character by
	// character, so it must run with no inherited skip: the ambient
	// Spacing rule matches runs of whitespace including newlines and
	// would otherwise consume the very line breaks and indentation
	// this code needs to see.
	noSkip := &evalCtx{env: ctx.env, tracer: ctx.tracer}

	header := NewSequence("ArrowBlockHeader", []Rule{NewLiteral("->"), NewLiteral("\n"), NewPattern0(`(?:[ \t]*\n)*`)})
	if _, err := header.eval(noSkip, c); err != nil {
		c.RewindTo(start)
		return nil, err
	}

	indent := NewMemo("IndentPrefix", NewPattern0(`[ \t]+`))
	line := NewSequence("IndentedLine", []Rule{
		indent,
		NewPattern0(`[^\n]*`),
		NewChoice("EOL", []Rule{NewLiteral("\n"), NewLookahead("EOF", NewPattern0(`.`), false)}),
	})
	line.Action = func(vs []Value, span Span) Value {
		return NewValueString(vs[1].Text(), span)
	}

	lines := NewRepetition("IndentedLines", 1, Unbounded, line)
	val, err := lines.eval(noSkip, c)
	if err != nil {
		c.RewindTo(start)
		return nil, err
	}

	seq := val.(*ValueSequence)
	parts := make([]string, len(seq.Items))
	for i, item := range seq.Items {
		parts[i] = item.Text()
	}
	code := strings.Join(parts, "\n")
	kind := ActionArrowLine
	if len(parts) > 1 {
		kind = ActionArrowBlock
	}
	return wrapNode(NewActionCode(code, kind, NewSpan(start, c.Location()))), nil
}

// recoveringRuleDecl wraps a rule declaration so that, on failure, it
// consumes up to the next blank-line-delimited chunk and reports an
// ErrorNode instead of aborting the whole file (SPEC_FULL §3
// ErrorNode). This only ever triggers between declarations, never
// mid-ordered-choice inside a single production, so it does not
// reintroduce the error-recovery Non-goal the spec excludes.
func recoveringRuleDecl(ruleDecl Rule) Rule {
	return &recoveringDecl{ruleDecl: ruleDecl}
}

type recoveringDecl struct {
	ruleDecl Rule
}

func (r *recoveringDecl) Name() string { return "DeclOrError" }

func (r *recoveringDecl) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	start := c.Location()
	val, err := r.ruleDecl.eval(ctx, c)
	if err == nil {
		return val, nil
	}
	c.RewindTo(start)

	deepest := err.Deepest()
	skipToNext := NewPattern0(`(?s:.*?)(?:\n\s*\n|\z)`)
	recovered, recErr := skipToNext.eval(ctx, c)
	if recErr != nil || recovered.Text() == "" {
		return nil, err
	}
	return wrapNode(NewErrorNode("parse-error", deepest.Message, "", NewSpan(start, c.Location()))), nil
}

func splitRegexLit(text string) (body, flags string) {
	// text is `/body/flags`
	last := strings.LastIndexByte(text, '/')
	return text[1:last], text[last+1:]
}

func unquoteLit(text string) string {
	if len(text) < 2 {
		return text
	}
	if text[0] == '\'' || text[0] == '"' {
		inner := text[1 : len(text)-1]
		return strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`, `\'`, `'`, `\"`, `"`).Replace(inner)
	}
	return strings.TrimPrefix(text, "\\")
}
