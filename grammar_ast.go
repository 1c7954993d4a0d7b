package peg

import (
	"fmt"
	"strings"
)

// Node is the interface every Grammar AST entity implements, mirrored
// on the teacher's AstNode (grammar_ast.go): a source Span, a
// debug-oriented String form and a visitor entrypoint.
type Node interface {
	Span() Span
	String() string
	Accept(GrammarVisitor) error
}

// ---- File ----

// File is the root of a parsed grammar source: an optional raw
// header block, the rule declarations, and an optional raw footer
// block (spec §3 "Grammar AST").
type File struct {
	span       Span
	HeaderCode string
	HasHeader  bool
	Decls      []Node // *RuleDecl or *ErrorNode
	FooterCode string
	HasFooter  bool
}

func NewFile(header string, hasHeader bool, decls []Node, footer string, hasFooter bool, span Span) *File {
	return &File{span: span, HeaderCode: header, HasHeader: hasHeader, Decls: decls, FooterCode: footer, HasFooter: hasFooter}
}

func (f *File) Span() Span { return f.span }
func (f *File) Accept(v GrammarVisitor) error { return v.VisitFile(f) }
func (f *File) String() string {
	parts := make([]string, len(f.Decls))
	for i, d := range f.Decls {
		parts[i] = d.String()
	}
	return strings.Join(parts, "\n\n")
}

// Errors returns the ErrorNode entries collected while parsing the
// file's rule declarations, so a caller can report every malformed
// declaration in one pass (SPEC_FULL §3).
func (f *File) Errors() []*ErrorNode {
	var out []*ErrorNode
	for _, d := range f.Decls {
		if e, ok := d.(*ErrorNode); ok {
			out = append(out, e)
		}
	}
	return out
}

// ---- RuleDecl ----

// RuleDecl is one named grammar rule: `name(params)? skip? = choices`.
type RuleDecl struct {
	span    Span
	Name    string
	Params  []string // nil for a non-parametrised rule
	Skip    Node      // nil when no `skip production` clause is present
	Choices *ProductionChoices
}

func NewRuleDecl(name string, params []string, skip Node, choices *ProductionChoices, span Span) *RuleDecl {
	return &RuleDecl{span: span, Name: name, Params: params, Skip: skip, Choices: choices}
}

func (r *RuleDecl) Span() Span { return r.span }
func (r *RuleDecl) Accept(v GrammarVisitor) error { return v.VisitRuleDecl(r) }
func (r *RuleDecl) IsParametrised() bool { return len(r.Params) > 0 }

func (r *RuleDecl) String() string {
	name := r.Name
	if r.IsParametrised() {
		name = fmt.Sprintf("%s(%s)", r.Name, strings.Join(r.Params, ", "))
	}
	skip := ""
	if r.Skip != nil {
		skip = fmt.Sprintf(" skip %s", r.Skip)
	}
	return fmt.Sprintf("%s%s = %s", name, skip, r.Choices)
}

// ---- ProductionChoices ----

// ProductionChoices is an ordered-choice of ProductionGroups
// separated by `|` in the source.
type ProductionChoices struct {
	span   Span
	Groups []*ProductionGroup
}

func NewProductionChoices(groups []*ProductionGroup, span Span) *ProductionChoices {
	return &ProductionChoices{span: span, Groups: groups}
}

func (c *ProductionChoices) Span() Span { return c.span }
func (c *ProductionChoices) Accept(v GrammarVisitor) error { return v.VisitProductionChoices(c) }
func (c *ProductionChoices) String() string {
	parts := make([]string, len(c.Groups))
	for i, g := range c.Groups {
		parts[i] = g.String()
	}
	return strings.Join(parts, " | ")
}

// ---- ProductionGroup ----

// ProductionGroup is a run of items (productions, lookaheads,
// predicates) optionally terminated by an action.
type ProductionGroup struct {
	span   Span
	Items  []Node // *Production | *LookAhead | *Predicate
	Action *ActionCode
}

func NewProductionGroup(items []Node, action *ActionCode, span Span) *ProductionGroup {
	return &ProductionGroup{span: span, Items: items, Action: action}
}

func (g *ProductionGroup) Span() Span { return g.span }
func (g *ProductionGroup) Accept(v GrammarVisitor) error { return v.VisitProductionGroup(g) }
func (g *ProductionGroup) String() string {
	parts := make([]string, len(g.Items))
	for i, it := range g.Items {
		parts[i] = it.String()
	}
	s := strings.Join(parts, " ")
	if g.Action != nil {
		s += " " + g.Action.String()
	}
	return s
}

// Labels returns the label of every labeled Production in this group,
// in source order, used by the emitter to name an action function's
// parameters.
func (g *ProductionGroup) Labels() []string {
	var labels []string
	for _, it := range g.Items {
		if p, ok := it.(*Production); ok && p.Label != "" {
			labels = append(labels, p.Label)
		}
	}
	return labels
}

// ---- Production ----

// RepKind identifies a repetition suffix.
type RepKind int

const (
	RepNone RepKind = iota
	RepStar
	RepPlus
	RepOptional
	RepExact  // <n>
	RepBounds // <a?,b?>
)

// RepSpec describes a Production's repetition suffix.
type RepSpec struct {
	Kind RepKind
	Min  int // meaningful for RepExact/RepBounds; -1 when absent
	Max  int // meaningful for RepExact/RepBounds; -1 means unbounded
}

func (r *RepSpec) String() string {
	if r == nil {
		return ""
	}
	switch r.Kind {
	case RepStar:
		return "*"
	case RepPlus:
		return "+"
	case RepOptional:
		return "?"
	case RepExact:
		return fmt.Sprintf("<%d>", r.Min)
	case RepBounds:
		lo, hi := "", ""
		if r.Min >= 0 {
			lo = fmt.Sprintf("%d", r.Min)
		}
		if r.Max >= 0 {
			hi = fmt.Sprintf("%d", r.Max)
		}
		return fmt.Sprintf("<%s,%s>", lo, hi)
	default:
		return ""
	}
}

// Production is a single grammar item: an optional label, the atom
// it matches, and an optional repetition suffix.
type Production struct {
	span  Span
	Label string
	Expr  Node // LiteralExpr | PatternExpr | RuleCall | ExternalExpr | GroupNode
	Rep   *RepSpec
}

func NewProduction(label string, expr Node, rep *RepSpec, span Span) *Production {
	return &Production{span: span, Label: label, Expr: expr, Rep: rep}
}

func (p *Production) Span() Span { return p.span }
func (p *Production) Accept(v GrammarVisitor) error { return v.VisitProduction(p) }
func (p *Production) String() string {
	s := p.Expr.String()
	if p.Rep != nil {
		s += p.Rep.String()
	}
	if p.Label != "" {
		s = fmt.Sprintf("%s:%s", p.Label, s)
	}
	return s
}

// ---- LookAhead ----

// LookAhead is a syntactic predicate: `!production` or `&production`.
type LookAhead struct {
	span     Span
	Positive bool
	Prod     *Production
}

func NewLookAhead(positive bool, prod *Production, span Span) *LookAhead {
	return &LookAhead{span: span, Positive: positive, Prod: prod}
}

func (l *LookAhead) Span() Span { return l.span }
func (l *LookAhead) Accept(v GrammarVisitor) error { return v.VisitLookAhead(l) }
func (l *LookAhead) String() string {
	sigil := "!"
	if l.Positive {
		sigil = "&"
	}
	return sigil + l.Prod.String()
}

// ---- Predicate ----

// Predicate is a semantic predicate: `&{ code }`.
type Predicate struct {
	span Span
	Code string
}

func NewPredicate(code string, span Span) *Predicate {
	return &Predicate{span: span, Code: code}
}

func (p *Predicate) Span() Span { return p.span }
func (p *Predicate) Accept(v GrammarVisitor) error { return v.VisitPredicate(p) }
func (p *Predicate) String() string { return "&{" + p.Code + "}" }

// ---- RuleCall ----

// RuleCall references another rule by name, optionally instantiating
// a parametrised rule with argument expressions.
type RuleCall struct {
	span Span
	Name string
	Args []Node // argument expressions, nil for a non-parametrised call
}

func NewRuleCall(name string, args []Node, span Span) *RuleCall {
	return &RuleCall{span: span, Name: name, Args: args}
}

func (c *RuleCall) Span() Span { return c.span }
func (c *RuleCall) Accept(v GrammarVisitor) error { return v.VisitRuleCall(c) }
func (c *RuleCall) String() string {
	if c.Args == nil {
		return c.Name
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(parts, ", "))
}

// ---- GroupNode ----

// GroupNode is a bracketed sub-expression: `[ choices ]`. Semantically
// identical to a parenthesised `( choices )`; kept distinct purely so
// source can round-trip its original bracket style.
type GroupNode struct {
	span    Span
	Choices *ProductionChoices
	Bracket bool // true for `[...]`, false for `(...)`
}

func NewGroupNode(choices *ProductionChoices, bracket bool, span Span) *GroupNode {
	return &GroupNode{span: span, Choices: choices, Bracket: bracket}
}

func (g *GroupNode) Span() Span { return g.span }
func (g *GroupNode) Accept(v GrammarVisitor) error { return v.VisitGroupNode(g) }
func (g *GroupNode) String() string {
	if g.Bracket {
		return "[" + g.Choices.String() + "]"
	}
	return "(" + g.Choices.String() + ")"
}

// ---- Literal / Pattern / External leaves ----

// LiteralExpr is a quoted string atom.
type LiteralExpr struct {
	span  Span
	Value string
}

func NewLiteralExpr(v string, span Span) *LiteralExpr { return &LiteralExpr{span: span, Value: v} }
func (l *LiteralExpr) Span() Span { return l.span }
func (l *LiteralExpr) Accept(v GrammarVisitor) error { return v.VisitLiteralExpr(l) }
func (l *LiteralExpr) String() string { return fmt.Sprintf("%q", l.Value) }

// PatternExpr is a `/regex/flags` atom.
type PatternExpr struct {
	span  Span
	Expr  string
	Flags string
}

func NewPatternExpr(expr, flags string, span Span) *PatternExpr {
	return &PatternExpr{span: span, Expr: expr, Flags: flags}
}

func (p *PatternExpr) Span() Span { return p.span }
func (p *PatternExpr) Accept(v GrammarVisitor) error { return v.VisitPatternExpr(p) }
func (p *PatternExpr) String() string { return "/" + p.Expr + "/" + p.Flags }

// ExternalExpr is a `$name` or `$(code)` escape into host code that
// produces a sub-rule at grammar-assembly time (used for builtins the
// engine supplies out of band, e.g. `$EOF`).
type ExternalExpr struct {
	span Span
	Name string
	Code string // non-empty only for the `$(code)` spelling
}

func NewExternalExpr(name, code string, span Span) *ExternalExpr {
	return &ExternalExpr{span: span, Name: name, Code: code}
}

func (e *ExternalExpr) Span() Span { return e.span }
func (e *ExternalExpr) Accept(v GrammarVisitor) error { return v.VisitExternalExpr(e) }
func (e *ExternalExpr) String() string {
	if e.Code != "" {
		return "$(" + e.Code + ")"
	}
	return "$" + e.Name
}

// ---- ActionCode ----

// ActionKind identifies which of the three action spellings produced
// an ActionCode.
type ActionKind int

const (
	ActionBrace ActionKind = iota
	ActionArrowLine
	ActionArrowBlock
)

// ActionCode is opaque host-language code the emitter copies verbatim
// — the engine and compiler never interpret it (spec §9).
type ActionCode struct {
	span Span
	Code string
	Kind ActionKind
}

func NewActionCode(code string, kind ActionKind, span Span) *ActionCode {
	return &ActionCode{span: span, Code: code, Kind: kind}
}

func (a *ActionCode) Span() Span { return a.span }
func (a *ActionCode) Accept(v GrammarVisitor) error { return v.VisitActionCode(a) }
func (a *ActionCode) String() string {
	switch a.Kind {
	case ActionArrowLine, ActionArrowBlock:
		return "-> " + a.Code
	default:
		return "{" + a.Code + "}"
	}
}

// HasNewline reports whether the action body spans multiple lines —
// the emitter treats any such action as a named top-level function
// rather than an inline expression, regardless of an explicit
// `return` (spec §9, Open Question resolved).
func (a *ActionCode) HasNewline() bool { return strings.Contains(a.Code, "\n") }

// ---- ErrorNode ----

// ErrorNode replaces a RuleDecl slot in File.Decls when that
// declaration failed to parse, carrying enough to report the problem
// without aborting the rest of the file (SPEC_FULL §3).
type ErrorNode struct {
	span     Span
	Code     string
	Message  string
	Expected string
}

func NewErrorNode(code, message, expected string, span Span) *ErrorNode {
	return &ErrorNode{span: span, Code: code, Message: message, Expected: expected}
}

func (e *ErrorNode) Span() Span { return e.span }
func (e *ErrorNode) Accept(v GrammarVisitor) error { return v.VisitErrorNode(e) }
func (e *ErrorNode) String() string { return fmt.Sprintf("<error %s: %s>", e.Code, e.Message) }
