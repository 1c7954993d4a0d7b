package peg

// GrammarVisitor is the visitor shape for walking a Grammar AST, one
// method per node type (spec §4.E, grounded on the teacher's
// AstNodeVisitor). The pretty-printer implements it; the compiler and
// the emitters walk the AST with their own type switches instead.
type GrammarVisitor interface {
	VisitFile(*File) error
	VisitRuleDecl(*RuleDecl) error
	VisitProductionChoices(*ProductionChoices) error
	VisitProductionGroup(*ProductionGroup) error
	VisitProduction(*Production) error
	VisitLookAhead(*LookAhead) error
	VisitPredicate(*Predicate) error
	VisitRuleCall(*RuleCall) error
	VisitGroupNode(*GroupNode) error
	VisitLiteralExpr(*LiteralExpr) error
	VisitPatternExpr(*PatternExpr) error
	VisitExternalExpr(*ExternalExpr) error
	VisitActionCode(*ActionCode) error
	VisitErrorNode(*ErrorNode) error
}

// Inspect traverses a Grammar AST in depth-first order, calling f for
// every node. If f returns false the children of that node are
// skipped, mirroring go/ast.Inspect and the teacher's own Inspect
// helper (grammar_ast_visitor.go).
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch v := n.(type) {
	case *File:
		for _, d := range v.Decls {
			Inspect(d, f)
		}
	case *RuleDecl:
		if v.Skip != nil {
			Inspect(v.Skip, f)
		}
		Inspect(v.Choices, f)
	case *ProductionChoices:
		for _, g := range v.Groups {
			Inspect(g, f)
		}
	case *ProductionGroup:
		for _, it := range v.Items {
			Inspect(it, f)
		}
		if v.Action != nil {
			Inspect(v.Action, f)
		}
	case *Production:
		Inspect(v.Expr, f)
	case *LookAhead:
		Inspect(v.Prod, f)
	case *RuleCall:
		for _, a := range v.Args {
			Inspect(a, f)
		}
	case *GroupNode:
		Inspect(v.Choices, f)
	}
}
