package peg

import (
	"fmt"
	"strings"
)

// PrettyPrint renders a Grammar AST as an indented tree, mirroring the
// shape (if not the ANSI theming) of the teacher's
// grammar_ast_printer.go ppAstNode.
func PrettyPrint(n Node) string {
	p := &astPrinter{}
	_ = n.Accept(p)
	return p.out.String()
}

type astPrinter struct {
	out    strings.Builder
	indent int
}

func (p *astPrinter) line(format string, args ...any) {
	p.out.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(&p.out, format, args...)
	p.out.WriteString("\n")
}

func (p *astPrinter) nested(f func()) {
	p.indent++
	f()
	p.indent--
}

func (p *astPrinter) VisitFile(n *File) error {
	p.line("File")
	p.nested(func() {
		for _, d := range n.Decls {
			_ = d.Accept(p)
		}
	})
	return nil
}

func (p *astPrinter) VisitRuleDecl(n *RuleDecl) error {
	p.line("RuleDecl name=%s params=%v", n.Name, n.Params)
	p.nested(func() { _ = n.Choices.Accept(p) })
	return nil
}

func (p *astPrinter) VisitProductionChoices(n *ProductionChoices) error {
	p.line("Choice (%d alternatives)", len(n.Groups))
	p.nested(func() {
		for _, g := range n.Groups {
			_ = g.Accept(p)
		}
	})
	return nil
}

func (p *astPrinter) VisitProductionGroup(n *ProductionGroup) error {
	p.line("Group")
	p.nested(func() {
		for _, it := range n.Items {
			_ = it.Accept(p)
		}
		if n.Action != nil {
			_ = n.Action.Accept(p)
		}
	})
	return nil
}

func (p *astPrinter) VisitProduction(n *Production) error {
	p.line("Production label=%q rep=%s", n.Label, n.Rep.String())
	p.nested(func() { _ = n.Expr.Accept(p) })
	return nil
}

func (p *astPrinter) VisitLookAhead(n *LookAhead) error {
	p.line("LookAhead positive=%v", n.Positive)
	p.nested(func() { _ = n.Prod.Accept(p) })
	return nil
}

func (p *astPrinter) VisitPredicate(n *Predicate) error {
	p.line("Predicate %q", n.Code)
	return nil
}

func (p *astPrinter) VisitRuleCall(n *RuleCall) error {
	p.line("RuleCall %s (%d args)", n.Name, len(n.Args))
	p.nested(func() {
		for _, a := range n.Args {
			_ = a.Accept(p)
		}
	})
	return nil
}

func (p *astPrinter) VisitGroupNode(n *GroupNode) error {
	p.line("Group bracket=%v", n.Bracket)
	p.nested(func() { _ = n.Choices.Accept(p) })
	return nil
}

func (p *astPrinter) VisitLiteralExpr(n *LiteralExpr) error {
	p.line("Literal %q", n.Value)
	return nil
}

func (p *astPrinter) VisitPatternExpr(n *PatternExpr) error {
	p.line("Pattern /%s/%s", n.Expr, n.Flags)
	return nil
}

func (p *astPrinter) VisitExternalExpr(n *ExternalExpr) error {
	p.line("External %s", n.String())
	return nil
}

func (p *astPrinter) VisitActionCode(n *ActionCode) error {
	p.line("Action kind=%d newline=%v", n.Kind, n.HasNewline())
	return nil
}

func (p *astPrinter) VisitErrorNode(n *ErrorNode) error {
	p.line("Error %s: %s", n.Code, n.Message)
	return nil
}
