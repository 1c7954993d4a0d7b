package peg

import (
	"fmt"
	"strconv"
	"strings"
)

// GoEmitOptions configures the Go emitter (spec §4.G, SPEC_FULL §4.H
// Emit.PackageName).
type GoEmitOptions struct {
	PackageName string // default "parser"
}

// GoEmitter compiles a Grammar AST to a standalone Go source file that
// recognises the same language, grounded on clarete-langlang/gen_go.go's
// shape: one function per rule, built out of nested immediately-invoked
// closures rather than go/ast+go/format (see DESIGN.md, Component G).
//
// Unlike the teacher's emitted output, the generated parser here calls
// back into this package's own MatchLiteral/MatchPattern/MatchEOF and
// Cursor/Value/Span types directly — the emitted program depends on
// this module at runtime instead of carrying an embedded standalone
// copy of it, since nothing in the spec requires the compiled output
// to be dependency-free.
type GoEmitter struct {
	opt         GoEmitOptions
	arity       map[string]int
	actionFuncs []string // named top-level functions for multi-line actions
	actionSeq   int
}

func NewGoEmitter(opt GoEmitOptions) *GoEmitter {
	if opt.PackageName == "" {
		opt.PackageName = "parser"
	}
	return &GoEmitter{opt: opt, arity: map[string]int{}}
}

func (g *GoEmitter) Emit(file *File) (string, error) {
	g.arity = map[string]int{}
	g.actionFuncs = nil
	g.actionSeq = 0

	for _, d := range file.Decls {
		if decl, ok := d.(*RuleDecl); ok && decl.IsParametrised() {
			g.arity[decl.Name] = len(decl.Params)
		}
	}

	var out strings.Builder
	fmt.Fprintln(&out, "// Code generated by the peg compiler. DO NOT EDIT.")
	fmt.Fprintf(&out, "package %s\n\n", g.opt.PackageName)
	fmt.Fprintln(&out, "import (")
	fmt.Fprintln(&out, "\t\"fmt\"")
	fmt.Fprintln(&out, "\t\"regexp\"")
	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "\tpeg \"github.com/vela-lang/peg\"")
	fmt.Fprintln(&out, ")")
	fmt.Fprintln(&out)

	if file.HasHeader {
		fmt.Fprintln(&out, file.HeaderCode)
		fmt.Fprintln(&out)
	}

	var topName string
	for _, d := range file.Decls {
		decl, ok := d.(*RuleDecl)
		if !ok {
			continue // ErrorNode: Compile already refused to reach here
		}
		if topName == "" {
			topName = decl.Name
		}
		if err := g.emitDecl(&out, decl); err != nil {
			return "", err
		}
	}

	for _, fn := range g.actionFuncs {
		fmt.Fprintln(&out, fn)
	}

	if topName != "" {
		fmt.Fprintf(&out, "// Parse runs %s over the whole of input and requires every\n", topName)
		fmt.Fprintln(&out, "// rune to be consumed.")
		fmt.Fprintln(&out, "func Parse(input string) (peg.Value, error) {")
		fmt.Fprintln(&out, "\tc := peg.NewCursor(input)")
		fmt.Fprintf(&out, "\tv, err := parse%s(c)\n", topName)
		fmt.Fprintln(&out, "\tif err != nil {")
		fmt.Fprintln(&out, "\t\treturn nil, err")
		fmt.Fprintln(&out, "\t}")
		fmt.Fprintln(&out, "\tif c.HasNext() {")
		fmt.Fprintf(&out, "\t\treturn nil, fmt.Errorf(\"input not fully consumed, remaining: %%q\", c.Remainder())\n")
		fmt.Fprintln(&out, "\t}")
		fmt.Fprintln(&out, "\treturn v, nil")
		fmt.Fprintln(&out, "}")
		fmt.Fprintln(&out)
	}

	if file.HasFooter {
		fmt.Fprintln(&out, file.FooterCode)
	}

	return out.String(), nil
}

func (g *GoEmitter) emitDecl(out *strings.Builder, decl *RuleDecl) error {
	fnName := "parse" + decl.Name
	skipName := ""
	if decl.Skip != nil {
		skipProd, ok := decl.Skip.(*Production)
		if !ok {
			return fmt.Errorf("rule %q: skip clause is %T, expected *Production", decl.Name, decl.Skip)
		}
		skipName = fnName + "Skip"
		fmt.Fprintf(out, "func %s(c *peg.Cursor) (peg.Value, error) {\n", skipName)
		fmt.Fprintln(out, "\tstart := c.Location()")
		fmt.Fprintln(out, "\tfor {")
		fmt.Fprintln(out, "\t\tbefore := c.Location()")
		fmt.Fprintf(out, "\t\tif _, err := %s; err != nil {\n", g.exprProduction(skipProd, nil, "", 2))
		fmt.Fprintln(out, "\t\t\tc.RewindTo(before)")
		fmt.Fprintln(out, "\t\t\tbreak")
		fmt.Fprintln(out, "\t\t}")
		fmt.Fprintln(out, "\t\tif c.Location().Offset == before.Offset {")
		fmt.Fprintln(out, "\t\t\tbreak")
		fmt.Fprintln(out, "\t\t}")
		fmt.Fprintln(out, "\t}")
		fmt.Fprintln(out, "\treturn peg.NewValueString(\"\", peg.NewSpan(start, c.Location())), nil")
		fmt.Fprintln(out, "}")
		fmt.Fprintln(out)
	}

	if !decl.IsParametrised() {
		fmt.Fprintf(out, "func %s(c *peg.Cursor) (peg.Value, error) {\n", fnName)
		fmt.Fprintf(out, "\treturn %s\n", g.exprChoices(decl.Choices, nil, skipName, 1))
		fmt.Fprintln(out, "}")
		fmt.Fprintln(out)
		return nil
	}

	scope := make(map[string]bool, len(decl.Params))
	sig := make([]string, len(decl.Params))
	for i, p := range decl.Params {
		sig[i] = p + " func(*peg.Cursor) (peg.Value, error)"
		scope[p] = true
	}
	fmt.Fprintf(out, "func %s(%s) func(*peg.Cursor) (peg.Value, error) {\n", fnName, strings.Join(sig, ", "))
	fmt.Fprintln(out, "\treturn func(c *peg.Cursor) (peg.Value, error) {")
	fmt.Fprintf(out, "\t\treturn %s\n", g.exprChoices(decl.Choices, scope, skipName, 2))
	fmt.Fprintln(out, "\t}")
	fmt.Fprintln(out, "}")
	fmt.Fprintln(out)
	return nil
}

func tabs(n int) string { return strings.Repeat("\t", n) }

func (g *GoEmitter) exprChoices(pc *ProductionChoices, scope map[string]bool, skipName string, ind int) string {
	if len(pc.Groups) == 1 {
		return g.exprGroup(pc.Groups[0], scope, skipName, ind)
	}
	t, t1 := tabs(ind), tabs(ind+1)
	var b strings.Builder
	fmt.Fprintln(&b, "func() (peg.Value, error) {")
	fmt.Fprintf(&b, "%sstart := c.Location()\n", t1)
	fmt.Fprintf(&b, "%svar lastErr error\n", t1)
	for _, grp := range pc.Groups {
		fmt.Fprintf(&b, "%sif v, err := %s; err == nil {\n", t1, g.exprGroup(grp, scope, skipName, ind+1))
		fmt.Fprintf(&b, "%s\treturn v, nil\n", t1)
		fmt.Fprintf(&b, "%s} else {\n", t1)
		fmt.Fprintf(&b, "%s\tlastErr = err\n", t1)
		fmt.Fprintf(&b, "%s\tc.RewindTo(start)\n", t1)
		fmt.Fprintf(&b, "%s}\n", t1)
	}
	fmt.Fprintf(&b, "%sreturn nil, lastErr\n", t1)
	fmt.Fprintf(&b, "%s}()", t)
	return b.String()
}

func (g *GoEmitter) exprGroup(group *ProductionGroup, scope map[string]bool, skipName string, ind int) string {
	t1 := tabs(ind + 1)
	var b strings.Builder
	fmt.Fprintln(&b, "func() (peg.Value, error) {")
	fmt.Fprintf(&b, "%sstart := c.Location()\n", t1)
	fmt.Fprintf(&b, "%svar items []peg.Value\n", t1)

	prodIndex := 0
	for _, it := range group.Items {
		if skipName != "" {
			fmt.Fprintf(&b, "%sif v, err := %s(c); err == nil {\n", t1, skipName)
			fmt.Fprintf(&b, "%s\titems = append(items, v)\n", t1)
			fmt.Fprintf(&b, "%s}\n", t1)
		}
		switch v := it.(type) {
		case *Predicate:
			fmt.Fprintf(&b, "%sif !func() bool {\n", t1)
			fmt.Fprintf(&b, "%s\n", g.indentCode(v.Code, ind+2))
			fmt.Fprintf(&b, "%s}() {\n", t1)
			fmt.Fprintf(&b, "%s\tc.RewindTo(start)\n", t1)
			fmt.Fprintf(&b, "%s\treturn nil, fmt.Errorf(\"predicate failed\")\n", t1)
			fmt.Fprintf(&b, "%s}\n", t1)
		case *LookAhead:
			expr := g.exprProduction(v.Prod, scope, skipName, ind+1)
			positive := "false"
			if v.Positive {
				positive = "true"
			}
			fmt.Fprintf(&b, "%sif _, err := func() (peg.Value, error) {\n", t1)
			fmt.Fprintf(&b, "%s\tlaStart := c.Location()\n", t1)
			fmt.Fprintf(&b, "%s\tv, err := %s\n", t1, expr)
			fmt.Fprintf(&b, "%s\tc.RewindTo(laStart)\n", t1)
			fmt.Fprintf(&b, "%s\tif (err == nil) != %s {\n", t1, positive)
			fmt.Fprintf(&b, "%s\t\tif err == nil {\n", t1)
			fmt.Fprintf(&b, "%s\t\t\terr = fmt.Errorf(\"unexpected match\")\n", t1)
			fmt.Fprintf(&b, "%s\t\t}\n", t1)
			fmt.Fprintf(&b, "%s\t\treturn nil, err\n", t1)
			fmt.Fprintf(&b, "%s\t}\n", t1)
			fmt.Fprintf(&b, "%s\treturn v, nil\n", t1)
			fmt.Fprintf(&b, "%s}(); err != nil {\n", t1)
			fmt.Fprintf(&b, "%s\tc.RewindTo(start)\n", t1)
			fmt.Fprintf(&b, "%s\treturn nil, err\n", t1)
			fmt.Fprintf(&b, "%s}\n", t1)
		case *Production:
			varName := fmt.Sprintf("_%d", prodIndex)
			prodIndex++
			expr := g.exprProduction(v, scope, skipName, ind+1)
			fmt.Fprintf(&b, "%s%s, err := %s\n", t1, varName, expr)
			fmt.Fprintf(&b, "%sif err != nil {\n", t1)
			fmt.Fprintf(&b, "%s\tc.RewindTo(start)\n", t1)
			fmt.Fprintf(&b, "%s\treturn nil, err\n", t1)
			fmt.Fprintf(&b, "%s}\n", t1)
			fmt.Fprintf(&b, "%sitems = append(items, %s)\n", t1, varName)
			fmt.Fprintf(&b, "%s_ = %s\n", t1, varName)
			if v.Label != "" {
				alias := safeIdent(v.Label)
				fmt.Fprintf(&b, "%s%s := %s\n", t1, alias, varName)
				fmt.Fprintf(&b, "%s_ = %s\n", t1, alias)
			}
		}
	}

	fmt.Fprintf(&b, "%sspan := peg.NewSpan(start, c.Location())\n", t1)
	fmt.Fprintf(&b, "%s_ = span\n", t1)

	if group.Action != nil {
		fmt.Fprintf(&b, "%s%s\n", t1, g.renderAction(group.Action, group.Labels(), prodIndex, ind+1))
	} else {
		fmt.Fprintf(&b, "%sif len(items) == 1 {\n", t1)
		fmt.Fprintf(&b, "%s\treturn items[0], nil\n", t1)
		fmt.Fprintf(&b, "%s}\n", t1)
		fmt.Fprintf(&b, "%sreturn peg.NewValueSequence(items, span), nil\n", t1)
	}

	fmt.Fprintf(&b, "%s}()", tabs(ind))
	return b.String()
}

// renderAction splices a grammar action's host code into the
// generated parser. A single-line action (arrow-line, or a brace
// action with no embedded newline) is inlined where it sits; any
// action whose body spans multiple lines is promoted to a named
// top-level function instead, per the spec's resolved Open Question,
// so deeply nested inline closures never have to carry multi-line
// action bodies.
func (g *GoEmitter) renderAction(a *ActionCode, labels []string, numPositional int, ind int) string {
	if !a.HasNewline() {
		if a.Kind == ActionArrowLine {
			return fmt.Sprintf("return %s", a.Code)
		}
		return a.Code
	}

	g.actionSeq++
	fnName := fmt.Sprintf("action%d", g.actionSeq)
	params := make([]string, 0, numPositional+len(labels)+1)
	for i := 0; i < numPositional; i++ {
		params = append(params, fmt.Sprintf("_%d peg.Value", i))
	}
	for _, l := range labels {
		params = append(params, fmt.Sprintf("%s peg.Value", safeIdent(l)))
	}
	params = append(params, "span peg.Span")

	var fb strings.Builder
	fmt.Fprintf(&fb, "func %s(%s) (peg.Value, error) {\n", fnName, strings.Join(params, ", "))
	fmt.Fprintf(&fb, "%s\n", g.indentCode(a.Code, 1))
	fmt.Fprintln(&fb, "}")
	g.actionFuncs = append(g.actionFuncs, fb.String())

	args := make([]string, 0, numPositional+len(labels)+1)
	for i := 0; i < numPositional; i++ {
		args = append(args, fmt.Sprintf("_%d", i))
	}
	for _, l := range labels {
		args = append(args, safeIdent(l))
	}
	args = append(args, "span")
	return fmt.Sprintf("return %s(%s)", fnName, strings.Join(args, ", "))
}

func (g *GoEmitter) exprProduction(p *Production, scope map[string]bool, skipName string, ind int) string {
	base := g.exprAtom(p.Expr, scope, ind)
	return g.wrapRep(base, p.Rep, ind)
}

func (g *GoEmitter) wrapRep(base string, rep *RepSpec, ind int) string {
	if rep == nil || rep.Kind == RepNone {
		return base
	}
	t1 := tabs(ind + 1)
	var b strings.Builder

	switch rep.Kind {
	case RepOptional:
		fmt.Fprintln(&b, "func() (peg.Value, error) {")
		fmt.Fprintf(&b, "%sbefore := c.Location()\n", t1)
		fmt.Fprintf(&b, "%sv, err := %s\n", t1, base)
		fmt.Fprintf(&b, "%sif err != nil {\n", t1)
		fmt.Fprintf(&b, "%s\tc.RewindTo(before)\n", t1)
		fmt.Fprintf(&b, "%s\treturn peg.NewAbsent(peg.NewSpan(before, before)), nil\n", t1)
		fmt.Fprintf(&b, "%s}\n", t1)
		fmt.Fprintf(&b, "%sreturn v, nil\n", t1)
		fmt.Fprintf(&b, "%s}()", tabs(ind))
		return b.String()
	default:
		min, max := 0, -1
		switch rep.Kind {
		case RepStar:
			min, max = 0, -1
		case RepPlus:
			min, max = 1, -1
		case RepExact:
			min, max = rep.Min, rep.Min
		case RepBounds:
			min, max = rep.Min, rep.Max
			if min < 0 {
				min = 0
			}
		}
		fmt.Fprintln(&b, "func() (peg.Value, error) {")
		fmt.Fprintf(&b, "%sstart := c.Location()\n", t1)
		fmt.Fprintf(&b, "%svar items []peg.Value\n", t1)
		fmt.Fprintf(&b, "%sfor %s {\n", t1, repLoopCond(max))
		fmt.Fprintf(&b, "%s\tbefore := c.Location()\n", t1)
		fmt.Fprintf(&b, "%s\tv, err := %s\n", t1, base)
		fmt.Fprintf(&b, "%s\tif err != nil {\n", t1)
		fmt.Fprintf(&b, "%s\t\tc.RewindTo(before)\n", t1)
		fmt.Fprintf(&b, "%s\t\tbreak\n", t1)
		fmt.Fprintf(&b, "%s\t}\n", t1)
		fmt.Fprintf(&b, "%s\tif c.Location().Offset == before.Offset {\n", t1)
		fmt.Fprintf(&b, "%s\t\titems = append(items, v)\n", t1)
		fmt.Fprintf(&b, "%s\t\tbreak\n", t1)
		fmt.Fprintf(&b, "%s\t}\n", t1)
		fmt.Fprintf(&b, "%s\titems = append(items, v)\n", t1)
		fmt.Fprintf(&b, "%s}\n", t1)
		fmt.Fprintf(&b, "%sif len(items) < %d {\n", t1, min)
		fmt.Fprintf(&b, "%s\tc.RewindTo(start)\n", t1)
		fmt.Fprintf(&b, "%s\treturn nil, fmt.Errorf(\"expected at least %d repetitions, got %%d\", len(items))\n", t1, min)
		fmt.Fprintf(&b, "%s}\n", t1)
		fmt.Fprintf(&b, "%sreturn peg.NewValueSequence(items, peg.NewSpan(start, c.Location())), nil\n", t1)
		fmt.Fprintf(&b, "%s}()", tabs(ind))
		return b.String()
	}
}

func repLoopCond(max int) string {
	if max < 0 {
		return "len(items) < 1<<31"
	}
	return fmt.Sprintf("len(items) < %d", max)
}

func (g *GoEmitter) exprAtom(n Node, scope map[string]bool, ind int) string {
	switch v := n.(type) {
	case *LiteralExpr:
		return fmt.Sprintf("peg.MatchLiteral(c, %s)", strconv.Quote(v.Value))
	case *PatternExpr:
		expr := v.Expr
		if flags := inlineReFlags(v.Flags); flags != "" {
			expr = "(?" + flags + ")" + expr
		}
		return fmt.Sprintf("peg.MatchPattern(c, regexp.MustCompile(%s))", strconv.Quote(`\A(?:`+expr+`)`))
	case *RuleCall:
		return g.exprRuleCall(v, scope)
	case *GroupNode:
		return g.exprChoices(v.Choices, scope, "", ind)
	case *ExternalExpr:
		if v.Code != "" {
			return fmt.Sprintf("func() (peg.Value, error) {\n%s\n%s}()", g.indentCode(v.Code, ind+1), tabs(ind))
		}
		if v.Name == "EOF" {
			return "peg.MatchEOF(c)"
		}
		return fmt.Sprintf("nil, fmt.Errorf(%s)", strconv.Quote("unresolved external $"+v.Name))
	default:
		return fmt.Sprintf("nil, fmt.Errorf(%s)", strconv.Quote(fmt.Sprintf("unsupported atom %T", n)))
	}
}

func (g *GoEmitter) exprRuleCall(rc *RuleCall, scope map[string]bool) string {
	if scope != nil && scope[rc.Name] {
		return fmt.Sprintf("%s(c)", rc.Name)
	}
	if arity, isParam := g.arity[rc.Name]; isParam {
		args := make([]string, len(rc.Args))
		for i, a := range rc.Args {
			if call, ok := a.(*RuleCall); ok {
				args[i] = "parse" + call.Name
			} else if lit, ok := a.(*LiteralExpr); ok && scope[lit.Value] {
				args[i] = lit.Value
			} else if ok {
				args[i] = "parse" + lit.Value
			} else {
				args[i] = fmt.Sprintf("%q", a.String())
			}
		}
		if len(args) != arity {
			return fmt.Sprintf("nil, fmt.Errorf(%s)", strconv.Quote(fmt.Sprintf("%s called with %d args, wants %d", rc.Name, len(rc.Args), arity)))
		}
		return fmt.Sprintf("parse%s(%s)(c)", rc.Name, strings.Join(args, ", "))
	}
	return fmt.Sprintf("parse%s(c)", rc.Name)
}

// indentCode prefixes every line of raw grammar-action source with
// ind tabs, so spliced user code lines up with the generated
// surrounding block instead of sitting flush against the margin.
func (g *GoEmitter) indentCode(code string, ind int) string {
	lines := strings.Split(code, "\n")
	prefix := tabs(ind)
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

var goKeywords = map[string]bool{
	"break": true, "default": true, "func": true, "interface": true, "select": true,
	"case": true, "defer": true, "go": true, "map": true, "struct": true,
	"chan": true, "else": true, "goto": true, "package": true, "switch": true,
	"const": true, "fallthrough": true, "if": true, "range": true, "type": true,
	"continue": true, "for": true, "import": true, "return": true, "var": true,
}

// safeIdent escapes a grammar label that happens to collide with a Go
// keyword (e.g. a rule labeled `range:`).
func safeIdent(label string) string {
	if goKeywords[label] {
		return "_" + label
	}
	return label
}
