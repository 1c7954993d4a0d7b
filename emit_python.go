package peg

import (
	"fmt"
	"strconv"
	"strings"
)

// PythonEmitOptions configures the Python emitter.
type PythonEmitOptions struct {
	ModuleDocstring string
}

// PythonEmitter is the secondary emit target (SPEC_FULL §4.G): a much
// smaller surface than GoEmitter, grounded on
// clarete-langlang/go/gen_py.go, which itself only ever emitted
// literals, sequences, choice and repetition for its target — labeled
// productions, parametrised rules and semantic predicates are left to
// the Go target, which is the one this spec treats as primary.
type PythonEmitter struct {
	opt PythonEmitOptions
}

func NewPythonEmitter(opt PythonEmitOptions) *PythonEmitter { return &PythonEmitter{opt: opt} }

func (p *PythonEmitter) Emit(file *File) (string, error) {
	var out strings.Builder
	fmt.Fprintln(&out, "# Code generated by the peg compiler. DO NOT EDIT.")
	if p.opt.ModuleDocstring != "" {
		fmt.Fprintf(&out, "\"\"\"%s\"\"\"\n", p.opt.ModuleDocstring)
	}
	fmt.Fprintln(&out, "import re")
	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "class ParseError(Exception):")
	fmt.Fprintln(&out, "    pass")
	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "class Cursor:")
	fmt.Fprintln(&out, "    def __init__(self, text):")
	fmt.Fprintln(&out, "        self.text = text")
	fmt.Fprintln(&out, "        self.offset = 0")
	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "    def starts_with(self, s):")
	fmt.Fprintln(&out, "        if self.text.startswith(s, self.offset):")
	fmt.Fprintln(&out, "            self.offset += len(s)")
	fmt.Fprintln(&out, "            return True")
	fmt.Fprintln(&out, "        return False")
	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "    def match(self, regex):")
	fmt.Fprintln(&out, "        m = regex.match(self.text, self.offset)")
	fmt.Fprintln(&out, "        if m is None:")
	fmt.Fprintln(&out, "            return None")
	fmt.Fprintln(&out, "        self.offset = m.end()")
	fmt.Fprintln(&out, "        return m.group(0)")
	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "def _lit(c, s):")
	fmt.Fprintln(&out, "    if not c.starts_with(s):")
	fmt.Fprintln(&out, "        raise ParseError(f'expected {s!r} at {c.offset}')")
	fmt.Fprintln(&out, "    return s")
	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "def _pat(c, regex):")
	fmt.Fprintln(&out, "    v = c.match(regex)")
	fmt.Fprintln(&out, "    if v is None:")
	fmt.Fprintln(&out, "        raise ParseError(f'expected /{regex.pattern}/ at {c.offset}')")
	fmt.Fprintln(&out, "    return v")
	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "def _opt(c, body):")
	fmt.Fprintln(&out, "    before = c.offset")
	fmt.Fprintln(&out, "    try:")
	fmt.Fprintln(&out, "        return body()")
	fmt.Fprintln(&out, "    except ParseError:")
	fmt.Fprintln(&out, "        c.offset = before")
	fmt.Fprintln(&out, "        return None")
	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "def _rep(c, body, minimum):")
	fmt.Fprintln(&out, "    items = []")
	fmt.Fprintln(&out, "    while True:")
	fmt.Fprintln(&out, "        before = c.offset")
	fmt.Fprintln(&out, "        try:")
	fmt.Fprintln(&out, "            items.append(body())")
	fmt.Fprintln(&out, "        except ParseError:")
	fmt.Fprintln(&out, "            c.offset = before")
	fmt.Fprintln(&out, "            break")
	fmt.Fprintln(&out, "        if c.offset == before:")
	fmt.Fprintln(&out, "            break")
	fmt.Fprintln(&out, "    if len(items) < minimum:")
	fmt.Fprintln(&out, "        raise ParseError(f'expected at least {minimum} repetitions, got {len(items)}')")
	fmt.Fprintln(&out, "    return items")
	fmt.Fprintln(&out)

	if file.HasHeader {
		fmt.Fprintln(&out, file.HeaderCode)
		fmt.Fprintln(&out)
	}

	var topName string
	for _, d := range file.Decls {
		decl, ok := d.(*RuleDecl)
		if !ok {
			continue
		}
		if topName == "" {
			topName = decl.Name
		}
		if decl.IsParametrised() {
			fmt.Fprintf(&out, "# rule %q is parametrised; the Python target does not compile\n", decl.Name)
			fmt.Fprintln(&out, "# parametrised rules, only the Go target does (see DESIGN.md).")
			continue
		}
		p.emitDecl(&out, decl)
	}

	if topName != "" {
		fmt.Fprintln(&out, "def parse(text):")
		fmt.Fprintln(&out, "    c = Cursor(text)")
		fmt.Fprintf(&out, "    v = parse_%s(c)\n", strings.ToLower(topName))
		fmt.Fprintln(&out, "    if c.offset != len(c.text):")
		fmt.Fprintln(&out, "        raise ParseError(f'input not fully consumed at {c.offset}')")
		fmt.Fprintln(&out, "    return v")
		fmt.Fprintln(&out)
	}

	if file.HasFooter {
		fmt.Fprintln(&out, file.FooterCode)
	}

	return out.String(), nil
}

func (p *PythonEmitter) emitDecl(out *strings.Builder, decl *RuleDecl) {
	fmt.Fprintf(out, "def parse_%s(c):\n", strings.ToLower(decl.Name))
	if len(decl.Choices.Groups) == 1 {
		p.emitGroup(out, decl.Choices.Groups[0], 1)
	} else {
		fmt.Fprintln(out, "    start = c.offset")
		for i, grp := range decl.Choices.Groups {
			fmt.Fprintf(out, "    try:\n")
			p.emitGroupBody(out, grp, 2)
			fmt.Fprintln(out, "    except ParseError:")
			fmt.Fprintln(out, "        c.offset = start")
			if i == len(decl.Choices.Groups)-1 {
				fmt.Fprintln(out, "        raise")
			}
		}
	}
	fmt.Fprintln(out)
}

func (p *PythonEmitter) emitGroup(out *strings.Builder, g *ProductionGroup, ind int) {
	p.emitGroupBody(out, g, ind)
}

func (p *PythonEmitter) emitGroupBody(out *strings.Builder, g *ProductionGroup, ind int) {
	t := strings.Repeat("    ", ind)
	fmt.Fprintf(out, "%sitems = []\n", t)
	for i, it := range g.Items {
		prod, ok := it.(*Production)
		if !ok {
			fmt.Fprintf(out, "%s# look-ahead/predicate items are not compiled for the Python target\n", t)
			continue
		}
		fmt.Fprintf(out, "%sitems.append(%s)\n", t, p.exprProduction(prod))
		_ = i
	}
	if g.Action != nil && !g.Action.HasNewline() && g.Action.Kind == ActionArrowLine {
		fmt.Fprintf(out, "%sreturn (lambda _0=items[0] if items else None: %s)()\n", t, g.Action.Code)
	} else {
		fmt.Fprintf(out, "%sreturn items[0] if len(items) == 1 else items\n", t)
	}
}

func (p *PythonEmitter) exprProduction(prod *Production) string {
	base := p.exprAtom(prod.Expr)
	if prod.Rep == nil {
		return base
	}
	switch prod.Rep.Kind {
	case RepStar:
		return fmt.Sprintf("_rep(c, lambda: %s, 0)", base)
	case RepPlus:
		return fmt.Sprintf("_rep(c, lambda: %s, 1)", base)
	case RepOptional:
		return fmt.Sprintf("_opt(c, lambda: %s)", base)
	default:
		return fmt.Sprintf("_rep(c, lambda: %s, %d)", base, prod.Rep.Min)
	}
}

func (p *PythonEmitter) exprAtom(n Node) string {
	switch v := n.(type) {
	case *LiteralExpr:
		return fmt.Sprintf("_lit(c, %s)", pyStr(v.Value))
	case *PatternExpr:
		return fmt.Sprintf("_pat(c, re.compile(%s))", pyStr(v.Expr))
	case *RuleCall:
		return fmt.Sprintf("parse_%s(c)", strings.ToLower(v.Name))
	case *GroupNode:
		if len(v.Choices.Groups) == 1 {
			var b strings.Builder
			for _, it := range v.Choices.Groups[0].Items {
				if prod, ok := it.(*Production); ok {
					b.WriteString(p.exprProduction(prod))
				}
			}
			return b.String()
		}
		return "None  # nested choice inside a group is not compiled for the Python target"
	default:
		return "None  # unsupported atom for the Python target"
	}
}

func pyStr(s string) string { return strconv.Quote(s) }
