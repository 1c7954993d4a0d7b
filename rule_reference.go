package peg

// Reference is a late-bound pointer to a named rule in the grammar
// environment. It resolves the name on every invocation (not once at
// construction time) so forward declarations and mutual recursion
// work without any rule owning a pointer to another (spec §4.C
// "References", §9 "Recursive grammars without cycles-in-ownership").
type Reference struct {
	RuleName string
}

func NewReference(name string) *Reference {
	return &Reference{RuleName: name}
}

func (r *Reference) Name() string { return r.RuleName }

func (r *Reference) eval(ctx *evalCtx, c *Cursor) (Value, *ParseError) {
	target, cfgErr := ctx.env.Lookup(r.RuleName)
	if cfgErr != nil {
		panic(cfgErr)
	}
	return target.eval(ctx, c)
}
