package peg

import "regexp"

// MatchLiteral, MatchPattern and MatchEOF are the small runtime calls
// a generated parser (emit_go.go) makes for the three atoms a grammar
// rule can compile down to. Each delegates straight to the same Rule
// implementation the interpreter uses, so a compiled grammar and an
// interpreted one (Compiler.BuildRules) can never silently drift
// apart on what "matches a literal" or "matches a pattern" means.
func MatchLiteral(c *Cursor, s string) (Value, error) {
	v, err := (&Literal{Value: s, name: "literal"}).eval(&evalCtx{}, c)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func MatchPattern(c *Cursor, re *regexp.Regexp) (Value, error) {
	v, err := (&Pattern{Re: re, name: "pattern"}).eval(&evalCtx{}, c)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// MatchEOF matches the end of input and consumes nothing, the runtime
// behind the built-in `$EOF` external a grammar can reference.
func MatchEOF(c *Cursor) (Value, error) {
	any := &Pattern{Re: regexp.MustCompile(`\A(?s:.)`), name: "any"}
	v, err := NewLookahead("EOF", any, false).eval(&evalCtx{}, c)
	if err != nil {
		return nil, err
	}
	return v, nil
}
