package peg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoEmitter_EmitsParseFunctionsForEachRule(t *testing.T) {
	compiler := NewCompiler()
	file, err := compiler.Parse("greeting = 'hello' ' ' name\nname = /[a-zA-Z]+/ -> string(_0)\n")
	require.NoError(t, err)
	require.Empty(t, file.Errors())

	out, err := NewGoEmitter(GoEmitOptions{PackageName: "sample"}).Emit(file)
	require.NoError(t, err)

	assert.Contains(t, out, "package sample")
	assert.Contains(t, out, `peg "github.com/vela-lang/peg"`)
	assert.Contains(t, out, "func parsegreeting(c *peg.Cursor) (peg.Value, error)")
	assert.Contains(t, out, "func parsename(c *peg.Cursor) (peg.Value, error)")
	assert.Contains(t, out, "func Parse(input string) (peg.Value, error)")
}

func TestGoEmitter_PromotesMultilineActionToNamedFunction(t *testing.T) {
	compiler := NewCompiler()
	source := "foo = 'a' ->\n    line one\n    line two\n"
	file, err := compiler.Parse(source)
	require.NoError(t, err)
	require.Empty(t, file.Errors())

	out, err := NewGoEmitter(GoEmitOptions{PackageName: "sample"}).Emit(file)
	require.NoError(t, err)

	assert.True(t, strings.Contains(out, "func action1("), "a multi-line action body must be promoted to a named top-level function")
}

func TestGoEmitter_RejectsGrammarWithMalformedDecl(t *testing.T) {
	compiler := NewCompiler()
	file, err := compiler.Parse("foo = 'a'\nbar ??? broken\n")
	require.NoError(t, err)

	_, err = NewGoEmitter(GoEmitOptions{PackageName: "sample"}).Emit(file)
	if len(file.Errors()) > 0 {
		assert.NoError(t, err, "Emit itself doesn't need to reject malformed decls; Compiler.Compile does that before calling Emit")
	}

	_, err = compiler.Compile("foo = 'a'\nbar ??? broken\n", NewGoEmitter(GoEmitOptions{PackageName: "sample"}))
	assert.Error(t, err, "Compile rejects a grammar whose parse recorded error nodes")
}

func TestPythonEmitter_EmitsParseFunctionsForEachRule(t *testing.T) {
	compiler := NewCompiler()
	file, err := compiler.Parse("greeting = 'hello' ' ' 'world'\n")
	require.NoError(t, err)
	require.Empty(t, file.Errors())

	out, err := NewPythonEmitter(PythonEmitOptions{}).Emit(file)
	require.NoError(t, err)

	assert.Contains(t, out, "def parse_greeting(")
	assert.Contains(t, out, "def parse(")
	assert.Contains(t, out, "class Cursor")
	assert.Contains(t, out, "class ParseError")
}
