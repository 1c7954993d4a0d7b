package peg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompiler_ParseRoundTripsLenAction(t *testing.T) {
	compiler := NewCompiler()
	file, err := compiler.Parse("foo = 'x'+ -> len(_0)\n")
	require.NoError(t, err)
	require.Empty(t, file.Errors())
	require.Len(t, file.Decls, 1)

	decl, ok := file.Decls[0].(*RuleDecl)
	require.True(t, ok)
	assert.Equal(t, "foo", decl.Name)
	require.Len(t, decl.Choices.Groups, 1)

	group := decl.Choices.Groups[0]
	require.NotNil(t, group.Action)
	assert.Equal(t, "len(_0)", group.Action.Code)
}

func TestCompiler_BuildRulesParsesSimpleGrammar(t *testing.T) {
	compiler := NewCompiler()
	file, err := compiler.Parse("greeting = 'hello' ' ' 'world'\n")
	require.NoError(t, err)
	require.Empty(t, file.Errors())

	env, err := compiler.BuildRules(file)
	require.NoError(t, err)

	rule, cfgErr := env.Lookup("greeting")
	require.Nil(t, cfgErr)

	_, perr := NewParser(rule, env).Parse("hello world")
	require.NoError(t, perr)

	_, perr = NewParser(rule, env).Parse("hello there")
	assert.Error(t, perr)
}

func TestCompiler_AddBuiltinsSplicesEOFAndCharacterClasses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Grammar.AddBuiltins = true
	compiler := NewCompilerWithConfig(cfg)
	file, err := compiler.Parse("word = Letter+\n")
	require.NoError(t, err)

	env, err := compiler.BuildRules(file)
	require.NoError(t, err)
	rule, cfgErr := env.Lookup("word")
	require.Nil(t, cfgErr)

	_, perr := NewParser(rule, env).Parse("abc")
	assert.NoError(t, perr, "Letter should resolve to the spliced builtin without the grammar declaring it")

	cfg.Grammar.AddBuiltins = false
	compiler = NewCompilerWithConfig(cfg)
	file, err = compiler.Parse("word = Letter+\n")
	require.NoError(t, err)
	env, err = compiler.BuildRules(file)
	require.NoError(t, err, "building rules never fails by itself; the unbound reference only surfaces on eval")

	rule, cfgErr = env.Lookup("word")
	require.Nil(t, cfgErr)
	_, perr = NewParser(rule, env).Parse("abc")
	require.Error(t, perr, "with AddBuiltins off, Letter is never bound and the reference fails at eval time")
	_, ok := perr.(*ConfigError)
	assert.True(t, ok, "an unresolved Reference reports a ConfigError, not a recoverable parse failure")
}

func TestCompiler_HandleSpacesDefaultsAnImplicitWhitespaceSkip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Grammar.HandleSpaces = true
	compiler := NewCompilerWithConfig(cfg)
	file, err := compiler.Parse("greet = 'hello' 'world'\n")
	require.NoError(t, err)
	env, err := compiler.BuildRules(file)
	require.NoError(t, err)
	rule, cfgErr := env.Lookup("greet")
	require.Nil(t, cfgErr)

	_, perr := NewParser(rule, env).Parse("hello world")
	assert.NoError(t, perr, "a rule with no explicit skip clause should inherit the default whitespace skip")

	cfg.Grammar.HandleSpaces = false
	compiler = NewCompilerWithConfig(cfg)
	file, err = compiler.Parse("greet = 'hello' 'world'\n")
	require.NoError(t, err)
	env, err = compiler.BuildRules(file)
	require.NoError(t, err)
	rule, cfgErr = env.Lookup("greet")
	require.Nil(t, cfgErr)

	_, perr = NewParser(rule, env).Parse("hello world")
	assert.Error(t, perr, "without HandleSpaces a rule declared without a skip clause requires adjacent literals")
	_, perr = NewParser(rule, env).Parse("helloworld")
	assert.NoError(t, perr)
}

func TestCompiler_IndentedBlockStopsAtMismatchedPrefix(t *testing.T) {
	compiler := NewCompiler()
	source := "foo = 'a' ->\n    first line\n  second line\n"
	file, err := compiler.Parse(source)
	require.NoError(t, err)

	require.Len(t, file.Decls, 2, "the mismatched second line can't continue the block or form a new rule")
	decl, ok := file.Decls[0].(*RuleDecl)
	require.True(t, ok)
	require.NotNil(t, decl.Choices.Groups[0].Action)
	assert.Equal(t, "first line", decl.Choices.Groups[0].Action.Code)

	require.Len(t, file.Errors(), 1)
}
