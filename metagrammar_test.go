package peg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetaGrammar_ParsesSimpleRuleDecl(t *testing.T) {
	mg := NewMetaGrammar()
	val, err := mg.Parser().Parse("digit = /[0-9]/\n")
	require.NoError(t, err)

	nv, ok := val.(nodeValue)
	require.True(t, ok)
	file, ok := nv.n.(*File)
	require.True(t, ok)
	require.Len(t, file.Decls, 1)

	decl, ok := file.Decls[0].(*RuleDecl)
	require.True(t, ok)
	assert.Equal(t, "digit", decl.Name)
	assert.Empty(t, file.Errors())
}

func TestMetaGrammar_IndentedBlockLocksFirstLinePrefix(t *testing.T) {
	mg := NewMetaGrammar()
	source := "foo = 'a' ->\n    line one\n    line two\n"
	val, err := mg.Parser().Parse(source)
	require.NoError(t, err)

	file := val.(nodeValue).n.(*File)
	require.Empty(t, file.Errors())
	require.Len(t, file.Decls, 1)

	decl := file.Decls[0].(*RuleDecl)
	action := decl.Choices.Groups[0].Action
	require.NotNil(t, action)
	assert.Equal(t, "line one\nline two", action.Code)
	assert.True(t, action.HasNewline())
}

func TestMetaGrammar_IndentedBlockStopsOnMismatchedPrefix(t *testing.T) {
	mg := NewMetaGrammar()
	source := "foo = 'a' ->\n    first line\n  second line\n"
	val, err := mg.Parser().Parse(source)
	require.NoError(t, err)

	file := val.(nodeValue).n.(*File)
	decl := file.Decls[0].(*RuleDecl)
	action := decl.Choices.Groups[0].Action
	require.NotNil(t, action)
	assert.Equal(t, "first line", action.Code)
	assert.False(t, action.HasNewline())

	// The mismatched second line couldn't continue the block or start
	// a new rule, so it surfaces as a recovered ErrorNode.
	require.Len(t, file.Errors(), 1)
}
