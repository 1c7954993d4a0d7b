package peg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelimitedBy_UnescapesDelimiterInsideContent(t *testing.T) {
	d := NewDelimitedBy("quoted", '\'', '\\')
	v, err := parseWith(t, d, Environment{}, `'it\'s fine'`)
	require.NoError(t, err)
	assert.Equal(t, "it's fine", v.Text())

	_, err = parseWith(t, d, Environment{}, `'unterminated`)
	assert.Error(t, err)
}

func TestSeparated_CollectsItemsAndDropsSeparators(t *testing.T) {
	digit := NewPattern0(`[0-9]`)
	comma := NewLiteral(",")

	list := OneOrMoreSeparated("digits", digit, comma)
	v, err := parseWith(t, list, Environment{}, "1,2,3")
	require.NoError(t, err)
	seq, ok := v.(*ValueSequence)
	require.True(t, ok)
	require.Len(t, seq.Items, 3)
	assert.Equal(t, "1", seq.Items[0].Text())
	assert.Equal(t, "3", seq.Items[2].Text())

	_, err = parseWith(t, list, Environment{}, "")
	assert.Error(t, err, "OneOrMoreSeparated requires at least one item")
}

func TestZeroOrMoreSeparated_MatchesEmptyInputAsEmptySequence(t *testing.T) {
	digit := NewPattern0(`[0-9]`)
	comma := NewLiteral(",")

	list := ZeroOrMoreSeparated("digits", digit, comma)
	v, err := parseWith(t, list, Environment{}, "")
	require.NoError(t, err)
	seq, ok := v.(*ValueSequence)
	require.True(t, ok)
	assert.Empty(t, seq.Items)
}

func TestExactlySeparated_RejectsWrongCount(t *testing.T) {
	digit := NewPattern0(`[0-9]`)
	comma := NewLiteral(",")

	three := ExactlySeparated("threeDigits", digit, comma, 3)
	v, err := parseWith(t, three, Environment{}, "1,2,3")
	require.NoError(t, err)
	assert.Equal(t, "123", v.Text())

	_, _, perr := NewParser(three, Environment{}).PartialParse("1,2")
	assert.Error(t, perr)
}
