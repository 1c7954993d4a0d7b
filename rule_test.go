package peg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseWith(t *testing.T, r Rule, env Environment, input string) (Value, error) {
	t.Helper()
	return NewParser(r, env).Parse(input)
}

func TestChoice_OrderedLeftBias(t *testing.T) {
	choice := NewChoice("bOrC", []Rule{NewLiteral("b"), NewLiteral("c")})
	v, err := parseWith(t, choice, Environment{}, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", v.Text())

	v, err = parseWith(t, choice, Environment{}, "c")
	require.NoError(t, err)
	assert.Equal(t, "c", v.Text())

	_, err = parseWith(t, choice, Environment{}, "d")
	assert.Error(t, err)

	// When both alternatives match, the first one listed wins.
	overlap := NewChoice("aOrAb", []Rule{NewLiteral("a"), NewLiteral("ab")})
	advance, v, err := NewParser(overlap, Environment{}).PartialParse("ab")
	require.NoError(t, err)
	assert.Equal(t, 1, advance)
	assert.Equal(t, "a", v.Text())
}

func TestRepetition_OneOrMoreGreedy(t *testing.T) {
	rep := NewRepetition("as", 1, Unbounded, NewLiteral("a"))
	advance, v, err := NewParser(rep, Environment{}).PartialParse("aaab")
	require.NoError(t, err)
	assert.Equal(t, 3, advance)
	seq, ok := v.(*ValueSequence)
	require.True(t, ok)
	assert.Len(t, seq.Items, 3)
}

func TestRepetition_AtLeastFailsShortOfMinimum(t *testing.T) {
	rep := NewRepetition("as", 2, Unbounded, NewLiteral("a"))
	_, err := parseWith(t, rep, Environment{}, "a")
	assert.Error(t, err)
}

func TestSequence_WithOptional(t *testing.T) {
	seq := NewSequence("ab?c", []Rule{NewLiteral("a"), NewOptional("b?", NewLiteral("b")), NewLiteral("c")})
	v, err := parseWith(t, seq, Environment{}, "ac")
	require.NoError(t, err)
	vs, ok := v.(*ValueSequence)
	require.True(t, ok)
	require.Len(t, vs.Items, 3)
	assert.True(t, IsAbsent(vs.Items[1]))

	v, err = parseWith(t, seq, Environment{}, "abc")
	require.NoError(t, err)
	vs, ok = v.(*ValueSequence)
	require.True(t, ok)
	assert.Equal(t, "b", vs.Items[1].Text())
}

func TestLookahead_NeverAdvancesCursor(t *testing.T) {
	notA := NewLookahead("!a", NewLiteral("a"), false)
	advance, _, err := NewParser(notA, Environment{}).PartialParse("b")
	require.NoError(t, err)
	assert.Equal(t, 0, advance)

	andA := NewLookahead("&a", NewLiteral("a"), true)
	advance, _, err = NewParser(andA, Environment{}).PartialParse("a")
	require.NoError(t, err)
	assert.Equal(t, 0, advance, "positive lookahead must not consume either")
}

func TestBalanced_MatchesNestedParens(t *testing.T) {
	b := NewBalanced("parens", '(', ')')
	v, err := parseWith(t, b, Environment{}, "(a(b)c)")
	require.NoError(t, err)
	assert.Equal(t, "a(b)c", v.Text())

	_, err = parseWith(t, b, Environment{}, "(a(b)c")
	assert.Error(t, err)
}

func TestReference_ResolvesForwardDeclaration(t *testing.T) {
	env := Environment{}
	ref := NewReference("Later")
	v, err := parseWith(t, ref, env, "z")
	assert.Error(t, err, "an unbound reference is a config error, not a plain parse failure")
	_ = v

	require.NoError(t, env.Bind("Later", NewLiteral("z")))
	v, err = parseWith(t, ref, env, "z")
	require.NoError(t, err)
	assert.Equal(t, "z", v.Text())
}

func TestSemanticPredicate_InspectsAccumulatedValues(t *testing.T) {
	var seen []Value
	predicate := NewSemanticPredicate("len==2", func(values []Value) bool {
		seen = values
		return len(values) == 2
	})
	seq := NewSequence("ab&c", []Rule{NewLiteral("a"), NewLiteral("b"), predicate, NewLiteral("c")})

	v, err := parseWith(t, seq, Environment{}, "abc")
	require.NoError(t, err)
	require.Len(t, seen, 2, "predicate must see exactly the two items the sequence collected before it")
	assert.Equal(t, "a", seen[0].Text())
	assert.Equal(t, "b", seen[1].Text())
	assert.Equal(t, "abc", v.Text())

	failing := NewSemanticPredicate("len==99", func(values []Value) bool { return len(values) == 99 })
	seq2 := NewSequence("ab&c2", []Rule{NewLiteral("a"), NewLiteral("b"), failing, NewLiteral("c")})
	_, err = parseWith(t, seq2, Environment{}, "abc")
	assert.Error(t, err, "a predicate that doesn't hold over the accumulated values must fail the sequence")
}

func TestParser_FurthestFailureReporting(t *testing.T) {
	top := NewChoice("Top", []Rule{
		NewSequence("Seq", []Rule{NewLiteral("a"), NewLiteral("1")}),
		NewLiteral("b"),
	})

	parser := NewParser(top, Environment{})
	_, err := parser.Parse("az")
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, 1, perr.At.Offset, "default reporting surfaces the deepest-reached sub-cause")

	parser.SetFurthestFailureReporting(false)
	_, err = parser.Parse("az")
	require.Error(t, err)
	perr, ok = err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, 0, perr.At.Offset, "disabled reporting surfaces the literal top-level Choice failure instead")
	assert.Contains(t, perr.Message, "all alternatives failed")
}

func TestFailure_LeavesCursorUntouched(t *testing.T) {
	seq := NewSequence("abc", []Rule{NewLiteral("a"), NewLiteral("b"), NewLiteral("c")})
	c := NewCursor("abx")
	_, perr := seq.eval(&evalCtx{env: Environment{}}, c)
	require.Error(t, perr)
	assert.Equal(t, 0, c.Location().Offset)
}
