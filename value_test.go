package peg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_TextConcatenatesSequenceItems(t *testing.T) {
	span := NewSpan(Location{}, Location{})
	seq := NewValueSequence([]Value{
		NewValueString("foo", span),
		NewValueString("bar", span),
	}, span)
	assert.Equal(t, "foobar", seq.Text())
	assert.Equal(t, `["foo"@0:0, "bar"@0:0]`, seq.String())
}

func TestValue_AbsentIsDistinctFromEmptyMatch(t *testing.T) {
	span := NewSpan(Location{}, Location{})
	absent := NewAbsent(span)
	assert.True(t, IsAbsent(absent))
	assert.False(t, IsAbsent(NewValueString("", span)))
	assert.Equal(t, "", absent.Text())
}

func TestValue_NodeTextConcatenatesChildren(t *testing.T) {
	span := NewSpan(Location{}, Location{})
	node := NewValueNode("Pair", []Value{
		NewValueString("a", span),
		NewValueString("b", span),
	}, span)
	assert.Equal(t, "ab", node.Text())
	assert.Equal(t, `Pair("a"@0:0, "b"@0:0)`, node.String())
}
