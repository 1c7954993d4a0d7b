package peg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_AdvanceTracksLineAndColumn(t *testing.T) {
	c := NewCursor("ab\ncd")
	c.advance("ab")
	assert.Equal(t, Location{Line: 1, Column: 3, Offset: 2}, c.Location())
	c.advance("\n")
	assert.Equal(t, Location{Line: 2, Column: 1, Offset: 3}, c.Location())
	c.advance("cd")
	assert.Equal(t, Location{Line: 2, Column: 3, Offset: 5}, c.Location())
}

func TestCursor_RewindToRederivesLineColumn(t *testing.T) {
	c := NewCursor("ab\ncd\nef")
	mid := c.Location()
	c.advance("ab\ncd\n")
	assert.NotEqual(t, mid, c.Location())
	c.RewindTo(mid)
	assert.Equal(t, mid, c.Location())
}

func TestCursor_StartsWithAdvancesOnMatch(t *testing.T) {
	c := NewCursor("hello world")
	require.True(t, c.StartsWith("hello"))
	assert.Equal(t, 5, c.Location().Offset)
	assert.False(t, c.StartsWith("world")) // cursor is at the space, not "world"
	assert.Equal(t, 5, c.Location().Offset, "a failed StartsWith must not move the cursor")
}

func TestCursor_HasNextAtEOF(t *testing.T) {
	c := NewCursor("x")
	assert.True(t, c.HasNext())
	c.advance("x")
	assert.False(t, c.HasNext())
}
