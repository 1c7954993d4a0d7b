package peg

import (
	"regexp"
	"strings"
)

// Cursor tracks the read position over a sequence of runes. It is
// the only mutable piece of state a parse touches; every Rule either
// advances it forward or restores it to an earlier position it
// recorded before attempting a match.
//
// Invariant: offset is always within [0, len(input)].
type Cursor struct {
	input  []rune
	offset int
	line   int
	column int
}

// NewCursor builds a Cursor positioned at the start of text.
func NewCursor(text string) *Cursor {
	return &Cursor{input: []rune(text), line: 1, column: 1}
}

// Location returns the cursor's current position.
func (c *Cursor) Location() Location {
	return Location{Line: c.line, Column: c.column, Offset: c.offset}
}

// Len returns the number of runes in the input.
func (c *Cursor) Len() int { return len(c.input) }

// HasNext reports whether there is at least one more rune to read.
func (c *Cursor) HasNext() bool { return c.offset < len(c.input) }

// Current returns the rune under the cursor and true, or (0, false)
// at end of input.
func (c *Cursor) Current() (rune, bool) {
	if !c.HasNext() {
		return 0, false
	}
	return c.input[c.offset], true
}

// Remainder returns the unconsumed tail of the input, used by the
// top-level parse to report "input not fully consumed".
func (c *Cursor) Remainder() string {
	return string(c.input[c.offset:])
}

// StartsWith reports whether s occurs at the cursor, and if so
// advances past it.
func (c *Cursor) StartsWith(s string) bool {
	runes := []rune(s)
	if c.offset+len(runes) > len(c.input) {
		return false
	}
	for i, r := range runes {
		if c.input[c.offset+i] != r {
			return false
		}
	}
	c.advance(s)
	return true
}

// Match runs re anchored at the cursor and, on success, returns the
// matched text and advances past it.
func (c *Cursor) Match(re *regexp.Regexp) (string, bool) {
	rest := string(c.input[c.offset:])
	loc := re.FindStringIndex(rest)
	if loc == nil || loc[0] != 0 {
		return "", false
	}
	matched := rest[:loc[1]]
	c.advance(matched)
	return matched, true
}

// advance moves the cursor past text, updating line/column. A
// newline resets the column; the column after a newline is the
// number of runes following the last '\n' in text, plus one.
func (c *Cursor) advance(text string) {
	n := len([]rune(text))
	c.offset += n
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		c.line += strings.Count(text, "\n")
		c.column = len([]rune(text[idx+1:])) + 1
	} else {
		c.column += n
	}
}

// RewindTo restores the cursor to a previously recorded Location. It
// recomputes line/column by scanning backward for the previous
// newline rather than trusting the caller's line/column fields,
// matching the spec's requirement that rewind exactly restores all
// three fields from the absolute offset.
func (c *Cursor) RewindTo(loc Location) {
	if loc.Offset > c.offset {
		panic("peg: cannot rewind forward")
	}
	for _, r := range c.input[loc.Offset:c.offset] {
		if r == '\n' {
			c.line--
		}
	}
	c.offset = loc.Offset
	col := 1
	for i := loc.Offset - 1; i >= 0 && c.input[i] != '\n'; i-- {
		col++
	}
	c.column = col
}
