package peg

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// foldingBuilder renders a binary node as "(lhs op rhs)" text, so
// nesting order is visible without having to parse Value.String()'s
// span-annotated leaf format.
func foldingBuilder(op, lhs, rhs Value) Value {
	span := NewSpan(lhs.Span().Start, rhs.Span().End)
	return NewValueString(fmt.Sprintf("(%s%s%s)", lhs.Text(), op.Text(), rhs.Text()), span)
}

func TestLeftAssociative_FoldsLeftToRight(t *testing.T) {
	digit := NewPattern0(`[0-9]`)
	op := NewChoice("op", []Rule{NewLiteral("+"), NewLiteral("-")})

	expr := LeftAssociative("expr", digit, op, foldingBuilder)
	v, err := parseWith(t, expr, Environment{}, "1+2-3")
	require.NoError(t, err)
	assert.Equal(t, "((1+2)-3)", v.Text())
}

func TestRightAssociative_FoldsRightToLeft(t *testing.T) {
	digit := NewPattern0(`[0-9]`)
	op := NewChoice("op", []Rule{NewLiteral("+"), NewLiteral("-")})

	expr := RightAssociative("expr", digit, op, foldingBuilder)
	v, err := parseWith(t, expr, Environment{}, "1+2-3")
	require.NoError(t, err)
	assert.Equal(t, "(1+(2-3))", v.Text())
}

func TestLeftAssociative_NoOperatorReturnsBareOperand(t *testing.T) {
	digit := NewPattern0(`[0-9]`)
	op := NewLiteral("+")

	expr := LeftAssociative("expr", digit, op, nil)
	v, err := parseWith(t, expr, Environment{}, "7")
	require.NoError(t, err)
	assert.Equal(t, "7", v.Text())
}

func TestLeftAssociative_CustomBuilder(t *testing.T) {
	digit := NewPattern0(`[0-9]`)
	op := NewLiteral("+")

	var calls int
	builder := func(op, lhs, rhs Value) Value {
		calls++
		return NewValueString(lhs.Text()+op.Text()+rhs.Text(), NewSpan(lhs.Span().Start, rhs.Span().End))
	}

	expr := LeftAssociative("expr", digit, op, builder)
	v, err := parseWith(t, expr, Environment{}, "1+2+3")
	require.NoError(t, err)
	assert.Equal(t, "1+2+3", v.Text())
	assert.Equal(t, 2, calls)
}
