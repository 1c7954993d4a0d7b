package peg

import (
	"fmt"
	"strings"
)

// Value is the untyped result of a successful parse. A statically
// typed target language can't express the action return type a PEG
// grammar is free to produce (primitive, string, sequence or
// user-node), so every result in this engine flows through this sum
// of concrete kinds (spec §9, "Actions in the source grammar").
type Value interface {
	Span() Span
	String() string
	Text() string
}

// Absent is the sentinel Optional() yields when its body didn't
// match. It is distinct from nil so actions can tell "didn't match"
// apart from "matched and produced no value".
type Absent struct{ span Span }

func NewAbsent(span Span) Absent { return Absent{span: span} }
func (a Absent) Span() Span      { return a.span }
func (a Absent) String() string  { return "<absent>" }
func (a Absent) Text() string    { return "" }
func IsAbsent(v Value) bool      { _, ok := v.(Absent); return ok }

// ignored is the sentinel Lookahead and SemanticPredicate rules yield.
// It never shows up in a caller-visible result: every Sequence
// filters it out of its collected values before deciding its own
// result shape (spec §4.C "Result shape").
type ignored struct{ span Span }

func newIgnored(span Span) ignored { return ignored{span: span} }
func (i ignored) Span() Span       { return i.span }
func (i ignored) String() string   { return "<ignored>" }
func (i ignored) Text() string     { return "" }
func isIgnored(v Value) bool       { _, ok := v.(ignored); return ok }

// ValueString wraps matched literal/pattern text.
type ValueString struct {
	span  Span
	Value string
}

func NewValueString(value string, span Span) *ValueString {
	return &ValueString{Value: value, span: span}
}

func (v *ValueString) Span() Span     { return v.span }
func (v *ValueString) String() string { return fmt.Sprintf("%q@%s", v.Value, v.span) }
func (v *ValueString) Text() string   { return v.Value }

// ValueSequence wraps the ordered results of a Sequence or
// Repetition that didn't collapse to a single value.
type ValueSequence struct {
	span  Span
	Items []Value
}

func NewValueSequence(items []Value, span Span) *ValueSequence {
	return &ValueSequence{Items: items, span: span}
}

func (v *ValueSequence) Span() Span { return v.span }

func (v *ValueSequence) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i, item := range v.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(item.String())
	}
	b.WriteString("]")
	return b.String()
}

func (v *ValueSequence) Text() string {
	var b strings.Builder
	for _, item := range v.Items {
		b.WriteString(item.Text())
	}
	return b.String()
}

// ValueNode is what a user action typically constructs: a named node
// wrapping zero or more child values, the shape a grammar's actions
// use to build an AST of their own.
type ValueNode struct {
	span  Span
	Name  string
	Items []Value
}

func NewValueNode(name string, items []Value, span Span) *ValueNode {
	return &ValueNode{Name: name, Items: items, span: span}
}

func (v *ValueNode) Span() Span { return v.span }

func (v *ValueNode) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(", v.Name)
	for i, item := range v.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(item.String())
	}
	b.WriteString(")")
	return b.String()
}

func (v *ValueNode) Text() string {
	var b strings.Builder
	for _, item := range v.Items {
		b.WriteString(item.Text())
	}
	return b.String()
}
