package peg

// AssocBuilder combines a matched operator value with its left and
// right operand values into whatever node shape the caller wants.
// Ported from original_source/pwpeg/helpers.py's `_associative`
// "builder" callback.
type AssocBuilder func(op, lhs, rhs Value) Value

// defaultAssocBuilder wraps an operator and its two operands as a
// binary ValueNode tagged by the operator's matched text, the same
// default original_source/pwpeg/helpers.py falls back to
// (`lambda op, lhs, rhs: (op, lhs, rhs)`).
func defaultAssocBuilder(op, lhs, rhs Value) Value {
	return NewValueNode(op.Text(), []Value{lhs, rhs}, NewSpan(lhs.Span().Start, rhs.Span().End))
}

// LeftAssociative matches Production (Operator Production)* and folds
// the result left-to-right, e.g. tokens a+b-c fold to
// Builder("-", Builder("+", a, b), c). A nil Builder uses
// defaultAssocBuilder.
func LeftAssociative(name string, production, operator Rule, builder AssocBuilder) Rule {
	return associative(name, production, operator, builder, false)
}

// RightAssociative mirrors LeftAssociative, folding right-to-left:
// a+b-c folds to Builder("+", a, Builder("-", b, c)).
func RightAssociative(name string, production, operator Rule, builder AssocBuilder) Rule {
	return associative(name, production, operator, builder, true)
}

func associative(name string, production, operator Rule, builder AssocBuilder, right bool) Rule {
	if builder == nil {
		builder = defaultAssocBuilder
	}

	pair := NewSequence(name+"Pair", []Rule{operator, production})
	rest := NewRepetition(name+"Rest", 0, Unbounded, pair)

	seq := NewSequence(name, []Rule{production, rest})
	seq.Action = func(vs []Value, span Span) Value {
		restItems := vs[1].(*ValueSequence).Items
		if len(restItems) == 0 {
			return vs[0]
		}

		operands := make([]Value, 0, len(restItems)+1)
		operators := make([]Value, 0, len(restItems))
		operands = append(operands, vs[0])
		for _, it := range restItems {
			p := it.(*ValueSequence)
			operators = append(operators, p.Items[0])
			operands = append(operands, p.Items[1])
		}

		if right {
			acc := operands[len(operands)-1]
			for i := len(operators) - 1; i >= 0; i-- {
				acc = builder(operators[i], operands[i], acc)
			}
			return acc
		}

		acc := operands[0]
		for i, op := range operators {
			acc = builder(op, acc, operands[i+1])
		}
		return acc
	}
	return seq
}
