package ops

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// MaximumOp represents the elementwise maximum: output = max(a, b).
//
// Backward pass: the gradient flows to whichever operand was selected. Where a == b the gradient is
// split evenly between them:
//
//	mask_a = (a == y) / (1 + (a == b))
type MaximumOp[T any] struct {
	a, b engine.Expression[T]
}

// Maximum returns max(a, b) elementwise.
func Maximum[T any](a, b engine.Expression[T]) *MaximumOp[T] {
	return &MaximumOp[T]{a: a, b: b}
}

// ReLU returns max(x, 0).
func ReLU[T any](x engine.Expression[T]) *MaximumOp[T] {
	return Maximum[T](x, Scalar[T](0))
}

// Eval implements engine.Expression.
func (op *MaximumOp[T]) Eval(p *engine.Pass[T]) *engine.Node[T] {
	a, b := p.Eval(op.a), p.Eval(op.b)
	cmp := comparison("maximum", p.Backend())
	return p.NewNode(cmp.Maximum(a.Value, b.Value), operands(a, b), maximumVJP[T]{a: a.Value, b: b.Value})
}

type maximumVJP[T any] struct {
	a, b T
}

func (v maximumVJP[T]) VJP(b value.Accumulator[T], g T, y, operand *engine.Node[T], argnum int) T {
	var selected T
	switch argnum {
	case 0:
		selected = v.a
	case 1:
		selected = v.b
	default:
		panic(invalidArgnum("maximum", argnum))
	}
	ar, cmp := arithmetic("maximum", b), comparison("maximum", b)

	ties := ar.Add(b.OnesLike(cmp.Equal(v.a, v.b)), cmp.Equal(v.a, v.b))
	mask := ar.Div(cmp.Equal(selected, y.Value), ties)
	return ar.ReduceTo(ar.Mul(g, mask), operand.Value)
}
