package ops

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// DivOp represents elementwise division: output = a / b.
//
// Backward pass:
//   - d(a/b)/da = 1/b, so grad_a = g / b
//   - d(a/b)/db = -a/b², so grad_b = -g * a / b²
type DivOp[T any] struct {
	a, b engine.Expression[T]
}

// Div returns a / b.
func Div[T any](a, b engine.Expression[T]) *DivOp[T] {
	return &DivOp[T]{a: a, b: b}
}

// Eval implements engine.Expression.
func (op *DivOp[T]) Eval(p *engine.Pass[T]) *engine.Node[T] {
	a, b := p.Eval(op.a), p.Eval(op.b)
	ar := arithmetic("div", p.Backend())
	return p.NewNode(ar.Div(a.Value, b.Value), operands(a, b), divVJP[T]{a: a.Value, b: b.Value})
}

type divVJP[T any] struct {
	a, b T
}

func (v divVJP[T]) VJP(b value.Accumulator[T], g T, _, operand *engine.Node[T], argnum int) T {
	ar := arithmetic("div", b)
	switch argnum {
	case 0:
		return ar.ReduceTo(ar.Div(g, v.b), operand.Value)
	case 1:
		// -g * a / b²
		num := ar.Mul(g, v.a)
		return ar.ReduceTo(ar.Neg(ar.Div(num, ar.Mul(v.b, v.b))), operand.Value)
	default:
		panic(invalidArgnum("div", argnum))
	}
}
