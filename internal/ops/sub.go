package ops

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// SubOp represents elementwise subtraction: output = a - b.
//
// Backward pass:
//   - d(a-b)/da = 1, so grad_a = g
//   - d(a-b)/db = -1, so grad_b = -g
type SubOp[T any] struct {
	a, b engine.Expression[T]
}

// Sub returns a - b.
func Sub[T any](a, b engine.Expression[T]) *SubOp[T] {
	return &SubOp[T]{a: a, b: b}
}

// Eval implements engine.Expression.
func (op *SubOp[T]) Eval(p *engine.Pass[T]) *engine.Node[T] {
	a, b := p.Eval(op.a), p.Eval(op.b)
	ar := arithmetic("sub", p.Backend())
	return p.NewNode(ar.Sub(a.Value, b.Value), operands(a, b), subVJP[T]{})
}

type subVJP[T any] struct{}

func (subVJP[T]) VJP(b value.Accumulator[T], g T, _, operand *engine.Node[T], argnum int) T {
	ar := arithmetic("sub", b)
	switch argnum {
	case 0:
		return ar.ReduceTo(g, operand.Value)
	case 1:
		return ar.ReduceTo(ar.Neg(g), operand.Value)
	default:
		panic(invalidArgnum("sub", argnum))
	}
}
