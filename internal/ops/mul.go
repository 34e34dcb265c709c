package ops

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// MulOp represents elementwise multiplication: output = a * b.
//
// Backward pass:
//   - d(a*b)/da = b, so grad_a = g * b
//   - d(a*b)/db = a, so grad_b = g * a
type MulOp[T any] struct {
	a, b engine.Expression[T]
}

// Mul returns a * b.
func Mul[T any](a, b engine.Expression[T]) *MulOp[T] {
	return &MulOp[T]{a: a, b: b}
}

// Eval implements engine.Expression.
func (op *MulOp[T]) Eval(p *engine.Pass[T]) *engine.Node[T] {
	a, b := p.Eval(op.a), p.Eval(op.b)
	ar := arithmetic("mul", p.Backend())
	return p.NewNode(ar.Mul(a.Value, b.Value), operands(a, b), mulVJP[T]{a: a.Value, b: b.Value})
}

// mulVJP captures both factors at construction time.
type mulVJP[T any] struct {
	a, b T
}

func (v mulVJP[T]) VJP(b value.Accumulator[T], g T, _, operand *engine.Node[T], argnum int) T {
	ar := arithmetic("mul", b)
	switch argnum {
	case 0:
		return ar.ReduceTo(ar.Mul(g, v.b), operand.Value)
	case 1:
		return ar.ReduceTo(ar.Mul(g, v.a), operand.Value)
	default:
		panic(invalidArgnum("mul", argnum))
	}
}
