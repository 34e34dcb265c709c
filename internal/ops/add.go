package ops

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// AddOp represents elementwise addition: output = a + b.
//
// Backward pass:
//   - d(a+b)/da = 1, so grad_a = g
//   - d(a+b)/db = 1, so grad_b = g
//
// Both are reduced to the operand's shape when broadcasting took place.
type AddOp[T any] struct {
	a, b engine.Expression[T]
}

// Add returns a + b.
func Add[T any](a, b engine.Expression[T]) *AddOp[T] {
	return &AddOp[T]{a: a, b: b}
}

// Eval implements engine.Expression.
func (op *AddOp[T]) Eval(p *engine.Pass[T]) *engine.Node[T] {
	a, b := p.Eval(op.a), p.Eval(op.b)
	return p.NewNode(p.Backend().Add(a.Value, b.Value), operands(a, b), addVJP[T]{})
}

type addVJP[T any] struct{}

func (addVJP[T]) VJP(b value.Accumulator[T], g T, _, operand *engine.Node[T], argnum int) T {
	if argnum != 0 && argnum != 1 {
		panic(invalidArgnum("add", argnum))
	}
	return arithmetic("add", b).ReduceTo(g, operand.Value)
}
