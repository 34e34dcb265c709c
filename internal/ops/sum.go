package ops

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// SumOp represents the sum of all elements: output = Σ x.
//
// Backward pass: d(Σx)/dx_i = 1, so the incoming gradient is broadcast back to x's shape.
type SumOp[T any] struct {
	x engine.Expression[T]
}

// Sum returns the sum of every element of x.
func Sum[T any](x engine.Expression[T]) *SumOp[T] {
	return &SumOp[T]{x: x}
}

// Eval implements engine.Expression.
func (op *SumOp[T]) Eval(p *engine.Pass[T]) *engine.Node[T] {
	x := p.Eval(op.x)
	return p.NewNode(reduction("sum", p.Backend()).SumAll(x.Value), operands(x), sumVJP[T]{})
}

type sumVJP[T any] struct{}

func (sumVJP[T]) VJP(b value.Accumulator[T], g T, _, x *engine.Node[T], argnum int) T {
	if argnum != 0 {
		panic(invalidArgnum("sum", argnum))
	}
	return reduction("sum", b).BroadcastTo(g, x.Value)
}
