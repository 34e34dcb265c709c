package ops

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// NegOp represents negation: output = -x.
type NegOp[T any] struct {
	x engine.Expression[T]
}

// Neg returns -x.
func Neg[T any](x engine.Expression[T]) *NegOp[T] {
	return &NegOp[T]{x: x}
}

// Eval implements engine.Expression.
func (op *NegOp[T]) Eval(p *engine.Pass[T]) *engine.Node[T] {
	x := p.Eval(op.x)
	return p.NewNode(arithmetic("neg", p.Backend()).Neg(x.Value), operands(x), negVJP[T]{})
}

type negVJP[T any] struct{}

func (negVJP[T]) VJP(b value.Accumulator[T], g T, _, _ *engine.Node[T], argnum int) T {
	if argnum != 0 {
		panic(invalidArgnum("neg", argnum))
	}
	return arithmetic("neg", b).Neg(g)
}
