package ops

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// UnaryOp represents an elementwise function: output = f(x).
//
// Backward pass: grad_x = g * f'(x). Some derivatives are cheaper in terms of the output
// (exp, sigmoid, tanh, sqrt), so the derivative receives the node as well as the operand.
type UnaryOp[T any] struct {
	name       string
	x          engine.Expression[T]
	forward    func(e value.Elementary[T], x T) T
	derivative func(b value.Accumulator[T], g T, node, operand *engine.Node[T]) T
}

// Name returns the operation name, e.g. "sin".
func (op *UnaryOp[T]) Name() string {
	return op.name
}

// Eval implements engine.Expression.
func (op *UnaryOp[T]) Eval(p *engine.Pass[T]) *engine.Node[T] {
	x := p.Eval(op.x)
	y := op.forward(elementary(op.name, p.Backend()), x.Value)
	return p.NewNode(y, operands(x), unaryVJP[T]{name: op.name, derivative: op.derivative})
}

type unaryVJP[T any] struct {
	name       string
	derivative func(b value.Accumulator[T], g T, node, operand *engine.Node[T]) T
}

func (v unaryVJP[T]) VJP(b value.Accumulator[T], g T, node, operand *engine.Node[T], argnum int) T {
	if argnum != 0 {
		panic(invalidArgnum(v.name, argnum))
	}
	return v.derivative(b, g, node, operand)
}
