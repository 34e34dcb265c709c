package ops

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// MatMulOp represents a matrix product: output = a @ b.
//
// The forward pass accepts every rank combination Dot does. Only the matrix @ matrix case is
// differentiable:
//   - d(A@B)/dA = g @ Bᵀ
//   - d(A@B)/dB = Aᵀ @ g
type MatMulOp[T any] struct {
	a, b engine.Expression[T]
}

// MatMul returns a @ b.
func MatMul[T any](a, b engine.Expression[T]) *MatMulOp[T] {
	return &MatMulOp[T]{a: a, b: b}
}

// Eval implements engine.Expression.
func (op *MatMulOp[T]) Eval(p *engine.Pass[T]) *engine.Node[T] {
	a, b := p.Eval(op.a), p.Eval(op.b)
	la := linalg("matmul", p.Backend())
	return p.NewNode(la.Dot(a.Value, b.Value), operands(a, b), dotVJP[T]{name: "matmul", a: a.Value, b: b.Value})
}

// TransposeOp swaps the axes of a matrix: output = xᵀ.
//
// Backward pass: grad_x = gᵀ.
type TransposeOp[T any] struct {
	x engine.Expression[T]
}

// Transpose returns xᵀ.
func Transpose[T any](x engine.Expression[T]) *TransposeOp[T] {
	return &TransposeOp[T]{x: x}
}

// Eval implements engine.Expression.
func (op *TransposeOp[T]) Eval(p *engine.Pass[T]) *engine.Node[T] {
	x := p.Eval(op.x)
	return p.NewNode(linalg("transpose", p.Backend()).Transpose(x.Value), operands(x), transposeVJP[T]{})
}

type transposeVJP[T any] struct{}

func (transposeVJP[T]) VJP(b value.Accumulator[T], g T, _, _ *engine.Node[T], argnum int) T {
	if argnum != 0 {
		panic(invalidArgnum("transpose", argnum))
	}
	return linalg("transpose", b).Transpose(g)
}
