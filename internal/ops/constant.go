package ops

import "github.com/born-ml/backprop/internal/engine"

// ConstOp is a fixed value. It has no operands, so no gradient ever flows into it.
type ConstOp[T any] struct {
	v T
}

// Const returns an expression that always evaluates to v.
func Const[T any](v T) *ConstOp[T] {
	return &ConstOp[T]{v: v}
}

// Eval implements engine.Expression.
func (op *ConstOp[T]) Eval(p *engine.Pass[T]) *engine.Node[T] {
	return p.NewNode(op.v, nil, nil)
}

// ScalarOp is a shapeless constant built by the backend at evaluation time.
type ScalarOp[T any] struct {
	v float64
}

// Scalar returns a constant expression holding v. It broadcasts against values of any shape.
func Scalar[T any](v float64) *ScalarOp[T] {
	return &ScalarOp[T]{v: v}
}

// Eval implements engine.Expression.
func (op *ScalarOp[T]) Eval(p *engine.Pass[T]) *engine.Node[T] {
	return p.NewNode(arithmetic("scalar", p.Backend()).Scalar(op.v), nil, nil)
}
