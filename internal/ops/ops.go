// Package ops implements the differentiable operation catalog.
//
// Each operation is an engine.Expression. Eval evaluates the operands, computes the forward value
// with the backend and records a node carrying the operation's backward rule.
//
// Supported operations:
//   - Add, Sub, Mul, Div: elementwise with broadcasting (gradients reduced back to operand shape)
//   - Neg, Sin, Cos, Tan, Sinh, Cosh, Tanh, Exp, Log, Sqrt, Sigmoid, Pow: elementwise unary
//   - Sum: full reduction (d(sum(x))/dx = ones)
//   - Dot, MatMul, Transpose: linear algebra (rank 1 and 2)
//   - LogSumExp, LogSoftmax: stable log-domain reductions
//   - Maximum, ReLU: selection with ties splitting the gradient evenly
//   - Const, Scalar: values that never receive a gradient
package ops

import (
	"fmt"

	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

func arithmetic[T any](op string, b value.Accumulator[T]) value.Arithmetic[T] {
	return value.Require[value.Arithmetic[T]](op, b)
}

func elementary[T any](op string, b value.Accumulator[T]) value.Elementary[T] {
	return value.Require[value.Elementary[T]](op, b)
}

func reduction[T any](op string, b value.Accumulator[T]) value.Reduction[T] {
	return value.Require[value.Reduction[T]](op, b)
}

func axisReduction[T any](op string, b value.Accumulator[T]) value.AxisReduction[T] {
	return value.Require[value.AxisReduction[T]](op, b)
}

func linalg[T any](op string, b value.Accumulator[T]) value.LinearAlgebra[T] {
	return value.Require[value.LinearAlgebra[T]](op, b)
}

func comparison[T any](op string, b value.Accumulator[T]) value.Comparison[T] {
	return value.Require[value.Comparison[T]](op, b)
}

func operands[T any](nodes ...*engine.Node[T]) []*engine.Node[T] {
	return nodes
}

func invalidArgnum(op string, argnum int) string {
	return fmt.Sprintf("%s: invalid argnum %d", op, argnum)
}
