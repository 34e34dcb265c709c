// Package value defines the numeric capabilities a backend provides to the engine and the operation catalog.
//
// The engine only needs an Accumulator to sum gradient contributions. Operations require richer
// capabilities and discover them by type assertion through Require, which panics with a clear message
// when the backend lacks what an operation needs.
//
// Capabilities:
//   - Accumulator: clone, add, zeros and ones (required by the engine)
//   - Arithmetic: sub, mul, div, neg, scaling, broadcast reduction
//   - Elementary: transcendental elementwise functions
//   - Reduction: full reductions and broadcasting
//   - AxisReduction: reductions along one axis
//   - LinearAlgebra: rank, dot, matmul, outer, transpose
//   - Comparison: elementwise maximum and equality masks
package value

import (
	"fmt"
	"reflect"
)

// Accumulator is the minimal capability required by the engine.
//
// Add must not mutate its arguments. Clone returns a value that shares no storage with its input.
type Accumulator[T any] interface {
	// Name identifies the backend in diagnostics.
	Name() string

	// Clone returns an independent copy of x.
	Clone(x T) T

	// Add returns a + b.
	Add(a, b T) T

	// Zero returns the additive identity with no shape (scalar zero).
	Zero() T

	// ZerosLike returns the additive identity shaped like x.
	ZerosLike(x T) T

	// OnesLike returns a value shaped like x filled with ones. Used to seed backpropagation.
	OnesLike(x T) T
}

// Arithmetic provides the elementwise arithmetic used by binary operations and their backward rules.
type Arithmetic[T any] interface {
	Accumulator[T]

	Sub(a, b T) T
	Mul(a, b T) T
	Div(a, b T) T
	Neg(x T) T

	// Scale returns k * x.
	Scale(x T, k float64) T

	// Scalar wraps a float64 as a shapeless value.
	Scalar(v float64) T

	// ReduceTo sums g down to the shape of like, undoing broadcasting from the forward pass.
	ReduceTo(g, like T) T
}

// Elementary provides elementwise transcendental functions.
type Elementary[T any] interface {
	Sin(x T) T
	Cos(x T) T
	Tan(x T) T
	Sinh(x T) T
	Cosh(x T) T
	Tanh(x T) T
	Exp(x T) T
	Log(x T) T
	Sqrt(x T) T
	Sigmoid(x T) T

	// Pow raises every element of x to the power n.
	Pow(x T, n float64) T
}

// Reduction provides whole-value reductions and their inverse, broadcasting.
type Reduction[T any] interface {
	// SumAll sums every element into a shapeless value.
	SumAll(x T) T

	// MaxAll returns the largest element as a shapeless value.
	MaxAll(x T) T

	// BroadcastTo tiles a shapeless (or broadcast-compatible) g to the shape of like.
	BroadcastTo(g, like T) T
}

// LinearAlgebra provides rank-aware products.
//
// Dot follows the usual conventions: vector·vector is the inner product, matrix·vector and vector·matrix
// are matrix-vector products, matrix·matrix is the matrix product.
type LinearAlgebra[T any] interface {
	Rank(x T) int
	Dot(a, b T) T
	MatMul(a, b T) T
	Outer(a, b T) T
	Transpose(x T) T
}

// AxisReduction reduces along a single axis, keeping it with size 1 so the result broadcasts
// against its input. Negative axes count from the last dimension.
type AxisReduction[T any] interface {
	// SumAxis sums x along axis.
	SumAxis(x T, axis int) T

	// MaxAxis returns the largest element of x along axis.
	MaxAxis(x T, axis int) T
}

// Comparison provides elementwise selection helpers.
type Comparison[T any] interface {
	// Maximum returns the elementwise maximum of a and b (broadcasting allowed).
	Maximum(a, b T) T

	// Equal returns a mask with 1 where a == b and 0 elsewhere.
	Equal(a, b T) T
}

// Require asserts that backend b implements capability C.
//
// op names the caller in the panic message.
func Require[C any, T any](op string, b Accumulator[T]) C {
	c, ok := b.(C)
	if !ok {
		panic(fmt.Sprintf("%s: backend %s does not implement %s", op, b.Name(), reflect.TypeFor[C]()))
	}
	return c
}
