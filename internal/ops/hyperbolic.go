package ops

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// Sinh returns sinh(x).
//
// d(sinh(x))/dx = cosh(x).
func Sinh[T any](x engine.Expression[T]) *UnaryOp[T] {
	return &UnaryOp[T]{
		name:    "sinh",
		x:       x,
		forward: func(e value.Elementary[T], x T) T { return e.Sinh(x) },
		derivative: func(b value.Accumulator[T], g T, _, x *engine.Node[T]) T {
			return arithmetic("sinh", b).Mul(g, elementary("sinh", b).Cosh(x.Value))
		},
	}
}

// Cosh returns cosh(x).
//
// d(cosh(x))/dx = sinh(x).
func Cosh[T any](x engine.Expression[T]) *UnaryOp[T] {
	return &UnaryOp[T]{
		name:    "cosh",
		x:       x,
		forward: func(e value.Elementary[T], x T) T { return e.Cosh(x) },
		derivative: func(b value.Accumulator[T], g T, _, x *engine.Node[T]) T {
			return arithmetic("cosh", b).Mul(g, elementary("cosh", b).Sinh(x.Value))
		},
	}
}

// Tanh returns tanh(x).
//
// d(tanh(x))/dx = 1 - tanh²(x) = 1 - y².
func Tanh[T any](x engine.Expression[T]) *UnaryOp[T] {
	return &UnaryOp[T]{
		name:    "tanh",
		x:       x,
		forward: func(e value.Elementary[T], x T) T { return e.Tanh(x) },
		derivative: func(b value.Accumulator[T], g T, y, _ *engine.Node[T]) T {
			ar := arithmetic("tanh", b)
			return ar.Mul(g, ar.Sub(b.OnesLike(y.Value), ar.Mul(y.Value, y.Value)))
		},
	}
}
