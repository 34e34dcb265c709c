package ops

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// Sin returns sin(x).
//
// d(sin(x))/dx = cos(x).
func Sin[T any](x engine.Expression[T]) *UnaryOp[T] {
	return &UnaryOp[T]{
		name:    "sin",
		x:       x,
		forward: func(e value.Elementary[T], x T) T { return e.Sin(x) },
		derivative: func(b value.Accumulator[T], g T, _, x *engine.Node[T]) T {
			return arithmetic("sin", b).Mul(g, elementary("sin", b).Cos(x.Value))
		},
	}
}

// Cos returns cos(x).
//
// d(cos(x))/dx = -sin(x).
func Cos[T any](x engine.Expression[T]) *UnaryOp[T] {
	return &UnaryOp[T]{
		name:    "cos",
		x:       x,
		forward: func(e value.Elementary[T], x T) T { return e.Cos(x) },
		derivative: func(b value.Accumulator[T], g T, _, x *engine.Node[T]) T {
			ar := arithmetic("cos", b)
			return ar.Neg(ar.Mul(g, elementary("cos", b).Sin(x.Value)))
		},
	}
}

// Tan returns tan(x).
//
// d(tan(x))/dx = 1 + tan²(x), computed from the output.
func Tan[T any](x engine.Expression[T]) *UnaryOp[T] {
	return &UnaryOp[T]{
		name:    "tan",
		x:       x,
		forward: func(e value.Elementary[T], x T) T { return e.Tan(x) },
		derivative: func(b value.Accumulator[T], g T, y, _ *engine.Node[T]) T {
			ar := arithmetic("tan", b)
			return ar.Mul(g, ar.Add(b.OnesLike(y.Value), ar.Mul(y.Value, y.Value)))
		},
	}
}
