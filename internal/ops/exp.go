package ops

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// Exp returns exp(x).
//
// Since d(exp(x))/dx = exp(x) and the output already holds exp(x): grad_x = g * y.
func Exp[T any](x engine.Expression[T]) *UnaryOp[T] {
	return &UnaryOp[T]{
		name:    "exp",
		x:       x,
		forward: func(e value.Elementary[T], x T) T { return e.Exp(x) },
		derivative: func(b value.Accumulator[T], g T, y, _ *engine.Node[T]) T {
			return arithmetic("exp", b).Mul(g, y.Value)
		},
	}
}

// Log returns the natural logarithm of x.
//
// d(log(x))/dx = 1/x.
func Log[T any](x engine.Expression[T]) *UnaryOp[T] {
	return &UnaryOp[T]{
		name:    "log",
		x:       x,
		forward: func(e value.Elementary[T], x T) T { return e.Log(x) },
		derivative: func(b value.Accumulator[T], g T, _, x *engine.Node[T]) T {
			return arithmetic("log", b).Div(g, x.Value)
		},
	}
}

// Sqrt returns the square root of x.
//
// d(sqrt(x))/dx = 1 / (2 * sqrt(x)) = 1 / (2y).
func Sqrt[T any](x engine.Expression[T]) *UnaryOp[T] {
	return &UnaryOp[T]{
		name:    "sqrt",
		x:       x,
		forward: func(e value.Elementary[T], x T) T { return e.Sqrt(x) },
		derivative: func(b value.Accumulator[T], g T, y, _ *engine.Node[T]) T {
			ar := arithmetic("sqrt", b)
			return ar.Div(g, ar.Scale(y.Value, 2))
		},
	}
}

// Sigmoid returns the logistic function 1 / (1 + exp(-x)).
//
// d(σ(x))/dx = σ(x) * (1 - σ(x)) = y * (1 - y).
func Sigmoid[T any](x engine.Expression[T]) *UnaryOp[T] {
	return &UnaryOp[T]{
		name:    "sigmoid",
		x:       x,
		forward: func(e value.Elementary[T], x T) T { return e.Sigmoid(x) },
		derivative: func(b value.Accumulator[T], g T, y, _ *engine.Node[T]) T {
			ar := arithmetic("sigmoid", b)
			return ar.Mul(g, ar.Mul(y.Value, ar.Sub(b.OnesLike(y.Value), y.Value)))
		},
	}
}

// Pow raises x to the constant power n.
//
// d(x^n)/dx = n * x^(n-1).
func Pow[T any](x engine.Expression[T], n float64) *UnaryOp[T] {
	return &UnaryOp[T]{
		name:    "pow",
		x:       x,
		forward: func(e value.Elementary[T], x T) T { return e.Pow(x, n) },
		derivative: func(b value.Accumulator[T], g T, _, x *engine.Node[T]) T {
			ar := arithmetic("pow", b)
			return ar.Scale(ar.Mul(g, elementary("pow", b).Pow(x.Value, n-1)), n)
		},
	}
}

// Square returns x².
func Square[T any](x engine.Expression[T]) *UnaryOp[T] {
	return Pow(x, 2)
}
