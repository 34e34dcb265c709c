// Package scalar implements the float64 backend.
//
// Every value is a plain float64. Reductions over a scalar are the identity and broadcasting is a no-op.
// Linear algebra is not provided; use the dense backend for vectors and matrices.
package scalar

import (
	"math"

	"github.com/born-ml/backprop/internal/value"
)

var (
	_ value.Arithmetic[float64] = Backend{}
	_ value.Elementary[float64] = Backend{}
	_ value.Reduction[float64]  = Backend{}
	_ value.Comparison[float64] = Backend{}
)

// Backend computes with float64 values.
type Backend struct{}

// New returns the float64 backend.
func New() Backend {
	return Backend{}
}

// Name implements value.Accumulator.
func (Backend) Name() string { return "float64" }

// Clone implements value.Accumulator.
func (Backend) Clone(x float64) float64 { return x }

// Add implements value.Accumulator.
func (Backend) Add(a, b float64) float64 { return a + b }

// Zero implements value.Accumulator.
func (Backend) Zero() float64 { return 0 }

// ZerosLike implements value.Accumulator.
func (Backend) ZerosLike(float64) float64 { return 0 }

// OnesLike implements value.Accumulator.
func (Backend) OnesLike(float64) float64 { return 1 }

func (Backend) Sub(a, b float64) float64 { return a - b }
func (Backend) Mul(a, b float64) float64 { return a * b }
func (Backend) Div(a, b float64) float64 { return a / b }
func (Backend) Neg(x float64) float64 { return -x }
func (Backend) Scale(x, k float64) float64 { return k * x }
func (Backend) Scalar(v float64) float64 { return v }
func (Backend) ReduceTo(g, _ float64) float64 { return g }
func (Backend) Sin(x float64) float64 { return math.Sin(x) }
func (Backend) Cos(x float64) float64 { return math.Cos(x) }
func (Backend) Tan(x float64) float64 { return math.Tan(x) }
func (Backend) Sinh(x float64) float64 { return math.Sinh(x) }
func (Backend) Cosh(x float64) float64 { return math.Cosh(x) }
func (Backend) Tanh(x float64) float64 { return math.Tanh(x) }
func (Backend) Exp(x float64) float64 { return math.Exp(x) }
func (Backend) Log(x float64) float64 { return math.Log(x) }
func (Backend) Sqrt(x float64) float64 { return math.Sqrt(x) }
func (Backend) Pow(x, n float64) float64 { return math.Pow(x, n) }
func (Backend) SumAll(x float64) float64 { return x }
func (Backend) MaxAll(x float64) float64 { return x }
func (Backend) BroadcastTo(g, _ float64) float64 { return g }
func (Backend) Maximum(a, b float64) float64 { return math.Max(a, b) }

// Sigmoid returns 1 / (1 + exp(-x)), computed without overflow for large |x|.
func (Backend) Sigmoid(x float64) float64 {
	return Sigmoid(x)
}

// Equal returns 1 when a == b and 0 otherwise.
func (Backend) Equal(a, b float64) float64 {
	if a == b {
		return 1
	}
	return 0
}

// Sigmoid is the numerically stable logistic function.
func Sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
