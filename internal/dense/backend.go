package dense

import (
	"fmt"
	"math"

	"github.com/born-ml/backprop/internal/parallel"
	"github.com/born-ml/backprop/internal/scalar"
	"github.com/born-ml/backprop/internal/value"
)

var (
	_ value.Arithmetic[*Array]    = Backend{}
	_ value.Elementary[*Array]    = Backend{}
	_ value.Reduction[*Array]     = Backend{}
	_ value.AxisReduction[*Array] = Backend{}
	_ value.LinearAlgebra[*Array] = Backend{}
	_ value.Comparison[*Array]    = Backend{}
)

// Backend computes with dense float64 arrays.
type Backend struct {
	workers parallel.Config
}

// NewBackend returns the dense backend. It computes on the calling goroutine.
func NewBackend() Backend {
	return Backend{}
}

// NewParallelBackend returns a dense backend whose large matrix products split their rows across
// cfg.Workers goroutines.
func NewParallelBackend(cfg parallel.Config) Backend {
	return Backend{workers: cfg}
}

// Name implements value.Accumulator.
func (Backend) Name() string { return "dense" }

// Clone implements value.Accumulator.
func (Backend) Clone(x *Array) *Array {
	return &Array{shape: x.shape.Clone(), data: append([]float64(nil), x.data...)}
}

// Zero implements value.Accumulator.
func (Backend) Zero() *Array { return Scalar(0) }

// ZerosLike implements value.Accumulator.
func (Backend) ZerosLike(x *Array) *Array { return Zeros(x.shape) }

// OnesLike implements value.Accumulator.
func (Backend) OnesLike(x *Array) *Array { return Full(x.shape, 1) }

// Scalar implements value.Arithmetic.
func (Backend) Scalar(v float64) *Array { return Scalar(v) }

func (Backend) Add(a, b *Array) *Array {
	return binary("add", a, b, func(x, y float64) float64 { return x + y })
}

func (Backend) Sub(a, b *Array) *Array {
	return binary("sub", a, b, func(x, y float64) float64 { return x - y })
}

func (Backend) Mul(a, b *Array) *Array {
	return binary("mul", a, b, func(x, y float64) float64 { return x * y })
}

func (Backend) Div(a, b *Array) *Array {
	return binary("div", a, b, func(x, y float64) float64 { return x / y })
}

func (Backend) Maximum(a, b *Array) *Array {
	return binary("maximum", a, b, math.Max)
}

// Equal returns 1 where a and b hold the same value and 0 elsewhere.
func (Backend) Equal(a, b *Array) *Array {
	return binary("equal", a, b, func(x, y float64) float64 {
		if x == y {
			return 1
		}
		return 0
	})
}

func (Backend) Neg(x *Array) *Array { return unary(x, func(v float64) float64 { return -v }) }

func (Backend) Scale(x *Array, k float64) *Array {
	return unary(x, func(v float64) float64 { return k * v })
}

func (Backend) Sin(x *Array) *Array { return unary(x, math.Sin) }
func (Backend) Cos(x *Array) *Array { return unary(x, math.Cos) }
func (Backend) Tan(x *Array) *Array { return unary(x, math.Tan) }
func (Backend) Sinh(x *Array) *Array { return unary(x, math.Sinh) }
func (Backend) Cosh(x *Array) *Array { return unary(x, math.Cosh) }
func (Backend) Tanh(x *Array) *Array { return unary(x, math.Tanh) }
func (Backend) Exp(x *Array) *Array { return unary(x, math.Exp) }
func (Backend) Log(x *Array) *Array { return unary(x, math.Log) }
func (Backend) Sqrt(x *Array) *Array { return unary(x, math.Sqrt) }
func (Backend) Sigmoid(x *Array) *Array { return unary(x, scalar.Sigmoid) }

func (Backend) Pow(x *Array, n float64) *Array {
	return unary(x, func(v float64) float64 { return math.Pow(v, n) })
}

// SumAll implements value.Reduction.
func (Backend) SumAll(x *Array) *Array {
	var sum float64
	for _, v := range x.data {
		sum += v
	}
	return Scalar(sum)
}

// MaxAll implements value.Reduction.
func (Backend) MaxAll(x *Array) *Array {
	m := math.Inf(-1)
	for _, v := range x.data {
		m = math.Max(m, v)
	}
	return Scalar(m)
}

// SumAxis implements value.AxisReduction.
func (Backend) SumAxis(x *Array, axis int) *Array {
	return reduceAxis("sum", x, axis, 0, func(acc, v float64) float64 { return acc + v })
}

// MaxAxis implements value.AxisReduction.
func (Backend) MaxAxis(x *Array, axis int) *Array {
	return reduceAxis("max", x, axis, math.Inf(-1), math.Max)
}

// reduceAxis folds x along axis, keeping the axis with size 1.
//
// The array is viewed as (outer, n, inner) around the reduced axis.
func reduceAxis(op string, x *Array, axis int, init float64, f func(acc, v float64) float64) *Array {
	rank := len(x.shape)
	if axis < 0 {
		axis += rank
	}
	if axis < 0 || axis >= rank {
		panic(fmt.Sprintf("dense: %s: axis out of range for shape %v", op, x.shape))
	}

	n := x.shape[axis]
	inner := x.shape[axis+1:].NumElements()
	outer := x.shape[:axis].NumElements()

	shape := x.shape.Clone()
	shape[axis] = 1
	out := Full(shape, init)
	for o := 0; o < outer; o++ {
		for k := 0; k < n; k++ {
			src := x.data[(o*n+k)*inner : (o*n+k+1)*inner]
			dst := out.data[o*inner : (o+1)*inner]
			for i, v := range src {
				dst[i] = f(dst[i], v)
			}
		}
	}
	return out
}

// BroadcastTo tiles g to the shape of like.
func (Backend) BroadcastTo(g, like *Array) *Array {
	if g.shape.Equal(like.shape) {
		return g
	}
	if shape, err := Broadcast(g.shape, like.shape); err != nil || !shape.Equal(like.shape) {
		panic(fmt.Sprintf("dense: broadcast: cannot broadcast shape %v to %v", g.shape, like.shape))
	}
	out := Zeros(like.shape)
	outStrides := like.shape.Strides()
	inStrides := broadcastStrides(g.shape, like.shape)
	for i := range out.data {
		out.data[i] = g.data[flatIndex(i, outStrides, inStrides)]
	}
	return out
}

// ReduceTo sums g down to the shape of like.
//
// Forward: a(3, 1) + b(3, 4) → c(3, 4). Backward: grad_c(3, 4) → grad_a(3, 1), summed along dimension 1.
func (Backend) ReduceTo(g, like *Array) *Array {
	if g.shape.Equal(like.shape) {
		return g
	}
	if shape, err := Broadcast(like.shape, g.shape); err != nil || !shape.Equal(g.shape) {
		panic(fmt.Sprintf("dense: reduce: cannot reduce shape %v to %v", g.shape, like.shape))
	}
	out := Zeros(like.shape)
	gStrides := g.shape.Strides()
	outStrides := broadcastStrides(like.shape, g.shape)
	for i, v := range g.data {
		out.data[flatIndex(i, gStrides, outStrides)] += v
	}
	return out
}

func unary(x *Array, f func(float64) float64) *Array {
	out := &Array{shape: x.shape.Clone(), data: make([]float64, len(x.data))}
	for i, v := range x.data {
		out.data[i] = f(v)
	}
	return out
}

func binary(op string, a, b *Array, f func(x, y float64) float64) *Array {
	if a.shape.Equal(b.shape) {
		out := &Array{shape: a.shape.Clone(), data: make([]float64, len(a.data))}
		for i := range a.data {
			out.data[i] = f(a.data[i], b.data[i])
		}
		return out
	}

	shape, err := Broadcast(a.shape, b.shape)
	if err != nil {
		panic(fmt.Sprintf("dense: %s: %v", op, err))
	}
	out := Zeros(shape)
	outStrides := shape.Strides()
	aStrides := broadcastStrides(a.shape, shape)
	bStrides := broadcastStrides(b.shape, shape)
	for i := range out.data {
		out.data[i] = f(a.data[flatIndex(i, outStrides, aStrides)], b.data[flatIndex(i, outStrides, bStrides)])
	}
	return out
}
