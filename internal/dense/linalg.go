package dense

import (
	"fmt"

	"github.com/born-ml/backprop/internal/parallel"
)

// parallelFlops is the multiply-add count above which matmul splits rows across goroutines.
const parallelFlops = 1 << 16

// Rank implements value.LinearAlgebra.
func (Backend) Rank(x *Array) int {
	return len(x.shape)
}

// Dot computes the product of a and b according to their ranks:
//
//	(n)    · (n)    → ()      inner product
//	(m, k) · (k)    → (m)     matrix-vector
//	(k)    · (k, n) → (n)     vector-matrix
//	(m, k) · (k, n) → (m, n)  matrix product
//
// A rank-0 operand scales the other. Other ranks panic.
func (be Backend) Dot(a, b *Array) *Array {
	switch {
	case len(a.shape) == 0 || len(b.shape) == 0:
		return be.Mul(a, b)
	case len(a.shape) == 1 && len(b.shape) == 1:
		if a.shape[0] != b.shape[0] {
			panic(fmt.Sprintf("dense: dot: shape mismatch %v · %v", a.shape, b.shape))
		}
		var sum float64
		for i := range a.data {
			sum += a.data[i] * b.data[i]
		}
		return Scalar(sum)
	case len(a.shape) == 2 && len(b.shape) == 1:
		m, k := a.shape[0], a.shape[1]
		if k != b.shape[0] {
			panic(fmt.Sprintf("dense: dot: shape mismatch %v · %v", a.shape, b.shape))
		}
		out := Zeros(Shape{m})
		be.matmul(out.data, a.data, b.data, m, k, 1)
		return out
	case len(a.shape) == 1 && len(b.shape) == 2:
		k, n := b.shape[0], b.shape[1]
		if a.shape[0] != k {
			panic(fmt.Sprintf("dense: dot: shape mismatch %v · %v", a.shape, b.shape))
		}
		out := Zeros(Shape{n})
		be.matmul(out.data, a.data, b.data, 1, k, n)
		return out
	case len(a.shape) == 2 && len(b.shape) == 2:
		return be.MatMul(a, b)
	default:
		panic(fmt.Sprintf("dense: dot: unsupported ranks %d · %d", len(a.shape), len(b.shape)))
	}
}

// MatMul multiplies two matrices: (M, K) @ (K, N) → (M, N).
func (be Backend) MatMul(a, b *Array) *Array {
	if len(a.shape) != 2 || len(b.shape) != 2 {
		panic(fmt.Sprintf("dense: matmul: only 2D arrays supported, got %dD and %dD", len(a.shape), len(b.shape)))
	}
	m, k := a.shape[0], a.shape[1]
	kb, n := b.shape[0], b.shape[1]
	if k != kb {
		panic(fmt.Sprintf("dense: matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kb, n))
	}
	out := Zeros(Shape{m, n})
	be.matmul(out.data, a.data, b.data, m, k, n)
	return out
}

// Outer returns the outer product of two vectors: (m) ⊗ (n) → (m, n).
func (Backend) Outer(a, b *Array) *Array {
	if len(a.shape) != 1 || len(b.shape) != 1 {
		panic(fmt.Sprintf("dense: outer: only 1D arrays supported, got %dD and %dD", len(a.shape), len(b.shape)))
	}
	m, n := a.shape[0], b.shape[0]
	out := Zeros(Shape{m, n})
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			out.data[i*n+j] = a.data[i] * b.data[j]
		}
	}
	return out
}

// Transpose swaps the axes of a matrix. Arrays of rank below 2 are returned as they are.
func (Backend) Transpose(x *Array) *Array {
	switch len(x.shape) {
	case 0, 1:
		return x
	case 2:
		rows, cols := x.shape[0], x.shape[1]
		out := Zeros(Shape{cols, rows})
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				out.data[j*rows+i] = x.data[i*cols+j]
			}
		}
		return out
	default:
		panic(fmt.Sprintf("dense: transpose: unsupported rank %d", len(x.shape)))
	}
}

// matmul computes c = a @ b for row-major (m, k) and (k, n) operands.
func (be Backend) matmul(c, a, b []float64, m, k, n int) {
	rows := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 0; j < n; j++ {
				sum := float64(0)
				for p := 0; p < k; p++ {
					sum += a[i*k+p] * b[p*n+j]
				}
				c[i*n+j] = sum
			}
		}
	}
	if be.workers.Workers < 2 || m*k*n < parallelFlops {
		rows(0, m)
		return
	}
	cfg := be.workers
	cfg.MinChunk = max(cfg.MinChunk, parallelFlops/(k*n+1))
	parallel.Range(m, cfg, rows)
}
