// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package dense

import (
	"github.com/born-ml/backprop/backend"
	"github.com/born-ml/backprop/internal/dense"
)

// Backend computes with dense arrays.
type Backend = dense.Backend

// Compile-time check that Backend provides every capability.
var (
	_ backend.Arithmetic[*Array]    = Backend{}
	_ backend.Elementary[*Array]    = Backend{}
	_ backend.Reduction[*Array]     = Backend{}
	_ backend.AxisReduction[*Array] = Backend{}
	_ backend.LinearAlgebra[*Array] = Backend{}
	_ backend.Comparison[*Array]    = Backend{}
)

// NewBackend creates the dense backend.
func NewBackend() Backend {
	return dense.NewBackend()
}

// Array is an immutable row-major float64 array.
type Array = dense.Array

// Shape is the list of dimensions of an array. The empty shape is a scalar.
type Shape = dense.Shape

// New creates an array of the given shape, copying data.
func New(shape Shape, data []float64) (*Array, error) {
	return dense.New(shape, data)
}

// MustNew is like New but panics on error.
func MustNew(shape Shape, data []float64) *Array {
	return dense.MustNew(shape, data)
}

// Scalar creates a rank-0 array.
func Scalar(v float64) *Array {
	return dense.Scalar(v)
}

// Vector creates a 1-D array.
func Vector(values ...float64) *Array {
	return dense.Vector(values...)
}

// Matrix creates a 2-D array from rows of equal length.
func Matrix(rows [][]float64) (*Array, error) {
	return dense.Matrix(rows)
}

// Full creates an array filled with v.
func Full(shape Shape, v float64) *Array {
	return dense.Full(shape, v)
}

// Zeros creates an array filled with zeros.
func Zeros(shape Shape) *Array {
	return dense.Zeros(shape)
}

// Broadcast returns the shape two operands broadcast to.
func Broadcast(a, b Shape) (Shape, error) {
	return dense.Broadcast(a, b)
}
