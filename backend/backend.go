// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package backend defines the capabilities a numeric type provides to the engine and
// to the operations.
//
// The engine itself only needs an Accumulator. Operations look up richer capabilities
// with Require and panic when the backend lacks them, so a backend implements only what
// the operations it is used with need.
//
// Implementations:
//   - backend/scalar: float64 values
//   - backend/dense: dense float64 arrays with broadcasting
package backend

import "github.com/born-ml/backprop/internal/value"

// Accumulator is the minimum a backend provides: gradient accumulation and seeding.
type Accumulator[T any] = value.Accumulator[T]

// Arithmetic adds the four basic operations, scaling and broadcast reduction.
type Arithmetic[T any] = value.Arithmetic[T]

// Elementary provides elementwise transcendental functions.
type Elementary[T any] = value.Elementary[T]

// Reduction provides whole-value reductions.
type Reduction[T any] = value.Reduction[T]

// AxisReduction provides reductions along one axis.
type AxisReduction[T any] = value.AxisReduction[T]

// LinearAlgebra provides products and transposition.
type LinearAlgebra[T any] = value.LinearAlgebra[T]

// Comparison provides elementwise maximum and equality.
type Comparison[T any] = value.Comparison[T]

// Require returns b as capability C or panics naming op.
func Require[C any, T any](op string, b Accumulator[T]) C {
	return value.Require[C](op, b)
}
