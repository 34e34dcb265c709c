// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package scalar provides the float64 backend.
//
// Example:
//
//	ctx := autodiff.NewContext[float64](scalar.New())
//	x := ctx.CreateVariable(0.5)
package scalar

import (
	"github.com/born-ml/backprop/backend"
	"github.com/born-ml/backprop/internal/scalar"
)

// Backend computes with float64 values.
type Backend = scalar.Backend

// Compile-time check that Backend provides every capability but linear algebra.
var (
	_ backend.Arithmetic[float64] = Backend{}
	_ backend.Elementary[float64] = Backend{}
	_ backend.Reduction[float64]  = Backend{}
	_ backend.Comparison[float64] = Backend{}
)

// New creates the float64 backend.
func New() Backend {
	return scalar.New()
}
