// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dense provides a pure Go backend over dense float64 arrays.
//
// # Overview
//
// This package implements a backend with:
//   - Row-major float64 arrays of any rank
//   - NumPy-compatible broadcasting for elementwise operations
//   - Dot, MatMul, Outer and Transpose
//   - SafeTensors-compatible checkpoints through the backprop CLI
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/backprop/autodiff"
//	    "github.com/born-ml/backprop/backend/dense"
//	    "github.com/born-ml/backprop/ops"
//	)
//
//	func main() {
//	    ctx := autodiff.NewContext[*dense.Array](dense.NewBackend())
//	    w := ctx.CreateVariable(dense.Vector(0.1, -0.2))
//	    x := ops.Const(dense.MustNew(dense.Shape{3, 2}, []float64{1, 2, 3, 4, 5, 6}))
//
//	    loss := ops.Sum[*dense.Array](ops.Square[*dense.Array](ops.Dot[*dense.Array](x, w)))
//	    grad := autodiff.Of[*dense.Array](loss, ctx).Grad(w)
//	}
//
// # Thread Safety
//
// Arrays are never modified after construction, so they may be shared between
// goroutines. Contexts are not safe for concurrent use.
package dense
