// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides first-order optimizers driven by reverse-mode gradients.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with optional momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface and the Minimize loop
//
// Each optimizer holds a Gradient bound to a context and a list of parameters.
// Step computes the gradient of every parameter at the current values, then writes
// the updated values back with SetVariableValue.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/backprop/autodiff"
//	    "github.com/born-ml/backprop/backend/scalar"
//	    "github.com/born-ml/backprop/ops"
//	    "github.com/born-ml/backprop/optim"
//	)
//
//	func main() {
//	    ctx := autodiff.NewContext[float64](scalar.New())
//	    x := ctx.CreateVariable(0)
//	    loss := ops.Square[float64](ops.Sub[float64](x, ops.Scalar[float64](3)))
//
//	    opt := optim.NewAdam(autodiff.Of[float64](loss, ctx),
//	        []autodiff.Variable[float64]{x},
//	        optim.AdamConfig{LR: 0.1},
//	    )
//	    history := optim.Minimize[float64](opt, 300)
//	    _ = history // loss before each step
//	}
//
// # State
//
// Both optimizers expose StateDict and LoadStateDict so a run can be checkpointed
// and resumed with identical results.
package optim
