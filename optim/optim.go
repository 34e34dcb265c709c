// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer[T any] = optim.Optimizer[T]

// Minimize runs steps optimizer steps and returns the loss observed before each step.
func Minimize[T any](opt Optimizer[T], steps int) []T {
	return optim.Minimize(opt, steps)
}

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD[T any] = optim.SGD[T]

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer over params.
//
// Example:
//
//	optimizer := optim.NewSGD(g, []autodiff.Variable[float64]{x},
//	    optim.SGDConfig{
//	        LR:       0.01,
//	        Momentum: 0.9,
//	    },
//	)
func NewSGD[T any](g *engine.Gradient[T], params []engine.Variable[T], config SGDConfig) *SGD[T] {
	return optim.NewSGD(g, params, config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam[T any] = optim.Adam[T]

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
//
// The backend must implement backend.Elementary for the square root.
//
// Example:
//
//	optimizer := optim.NewAdam(g, []autodiff.Variable[*dense.Array]{w, b},
//	    optim.AdamConfig{
//	        LR:    0.001,
//	        Betas: [2]float64{0.9, 0.999},
//	        Eps:   1e-8,
//	    },
//	)
func NewAdam[T any](g *engine.Gradient[T], params []engine.Variable[T], config AdamConfig) *Adam[T] {
	return optim.NewAdam(g, params, config)
}
