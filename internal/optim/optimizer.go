// Package optim implements first-order optimizers over engine contexts.
//
// An optimizer owns a Gradient and a list of variables of its context. Each Step computes the
// gradient of the objective for every variable from one consistent set of values, then writes the
// updated values back with Context.SetVariableValue.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Gradient descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Example usage:
//
//	g := engine.Of(loss, ctx)
//	opt := optim.NewAdam(g, []engine.Variable[*dense.Array]{w, b}, optim.AdamConfig{LR: 0.05})
//	history := optim.Minimize(opt, 200)
package optim

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer[T any] interface {
	// Step applies one update to every variable and returns the objective value before the update.
	Step() T

	// GetLR returns the current learning rate.
	GetLR() float64

	// SetLR updates the learning rate.
	SetLR(lr float64)
}

// Minimize runs steps updates and returns the objective value observed before each of them.
func Minimize[T any](opt Optimizer[T], steps int) []T {
	history := make([]T, 0, steps)
	for range steps {
		history = append(history, opt.Step())
	}
	return history
}

// gradients evaluates the objective and its gradient for every variable before anything changes.
func gradients[T any](g *engine.Gradient[T], params []engine.Variable[T]) (T, []T) {
	if len(params) == 0 {
		return g.Value(), nil
	}
	grads := make([]T, len(params))
	loss, first := g.ValueAndGrad(params[0])
	grads[0] = first
	for i, p := range params[1:] {
		grads[i+1] = g.Grad(p)
	}
	return loss, grads
}

func arithmetic[T any](ctx *engine.Context[T]) value.Arithmetic[T] {
	return value.Require[value.Arithmetic[T]]("optim", ctx.Backend())
}
