package optim

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/born-ml/backprop/internal/engine"
)

// SGD implements gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD[T any] struct {
	grad       *engine.Gradient[T]
	params     []engine.Variable[T]
	lr         float64
	momentum   float64
	velocities map[int]T
	steps      int
	logger     hclog.Logger
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64      // Learning rate (default: 0.01)
	Momentum float64      // Momentum factor (default: 0.0, range: [0, 1))
	Logger   hclog.Logger // Receives one debug line per step (default: null logger)
}

// NewSGD creates a new SGD optimizer for params of g's context.
func NewSGD[T any](g *engine.Gradient[T], params []engine.Variable[T], config SGDConfig) *SGD[T] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	if config.Logger == nil {
		config.Logger = hclog.NewNullLogger()
	}

	return &SGD[T]{
		grad:       g,
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[int]T),
		logger:     config.Logger,
	}
}

// Step performs a single optimization step.
func (s *SGD[T]) Step() T {
	ctx := s.grad.Context()
	ar := arithmetic(ctx)
	loss, grads := gradients(s.grad, s.params)

	for i, param := range s.params {
		update := grads[i]
		if s.momentum != 0 {
			velocity, ok := s.velocities[param.Index()]
			if !ok {
				velocity = ar.ZerosLike(ctx.Value(param))
			}
			velocity = ar.Add(ar.Scale(velocity, s.momentum), update)
			s.velocities[param.Index()] = velocity
			update = velocity
		}
		ctx.SetVariableValue(param, ar.Sub(ctx.Value(param), ar.Scale(update, s.lr)))
	}

	s.steps++
	s.logger.Debug("sgd step", "step", s.steps, "loss", loss)
	return loss
}

// GetLR returns the current learning rate.
func (s *SGD[T]) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD[T]) SetLR(lr float64) {
	s.lr = lr
}

// StateDict returns the velocity buffers keyed "velocity.{param_index}".
//
// Without momentum, returns an empty map.
func (s *SGD[T]) StateDict() map[string]T {
	state := make(map[string]T)
	if s.momentum == 0 {
		return state
	}
	for i, param := range s.params {
		if velocity, ok := s.velocities[param.Index()]; ok {
			state[fmt.Sprintf("velocity.%d", i)] = velocity
		}
	}
	return state
}

// LoadStateDict restores velocity buffers saved by StateDict.
//
// Returns an error for keys that name no parameter.
func (s *SGD[T]) LoadStateDict(state map[string]T) error {
	if s.momentum == 0 {
		return nil
	}
	velocities := make(map[int]T)
	for key, velocity := range state {
		var i int
		if _, err := fmt.Sscanf(key, "velocity.%d", &i); err != nil || i < 0 || i >= len(s.params) {
			return fmt.Errorf("optim: sgd: unexpected state key %q", key)
		}
		velocities[s.params[i].Index()] = velocity
	}
	s.velocities = velocities
	return nil
}
