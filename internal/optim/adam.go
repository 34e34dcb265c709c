package optim

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-hclog"

	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)   // Parameter update
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam[T any] struct {
	grad   *engine.Gradient[T]
	params []engine.Variable[T]
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int       // Timestep for bias correction
	m      map[int]T // First moment estimates by variable index
	v      map[int]T // Second moment estimates by variable index
	logger hclog.Logger
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR     float64      // Learning rate (default: 0.001)
	Betas  [2]float64   // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps    float64      // Term for numerical stability (default: 1e-8)
	Logger hclog.Logger // Receives one debug line per step (default: null logger)
}

// NewAdam creates a new Adam optimizer for params of g's context.
//
// The backend must provide value.Elementary for the square root.
func NewAdam[T any](g *engine.Gradient[T], params []engine.Variable[T], config AdamConfig) *Adam[T] {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	if config.Logger == nil {
		config.Logger = hclog.NewNullLogger()
	}

	return &Adam[T]{
		grad:   g,
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[int]T),
		v:      make(map[int]T),
		logger: config.Logger,
	}
}

// Step performs a single optimization step.
func (a *Adam[T]) Step() T {
	ctx := a.grad.Context()
	ar := arithmetic(ctx)
	el := value.Require[value.Elementary[T]]("optim", ctx.Backend())
	loss, grads := gradients(a.grad, a.params)

	a.t++
	biasCorrection1 := 1.0 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1.0 - math.Pow(a.beta2, float64(a.t))

	for i, param := range a.params {
		g := grads[i]
		idx := param.Index()

		m, ok := a.m[idx]
		if !ok {
			m = ar.ZerosLike(ctx.Value(param))
		}
		v, ok := a.v[idx]
		if !ok {
			v = ar.ZerosLike(ctx.Value(param))
		}

		m = ar.Add(ar.Scale(m, a.beta1), ar.Scale(g, 1-a.beta1))
		v = ar.Add(ar.Scale(v, a.beta2), ar.Scale(ar.Mul(g, g), 1-a.beta2))
		a.m[idx], a.v[idx] = m, v

		mHat := ar.Scale(m, 1/biasCorrection1)
		vHat := ar.Scale(v, 1/biasCorrection2)
		step := ar.Scale(ar.Div(mHat, ar.Add(el.Sqrt(vHat), ar.Scalar(a.eps))), a.lr)
		ctx.SetVariableValue(param, ar.Sub(ctx.Value(param), step))
	}

	a.logger.Debug("adam step", "step", a.t, "loss", loss)
	return loss
}

// GetLR returns the current learning rate.
func (a *Adam[T]) GetLR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam[T]) SetLR(lr float64) {
	a.lr = lr
}

// GetTimestep returns the current timestep.
func (a *Adam[T]) GetTimestep() int {
	return a.t
}

// StateDict returns the moment estimates keyed "m.{param_index}" and "v.{param_index}".
func (a *Adam[T]) StateDict() map[string]T {
	state := make(map[string]T)
	for i, param := range a.params {
		if m, ok := a.m[param.Index()]; ok {
			state[fmt.Sprintf("m.%d", i)] = m
		}
		if v, ok := a.v[param.Index()]; ok {
			state[fmt.Sprintf("v.%d", i)] = v
		}
	}
	return state
}

// LoadStateDict restores moment estimates saved by StateDict and sets the timestep.
func (a *Adam[T]) LoadStateDict(state map[string]T, timestep int) error {
	m, v := make(map[int]T), make(map[int]T)
	for key, val := range state {
		var kind rune
		var i int
		if _, err := fmt.Sscanf(key, "%c.%d", &kind, &i); err != nil || i < 0 || i >= len(a.params) {
			return fmt.Errorf("optim: adam: unexpected state key %q", key)
		}
		switch kind {
		case 'm':
			m[a.params[i].Index()] = val
		case 'v':
			v[a.params[i].Index()] = val
		default:
			return fmt.Errorf("optim: adam: unexpected state key %q", key)
		}
	}
	a.m, a.v, a.t = m, v, timestep
	return nil
}
