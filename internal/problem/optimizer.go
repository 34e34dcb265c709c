package problem

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/born-ml/backprop/internal/checkpoint"
	"github.com/born-ml/backprop/internal/dense"
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/optim"
)

// Optimizer kinds.
const (
	SGD  = "sgd"
	Adam = "adam"
)

// DefaultSteps is used when a problem file does not set steps.
const DefaultSteps = 100

// Optimizer is the decoded optimizer block. Zero fields take the optimizer's defaults.
type Optimizer struct {
	Kind         string
	LearningRate float64
	Momentum     float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64
	Steps        int
}

func decodeOptimizer(block *optimizerBlock) (Optimizer, error) {
	opt := Optimizer{Kind: SGD, Steps: DefaultSteps}
	if block == nil {
		return opt, nil
	}

	var result *multierror.Error
	opt.Kind = block.Kind
	if opt.Kind != SGD && opt.Kind != Adam {
		result = multierror.Append(result, fmt.Errorf("optimizer: unknown kind %q (want %q or %q)", block.Kind, SGD, Adam))
	}

	// Adam reads a zero beta as unset, so betas exclude 0.
	unit := func(name string, p *float64, dst *float64, allowZero bool) {
		if p == nil {
			return
		}
		switch {
		case allowZero && (*p < 0 || *p >= 1):
			result = multierror.Append(result, fmt.Errorf("optimizer: %s must be in [0, 1), got %g", name, *p))
		case !allowZero && (*p <= 0 || *p >= 1):
			result = multierror.Append(result, fmt.Errorf("optimizer: %s must be in (0, 1), got %g", name, *p))
		default:
			*dst = *p
		}
	}
	unit("momentum", block.Momentum, &opt.Momentum, true)
	unit("beta1", block.Beta1, &opt.Beta1, false)
	unit("beta2", block.Beta2, &opt.Beta2, false)

	if p := block.LearningRate; p != nil {
		if *p <= 0 {
			result = multierror.Append(result, fmt.Errorf("optimizer: learning_rate must be positive, got %g", *p))
		}
		opt.LearningRate = *p
	}
	if p := block.Epsilon; p != nil {
		if *p <= 0 {
			result = multierror.Append(result, fmt.Errorf("optimizer: epsilon must be positive, got %g", *p))
		}
		opt.Epsilon = *p
	}
	if p := block.Steps; p != nil {
		if *p <= 0 {
			result = multierror.Append(result, fmt.Errorf("optimizer: steps must be positive, got %d", *p))
		}
		opt.Steps = *p
	}

	if opt.Kind == SGD && (block.Beta1 != nil || block.Beta2 != nil || block.Epsilon != nil) {
		result = multierror.Append(result, fmt.Errorf("optimizer: beta1, beta2 and epsilon only apply to %q", Adam))
	}
	if opt.Kind == Adam && block.Momentum != nil {
		result = multierror.Append(result, fmt.Errorf("optimizer: momentum only applies to %q", SGD))
	}
	return opt, result.ErrorOrNil()
}

// Session runs the problem's optimizer against its context.
type Session struct {
	problem *Problem
	params  []engine.Variable[*dense.Array]
	opt     optim.Optimizer[*dense.Array]
	sgd     *optim.SGD[*dense.Array]
	adam    *optim.Adam[*dense.Array]
}

// NewSession creates the configured optimizer over every variable.
// The objective must evaluate to a single element.
func (p *Problem) NewSession() (*Session, error) {
	if loss := p.Eval(); loss.Len() != 1 {
		return nil, fmt.Errorf("objective must be a scalar to optimize, got shape %v", loss.Shape())
	}

	s := &Session{problem: p}
	for _, name := range p.Names {
		s.params = append(s.params, p.Variables[name])
	}

	g := p.Gradient()
	logger := p.logger.Named(p.Optimizer.Kind)
	switch p.Optimizer.Kind {
	case Adam:
		s.adam = optim.NewAdam(g, s.params, optim.AdamConfig{
			LR:     p.Optimizer.LearningRate,
			Betas:  [2]float64{p.Optimizer.Beta1, p.Optimizer.Beta2},
			Eps:    p.Optimizer.Epsilon,
			Logger: logger,
		})
		s.opt = s.adam
	default:
		s.sgd = optim.NewSGD(g, s.params, optim.SGDConfig{
			LR:       p.Optimizer.LearningRate,
			Momentum: p.Optimizer.Momentum,
			Logger:   logger,
		})
		s.opt = s.sgd
	}
	return s, nil
}

// Run performs steps optimizer steps, or the configured number when steps is zero,
// and returns the loss observed before each step.
func (s *Session) Run(steps int) []float64 {
	if steps <= 0 {
		steps = s.problem.Optimizer.Steps
	}
	history := make([]float64, 0, steps)
	for _, loss := range optim.Minimize(s.opt, steps) {
		history = append(history, loss.Item())
	}
	s.problem.logger.Info("optimization complete",
		"optimizer", s.problem.Optimizer.Kind, "steps", steps, "loss", s.problem.Eval().Item())
	return history
}

// Snapshot captures the variables and optimizer state.
func (s *Session) Snapshot() *checkpoint.Snapshot {
	snap := checkpoint.Capture(s.problem.Context, s.problem.Variables)
	snap.Metadata = map[string]string{"optimizer": s.problem.Optimizer.Kind}
	if s.adam != nil {
		snap.State = s.adam.StateDict()
		snap.Timestep = s.adam.GetTimestep()
	} else {
		snap.State = s.sgd.StateDict()
	}
	return snap
}

// Restore loads variables and, when the snapshot was taken with the same optimizer kind,
// its state.
func (s *Session) Restore(snap *checkpoint.Snapshot) error {
	if err := snap.Restore(s.problem.Context, s.problem.Variables); err != nil {
		return fmt.Errorf("failed to restore variables: %w", err)
	}
	if kind := snap.Metadata["optimizer"]; kind != s.problem.Optimizer.Kind {
		s.problem.logger.Warn("checkpoint optimizer differs, starting with fresh state",
			"checkpoint", kind, "problem", s.problem.Optimizer.Kind)
		return nil
	}
	var err error
	if s.adam != nil {
		err = s.adam.LoadStateDict(snap.State, snap.Timestep)
	} else {
		err = s.sgd.LoadStateDict(snap.State)
	}
	if err != nil {
		return fmt.Errorf("failed to restore optimizer state: %w", err)
	}
	return nil
}
