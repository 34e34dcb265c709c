package optim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/backprop/internal/dense"
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/ops"
	"github.com/born-ml/backprop/internal/optim"
	"github.com/born-ml/backprop/internal/scalar"
)

// quadratic returns (x - 3)² over a fresh float64 context.
func quadratic(x0 float64) (*engine.Gradient[float64], engine.Variable[float64]) {
	ctx := engine.NewContext[float64](scalar.New())
	x := ctx.CreateVariable(x0)
	loss := ops.Square[float64](ops.Sub[float64](x, ops.Scalar[float64](3)))
	return engine.Of[float64](loss, ctx), x
}

func TestSGD_SimpleUpdate(t *testing.T) {
	g, x := quadratic(2.0)
	opt := optim.NewSGD(g, []engine.Variable[float64]{x}, optim.SGDConfig{LR: 0.1})

	loss := opt.Step()

	// grad = 2(x-3) = -2, x_new = 2 - 0.1 * -2 = 2.2
	assert.InDelta(t, 1.0, loss, 1e-12)
	assert.InDelta(t, 2.2, g.Context().Value(x), 1e-12)
}

func TestSGD_WithMomentum(t *testing.T) {
	g, x := quadratic(2.0)
	opt := optim.NewSGD(g, []engine.Variable[float64]{x}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	opt.Step() // v = -2, x = 2.2
	opt.Step() // grad = -1.6, v = 0.9*-2 - 1.6 = -3.4, x = 2.2 + 0.34 = 2.54

	assert.InDelta(t, 2.54, g.Context().Value(x), 1e-12)

	state := opt.StateDict()
	require.Contains(t, state, "velocity.0")
	assert.InDelta(t, -3.4, state["velocity.0"], 1e-12)
}

func TestSGD_LoadStateDict(t *testing.T) {
	g, x := quadratic(2.0)
	opt := optim.NewSGD(g, []engine.Variable[float64]{x}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	require.NoError(t, opt.LoadStateDict(map[string]float64{"velocity.0": -2}))
	opt.Step() // grad = -2, v = -1.8 - 2 = -3.8, x = 2.38
	assert.InDelta(t, 2.38, g.Context().Value(x), 1e-12)

	assert.Error(t, opt.LoadStateDict(map[string]float64{"velocity.7": 0}))
	assert.Error(t, opt.LoadStateDict(map[string]float64{"bogus": 0}))
}

func TestSGD_GetSetLR(t *testing.T) {
	g, x := quadratic(0)
	opt := optim.NewSGD(g, []engine.Variable[float64]{x}, optim.SGDConfig{})

	assert.Equal(t, 0.01, opt.GetLR())
	opt.SetLR(0.5)
	assert.Equal(t, 0.5, opt.GetLR())
}

func TestAdam_SimpleUpdate(t *testing.T) {
	g, x := quadratic(2.0)
	opt := optim.NewAdam(g, []engine.Variable[float64]{x}, optim.AdamConfig{LR: 0.1})

	opt.Step()

	// First step with bias correction moves by lr * sign(grad) (up to eps).
	assert.InDelta(t, 2.1, g.Context().Value(x), 1e-6)
	assert.Equal(t, 1, opt.GetTimestep())
}

func TestAdam_StateRoundTrip(t *testing.T) {
	g, x := quadratic(2.0)
	opt := optim.NewAdam(g, []engine.Variable[float64]{x}, optim.AdamConfig{LR: 0.1})
	opt.Step()
	state := opt.StateDict()
	assert.Len(t, state, 2)

	g2, x2 := quadratic(g.Context().Value(x))
	resumed := optim.NewAdam(g2, []engine.Variable[float64]{x2}, optim.AdamConfig{LR: 0.1})
	require.NoError(t, resumed.LoadStateDict(state, opt.GetTimestep()))

	opt.Step()
	resumed.Step()
	assert.InDelta(t, g.Context().Value(x), g2.Context().Value(x2), 1e-15)

	assert.Error(t, resumed.LoadStateDict(map[string]float64{"q.0": 1}, 1))
}

func TestConvergence_Quadratic(t *testing.T) {
	tests := []struct {
		name string
		opt  func(*engine.Gradient[float64], engine.Variable[float64]) optim.Optimizer[float64]
	}{
		{"sgd", func(g *engine.Gradient[float64], x engine.Variable[float64]) optim.Optimizer[float64] {
			return optim.NewSGD(g, []engine.Variable[float64]{x}, optim.SGDConfig{LR: 0.1})
		}},
		{"sgd momentum", func(g *engine.Gradient[float64], x engine.Variable[float64]) optim.Optimizer[float64] {
			return optim.NewSGD(g, []engine.Variable[float64]{x}, optim.SGDConfig{LR: 0.05, Momentum: 0.5})
		}},
		{"adam", func(g *engine.Gradient[float64], x engine.Variable[float64]) optim.Optimizer[float64] {
			return optim.NewAdam(g, []engine.Variable[float64]{x}, optim.AdamConfig{LR: 0.1})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, x := quadratic(-2)
			history := optim.Minimize(tt.opt(g, x), 300)

			require.Len(t, history, 300)
			assert.Less(t, history[len(history)-1], history[0])
			assert.InDelta(t, 3.0, g.Context().Value(x), 1e-2)
		})
	}
}

func TestMultipleParameters_Dense(t *testing.T) {
	ctx := engine.NewContext[*dense.Array](dense.NewBackend())
	w := ctx.CreateVariable(dense.Vector(0, 0))
	b := ctx.CreateVariable(dense.Scalar(0))

	// Fit w·x + b = y on a noiseless line y = 2x0 - x1 + 0.5.
	xs := dense.MustNew(dense.Shape{4, 2}, []float64{1, 0, 0, 1, 1, 1, 2, 1})
	ys := dense.Vector(2.5, -0.5, 1.5, 3.5)
	residual := ops.Sub[*dense.Array](ops.Add[*dense.Array](ops.Dot[*dense.Array](ops.Const(xs), w), b), ops.Const(ys))
	loss := ops.Sum[*dense.Array](ops.Square[*dense.Array](residual))

	g := engine.Of[*dense.Array](loss, ctx)
	opt := optim.NewAdam(g, []engine.Variable[*dense.Array]{w, b}, optim.AdamConfig{LR: 0.05})
	history := optim.Minimize[*dense.Array](opt, 2000)

	assert.Less(t, history[len(history)-1].Item(), 1e-4)
	got := ctx.Value(w).Data()
	assert.InDelta(t, 2.0, got[0], 1e-2)
	assert.InDelta(t, -1.0, got[1], 1e-2)
	assert.InDelta(t, 0.5, ctx.Value(b).Item(), 1e-2)
	assert.False(t, math.IsNaN(got[0]))
}
