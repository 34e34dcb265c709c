package engine_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/backprop/internal/dense"
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/ops"
	"github.com/born-ml/backprop/internal/scalar"
	"github.com/born-ml/backprop/internal/value"
)

const eps = 1e-12

func newScalarContext() *engine.Context[float64] {
	return engine.NewContext[float64](scalar.New())
}

func TestGradient_ChainRule(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(0.5)

	g := engine.Of[float64](ops.Sin(x), ctx)

	assert.InDelta(t, math.Cos(0.5), g.Grad(x), eps)
	assert.InDelta(t, 0.8775825618903728, g.Grad(x), 1e-9)
}

func TestGradient_ProductRule(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(0.5)
	y := ctx.CreateVariable(1.0)

	g := engine.Of[float64](ops.Mul(x, y), ctx)

	assert.InDelta(t, 1.0, g.Grad(x), eps)
	assert.InDelta(t, 0.5, g.Grad(y), eps)
}

func TestGradient_QuotientRule(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(3.0)
	y := ctx.CreateVariable(2.0)

	g := engine.Of[float64](ops.Div(x, y), ctx)

	assert.InDelta(t, 0.5, g.Grad(x), eps)
	assert.InDelta(t, -0.75, g.Grad(y), eps)
}

func TestGradient_DiamondAccumulation(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(1.0)

	g := engine.Of[float64](ops.Add(x, x), ctx)
	v, dx := g.ValueAndGrad(x)

	assert.InDelta(t, 2.0, v, eps)
	assert.InDelta(t, 2.0, dx, eps)
}

func TestGradient_Composite(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(0.5)
	y := ctx.CreateVariable(0.3)

	// y*sin(x) + cos(y)
	expr := ops.Add[float64](ops.Mul[float64](y, ops.Sin(x)), ops.Cos(y))
	g := engine.Of[float64](expr, ctx)

	assert.InDelta(t, 0.3*math.Sin(0.5)+math.Cos(0.3), g.Value(), eps)
	assert.InDelta(t, 0.3*math.Cos(0.5), g.Grad(x), eps)
	assert.InDelta(t, math.Sin(0.5)-math.Sin(0.3), g.Grad(y), eps)
}

func TestGradient_SharedSubexpression(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(0.7)

	// s*s with s = sin(x) evaluated once: d/dx = 2 sin(x) cos(x)
	s := ops.Sin(x)
	g := engine.Of[float64](ops.Mul[float64](s, s), ctx)

	assert.InDelta(t, 2*math.Sin(0.7)*math.Cos(0.7), g.Grad(x), eps)
}

// valueSin is a value-typed expression, so the pass cannot share its node between occurrences.
type valueSin struct {
	x engine.Expression[float64]
}

func (e valueSin) Eval(p *engine.Pass[float64]) *engine.Node[float64] {
	x := p.Eval(e.x)
	return p.NewNode(math.Sin(x.Value), []*engine.Node[float64]{x},
		engine.VJPFunc[float64](func(_ value.Accumulator[float64], g float64, _, x *engine.Node[float64], _ int) float64 {
			return g * math.Cos(x.Value)
		}))
}

func TestGradient_DuplicatedSubtrees(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(0.2)

	s := valueSin{x: x}
	expr := ops.Add[float64](s, s)

	root := ctx.Evaluate(expr)
	require.Len(t, root.Operands, 2)
	assert.NotEqual(t, root.Operands[0].ID, root.Operands[1].ID)

	assert.InDelta(t, 2*math.Cos(0.2), engine.Of[float64](expr, ctx).Grad(x), eps)
}

func TestGradient_ReevaluatesAfterSet(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(0.5)
	g := engine.Of[float64](ops.Sin(x), ctx)

	assert.InDelta(t, math.Cos(0.5), g.Grad(x), eps)

	ctx.SetVariableValue(x, 1.5)
	v, dx := g.ValueAndGrad(x)
	assert.InDelta(t, math.Sin(1.5), v, eps)
	assert.InDelta(t, math.Cos(1.5), dx, eps)
}

func TestGradient_SeedLinearity(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(0.5)
	y := ctx.CreateVariable(0.3)
	g := engine.Of[float64](ops.Add[float64](ops.Mul[float64](y, ops.Sin(x)), ops.Cos(y)), ctx)

	for _, k := range []float64{0, 1, -2, 3.5} {
		assert.InDelta(t, k*g.Backprop(x, 1), g.Backprop(x, k), eps)
		assert.InDelta(t, k*g.Backprop(y, 1), g.Backprop(y, k), eps)
	}
}

func TestGradient_Idempotent(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(0.5)
	y := ctx.CreateVariable(3.0)
	g := engine.Of[float64](ops.Add[float64](ops.Mul[float64](x, y), ops.Mul[float64](ops.Cos(y), ops.Sin(x))), ctx)

	first := g.Grad(x)
	second := g.Grad(x)
	assert.Equal(t, first, second)
}

func TestGradient_UnreachableTarget(t *testing.T) {
	t.Run("scalar", func(t *testing.T) {
		ctx := newScalarContext()
		x := ctx.CreateVariable(0.5)
		y := ctx.CreateVariable(2.0)

		assert.Equal(t, 0.0, engine.Of[float64](ops.Sin(x), ctx).Grad(y))
	})

	t.Run("dense", func(t *testing.T) {
		ctx := engine.NewContext[*dense.Array](dense.NewBackend())
		x := ctx.CreateVariable(dense.Vector(1, 2, 3))
		w := ctx.CreateVariable(dense.MustNew(dense.Shape{2, 2}, []float64{1, 2, 3, 4}))

		grad := engine.Of[*dense.Array](ops.Sum(x), ctx).Grad(w)
		assert.Equal(t, dense.Shape{2, 2}, grad.Shape())
		assert.Equal(t, []float64{0, 0, 0, 0}, grad.Data())
	})
}

func TestGradient_ForeignVariable(t *testing.T) {
	ctx := newScalarContext()
	other := newScalarContext()
	x := ctx.CreateVariable(0.5)
	foreign := other.CreateVariable(0.5)

	assert.Equal(t, 0.0, engine.Of[float64](ops.Sin(x), ctx).Grad(foreign))
	assert.Equal(t, 0.0, engine.Of[float64](ops.Sin(x), ctx).Grad(engine.Variable[float64]{}))
}

func TestGradient_TargetIsRoot(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(4.0)

	g := engine.Of[float64](x, ctx)

	assert.InDelta(t, 4.0, g.Value(), eps)
	assert.InDelta(t, 1.0, g.Grad(x), eps)
	assert.InDelta(t, 3.0, g.Backprop(x, 3), eps)
}

func TestGradient_DenseSeedsOnes(t *testing.T) {
	ctx := engine.NewContext[*dense.Array](dense.NewBackend())
	x := ctx.CreateVariable(dense.Vector(0.1, 0.2, 0.3))

	// Grad of an elementwise result seeds ones, i.e. differentiates the sum of the outputs.
	grad := engine.Of[*dense.Array](ops.Sin(x), ctx).Grad(x)
	want := []float64{math.Cos(0.1), math.Cos(0.2), math.Cos(0.3)}
	for i, v := range grad.Data() {
		assert.InDelta(t, want[i], v, eps)
	}
}

func TestGradient_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "test",
		Level:  hclog.Trace,
		Output: &buf,
	})

	ctx := newScalarContext()
	x := ctx.CreateVariable(0.5)
	y := ctx.CreateVariable(0.5)
	g := engine.NewGradient[float64](ops.Sin(x), ctx, engine.Config{Logger: logger})

	g.Grad(x)
	g.Grad(y)

	out := buf.String()
	assert.Contains(t, out, "forward pass complete")
	assert.Contains(t, out, "backprop complete")
	assert.Contains(t, out, "expression does not depend on variable")
}

func TestSum_LeftFold(t *testing.T) {
	b := scalar.New()
	assert.Equal(t, 6.0, engine.Sum[float64](b, []float64{1, 2, 3}))
	assert.Equal(t, 7.0, engine.Sum[float64](b, []float64{7}))
	assert.Panics(t, func() { engine.Sum[float64](b, nil) })
}

func TestSum_DoesNotAliasFirstValue(t *testing.T) {
	b := dense.NewBackend()
	first := dense.Vector(1, 2)

	sum := engine.Sum[*dense.Array](b, []*dense.Array{first})
	assert.NotSame(t, first, sum)
	assert.Equal(t, first.Data(), sum.Data())
}
