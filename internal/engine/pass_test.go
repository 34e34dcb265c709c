package engine_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/ops"
)

func TestContext_CreateAndSet(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(1.5)
	y := ctx.CreateVariable(2.5)

	assert.Equal(t, 0, x.Index())
	assert.Equal(t, 1, y.Index())
	assert.Equal(t, 2, ctx.Len())
	assert.Equal(t, 1.5, ctx.Value(x))

	ctx.SetVariableValue(x, 3.0)
	assert.Equal(t, 3.0, ctx.Value(x))
	assert.Equal(t, 2.5, ctx.Value(y))
	assert.True(t, ctx.Owns(x))
}

func TestContext_ForeignVariablePanics(t *testing.T) {
	ctx := newScalarContext()
	other := newScalarContext()
	foreign := other.CreateVariable(1)

	assert.PanicsWithValue(t, "engine: SetVariableValue: variable 0 does not belong to this context", func() {
		ctx.SetVariableValue(foreign, 2)
	})
	assert.Panics(t, func() { ctx.Value(foreign) })
	assert.Panics(t, func() { ctx.Evaluate(foreign) })
	assert.Panics(t, func() { ctx.Value(engine.Variable[float64]{}) })
	assert.False(t, ctx.Owns(foreign))
}

func TestPass_IDsStartAfterVariables(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(0.5)
	y := ctx.CreateVariable(0.3)

	root := ctx.Evaluate(ops.Mul[float64](x, ops.Sin(y)))

	assert.Equal(t, engine.NodeID(3), root.ID)
	require.Len(t, root.Operands, 2)
	assert.Equal(t, engine.NodeID(0), root.Operands[0].ID)
	assert.Equal(t, engine.NodeID(2), root.Operands[1].ID)
	assert.True(t, root.Operands[0].IsLeaf())
	assert.Zero(t, root.Operands[0].Progenitors.Len())

	if diff := cmp.Diff([]engine.NodeID{0, 1, 2}, root.Progenitors.Sorted()); diff != "" {
		t.Errorf("progenitors mismatch (-want +got):\n%s", diff)
	}
}

func TestPass_CounterIsLocal(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(0.5)
	expr := ops.Sin(x)

	first := ctx.Evaluate(expr)
	second := ctx.Evaluate(expr)

	assert.Equal(t, first.ID, second.ID)
	assert.NotSame(t, first, second)
}

func TestPass_SharesRepeatedNodes(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(0.5)
	s := ops.Sin(x)

	p := ctx.NewPass()
	root := p.Eval(ops.Add[float64](ops.Mul[float64](s, x), s))

	// x, sin, mul, add
	assert.Equal(t, 4, p.Len())
	mul := root.Operands[0]
	assert.Same(t, mul.Operands[0], root.Operands[1])
	assert.Same(t, mul.Operands[1], mul.Operands[0].Operands[0])
}

func TestPass_ConstantsAreLeaves(t *testing.T) {
	ctx := newScalarContext()
	x := ctx.CreateVariable(2)

	root := ctx.Evaluate(ops.Mul[float64](x, ops.Const(3.0)))

	c := root.Operands[1]
	assert.True(t, c.IsLeaf())
	assert.Equal(t, engine.NodeID(1), c.ID)
	assert.False(t, c.Reaches(x.ID()))
	assert.True(t, root.DependsOn(x.ID()))
	assert.Equal(t, 6.0, root.Value)
}

func TestPass_NilExpressionPanics(t *testing.T) {
	ctx := newScalarContext()
	assert.Panics(t, func() { ctx.Evaluate(nil) })
}
