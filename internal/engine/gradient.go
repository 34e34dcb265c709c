package engine

import (
	"github.com/hashicorp/go-hclog"

	"github.com/born-ml/backprop/internal/value"
)

// Config configures a Gradient.
type Config struct {
	// Logger receives trace output for every pass. Defaults to a null logger.
	Logger hclog.Logger
}

// DefaultConfig returns a configuration that logs nothing.
func DefaultConfig() Config {
	return Config{
		Logger: hclog.NewNullLogger(),
	}
}

// Gradient differentiates one expression against the variables of one context.
//
// Every request runs a fresh forward pass with the current variable values, so callers may change
// values with SetVariableValue between requests.
type Gradient[T any] struct {
	expr   Expression[T]
	ctx    *Context[T]
	logger hclog.Logger
}

// Of binds expr to ctx with the default configuration.
func Of[T any](expr Expression[T], ctx *Context[T]) *Gradient[T] {
	return NewGradient(expr, ctx, DefaultConfig())
}

// NewGradient binds expr to ctx.
func NewGradient[T any](expr Expression[T], ctx *Context[T], cfg Config) *Gradient[T] {
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	return &Gradient[T]{
		expr:   expr,
		ctx:    ctx,
		logger: cfg.Logger,
	}
}

// Context returns the bound context.
func (g *Gradient[T]) Context() *Context[T] {
	return g.ctx
}

// Expression returns the bound expression.
func (g *Gradient[T]) Expression() Expression[T] {
	return g.expr
}

// Value runs a forward pass and returns the result.
func (g *Gradient[T]) Value() T {
	return g.forward().Value
}

// Grad returns d(expr)/d(v), seeding backpropagation with ones shaped like the result.
func (g *Gradient[T]) Grad(v Variable[T]) T {
	_, grad := g.ValueAndGrad(v)
	return grad
}

// ValueAndGrad returns the forward value and d(expr)/d(v) from a single forward pass.
func (g *Gradient[T]) ValueAndGrad(v Variable[T]) (T, T) {
	root := g.forward()
	return root.Value, g.backward(root, v, g.ctx.backend.OnesLike(root.Value))
}

// Backprop returns the vector-Jacobian product of seed with d(expr)/d(v).
//
// A variable the expression does not depend on yields zeros shaped like its value. A variable from
// another context yields the backend's scalar zero.
func (g *Gradient[T]) Backprop(v Variable[T], seed T) T {
	return g.backward(g.forward(), v, seed)
}

func (g *Gradient[T]) forward() *Node[T] {
	p := g.ctx.NewPass()
	root := p.Eval(g.expr)
	g.logger.Trace("forward pass complete", "nodes", p.Len(), "root", root.ID)
	return root
}

func (g *Gradient[T]) backward(root *Node[T], v Variable[T], seed T) T {
	b := g.ctx.backend
	if !g.ctx.Owns(v) {
		g.logger.Debug("variable does not belong to context", "variable", v.index)
		return b.Zero()
	}

	target := v.ID()
	if !root.Reaches(target) {
		g.logger.Debug("expression does not depend on variable", "variable", v.index)
		return b.ZerosLike(g.ctx.vars[v.index])
	}

	contributions := map[NodeID][]T{root.ID: {seed}}
	topo := NewReverseTopology(root, target)
	for n := range topo.All() {
		pending, ok := contributions[n.ID]
		if !ok {
			continue
		}
		delete(contributions, n.ID)
		grad := Sum(b, pending)

		if n.ID == target {
			g.logger.Trace("backprop complete", "target", target, "emitted", topo.Emitted())
			return grad
		}

		for i, op := range n.Operands {
			if !op.Reaches(target) {
				continue
			}
			contributions[op.ID] = append(contributions[op.ID], n.Backward.VJP(b, grad, n, op, i))
		}
	}

	// Unreachable when root reaches target: the traversal always emits the target.
	return b.ZerosLike(g.ctx.vars[v.index])
}

// Sum folds values left to right, starting from a clone of the first.
//
// Panics on an empty slice.
func Sum[T any](b value.Accumulator[T], values []T) T {
	if len(values) == 0 {
		panic("engine: Sum of no values")
	}
	acc := b.Clone(values[0])
	for _, v := range values[1:] {
		acc = b.Add(acc, v)
	}
	return acc
}
