// Package engine implements reverse-mode automatic differentiation over immutable expressions.
//
// Architecture:
//   - Context: owns the mutable store of variable values and the numeric backend
//   - Expression: immutable description of a computation, evaluated once per Pass
//   - Pass: one forward evaluation; mints node ids and shares repeated sub-expressions
//   - Node: per-pass record (id, value, operands, progenitors, backward rule)
//   - ReverseTopology: visits only the nodes that lie between the root and one target
//   - Gradient: one forward pass plus one backward pass for a single target variable
//
// Usage:
//
//	ctx := engine.NewContext[float64](scalar.New())
//	x := ctx.CreateVariable(0.5)
//	expr := ops.Sin[float64](x)
//	dx := engine.Of(expr, ctx).Grad(x) // cos(0.5)
package engine

import (
	"fmt"

	"github.com/born-ml/backprop/internal/value"
)

// Context holds the current value of every variable created through it.
//
// A Context is not safe for concurrent use. Variables are appended monotonically and never removed.
type Context[T any] struct {
	vars    []T
	backend value.Accumulator[T]
}

// NewContext creates an empty context computing with backend b.
func NewContext[T any](b value.Accumulator[T]) *Context[T] {
	if b == nil {
		panic("engine: NewContext requires a backend")
	}
	return &Context[T]{
		vars:    make([]T, 0, 8),
		backend: b,
	}
}

// CreateVariable appends value to the store and returns a handle to it.
func (c *Context[T]) CreateVariable(value T) Variable[T] {
	c.vars = append(c.vars, value)
	return Variable[T]{index: len(c.vars) - 1, owner: c}
}

// SetVariableValue replaces the stored value of v.
//
// Panics if v was not created by this context.
func (c *Context[T]) SetVariableValue(v Variable[T], value T) {
	c.check("SetVariableValue", v)
	c.vars[v.index] = value
}

// Value returns the current stored value of v.
//
// Panics if v was not created by this context.
func (c *Context[T]) Value(v Variable[T]) T {
	c.check("Value", v)
	return c.vars[v.index]
}

// Owns reports whether v was created by this context.
func (c *Context[T]) Owns(v Variable[T]) bool {
	return v.owner == c && v.index >= 0 && v.index < len(c.vars)
}

// Len returns the number of variables in the store.
func (c *Context[T]) Len() int {
	return len(c.vars)
}

// Backend returns the backend the context computes with.
func (c *Context[T]) Backend() value.Accumulator[T] {
	return c.backend
}

// Evaluate runs a fresh forward pass of expr and returns its root node.
func (c *Context[T]) Evaluate(expr Expression[T]) *Node[T] {
	return c.NewPass().Eval(expr)
}

// NewPass starts a forward pass against the current variable values.
func (c *Context[T]) NewPass() *Pass[T] {
	return newPass(c)
}

func (c *Context[T]) check(op string, v Variable[T]) {
	if v.owner != c {
		panic(fmt.Sprintf("engine: %s: variable %d does not belong to this context", op, v.index))
	}
	if v.index < 0 || v.index >= len(c.vars) {
		panic(fmt.Sprintf("engine: %s: variable index %d out of range [0, %d)", op, v.index, len(c.vars)))
	}
}

// Variable is a stable handle to one slot of a Context's store.
//
// The zero Variable belongs to no context.
type Variable[T any] struct {
	index int
	owner *Context[T]
}

// Index returns the slot index, which is also the node id of the variable in every pass.
func (v Variable[T]) Index() int {
	return v.index
}

// ID returns the node id the variable takes in every pass.
func (v Variable[T]) ID() NodeID {
	return NodeID(v.index)
}

// Eval returns the shared leaf node for v.
func (v Variable[T]) Eval(p *Pass[T]) *Node[T] {
	return p.Leaf(v)
}

// String implements fmt.Stringer.
func (v Variable[T]) String() string {
	return fmt.Sprintf("var%d", v.index)
}
