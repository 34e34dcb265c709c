// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// Expressions are immutable descriptions of a computation. A Context owns the current
// values of the variables they reference. Every gradient request evaluates the expression
// into a fresh record of nodes, then walks only the nodes that depend on the requested
// variable, in reverse topological order, applying each operation's backward rule.
//
// Example:
//
//	import (
//	    "github.com/born-ml/backprop/autodiff"
//	    "github.com/born-ml/backprop/backend/scalar"
//	    "github.com/born-ml/backprop/ops"
//	)
//
//	func main() {
//	    ctx := autodiff.NewContext[float64](scalar.New())
//	    x := ctx.CreateVariable(0.5)
//	    y := ctx.CreateVariable(0.3)
//
//	    // y*sin(x) + cos(y)
//	    f := autodiff.Wrap[float64](y).Mul(ops.Sin[float64](x)).Add(ops.Cos[float64](y))
//
//	    g := autodiff.Of[float64](f, ctx)
//	    value, dx := g.ValueAndGrad(x)
//	}
package autodiff

import (
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// Context owns the current values of a set of variables.
type Context[T any] = engine.Context[T]

// NewContext creates an empty context computing with b.
func NewContext[T any](b value.Accumulator[T]) *Context[T] {
	return engine.NewContext(b)
}

// Variable is a handle to one value stored in a Context.
type Variable[T any] = engine.Variable[T]

// Expression is a differentiable computation.
type Expression[T any] = engine.Expression[T]

// Pass is the state of one forward evaluation.
type Pass[T any] = engine.Pass[T]

// Node is the record of one evaluated expression.
type Node[T any] = engine.Node[T]

// NodeID identifies a node within one pass.
type NodeID = engine.NodeID

// VJP is the backward rule of an operation.
type VJP[T any] = engine.VJP[T]

// VJPFunc adapts a function to VJP.
type VJPFunc[T any] = engine.VJPFunc[T]

// Gradient differentiates one expression against the variables of one context.
type Gradient[T any] = engine.Gradient[T]

// Config configures a Gradient.
type Config = engine.Config

// DefaultConfig returns a configuration that logs nothing.
func DefaultConfig() Config {
	return engine.DefaultConfig()
}

// Of binds expr to ctx with the default configuration.
//
// Example:
//
//	g := autodiff.Of[float64](f, ctx)
//	dx := g.Grad(x)
func Of[T any](expr Expression[T], ctx *Context[T]) *Gradient[T] {
	return engine.Of(expr, ctx)
}

// NewGradient binds expr to ctx.
func NewGradient[T any](expr Expression[T], ctx *Context[T], cfg Config) *Gradient[T] {
	return engine.NewGradient(expr, ctx, cfg)
}

// ReverseTopology iterates the nodes of a pass that lie between a root and a target.
type ReverseTopology[T any] = engine.ReverseTopology[T]

// NewReverseTopology starts a traversal from root restricted to nodes that reach target.
func NewReverseTopology[T any](root *Node[T], target NodeID) *ReverseTopology[T] {
	return engine.NewReverseTopology(root, target)
}
