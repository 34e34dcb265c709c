// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package autodiff

import "github.com/born-ml/backprop/internal/ops"

// Expr wraps an Expression with chainable arithmetic.
//
// Expr is itself an Expression. Evaluating it evaluates the wrapped expression through
// the pass, so wrapping never duplicates nodes.
type Expr[T any] struct {
	inner Expression[T]
}

// Wrap returns e with chainable arithmetic methods.
func Wrap[T any](e Expression[T]) Expr[T] {
	if w, ok := e.(Expr[T]); ok {
		return w
	}
	return Expr[T]{inner: e}
}

// Unwrap returns the wrapped expression.
func (e Expr[T]) Unwrap() Expression[T] {
	return e.inner
}

// Eval implements Expression.
func (e Expr[T]) Eval(p *Pass[T]) *Node[T] {
	return p.Eval(e.inner)
}

// Add returns e + other.
func (e Expr[T]) Add(other Expression[T]) Expr[T] {
	return Expr[T]{inner: ops.Add(e.inner, unwrap(other))}
}

// Sub returns e - other.
func (e Expr[T]) Sub(other Expression[T]) Expr[T] {
	return Expr[T]{inner: ops.Sub(e.inner, unwrap(other))}
}

// Mul returns e * other, elementwise.
func (e Expr[T]) Mul(other Expression[T]) Expr[T] {
	return Expr[T]{inner: ops.Mul(e.inner, unwrap(other))}
}

// Div returns e / other, elementwise.
func (e Expr[T]) Div(other Expression[T]) Expr[T] {
	return Expr[T]{inner: ops.Div(e.inner, unwrap(other))}
}

// Neg returns -e.
func (e Expr[T]) Neg() Expr[T] {
	return Expr[T]{inner: ops.Neg(e.inner)}
}

// Apply returns f(e), for chaining unary operations.
//
//	autodiff.Wrap[float64](x).Mul(x).Apply(ops.Sin[float64])
func (e Expr[T]) Apply(f func(Expression[T]) Expression[T]) Expr[T] {
	return Wrap(f(e.inner))
}

func unwrap[T any](e Expression[T]) Expression[T] {
	if w, ok := e.(Expr[T]); ok {
		return w.inner
	}
	return e
}
