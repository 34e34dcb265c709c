// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ops provides the differentiable operations.
//
// Every function returns an autodiff.Expression, so they compose freely and can be
// passed to autodiff.Expr.Apply. Each operation requires a capability of the context's
// backend (see package backend) and panics with the operation's name when the backend
// does not provide it.
//
// # Elementwise
//
// Add, Sub, Mul, Div and Maximum broadcast their operands; the backward rules reduce
// gradients back to each operand's shape. Neg, Sin, Cos, Tan, Sinh, Cosh, Tanh, Exp,
// Log, Sqrt, Sigmoid, Pow, Square and ReLU apply per element.
//
// # Reductions and linear algebra
//
// Sum, LogSumExp and LogSoftmax reduce over all elements; LogSumExpAxis and
// LogSoftmaxAxis reduce along one axis of a backend with axis reductions. Dot follows NumPy's rank
// rules for scalars, vectors and matrices. MatMul and Transpose work on matrices.
//
// # Constants
//
// Const and Scalar are leaves that never receive a gradient.
package ops

import (
	"github.com/born-ml/backprop/autodiff"
	"github.com/born-ml/backprop/internal/ops"
)

// Expression is the type every operation accepts and returns.
type Expression[T any] = autodiff.Expression[T]

// Add returns a + b.
func Add[T any](a, b Expression[T]) Expression[T] { return ops.Add(a, b) }

// Sub returns a - b.
func Sub[T any](a, b Expression[T]) Expression[T] { return ops.Sub(a, b) }

// Mul returns a * b, elementwise.
func Mul[T any](a, b Expression[T]) Expression[T] { return ops.Mul(a, b) }

// Div returns a / b, elementwise.
func Div[T any](a, b Expression[T]) Expression[T] { return ops.Div(a, b) }

// Neg returns -x.
func Neg[T any](x Expression[T]) Expression[T] { return ops.Neg(x) }

// Sin returns sin(x).
func Sin[T any](x Expression[T]) Expression[T] { return ops.Sin(x) }

// Cos returns cos(x).
func Cos[T any](x Expression[T]) Expression[T] { return ops.Cos(x) }

// Tan returns tan(x).
func Tan[T any](x Expression[T]) Expression[T] { return ops.Tan(x) }

// Sinh returns sinh(x).
func Sinh[T any](x Expression[T]) Expression[T] { return ops.Sinh(x) }

// Cosh returns cosh(x).
func Cosh[T any](x Expression[T]) Expression[T] { return ops.Cosh(x) }

// Tanh returns tanh(x).
func Tanh[T any](x Expression[T]) Expression[T] { return ops.Tanh(x) }

// Exp returns e^x.
func Exp[T any](x Expression[T]) Expression[T] { return ops.Exp(x) }

// Log returns the natural logarithm of x.
func Log[T any](x Expression[T]) Expression[T] { return ops.Log(x) }

// Sqrt returns the square root of x.
func Sqrt[T any](x Expression[T]) Expression[T] { return ops.Sqrt(x) }

// Sigmoid returns 1 / (1 + e^-x).
func Sigmoid[T any](x Expression[T]) Expression[T] { return ops.Sigmoid(x) }

// Pow returns x^n for a constant exponent n.
func Pow[T any](x Expression[T], n float64) Expression[T] { return ops.Pow(x, n) }

// Square returns x^2.
func Square[T any](x Expression[T]) Expression[T] { return ops.Square(x) }

// Sum returns the sum of all elements of x.
func Sum[T any](x Expression[T]) Expression[T] { return ops.Sum(x) }

// Dot returns the dot product of a and b.
func Dot[T any](a, b Expression[T]) Expression[T] { return ops.Dot(a, b) }

// MatMul returns the matrix product of a and b.
func MatMul[T any](a, b Expression[T]) Expression[T] { return ops.MatMul(a, b) }

// Transpose returns the transpose of a matrix.
func Transpose[T any](x Expression[T]) Expression[T] { return ops.Transpose(x) }

// LogSumExp returns log(sum(exp(x))), computed stably.
func LogSumExp[T any](x Expression[T]) Expression[T] { return ops.LogSumExp(x) }

// LogSoftmax returns x - LogSumExp(x).
func LogSoftmax[T any](x Expression[T]) Expression[T] { return ops.LogSoftmax(x) }

// LogSumExpAxis returns log(sum(exp(x))) along axis, keeping the axis with size 1.
func LogSumExpAxis[T any](x Expression[T], axis int) Expression[T] { return ops.LogSumExpAxis(x, axis) }

// LogSoftmaxAxis returns x - LogSumExpAxis(x, axis).
func LogSoftmaxAxis[T any](x Expression[T], axis int) Expression[T] { return ops.LogSoftmaxAxis(x, axis) }

// Maximum returns the elementwise maximum of a and b. Ties split the gradient evenly.
func Maximum[T any](a, b Expression[T]) Expression[T] { return ops.Maximum(a, b) }

// ReLU returns max(x, 0).
func ReLU[T any](x Expression[T]) Expression[T] { return ops.ReLU(x) }

// Const returns a constant leaf holding v.
func Const[T any](v T) Expression[T] { return ops.Const(v) }

// Scalar returns a constant leaf holding the backend's scalar v.
func Scalar[T any](v float64) Expression[T] { return ops.Scalar[T](v) }
