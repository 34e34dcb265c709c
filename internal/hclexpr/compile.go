// Package hclexpr compiles HCL native-syntax expressions into differentiable expressions
// over dense arrays.
//
// Supported syntax: number and sequence literals, variable references, parentheses,
// unary minus, the arithmetic operators + - * /, and calls to the functions listed in
// Functions. Everything else is reported as a diagnostic.
package hclexpr

import (
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/born-ml/backprop/internal/dense"
	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/ops"
)

// Expr is a differentiable expression over dense arrays.
type Expr = engine.Expression[*dense.Array]

// Scope resolves names referenced by an expression.
type Scope map[string]Expr

// Parse parses src as an HCL expression and compiles it.
func Parse(src, filename string, scope Scope) (Expr, hcl.Diagnostics) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	return Compile(expr, scope)
}

// Compile converts a parsed HCL expression into an engine expression.
func Compile(expr hcl.Expression, scope Scope) (Expr, hcl.Diagnostics) {
	syntax, ok := expr.(hclsyntax.Expression)
	if !ok {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported expression",
			Detail:   "Objectives must be written in HCL native syntax.",
			Subject:  expr.Range().Ptr(),
		}}
	}
	c := &compiler{scope: scope}
	out := c.compile(syntax)
	return out, c.diags
}

type compiler struct {
	scope Scope
	diags hcl.Diagnostics
}

func (c *compiler) errorf(rng hcl.Range, summary, format string, args ...any) {
	c.diags = append(c.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   fmt.Sprintf(format, args...),
		Subject:  rng.Ptr(),
	})
}

func (c *compiler) compile(expr hclsyntax.Expression) Expr {
	switch e := expr.(type) {
	case *hclsyntax.ParenthesesExpr:
		return c.compile(e.Expression)

	case *hclsyntax.LiteralValueExpr, *hclsyntax.TupleConsExpr:
		return c.constant(expr)

	case *hclsyntax.ScopeTraversalExpr:
		if len(e.Traversal) != 1 {
			c.errorf(e.Range(), "Unsupported reference", "Only plain variable names can be referenced.")
			return nil
		}
		name := e.Traversal.RootName()
		v, ok := c.scope[name]
		if !ok {
			c.errorf(e.Range(), "Unknown variable", "There is no variable named %q.", name)
			return nil
		}
		return v

	case *hclsyntax.UnaryOpExpr:
		if e.Op != hclsyntax.OpNegate {
			c.errorf(e.Range(), "Unsupported operator", "Only unary minus is supported.")
			return nil
		}
		if _, ok := e.Val.(*hclsyntax.LiteralValueExpr); ok {
			return c.constant(e)
		}
		x := c.compile(e.Val)
		if x == nil {
			return nil
		}
		return ops.Neg(x)

	case *hclsyntax.BinaryOpExpr:
		build, ok := binaryOps[e.Op]
		if !ok {
			c.errorf(e.Range(), "Unsupported operator", "Only + - * / are supported.")
			return nil
		}
		lhs, rhs := c.compile(e.LHS), c.compile(e.RHS)
		if lhs == nil || rhs == nil {
			return nil
		}
		return build(lhs, rhs)

	case *hclsyntax.FunctionCallExpr:
		return c.call(e)

	default:
		c.errorf(expr.Range(), "Unsupported expression", "This kind of expression cannot be differentiated.")
		return nil
	}
}

func (c *compiler) constant(expr hclsyntax.Expression) Expr {
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		c.diags = append(c.diags, diags...)
		return nil
	}
	a, err := ArrayFromValue(v)
	if err != nil {
		c.errorf(expr.Range(), "Invalid constant", "%s.", err)
		return nil
	}
	return ops.Const(a)
}

func (c *compiler) call(e *hclsyntax.FunctionCallExpr) Expr {
	fn, ok := functions[e.Name]
	if !ok {
		c.errorf(e.NameRange, "Call to unknown function", "There is no function named %q.", e.Name)
		return nil
	}
	if e.ExpandFinal {
		c.errorf(e.Range(), "Unsupported argument expansion", "Argument expansion is not supported.")
		return nil
	}
	minArgs, maxArgs := fn.arity, fn.arity
	if fn.param != nil {
		maxArgs++
		if !fn.param.optional {
			minArgs++
		}
	}
	if n := len(e.Args); n < minArgs || n > maxArgs {
		c.errorf(e.Range(), "Wrong number of arguments", "Function %q takes %s, got %d.", e.Name, fn.argCount(), n)
		return nil
	}

	args := make([]Expr, fn.arity)
	for i := range args {
		if args[i] = c.compile(e.Args[i]); args[i] == nil {
			return nil
		}
	}
	if len(e.Args) == fn.arity {
		return fn.build(args)
	}

	n, ok := c.number(e.Args[fn.arity], fn.param.name)
	if !ok {
		return nil
	}
	if fn.param.integer && n != math.Trunc(n) {
		c.errorf(e.Args[fn.arity].Range(), "Invalid "+fn.param.name, "The %s must be a whole number.", fn.param.name)
		return nil
	}
	return fn.param.build(args[0], n)
}

// number evaluates a constant scalar argument.
func (c *compiler) number(expr hclsyntax.Expression, name string) (float64, bool) {
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		c.diags = append(c.diags, diags...)
		return 0, false
	}
	a, err := ArrayFromValue(v)
	if err != nil || a.Len() != 1 || a.Rank() != 0 {
		c.errorf(expr.Range(), "Invalid "+name, "The %s must be a constant number.", name)
		return 0, false
	}
	return a.Item(), true
}

var binaryOps = map[*hclsyntax.Operation]func(a, b Expr) Expr{
	hclsyntax.OpAdd:      func(a, b Expr) Expr { return ops.Add(a, b) },
	hclsyntax.OpSubtract: func(a, b Expr) Expr { return ops.Sub(a, b) },
	hclsyntax.OpMultiply: func(a, b Expr) Expr { return ops.Mul(a, b) },
	hclsyntax.OpDivide:   func(a, b Expr) Expr { return ops.Div(a, b) },
}

type function struct {
	arity int
	build func(args []Expr) Expr
	param *param
}

// param is a trailing constant number argument.
type param struct {
	name     string
	optional bool // without it, build is called instead
	integer  bool
	build    func(x Expr, n float64) Expr
}

func (fn function) argCount() string {
	switch {
	case fn.param == nil:
		return fmt.Sprintf("%d argument(s)", fn.arity)
	case fn.param.optional:
		return fmt.Sprintf("%d or %d arguments", fn.arity, fn.arity+1)
	default:
		return fmt.Sprintf("%d arguments", fn.arity+1)
	}
}

func unary(f func(x Expr) Expr) function {
	return function{arity: 1, build: func(args []Expr) Expr { return f(args[0]) }}
}

func binary(f func(a, b Expr) Expr) function {
	return function{arity: 2, build: func(args []Expr) Expr { return f(args[0], args[1]) }}
}

// withAxis accepts an optional whole-number axis as a second argument.
func withAxis(fn function, f func(x Expr, axis int) Expr) function {
	fn.param = &param{name: "axis", optional: true, integer: true,
		build: func(x Expr, n float64) Expr { return f(x, int(n)) }}
	return fn
}

var functions = map[string]function{
	"sin":       unary(func(x Expr) Expr { return ops.Sin(x) }),
	"cos":       unary(func(x Expr) Expr { return ops.Cos(x) }),
	"tan":       unary(func(x Expr) Expr { return ops.Tan(x) }),
	"sinh":      unary(func(x Expr) Expr { return ops.Sinh(x) }),
	"cosh":      unary(func(x Expr) Expr { return ops.Cosh(x) }),
	"tanh":      unary(func(x Expr) Expr { return ops.Tanh(x) }),
	"exp":       unary(func(x Expr) Expr { return ops.Exp(x) }),
	"log":       unary(func(x Expr) Expr { return ops.Log(x) }),
	"sqrt":      unary(func(x Expr) Expr { return ops.Sqrt(x) }),
	"sigmoid":   unary(func(x Expr) Expr { return ops.Sigmoid(x) }),
	"square":    unary(func(x Expr) Expr { return ops.Square(x) }),
	"sum":       unary(func(x Expr) Expr { return ops.Sum(x) }),
	"transpose": unary(func(x Expr) Expr { return ops.Transpose(x) }),
	"logsumexp": withAxis(unary(func(x Expr) Expr { return ops.LogSumExp(x) }),
		func(x Expr, axis int) Expr { return ops.LogSumExpAxis(x, axis) }),
	"logsoftmax": withAxis(unary(func(x Expr) Expr { return ops.LogSoftmax(x) }),
		func(x Expr, axis int) Expr { return ops.LogSoftmaxAxis(x, axis) }),
	"relu":    unary(func(x Expr) Expr { return ops.ReLU(x) }),
	"dot":     binary(func(a, b Expr) Expr { return ops.Dot(a, b) }),
	"matmul":  binary(func(a, b Expr) Expr { return ops.MatMul(a, b) }),
	"maximum": binary(func(a, b Expr) Expr { return ops.Maximum(a, b) }),
	"pow": {arity: 1, param: &param{name: "exponent",
		build: func(x Expr, n float64) Expr { return ops.Pow(x, n) }}},
}

// Functions returns the names of the callable functions in alphabetical order.
func Functions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
