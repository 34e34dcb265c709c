package ops

import (
	"fmt"

	"github.com/born-ml/backprop/internal/engine"
	"github.com/born-ml/backprop/internal/value"
)

// DotOp represents the rank-aware product of a and b.
//
// Backward pass, by operand ranks:
//   - vector·vector: grad_a = g * b, grad_b = g * a
//   - matrix·vector: grad_A = g ⊗ v, grad_v = Aᵀ · g
//   - vector·matrix: grad_v = B · g, grad_B = v ⊗ g
//   - matrix·matrix: grad_A = g @ Bᵀ, grad_B = Aᵀ @ g
//
// Any other rank combination panics in the backward pass.
type DotOp[T any] struct {
	a, b engine.Expression[T]
}

// Dot returns the product of a and b.
func Dot[T any](a, b engine.Expression[T]) *DotOp[T] {
	return &DotOp[T]{a: a, b: b}
}

// Eval implements engine.Expression.
func (op *DotOp[T]) Eval(p *engine.Pass[T]) *engine.Node[T] {
	a, b := p.Eval(op.a), p.Eval(op.b)
	la := linalg("dot", p.Backend())
	return p.NewNode(la.Dot(a.Value, b.Value), operands(a, b), dotVJP[T]{name: "dot", a: a.Value, b: b.Value})
}

// dotVJP is shared by Dot and MatMul. The name selects the error messages.
type dotVJP[T any] struct {
	name string
	a, b T
}

func (v dotVJP[T]) VJP(b value.Accumulator[T], g T, _, _ *engine.Node[T], argnum int) T {
	if argnum != 0 && argnum != 1 {
		panic(invalidArgnum(v.name, argnum))
	}
	la := linalg(v.name, b)
	ra, rb := la.Rank(v.a), la.Rank(v.b)

	switch {
	case ra == 1 && rb == 1 && v.name == "dot":
		ar := arithmetic(v.name, b)
		if argnum == 0 {
			return ar.Mul(g, v.b)
		}
		return ar.Mul(g, v.a)
	case ra == 2 && rb == 1 && v.name == "dot":
		if argnum == 0 {
			return la.Outer(g, v.b)
		}
		return la.Dot(la.Transpose(v.a), g)
	case ra == 1 && rb == 2 && v.name == "dot":
		if argnum == 0 {
			return la.Dot(v.b, g)
		}
		return la.Outer(v.a, g)
	case ra == 2 && rb == 2:
		if argnum == 0 {
			return la.MatMul(g, la.Transpose(v.b))
		}
		return la.MatMul(la.Transpose(v.a), g)
	default:
		panic(fmt.Sprintf("%s: %s · %s derivative not supported", v.name, rankName(ra), rankName(rb)))
	}
}

func rankName(rank int) string {
	switch rank {
	case 0:
		return "scalar"
	case 1:
		return "vector"
	case 2:
		return "matrix"
	default:
		return fmt.Sprintf("rank %d", rank)
	}
}
