package engine

import (
	"reflect"

	"github.com/born-ml/backprop/internal/value"
)

// Expression is an immutable description of a computation.
//
// Eval evaluates sub-expressions through p.Eval in argument order, computes the forward value and
// records the result with p.NewNode (or p.Leaf for variables).
type Expression[T any] interface {
	Eval(p *Pass[T]) *Node[T]
}

// Pass is the state of one forward evaluation.
//
// It owns the id counter, which starts past the variable ids so minted ids never collide with them,
// and an arena that returns the same node whenever the same variable or the same pointer-typed
// expression is evaluated again. Node identity therefore matches id identity within a pass.
type Pass[T any] struct {
	ctx    *Context[T]
	next   NodeID
	leaves map[int]*Node[T]
	memo   map[Expression[T]]*Node[T]
	nodes  int
}

func newPass[T any](ctx *Context[T]) *Pass[T] {
	return &Pass[T]{
		ctx:    ctx,
		next:   NodeID(len(ctx.vars)),
		leaves: make(map[int]*Node[T]),
		memo:   make(map[Expression[T]]*Node[T]),
	}
}

// Context returns the context the pass reads variable values from.
func (p *Pass[T]) Context() *Context[T] {
	return p.ctx
}

// Backend returns the context's backend.
func (p *Pass[T]) Backend() value.Accumulator[T] {
	return p.ctx.backend
}

// Len returns the number of distinct nodes recorded so far.
func (p *Pass[T]) Len() int {
	return p.nodes
}

// Eval evaluates e, reusing the node from an earlier evaluation of the same expression in this pass.
func (p *Pass[T]) Eval(e Expression[T]) *Node[T] {
	if e == nil {
		panic("engine: Eval: nil expression")
	}
	// Only pointers have a stable identity worth caching; value-typed expressions may not even be hashable.
	if reflect.ValueOf(e).Kind() != reflect.Pointer {
		return e.Eval(p)
	}
	if n, ok := p.memo[e]; ok {
		return n
	}
	n := e.Eval(p)
	p.memo[e] = n
	return n
}

// Leaf returns the node for variable v, creating it on first use.
//
// Panics if v belongs to another context.
func (p *Pass[T]) Leaf(v Variable[T]) *Node[T] {
	p.ctx.check("Eval", v)
	if n, ok := p.leaves[v.index]; ok {
		return n
	}
	n := &Node[T]{
		ID:       NodeID(v.index),
		Value:    p.ctx.vars[v.index],
		Backward: Identity[T]{},
	}
	p.leaves[v.index] = n
	p.nodes++
	return n
}

// NewNode records a computed value with a freshly minted id.
//
// The progenitor set is the union of the operands' ids and their own progenitors.
func (p *Pass[T]) NewNode(val T, operands []*Node[T], backward VJP[T]) *Node[T] {
	var progenitors IDSet
	if len(operands) > 0 {
		progenitors = make(IDSet)
		for _, op := range operands {
			progenitors[op.ID] = struct{}{}
			for id := range op.Progenitors {
				progenitors[id] = struct{}{}
			}
		}
	}
	if backward == nil {
		backward = Identity[T]{}
	}

	n := &Node[T]{
		ID:          p.next,
		Value:       val,
		Operands:    operands,
		Progenitors: progenitors,
		Backward:    backward,
	}
	p.next++
	p.nodes++
	return n
}
