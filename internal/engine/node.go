package engine

import (
	"slices"

	"github.com/born-ml/backprop/internal/value"
)

// NodeID identifies a node within one forward pass.
//
// Variables keep their store index as id in every pass; every other node gets a fresh id minted by the pass.
type NodeID int

// IDSet is a set of node ids. The nil set is empty.
type IDSet map[NodeID]struct{}

// Has reports whether id is in the set.
func (s IDSet) Has(id NodeID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids in the set.
func (s IDSet) Len() int {
	return len(s)
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []NodeID {
	ids := make([]NodeID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Node is the record one expression leaves behind in a forward pass.
type Node[T any] struct {
	// ID is unique within the pass.
	ID NodeID

	// Value is the forward result. Backward rules must not mutate it.
	Value T

	// Operands are the argument nodes in argument order. Position matters for backward dispatch.
	Operands []*Node[T]

	// Progenitors holds the id of every node transitively upstream of this one.
	Progenitors IDSet

	// Backward maps an incoming gradient to a contribution for one operand.
	Backward VJP[T]
}

// IsLeaf reports whether the node has no operands.
func (n *Node[T]) IsLeaf() bool {
	return len(n.Operands) == 0
}

// DependsOn reports whether id is strictly upstream of n.
func (n *Node[T]) DependsOn(id NodeID) bool {
	return n.Progenitors.Has(id)
}

// Reaches reports whether gradient flowing into n can reach id: n is id or depends on it.
func (n *Node[T]) Reaches(id NodeID) bool {
	return n.ID == id || n.Progenitors.Has(id)
}

// VJP is the backward rule of one operation.
//
// Given the incoming gradient g for node, it returns the contribution for operand, which sits at
// position argnum among node's operands. Rules are pure: they read captured state and their arguments.
type VJP[T any] interface {
	VJP(b value.Accumulator[T], g T, node, operand *Node[T], argnum int) T
}

// VJPFunc adapts a function to the VJP interface.
type VJPFunc[T any] func(b value.Accumulator[T], g T, node, operand *Node[T], argnum int) T

// VJP calls f.
func (f VJPFunc[T]) VJP(b value.Accumulator[T], g T, node, operand *Node[T], argnum int) T {
	return f(b, g, node, operand, argnum)
}

// Identity passes the incoming gradient through unchanged.
type Identity[T any] struct{}

// VJP returns g.
func (Identity[T]) VJP(_ value.Accumulator[T], g T, _, _ *Node[T], _ int) T {
	return g
}
