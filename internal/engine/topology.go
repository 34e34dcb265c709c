package engine

import "iter"

// ReverseTopology yields, in reverse topological order, the nodes between a root and one target.
//
// Only operands through which the target is reachable are followed. A node is yielded after every
// relevant node that consumes it, and each relevant id is yielded exactly once.
//
// The iterator is lazy and single-use.
type ReverseTopology[T any] struct {
	target  NodeID
	pending map[NodeID]int
	stack   []*Node[T]
	emitted int
}

// NewReverseTopology prepares the traversal from root toward target.
//
// Discovery walks relevant operand edges once per distinct node and counts, for every operand id,
// how many relevant edges point at it. The root is seeded with a count of one.
func NewReverseTopology[T any](root *Node[T], target NodeID) *ReverseTopology[T] {
	t := &ReverseTopology[T]{
		target:  target,
		pending: map[NodeID]int{root.ID: 1},
	}

	visited := map[NodeID]bool{root.ID: true}
	walk := []*Node[T]{root}
	for len(walk) > 0 {
		n := walk[len(walk)-1]
		walk = walk[:len(walk)-1]
		for _, op := range n.Operands {
			if !op.Reaches(target) {
				continue
			}
			t.pending[op.ID]++
			if !visited[op.ID] {
				visited[op.ID] = true
				walk = append(walk, op)
			}
		}
	}

	t.pending[root.ID]--
	t.stack = []*Node[T]{root}
	return t
}

// Next returns the next node, or false when the traversal is exhausted.
func (t *ReverseTopology[T]) Next() (*Node[T], bool) {
	if len(t.stack) == 0 {
		return nil, false
	}
	n := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]

	for _, op := range n.Operands {
		if !op.Reaches(t.target) {
			continue
		}
		t.pending[op.ID]--
		if t.pending[op.ID] == 0 {
			t.stack = append(t.stack, op)
		}
	}
	t.emitted++
	return n, true
}

// All returns the remaining nodes as a sequence.
func (t *ReverseTopology[T]) All() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		for {
			n, ok := t.Next()
			if !ok || !yield(n) {
				return
			}
		}
	}
}

// Emitted returns how many nodes have been yielded so far.
func (t *ReverseTopology[T]) Emitted() int {
	return t.emitted
}
