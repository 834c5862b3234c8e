// Package augtree implements the augmented, height-balanced binary search
// tree behind interval overlap queries. Each node tracks, for its whole
// subtree, which descendant holds the maximum interval end-point, so a
// query can prune any subtree whose maximum end lies before the range it
// is probing.
//
// The node algebra (aggregate recomputation and the four rotations) comes
// in two forms selected by Mode: in-place mutation for exclusively owned
// trees, and persistent (structure-sharing) updates that allocate only the
// nodes whose position changed and reuse every untouched subtree by
// reference.
package augtree

// Introspector extracts ordered endpoints from an interval value. It must
// be a pure function of the value: endpoints are re-read on every aggregate
// recomputation. Ordering is supplied explicitly through Compare rather
// than assumed intrinsic to E, so non-numeric endpoint domains order
// correctly.
type Introspector[T, E any] interface {
	// Start returns the lower endpoint, used for BST placement.
	Start(value T) E
	// End returns the upper endpoint, used for the max-end augmentation.
	End(value T) E
	// Compare returns a negative number, zero, or a positive number when
	// a sorts before, equal to, or after b.
	Compare(a, b E) int
}

// Node is a subtree of interval values. Its fields are recomputed through
// SetChildren and never independently settable; read them through the
// accessors.
type Node[T any] struct {
	value  T
	left   *Node[T]
	right  *Node[T]
	height int
	maxEnd *Node[T]
}

// Value returns the interval payload. The payload is immutable for the
// lifetime of the node.
func (n *Node[T]) Value() T {
	return n.value
}

// Left returns the left child, nil when absent.
func (n *Node[T]) Left() *Node[T] {
	return n.left
}

// Right returns the right child, nil when absent.
func (n *Node[T]) Right() *Node[T] {
	return n.right
}

// Height returns 1 plus the height of the taller child; a leaf has height 1.
func (n *Node[T]) Height() int {
	return n.height
}

// MaxEnd returns the node among this subtree whose interval end is maximal.
// It is never nil for a non-nil node: the node itself qualifies at minimum.
func (n *Node[T]) MaxEnd() *Node[T] {
	return n.maxEnd
}

// Height returns the height of a subtree; an absent subtree has height 0.
func Height[T any](n *Node[T]) int {
	if n == nil {
		return 0
	}

	return n.height
}

// NewLeaf builds a childless node holding value.
func NewLeaf[T, E any](ivx Introspector[T, E], value T) *Node[T] {
	return NewNode(ivx, value, nil, nil)
}

// NewNode builds a node holding value with the given child subtrees. The
// children must already satisfy the height and max-end invariants; the new
// node's aggregates are correct by construction.
func NewNode[T, E any](ivx Introspector[T, E], value T, left, right *Node[T]) *Node[T] {
	n := &Node[T]{value: value}
	SetChildren(ivx, n, left, right)

	return n
}

// With returns a new node carrying n's value but the given children,
// leaving n untouched. This is the building block of every persistent
// rotation: subtrees the rotation does not move are shared by reference,
// never copied.
func With[T, E any](ivx Introspector[T, E], n *Node[T], left, right *Node[T]) *Node[T] {
	return NewNode(ivx, n.value, left, right)
}

// SetChildren assigns left and right as n's children and recomputes the
// height and max-end aggregates. Every in-place restructuring funnels
// through here; persistent code paths only reach it via NewNode, on nodes
// no other tree version can observe yet.
//
// Max-end ties resolve deterministically: the node itself wins against
// either child, and the left child wins against the right.
func SetChildren[T, E any](ivx Introspector[T, E], n *Node[T], left, right *Node[T]) {
	n.left = left
	n.right = right
	n.height = 1 + max(Height(left), Height(right))
	n.maxEnd = maxEndOf(ivx, n)
}

// maxEndOf picks the max-end node among n and its children's max-end
// nodes. An absent child contributes no candidate.
func maxEndOf[T, E any](ivx Introspector[T, E], n *Node[T]) *Node[T] {
	selfEnd := ivx.End(n.value)

	geLeft := n.left == nil || ivx.Compare(selfEnd, ivx.End(n.left.maxEnd.value)) >= 0
	geRight := n.right == nil || ivx.Compare(selfEnd, ivx.End(n.right.maxEnd.value)) >= 0

	switch {
	case geLeft && geRight:
		return n
	case n.left != nil && (n.right == nil ||
		ivx.Compare(ivx.End(n.left.maxEnd.value), ivx.End(n.right.maxEnd.value)) >= 0):
		return n.left.maxEnd
	case n.right != nil:
		return n.right.maxEnd
	}

	// Reachable only if a child's aggregates were already broken before
	// the call: a programming error, not an operational condition.
	panic("augtree: no max-end candidate, subtree invariants already violated")
}
