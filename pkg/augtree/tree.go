package augtree

// Tree is an AVL interval tree over the augmented node algebra. It supports
// Insert, Delete, QueryOverlap, and QueryPoint with O(log N) updates and
// O(log N + k) queries, where k is the number of overlapping intervals.
//
// A tree runs in one of the two rotation modes. An in-place tree mutates
// its nodes and must be owned exclusively. A persistent tree never mutates
// a reachable node: every update path-copies, older roots stay valid, and
// Clone takes O(1).
type Tree[T, E any] struct {
	ivx  Introspector[T, E]
	root *Node[T]
	size int
	mode Mode
}

// New creates an empty in-place tree using ivx to read interval endpoints.
func New[T, E any](ivx Introspector[T, E]) *Tree[T, E] {
	return &Tree[T, E]{ivx: ivx, mode: InPlace}
}

// NewPersistent creates an empty persistent (structure-sharing) tree.
func NewPersistent[T, E any](ivx Introspector[T, E]) *Tree[T, E] {
	return &Tree[T, E]{ivx: ivx, mode: Persistent}
}

// NewFromSorted builds an in-place tree from values already sorted by
// start (then end). The tree is built balanced in O(n) without rotations.
func NewFromSorted[T, E any](ivx Introspector[T, E], values []T) *Tree[T, E] {
	return &Tree[T, E]{
		ivx:  ivx,
		root: buildBalanced(ivx, values),
		size: len(values),
		mode: InPlace,
	}
}

// buildBalanced builds a height-balanced subtree from a sorted slice.
func buildBalanced[T, E any](ivx Introspector[T, E], values []T) *Node[T] {
	if len(values) == 0 {
		return nil
	}

	mid := len(values) / 2

	return NewNode(ivx, values[mid],
		buildBalanced(ivx, values[:mid]),
		buildBalanced(ivx, values[mid+1:]))
}

// Len returns the number of intervals in the tree.
func (t *Tree[T, E]) Len() int {
	return t.size
}

// Root returns the root node, nil for an empty tree. Callers may traverse
// it read-only; the max-end accessor supports O(1) "does this subtree end
// at least at E" pruning.
func (t *Tree[T, E]) Root() *Node[T] {
	return t.root
}

// Height returns the height of the tree, 0 when empty.
func (t *Tree[T, E]) Height() int {
	return Height(t.root)
}

// Clear removes all intervals from the tree.
func (t *Tree[T, E]) Clear() {
	t.root = nil
	t.size = 0
}

// Clone returns an O(1) snapshot sharing every node with t. Only persistent
// trees may be cloned: in-place updates would corrupt the shared nodes.
func (t *Tree[T, E]) Clone() *Tree[T, E] {
	if t.mode != Persistent {
		panic("augtree: Clone on an in-place tree")
	}

	snapshot := *t

	return &snapshot
}

// Insert adds value to the tree. Duplicate intervals are kept.
func (t *Tree[T, E]) Insert(value T) {
	t.root = t.insert(t.root, value)
	t.size++
}

// Delete removes one interval whose endpoints equal value's. Returns false
// if no such interval exists.
func (t *Tree[T, E]) Delete(value T) bool {
	return t.DeleteFunc(value, nil)
}

// DeleteFunc removes one interval whose endpoints equal value's and for
// which eq reports true. A nil eq accepts any endpoint match. Returns
// false if nothing matched.
func (t *Tree[T, E]) DeleteFunc(value T, eq func(T) bool) bool {
	root, removed := t.remove(t.root, value, eq)
	if !removed {
		return false
	}

	t.root = root
	t.size--

	return true
}

// QueryOverlap returns all intervals overlapping [low, high]: every value
// whose start is <= high and whose end is >= low. Subtrees whose max end
// falls before low are pruned via the augmentation.
func (t *Tree[T, E]) QueryOverlap(low, high E) []T {
	if t.root == nil {
		return nil
	}

	var results []T

	t.collectOverlap(t.root, low, high, &results)

	return results
}

// QueryPoint returns all intervals containing the given point.
func (t *Tree[T, E]) QueryPoint(point E) []T {
	return t.QueryOverlap(point, point)
}

// InOrder returns the values in BST order (by start, then end).
func (t *Tree[T, E]) InOrder() []T {
	values := make([]T, 0, t.size)
	appendInOrder(t.root, &values)

	return values
}

// appendInOrder appends the subtree's values in BST order.
func appendInOrder[T any](n *Node[T], out *[]T) {
	if n == nil {
		return
	}

	appendInOrder(n.left, out)
	*out = append(*out, n.value)
	appendInOrder(n.right, out)
}

// cmpValues orders values for BST placement: by start, then end.
func (t *Tree[T, E]) cmpValues(a, b T) int {
	if c := t.ivx.Compare(t.ivx.Start(a), t.ivx.Start(b)); c != 0 {
		return c
	}

	return t.ivx.Compare(t.ivx.End(a), t.ivx.End(b))
}

// relink attaches new children to n per the tree's mode: in-place trees
// reassign through the aggregate choke point, persistent trees path-copy.
func (t *Tree[T, E]) relink(n, left, right *Node[T]) *Node[T] {
	if t.mode == Persistent {
		return With(t.ivx, n, left, right)
	}

	SetChildren(t.ivx, n, left, right)

	return n
}

// insert descends to the leaf position for value and rebalances on the way
// back up. Values that compare equal go right, like any later duplicate.
func (t *Tree[T, E]) insert(n *Node[T], value T) *Node[T] {
	if n == nil {
		return NewLeaf(t.ivx, value)
	}

	if t.cmpValues(value, n.value) < 0 {
		n = t.relink(n, t.insert(n.left, value), n.right)
	} else {
		n = t.relink(n, n.left, t.insert(n.right, value))
	}

	return t.rebalance(n)
}

// remove deletes one matching node from the subtree. It reports whether a
// match was found; when it was not, the subtree is returned unchanged.
func (t *Tree[T, E]) remove(n *Node[T], value T, eq func(T) bool) (*Node[T], bool) {
	if n == nil {
		return nil, false
	}

	cmp := t.cmpValues(value, n.value)

	if cmp < 0 {
		left, removed := t.remove(n.left, value, eq)
		if !removed {
			return n, false
		}

		return t.rebalance(t.relink(n, left, n.right)), true
	}

	if cmp > 0 {
		right, removed := t.remove(n.right, value, eq)
		if !removed {
			return n, false
		}

		return t.rebalance(t.relink(n, n.left, right)), true
	}

	if eq == nil || eq(n.value) {
		return t.removeRoot(n), true
	}

	// Equal endpoints with a different payload can sit on either side of
	// this node; duplicates are inserted to the right, but rotations may
	// have moved older ones left.
	if left, removed := t.remove(n.left, value, eq); removed {
		return t.rebalance(t.relink(n, left, n.right)), true
	}

	if right, removed := t.remove(n.right, value, eq); removed {
		return t.rebalance(t.relink(n, n.left, right)), true
	}

	return n, false
}

// removeRoot deletes the subtree root, promoting the in-order successor
// when both children exist.
func (t *Tree[T, E]) removeRoot(n *Node[T]) *Node[T] {
	if n.left == nil {
		return n.right
	}

	if n.right == nil {
		return n.left
	}

	right, succ := t.removeMin(n.right)

	return t.rebalance(t.relink(succ, n.left, right))
}

// removeMin detaches the leftmost node of the subtree, returning the
// remaining subtree and the detached node.
func (t *Tree[T, E]) removeMin(n *Node[T]) (*Node[T], *Node[T]) {
	if n.left == nil {
		return n.right, n
	}

	rest, minNode := t.removeMin(n.left)

	return t.rebalance(t.relink(n, rest, n.right)), minNode
}

// rebalance applies the AVL balance policy at n, delegating the actual
// restructuring to the rotation primitives in the tree's mode.
func (t *Tree[T, E]) rebalance(n *Node[T]) *Node[T] {
	switch balance := Height(n.left) - Height(n.right); {
	case balance > 1:
		if Height(n.left.left) >= Height(n.left.right) {
			return RotateRight(t.ivx, n, t.mode)
		}

		return RotateLeftRight(t.ivx, n, t.mode)
	case balance < -1:
		if Height(n.right.right) >= Height(n.right.left) {
			return RotateLeft(t.ivx, n, t.mode)
		}

		return RotateRightLeft(t.ivx, n, t.mode)
	default:
		return n
	}
}

// collectOverlap collects intervals overlapping [low, high] in BST order.
func (t *Tree[T, E]) collectOverlap(n *Node[T], low, high E, results *[]T) {
	if n == nil {
		return
	}

	// Prune: nothing below ends at or after low.
	if t.ivx.Compare(t.ivx.End(n.maxEnd.value), low) < 0 {
		return
	}

	t.collectOverlap(n.left, low, high, results)

	startsBeforeHigh := t.ivx.Compare(t.ivx.Start(n.value), high) <= 0
	if startsBeforeHigh && t.ivx.Compare(t.ivx.End(n.value), low) >= 0 {
		*results = append(*results, n.value)
	}

	// Everything right of n starts at or after n; none can overlap once
	// n itself starts past high.
	if !startsBeforeHigh {
		return
	}

	t.collectOverlap(n.right, low, high, results)
}
