package augtree

// Mode selects how a rotation restructures its nodes.
type Mode int

const (
	// InPlace mutates the rotated nodes directly. The caller must own the
	// subtree exclusively; every reference into it held before the call,
	// including the old root, is invalidated.
	InPlace Mode = iota

	// Persistent never mutates an input node. The rotated positions are
	// re-allocated and every untouched subtree is reused by reference, so
	// older tree versions keep observing consistent state.
	Persistent
)

// RotateRight corrects a left-heavy subtree: X(L(a,b), d) becomes
// L(a, X(b,d)). It returns the new subtree root and requires x to have a
// left child; rotating without one faults rather than guarding, since the
// caller's balance policy must only request structurally valid rotations.
func RotateRight[T, E any](ivx Introspector[T, E], x *Node[T], mode Mode) *Node[T] {
	l := x.left

	if mode == Persistent {
		return With(ivx, l, l.left, With(ivx, x, l.right, x.right))
	}

	a, b := l.left, l.right

	// x must be finalized before it becomes l's child, so l's aggregate
	// recomputation reads correct values.
	SetChildren(ivx, x, b, x.right)
	SetChildren(ivx, l, a, x)

	return l
}

// RotateLeft corrects a right-heavy subtree: X(a, R(b,d)) becomes
// R(X(a,b), d). Mirror of RotateRight; requires x to have a right child.
func RotateLeft[T, E any](ivx Introspector[T, E], x *Node[T], mode Mode) *Node[T] {
	r := x.right

	if mode == Persistent {
		return With(ivx, r, With(ivx, x, x.left, r.left), r.right)
	}

	b, d := r.left, r.right

	SetChildren(ivx, x, x.left, b)
	SetChildren(ivx, r, x, d)

	return r
}

// RotateRightLeft handles the zig-zag case where the right child is itself
// left-heavy: X(a, R(M(b,c), d)) becomes M(X(a,b), R(c,d)). Requires x to
// have a right child with a left child.
func RotateRightLeft[T, E any](ivx Introspector[T, E], x *Node[T], mode Mode) *Node[T] {
	if mode == Persistent {
		// Composing the single rotations keeps the subtree-reuse rule in
		// one place instead of re-deriving it here.
		inner := RotateRight(ivx, x.right, Persistent)

		return RotateLeft(ivx, With(ivx, x, x.left, inner), Persistent)
	}

	r := x.right
	m := r.left
	b, c := m.left, m.right

	// Direct three-node relink, aggregates bottom-up: x, then r, then m.
	SetChildren(ivx, x, x.left, b)
	SetChildren(ivx, r, c, r.right)
	SetChildren(ivx, m, x, r)

	return m
}

// RotateLeftRight handles the mirrored zig-zag where the left child is
// right-heavy: X(L(a, M(b,c)), d) becomes M(L(a,b), X(c,d)). Requires x to
// have a left child with a right child.
func RotateLeftRight[T, E any](ivx Introspector[T, E], x *Node[T], mode Mode) *Node[T] {
	if mode == Persistent {
		inner := RotateLeft(ivx, x.left, Persistent)

		return RotateRight(ivx, With(ivx, x, inner, x.right), Persistent)
	}

	l := x.left
	m := l.right
	b, c := m.left, m.right

	SetChildren(ivx, x, c, x.right)
	SetChildren(ivx, l, l.left, b)
	SetChildren(ivx, m, l, x)

	return m
}
