package augtree

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ival is the interval payload used across the package tests.
type ival struct {
	start int
	end   int
	id    int
}

// ivalIntrospector reads ival endpoints with an explicit int ordering.
type ivalIntrospector struct{}

func (ivalIntrospector) Start(v ival) int { return v.start }

func (ivalIntrospector) End(v ival) int { return v.end }

func (ivalIntrospector) Compare(a, b int) int { return cmp.Compare(a, b) }

// ivx is the introspector shared by the tests.
var ivx = ivalIntrospector{}

// checkInvariants verifies the height and max-end invariants for every
// node in the subtree and returns the subtree's maximum end.
func checkInvariants(t *testing.T, n *Node[ival]) int {
	t.Helper()

	require.NotNil(t, n)

	wantHeight := 1 + max(Height(n.Left()), Height(n.Right()))
	assert.Equal(t, wantHeight, n.Height(), "height invariant at %v", n.Value())

	maxEnd := n.Value().end

	if n.Left() != nil {
		maxEnd = max(maxEnd, checkInvariants(t, n.Left()))
	}

	if n.Right() != nil {
		maxEnd = max(maxEnd, checkInvariants(t, n.Right()))
	}

	require.NotNil(t, n.MaxEnd(), "max-end reference at %v", n.Value())
	assert.Equal(t, maxEnd, n.MaxEnd().Value().end, "max-end invariant at %v", n.Value())

	return maxEnd
}

// inorder returns the subtree's values in BST order.
func inorder(n *Node[ival]) []ival {
	var values []ival

	appendInOrder(n, &values)

	return values
}

// TestNewLeaf verifies leaf construction: height 1, no children, self as
// max-end.
func TestNewLeaf(t *testing.T) {
	t.Parallel()

	leaf := NewLeaf(ivx, ival{start: 3, end: 7, id: 1})

	assert.Equal(t, 1, leaf.Height())
	assert.Nil(t, leaf.Left())
	assert.Nil(t, leaf.Right())
	assert.Same(t, leaf, leaf.MaxEnd())
	assert.Equal(t, ival{start: 3, end: 7, id: 1}, leaf.Value())
}

// TestNewNode_Aggregates verifies aggregate computation with two children.
func TestNewNode_Aggregates(t *testing.T) {
	t.Parallel()

	left := NewLeaf(ivx, ival{start: 1, end: 2})
	right := NewLeaf(ivx, ival{start: 8, end: 20})
	root := NewNode(ivx, ival{start: 5, end: 6}, left, right)

	assert.Equal(t, 2, root.Height())
	assert.Same(t, left, root.Left())
	assert.Same(t, right, root.Right())
	assert.Same(t, right, root.MaxEnd())

	checkInvariants(t, root)
}

// TestHeight_NilSubtree verifies the absent-subtree height is 0.
func TestHeight_NilSubtree(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Height[ival](nil))
	assert.Equal(t, 1, Height(NewLeaf(ivx, ival{start: 0, end: 1})))
}

// TestSetChildren_Recompute verifies reassignment recomputes both
// aggregates through the choke point.
func TestSetChildren_Recompute(t *testing.T) {
	t.Parallel()

	root := NewLeaf(ivx, ival{start: 5, end: 6})
	assert.Same(t, root, root.MaxEnd())

	tall := NewNode(ivx, ival{start: 1, end: 30},
		NewLeaf(ivx, ival{start: 0, end: 2}), nil)

	SetChildren(ivx, root, tall, nil)

	assert.Equal(t, 3, root.Height())
	assert.Same(t, tall, root.MaxEnd())

	checkInvariants(t, root)

	// Dropping the child restores the leaf aggregates.
	SetChildren(ivx, root, nil, nil)

	assert.Equal(t, 1, root.Height())
	assert.Same(t, root, root.MaxEnd())
}

// TestMaxEnd_TieBreaks verifies the deterministic tie-break order: self
// over left, left over right.
func TestMaxEnd_TieBreaks(t *testing.T) {
	t.Parallel()

	t.Run("self_beats_both_children", func(t *testing.T) {
		t.Parallel()

		left := NewLeaf(ivx, ival{start: 1, end: 10, id: 1})
		right := NewLeaf(ivx, ival{start: 9, end: 10, id: 2})
		root := NewNode(ivx, ival{start: 5, end: 10, id: 0}, left, right)

		assert.Same(t, root, root.MaxEnd())
	})

	t.Run("left_beats_right_when_self_smaller", func(t *testing.T) {
		t.Parallel()

		left := NewLeaf(ivx, ival{start: 1, end: 10, id: 1})
		right := NewLeaf(ivx, ival{start: 9, end: 10, id: 2})
		root := NewNode(ivx, ival{start: 5, end: 4, id: 0}, left, right)

		assert.Same(t, left, root.MaxEnd())
	})

	t.Run("right_wins_only_strictly", func(t *testing.T) {
		t.Parallel()

		left := NewLeaf(ivx, ival{start: 1, end: 10, id: 1})
		right := NewLeaf(ivx, ival{start: 9, end: 11, id: 2})
		root := NewNode(ivx, ival{start: 5, end: 4, id: 0}, left, right)

		assert.Same(t, right, root.MaxEnd())
	})
}

// TestMaxEnd_PropagatesFromGrandchild verifies the max-end reference can
// point two levels down.
func TestMaxEnd_PropagatesFromGrandchild(t *testing.T) {
	t.Parallel()

	grandchild := NewLeaf(ivx, ival{start: 0, end: 99})
	left := NewNode(ivx, ival{start: 1, end: 5}, grandchild, nil)
	root := NewNode(ivx, ival{start: 6, end: 7}, left, nil)

	assert.Same(t, grandchild, root.MaxEnd())
	checkInvariants(t, root)
}

// TestWith_DoesNotMutateSource verifies the persistent constructor leaves
// the source node untouched and shares the given children.
func TestWith_DoesNotMutateSource(t *testing.T) {
	t.Parallel()

	oldLeft := NewLeaf(ivx, ival{start: 1, end: 2})
	source := NewNode(ivx, ival{start: 5, end: 6}, oldLeft, nil)

	newRight := NewLeaf(ivx, ival{start: 8, end: 9})
	rebuilt := With(ivx, source, nil, newRight)

	// Source unchanged.
	assert.Same(t, oldLeft, source.Left())
	assert.Nil(t, source.Right())
	assert.Equal(t, 2, source.Height())

	// Rebuilt node carries the same value with the new children.
	assert.NotSame(t, source, rebuilt)
	assert.Equal(t, source.Value(), rebuilt.Value())
	assert.Nil(t, rebuilt.Left())
	assert.Same(t, newRight, rebuilt.Right())

	checkInvariants(t, rebuilt)
}
