// Package spanstore tracks identified uint32 spans (line or byte ranges)
// in an augmented interval tree, answering overlap and point queries. A
// store can hibernate: its spans are column-compressed with LZ4 and the
// live tree is dropped until Boot rebuilds it.
package spanstore

import (
	"cmp"
	"fmt"

	"github.com/spantree/spantree/pkg/augtree"
)

// Span is a closed range [Start, End] with a caller-assigned identifier.
type Span struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
	ID    uint32 `json:"id"`
}

// String renders the span for diagnostics.
func (s Span) String() string {
	return fmt.Sprintf("[%d - %d]#%d", s.Start, s.End, s.ID)
}

// introspector adapts Span to the augtree endpoint capability.
type introspector struct{}

func (introspector) Start(s Span) uint32 { return s.Start }

func (introspector) End(s Span) uint32 { return s.End }

func (introspector) Compare(a, b uint32) int { return cmp.Compare(a, b) }

// Store is a mutable span index. The zero value is not usable; call New.
type Store struct {
	tree *augtree.Tree[Span, uint32]

	hibernated    [spanColumns][]byte
	hibernatedLen int
}

// New creates an empty store.
func New() *Store {
	return &Store{tree: augtree.New[Span, uint32](introspector{})}
}

// Len returns the number of tracked spans.
func (s *Store) Len() int {
	s.requireLive()

	return s.tree.Len()
}

// TreeHeight returns the height of the underlying tree.
func (s *Store) TreeHeight() int {
	s.requireLive()

	return s.tree.Height()
}

// Add tracks a span. The span must be well formed; an end before its start
// is a caller bug.
func (s *Store) Add(span Span) {
	s.requireLive()

	if span.End < span.Start {
		panic(fmt.Sprintf("spanstore: span end %d before start %d", span.End, span.Start))
	}

	s.tree.Insert(span)
}

// Remove drops the span with matching endpoints and ID. Returns false if
// no such span is tracked.
func (s *Store) Remove(span Span) bool {
	s.requireLive()

	return s.tree.DeleteFunc(span, func(v Span) bool { return v.ID == span.ID })
}

// Overlapping returns all spans intersecting [low, high], ordered by start.
func (s *Store) Overlapping(low, high uint32) []Span {
	s.requireLive()

	return s.tree.QueryOverlap(low, high)
}

// At returns all spans containing the given point, ordered by start.
func (s *Store) At(point uint32) []Span {
	s.requireLive()

	return s.tree.QueryPoint(point)
}

// All returns every tracked span ordered by start, then end.
func (s *Store) All() []Span {
	s.requireLive()

	return s.tree.InOrder()
}

// MaxEnd returns the largest end position over all spans. The second
// return is false for an empty store.
func (s *Store) MaxEnd() (uint32, bool) {
	s.requireLive()

	root := s.tree.Root()
	if root == nil {
		return 0, false
	}

	return root.MaxEnd().Value().End, true
}

// requireLive panics when the store is hibernated: queries and updates
// need the live tree, which only Boot restores.
func (s *Store) requireLive() {
	if s.tree == nil {
		panic("spanstore: store is hibernated")
	}
}
