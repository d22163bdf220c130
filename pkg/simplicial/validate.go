package simplicial

import (
	"errors"
	"fmt"
)

// ErrCorrupt is returned by Validate when the stored connectivity violates a
// structural invariant. It indicates a bug, not bad input.
var ErrCorrupt = errors.New("corrupt complex")

// Validate checks the structural invariants of the complex: next cycles of
// length three within one triangle, opposite links that are involutive and
// reversed, one half-edge per directed edge, and outgoing lists that match
// half-edge origins.
func (s *Simplicial2) Validate() error {
	if len(s.halfedges)%3 != 0 {
		return fmt.Errorf("%w: %d half-edges is not a multiple of 3", ErrCorrupt, len(s.halfedges))
	}

	for i, he := range s.halfedges {
		if he.triangle != i/3 {
			return fmt.Errorf("%w: half-edge %d in triangle %d, want %d", ErrCorrupt, i, he.triangle, i/3)
		}
		n1 := s.halfedges[he.next]
		n2 := s.halfedges[n1.next]
		if n2.next != i || n1.triangle != he.triangle || n2.triangle != he.triangle {
			return fmt.Errorf("%w: half-edge %d next cycle broken", ErrCorrupt, i)
		}
		if n1.origin == he.origin {
			return fmt.Errorf("%w: half-edge %d is a loop", ErrCorrupt, i)
		}

		if he.opposite != noIndex {
			o := s.halfedges[he.opposite]
			if o.opposite != i {
				return fmt.Errorf("%w: opposite of half-edge %d is not involutive", ErrCorrupt, i)
			}
			if o.origin != s.destination(i) || s.destination(he.opposite) != he.origin {
				return fmt.Errorf("%w: half-edge %d and its opposite are not reversed", ErrCorrupt, i)
			}
		}

		a, b := s.nodes[he.origin].value, s.nodes[s.destination(i)].value
		if got, ok := s.directed[edgeKey(a, b)]; !ok || got != i {
			return fmt.Errorf("%w: directed edge %d->%d not indexed by half-edge %d", ErrCorrupt, a, b, i)
		}
	}

	if len(s.directed) != len(s.halfedges) {
		return fmt.Errorf("%w: %d directed edges for %d half-edges", ErrCorrupt, len(s.directed), len(s.halfedges))
	}

	for n := range s.nodes {
		if slot := s.nodeSlot[s.nodes[n].value]; slot != n {
			return fmt.Errorf("%w: node %d indexed at slot %d", ErrCorrupt, n, slot)
		}
		for _, e := range s.outList[s.outStart[n]:s.outStart[n+1]] {
			if s.halfedges[e].origin != n {
				return fmt.Errorf("%w: half-edge %d listed as outgoing from node %d", ErrCorrupt, e, n)
			}
		}
		if s.halfedges[s.nodes[n].halfedge].origin != n {
			return fmt.Errorf("%w: node %d stores a half-edge it does not leave", ErrCorrupt, n)
		}
	}
	return nil
}
