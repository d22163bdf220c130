package simplicial

import (
	"fmt"

	"github.com/chazu/skeletal/pkg/geomerr"
)

// Node is a vertex of the complex. Handles are small values bound to the
// complex they came from and compare equal when they name the same element.
type Node struct {
	s   *Simplicial2
	idx int
}

// HalfEdge is a directed edge belonging to exactly one triangle.
type HalfEdge struct {
	s   *Simplicial2
	idx int
}

// Triangle is a face of the complex.
type Triangle struct {
	s   *Simplicial2
	idx int
}

// Value returns the vertex identity of the node. For a welded complex this
// is the input vertex index.
func (n Node) Value() int {
	return n.s.nodes[n.idx].value
}

// Source returns the vertex index the node was created from in the input
// triangle list. It differs from Value only in an unwelded complex.
func (n Node) Source() int {
	return n.s.nodes[n.idx].source
}

// HalfEdge returns the node's stored outgoing half-edge. On a boundary
// vertex this is the half-edge that opens its fan.
func (n Node) HalfEdge() HalfEdge {
	return HalfEdge{s: n.s, idx: n.s.nodes[n.idx].halfedge}
}

// HalfEdges returns every outgoing half-edge of the node, each exactly once,
// in rotation order around the vertex.
func (n Node) HalfEdges() []HalfEdge {
	ids, _ := n.s.rotate(n.idx)
	out := make([]HalfEdge, len(ids))
	for i, e := range ids {
		out[i] = HalfEdge{s: n.s, idx: e}
	}
	return out
}

// Degree returns the number of distinct edges touching the node. On a
// closed surface this equals len(HalfEdges()).
func (n Node) Degree() int {
	s := n.s
	neighbours := make(map[int]struct{})
	for _, e := range s.outList[s.outStart[n.idx]:s.outStart[n.idx+1]] {
		neighbours[s.destination(e)] = struct{}{}
		neighbours[s.halfedges[s.prev(e)].origin] = struct{}{}
	}
	return len(neighbours)
}

// IsManifold reports whether all outgoing half-edges form a single fan.
func (n Node) IsManifold() bool {
	_, ok := n.s.rotate(n.idx)
	return ok
}

// IsBoundary reports whether any outgoing half-edge lacks an opposite or
// ends on the boundary.
func (n Node) IsBoundary() bool {
	s := n.s
	for _, e := range s.outList[s.outStart[n.idx]:s.outStart[n.idx+1]] {
		if s.halfedges[e].opposite == noIndex || s.halfedges[s.prev(e)].opposite == noIndex {
			return true
		}
	}
	return false
}

func (n Node) String() string {
	if n.s == nil {
		return "Node(<nil>)"
	}
	rec := n.s.nodes[n.idx]
	if rec.value != rec.source {
		return fmt.Sprintf("Node(%d, source %d)", rec.value, rec.source)
	}
	return fmt.Sprintf("Node(%d)", rec.value)
}

// Index returns the half-edge's position in the arena.
func (h HalfEdge) Index() int {
	return h.idx
}

// FirstNode returns the node the half-edge leaves.
func (h HalfEdge) FirstNode() Node {
	return Node{s: h.s, idx: h.s.halfedges[h.idx].origin}
}

// LastNode returns the node the half-edge points at.
func (h HalfEdge) LastNode() Node {
	return Node{s: h.s, idx: h.s.destination(h.idx)}
}

// Next returns the following half-edge in the same triangle.
func (h HalfEdge) Next() HalfEdge {
	return HalfEdge{s: h.s, idx: h.s.halfedges[h.idx].next}
}

// Prev returns the preceding half-edge in the same triangle.
func (h HalfEdge) Prev() HalfEdge {
	return HalfEdge{s: h.s, idx: h.s.prev(h.idx)}
}

// Opposite returns the reversed half-edge of the neighbouring triangle.
// A boundary half-edge yields ErrNoOpposite.
func (h HalfEdge) Opposite() (HalfEdge, error) {
	o := h.s.halfedges[h.idx].opposite
	if o == noIndex {
		return HalfEdge{}, fmt.Errorf("%v: %w", h, geomerr.ErrNoOpposite)
	}
	return HalfEdge{s: h.s, idx: o}, nil
}

// IsBoundary reports whether the half-edge has no opposite.
func (h HalfEdge) IsBoundary() bool {
	return h.s.halfedges[h.idx].opposite == noIndex
}

// Triangle returns the triangle the half-edge belongs to.
func (h HalfEdge) Triangle() Triangle {
	return Triangle{s: h.s, idx: h.s.halfedges[h.idx].triangle}
}

func (h HalfEdge) String() string {
	if h.s == nil {
		return "HalfEdge(<nil>)"
	}
	return fmt.Sprintf("HalfEdge(%d -> %d)", h.FirstNode().Value(), h.LastNode().Value())
}

// Index returns the triangle's position in the input list.
func (t Triangle) Index() int {
	return t.idx
}

// HalfEdge returns the triangle's first half-edge, from its first input
// vertex to its second.
func (t Triangle) HalfEdge() HalfEdge {
	return HalfEdge{s: t.s, idx: 3 * t.idx}
}

// HalfEdges returns the triangle's three half-edges in cycle order.
func (t Triangle) HalfEdges() [3]HalfEdge {
	b := 3 * t.idx
	return [3]HalfEdge{{t.s, b}, {t.s, b + 1}, {t.s, b + 2}}
}

// Nodes returns the triangle's corners in input order.
func (t Triangle) Nodes() [3]Node {
	var out [3]Node
	for k, h := range t.HalfEdges() {
		out[k] = h.FirstNode()
	}
	return out
}

// Values returns the vertex identities of the corners in input order.
func (t Triangle) Values() [3]int {
	var out [3]int
	for k, n := range t.Nodes() {
		out[k] = n.Value()
	}
	return out
}

// Neighbours returns the triangles across each of the three half-edges.
// ok[k] is false where half-edge k is on the boundary.
func (t Triangle) Neighbours() (tris [3]Triangle, ok [3]bool) {
	for k, h := range t.HalfEdges() {
		if o, err := h.Opposite(); err == nil {
			tris[k], ok[k] = o.Triangle(), true
		}
	}
	return tris, ok
}

func (t Triangle) String() string {
	if t.s == nil {
		return "Triangle(<nil>)"
	}
	v := t.Values()
	return fmt.Sprintf("Triangle(%d: %d -> %d -> %d)", t.idx, v[0], v[1], v[2])
}
