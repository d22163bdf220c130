// Package simplicial implements Simplicial2, a half-edge triangle complex
// built in one batch from a list of vertex-index triples.
//
// Half-edges, nodes and triangles live in flat arenas and refer to each
// other by dense integer indices, so the mutual opposite links need no
// ownership tracking. Triangle t owns half-edges 3t, 3t+1 and 3t+2, which
// follow the input vertex order: (v0->v1), (v1->v2), (v2->v0).
//
// A built complex is immutable and may be shared for reading across
// goroutines.
package simplicial

import (
	"fmt"
	"math"

	"github.com/chazu/skeletal/pkg/geomerr"
)

// noIndex marks a missing arena reference (boundary half-edge).
const noIndex = -1

// MaxVertexID is the largest vertex index accepted in a triangle list.
const MaxVertexID = math.MaxInt32

type halfEdgeRecord struct {
	origin   int // node slot
	next     int
	opposite int // noIndex on the boundary
	triangle int
}

type nodeRecord struct {
	value    int // vertex identity used for lookups
	source   int // vertex index in the input triangle list
	halfedge int // one outgoing half-edge, the start of the rotation
}

// Simplicial2 is a navigable triangle complex.
type Simplicial2 struct {
	halfedges []halfEdgeRecord
	nodes     []nodeRecord
	nodeSlot  map[int]int    // vertex identity -> node slot
	directed  map[uint64]int // packed (origin, destination) -> half-edge
	welded    bool

	// Outgoing half-edges per node in CSR form: node n owns
	// outList[outStart[n]:outStart[n+1]].
	outStart []int
	outList  []int
}

// edgeKey packs an ordered pair of vertex identities.
func edgeKey(a, b int) uint64 {
	return uint64(uint32(a))<<32 | uint64(uint32(b))
}

// BuildFromTriangleList builds a complex from triangles given as vertex
// index triples.
//
// With weld set, vertex indices are taken literally: every triangle
// referencing index v shares one Node, and half-edges of adjacent triangles
// are paired as opposites. Without weld, each triangle corner receives its
// own identity 3t+k (its source index stays available through
// Node.Source), so no pairing occurs and every half-edge is on the
// boundary.
//
// Construction fails without returning a partial complex when a triangle
// references a negative or oversized vertex index or repeats a vertex
// (ErrInvalidReference), or when a directed edge is produced by two
// triangles (ErrNonManifoldEdge).
func BuildFromTriangleList(triangles [][3]int, weld bool) (*Simplicial2, error) {
	for t, tri := range triangles {
		for _, v := range tri {
			if v < 0 || v > MaxVertexID {
				return nil, fmt.Errorf("simplicial: triangle %d: %w", t,
					&geomerr.IndexError{Kind: geomerr.ErrInvalidReference, What: "vertex", Index: v, Count: MaxVertexID})
			}
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			return nil, fmt.Errorf("simplicial: triangle %d %v repeats a vertex: %w",
				t, tri, geomerr.ErrInvalidReference)
		}
	}

	s := &Simplicial2{
		halfedges: make([]halfEdgeRecord, 0, 3*len(triangles)),
		nodeSlot:  make(map[int]int),
		directed:  make(map[uint64]int, 3*len(triangles)),
		welded:    weld,
	}

	for t, tri := range triangles {
		var ids [3]int
		for k := 0; k < 3; k++ {
			if weld {
				ids[k] = tri[k]
			} else {
				ids[k] = 3*t + k
			}
		}

		base := len(s.halfedges)
		for k := 0; k < 3; k++ {
			a, b := ids[k], ids[(k+1)%3]
			key := edgeKey(a, b)
			if prev, dup := s.directed[key]; dup {
				return nil, fmt.Errorf("simplicial: %w", &geomerr.NonManifoldEdgeError{
					Origin:         a,
					Destination:    b,
					FirstTriangle:  s.halfedges[prev].triangle,
					SecondTriangle: t,
				})
			}

			he := base + k
			slot := s.registerNode(a, tri[k], he)
			s.halfedges = append(s.halfedges, halfEdgeRecord{
				origin:   slot,
				next:     base + (k+1)%3,
				opposite: noIndex,
				triangle: t,
			})
			s.directed[key] = he

			if rev, ok := s.directed[edgeKey(b, a)]; ok && s.halfedges[rev].opposite == noIndex {
				s.halfedges[rev].opposite = he
				s.halfedges[he].opposite = rev
			}
		}
	}

	s.indexOutgoing()
	return s, nil
}

// registerNode returns the slot for vertex identity id, creating the node
// on first sight with he as its incident half-edge.
func (s *Simplicial2) registerNode(id, source, he int) int {
	if slot, ok := s.nodeSlot[id]; ok {
		return slot
	}
	slot := len(s.nodes)
	s.nodes = append(s.nodes, nodeRecord{value: id, source: source, halfedge: he})
	s.nodeSlot[id] = slot
	return slot
}

// indexOutgoing fills the per-node outgoing lists and moves each boundary
// node's rotation start to the half-edge that opens its fan, so a forward
// rotation visits the whole fan.
func (s *Simplicial2) indexOutgoing() {
	s.outStart = make([]int, len(s.nodes)+1)
	for _, he := range s.halfedges {
		s.outStart[he.origin+1]++
	}
	for n := 0; n < len(s.nodes); n++ {
		s.outStart[n+1] += s.outStart[n]
	}
	fill := make([]int, len(s.nodes))
	copy(fill, s.outStart[:len(s.nodes)])
	s.outList = make([]int, len(s.halfedges))
	for i, he := range s.halfedges {
		s.outList[fill[he.origin]] = i
		fill[he.origin]++
	}

	for n := range s.nodes {
		for _, e := range s.outList[s.outStart[n]:s.outStart[n+1]] {
			if s.halfedges[s.prev(e)].opposite == noIndex {
				s.nodes[n].halfedge = e
				break
			}
		}
	}
}

func (s *Simplicial2) prev(e int) int {
	return s.halfedges[s.halfedges[e].next].next
}

func (s *Simplicial2) destination(e int) int {
	return s.halfedges[s.halfedges[e].next].origin
}

// rotate returns the outgoing half-edges of node n, walking opposite/next
// from the node's stored half-edge and, if a boundary stops the walk,
// walking back the other way. Half-edges not reachable by rotation
// (several fans meeting at one vertex) are appended in index order.
func (s *Simplicial2) rotate(n int) (out []int, manifold bool) {
	outgoing := s.outList[s.outStart[n]:s.outStart[n+1]]
	start := s.nodes[n].halfedge
	seen := make(map[int]bool, len(outgoing))

	e := start
	closed := false
	for steps := 0; steps < len(outgoing); steps++ {
		out = append(out, e)
		seen[e] = true
		o := s.halfedges[e].opposite
		if o == noIndex {
			break
		}
		e = s.halfedges[o].next
		if e == start {
			closed = true
			break
		}
	}

	if !closed {
		e = start
		for steps := 0; steps < len(outgoing); steps++ {
			o := s.halfedges[s.prev(e)].opposite
			if o == noIndex || seen[o] {
				break
			}
			e = o
			out = append(out, e)
			seen[e] = true
		}
	}

	manifold = len(out) == len(outgoing)
	for _, e := range outgoing {
		if !seen[e] {
			out = append(out, e)
		}
	}
	return out, manifold
}

// NumHalfEdges returns the number of half-edges (three per triangle).
func (s *Simplicial2) NumHalfEdges() int {
	return len(s.halfedges)
}

// NumTriangles returns the number of triangles.
func (s *Simplicial2) NumTriangles() int {
	return len(s.halfedges) / 3
}

// NumNodes returns the number of distinct vertex identities.
func (s *Simplicial2) NumNodes() int {
	return len(s.nodes)
}

// IsWelded reports whether the complex was built with shared vertices.
func (s *Simplicial2) IsWelded() bool {
	return s.welded
}

// HalfEdgeFromIndex returns half-edge i.
func (s *Simplicial2) HalfEdgeFromIndex(i int) (HalfEdge, error) {
	if err := geomerr.CheckIndex("half-edge", i, len(s.halfedges)); err != nil {
		return HalfEdge{}, err
	}
	return HalfEdge{s: s, idx: i}, nil
}

// TriangleFromIndex returns triangle i, in input order.
func (s *Simplicial2) TriangleFromIndex(i int) (Triangle, error) {
	if err := geomerr.CheckIndex("triangle", i, s.NumTriangles()); err != nil {
		return Triangle{}, err
	}
	return Triangle{s: s, idx: i}, nil
}

// FindNode returns the node for vertex identity v. In a welded complex the
// identity is the input vertex index. In an unwelded complex it is the
// corner id 3t+k, which shares its number space with the input indices:
// FindNode(5) names corner 2 of triangle 1, whatever vertex that corner
// came from. Use FindNodesBySource to look corners up by input index.
func (s *Simplicial2) FindNode(v int) (Node, error) {
	slot, ok := s.nodeSlot[v]
	if !ok {
		return Node{}, fmt.Errorf("node %d: %w", v, geomerr.ErrNotFound)
	}
	return Node{s: s, idx: slot}, nil
}

// FindNodesBySource returns every node created from input vertex index v,
// in order of first appearance: at most one when welded, one per
// referencing corner when not. It fails with ErrNotFound when no triangle
// referenced v.
func (s *Simplicial2) FindNodesBySource(v int) ([]Node, error) {
	var out []Node
	for slot, n := range s.nodes {
		if n.source == v {
			out = append(out, Node{s: s, idx: slot})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("source vertex %d: %w", v, geomerr.ErrNotFound)
	}
	return out, nil
}

// FindHalfEdge returns the half-edge going from vertex a to vertex b.
func (s *Simplicial2) FindHalfEdge(a, b int) (HalfEdge, error) {
	if a < 0 || b < 0 || a > MaxVertexID || b > MaxVertexID {
		return HalfEdge{}, fmt.Errorf("half-edge %d->%d: %w", a, b, geomerr.ErrNotFound)
	}
	he, ok := s.directed[edgeKey(a, b)]
	if !ok {
		return HalfEdge{}, fmt.Errorf("half-edge %d->%d: %w", a, b, geomerr.ErrNotFound)
	}
	return HalfEdge{s: s, idx: he}, nil
}

// FindTriangle returns the triangle whose cycle is a->b->c, accepting any
// cyclic rotation of the triple. The reversed cycle is a different
// triangle.
func (s *Simplicial2) FindTriangle(a, b, c int) (Triangle, error) {
	he, err := s.FindHalfEdge(a, b)
	if err != nil {
		return Triangle{}, fmt.Errorf("triangle (%d, %d, %d): %w", a, b, c, geomerr.ErrNotFound)
	}
	if s.nodes[s.destination(s.halfedges[he.idx].next)].value != c {
		return Triangle{}, fmt.Errorf("triangle (%d, %d, %d): %w", a, b, c, geomerr.ErrNotFound)
	}
	return he.Triangle(), nil
}

// Nodes returns all nodes in order of first appearance.
func (s *Simplicial2) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	for i := range s.nodes {
		out[i] = Node{s: s, idx: i}
	}
	return out
}

// BoundaryHalfEdges returns the half-edges without an opposite, in index
// order.
func (s *Simplicial2) BoundaryHalfEdges() []HalfEdge {
	var out []HalfEdge
	for i, he := range s.halfedges {
		if he.opposite == noIndex {
			out = append(out, HalfEdge{s: s, idx: i})
		}
	}
	return out
}

// IsClosed reports whether every half-edge has an opposite.
func (s *Simplicial2) IsClosed() bool {
	for _, he := range s.halfedges {
		if he.opposite == noIndex {
			return false
		}
	}
	return true
}
