package simplicial

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/chazu/skeletal/pkg/geomerr"
)

var tetrahedron = [][3]int{{0, 1, 2}, {1, 0, 3}, {2, 1, 3}, {0, 2, 3}}

func build(t *testing.T, tris [][3]int, weld bool) *Simplicial2 {
	t.Helper()
	s, err := BuildFromTriangleList(tris, weld)
	if err != nil {
		t.Fatalf("BuildFromTriangleList(%v) error = %v", tris, err)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return s
}

func TestTetrahedronCounts(t *testing.T) {
	s := build(t, tetrahedron, true)
	if s.NumTriangles() != 4 {
		t.Errorf("NumTriangles() = %d, want 4", s.NumTriangles())
	}
	if s.NumHalfEdges() != 12 {
		t.Errorf("NumHalfEdges() = %d, want 12", s.NumHalfEdges())
	}
	if s.NumNodes() != 4 {
		t.Errorf("NumNodes() = %d, want 4", s.NumNodes())
	}
	if !s.IsClosed() {
		t.Error("IsClosed() = false for tetrahedron")
	}
	if got := len(s.BoundaryHalfEdges()); got != 0 {
		t.Errorf("len(BoundaryHalfEdges()) = %d, want 0", got)
	}
}

func TestTetrahedronOpposites(t *testing.T) {
	s := build(t, tetrahedron, true)
	for i := 0; i < s.NumHalfEdges(); i++ {
		h, err := s.HalfEdgeFromIndex(i)
		if err != nil {
			t.Fatalf("HalfEdgeFromIndex(%d) error = %v", i, err)
		}
		o, err := h.Opposite()
		if err != nil {
			t.Fatalf("%v.Opposite() error = %v", h, err)
		}
		if o.FirstNode() != h.LastNode() || o.LastNode() != h.FirstNode() {
			t.Errorf("%v opposite = %v, want reversed", h, o)
		}
		back, err := o.Opposite()
		if err != nil || back != h {
			t.Errorf("%v.Opposite().Opposite() = %v, %v", h, back, err)
		}
		if o.Triangle() == h.Triangle() {
			t.Errorf("%v and its opposite share triangle %v", h, h.Triangle())
		}
	}
}

func TestTetrahedronNodes(t *testing.T) {
	s := build(t, tetrahedron, true)
	for v := 0; v < 4; v++ {
		n, err := s.FindNode(v)
		if err != nil {
			t.Fatalf("FindNode(%d) error = %v", v, err)
		}
		if n.Value() != v {
			t.Errorf("FindNode(%d).Value() = %d", v, n.Value())
		}
		if n.Degree() != 3 {
			t.Errorf("node %d Degree() = %d, want 3", v, n.Degree())
		}
		hs := n.HalfEdges()
		if len(hs) != n.Degree() {
			t.Errorf("node %d len(HalfEdges()) = %d, want Degree() %d", v, len(hs), n.Degree())
		}
		seen := make(map[HalfEdge]bool)
		for _, h := range hs {
			if h.FirstNode() != n {
				t.Errorf("node %d: %v does not leave it", v, h)
			}
			if seen[h] {
				t.Errorf("node %d: %v reported twice", v, h)
			}
			seen[h] = true
		}
		if !n.IsManifold() || n.IsBoundary() {
			t.Errorf("node %d IsManifold() = %v, IsBoundary() = %v", v, n.IsManifold(), n.IsBoundary())
		}
	}
}

func TestNodeZeroNeighbours(t *testing.T) {
	s := build(t, tetrahedron, true)
	n, _ := s.FindNode(0)
	var got []int
	for _, h := range n.HalfEdges() {
		got = append(got, h.LastNode().Value())
	}
	sort.Ints(got)
	want := []int{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("neighbours of node 0 = %v, want %v", got, want)
		}
	}
}

func TestNextPrevCycle(t *testing.T) {
	s := build(t, tetrahedron, true)
	for i := 0; i < s.NumHalfEdges(); i++ {
		h, _ := s.HalfEdgeFromIndex(i)
		if h.Next().Next().Next() != h {
			t.Errorf("%v: next^3 is not identity", h)
		}
		if h.Next().Prev() != h {
			t.Errorf("%v: next then prev is not identity", h)
		}
		if h.Next().FirstNode() != h.LastNode() {
			t.Errorf("%v: next does not start where it ends", h)
		}
		if h.Next().Triangle() != h.Triangle() {
			t.Errorf("%v: next leaves the triangle", h)
		}
	}
}

func TestFindHalfEdgeAndTriangle(t *testing.T) {
	s := build(t, tetrahedron, true)

	h, err := s.FindHalfEdge(1, 0)
	if err != nil {
		t.Fatalf("FindHalfEdge(1, 0) error = %v", err)
	}
	if h.Triangle().Index() != 1 {
		t.Errorf("FindHalfEdge(1, 0) triangle = %v, want 1", h.Triangle())
	}

	for _, tri := range [][3]int{{2, 1, 3}, {1, 3, 2}, {3, 2, 1}} {
		got, err := s.FindTriangle(tri[0], tri[1], tri[2])
		if err != nil {
			t.Fatalf("FindTriangle(%v) error = %v", tri, err)
		}
		if got.Index() != 2 {
			t.Errorf("FindTriangle(%v) = %v, want triangle 2", tri, got)
		}
	}
	if _, err := s.FindTriangle(1, 2, 3); !errors.Is(err, geomerr.ErrNotFound) {
		t.Errorf("FindTriangle(reversed) error = %v, want ErrNotFound", err)
	}
}

func TestLookupFailures(t *testing.T) {
	s := build(t, tetrahedron, true)
	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"node missing", func() error { _, err := s.FindNode(9); return err }, geomerr.ErrNotFound},
		{"half-edge missing", func() error { _, err := s.FindHalfEdge(0, 0); return err }, geomerr.ErrNotFound},
		{"half-edge negative", func() error { _, err := s.FindHalfEdge(-1, 0); return err }, geomerr.ErrNotFound},
		{"half-edge index", func() error { _, err := s.HalfEdgeFromIndex(12); return err }, geomerr.ErrOutOfRange},
		{"triangle index", func() error { _, err := s.TriangleFromIndex(-1); return err }, geomerr.ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNonManifoldEdge(t *testing.T) {
	s, err := BuildFromTriangleList([][3]int{{0, 1, 2}, {0, 1, 3}}, true)
	if s != nil {
		t.Error("BuildFromTriangleList returned a partial complex")
	}
	if !errors.Is(err, geomerr.ErrNonManifoldEdge) {
		t.Fatalf("error = %v, want ErrNonManifoldEdge", err)
	}
	var nm *geomerr.NonManifoldEdgeError
	if !errors.As(err, &nm) {
		t.Fatalf("error %v is not a NonManifoldEdgeError", err)
	}
	if nm.Origin != 0 || nm.Destination != 1 || nm.FirstTriangle != 0 || nm.SecondTriangle != 1 {
		t.Errorf("NonManifoldEdgeError = %+v", nm)
	}
}

func TestInvalidTriangles(t *testing.T) {
	tests := []struct {
		name string
		tris [][3]int
	}{
		{"negative index", [][3]int{{0, -1, 2}}},
		{"repeated vertex", [][3]int{{0, 1, 1}}},
		{"repeated first and last", [][3]int{{4, 1, 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildFromTriangleList(tt.tris, true)
			if !errors.Is(err, geomerr.ErrInvalidReference) {
				t.Errorf("error = %v, want ErrInvalidReference", err)
			}
		})
	}
}

func TestEmptyComplex(t *testing.T) {
	s := build(t, nil, true)
	if s.NumTriangles() != 0 || s.NumNodes() != 0 || s.NumHalfEdges() != 0 {
		t.Errorf("empty complex has %d triangles, %d nodes, %d half-edges",
			s.NumTriangles(), s.NumNodes(), s.NumHalfEdges())
	}
	if !s.IsClosed() {
		t.Error("IsClosed() = false for empty complex")
	}
}

func TestBoundaryRotationTerminates(t *testing.T) {
	// Two triangles sharing edge 0-2 form an open square.
	s := build(t, [][3]int{{0, 1, 2}, {0, 2, 3}}, true)

	if s.IsClosed() {
		t.Error("IsClosed() = true for open square")
	}
	if got := len(s.BoundaryHalfEdges()); got != 4 {
		t.Errorf("len(BoundaryHalfEdges()) = %d, want 4", got)
	}

	n, _ := s.FindNode(0)
	hs := n.HalfEdges()
	if len(hs) != 2 {
		t.Fatalf("node 0 HalfEdges() = %v, want 2 half-edges", hs)
	}
	if hs[0].String() != "HalfEdge(0 -> 2)" || hs[1].String() != "HalfEdge(0 -> 1)" {
		t.Errorf("node 0 rotation = %v, want [0->2 0->1]", hs)
	}
	if n.Degree() != 3 {
		t.Errorf("node 0 Degree() = %d, want 3", n.Degree())
	}
	if !n.IsBoundary() || !n.IsManifold() {
		t.Errorf("node 0 IsBoundary() = %v, IsManifold() = %v", n.IsBoundary(), n.IsManifold())
	}

	h, _ := s.FindHalfEdge(0, 1)
	if _, err := h.Opposite(); !errors.Is(err, geomerr.ErrNoOpposite) {
		t.Errorf("boundary Opposite() error = %v, want ErrNoOpposite", err)
	}
	if !h.IsBoundary() {
		t.Error("IsBoundary() = false for 0->1")
	}
}

func TestBowtieVertex(t *testing.T) {
	// Two triangles touching only at vertex 0.
	s := build(t, [][3]int{{0, 1, 2}, {0, 3, 4}}, true)
	n, _ := s.FindNode(0)
	if got := len(n.HalfEdges()); got != 2 {
		t.Errorf("len(HalfEdges()) = %d, want 2", got)
	}
	if n.IsManifold() {
		t.Error("IsManifold() = true for bowtie vertex")
	}
	if n.Degree() != 4 {
		t.Errorf("Degree() = %d, want 4", n.Degree())
	}
}

func TestUnweldedCornersAreDistinct(t *testing.T) {
	s := build(t, tetrahedron, false)
	if s.IsWelded() {
		t.Error("IsWelded() = true")
	}
	if s.NumNodes() != 12 {
		t.Errorf("NumNodes() = %d, want 12", s.NumNodes())
	}
	if !(len(s.BoundaryHalfEdges()) == 12 && !s.IsClosed()) {
		t.Error("unwelded complex should have every half-edge on the boundary")
	}
	tri, _ := s.TriangleFromIndex(1)
	nodes := tri.Nodes()
	if nodes[0].Source() != 1 || nodes[1].Source() != 0 || nodes[2].Source() != 3 {
		t.Errorf("triangle 1 sources = %d %d %d, want 1 0 3",
			nodes[0].Source(), nodes[1].Source(), nodes[2].Source())
	}
	if nodes[0].Value() != 3 {
		t.Errorf("triangle 1 first corner Value() = %d, want 3", nodes[0].Value())
	}
	if got := nodes[0].String(); got != "Node(3, source 1)" {
		t.Errorf("String() = %q", got)
	}
}

func TestFindNodesBySource(t *testing.T) {
	tris := [][3]int{{5, 6, 7}, {7, 6, 8}}

	unwelded := build(t, tris, false)
	// Corner ids alias input indices: id 5 is triangle 1's last corner.
	n, err := unwelded.FindNode(5)
	if err != nil {
		t.Fatalf("FindNode(5) failed: %v", err)
	}
	if n.Source() != 8 {
		t.Errorf("FindNode(5).Source() = %d, want 8", n.Source())
	}
	if _, err := unwelded.FindNode(8); !errors.Is(err, geomerr.ErrNotFound) {
		t.Errorf("FindNode(8) error = %v, want ErrNotFound", err)
	}

	tests := []struct {
		weld   bool
		source int
		want   []int // node values
	}{
		{false, 8, []int{5}},
		{false, 6, []int{1, 4}},
		{false, 7, []int{2, 3}},
		{true, 6, []int{6}},
		{true, 8, []int{8}},
	}
	for _, tt := range tests {
		s := build(t, tris, tt.weld)
		nodes, err := s.FindNodesBySource(tt.source)
		if err != nil {
			t.Fatalf("weld=%v FindNodesBySource(%d) failed: %v", tt.weld, tt.source, err)
		}
		var got []int
		for _, n := range nodes {
			if n.Source() != tt.source {
				t.Errorf("weld=%v node %v has source %d", tt.weld, n, n.Source())
			}
			got = append(got, n.Value())
		}
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("weld=%v FindNodesBySource(%d) values = %v, want %v", tt.weld, tt.source, got, tt.want)
		}
	}

	if _, err := unwelded.FindNodesBySource(42); !errors.Is(err, geomerr.ErrNotFound) {
		t.Errorf("FindNodesBySource(42) error = %v, want ErrNotFound", err)
	}
}

func TestStringForms(t *testing.T) {
	s := build(t, tetrahedron, true)
	n, _ := s.FindNode(2)
	tri, _ := s.TriangleFromIndex(3)
	h := tri.HalfEdge()
	tests := []struct {
		got, want string
	}{
		{n.String(), "Node(2)"},
		{h.String(), "HalfEdge(0 -> 2)"},
		{tri.String(), "Triangle(3: 0 -> 2 -> 3)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestTriangleNeighbours(t *testing.T) {
	s := build(t, [][3]int{{0, 1, 2}, {0, 2, 3}}, true)
	tri, _ := s.TriangleFromIndex(0)
	nb, ok := tri.Neighbours()
	if ok[0] || ok[1] || !ok[2] {
		t.Fatalf("Neighbours() ok = %v, want [false false true]", ok)
	}
	if nb[2].Index() != 1 {
		t.Errorf("neighbour across 2->0 = %v, want triangle 1", nb[2])
	}
}
