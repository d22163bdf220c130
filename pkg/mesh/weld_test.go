package mesh

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestWeldTrianglesMergesSharedCorners(t *testing.T) {
	a := v3.Vec{X: 0, Y: 0, Z: 0}
	b := v3.Vec{X: 1, Y: 0, Z: 0}
	c := v3.Vec{X: 1, Y: 1, Z: 0}
	d := v3.Vec{X: 0, Y: 1, Z: 0}

	// Second triangle repeats a and c with sub-tolerance noise.
	soup := []Triangle3{
		{a, b, c},
		{v3.Vec{X: 1e-9, Y: 0, Z: 0}, v3.Vec{X: 1, Y: 1, Z: -1e-9}, d},
	}
	m, err := WeldTriangles(soup, 1e-6)
	if err != nil {
		t.Fatalf("WeldTriangles error = %v", err)
	}
	if m.NumVertices() != 4 {
		t.Errorf("NumVertices() = %d, want 4", m.NumVertices())
	}
	if m.NumFaces() != 2 {
		t.Fatalf("NumFaces() = %d, want 2", m.NumFaces())
	}
	f0, _ := m.Face(0)
	f1, _ := m.Face(1)
	if f0 != (Face{0, 1, 2}) {
		t.Errorf("face 0 = %v, want [0 1 2]", f0)
	}
	if f1 != (Face{0, 2, 3}) {
		t.Errorf("face 1 = %v, want [0 2 3]", f1)
	}
}

func TestWeldTrianglesDropsCollapsed(t *testing.T) {
	soup := []Triangle3{
		{{X: 0}, {X: 1e-9}, {Y: 1}},
		{{X: 0}, {X: 1}, {Y: 1}},
	}
	m, err := WeldTriangles(soup, 1e-6)
	if err != nil {
		t.Fatalf("WeldTriangles error = %v", err)
	}
	if m.NumFaces() != 1 {
		t.Errorf("NumFaces() = %d, want 1 (degenerate triangle dropped)", m.NumFaces())
	}
}

func TestWeldTrianglesKeepsDistinctPoints(t *testing.T) {
	soup := []Triangle3{
		{{X: 0}, {X: 0.1}, {Y: 0.1}},
	}
	m, err := WeldTriangles(soup, 0.01)
	if err != nil {
		t.Fatalf("WeldTriangles error = %v", err)
	}
	if m.NumVertices() != 3 {
		t.Errorf("NumVertices() = %d, want 3", m.NumVertices())
	}
}

func TestWeldTrianglesRejectsBadTolerance(t *testing.T) {
	if _, err := WeldTriangles(nil, 0); err == nil {
		t.Error("WeldTriangles(tol=0) error = nil, want error")
	}
}

func TestChebyshev(t *testing.T) {
	tests := []struct {
		a, b v3.Vec
		want float64
	}{
		{v3.Vec{}, v3.Vec{}, 0},
		{v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{X: 1, Y: 2, Z: 3}, 0},
		{v3.Vec{X: -2}, v3.Vec{X: 1, Y: 0.5}, 3},
		{v3.Vec{Y: 4}, v3.Vec{Y: -1, Z: -4.5}, 5},
		{v3.Vec{Z: -1}, v3.Vec{X: 0.25, Z: -7}, 6},
	}
	for _, tt := range tests {
		if got := chebyshev(tt.a, tt.b); got != tt.want {
			t.Errorf("chebyshev(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := chebyshev(tt.b, tt.a); got != tt.want {
			t.Errorf("chebyshev(%v, %v) = %v, want %v", tt.b, tt.a, got, tt.want)
		}
	}
}
