package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/skeletal/pkg/kernel"
)

func TestBounds(t *testing.T) {
	k := New(WithMeshCells(40))
	cube := k.Box(10, 10, 10)

	tests := []struct {
		name     string
		solid    kernel.Solid
		min, max [3]float64
		tol      float64
	}{
		{"box", k.Box(100, 50, 25), [3]float64{-50, -25, -12.5}, [3]float64{50, 25, 12.5}, 0.01},
		{"cylinder", k.Cylinder(50, 10, 32), [3]float64{-10, -10, -25}, [3]float64{10, 10, 25}, 0.01},
		{"sphere", k.Sphere(5, 0), [3]float64{-5, -5, -5}, [3]float64{5, 5, 5}, 0.01},
		{"translate", k.Translate(cube, 100, 200, 300), [3]float64{95, 195, 295}, [3]float64{105, 205, 305}, 0.5},
		{"union", k.Union(cube, k.Translate(cube, 10, 0, 0)), [3]float64{-5, -5, -5}, [3]float64{15, 5, 5}, 0.5},
		// Rotating a bar along X by 90 degrees about Z lays it along Y.
		{"rotate", k.Rotate(k.Box(100, 10, 10), 0, 0, 90), [3]float64{-5, -50, -5}, [3]float64{5, 50, 5}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max := tt.solid.BoundingBox()
			for i := 0; i < 3; i++ {
				if math.Abs(min[i]-tt.min[i]) > tt.tol || math.Abs(max[i]-tt.max[i]) > tt.tol {
					t.Fatalf("bounds = %v..%v, want %v..%v", min, max, tt.min, tt.max)
				}
			}
		})
	}
}

func TestToMeshIsSoup(t *testing.T) {
	k := New(WithMeshCells(40))
	m, err := k.ToMesh(k.Box(100, 50, 25))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	n := m.TriangleCount()
	if n == 0 {
		t.Fatal("box produced no triangles")
	}
	if m.VertexCount() != 3*n {
		t.Fatalf("vertex count %d, want one per corner (%d)", m.VertexCount(), 3*n)
	}
	for i, idx := range m.Indices {
		if int(idx) != i {
			t.Fatalf("Indices[%d] = %d, want %d", i, idx, i)
		}
	}
}

func TestBooleansChangeTriangleCount(t *testing.T) {
	k := New(WithMeshCells(40))
	box := k.Box(100, 100, 100)

	count := func(s kernel.Solid) int {
		t.Helper()
		m, err := k.ToMesh(s)
		if err != nil {
			t.Fatalf("ToMesh failed: %v", err)
		}
		return m.TriangleCount()
	}

	plain := count(box)
	if drilled := count(k.Difference(box, k.Cylinder(120, 20, 32))); drilled <= plain {
		t.Errorf("drilled box has %d triangles, plain box %d; the hole adds surface", drilled, plain)
	}
	if n := count(k.Intersection(box, k.Translate(box, 50, 0, 0))); n == 0 {
		t.Error("intersection of overlapping boxes is empty")
	}
}

func TestSphereVerticesOnSurface(t *testing.T) {
	k := New(WithMeshCells(30))
	m, err := k.ToMesh(k.Sphere(5, 0))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	for i := 0; i < m.VertexCount(); i++ {
		x, y, z := m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]
		if r := math.Sqrt(x*x + y*y + z*z); math.Abs(r-5) > 0.5 {
			t.Fatalf("vertex %d at radius %f, want ~5", i, r)
		}
	}
}

func TestForeignSolidPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Union with a foreign solid did not panic")
		}
	}()
	k := New()
	k.Union(k.Box(1, 1, 1), foreign{})
}

type foreign struct{}

func (foreign) BoundingBox() (min, max [3]float64) { return }

func TestInvalidDimensionsPanic(t *testing.T) {
	k := New()
	for name, build := range map[string]func(){
		"box":      func() { k.Box(-1, 1, 1) },
		"cylinder": func() { k.Cylinder(1, -1, 0) },
		"sphere":   func() { k.Sphere(-1, 0) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("no panic")
				}
			}()
			build()
		})
	}
}

func TestMeshCellsOption(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want int
	}{
		{"default", nil, DefaultMeshCells},
		{"custom", []Option{WithMeshCells(64)}, 64},
		{"non-positive ignored", []Option{WithMeshCells(0)}, DefaultMeshCells},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.opts...).MeshCells(); got != tt.want {
				t.Errorf("MeshCells() = %d, want %d", got, tt.want)
			}
		})
	}
}
