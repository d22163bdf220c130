package mesh

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangle3 is an unindexed triangle, as produced by marching cubes.
type Triangle3 [3]v3.Vec

// weldedPoint is a vertex already placed in the output mesh, indexed in the
// R-tree by a small box centred on its position.
type weldedPoint struct {
	index int
	pos   v3.Vec
	box   rtreego.Rect
}

func (w *weldedPoint) Bounds() rtreego.Rect {
	return w.box
}

// WeldTriangles builds a Mesh3D from a triangle soup, merging corners that
// lie within tol of an already placed vertex (Chebyshev distance). Triangles
// that collapse after merging (two corners on the same vertex) are dropped.
// Input orientation is preserved. tol must be positive.
func WeldTriangles(soup []Triangle3, tol float64) (*Mesh3D, error) {
	if tol <= 0 {
		return nil, fmt.Errorf("weld: tolerance must be positive, got %g", tol)
	}

	m := New()
	tree := rtreego.NewTree(3, 25, 50)

	lookup := func(p v3.Vec) int {
		query := rtreego.Point{p.X, p.Y, p.Z}.ToRect(tol)
		best, bestDist := -1, tol
		for _, hit := range tree.SearchIntersect(query) {
			wp := hit.(*weldedPoint)
			d := chebyshev(wp.pos, p)
			if d > tol {
				continue
			}
			if best < 0 || d < bestDist || (d == bestDist && wp.index < best) {
				best, bestDist = wp.index, d
			}
		}
		if best >= 0 {
			return best
		}
		idx := m.InsertVertex(p)
		tree.Insert(&weldedPoint{
			index: idx,
			pos:   p,
			box:   rtreego.Point{p.X, p.Y, p.Z}.ToRect(tol / 2),
		})
		return idx
	}

	for _, tri := range soup {
		var f Face
		for j := 0; j < 3; j++ {
			f[j] = lookup(tri[j])
		}
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			continue
		}
		if _, err := m.InsertFace(f); err != nil {
			return nil, fmt.Errorf("weld: %w", err)
		}
	}
	return m, nil
}

func chebyshev(a, b v3.Vec) float64 {
	return max(math.Abs(a.X-b.X), math.Abs(a.Y-b.Y), math.Abs(a.Z-b.Z))
}
