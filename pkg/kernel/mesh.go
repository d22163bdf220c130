package kernel

import (
	"fmt"

	"github.com/chazu/skeletal/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is the raw triangle output of a kernel. Vertices has 3 floats per
// vertex and Indices 3 entries per triangle. Positions may repeat: a
// backend is free to emit one vertex per triangle corner.
type Mesh struct {
	Vertices []float64 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Soup resolves the indices into one position triple per triangle.
func (m *Mesh) Soup() ([]mesh.Triangle3, error) {
	if len(m.Vertices)%3 != 0 || len(m.Indices)%3 != 0 {
		return nil, fmt.Errorf("kernel mesh: %d coordinates and %d indices are not multiples of 3",
			len(m.Vertices), len(m.Indices))
	}
	n := m.VertexCount()
	out := make([]mesh.Triangle3, m.TriangleCount())
	for t := range out {
		for k := 0; k < 3; k++ {
			i := int(m.Indices[3*t+k])
			if i >= n {
				return nil, fmt.Errorf("kernel mesh: triangle %d references vertex %d of %d", t, i, n)
			}
			out[t][k] = v3.Vec{X: m.Vertices[3*i], Y: m.Vertices[3*i+1], Z: m.Vertices[3*i+2]}
		}
	}
	return out, nil
}
