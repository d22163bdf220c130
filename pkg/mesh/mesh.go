// Package mesh implements Mesh3D, a plain indexed triangle mesh: a vertex
// registry plus a list of faces referencing it. No topology is computed or
// cached here; see package simplicial for adjacency.
package mesh

import (
	"fmt"

	"github.com/chazu/skeletal/pkg/geomerr"
	"github.com/chazu/skeletal/pkg/vertex"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Face is a triangle given by three vertex indices.
type Face [3]int

// Mesh3D is an append-only indexed triangle mesh.
type Mesh3D struct {
	vertices vertex.Registry[v3.Vec]
	faces    []Face
}

// New creates an empty mesh.
func New() *Mesh3D {
	return &Mesh3D{}
}

// InsertVertex appends a vertex and returns its index.
func (m *Mesh3D) InsertVertex(p v3.Vec) int {
	return m.vertices.Insert(p)
}

// InsertFace appends a face and returns its index. Every referenced vertex
// must already exist; otherwise the mesh is left unchanged and an
// ErrInvalidReference error is returned.
func (m *Mesh3D) InsertFace(f Face) (int, error) {
	n := m.vertices.Count()
	for _, vi := range f {
		if vi < 0 || vi >= n {
			return 0, fmt.Errorf("insert face %v: %w", f, geomerr.InvalidReference("vertex", vi, n))
		}
	}
	m.faces = append(m.faces, f)
	return len(m.faces) - 1, nil
}

// Vertex returns the vertex at index i.
func (m *Mesh3D) Vertex(i int) (v3.Vec, error) {
	return m.vertices.Get(i)
}

// Face returns the face at index i.
func (m *Mesh3D) Face(i int) (Face, error) {
	if err := geomerr.CheckIndex("face", i, len(m.faces)); err != nil {
		return Face{}, err
	}
	return m.faces[i], nil
}

// NumVertices returns the number of vertices.
func (m *Mesh3D) NumVertices() int {
	return m.vertices.Count()
}

// NumFaces returns the number of faces.
func (m *Mesh3D) NumFaces() int {
	return len(m.faces)
}

// IsEmpty returns true if the mesh has no vertices.
func (m *Mesh3D) IsEmpty() bool {
	return m.vertices.Count() == 0
}

// AllVertices returns the vertex positions as an [n][3] buffer.
func (m *Mesh3D) AllVertices() [][3]float64 {
	pts := m.vertices.All()
	out := make([][3]float64, len(pts))
	for i, p := range pts {
		out[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return out
}

// AllFaces returns the faces as an [n][3] buffer.
func (m *Mesh3D) AllFaces() [][3]int {
	out := make([][3]int, len(m.faces))
	for i, f := range m.faces {
		out[i] = f
	}
	return out
}

// Triangles returns the face list in the form accepted by
// simplicial.BuildFromTriangleList.
func (m *Mesh3D) Triangles() [][3]int {
	return m.AllFaces()
}

// FlatVertices returns positions as [x0,y0,z0, x1,y1,z1, ...].
func (m *Mesh3D) FlatVertices() []float64 {
	out := make([]float64, 0, 3*m.vertices.Count())
	for _, p := range m.vertices.All() {
		out = append(out, p.X, p.Y, p.Z)
	}
	return out
}

// FlatFaces returns face indices as [i0,i1,i2, ...].
func (m *Mesh3D) FlatFaces() []uint32 {
	out := make([]uint32, 0, 3*len(m.faces))
	for _, f := range m.faces {
		out = append(out, uint32(f[0]), uint32(f[1]), uint32(f[2]))
	}
	return out
}

// BoundingBox returns the axis-aligned bounds of the vertices. ok is false
// for an empty mesh.
func (m *Mesh3D) BoundingBox() (lower, upper v3.Vec, ok bool) {
	pts := m.vertices.All()
	if len(pts) == 0 {
		return lower, upper, false
	}
	lower, upper = pts[0], pts[0]
	for _, p := range pts[1:] {
		lower = v3.Vec{X: min(lower.X, p.X), Y: min(lower.Y, p.Y), Z: min(lower.Z, p.Z)}
		upper = v3.Vec{X: max(upper.X, p.X), Y: max(upper.Y, p.Y), Z: max(upper.Z, p.Z)}
	}
	return lower, upper, true
}
