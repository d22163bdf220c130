package meshio

import (
	"fmt"

	"github.com/chazu/skeletal/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/hpinc/go3mf"
)

// Save3MF writes m as a single-object 3MF package. Coordinates are stored
// in single precision, as the format requires.
func Save3MF(path string, m *mesh.Mesh3D, name string) error {
	obj := &go3mf.Object{ID: 1, Name: name, Mesh: new(go3mf.Mesh)}
	for _, p := range m.AllVertices() {
		obj.Mesh.Vertices.Vertex = append(obj.Mesh.Vertices.Vertex,
			go3mf.Point3D{float32(p[0]), float32(p[1]), float32(p[2])})
	}
	for _, f := range m.AllFaces() {
		obj.Mesh.Triangles.Triangle = append(obj.Mesh.Triangles.Triangle,
			go3mf.Triangle{V1: uint32(f[0]), V2: uint32(f[1]), V3: uint32(f[2])})
	}

	var model go3mf.Model
	model.Resources.Objects = append(model.Resources.Objects, obj)
	model.Build.Items = append(model.Build.Items, &go3mf.Item{ObjectID: obj.ID})

	w, err := go3mf.CreateWriter(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := w.Encode(&model); err != nil {
		w.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return w.Close()
}

// Load3MF reads every mesh object of a 3MF package into one Mesh3D, in
// resource order.
func Load3MF(path string) (*mesh.Mesh3D, error) {
	r, err := go3mf.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	var model go3mf.Model
	if err := r.Decode(&model); err != nil {
		return nil, malformed(path, 0, "decode 3MF", err)
	}

	m := mesh.New()
	for _, obj := range model.Resources.Objects {
		if obj.Mesh == nil {
			continue
		}
		base := m.NumVertices()
		for _, p := range obj.Mesh.Vertices.Vertex {
			m.InsertVertex(v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])})
		}
		for _, t := range obj.Mesh.Triangles.Triangle {
			f := mesh.Face{base + int(t.V1), base + int(t.V2), base + int(t.V3)}
			if _, err := m.InsertFace(f); err != nil {
				return nil, malformed(path, 0, fmt.Sprintf("object %d", obj.ID), err)
			}
		}
	}
	return m, nil
}
