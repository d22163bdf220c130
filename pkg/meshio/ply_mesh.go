package meshio

import (
	"fmt"
	"io"

	"github.com/chazu/skeletal/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// WriteMeshPLY writes m as PLY: a vertex element with double x, y, z and a
// face element with a uchar/int vertex_indices list.
func WriteMeshPLY(w io.Writer, m *mesh.Mesh3D, opts PLYOptions) error {
	pw, err := newPLYWriter(w, opts)
	if err != nil {
		return err
	}
	pw.header("element vertex %d", m.NumVertices())
	pw.header("property double x")
	pw.header("property double y")
	pw.header("property double z")
	pw.header("element face %d", m.NumFaces())
	pw.header("property list uchar int vertex_indices")
	pw.header("end_header")

	for _, p := range m.AllVertices() {
		pw.putDouble(p[0])
		pw.putDouble(p[1])
		pw.putDouble(p[2])
		pw.endRow()
	}
	for _, f := range m.AllFaces() {
		pw.putUchar(3)
		pw.putInt(f[0])
		pw.putInt(f[1])
		pw.putInt(f[2])
		pw.endRow()
	}
	return pw.flush()
}

// ReadMeshPLY reads a PLY mesh and its header comment. Any scalar type is
// accepted for coordinates and indices; polygon faces are
// fan-triangulated and elements other than vertex and face are skipped.
func ReadMeshPLY(r io.Reader) (*mesh.Mesh3D, string, error) {
	h, data, err := readPLY(r)
	if err != nil {
		return nil, "", err
	}

	ve := h.element("vertex")
	if ve == nil {
		return nil, "", malformed("", 0, "no vertex element", nil)
	}
	ix, iy, iz := ve.propIndex("x"), ve.propIndex("y"), ve.propIndex("z")
	if ix < 0 || iy < 0 || iz < 0 {
		return nil, "", malformed("", 0, "vertex element needs x, y and z", nil)
	}

	m := mesh.New()
	for _, row := range data["vertex"] {
		m.InsertVertex(v3.Vec{X: row[ix].scalar, Y: row[iy].scalar, Z: row[iz].scalar})
	}

	if fe := h.element("face"); fe != nil {
		fi := fe.propIndex("vertex_indices", "vertex_index")
		if fi < 0 || !fe.props[fi].list {
			return nil, "", malformed("", 0, "face element needs a vertex_indices list", nil)
		}
		for n, row := range data["face"] {
			poly := make([]int, len(row[fi].list))
			for k, f := range row[fi].list {
				if poly[k], err = plyIndex(f); err != nil {
					return nil, "", malformed("", 0, fmt.Sprintf("face %d", n), err)
				}
			}
			if len(poly) < 3 {
				return nil, "", malformed("", 0, fmt.Sprintf("face %d has %d corners", n, len(poly)), nil)
			}
			for _, tri := range fan(poly) {
				if _, err := m.InsertFace(mesh.Face(tri)); err != nil {
					return nil, "", malformed("", 0, fmt.Sprintf("face %d", n), err)
				}
			}
		}
	}
	return m, h.comment(), nil
}

// SaveMeshPLY writes m to a PLY file.
func SaveMeshPLY(path string, m *mesh.Mesh3D, opts PLYOptions) error {
	return saveFile(path, func(w io.Writer) error { return WriteMeshPLY(w, m, opts) })
}

// LoadMeshPLY reads a PLY mesh file and its header comment.
func LoadMeshPLY(path string) (*mesh.Mesh3D, string, error) {
	type result struct {
		m       *mesh.Mesh3D
		comment string
	}
	res, err := loadFile(path, func(r io.Reader) (result, error) {
		m, c, err := ReadMeshPLY(r)
		return result{m, c}, err
	})
	return res.m, res.comment, err
}
