package meshio

import (
	"fmt"
	"io"

	"github.com/chazu/skeletal/pkg/skeleton"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// WriteSkeletonPLY writes s as PLY: a vertex element with double x, y, z
// (z is always 0) and radius, and an edge element with int vertex1 and
// vertex2.
func WriteSkeletonPLY(w io.Writer, s *skeleton.Skeleton2D, opts PLYOptions) error {
	pw, err := newPLYWriter(w, opts)
	if err != nil {
		return err
	}
	edges := s.Edges()
	pw.header("element vertex %d", s.NumVertices())
	pw.header("property double x")
	pw.header("property double y")
	pw.header("property double z")
	pw.header("property double radius")
	pw.header("element edge %d", len(edges))
	pw.header("property int vertex1")
	pw.header("property int vertex2")
	pw.header("end_header")

	radii := s.AllRadii()
	for i, p := range s.AllVerticesCoords() {
		pw.putDouble(p[0])
		pw.putDouble(p[1])
		pw.putDouble(0)
		pw.putDouble(radii[i])
		pw.endRow()
	}
	for _, e := range edges {
		pw.putInt(e[0])
		pw.putInt(e[1])
		pw.endRow()
	}
	return pw.flush()
}

// ReadSkeletonPLY reads a PLY skeleton and its header comment. The vertex
// element needs x, y and radius; z is ignored when present.
func ReadSkeletonPLY(r io.Reader) (*skeleton.Skeleton2D, string, error) {
	h, data, err := readPLY(r)
	if err != nil {
		return nil, "", err
	}

	ve := h.element("vertex")
	if ve == nil {
		return nil, "", malformed("", 0, "no vertex element", nil)
	}
	ix, iy, ir := ve.propIndex("x"), ve.propIndex("y"), ve.propIndex("radius")
	if ix < 0 || iy < 0 || ir < 0 {
		return nil, "", malformed("", 0, "vertex element needs x, y and radius", nil)
	}

	s := skeleton.New()
	for _, row := range data["vertex"] {
		s.InsertVertex(v2.Vec{X: row[ix].scalar, Y: row[iy].scalar}, row[ir].scalar)
	}

	if ee := h.element("edge"); ee != nil {
		i1, i2 := ee.propIndex("vertex1"), ee.propIndex("vertex2")
		if i1 < 0 || i2 < 0 {
			return nil, "", malformed("", 0, "edge element needs vertex1 and vertex2", nil)
		}
		for n, row := range data["edge"] {
			a, err := plyIndex(row[i1].scalar)
			if err != nil {
				return nil, "", malformed("", 0, fmt.Sprintf("edge %d", n), err)
			}
			b, err := plyIndex(row[i2].scalar)
			if err != nil {
				return nil, "", malformed("", 0, fmt.Sprintf("edge %d", n), err)
			}
			if err := s.InsertEdge(a, b); err != nil {
				return nil, "", malformed("", 0, fmt.Sprintf("edge %d", n), err)
			}
		}
	}
	return s, h.comment(), nil
}

// SaveSkeletonPLY writes s to a PLY file.
func SaveSkeletonPLY(path string, s *skeleton.Skeleton2D, opts PLYOptions) error {
	return saveFile(path, func(w io.Writer) error { return WriteSkeletonPLY(w, s, opts) })
}

// LoadSkeletonPLY reads a PLY skeleton file and its header comment.
func LoadSkeletonPLY(path string) (*skeleton.Skeleton2D, string, error) {
	type result struct {
		s       *skeleton.Skeleton2D
		comment string
	}
	res, err := loadFile(path, func(r io.Reader) (result, error) {
		s, c, err := ReadSkeletonPLY(r)
		return result{s, c}, err
	})
	return res.s, res.comment, err
}
