package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chazu/skeletal/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

type objFace struct {
	line    int
	corners []int
}

// ReadOBJ parses Wavefront OBJ geometry: "v" records become vertices and
// "f" records become triangles, with polygons fan-triangulated. Texture and
// normal references in face corners ("1/2/3", "1//3") are ignored, as are
// all other record types. Indices may be 1-based or negative (relative to
// the last vertex read so far).
func ReadOBJ(r io.Reader) (*mesh.Mesh3D, error) {
	m := mesh.New()
	var faces []objFace

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, malformed("", line, "vertex needs 3 coordinates", nil)
			}
			var xyz [3]float64
			for k := 0; k < 3; k++ {
				f, err := strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return nil, malformed("", line, "bad vertex coordinate", err)
				}
				xyz[k] = f
			}
			m.InsertVertex(v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})

		case "f":
			if len(fields) < 4 {
				return nil, malformed("", line, fmt.Sprintf("face has %d corners, need at least 3", len(fields)-1), nil)
			}
			corners := make([]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				idx, err := objIndex(tok, m.NumVertices())
				if err != nil {
					return nil, malformed("", line, fmt.Sprintf("bad face corner %q", tok), err)
				}
				corners = append(corners, idx)
			}
			faces = append(faces, objFace{line: line, corners: corners})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, malformed("", line, "read error", err)
	}

	for _, f := range faces {
		for _, tri := range fan(f.corners) {
			if _, err := m.InsertFace(mesh.Face(tri)); err != nil {
				return nil, malformed("", f.line, "face references a missing vertex", err)
			}
		}
	}
	return m, nil
}

// objIndex resolves a face corner token to a 0-based vertex index.
func objIndex(tok string, seen int) (int, error) {
	if i := strings.IndexByte(tok, '/'); i >= 0 {
		tok = tok[:i]
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, err
	}
	switch {
	case n > 0:
		return n - 1, nil
	case n < 0:
		return seen + n, nil
	default:
		return 0, fmt.Errorf("index 0 is not valid in OBJ")
	}
}

// LoadMeshOBJ reads an OBJ file.
func LoadMeshOBJ(path string) (*mesh.Mesh3D, error) {
	return loadFile(path, ReadOBJ)
}

// WriteOBJ writes m as OBJ with 1-based indices. Each line of comment, if
// any, is written as a leading "#" line.
func WriteOBJ(w io.Writer, m *mesh.Mesh3D, comment string) error {
	bw := bufio.NewWriter(w)
	if comment != "" {
		for _, l := range strings.Split(comment, "\n") {
			fmt.Fprintf(bw, "# %s\n", l)
		}
	}
	for _, p := range m.AllVertices() {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2]))
	}
	for _, f := range m.AllFaces() {
		fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1)
	}
	return bw.Flush()
}

// SaveMeshOBJ writes m to an OBJ file.
func SaveMeshOBJ(path string, m *mesh.Mesh3D, comment string) error {
	return saveFile(path, func(w io.Writer) error { return WriteOBJ(w, m, comment) })
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
