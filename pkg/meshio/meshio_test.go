package meshio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/skeletal/pkg/geomerr"
	"github.com/chazu/skeletal/pkg/mesh"
	"github.com/chazu/skeletal/pkg/skeleton"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/require"
)

const frenchComment = "c'est un test d'écriture"

func unitCube(t *testing.T) *mesh.Mesh3D {
	t.Helper()
	m := mesh.New()
	for _, p := range []v3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	} {
		m.InsertVertex(p)
	}
	for _, f := range []mesh.Face{
		{0, 2, 1}, {0, 3, 2}, {4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4}, {1, 2, 6}, {1, 6, 5},
		{2, 3, 7}, {2, 7, 6}, {3, 0, 4}, {3, 4, 7},
	} {
		_, err := m.InsertFace(f)
		require.NoError(t, err)
	}
	return m
}

func threeBones(t *testing.T) *skeleton.Skeleton2D {
	t.Helper()
	s := skeleton.New()
	s.InsertVertex(v2.Vec{X: 0, Y: 0}, 1.0)
	s.InsertVertex(v2.Vec{X: 1.5, Y: -0.5}, 0.25)
	s.InsertVertex(v2.Vec{X: -1, Y: 2}, 0.25)
	require.NoError(t, s.InsertEdge(0, 1))
	require.NoError(t, s.InsertEdge(0, 2))
	return s
}

func TestMeshPLYRoundTrip(t *testing.T) {
	for _, format := range []Format{ASCII, BinaryLittleEndian, BinaryBigEndian} {
		t.Run(format.String(), func(t *testing.T) {
			want := unitCube(t)
			path := filepath.Join(t.TempDir(), "cube.ply")
			require.NoError(t, SaveMeshPLY(path, want, PLYOptions{Format: format, Comment: frenchComment}))

			got, comment, err := LoadMeshPLY(path)
			require.NoError(t, err)
			require.Equal(t, frenchComment, comment)
			require.Equal(t, 8, got.NumVertices())
			require.Equal(t, 12, got.NumFaces())
			require.Equal(t, want.AllVertices(), got.AllVertices())
			require.Equal(t, want.AllFaces(), got.AllFaces())
		})
	}
}

func TestSkeletonPLYRoundTrip(t *testing.T) {
	for _, format := range []Format{ASCII, BinaryLittleEndian, BinaryBigEndian} {
		t.Run(format.String(), func(t *testing.T) {
			want := threeBones(t)
			path := filepath.Join(t.TempDir(), "skel.ply")
			require.NoError(t, SaveSkeletonPLY(path, want, PLYOptions{Format: format, Comment: frenchComment}))

			got, comment, err := LoadSkeletonPLY(path)
			require.NoError(t, err)
			require.Equal(t, frenchComment, comment)
			require.Equal(t, 3, got.NumVertices())
			require.Equal(t, []float64{1.0, 0.25, 0.25}, got.AllRadii())
			require.Equal(t, want.AllVerticesCoords(), got.AllVerticesCoords())
			require.Equal(t, [][2]int{{0, 1}, {0, 2}}, got.Edges())
		})
	}
}

func TestPLYMultiLineComment(t *testing.T) {
	comment := "first line\n\n  indented ünïcødé ✓\ntrailing  "
	var buf bytes.Buffer
	require.NoError(t, WriteMeshPLY(&buf, unitCube(t), PLYOptions{Comment: comment}))
	require.Equal(t, 4, strings.Count(buf.String(), "\ncomment"))

	_, got, err := ReadMeshPLY(&buf)
	require.NoError(t, err)
	require.Equal(t, comment, got)
}

func TestPLYCommentRejectsCarriageReturn(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMeshPLY(&buf, unitCube(t), PLYOptions{Comment: "line one\r"})
	require.ErrorIs(t, err, ErrCommentCR)

	err = WriteSkeletonPLY(&buf, threeBones(t), PLYOptions{Comment: "a\r\nb"})
	require.ErrorIs(t, err, ErrCommentCR)
}

func TestPLYLatin1Comment(t *testing.T) {
	src := "ply\nformat ascii 1.0\ncomment caf\xe9\nelement vertex 1\n" +
		"property float x\nproperty float y\nproperty float z\nend_header\n1 2 3\n"
	m, comment, err := ReadMeshPLY(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, "café", comment)
	require.Equal(t, 1, m.NumVertices())
}

func TestPLYPolygonFaces(t *testing.T) {
	src := `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 1
property list uchar uint vertex_index
end_header
0 0 0
1 0 0
1 1 0
0 1 0
4 0 1 2 3
`
	m, _, err := ReadMeshPLY(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, [][3]int{{0, 1, 2}, {0, 2, 3}}, m.AllFaces())
}

func TestPLYMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"no magic", "plx\nformat ascii 1.0\nend_header\n", geomerr.ErrMalformedFile},
		{"no end_header", "ply\nformat ascii 1.0\nelement vertex 1\n", geomerr.ErrMalformedFile},
		{"unknown format", "ply\nformat utf16 1.0\nend_header\n", geomerr.ErrMalformedFile},
		{"short body", "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n", geomerr.ErrMalformedFile},
		{"bad face reference", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nproperty float z\n" +
			"element face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n3 0 1 2\n", geomerr.ErrInvalidReference},
		{"huge vertex count", "ply\nformat ascii 1.0\nelement vertex 99999999999999\nproperty float x\nproperty float y\nproperty float z\n" +
			"end_header\n0 0 0\n", geomerr.ErrMalformedFile},
		{"huge binary list", "ply\nformat binary_little_endian 1.0\nelement vertex 0\nproperty float x\nproperty float y\nproperty float z\n" +
			"element face 1\nproperty list int int vertex_indices\nend_header\n\x00\x00\x00\x80\x00\x00\x00\x00", geomerr.ErrMalformedFile},
		{"huge unsigned list", "ply\nformat binary_big_endian 1.0\nelement vertex 0\nproperty float x\nproperty float y\nproperty float z\n" +
			"element face 1\nproperty list uint int vertex_indices\nend_header\n\xff\xff\xff\xff", geomerr.ErrMalformedFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadMeshPLY(strings.NewReader(tt.src))
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, geomerr.ErrMalformedFile)
		})
	}
}

func TestReadOBJ(t *testing.T) {
	src := `# a quad and a triangle
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
v 2 0 0
f -3 -4 -1
`
	m, err := ReadOBJ(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 5, m.NumVertices())
	require.Equal(t, [][3]int{{0, 1, 2}, {0, 2, 3}, {2, 1, 4}}, m.AllFaces())
}

func TestReadOBJMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"short vertex", "v 1 2\n", 1},
		{"bad coordinate", "v 1 2 x\n", 1},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n", 3},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", 4},
		{"missing vertex", "v 0 0 0\nv 1 0 0\nv 0 1 0\n\nf 1 2 9\n", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadOBJ(strings.NewReader(tt.src))
			require.ErrorIs(t, err, geomerr.ErrMalformedFile)
			var mf *geomerr.MalformedFileError
			require.True(t, errors.As(err, &mf))
			require.Equal(t, tt.line, mf.Line)
		})
	}
}

func TestOBJRoundTrip(t *testing.T) {
	want := unitCube(t)
	path := filepath.Join(t.TempDir(), "cube.obj")
	require.NoError(t, SaveMeshOBJ(path, want, frenchComment))

	got, err := LoadMeshOBJ(path)
	require.NoError(t, err)
	require.Equal(t, want.AllVertices(), got.AllVertices())
	require.Equal(t, want.AllFaces(), got.AllFaces())
}

func TestLoadMeshOBJReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.obj")
	require.NoError(t, os.WriteFile(path, []byte("f 1 2 3\n"), 0o644))

	_, err := LoadMeshOBJ(path)
	var mf *geomerr.MalformedFileError
	require.True(t, errors.As(err, &mf))
	require.Equal(t, path, mf.Path)
	require.Contains(t, err.Error(), path+":1")
}

func TestReadOFF(t *testing.T) {
	src := `OFF
# unit square split in two, plus a pentagon fan
5 2 0
0 0 0
1 0 0
1 1 0
0 1 0
0.5 2 0
3 0 1 2 255 0 0
5 0 1 2 4 3
`
	m, err := ReadOFF(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 5, m.NumVertices())
	require.Equal(t, [][3]int{{0, 1, 2}, {0, 1, 2}, {0, 2, 4}, {0, 4, 3}}, m.AllFaces())
}

func TestReadOFFMalformed(t *testing.T) {
	for name, src := range map[string]string{
		"wrong magic":   "PLY\n0 0 0\n",
		"truncated":     "OFF\n3 1 0\n0 0 0\n1 0 0\n",
		"bad reference": "OFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1 7\n",
		"two corners":   "OFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n2 0 1\n",
		"huge corners":  "OFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n99999999999999 0 1 2\n",
		"huge vertices": "OFF\n99999999999999 0 0\n0 0 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadOFF(strings.NewReader(src))
			require.ErrorIs(t, err, geomerr.ErrMalformedFile)
		})
	}
}

func Test3MFRoundTrip(t *testing.T) {
	want := unitCube(t)
	path := filepath.Join(t.TempDir(), "cube.3mf")
	require.NoError(t, Save3MF(path, want, "cube"))

	got, err := Load3MF(path)
	require.NoError(t, err)
	require.Equal(t, want.AllVertices(), got.AllVertices())
	require.Equal(t, want.AllFaces(), got.AllFaces())
}

func TestSaveSkeletonDXF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skel.dxf")
	require.NoError(t, SaveSkeletonDXF(path, threeBones(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, LayerEdges)
	require.Contains(t, text, LayerRadii)
	require.Contains(t, text, "LINE")
	require.Contains(t, text, "CIRCLE")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"ascii", ASCII},
		{"", ASCII},
		{"binary", BinaryLittleEndian},
		{"BE", BinaryBigEndian},
		{"binary_little_endian", BinaryLittleEndian},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "ParseFormat(%q)", tt.in)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
}
