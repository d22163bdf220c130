package meshio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chazu/skeletal/pkg/mesh"
	"github.com/chazu/skeletal/pkg/skeleton"
)

// ErrUnsupportedFormat is returned when a file extension has no codec for
// the requested operation.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// SaveOptions carries the format-specific settings used by SaveMesh and
// SaveSkeleton. Name is the 3MF object name; Comment goes into OBJ and PLY
// headers.
type SaveOptions struct {
	PLY  PLYOptions
	Name string
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func unsupported(op, path string) error {
	return fmt.Errorf("%s %s: %w %q", op, path, ErrUnsupportedFormat, ext(path))
}

// LoadMesh reads a mesh, choosing the codec from the file extension
// (.obj, .off, .ply, .3mf).
func LoadMesh(path string) (*mesh.Mesh3D, error) {
	switch ext(path) {
	case ".obj":
		return LoadMeshOBJ(path)
	case ".off":
		return LoadMeshOFF(path)
	case ".ply":
		m, _, err := LoadMeshPLY(path)
		return m, err
	case ".3mf":
		return Load3MF(path)
	}
	return nil, unsupported("load mesh", path)
}

// SaveMesh writes a mesh, choosing the codec from the file extension
// (.obj, .ply, .3mf).
func SaveMesh(path string, m *mesh.Mesh3D, opts SaveOptions) error {
	switch ext(path) {
	case ".obj":
		return SaveMeshOBJ(path, m, opts.PLY.Comment)
	case ".ply":
		return SaveMeshPLY(path, m, opts.PLY)
	case ".3mf":
		return Save3MF(path, m, opts.Name)
	}
	return unsupported("save mesh", path)
}

// LoadSkeleton reads a skeleton from a .ply file.
func LoadSkeleton(path string) (*skeleton.Skeleton2D, error) {
	if ext(path) != ".ply" {
		return nil, unsupported("load skeleton", path)
	}
	s, _, err := LoadSkeletonPLY(path)
	return s, err
}

// SaveSkeleton writes a skeleton to a .ply or .dxf file.
func SaveSkeleton(path string, s *skeleton.Skeleton2D, opts SaveOptions) error {
	switch ext(path) {
	case ".ply":
		return SaveSkeletonPLY(path, s, opts.PLY)
	case ".dxf":
		return SaveSkeletonDXF(path, s)
	}
	return unsupported("save skeleton", path)
}

// IsSkeletonPLY reports whether a PLY stream holds a skeleton: an edge
// element and a vertex radius property. Only the header is read.
func IsSkeletonPLY(r io.Reader) (bool, error) {
	h, _, err := readPLYHeader(bufio.NewReader(r))
	if err != nil {
		return false, err
	}
	v := h.element("vertex")
	return v != nil && v.propIndex("radius") >= 0 && h.element("edge") != nil, nil
}

// SniffSkeletonPLY is IsSkeletonPLY for a file path. Files with another
// extension are never skeletons.
func SniffSkeletonPLY(path string) (bool, error) {
	if ext(path) != ".ply" {
		return false, nil
	}
	return loadFile(path, IsSkeletonPLY)
}
