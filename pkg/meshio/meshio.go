// Package meshio reads and writes meshes and skeletons.
//
// Supported formats:
//
//	OBJ  read/write  Mesh3D (polygons fan-triangulated on read)
//	OFF  read        Mesh3D
//	PLY  read/write  Mesh3D and Skeleton2D, ASCII and binary, with comments
//	3MF  read/write  Mesh3D
//	DXF  write       Skeleton2D (edges as lines, radii as circles)
//
// Parse failures are reported as *geomerr.MalformedFileError. Readers take
// an io.Reader; the Load* and Save* helpers wrap them for file paths.
package meshio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chazu/skeletal/pkg/geomerr"
)

func malformed(path string, line int, msg string, err error) error {
	return &geomerr.MalformedFileError{Path: path, Line: line, Msg: msg, Err: err}
}

// withPath fills in the file name on a MalformedFileError produced by a
// stream reader.
func withPath(err error, path string) error {
	var mf *geomerr.MalformedFileError
	if errors.As(err, &mf) && mf.Path == "" {
		mf.Path = path
	}
	return err
}

func loadFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	v, err := read(f)
	if err != nil {
		return zero, withPath(err, path)
	}
	return v, nil
}

func saveFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// fan splits a polygon into triangles sharing its first corner.
func fan(poly []int) [][3]int {
	out := make([][3]int, 0, len(poly)-2)
	for k := 1; k+1 < len(poly); k++ {
		out = append(out, [3]int{poly[0], poly[k], poly[k+1]})
	}
	return out
}
