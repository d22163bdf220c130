// Package sdfx implements kernel.Kernel with the signed distance functions
// of github.com/deadsy/sdfx. Surfaces are smooth, so segment counts are
// ignored; meshing resolution comes from the marching cubes cell count.
package sdfx

import (
	"fmt"

	"github.com/chazu/skeletal/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var _ kernel.Kernel = (*Kernel)(nil)

// DefaultMeshCells is the marching cubes resolution along the longest
// bounding box axis.
const DefaultMeshCells = 200

type solid struct {
	sdf sdf.SDF3
}

func (s *solid) BoundingBox() (min, max [3]float64) {
	bb := s.sdf.BoundingBox()
	return [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}, [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
}

// Kernel meshes SDF solids with uniform marching cubes.
type Kernel struct {
	cells int
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithMeshCells sets the marching cubes resolution. Values below 1 keep
// the default.
func WithMeshCells(n int) Option {
	return func(k *Kernel) {
		if n > 0 {
			k.cells = n
		}
	}
}

// New returns a Kernel using DefaultMeshCells unless overridden.
func New(opts ...Option) *Kernel {
	k := &Kernel{cells: DefaultMeshCells}
	for _, o := range opts {
		o(k)
	}
	return k
}

// MeshCells returns the marching cubes resolution in use.
func (k *Kernel) MeshCells() int {
	return k.cells
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &solid{sdf: s}
}

// unwrap panics on solids made by another backend.
func unwrap(s kernel.Solid) sdf.SDF3 {
	ss, ok := s.(*solid)
	if !ok {
		panic(fmt.Sprintf("sdfx: solid %T was not made by this kernel", s))
	}
	return ss.sdf
}

// must panics on constructor errors; sdfx only returns them for
// non-positive dimensions.
func must(what string, s sdf.SDF3, err error) kernel.Solid {
	if err != nil {
		panic(fmt.Sprintf("sdfx: %s: %v", what, err))
	}
	return wrap(s)
}

func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	return must("box", s, err)
}

func (k *Kernel) Cylinder(height, radius float64, _ int) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	return must("cylinder", s, err)
}

func (k *Kernel) Sphere(radius float64, _ int) kernel.Solid {
	s, err := sdf.Sphere3D(radius)
	return must("sphere", s, err)
}

func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})))
}

// Rotate applies X, then Y, then Z rotations, in degrees.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.RotateZ(sdf.DtoR(z)).Mul(sdf.RotateY(sdf.DtoR(y))).Mul(sdf.RotateX(sdf.DtoR(x)))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh returns the marching cubes soup: every triangle has its own three
// vertices, so Indices is simply 0..3n-1.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	tris := render.ToTriangles(unwrap(s), render.NewMarchingCubesUniform(k.cells))

	m := &kernel.Mesh{
		Vertices: make([]float64, 0, 9*len(tris)),
		Indices:  make([]uint32, 0, 3*len(tris)),
	}
	for _, tri := range tris {
		for _, v := range tri {
			m.Indices = append(m.Indices, uint32(len(m.Indices)))
			m.Vertices = append(m.Vertices, v.X, v.Y, v.Z)
		}
	}
	return m, nil
}
