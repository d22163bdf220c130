//go:build manifold

// Package manifold binds the Manifold mesh-boolean library
// (https://github.com/elalish/manifold) as a kernel.Kernel. Its meshes are
// already indexed and guaranteed manifold, so package tessellate only has
// to weld coincident positions that Manifold keeps apart for property
// seams.
//
// Requires the manifoldc C library. Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/chazu/skeletal/pkg/kernel"
)

// Available reports whether the Manifold backend was compiled in.
const Available = true

var (
	_ kernel.Kernel = (*Kernel)(nil)
	_ kernel.Solid  = (*solid)(nil)
)

// solid owns one C manifold; the finalizer frees it.
type solid struct {
	ptr *C.ManifoldManifold
}

func wrap(ptr *C.ManifoldManifold) *solid {
	s := &solid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *solid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// unwrap panics on solids made by another backend.
func unwrap(s kernel.Solid) *C.ManifoldManifold {
	ms, ok := s.(*solid)
	if !ok {
		panic(fmt.Sprintf("manifold: solid %T was not made by this kernel", s))
	}
	return ms.ptr
}

func (s *solid) BoundingBox() (min, max [3]float64) {
	box := C.manifold_bounding_box(C.manifold_alloc_box(), s.ptr)
	defer C.manifold_delete_box(box)

	min = [3]float64{
		float64(C.manifold_box_min_x(box)),
		float64(C.manifold_box_min_y(box)),
		float64(C.manifold_box_min_z(box)),
	}
	max = [3]float64{
		float64(C.manifold_box_max_x(box)),
		float64(C.manifold_box_max_y(box)),
		float64(C.manifold_box_max_z(box)),
	}
	return min, max
}

// Kernel implements kernel.Kernel on top of manifoldc.
type Kernel struct{}

// New returns a Kernel.
func New() (kernel.Kernel, error) {
	return &Kernel{}, nil
}

const centred = C.int(1)

func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	return wrap(C.manifold_cube(C.manifold_alloc_manifold(),
		C.double(x), C.double(y), C.double(z), centred))
}

// Cylinder is untapered: both radii are equal.
func (k *Kernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	return wrap(C.manifold_cylinder(C.manifold_alloc_manifold(),
		C.double(height), C.double(radius), C.double(radius), C.int(segments), centred))
}

func (k *Kernel) Sphere(radius float64, segments int) kernel.Solid {
	return wrap(C.manifold_sphere(C.manifold_alloc_manifold(), C.double(radius), C.int(segments)))
}

func (k *Kernel) boolean(a, b kernel.Solid, op C.ManifoldOpType) kernel.Solid {
	return wrap(C.manifold_boolean(C.manifold_alloc_manifold(), unwrap(a), unwrap(b), op))
}

func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return k.boolean(a, b, C.MANIFOLD_ADD)
}

func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return k.boolean(a, b, C.MANIFOLD_SUBTRACT)
}

func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return k.boolean(a, b, C.MANIFOLD_INTERSECT)
}

func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return wrap(C.manifold_translate(C.manifold_alloc_manifold(), unwrap(s),
		C.double(x), C.double(y), C.double(z)))
}

// Rotate takes Euler angles in degrees.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return wrap(C.manifold_rotate(C.manifold_alloc_manifold(), unwrap(s),
		C.double(x), C.double(y), C.double(z)))
}

// ToMesh copies the positions out of Manifold's MeshGL. Extra vertex
// properties, if any, are skipped.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	gl := C.manifold_get_meshgl(C.manifold_alloc_meshgl(), unwrap(s))
	defer C.manifold_delete_meshgl(gl)

	nv := int(C.manifold_meshgl_num_vert(gl))
	nt := int(C.manifold_meshgl_num_tri(gl))
	if nv == 0 || nt == 0 {
		return &kernel.Mesh{}, nil
	}
	stride := int(C.manifold_meshgl_num_prop(gl))
	if stride < 3 {
		return nil, fmt.Errorf("manifold: %d vertex properties, need at least 3", stride)
	}

	props := make([]float32, nv*stride)
	C.manifold_meshgl_vert_properties((*C.float)(unsafe.Pointer(&props[0])), gl)
	indices := make([]uint32, 3*nt)
	C.manifold_meshgl_tri_verts((*C.uint32_t)(unsafe.Pointer(&indices[0])), gl)

	vertices := make([]float64, 0, 3*nv)
	for v := 0; v < nv; v++ {
		p := props[v*stride : v*stride+3]
		vertices = append(vertices, float64(p[0]), float64(p[1]), float64(p[2]))
	}
	return &kernel.Mesh{Vertices: vertices, Indices: indices}, nil
}
