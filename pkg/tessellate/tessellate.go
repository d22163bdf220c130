// Package tessellate turns kernel solids into indexed meshes. The kernel's
// triangle soup is welded into a Mesh3D and then built into a half-edge
// complex so its topology can be checked before the mesh is exported.
package tessellate

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/skeletal/pkg/kernel"
	"github.com/chazu/skeletal/pkg/mesh"
	"github.com/chazu/skeletal/pkg/simplicial"
)

// ErrNotManifold is returned when Options.RequireManifold is set and the
// welded surface is open or has a non-manifold vertex.
var ErrNotManifold = errors.New("tessellated surface is not a closed manifold")

// relativeTolerance scales the bounding box diagonal into the default weld
// tolerance.
const relativeTolerance = 1e-6

// Options controls welding and topology checks.
type Options struct {
	// WeldTolerance is the distance below which soup corners are merged.
	// Zero derives it from the solid's bounding box.
	WeldTolerance float64
	// RequireManifold turns topology problems into errors instead of
	// recording them on the Part.
	RequireManifold bool
}

// DefaultOptions returns a lenient configuration with a derived tolerance.
func DefaultOptions() Options {
	return Options{}
}

// Placement is applied to a solid before meshing: rotation (Euler degrees
// about X, Y, Z) first, then translation.
type Placement struct {
	Rotation    [3]float64
	Translation [3]float64
}

// Job is one named solid to tessellate.
type Job struct {
	Name      string
	Solid     kernel.Solid
	Placement Placement
}

// Part is the result of tessellating one solid.
type Part struct {
	Name    string
	Mesh    *mesh.Mesh3D
	Complex *simplicial.Simplicial2 // nil when TopologyErr is set
	// TopologyErr records why the complex could not be built. It is only
	// set when Options.RequireManifold is false.
	TopologyErr error
}

// Closed reports whether the part has a complex with no boundary.
func (p *Part) Closed() bool {
	return p.Complex != nil && p.Complex.IsClosed()
}

// Tessellate meshes a single solid.
func Tessellate(k kernel.Kernel, name string, s kernel.Solid, opts Options) (*Part, error) {
	km, err := k.ToMesh(s)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %q: %w", name, err)
	}
	soup, err := km.Soup()
	if err != nil {
		return nil, fmt.Errorf("tessellate: %q: %w", name, err)
	}

	tol := opts.WeldTolerance
	if tol <= 0 {
		tol = derivedTolerance(s)
	}
	m, err := mesh.WeldTriangles(soup, tol)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %q: %w", name, err)
	}

	part := &Part{Name: name, Mesh: m}
	cx, err := simplicial.BuildFromTriangleList(m.Triangles(), true)
	if err != nil {
		if opts.RequireManifold {
			return nil, fmt.Errorf("tessellate: %q: %w", name, err)
		}
		part.TopologyErr = err
		return part, nil
	}
	part.Complex = cx

	if opts.RequireManifold {
		if err := checkManifold(cx); err != nil {
			return nil, fmt.Errorf("tessellate: %q: %w", name, err)
		}
	}
	return part, nil
}

// All meshes each job in order, applying its placement first. It stops at
// the first failure.
func All(k kernel.Kernel, jobs []Job, opts Options) ([]*Part, error) {
	parts := make([]*Part, 0, len(jobs))
	for _, j := range jobs {
		p, err := Tessellate(k, j.Name, place(k, j.Solid, j.Placement), opts)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

func place(k kernel.Kernel, s kernel.Solid, p Placement) kernel.Solid {
	if r := p.Rotation; r != [3]float64{} {
		s = k.Rotate(s, r[0], r[1], r[2])
	}
	if t := p.Translation; t != [3]float64{} {
		s = k.Translate(s, t[0], t[1], t[2])
	}
	return s
}

func checkManifold(cx *simplicial.Simplicial2) error {
	if b := len(cx.BoundaryHalfEdges()); b > 0 {
		return fmt.Errorf("%w: %d boundary half-edges", ErrNotManifold, b)
	}
	for _, n := range cx.Nodes() {
		if !n.IsManifold() {
			return fmt.Errorf("%w: vertex %d", ErrNotManifold, n.Value())
		}
	}
	return nil
}

func derivedTolerance(s kernel.Solid) float64 {
	min, max := s.BoundingBox()
	var d2 float64
	for i := 0; i < 3; i++ {
		d := max[i] - min[i]
		d2 += d * d
	}
	tol := relativeTolerance * math.Sqrt(d2)
	if tol <= 0 || math.IsInf(tol, 0) || math.IsNaN(tol) {
		return relativeTolerance
	}
	return tol
}
