package scene

import (
	"fmt"

	"github.com/chazu/skeletal/pkg/mesh"
	"github.com/chazu/skeletal/pkg/simplicial"
	"github.com/chazu/skeletal/pkg/skeleton"
)

// Severity indicates whether a finding makes an entry unusable or is
// merely advisory.
type Severity int

const (
	SeverityError   Severity = iota // entry cannot be used as a surface/graph
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding describes a single validation result for one entry.
type Finding struct {
	Entry    string
	Message  string
	Severity Severity
	Err      error // underlying error, if any
}

func (f Finding) Error() string {
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Entry, f.Message)
}

func (f Finding) Unwrap() error { return f.Err }

// Result bundles errors and warnings from Validate.
type Result struct {
	Errors   []Finding
	Warnings []Finding
}

// OK reports whether no errors were found.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

func (r *Result) add(f Finding) {
	if f.Severity == SeverityError {
		r.Errors = append(r.Errors, f)
	} else {
		r.Warnings = append(r.Warnings, f)
	}
}

// Validate checks every entry. Meshes are built into a half-edge complex:
// construction failures (non-manifold edges, degenerate faces) are errors;
// open boundaries, non-manifold vertices and unused vertices are warnings.
// Skeletons with negative radii are errors; isolated vertices are
// warnings. Validate never mutates the scene.
func Validate(s *Scene) Result {
	var r Result
	for _, e := range s.entries {
		switch e.Kind {
		case KindMesh:
			validateMesh(&r, e.Name, e.Mesh)
		case KindSkeleton:
			validateSkeleton(&r, e.Name, e.Skeleton)
		}
	}
	return r
}

func validateMesh(r *Result, name string, m *mesh.Mesh3D) {
	warn := func(format string, args ...any) {
		r.add(Finding{Entry: name, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
	}

	if m.NumFaces() == 0 {
		warn("mesh has no faces")
		return
	}

	used := make([]bool, m.NumVertices())
	for _, f := range m.AllFaces() {
		for _, v := range f {
			used[v] = true
		}
	}
	unused := 0
	for _, u := range used {
		if !u {
			unused++
		}
	}
	if unused > 0 {
		warn("%d vertices not referenced by any face", unused)
	}

	cx, err := simplicial.BuildFromTriangleList(m.Triangles(), true)
	if err != nil {
		r.add(Finding{Entry: name, Message: err.Error(), Severity: SeverityError, Err: err})
		return
	}
	if b := len(cx.BoundaryHalfEdges()); b > 0 {
		warn("open surface: %d boundary half-edges", b)
	}
	bad := 0
	for _, n := range cx.Nodes() {
		if !n.IsManifold() {
			bad++
		}
	}
	if bad > 0 {
		warn("%d non-manifold vertices", bad)
	}
}

func validateSkeleton(r *Result, name string, sk *skeleton.Skeleton2D) {
	if sk.NumVertices() == 0 {
		r.add(Finding{Entry: name, Message: "skeleton has no vertices", Severity: SeverityWarning})
		return
	}
	for i, rad := range sk.AllRadii() {
		if rad < 0 {
			r.add(Finding{
				Entry:    name,
				Message:  fmt.Sprintf("vertex %d has negative radius %g", i, rad),
				Severity: SeverityError,
			})
		}
	}
	if sk.NumVertices() > 1 {
		if iso := sk.IsolatedVertices(); len(iso) > 0 {
			r.add(Finding{
				Entry:    name,
				Message:  fmt.Sprintf("%d isolated vertices %v", len(iso), iso),
				Severity: SeverityWarning,
			})
		}
	}
}
