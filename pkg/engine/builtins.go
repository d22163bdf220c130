package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/skeletal/pkg/kernel"
	"github.com/chazu/skeletal/pkg/mesh"
	"github.com/chazu/skeletal/pkg/scene"
	"github.com/chazu/skeletal/pkg/skeleton"
	"github.com/chazu/skeletal/pkg/tessellate"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// defaultSegments is used by cylinder and sphere when :segments is absent.
const defaultSegments = 32

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpVec2 struct{ vec v2.Vec }

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.vec.X, v.vec.Y)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

type sexpVec3 struct{ vec v3.Vec }

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpMesh is a handle on a mesh already registered in the scene.
type sexpMesh struct {
	name string
	m    *mesh.Mesh3D
}

func (m *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh %q %dv %df)", m.name, m.m.NumVertices(), m.m.NumFaces())
}
func (m *sexpMesh) Type() *zygo.RegisteredType { return nil }

// sexpSkeleton is a handle on a skeleton already registered in the scene.
type sexpSkeleton struct {
	name string
	s    *skeleton.Skeleton2D
}

func (s *sexpSkeleton) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(skeleton %q %dv %de)", s.name, s.s.NumVertices(), s.s.NumEdges())
}
func (s *sexpSkeleton) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps a kernel solid between CSG builtins.
type sexpSolid struct {
	s kernel.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	min, max := s.s.BoundingBox()
	return fmt.Sprintf("(solid %v %v)", min, max)
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// Trailing keyword with no value.
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// float returns keyword argument name as a float64, or def when absent.
func (a kwArgs) float(name string, def float64) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toVec2(s zygo.Sexp) (v2.Vec, error) {
	if v, ok := s.(*sexpVec2); ok {
		return v.vec, nil
	}
	return v2.Vec{}, fmt.Errorf("expected vec2, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toMesh(s zygo.Sexp) (*sexpMesh, error) {
	if m, ok := s.(*sexpMesh); ok {
		return m, nil
	}
	return nil, fmt.Errorf("expected mesh, got %T (%s)", s, s.SexpString(nil))
}

func toSkeleton(s zygo.Sexp) (*sexpSkeleton, error) {
	if sk, ok := s.(*sexpSkeleton); ok {
		return sk, nil
	}
	return nil, fmt.Errorf("expected skeleton, got %T (%s)", s, s.SexpString(nil))
}

func toSolid(s zygo.Sexp) (kernel.Solid, error) {
	if sol, ok := s.(*sexpSolid); ok {
		return sol.s, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

func toSolids(fn string, args []zygo.Sexp) ([]kernel.Solid, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("%s requires at least 2 solids, got %d", fn, len(args))
	}
	out := make([]kernel.Solid, len(args))
	for i, a := range args {
		s, err := toSolid(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		out[i] = s
	}
	return out, nil
}

// positive rejects dimensions the kernel would panic on.
func positive(fn, what string, v float64) error {
	if !(v > 0) {
		return fmt.Errorf("%s: %s must be positive, got %g", fn, what, v)
	}
	return nil
}

func sexpInt(n int) zygo.Sexp {
	return &zygo.SexpInt{Val: int64(n)}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builder is the state shared by the builtins of one evaluation.
type builder struct {
	kernel  kernel.Kernel
	tessOpt tessellate.Options
	scene   *scene.Scene
}

type builtin = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the build-script builtins into a zygomys
// environment. Names are registered in snake_case; scripts may write them
// in kebab-case since preprocessSource rewrites hyphens.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	for name, fn := range map[string]builtin{
		"vec2":         b.vec2,
		"vec3":         b.vec3,
		"defmesh":      b.defmesh,
		"add_vertex":   b.addVertex,
		"add_face":     b.addFace,
		"defskeleton":  b.defskeleton,
		"add_node":     b.addNode,
		"add_bone":     b.addBone,
		"num_vertices": b.numVertices,
		"num_faces":    b.numFaces,
		"num_bones":    b.numBones,
		"box":          b.box,
		"cylinder":     b.cylinder,
		"sphere":       b.sphere,
		"union":        b.csg(b.kernel.Union),
		"difference":   b.csg(b.kernel.Difference),
		"intersection": b.csg(b.kernel.Intersection),
		"translate":    b.transform(b.kernel.Translate),
		"rotate":       b.transform(b.kernel.Rotate),
		"tessellate":   b.tessellate,
	} {
		env.AddFunction(name, fn)
	}
}

// (vec2 1 2)
func (b *builder) vec2(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 2 {
		return zygo.SexpNull, fmt.Errorf("vec2 requires exactly 2 arguments, got %d", len(args))
	}
	var c [2]float64
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: %c: %w", "xy"[i], err)
		}
		c[i] = f
	}
	return &sexpVec2{vec: v2.Vec{X: c[0], Y: c[1]}}, nil
}

// (vec3 1 2 3)
func (b *builder) vec3(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
	}
	var c [3]float64
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
		}
		c[i] = f
	}
	return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
}

// (defmesh "name")
func (b *builder) defmesh(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("defmesh requires a name argument")
	}
	entry, err := toString(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("defmesh: name: %w", err)
	}
	m := mesh.New()
	if _, err := b.scene.AddMesh(entry, m); err != nil {
		return zygo.SexpNull, fmt.Errorf("defmesh: %w", err)
	}
	return &sexpMesh{name: entry, m: m}, nil
}

// (add-vertex m (vec3 0 0 0)) returns the new vertex index.
func (b *builder) addVertex(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 2 {
		return zygo.SexpNull, fmt.Errorf("add-vertex requires a mesh and a vec3")
	}
	m, err := toMesh(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("add-vertex: %w", err)
	}
	p, err := toVec3(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("add-vertex: %w", err)
	}
	return sexpInt(m.m.InsertVertex(p)), nil
}

// (add-face m 0 1 2) returns the new face index.
func (b *builder) addFace(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 4 {
		return zygo.SexpNull, fmt.Errorf("add-face requires a mesh and 3 vertex indices")
	}
	m, err := toMesh(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("add-face: %w", err)
	}
	var f mesh.Face
	for i := range f {
		if f[i], err = toInt(args[i+1]); err != nil {
			return zygo.SexpNull, fmt.Errorf("add-face: corner %d: %w", i, err)
		}
	}
	idx, err := m.m.InsertFace(f)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("add-face: mesh %q: %w", m.name, err)
	}
	return sexpInt(idx), nil
}

// (defskeleton "name")
func (b *builder) defskeleton(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("defskeleton requires a name argument")
	}
	entry, err := toString(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("defskeleton: name: %w", err)
	}
	s := skeleton.New()
	if _, err := b.scene.AddSkeleton(entry, s); err != nil {
		return zygo.SexpNull, fmt.Errorf("defskeleton: %w", err)
	}
	return &sexpSkeleton{name: entry, s: s}, nil
}

// (add-node s (vec2 0 0) :radius 0.5) returns the new vertex index.
// The radius defaults to 0.
func (b *builder) addNode(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 2 {
		return zygo.SexpNull, fmt.Errorf("add-node requires a skeleton and a vec2")
	}
	s, err := toSkeleton(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("add-node: %w", err)
	}
	p, err := toVec2(pa.positional[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("add-node: %w", err)
	}
	r, err := pa.float("radius", 0)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("add-node: %w", err)
	}
	return sexpInt(s.s.InsertVertex(p, r)), nil
}

// (add-bone s 0 1)
func (b *builder) addBone(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("add-bone requires a skeleton and 2 vertex indices")
	}
	s, err := toSkeleton(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("add-bone: %w", err)
	}
	i, err := toInt(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("add-bone: first vertex: %w", err)
	}
	j, err := toInt(args[2])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("add-bone: second vertex: %w", err)
	}
	if err := s.s.InsertEdge(i, j); err != nil {
		return zygo.SexpNull, fmt.Errorf("add-bone: skeleton %q: %w", s.name, err)
	}
	return zygo.SexpNull, nil
}

// (num-vertices m) works on meshes and skeletons.
func (b *builder) numVertices(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("num-vertices requires one argument")
	}
	switch v := args[0].(type) {
	case *sexpMesh:
		return sexpInt(v.m.NumVertices()), nil
	case *sexpSkeleton:
		return sexpInt(v.s.NumVertices()), nil
	}
	return zygo.SexpNull, fmt.Errorf("num-vertices: expected mesh or skeleton, got %T", args[0])
}

func (b *builder) numFaces(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("num-faces requires one argument")
	}
	m, err := toMesh(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("num-faces: %w", err)
	}
	return sexpInt(m.m.NumFaces()), nil
}

func (b *builder) numBones(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("num-bones requires one argument")
	}
	s, err := toSkeleton(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("num-bones: %w", err)
	}
	return sexpInt(s.s.NumEdges()), nil
}

// (box 10 20 30), centred on the origin.
func (b *builder) box(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("box requires exactly 3 dimensions, got %d", len(args))
	}
	var d [3]float64
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %c: %w", "xyz"[i], err)
		}
		if err := positive("box", string("xyz"[i]), f); err != nil {
			return zygo.SexpNull, err
		}
		d[i] = f
	}
	return &sexpSolid{s: b.kernel.Box(d[0], d[1], d[2])}, nil
}

// (cylinder :height 10 :radius 2 :segments 32), along Z.
func (b *builder) cylinder(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	h, err := pa.float("height", 0)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
	}
	r, err := pa.float("radius", 0)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
	}
	seg, err := pa.float("segments", defaultSegments)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
	}
	if err := positive("cylinder", "height", h); err != nil {
		return zygo.SexpNull, err
	}
	if err := positive("cylinder", "radius", r); err != nil {
		return zygo.SexpNull, err
	}
	return &sexpSolid{s: b.kernel.Cylinder(h, r, int(seg))}, nil
}

// (sphere :radius 5 :segments 32)
func (b *builder) sphere(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	r, err := pa.float("radius", 0)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
	}
	seg, err := pa.float("segments", defaultSegments)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
	}
	if err := positive("sphere", "radius", r); err != nil {
		return zygo.SexpNull, err
	}
	return &sexpSolid{s: b.kernel.Sphere(r, int(seg))}, nil
}

// csg folds a binary kernel operation over two or more solids, left to
// right: (difference a b c) is (a - b) - c.
func (b *builder) csg(op func(a, b kernel.Solid) kernel.Solid) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		solids, err := toSolids(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		acc := solids[0]
		for _, s := range solids[1:] {
			acc = op(acc, s)
		}
		return &sexpSolid{s: acc}, nil
	}
}

// transform wraps translate and rotate: (translate s (vec3 1 2 3)).
// Rotation angles are Euler degrees about X, Y, Z.
func (b *builder) transform(op func(s kernel.Solid, x, y, z float64) kernel.Solid) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires a solid and a vec3", name)
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		v, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return &sexpSolid{s: op(s, v.X, v.Y, v.Z)}, nil
	}
}

// (tessellate "name" solid :rotate (vec3 0 0 90) :at (vec3 10 0 0)) meshes
// the solid and registers the welded result as a scene mesh.
func (b *builder) tessellate(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 2 {
		return zygo.SexpNull, fmt.Errorf("tessellate requires a name and a solid")
	}
	entry, err := toString(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("tessellate: name: %w", err)
	}
	s, err := toSolid(pa.positional[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("tessellate: %w", err)
	}

	job := tessellate.Job{Name: entry, Solid: s}
	if v, ok := pa.kw["rotate"]; ok {
		r, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tessellate: rotate: %w", err)
		}
		job.Placement.Rotation = [3]float64{r.X, r.Y, r.Z}
	}
	if v, ok := pa.kw["at"]; ok {
		t, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("tessellate: at: %w", err)
		}
		job.Placement.Translation = [3]float64{t.X, t.Y, t.Z}
	}

	if b.scene.Lookup(entry) != nil {
		return zygo.SexpNull, fmt.Errorf("tessellate: %w: %q", scene.ErrDuplicateName, entry)
	}
	parts, err := tessellate.All(b.kernel, []tessellate.Job{job}, b.tessOpt)
	if err != nil {
		return zygo.SexpNull, err
	}
	m := parts[0].Mesh
	if _, err := b.scene.AddMesh(entry, m); err != nil {
		return zygo.SexpNull, fmt.Errorf("tessellate: %w", err)
	}
	return &sexpMesh{name: entry, m: m}, nil
}
