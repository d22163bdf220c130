// Package kernel defines the solid-modeling backend used to generate
// triangle meshes. Implementations (sdfx, manifold) provide primitives,
// booleans and transforms behind this interface and emit a triangle soup
// that package tessellate welds into an indexed mesh.
package kernel

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract solid-modeling interface. All primitives are
// centred on the origin. Invalid dimensions (zero or negative) are a
// programming error and make the backend panic; callers accepting user
// input check them first.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid // along Z
	Sphere(radius float64, segments int) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
