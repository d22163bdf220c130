// Package vertex provides an append-only store of points addressed by
// stable integer indices. Indices are assigned in insertion order and are
// never reused or renumbered.
package vertex

import (
	"fmt"

	"github.com/chazu/skeletal/pkg/geomerr"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Point is the set of point types a Registry can hold.
type Point interface {
	v2.Vec | v3.Vec
}

// Registry is an ordered sequence of points.
// The zero value is an empty registry ready for use.
type Registry[P Point] struct {
	points []P
}

// New returns an empty registry with room for capacity points.
func New[P Point](capacity int) *Registry[P] {
	return &Registry[P]{points: make([]P, 0, capacity)}
}

// Insert appends p and returns its index.
func (r *Registry[P]) Insert(p P) int {
	r.points = append(r.points, p)
	return len(r.points) - 1
}

// Get returns the point stored at index i.
func (r *Registry[P]) Get(i int) (P, error) {
	if err := geomerr.CheckIndex("vertex", i, len(r.points)); err != nil {
		var zero P
		return zero, err
	}
	return r.points[i], nil
}

// MustGet returns the point at index i, or panics.
func (r *Registry[P]) MustGet(i int) P {
	p, err := r.Get(i)
	if err != nil {
		panic(fmt.Sprintf("vertex: %v", err))
	}
	return p
}

// Contains reports whether i is a valid index.
func (r *Registry[P]) Contains(i int) bool {
	return i >= 0 && i < len(r.points)
}

// Count returns the number of points.
func (r *Registry[P]) Count() int {
	return len(r.points)
}

// All returns the points as one contiguous slice. The slice is a copy;
// mutating it does not affect the registry.
func (r *Registry[P]) All() []P {
	out := make([]P, len(r.points))
	copy(out, r.points)
	return out
}
