// Package scene holds the named meshes and skeletons produced by a build
// script or loaded from disk, in insertion order.
package scene

import (
	"errors"
	"fmt"

	"github.com/chazu/skeletal/pkg/mesh"
	"github.com/chazu/skeletal/pkg/skeleton"
)

var (
	ErrDuplicateName = errors.New("duplicate entry name")
	ErrEmptyName     = errors.New("entry name must not be empty")
)

// Kind identifies what an Entry holds.
type Kind int

const (
	KindMesh Kind = iota
	KindSkeleton
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindSkeleton:
		return "skeleton"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Entry is one named object. Exactly one of Mesh and Skeleton is set,
// according to Kind.
type Entry struct {
	Name     string
	Kind     Kind
	Mesh     *mesh.Mesh3D
	Skeleton *skeleton.Skeleton2D
}

// Scene is an ordered collection of uniquely named entries.
type Scene struct {
	entries []*Entry
	index   map[string]int
}

// New creates an empty Scene.
func New() *Scene {
	return &Scene{index: make(map[string]int)}
}

func (s *Scene) add(e *Entry) (*Entry, error) {
	if e.Name == "" {
		return nil, ErrEmptyName
	}
	if _, dup := s.index[e.Name]; dup {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, e.Name)
	}
	s.index[e.Name] = len(s.entries)
	s.entries = append(s.entries, e)
	return e, nil
}

// AddMesh registers m under name.
func (s *Scene) AddMesh(name string, m *mesh.Mesh3D) (*Entry, error) {
	return s.add(&Entry{Name: name, Kind: KindMesh, Mesh: m})
}

// AddSkeleton registers sk under name.
func (s *Scene) AddSkeleton(name string, sk *skeleton.Skeleton2D) (*Entry, error) {
	return s.add(&Entry{Name: name, Kind: KindSkeleton, Skeleton: sk})
}

// Lookup returns the entry with the given name, or nil.
func (s *Scene) Lookup(name string) *Entry {
	i, ok := s.index[name]
	if !ok {
		return nil
	}
	return s.entries[i]
}

// MustLookup returns the entry with the given name, or panics.
func (s *Scene) MustLookup(name string) *Entry {
	e := s.Lookup(name)
	if e == nil {
		panic(fmt.Sprintf("scene: no entry named %q", name))
	}
	return e
}

// Entries returns all entries in insertion order.
func (s *Scene) Entries() []*Entry {
	out := make([]*Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Meshes returns the mesh entries in insertion order.
func (s *Scene) Meshes() []*Entry {
	return s.ofKind(KindMesh)
}

// Skeletons returns the skeleton entries in insertion order.
func (s *Scene) Skeletons() []*Entry {
	return s.ofKind(KindSkeleton)
}

func (s *Scene) ofKind(k Kind) []*Entry {
	var out []*Entry
	for _, e := range s.entries {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (s *Scene) Len() int {
	return len(s.entries)
}
