// Package skeleton implements Skeleton2D, an undirected graph of 2D points
// each tagged with a scalar radius, such as a medial-axis shape skeleton.
package skeleton

import (
	"fmt"
	"sort"

	"github.com/chazu/skeletal/pkg/geomerr"
	"github.com/chazu/skeletal/pkg/vertex"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/samber/lo"
)

// Skeleton2D stores vertices, their radii and an undirected edge set.
// The zero value is an empty skeleton ready for use.
type Skeleton2D struct {
	vertices vertex.Registry[v2.Vec]
	radii    []float64
	adj      []map[int]struct{}
	edges    int
}

// New creates an empty skeleton.
func New() *Skeleton2D {
	return &Skeleton2D{}
}

// InsertVertex appends a vertex with the given radius and returns its
// index. The radius is stored as given.
func (s *Skeleton2D) InsertVertex(p v2.Vec, radius float64) int {
	i := s.vertices.Insert(p)
	s.radii = append(s.radii, radius)
	s.adj = append(s.adj, nil)
	return i
}

// InsertEdge connects vertices i and j. Inserting an existing edge, in
// either direction, is a no-op. Unknown indices and self-loops fail with
// ErrInvalidReference.
func (s *Skeleton2D) InsertEdge(i, j int) error {
	n := s.vertices.Count()
	for _, v := range [2]int{i, j} {
		if v < 0 || v >= n {
			return fmt.Errorf("insert edge (%d, %d): %w", i, j, geomerr.InvalidReference("vertex", v, n))
		}
	}
	if i == j {
		return fmt.Errorf("insert edge (%d, %d): self-loop: %w", i, j, geomerr.ErrInvalidReference)
	}
	if _, ok := s.adj[i][j]; ok {
		return nil
	}
	if s.adj[i] == nil {
		s.adj[i] = make(map[int]struct{})
	}
	if s.adj[j] == nil {
		s.adj[j] = make(map[int]struct{})
	}
	s.adj[i][j] = struct{}{}
	s.adj[j][i] = struct{}{}
	s.edges++
	return nil
}

// VertexCoords returns the position of vertex i.
func (s *Skeleton2D) VertexCoords(i int) (v2.Vec, error) {
	return s.vertices.Get(i)
}

// Radius returns the radius of vertex i.
func (s *Skeleton2D) Radius(i int) (float64, error) {
	if err := geomerr.CheckIndex("vertex", i, len(s.radii)); err != nil {
		return 0, err
	}
	return s.radii[i], nil
}

// Neighbors returns the vertices adjacent to i in ascending order. An
// isolated vertex has no neighbors.
func (s *Skeleton2D) Neighbors(i int) ([]int, error) {
	if err := geomerr.CheckIndex("vertex", i, len(s.adj)); err != nil {
		return nil, err
	}
	out := lo.Keys(s.adj[i])
	sort.Ints(out)
	return out, nil
}

// NumNeighbors returns the number of vertices adjacent to i.
func (s *Skeleton2D) NumNeighbors(i int) (int, error) {
	if err := geomerr.CheckIndex("vertex", i, len(s.adj)); err != nil {
		return 0, err
	}
	return len(s.adj[i]), nil
}

// NumVertices returns the number of vertices.
func (s *Skeleton2D) NumVertices() int {
	return s.vertices.Count()
}

// NumEdges returns the number of undirected edges.
func (s *Skeleton2D) NumEdges() int {
	return s.edges
}

// Edges returns every edge once as (i, j) with i < j, sorted.
func (s *Skeleton2D) Edges() [][2]int {
	out := make([][2]int, 0, s.edges)
	for i, nb := range s.adj {
		for j := range nb {
			if i < j {
				out = append(out, [2]int{i, j})
			}
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a][0] != out[b][0] {
			return out[a][0] < out[b][0]
		}
		return out[a][1] < out[b][1]
	})
	return out
}

// AllVerticesCoords returns the positions as an [n][2] buffer.
func (s *Skeleton2D) AllVerticesCoords() [][2]float64 {
	return lo.Map(s.vertices.All(), func(p v2.Vec, _ int) [2]float64 {
		return [2]float64{p.X, p.Y}
	})
}

// AllRadii returns a copy of the per-vertex radii.
func (s *Skeleton2D) AllRadii() []float64 {
	out := make([]float64, len(s.radii))
	copy(out, s.radii)
	return out
}

// IsolatedVertices returns the vertices with no incident edge.
func (s *Skeleton2D) IsolatedVertices() []int {
	var out []int
	for i, nb := range s.adj {
		if len(nb) == 0 {
			out = append(out, i)
		}
	}
	return out
}
