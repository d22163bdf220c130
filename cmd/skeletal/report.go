package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/chazu/skeletal/pkg/engine"
	"github.com/chazu/skeletal/pkg/scene"
	"github.com/chazu/skeletal/pkg/simplicial"
)

// EntrySummary describes one scene entry.
type EntrySummary struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Vertices int    `json:"vertices"`
	Faces    int    `json:"faces,omitempty"`
	Edges    int    `json:"edges"`
	// Topology is only filled for meshes whose half-edge complex builds.
	Topology *Topology `json:"topology,omitempty"`
}

// Topology summarises the half-edge complex of a mesh.
type Topology struct {
	Closed            bool `json:"closed"`
	BoundaryHalfEdges int  `json:"boundaryHalfEdges"`
	NonManifoldNodes  int  `json:"nonManifoldNodes"`
	Euler             int  `json:"euler"`
}

// Message is an evaluation error or a validation finding.
type Message struct {
	Line    int    `json:"line,omitempty"`
	Entry   string `json:"entry,omitempty"`
	Message string `json:"message"`
}

// Report is the printable result of info and run.
type Report struct {
	Entries  []EntrySummary `json:"entries"`
	Errors   []Message      `json:"errors"`
	Warnings []Message      `json:"warnings"`
}

// OK reports whether the report carries no errors.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

func newReport() *Report {
	return &Report{
		Entries:  []EntrySummary{},
		Errors:   []Message{},
		Warnings: []Message{},
	}
}

// sceneReport summarises every entry and folds in validation findings.
func sceneReport(sc *scene.Scene) *Report {
	r := newReport()
	for _, e := range sc.Entries() {
		r.Entries = append(r.Entries, summarize(e))
	}
	v := scene.Validate(sc)
	for _, f := range v.Errors {
		r.Errors = append(r.Errors, Message{Entry: f.Entry, Message: f.Message})
	}
	for _, f := range v.Warnings {
		r.Warnings = append(r.Warnings, Message{Entry: f.Entry, Message: f.Message})
	}
	return r
}

// evalReport converts engine output. Evaluation errors leave no entries.
func evalReport(res *engine.EvalResult) *Report {
	if len(res.Errors) > 0 {
		r := newReport()
		for _, e := range res.Errors {
			r.Errors = append(r.Errors, Message{Line: e.Line, Message: e.Message})
		}
		return r
	}
	return sceneReport(res.Scene)
}

func summarize(e *scene.Entry) EntrySummary {
	s := EntrySummary{Name: e.Name, Kind: e.Kind.String()}
	switch e.Kind {
	case scene.KindSkeleton:
		s.Vertices = e.Skeleton.NumVertices()
		s.Edges = e.Skeleton.NumEdges()
	case scene.KindMesh:
		s.Vertices = e.Mesh.NumVertices()
		s.Faces = e.Mesh.NumFaces()
		cx, err := simplicial.BuildFromTriangleList(e.Mesh.Triangles(), true)
		if err != nil {
			break
		}
		boundary := len(cx.BoundaryHalfEdges())
		// Interior edges carry two half-edges, boundary edges one.
		s.Edges = (cx.NumHalfEdges() + boundary) / 2
		t := &Topology{Closed: boundary == 0, BoundaryHalfEdges: boundary}
		for _, n := range cx.Nodes() {
			if !n.IsManifold() {
				t.NonManifoldNodes++
			}
		}
		t.Euler = cx.NumNodes() - s.Edges + cx.NumTriangles()
		s.Topology = t
	}
	return s
}

func (r *Report) writeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (r *Report) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range r.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%d vertices\t", e.Name, e.Kind, e.Vertices)
		if e.Kind == scene.KindMesh.String() {
			fmt.Fprintf(tw, "%d faces\t", e.Faces)
		}
		fmt.Fprintf(tw, "%d edges", e.Edges)
		if t := e.Topology; t != nil {
			state := "open"
			if t.Closed {
				state = "closed"
			}
			fmt.Fprintf(tw, "\t%s\teuler %d", state, t.Euler)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, m := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", m.text())
	}
	for _, m := range r.Errors {
		fmt.Fprintf(w, "error: %s\n", m.text())
	}
	return nil
}

func (m Message) text() string {
	switch {
	case m.Entry != "":
		return m.Entry + ": " + m.Message
	case m.Line > 0:
		return fmt.Sprintf("line %d: %s", m.Line, m.Message)
	}
	return m.Message
}
