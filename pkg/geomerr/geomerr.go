// Package geomerr defines the error kinds shared by the mesh, skeleton,
// half-edge and codec packages. Every typed error unwraps to one of the
// sentinels below so callers can branch with errors.Is.
package geomerr

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrOutOfRange is returned when an index lies outside 0..count-1 of an
	// existing collection.
	ErrOutOfRange = errors.New("index out of range")

	// ErrInvalidReference is returned when a structural insertion refers to a
	// vertex that was never inserted.
	ErrInvalidReference = errors.New("invalid vertex reference")

	// ErrNotFound is returned when an element looked up by a logical key
	// (vertex index, vertex pair) was never registered.
	ErrNotFound = errors.New("not found")

	// ErrNonManifoldEdge is returned when the same directed edge is produced
	// by two triangles during half-edge construction.
	ErrNonManifoldEdge = errors.New("non-manifold edge")

	// ErrNoOpposite is returned when asking a boundary half-edge for its
	// opposite.
	ErrNoOpposite = errors.New("half-edge has no opposite")

	// ErrMalformedFile is returned by codecs on parse failures.
	ErrMalformedFile = errors.New("malformed file")
)

// IndexError describes a failed index access or an invalid reference.
// Kind is ErrOutOfRange or ErrInvalidReference.
type IndexError struct {
	Kind  error
	What  string // "vertex", "face", "half-edge", ...
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: %s index %d (count %d)", e.Kind, e.What, e.Index, e.Count)
}

func (e *IndexError) Unwrap() error { return e.Kind }

// OutOfRange returns an IndexError of kind ErrOutOfRange.
func OutOfRange(what string, index, count int) error {
	return &IndexError{Kind: ErrOutOfRange, What: what, Index: index, Count: count}
}

// InvalidReference returns an IndexError of kind ErrInvalidReference.
func InvalidReference(what string, index, count int) error {
	return &IndexError{Kind: ErrInvalidReference, What: what, Index: index, Count: count}
}

// CheckIndex returns an ErrOutOfRange error unless 0 <= index < count.
func CheckIndex(what string, index, count int) error {
	if index < 0 || index >= count {
		return OutOfRange(what, index, count)
	}
	return nil
}

// NonManifoldEdgeError reports a directed edge produced twice.
type NonManifoldEdgeError struct {
	Origin         int
	Destination    int
	FirstTriangle  int
	SecondTriangle int
}

func (e *NonManifoldEdgeError) Error() string {
	return fmt.Sprintf("%s: directed edge %d->%d appears in triangles %d and %d",
		ErrNonManifoldEdge, e.Origin, e.Destination, e.FirstTriangle, e.SecondTriangle)
}

func (e *NonManifoldEdgeError) Unwrap() error { return ErrNonManifoldEdge }

// MalformedFileError reports a codec parse failure. Line is 1-based and zero
// when the position is unknown (binary payloads).
type MalformedFileError struct {
	Path string
	Line int
	Msg  string
	Err  error
}

func (e *MalformedFileError) Error() string {
	where := e.Path
	if where == "" {
		where = "<stream>"
	}
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d", where, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", ErrMalformedFile, where, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", ErrMalformedFile, where, e.Msg)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *MalformedFileError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedFile, e.Err}
	}
	return []error{ErrMalformedFile}
}
