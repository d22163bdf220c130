package geomerr

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestCheckIndex(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		count   int
		wantErr bool
	}{
		{"first", 0, 3, false},
		{"last", 2, 3, false},
		{"past end", 3, 3, true},
		{"negative", -1, 3, true},
		{"empty collection", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckIndex("vertex", tt.index, tt.count)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckIndex(%d, %d) error = %v, wantErr %v", tt.index, tt.count, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrOutOfRange) {
				t.Errorf("error %v does not wrap ErrOutOfRange", err)
			}
		})
	}
}

func TestIndexErrorKindsAreDistinct(t *testing.T) {
	oor := OutOfRange("face", 7, 2)
	ref := InvalidReference("vertex", 9, 4)

	if errors.Is(oor, ErrInvalidReference) {
		t.Error("OutOfRange error should not match ErrInvalidReference")
	}
	if errors.Is(ref, ErrOutOfRange) {
		t.Error("InvalidReference error should not match ErrOutOfRange")
	}
	if !strings.Contains(oor.Error(), "face index 7") {
		t.Errorf("message %q should name the face index", oor.Error())
	}

	var ie *IndexError
	if !errors.As(fmt.Errorf("wrapped: %w", ref), &ie) {
		t.Fatal("errors.As failed through a wrap")
	}
	if ie.Index != 9 || ie.Count != 4 {
		t.Errorf("IndexError = %+v, want index 9 count 4", ie)
	}
}

func TestNonManifoldEdgeError(t *testing.T) {
	err := error(&NonManifoldEdgeError{Origin: 1, Destination: 2, FirstTriangle: 0, SecondTriangle: 5})
	if !errors.Is(err, ErrNonManifoldEdge) {
		t.Fatal("NonManifoldEdgeError should match ErrNonManifoldEdge")
	}
	if !strings.Contains(err.Error(), "1->2") {
		t.Errorf("message %q should contain the directed edge", err.Error())
	}
}

func TestMalformedFileError(t *testing.T) {
	err := error(&MalformedFileError{Path: "cube.obj", Line: 4, Msg: "bad vertex", Err: io.ErrUnexpectedEOF})
	if !errors.Is(err, ErrMalformedFile) {
		t.Error("should match ErrMalformedFile")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("should match the underlying cause")
	}
	if !strings.Contains(err.Error(), "cube.obj:4") {
		t.Errorf("message %q should contain path:line", err.Error())
	}

	bare := &MalformedFileError{Msg: "truncated"}
	if !strings.Contains(bare.Error(), "<stream>") {
		t.Errorf("message %q should fall back to <stream>", bare.Error())
	}
}
