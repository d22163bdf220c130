package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chazu/skeletal/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// offTokens yields whitespace-separated tokens with "#" comments removed,
// tracking the line each token came from.
type offTokens struct {
	sc     *bufio.Scanner
	line   int
	fields []string
}

func (t *offTokens) next() (string, error) {
	for len(t.fields) == 0 {
		if !t.sc.Scan() {
			if err := t.sc.Err(); err != nil {
				return "", malformed("", t.line, "read error", err)
			}
			return "", malformed("", t.line, "unexpected end of file", io.ErrUnexpectedEOF)
		}
		t.line++
		text := t.sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		t.fields = strings.Fields(text)
	}
	tok := t.fields[0]
	t.fields = t.fields[1:]
	return tok, nil
}

func (t *offTokens) nextInt() (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, malformed("", t.line, fmt.Sprintf("expected integer, got %q", tok), err)
	}
	return n, nil
}

func (t *offTokens) nextFloat() (float64, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, malformed("", t.line, fmt.Sprintf("expected number, got %q", tok), err)
	}
	return f, nil
}

// skipLine drops whatever remains of the current line (OFF face colours).
func (t *offTokens) skipLine() {
	t.fields = nil
}

// ReadOFF parses an Object File Format mesh. Faces with more than three
// corners are fan-triangulated; trailing per-face colour values are
// ignored.
func ReadOFF(r io.Reader) (*mesh.Mesh3D, error) {
	tok := &offTokens{sc: bufio.NewScanner(r)}

	magic, err := tok.next()
	if err != nil {
		return nil, err
	}
	if magic != "OFF" {
		return nil, malformed("", tok.line, fmt.Sprintf("expected OFF header, got %q", magic), nil)
	}

	var counts [3]int
	for k := range counts {
		if counts[k], err = tok.nextInt(); err != nil {
			return nil, err
		}
		if counts[k] < 0 {
			return nil, malformed("", tok.line, "negative element count", nil)
		}
	}
	nv, nf := counts[0], counts[1]

	m := mesh.New()
	for i := 0; i < nv; i++ {
		var xyz [3]float64
		for k := range xyz {
			if xyz[k], err = tok.nextFloat(); err != nil {
				return nil, err
			}
		}
		m.InsertVertex(v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		tok.skipLine()
	}

	for i := 0; i < nf; i++ {
		k, err := tok.nextInt()
		if err != nil {
			return nil, err
		}
		if k < 3 {
			return nil, malformed("", tok.line, fmt.Sprintf("face has %d corners, need at least 3", k), nil)
		}
		poly := make([]int, 0, min(k, maxPrealloc))
		for j := 0; j < k; j++ {
			v, err := tok.nextInt()
			if err != nil {
				return nil, err
			}
			poly = append(poly, v)
		}
		for _, tri := range fan(poly) {
			if _, err := m.InsertFace(mesh.Face(tri)); err != nil {
				return nil, malformed("", tok.line, "face references a missing vertex", err)
			}
		}
		tok.skipLine()
	}
	return m, nil
}

// LoadMeshOFF reads an OFF file.
func LoadMeshOFF(path string) (*mesh.Mesh3D, error) {
	return loadFile(path, ReadOFF)
}
