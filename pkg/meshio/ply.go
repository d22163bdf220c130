package meshio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Format selects the PLY body encoding.
type Format int

const (
	ASCII Format = iota
	BinaryLittleEndian
	BinaryBigEndian
)

var formatNames = map[Format]string{
	ASCII:              "ascii",
	BinaryLittleEndian: "binary_little_endian",
	BinaryBigEndian:    "binary_big_endian",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat maps a PLY format keyword ("ascii", "binary_little_endian",
// "binary_big_endian") or the short forms "binary", "le" and "be".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "ascii":
		return ASCII, nil
	case "binary", "le", "binary_little_endian":
		return BinaryLittleEndian, nil
	case "be", "binary_big_endian":
		return BinaryBigEndian, nil
	}
	return ASCII, fmt.Errorf("unknown PLY format %q", s)
}

func (f Format) order() binary.ByteOrder {
	if f == BinaryBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// PLYOptions controls PLY output.
type PLYOptions struct {
	Format Format
	// Comment is written as header comment lines, one per line of text.
	// Any UTF-8 text is allowed except carriage returns, which readers
	// strip as line endings.
	Comment string
}

// ErrCommentCR is returned when a PLY comment contains a carriage return.
var ErrCommentCR = errors.New("comment contains a carriage return")

type scalarType int

const (
	tInt8 scalarType = iota + 1
	tUint8
	tInt16
	tUint16
	tInt32
	tUint32
	tFloat32
	tFloat64
)

var scalarNames = map[string]scalarType{
	"char": tInt8, "int8": tInt8,
	"uchar": tUint8, "uint8": tUint8,
	"short": tInt16, "int16": tInt16,
	"ushort": tUint16, "uint16": tUint16,
	"int": tInt32, "int32": tInt32,
	"uint": tUint32, "uint32": tUint32,
	"float": tFloat32, "float32": tFloat32,
	"double": tFloat64, "float64": tFloat64,
}

func (t scalarType) size() int {
	switch t {
	case tInt8, tUint8:
		return 1
	case tInt16, tUint16:
		return 2
	case tInt32, tUint32, tFloat32:
		return 4
	}
	return 8
}

type plyProperty struct {
	name      string
	typ       scalarType
	list      bool
	countType scalarType
}

type plyElement struct {
	name  string
	count int
	props []plyProperty
}

func (e *plyElement) propIndex(names ...string) int {
	for i, p := range e.props {
		for _, n := range names {
			if p.name == n {
				return i
			}
		}
	}
	return -1
}

type plyHeader struct {
	format   Format
	comments []string
	elements []*plyElement
}

func (h *plyHeader) element(name string) *plyElement {
	for _, e := range h.elements {
		if e.name == name {
			return e
		}
	}
	return nil
}

// comment joins the header comment lines. Lines that are not valid UTF-8
// are taken to be Latin-1, which older exporters emit.
func (h *plyHeader) comment() string {
	lines := make([]string, len(h.comments))
	for i, c := range h.comments {
		if !utf8.ValidString(c) {
			if dec, err := charmap.ISO8859_1.NewDecoder().String(c); err == nil {
				c = dec
			}
		}
		lines[i] = c
	}
	return strings.Join(lines, "\n")
}

// readPLYHeader consumes the header through "end_header", leaving br
// positioned at the first body byte. It returns the number of header lines.
func readPLYHeader(br *bufio.Reader) (*plyHeader, int, error) {
	h := &plyHeader{}
	line := 0
	sawFormat := false
	var cur *plyElement

	for {
		text, err := br.ReadString('\n')
		if err != nil && text == "" {
			return nil, line, malformed("", line, "header not terminated by end_header", io.ErrUnexpectedEOF)
		}
		line++
		text = strings.TrimRight(text, "\r\n")

		if line == 1 {
			if text != "ply" {
				return nil, line, malformed("", line, "missing ply magic", nil)
			}
			continue
		}

		if text == "comment" || strings.HasPrefix(text, "comment ") {
			c := strings.TrimPrefix(text, "comment")
			h.comments = append(h.comments, strings.TrimPrefix(c, " "))
			continue
		}

		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) != 3 {
				return nil, line, malformed("", line, "bad format line", nil)
			}
			switch fields[1] {
			case "ascii":
				h.format = ASCII
			case "binary_little_endian":
				h.format = BinaryLittleEndian
			case "binary_big_endian":
				h.format = BinaryBigEndian
			default:
				return nil, line, malformed("", line, fmt.Sprintf("unknown format %q", fields[1]), nil)
			}
			sawFormat = true

		case "element":
			if len(fields) != 3 {
				return nil, line, malformed("", line, "bad element line", nil)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 {
				return nil, line, malformed("", line, fmt.Sprintf("bad element count %q", fields[2]), err)
			}
			cur = &plyElement{name: fields[1], count: n}
			h.elements = append(h.elements, cur)

		case "property":
			if cur == nil {
				return nil, line, malformed("", line, "property before any element", nil)
			}
			p, err := parseProperty(fields)
			if err != nil {
				return nil, line, malformed("", line, "bad property", err)
			}
			cur.props = append(cur.props, p)

		case "obj_info":
		case "end_header":
			if !sawFormat {
				return nil, line, malformed("", line, "missing format line", nil)
			}
			return h, line, nil

		default:
			return nil, line, malformed("", line, fmt.Sprintf("unknown header keyword %q", fields[0]), nil)
		}
	}
}

func parseProperty(fields []string) (plyProperty, error) {
	if len(fields) >= 5 && fields[1] == "list" {
		ct, ok1 := scalarNames[fields[2]]
		it, ok2 := scalarNames[fields[3]]
		if !ok1 || !ok2 || len(fields) != 5 {
			return plyProperty{}, fmt.Errorf("list property %q", strings.Join(fields[1:], " "))
		}
		return plyProperty{name: fields[4], typ: it, list: true, countType: ct}, nil
	}
	if len(fields) != 3 {
		return plyProperty{}, fmt.Errorf("property %q", strings.Join(fields[1:], " "))
	}
	t, ok := scalarNames[fields[1]]
	if !ok {
		return plyProperty{}, fmt.Errorf("unknown type %q", fields[1])
	}
	return plyProperty{name: fields[2], typ: t}, nil
}

// plyValue is one property value of an element instance.
type plyValue struct {
	scalar float64
	list   []float64
}

// plyBody decodes scalars from the body.
type plyBody interface {
	scalar(t scalarType) (float64, error)
	position() int
}

type asciiBody struct {
	br     *bufio.Reader
	line   int
	fields []string
}

func (a *asciiBody) scalar(scalarType) (float64, error) {
	for len(a.fields) == 0 {
		text, err := a.br.ReadString('\n')
		if text == "" && err != nil {
			return 0, malformed("", a.line, "unexpected end of body", io.ErrUnexpectedEOF)
		}
		a.line++
		a.fields = strings.Fields(text)
	}
	tok := a.fields[0]
	a.fields = a.fields[1:]
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, malformed("", a.line, fmt.Sprintf("bad number %q", tok), err)
	}
	return f, nil
}

func (a *asciiBody) position() int { return a.line }

type binaryBody struct {
	br    *bufio.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryBody) scalar(t scalarType) (float64, error) {
	p := b.buf[:t.size()]
	if _, err := io.ReadFull(b.br, p); err != nil {
		return 0, malformed("", 0, "truncated binary body", err)
	}
	switch t {
	case tInt8:
		return float64(int8(p[0])), nil
	case tUint8:
		return float64(p[0]), nil
	case tInt16:
		return float64(int16(b.order.Uint16(p))), nil
	case tUint16:
		return float64(b.order.Uint16(p)), nil
	case tInt32:
		return float64(int32(b.order.Uint32(p))), nil
	case tUint32:
		return float64(b.order.Uint32(p)), nil
	case tFloat32:
		return float64(math.Float32frombits(b.order.Uint32(p))), nil
	}
	return math.Float64frombits(b.order.Uint64(p)), nil
}

func (b *binaryBody) position() int { return 0 }

// maxPrealloc caps slice capacity taken from counts declared in a file.
const maxPrealloc = 1 << 16

// readPLY parses a whole PLY stream into its header and, per element, the
// decoded values of every instance.
func readPLY(r io.Reader) (*plyHeader, map[string][][]plyValue, error) {
	br := bufio.NewReader(r)
	h, headerLines, err := readPLYHeader(br)
	if err != nil {
		return nil, nil, err
	}

	var body plyBody
	if h.format == ASCII {
		body = &asciiBody{br: br, line: headerLines}
	} else {
		body = &binaryBody{br: br, order: h.format.order()}
	}

	data := make(map[string][][]plyValue, len(h.elements))
	for _, e := range h.elements {
		// Counts come from the file, so they only bound the read loop; a
		// short body fails as truncated instead of allocating up front.
		rows := make([][]plyValue, 0, min(e.count, maxPrealloc))
		for i := 0; i < e.count; i++ {
			row := make([]plyValue, len(e.props))
			for j, p := range e.props {
				if !p.list {
					if row[j].scalar, err = body.scalar(p.typ); err != nil {
						return nil, nil, err
					}
					continue
				}
				n, err := body.scalar(p.countType)
				if err != nil {
					return nil, nil, err
				}
				if n < 0 || n != math.Trunc(n) {
					return nil, nil, malformed("", body.position(), fmt.Sprintf("bad list length %v", n), nil)
				}
				list := make([]float64, 0, min(int(n), maxPrealloc))
				for k := 0; k < int(n); k++ {
					v, err := body.scalar(p.typ)
					if err != nil {
						return nil, nil, err
					}
					list = append(list, v)
				}
				row[j].list = list
			}
			rows = append(rows, row)
		}
		data[e.name] = rows
	}
	return h, data, nil
}

// plyIndex converts a decoded value to a vertex index.
func plyIndex(f float64) (int, error) {
	if f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return 0, fmt.Errorf("bad index %v", f)
	}
	return int(f), nil
}

// plyWriter emits a PLY header and body values in the requested format.
type plyWriter struct {
	bw     *bufio.Writer
	format Format
	order  binary.ByteOrder
	buf    [8]byte
	first  bool
}

func newPLYWriter(w io.Writer, opts PLYOptions) (*plyWriter, error) {
	if _, ok := formatNames[opts.Format]; !ok {
		return nil, fmt.Errorf("ply: unknown format %v", opts.Format)
	}
	if strings.ContainsRune(opts.Comment, '\r') {
		return nil, fmt.Errorf("ply: %w", ErrCommentCR)
	}
	pw := &plyWriter{bw: bufio.NewWriter(w), format: opts.Format, order: opts.Format.order(), first: true}
	fmt.Fprintf(pw.bw, "ply\nformat %s 1.0\n", opts.Format)
	if opts.Comment != "" {
		for _, l := range strings.Split(opts.Comment, "\n") {
			fmt.Fprintf(pw.bw, "comment %s\n", l)
		}
	}
	return pw, nil
}

func (pw *plyWriter) header(format string, args ...any) {
	fmt.Fprintf(pw.bw, format+"\n", args...)
}

func (pw *plyWriter) putDouble(f float64) {
	if pw.format == ASCII {
		pw.sep()
		pw.bw.WriteString(formatFloat(f))
		return
	}
	pw.order.PutUint64(pw.buf[:8], math.Float64bits(f))
	pw.bw.Write(pw.buf[:8])
}

func (pw *plyWriter) putInt(v int) {
	if pw.format == ASCII {
		pw.sep()
		pw.bw.WriteString(strconv.Itoa(v))
		return
	}
	pw.order.PutUint32(pw.buf[:4], uint32(int32(v)))
	pw.bw.Write(pw.buf[:4])
}

func (pw *plyWriter) putUchar(v int) {
	if pw.format == ASCII {
		pw.sep()
		pw.bw.WriteString(strconv.Itoa(v))
		return
	}
	pw.bw.WriteByte(byte(v))
}

func (pw *plyWriter) sep() {
	if !pw.first {
		pw.bw.WriteByte(' ')
	}
	pw.first = false
}

// endRow terminates an element instance.
func (pw *plyWriter) endRow() {
	if pw.format == ASCII {
		pw.bw.WriteByte('\n')
	}
	pw.first = true
}

func (pw *plyWriter) flush() error {
	return pw.bw.Flush()
}
