package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/Faultbox/meshgeo/pkg/math"
	"github.com/Faultbox/meshgeo/pkg/mesh"
)

// OBJ format errors.
var (
	ErrUnsupportedExtension = errors.New("unsupported mesh file extension: expected '.obj'")
	ErrMalformedNumber      = errors.New("malformed number")
	ErrShortDirective       = errors.New("directive has too few fields")
	ErrFaceArity            = errors.New("face must have exactly 3 corners of form v/vt/vn")
	ErrIndexCountMismatch   = errors.New("vertex and normal index counts do not match")
	ErrIndexOutOfRange      = errors.New("face index out of range")
)

// OBJExtension is the file extension accepted by ParseOBJFile.
const OBJExtension = ".obj"

// OBJObject is one object ("o" block) of an OBJ file.
type OBJObject struct {
	Name   string                          // Name from the "o" line, empty if none
	Smooth bool                            // Last "s" state seen in the object
	Mesh   *mesh.Mesh[mesh.PositionVertex] // Flat, or smooth if Smooth is set; empty if no faces
}

// OBJ represents a parsed OBJ file.
type OBJ struct {
	Objects []OBJObject // Objects in file order
}

// Meshes returns the mesh of every object in file order.
func (o *OBJ) Meshes() []*mesh.Mesh[mesh.PositionVertex] {
	meshes := make([]*mesh.Mesh[mesh.PositionVertex], len(o.Objects))
	for i := range o.Objects {
		meshes[i] = o.Objects[i].Mesh
	}
	return meshes
}

// GetTotalVertexCount returns the total number of vertices across all objects.
func (o *OBJ) GetTotalVertexCount() int {
	total := 0
	for _, obj := range o.Objects {
		total += len(obj.Mesh.Vertices)
	}
	return total
}

// GetTotalTriangleCount returns the total number of triangles across all objects.
func (o *OBJ) GetTotalTriangleCount() int {
	total := 0
	for _, obj := range o.Objects {
		total += obj.Mesh.TriangleCount()
	}
	return total
}

// GetObjectByName returns an object by name, or nil if not found.
func (o *OBJ) GetObjectByName(name string) *OBJObject {
	for i := range o.Objects {
		if o.Objects[i].Name == name {
			return &o.Objects[i]
		}
	}
	return nil
}

// OBJOption configures ParseOBJ.
type OBJOption func(*objParser)

// WithLogger sets the logger used for debug output while parsing.
func WithLogger(log *zap.Logger) OBJOption {
	return func(p *objParser) {
		if log != nil {
			p.log = log
		}
	}
}

// WithSource names the input in error messages, usually the file path.
func WithSource(name string) OBJOption {
	return func(p *objParser) {
		p.source = name
	}
}

// objParser holds the per-object buffers while scanning. Face indices are
// stored local to the current object's buffers.
type objParser struct {
	log     *zap.Logger
	source  string
	line    int
	ignored map[string]bool

	result OBJ

	started   bool // an "o" line opened the current object
	name      string
	smooth    bool
	positions []math.Vec3
	normals   []math.Vec3
	posIdx    []uint32
	normIdx   []uint32

	posOffset  int
	normOffset int
}

func newOBJParser(opts ...OBJOption) *objParser {
	p := &objParser{
		log:     zap.NewNop(),
		ignored: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseOBJ parses OBJ data from a reader. One object is produced per "o"
// line, in file order, even when it has no faces. Data before the first
// "o" forms an unnamed object only if there is any. A UTF-8
// or UTF-16 byte order mark is honoured.
func ParseOBJ(r io.Reader, opts ...OBJOption) (*OBJ, error) {
	p := newOBJParser(opts...)

	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ %s: %w", p.where(), err)
	}

	if err := p.flush(); err != nil {
		return nil, err
	}

	p.log.Debug("obj parsed",
		zap.String("source", p.source),
		zap.Int("objects", len(p.result.Objects)),
		zap.Int("lines", p.line))

	return &p.result, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string, opts ...OBJOption) (*OBJ, error) {
	if !strings.EqualFold(filepath.Ext(path), OBJExtension) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file %s: %w", path, err)
	}
	defer f.Close()

	return ParseOBJ(f, append([]OBJOption{WithSource(path)}, opts...)...)
}

// LoadOBJ parses an OBJ file and returns one mesh per object.
func LoadOBJ(path string, opts ...OBJOption) ([]*mesh.Mesh[mesh.PositionVertex], error) {
	obj, err := ParseOBJFile(path, opts...)
	if err != nil {
		return nil, err
	}
	return obj.Meshes(), nil
}

func (p *objParser) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch fields[0] {
	case "o":
		if err := p.flush(); err != nil {
			return err
		}
		p.started = true
		p.name = strings.Join(fields[1:], " ")
		return nil
	case "v":
		v, err := p.parseVec3(fields)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, v)
		return nil
	case "vn":
		n, err := p.parseVec3(fields)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, n.Normalize())
		return nil
	case "f":
		return p.parseFace(fields[1:])
	case "s":
		if len(fields) < 2 {
			return p.errorf(ErrShortDirective, "%q", line)
		}
		p.smooth = fields[1] != "off" && fields[1] != "0"
		return nil
	default:
		if !p.ignored[fields[0]] {
			p.ignored[fields[0]] = true
			p.log.Debug("obj directive ignored",
				zap.String("directive", fields[0]),
				zap.String("source", p.source),
				zap.Int("line", p.line))
		}
		return nil
	}
}

// parseVec3 parses "<tag> x y z", ignoring any extra components.
func (p *objParser) parseVec3(fields []string) (math.Vec3, error) {
	if len(fields) < 4 {
		return math.Vec3{}, p.errorf(ErrShortDirective, "%q needs 3 components", strings.Join(fields, " "))
	}
	var c [3]float32
	for i := range c {
		val, err := strconv.ParseFloat(fields[i+1], 32)
		if err != nil {
			return math.Vec3{}, p.errorf(ErrMalformedNumber, "%q", fields[i+1])
		}
		c[i] = float32(val)
	}
	return math.FromArray(c), nil
}

// parseFace parses "f v/vt/vn v/vt/vn v/vt/vn". The texture part may be
// empty and is ignored.
func (p *objParser) parseFace(corners []string) error {
	if len(corners) != 3 {
		return p.errorf(ErrFaceArity, "got %d corners", len(corners))
	}

	var pos, norm [3]uint32
	for i, corner := range corners {
		parts := strings.Split(corner, "/")
		if len(parts) != 3 {
			return p.errorf(ErrFaceArity, "corner %q", corner)
		}

		vi, err := p.parseIndex(parts[0], p.posOffset)
		if err != nil {
			return err
		}
		ni, err := p.parseIndex(parts[2], p.normOffset)
		if err != nil {
			return err
		}
		pos[i], norm[i] = vi, ni
	}

	p.posIdx = append(p.posIdx, pos[:]...)
	p.normIdx = append(p.normIdx, norm[:]...)
	return nil
}

// parseIndex converts a 1-based file index to an index local to the
// current object.
func (p *objParser) parseIndex(tok string, offset int) (uint32, error) {
	val, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, p.errorf(ErrMalformedNumber, "index %q", tok)
	}
	local := val - 1 - int64(offset)
	if val < 1 || local < 0 || local > int64(^uint32(0)) {
		return 0, p.errorf(ErrIndexOutOfRange, "index %d", val)
	}
	return uint32(local), nil
}

// flush turns the buffered object into an OBJObject. Every face corner gets
// its own vertex and the file's normal for that corner; the mesh is then
// smooth shaded if the object asked for it. An object without faces gets
// an empty mesh. Buffers are reset and the offsets advanced in every case.
func (p *objParser) flush() error {
	defer p.reset()

	if len(p.posIdx) != len(p.normIdx) || len(p.posIdx)%3 != 0 {
		return p.errorf(ErrIndexCountMismatch, "object %q: %d vertex indices, %d normal indices",
			p.name, len(p.posIdx), len(p.normIdx))
	}

	if !p.started && len(p.positions) == 0 && len(p.normals) == 0 && len(p.posIdx) == 0 {
		return nil
	}

	if len(p.posIdx) == 0 {
		p.result.Objects = append(p.result.Objects, OBJObject{
			Name:   p.name,
			Smooth: p.smooth,
			Mesh:   mesh.New[mesh.PositionVertex](nil, nil),
		})
		p.log.Debug("obj object has no faces",
			zap.String("object", p.name),
			zap.Int("vertices", len(p.positions)))
		return nil
	}

	vertices := make([]mesh.PositionVertex, len(p.posIdx))
	normals := make([]mesh.Normal, len(p.normIdx))
	indices := make([]uint32, len(p.posIdx))
	for i := range p.posIdx {
		vi, ni := p.posIdx[i], p.normIdx[i]
		if int(vi) >= len(p.positions) {
			return p.errorf(ErrIndexOutOfRange, "object %q: vertex %d of %d",
				p.name, int(vi)+p.posOffset+1, len(p.positions)+p.posOffset)
		}
		if int(ni) >= len(p.normals) {
			return p.errorf(ErrIndexOutOfRange, "object %q: normal %d of %d",
				p.name, int(ni)+p.normOffset+1, len(p.normals)+p.normOffset)
		}
		vertices[i] = mesh.PositionVertexFrom(p.positions[vi])
		normals[i] = mesh.NormalFrom(p.normals[ni])
		indices[i] = uint32(i)
	}

	m := mesh.New(vertices, indices).SetNormals(normals)
	if p.smooth {
		m.SmoothShade()
	}

	p.result.Objects = append(p.result.Objects, OBJObject{
		Name:   p.name,
		Smooth: p.smooth,
		Mesh:   m,
	})

	p.log.Debug("obj object parsed",
		zap.String("object", p.name),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", m.TriangleCount()),
		zap.Bool("smooth", p.smooth))

	return nil
}

func (p *objParser) reset() {
	p.posOffset += len(p.positions)
	p.normOffset += len(p.normals)

	p.started = false
	p.name = ""
	p.smooth = false
	p.positions = nil
	p.normals = nil
	p.posIdx = nil
	p.normIdx = nil
}

func (p *objParser) where() string {
	if p.source == "" {
		return fmt.Sprintf("line %d", p.line)
	}
	return fmt.Sprintf("%s:%d", p.source, p.line)
}

func (p *objParser) errorf(err error, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", p.where(), err, fmt.Sprintf(format, args...))
}
