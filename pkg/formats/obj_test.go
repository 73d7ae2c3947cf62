package formats

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/encoding/unicode"

	"github.com/Faultbox/meshgeo/pkg/math"
	"github.com/Faultbox/meshgeo/pkg/mesh"
)

const triangleOBJ = `# one triangle
o Tri
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
vn 0 0 2
vn 0 0 3
s off
f 1//1 2//2 3//3
`

const twoObjectOBJ = `o A
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
s off
f 1//1 2//1 3//1
o B
v 0 0 1
v 1 0 1
v 0 1 1
v 1 1 1
vn 0 0 1
vn 0 0 -1
s on
f 4//2 5//2 6//2
f 5//3 7//3 6//3
`

func parseString(t *testing.T, data string) *OBJ {
	t.Helper()
	obj, err := ParseOBJ(strings.NewReader(data))
	require.NoError(t, err)
	return obj
}

func writeTemp(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestParseOBJ_SingleTriangle(t *testing.T) {
	obj := parseString(t, triangleOBJ)

	require.Len(t, obj.Objects, 1)
	o := obj.Objects[0]
	assert.Equal(t, "Tri", o.Name)
	assert.False(t, o.Smooth)

	m := o.Mesh
	require.NoError(t, m.Validate())
	assert.Len(t, m.Vertices, 3)
	assert.Len(t, m.Normals, 3)
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices)

	assert.Equal(t, [3]float32{0, 0, 0}, m.Vertices[0].Position)
	assert.Equal(t, [3]float32{1, 0, 0}, m.Vertices[1].Position)
	assert.Equal(t, [3]float32{0, 1, 0}, m.Vertices[2].Position)

	// File normals are normalized, not recalculated.
	for _, n := range m.Normals {
		assert.Equal(t, [3]float32{0, 0, 1}, n.Normal)
	}
}

func TestParseOBJ_NormalOrder(t *testing.T) {
	// Each corner keeps its own normal in face order.
	data := `v 0 0 0
v 1 0 0
v 0 1 0
vn 1 0 0
vn 0 1 0
vn 0 0 1
f 1/7/1 2/8/2 3/9/3
`
	obj := parseString(t, data)
	require.Len(t, obj.Objects, 1)

	m := obj.Objects[0].Mesh
	assert.Equal(t, []mesh.Normal{
		{Normal: [3]float32{1, 0, 0}},
		{Normal: [3]float32{0, 1, 0}},
		{Normal: [3]float32{0, 0, 1}},
	}, m.Normals)
}

func TestParseOBJ_TwoObjects(t *testing.T) {
	obj := parseString(t, twoObjectOBJ)
	require.Len(t, obj.Objects, 2)

	a := obj.Objects[0]
	assert.Equal(t, "A", a.Name)
	assert.False(t, a.Smooth)
	require.NoError(t, a.Mesh.Validate())
	assert.Equal(t, []uint32{0, 1, 2}, a.Mesh.Indices)
	assert.Len(t, a.Mesh.Vertices, 3)

	b := obj.Objects[1]
	assert.Equal(t, "B", b.Name)
	assert.True(t, b.Smooth)
	require.NoError(t, b.Mesh.Validate())

	// Local indexing: B's first face uses its own first three vertices.
	assert.Len(t, b.Mesh.Vertices, 6)
	assert.Equal(t, []uint32{0, 1, 2, 1, 4, 2}, b.Mesh.Indices)
	assert.Equal(t, [3]float32{0, 0, 1}, b.Mesh.Vertices[0].Position)
	assert.Equal(t, [3]float32{1, 1, 1}, b.Mesh.Vertices[4].Position)

	// Smooth objects recalculate normals; the file's -Z normals are gone.
	for _, i := range []int{0, 1, 2, 4} {
		assert.Equal(t, [3]float32{0, 0, 1}, b.Mesh.Normals[i].Normal)
	}
	assert.Equal(t, [3]float32{}, b.Mesh.Normals[3].Normal)

	assert.Equal(t, 9, obj.GetTotalVertexCount())
	assert.Equal(t, 3, obj.GetTotalTriangleCount())
	assert.Same(t, b.Mesh, obj.GetObjectByName("B").Mesh)
	assert.Nil(t, obj.GetObjectByName("C"))
	assert.Len(t, obj.Meshes(), 2)
}

func TestParseOBJ_NoObjectLine(t *testing.T) {
	data := strings.Replace(triangleOBJ, "o Tri\n", "", 1)
	obj := parseString(t, data)
	require.Len(t, obj.Objects, 1)
	assert.Equal(t, "", obj.Objects[0].Name)
	assert.Len(t, obj.Objects[0].Mesh.Vertices, 3)
}

func TestParseOBJ_ObjectWithoutFaces(t *testing.T) {
	data := `o Empty
v 9 9 9
vn 0 1 0
o Tri
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 2//2 3//2 4//2
`
	obj := parseString(t, data)
	require.Len(t, obj.Objects, 2)

	empty := obj.Objects[0]
	assert.Equal(t, "Empty", empty.Name)
	require.NotNil(t, empty.Mesh)
	assert.Empty(t, empty.Mesh.Vertices)
	assert.Empty(t, empty.Mesh.Indices)
	assert.NoError(t, empty.Mesh.Validate())

	// Offsets still advance past the faceless object's buffers.
	assert.Equal(t, "Tri", obj.Objects[1].Name)
	assert.Equal(t, [3]float32{0, 0, 0}, obj.Objects[1].Mesh.Vertices[0].Position)
}

func TestParseOBJ_OnePerObjectLine(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		names []string
		tris  []int
	}{
		{
			name:  "consecutive",
			data:  "o A\no B\n" + strings.TrimPrefix(triangleOBJ, "# one triangle\no Tri\n"),
			names: []string{"A", "B"},
			tris:  []int{0, 1},
		},
		{
			name:  "trailing",
			data:  triangleOBJ + "o Last\n",
			names: []string{"Tri", "Last"},
			tris:  []int{1, 0},
		},
		{
			name:  "only objects",
			data:  "o A\no B\no C\n",
			names: []string{"A", "B", "C"},
			tris:  []int{0, 0, 0},
		},
		{
			name:  "data before first object",
			data:  "v 5 5 5\no A\n",
			names: []string{"", "A"},
			tris:  []int{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := parseString(t, tt.data)
			require.Len(t, obj.Objects, len(tt.names))
			for i, o := range obj.Objects {
				assert.Equal(t, tt.names[i], o.Name)
				assert.Equal(t, tt.tris[i], o.Mesh.TriangleCount())
			}
			assert.Len(t, obj.Meshes(), len(tt.names))
		})
	}
}

func TestWriteOBJ_ObjectWithoutFaces(t *testing.T) {
	src := parseString(t, "o A\no B\n"+strings.TrimPrefix(triangleOBJ, "# one triangle\no Tri\n"))

	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, src.Objects, OBJWriteOptions{}))

	got := parseString(t, buf.String())
	require.Len(t, got.Objects, 2)
	assert.Equal(t, "A", got.Objects[0].Name)
	assert.Equal(t, 0, got.Objects[0].Mesh.TriangleCount())
	assert.Equal(t, 1, got.Objects[1].Mesh.TriangleCount())
}

func TestParseOBJ_Empty(t *testing.T) {
	obj := parseString(t, "# nothing here\n\n")
	assert.Empty(t, obj.Objects)
}

func TestParseOBJ_SmoothFlag(t *testing.T) {
	tests := []struct {
		name  string
		lines string
		want  bool
	}{
		{"default off", "", false},
		{"on", "s on\n", true},
		{"off", "s off\n", false},
		{"group number", "s 1\n", true},
		{"zero", "s 0\n", false},
		{"last wins", "s on\ns off\n", false},
		{"last wins on", "s off\ns on\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\n" + tt.lines + "f 1//1 2//1 3//1\n"
			obj := parseString(t, data)
			require.Len(t, obj.Objects, 1)
			assert.Equal(t, tt.want, obj.Objects[0].Smooth)
		})
	}
}

func TestParseOBJ_SmoothResetsPerObject(t *testing.T) {
	data := strings.Replace(twoObjectOBJ, "s off\n", "s on\n", 1)
	data = strings.Replace(data, "s on\nf 4//2", "f 4//2", 1)

	obj := parseString(t, data)
	require.Len(t, obj.Objects, 2)
	assert.True(t, obj.Objects[0].Smooth)
	assert.False(t, obj.Objects[1].Smooth)
	assert.Len(t, obj.Objects[1].Mesh.Vertices, 6)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, obj.Objects[1].Mesh.Indices)
}

func TestParseOBJ_IgnoresUnknown(t *testing.T) {
	data := "mtllib scene.mtl\nusemtl stone\nvt 0.5 0.5\ng group\n" + triangleOBJ
	obj := parseString(t, data)
	require.Len(t, obj.Objects, 1)
	assert.Len(t, obj.Objects[0].Mesh.Vertices, 3)
}

func TestParseOBJ_Errors(t *testing.T) {
	header := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\n"

	tests := []struct {
		name    string
		data    string
		wantErr error
		wantMsg string
	}{
		{"bad vertex", "v 1 x 2\n", ErrMalformedNumber, "line 1"},
		{"bad normal", header + "vn 0 0 zz\n", ErrMalformedNumber, "line 5"},
		{"short vertex", "v 1 2\n", ErrShortDirective, "line 1"},
		{"short smooth", "s\n", ErrShortDirective, "line 1"},
		{"two corners", header + "f 1//1 2//1\n", ErrFaceArity, "line 5"},
		{"quad", header + "v 1 1 0\nf 1//1 2//1 4//1 3//1\n", ErrFaceArity, "line 6"},
		{"no normal", header + "f 1 2 3\n", ErrFaceArity, "line 5"},
		{"bad index", header + "f a//1 2//1 3//1\n", ErrMalformedNumber, "line 5"},
		{"zero index", header + "f 0//1 2//1 3//1\n", ErrIndexOutOfRange, "line 5"},
		{"negative index", header + "f -1//1 2//1 3//1\n", ErrIndexOutOfRange, "line 5"},
		{"vertex past end", header + "f 1//1 2//1 9//1\n", ErrIndexOutOfRange, "object"},
		{"normal past end", header + "f 1//1 2//1 3//2\n", ErrIndexOutOfRange, "normal 2 of 1"},
		{
			name:    "index from previous object",
			data:    header + "f 1//1 2//1 3//1\no Next\nv 0 0 1\nvn 0 0 1\nf 1//2 4//2 4//2\n",
			wantErr: ErrIndexOutOfRange,
			wantMsg: "line 9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestFlush_IndexCountMismatch(t *testing.T) {
	tests := []struct {
		name    string
		posIdx  []uint32
		normIdx []uint32
	}{
		{"normal indices missing", []uint32{0, 1, 2}, []uint32{0}},
		{"partial triangle", []uint32{0, 1}, []uint32{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newOBJParser()
			p.positions = []math.Vec3{{}, {X: 1}, {Y: 1}}
			p.normals = []math.Vec3{{Z: 1}}
			p.posIdx = tt.posIdx
			p.normIdx = tt.normIdx

			err := p.flush()
			assert.ErrorIs(t, err, ErrIndexCountMismatch)
			assert.Empty(t, p.result.Objects)
		})
	}
}

func TestParseOBJFile(t *testing.T) {
	path := writeTemp(t, "tri.obj", triangleOBJ)
	obj, err := ParseOBJFile(path)
	require.NoError(t, err)
	require.Len(t, obj.Objects, 1)

	upper := writeTemp(t, "TRI.OBJ", triangleOBJ)
	_, err = ParseOBJFile(upper)
	assert.NoError(t, err)
}

func TestParseOBJFile_ErrorsNamePath(t *testing.T) {
	path := writeTemp(t, "bad.obj", "v 0 0 0\nv 1 nope 0\n")
	_, err := ParseOBJFile(path)
	assert.ErrorIs(t, err, ErrMalformedNumber)
	assert.Contains(t, err.Error(), path+":2")
}

func TestParseOBJFile_Extension(t *testing.T) {
	for _, name := range []string{"mesh.stl", "mesh.obj.bak", "mesh"} {
		t.Run(name, func(t *testing.T) {
			path := writeTemp(t, name, triangleOBJ)
			_, err := ParseOBJFile(path)
			assert.ErrorIs(t, err, ErrUnsupportedExtension)
		})
	}
}

func TestParseOBJFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.obj")
	_, err := ParseOBJFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), path)
}

func TestLoadOBJ(t *testing.T) {
	path := writeTemp(t, "scene.obj", twoObjectOBJ)
	meshes, err := LoadOBJ(path)
	require.NoError(t, err)
	require.Len(t, meshes, 2)

	for _, m := range meshes {
		assert.NoError(t, m.Validate())
	}

	combined, err := mesh.Combine(meshes)
	require.NoError(t, err)
	assert.Len(t, combined.Vertices, 9)
	assert.Equal(t, []uint32{3, 4, 5, 4, 7, 5}, combined.Indices[3:])
	assert.NoError(t, combined.Validate())
}

func TestParseOBJ_ByteOrderMark(t *testing.T) {
	t.Run("utf-8", func(t *testing.T) {
		obj := parseString(t, "\xEF\xBB\xBF"+triangleOBJ)
		require.Len(t, obj.Objects, 1)
		assert.Equal(t, "Tri", obj.Objects[0].Name)
	})

	t.Run("utf-16le", func(t *testing.T) {
		enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
		data, err := enc.String(triangleOBJ)
		require.NoError(t, err)

		obj := parseString(t, data)
		require.Len(t, obj.Objects, 1)
		assert.Len(t, obj.Objects[0].Mesh.Vertices, 3)
	})
}

func TestParseOBJ_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	data := "vt 0 0\nvt 1 1\n" + twoObjectOBJ

	_, err := ParseOBJ(strings.NewReader(data), WithLogger(zap.New(core)), WithSource("scene.obj"))
	require.NoError(t, err)

	ignored := logs.FilterMessage("obj directive ignored").All()
	require.Len(t, ignored, 1)
	assert.Equal(t, "vt", ignored[0].ContextMap()["directive"])

	parsed := logs.FilterMessage("obj object parsed").All()
	require.Len(t, parsed, 2)
	assert.Equal(t, "B", parsed[1].ContextMap()["object"])
	assert.Equal(t, true, parsed[1].ContextMap()["smooth"])

	assert.Equal(t, 1, logs.FilterMessage("obj parsed").Len())
}

func TestWriteOBJ_RoundTrip(t *testing.T) {
	src := parseString(t, twoObjectOBJ)

	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, src.Objects, OBJWriteOptions{Precision: -1}))

	got := parseString(t, buf.String())
	require.Len(t, got.Objects, 2)

	a, b := src.Objects[0], got.Objects[0]
	assert.Equal(t, a.Name, b.Name)
	assert.Equal(t, a.Smooth, b.Smooth)
	assert.Equal(t, a.Mesh.Vertices, b.Mesh.Vertices)
	assert.Equal(t, a.Mesh.Indices, b.Mesh.Indices)
	for i := range a.Mesh.Normals {
		for c := 0; c < 3; c++ {
			assert.InDelta(t, a.Mesh.Normals[i].Normal[c], b.Mesh.Normals[i].Normal[c], 1e-6)
		}
	}

	// Smooth objects come back smooth, over the referenced corners only.
	assert.True(t, got.Objects[1].Smooth)
	assert.NoError(t, got.Objects[1].Mesh.Validate())
	assert.Equal(t, src.Objects[1].Mesh.TriangleCount(), got.Objects[1].Mesh.TriangleCount())
}

func TestWriteOBJ_Format(t *testing.T) {
	m := mesh.New([]mesh.PositionVertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 1, 0}},
	}, []uint32{0, 1, 2})

	var buf bytes.Buffer
	err := WriteMeshesOBJ(&buf, []*mesh.Mesh[mesh.PositionVertex]{m, m.Clone()}, OBJWriteOptions{Precision: 1, ObjectPrefix: "part"})
	require.NoError(t, err)

	want := `o part0
v 0.0 0.0 0.0
v 1.0 0.0 0.0
v 0.0 1.0 0.0
vn 0.0 0.0 1.0
vn 0.0 0.0 1.0
vn 0.0 0.0 1.0
s off
f 1//1 2//2 3//3
o part1
v 0.0 0.0 0.0
v 1.0 0.0 0.0
v 0.0 1.0 0.0
vn 0.0 0.0 1.0
vn 0.0 0.0 1.0
vn 0.0 0.0 1.0
s off
f 4//4 5//5 6//6
`
	assert.Equal(t, want, buf.String())

	// Input meshes without normals are left without normals.
	assert.Empty(t, m.Normals)
}

func TestWriteOBJ_InvalidMesh(t *testing.T) {
	m := mesh.New([]mesh.PositionVertex{{}}, []uint32{0, 1, 2})
	err := WriteMeshesOBJ(&bytes.Buffer{}, []*mesh.Mesh[mesh.PositionVertex]{m}, OBJWriteOptions{})
	assert.ErrorIs(t, err, mesh.ErrIndexOutOfRange)
}
