package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Faultbox/meshgeo/pkg/mesh"
)

// DefaultOBJPrecision is the number of decimals written when
// OBJWriteOptions.Precision is zero.
const DefaultOBJPrecision = 6

// OBJWriteOptions controls WriteOBJ output.
type OBJWriteOptions struct {
	// Precision is the number of decimals per coordinate. Zero uses
	// DefaultOBJPrecision; negative writes the shortest exact form.
	Precision int
	// ObjectPrefix names objects without a name, followed by their position.
	ObjectPrefix string
}

// WriteOBJ writes objects as OBJ text that ParseOBJ reads back object for
// object. Each face corner references a vertex and the normal with the
// same index. Meshes whose normal count does not match their vertex count
// are written with recalculated normals.
func WriteOBJ(w io.Writer, objects []OBJObject, opts OBJWriteOptions) error {
	prec := opts.Precision
	if prec == 0 {
		prec = DefaultOBJPrecision
	}
	prefix := opts.ObjectPrefix
	if prefix == "" {
		prefix = "object"
	}

	bw := bufio.NewWriter(w)
	f := func(v float32) string {
		return strconv.FormatFloat(float64(v), 'f', prec, 32)
	}

	offset := 1
	for i, obj := range objects {
		m := obj.Mesh
		if m == nil {
			continue
		}
		if err := m.Validate(); err != nil && !errors.Is(err, mesh.ErrNormalCount) {
			return fmt.Errorf("writing object %d: %w", i, err)
		}
		if len(m.Normals) != len(m.Vertices) {
			m = m.Clone().RecalculateNormals()
		}

		name := obj.Name
		if name == "" {
			name = prefix + strconv.Itoa(i)
		}
		fmt.Fprintf(bw, "o %s\n", name)

		for _, v := range m.Vertices {
			fmt.Fprintf(bw, "v %s %s %s\n", f(v.Position[0]), f(v.Position[1]), f(v.Position[2]))
		}
		for _, n := range m.Normals {
			fmt.Fprintf(bw, "vn %s %s %s\n", f(n.Normal[0]), f(n.Normal[1]), f(n.Normal[2]))
		}

		if obj.Smooth {
			fmt.Fprintln(bw, "s on")
		} else {
			fmt.Fprintln(bw, "s off")
		}

		for t := 0; t < m.TriangleCount(); t++ {
			a := int(m.Indices[t*3]) + offset
			b := int(m.Indices[t*3+1]) + offset
			c := int(m.Indices[t*3+2]) + offset
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
		}

		offset += len(m.Vertices)
	}

	return bw.Flush()
}

// WriteMeshesOBJ writes plain meshes as flat shaded objects named by
// opts.ObjectPrefix.
func WriteMeshesOBJ(w io.Writer, meshes []*mesh.Mesh[mesh.PositionVertex], opts OBJWriteOptions) error {
	objects := make([]OBJObject, len(meshes))
	for i, m := range meshes {
		objects[i] = OBJObject{Mesh: m}
	}
	return WriteOBJ(w, objects, opts)
}
