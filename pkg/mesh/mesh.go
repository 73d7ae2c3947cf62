// Package mesh provides indexed triangle meshes with normal generation,
// flat/smooth shading conversion and mesh combination.
//
// Triangles are listed counter-clockwise. Face normals follow the
// right-hand rule: for corners p0, p1, p2 the normal is
// (p0-p2) x (p1-p2), so the triangle (0,0,0), (1,0,0), (0,1,0) faces +Z.
//
// A Mesh is not safe for concurrent mutation.
package mesh

import (
	"errors"
	"fmt"
)

// Mesh errors.
var (
	ErrIndexCount      = errors.New("index count is not a multiple of 3")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNormalCount     = errors.New("normal count does not match vertex count")
	ErrEmptyInput      = errors.New("no meshes to combine")
)

// Mesh is an indexed triangle mesh. Normals, when present, are parallel
// to Vertices.
type Mesh[V Positioner] struct {
	Vertices []V
	Normals  []Normal
	Indices  []uint32
}

// New creates a mesh from vertices and indices with no normals.
func New[V Positioner](vertices []V, indices []uint32) *Mesh[V] {
	return &Mesh[V]{
		Vertices: vertices,
		Indices:  indices,
	}
}

// SetNormals replaces the normals and returns the mesh.
func (m *Mesh[V]) SetNormals(normals []Normal) *Mesh[V] {
	m.Normals = normals
	return m
}

// TriangleCount returns the number of complete triangles.
func (m *Mesh[V]) TriangleCount() int {
	return len(m.Indices) / 3
}

// Clone returns a deep copy. A nil mesh clones to an empty one.
func (m *Mesh[V]) Clone() *Mesh[V] {
	if m == nil {
		return &Mesh[V]{}
	}
	return &Mesh[V]{
		Vertices: append([]V(nil), m.Vertices...),
		Normals:  append([]Normal(nil), m.Normals...),
		Indices:  append([]uint32(nil), m.Indices...),
	}
}

// Validate checks the index and normal invariants.
func (m *Mesh[V]) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices", ErrIndexCount, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("%w: indices[%d] = %d with %d vertices", ErrIndexOutOfRange, i, idx, len(m.Vertices))
		}
	}
	if len(m.Normals) > 0 && len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("%w: %d normals, %d vertices", ErrNormalCount, len(m.Normals), len(m.Vertices))
	}
	return nil
}

// Components returns copies of the vertex, normal and index slices.
func (m *Mesh[V]) Components() ([]V, []Normal, []uint32) {
	c := m.Clone()
	return c.Vertices, c.Normals, c.Indices
}

// Buffers holds flattened mesh data ready for GPU upload.
type Buffers struct {
	Positions []float32 // 3 floats per vertex
	Normals   []float32 // 3 floats per normal
	Indices   []uint32
}

// Buffers flattens positions and normals into tightly packed float slices.
func (m *Mesh[V]) Buffers() Buffers {
	b := Buffers{
		Positions: make([]float32, 0, len(m.Vertices)*3),
		Normals:   make([]float32, 0, len(m.Normals)*3),
		Indices:   append([]uint32(nil), m.Indices...),
	}
	for _, v := range m.Vertices {
		p := v.Pos()
		b.Positions = append(b.Positions, p.X, p.Y, p.Z)
	}
	for _, n := range m.Normals {
		b.Normals = append(b.Normals, n.Normal[0], n.Normal[1], n.Normal[2])
	}
	return b
}
