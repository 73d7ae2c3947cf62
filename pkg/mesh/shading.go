package mesh

import (
	"slices"

	"github.com/Faultbox/meshgeo/pkg/math"
)

// FlatShaded returns a flat shaded copy of the mesh. Every triangle gets
// three unshared vertices carrying the normalized face normal, and the
// indices become 0..n-1.
func (m *Mesh[V]) FlatShaded() *Mesh[V] {
	vertices, normals, indices := FlatShadeComponents(m.Vertices, m.Indices)
	return New(vertices, indices).SetNormals(normals)
}

// FlatShade converts the mesh to flat shading in place.
// Vertex sharing is lost and cannot be restored exactly.
func (m *Mesh[V]) FlatShade() {
	flat := m.FlatShaded()
	m.Vertices = flat.Vertices
	m.Normals = flat.Normals
	m.Indices = flat.Indices
}

// FlatShadeComponents flat shades raw vertex and index slices without
// building a Mesh. It is equivalent to New(vertices, indices).FlatShaded().
func FlatShadeComponents[V Positioner](vertices []V, indices []uint32) ([]V, []Normal, []uint32) {
	count := len(indices) - len(indices)%3
	outVerts := make([]V, 0, count)
	outNormals := make([]Normal, 0, count)

	for i := 0; i+2 < len(indices); i += 3 {
		a := vertices[indices[i]]
		b := vertices[indices[i+1]]
		c := vertices[indices[i+2]]

		n := NormalFrom(faceNormal(a.Pos(), b.Pos(), c.Pos()).Normalize())

		outVerts = append(outVerts, a, b, c)
		outNormals = append(outNormals, n, n, n)
	}

	outIndices := make([]uint32, len(outVerts))
	for i := range outIndices {
		outIndices[i] = uint32(i)
	}
	return outVerts, outNormals, outIndices
}

// SmoothShaded returns a smooth shaded copy of the mesh. Indices are
// rewritten so that vertices at exactly the same position share the
// lowest-numbered of them, then normals are recalculated. Only positions
// are compared; other attributes of merged vertices are ignored. The
// vertex slice is copied as is, so unreferenced vertices may remain.
func (m *Mesh[V]) SmoothShaded() *Mesh[V] {
	rep := firstByPosition(m.Vertices)

	indices := make([]uint32, len(m.Indices))
	for i, idx := range m.Indices {
		indices[i] = rep[idx]
	}

	out := New(append([]V(nil), m.Vertices...), indices)
	return out.RecalculateNormals()
}

// SmoothShade converts the mesh to smooth shading in place.
func (m *Mesh[V]) SmoothShade() {
	smooth := m.SmoothShaded()
	m.Vertices = smooth.Vertices
	m.Normals = smooth.Normals
	m.Indices = smooth.Indices
}

// firstByPosition maps each vertex index to the first index holding the
// same position under math.Vec3.Compare.
func firstByPosition[V Positioner](vertices []V) []uint32 {
	pos := make([]math.Vec3, len(vertices))
	order := make([]uint32, len(vertices))
	for i, v := range vertices {
		pos[i] = v.Pos()
		order[i] = uint32(i)
	}

	// Stable, so each run of equal positions starts with its lowest index.
	slices.SortStableFunc(order, func(a, b uint32) int {
		return pos[a].Compare(pos[b])
	})

	rep := make([]uint32, len(vertices))
	for start := 0; start < len(order); {
		first := order[start]
		end := start
		for end < len(order) && pos[order[end]].Compare(pos[first]) == 0 {
			rep[order[end]] = first
			end++
		}
		start = end
	}
	return rep
}
