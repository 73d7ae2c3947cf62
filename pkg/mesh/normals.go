package mesh

import "github.com/Faultbox/meshgeo/pkg/math"

// faceNormal returns the unnormalized normal of triangle (a, b, c).
// Its length is twice the triangle area.
func faceNormal(a, b, c math.Vec3) math.Vec3 {
	d1 := a.Sub(c)
	d2 := b.Sub(c)
	return d1.Cross(d2)
}

// RecalculateNormals replaces the normals with smooth per-vertex normals.
// Each vertex gets the normalized sum of the unnormalized normals of the
// triangles that use it, so larger triangles weigh more. Vertices used by
// no triangle, or only by degenerate ones, get a zero normal.
//
// It panics if an index is out of range; see Validate.
func (m *Mesh[V]) RecalculateNormals() *Mesh[V] {
	acc := make([]math.Vec3, len(m.Vertices))

	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		n := faceNormal(m.Vertices[i0].Pos(), m.Vertices[i1].Pos(), m.Vertices[i2].Pos())

		acc[i0] = acc[i0].Add(n)
		acc[i1] = acc[i1].Add(n)
		acc[i2] = acc[i2].Add(n)
	}

	normals := make([]Normal, len(acc))
	for i, n := range acc {
		normals[i] = NormalFrom(n.Normalize())
	}
	return m.SetNormals(normals)
}
