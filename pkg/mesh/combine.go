package mesh

// Add appends other to m. Indices of other are offset by the vertex count
// m had before the call. If the combined normal count no longer matches
// the vertex count, all normals are recalculated, discarding any that were
// set on either mesh. other is drained.
func (m *Mesh[V]) Add(other *Mesh[V]) {
	if other == nil {
		return
	}

	offset := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, other.Vertices...)
	m.Normals = append(m.Normals, other.Normals...)
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, idx+offset)
	}

	other.Vertices = nil
	other.Normals = nil
	other.Indices = nil

	if len(m.Vertices) != len(m.Normals) {
		m.RecalculateNormals()
	}
}

// Combine merges meshes in order into a new mesh. The inputs are not
// modified.
func Combine[V Positioner](meshes []*Mesh[V]) (*Mesh[V], error) {
	if len(meshes) == 0 {
		return nil, ErrEmptyInput
	}

	out := meshes[0].Clone()
	for _, m := range meshes[1:] {
		out.Add(m.Clone())
	}
	return out, nil
}
