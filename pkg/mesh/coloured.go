package mesh

// ColouredMesh is a position-only mesh drawn in a single colour.
type ColouredMesh struct {
	Mesh[PositionVertex]
	Colour [4]float32
}

// NewColoured creates a coloured mesh with no normals.
func NewColoured(vertices []PositionVertex, indices []uint32, colour [4]float32) *ColouredMesh {
	return &ColouredMesh{
		Mesh:   *New(vertices, indices),
		Colour: colour,
	}
}

// EmptyColouredMesh returns an empty white mesh.
func EmptyColouredMesh() *ColouredMesh {
	return &ColouredMesh{Colour: [4]float32{1, 1, 1, 1}}
}

// FlatShaded returns a flat shaded copy that keeps the colour.
func (c *ColouredMesh) FlatShaded() *ColouredMesh {
	return &ColouredMesh{
		Mesh:   *c.Mesh.FlatShaded(),
		Colour: c.Colour,
	}
}

// SmoothShaded returns a smooth shaded copy that keeps the colour.
func (c *ColouredMesh) SmoothShaded() *ColouredMesh {
	return &ColouredMesh{
		Mesh:   *c.Mesh.SmoothShaded(),
		Colour: c.Colour,
	}
}
