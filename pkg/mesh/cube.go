package mesh

// Unit cube centred on the origin, shared by tests and meshtool.

var cubePositions = [8][3]float32{
	{-0.5, -0.5, -0.5},
	{0.5, -0.5, -0.5},
	{-0.5, -0.5, 0.5},
	{0.5, -0.5, 0.5},
	{-0.5, 0.5, -0.5},
	{0.5, 0.5, -0.5},
	{-0.5, 0.5, 0.5},
	{0.5, 0.5, 0.5},
}

var cubeColours = [8][4]float32{
	{0.84, 0.01, 0.44, 1.0},
	{0.61, 0.31, 0.59, 1.0},
	{0.61, 0.31, 0.59, 1.0},
	{0.0, 0.22, 0.66, 1.0},
	{0.84, 0.01, 0.44, 1.0},
	{0.61, 0.31, 0.59, 1.0},
	{0.61, 0.31, 0.59, 1.0},
	{0.0, 0.22, 0.66, 1.0},
}

// CubeNormals are hand-authored corner normals for Cube, pointing away
// from the centre. They are not unit length.
var CubeNormals = [8]Normal{
	{[3]float32{-1, -1, -1}},
	{[3]float32{1, -1, -1}},
	{[3]float32{-1, -1, 1}},
	{[3]float32{1, -1, 1}},
	{[3]float32{-1, 1, -1}},
	{[3]float32{1, 1, -1}},
	{[3]float32{-1, 1, 1}},
	{[3]float32{1, 1, 1}},
}

// CubeIndices lists the 12 triangles of the cube.
var CubeIndices = [36]uint32{
	0, 4, 1,
	4, 1, 5,
	1, 5, 3,
	5, 3, 7,
	3, 7, 2,
	7, 2, 6,
	2, 6, 0,
	6, 0, 4,
	0, 2, 1,
	2, 1, 3,
	4, 6, 5,
	6, 5, 7,
}

// Cube returns the unit cube with no normals.
func Cube() *Mesh[PositionVertex] {
	vertices := make([]PositionVertex, len(cubePositions))
	for i, p := range cubePositions {
		vertices[i] = PositionVertex{Position: p}
	}
	return New(vertices, append([]uint32(nil), CubeIndices[:]...))
}

// ColouredCube returns the unit cube with per-corner colours.
func ColouredCube() *Mesh[ColouredVertex] {
	vertices := make([]ColouredVertex, len(cubePositions))
	for i, p := range cubePositions {
		vertices[i] = ColouredVertex{Position: p, Colour: cubeColours[i]}
	}
	return New(vertices, append([]uint32(nil), CubeIndices[:]...))
}
