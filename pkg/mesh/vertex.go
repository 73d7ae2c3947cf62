package mesh

import "github.com/Faultbox/meshgeo/pkg/math"

// Positioner is implemented by any vertex type that carries a position.
type Positioner interface {
	Pos() math.Vec3
}

// PositionVertex is a vertex with only a position.
type PositionVertex struct {
	Position [3]float32
}

// Pos returns the vertex position.
func (v PositionVertex) Pos() math.Vec3 {
	return math.FromArray(v.Position)
}

// PositionVertexFrom builds a PositionVertex from a vector.
func PositionVertexFrom(v math.Vec3) PositionVertex {
	return PositionVertex{Position: v.Array()}
}

// ColouredVertex is a vertex with a position and an RGBA colour.
type ColouredVertex struct {
	Position [3]float32
	Colour   [4]float32
}

// Pos returns the vertex position.
func (v ColouredVertex) Pos() math.Vec3 {
	return math.FromArray(v.Position)
}

// Normal is a per-vertex direction.
type Normal struct {
	Normal [3]float32
}

// NormalFrom builds a Normal from a vector.
func NormalFrom(v math.Vec3) Normal {
	return Normal{Normal: v.Array()}
}

// Vec returns the normal as a vector.
func (n Normal) Vec() math.Vec3 {
	return math.FromArray(n.Normal)
}
