// Package math provides the vector type used by mesh geometry.
package math

import (
	"cmp"
	"math"
)

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// V3 returns a Vec3 from components.
func V3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// FromArray converts a [3]float32 to Vec3.
func FromArray(a [3]float32) Vec3 {
	return Vec3{a[0], a[1], a[2]}
}

// Array returns the components as [3]float32.
func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product (right-handed).
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Normalize returns a unit vector, or the zero vector if v has no length.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Compare orders vectors lexicographically on X, Y then Z.
// NaN sorts before every other value, so the order is total.
func (v Vec3) Compare(other Vec3) int {
	if c := cmp.Compare(v.X, other.X); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Y, other.Y); c != 0 {
		return c
	}
	return cmp.Compare(v.Z, other.Z)
}
