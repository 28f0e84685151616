package bsp

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultEpsilon is the half-thickness of a plane used when classifying
// points. Points closer to a plane than this are treated as lying on it.
const DefaultEpsilon float32 = 1e-5

// minLength is the shortest vector that Unit will normalize.
const minLength float32 = 1e-12

// Lerp returns the point a + (b-a)*t.
func Lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Lerp2 is Lerp for texture coordinates.
func Lerp2(a, b mgl32.Vec2, t float32) mgl32.Vec2 {
	return a.Add(b.Sub(a).Mul(t))
}

// Unit returns v scaled to unit length. Vectors too short to normalize
// come back as the zero vector instead of NaNs.
func Unit(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < minLength || math32.IsNaN(l) {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}
