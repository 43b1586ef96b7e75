// Package math provides the vector types used by mesh processing.
package math

import "math"

// Vec3 is a 3D vector in double precision.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// LengthSquared returns the squared magnitude.
func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length returns the magnitude.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// Normalize returns a unit vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// DistanceSquared returns the squared distance to another point.
func (v Vec3) DistanceSquared(other Vec3) float64 {
	return v.Sub(other).LengthSquared()
}

// Angle returns the angle between v and other in radians.
func (v Vec3) Angle(other Vec3) float64 {
	return math.Atan2(v.Cross(other).Length(), v.Dot(other))
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// ZUpToYUp maps a vector from a right-handed Z-up basis into a right-handed
// Y-up basis: (x, y, z) -> (x, z, -y). Components are swizzled, not multiplied,
// so values come through bit-exact apart from the negated source Y.
func (v Vec3) ZUpToYUp() Vec3 {
	return Vec3{v.X, v.Z, -v.Y}
}

// YUpToZUp is the inverse of ZUpToYUp: (x, y, z) -> (x, -z, y).
func (v Vec3) YUpToZUp() Vec3 {
	return Vec3{v.X, -v.Z, v.Y}
}

// DominantAxis returns 0, 1 or 2 for the component with the largest magnitude.
func (v Vec3) DominantAxis() int {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	switch {
	case ax >= ay && ax >= az:
		return 0
	case ay >= az:
		return 1
	default:
		return 2
	}
}

// DropAxis projects v onto the plane orthogonal to the given axis, keeping
// the two remaining components in cyclic order so that orientation about
// the dropped axis is preserved.
func (v Vec3) DropAxis(axis int) Vec2 {
	switch axis {
	case 0:
		return Vec2{v.Y, v.Z}
	case 1:
		return Vec2{v.Z, v.X}
	default:
		return Vec2{v.X, v.Y}
	}
}

// Component returns the component at index 0, 1 or 2.
func (v Vec3) Component(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
