package native

import "math"

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float64
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Scale returns v*s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Scale returns v*s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Quat is a rotation quaternion.
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity is the zero rotation.
var QuatIdentity = Quat{W: 1}

// QuatFromAxisAngle returns the rotation of angle radians around the unit axis.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	s, c := math.Sincos(angle / 2)
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, c}
}

// Mul returns the composition q*o (o applied first).
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Transform2D is a node's local 2D transform. Rotation is in radians.
type Transform2D struct {
	Position Vec2
	Rotation float64
	Scale    Vec2
}

// Equal reports whether t and o hold the same values. Unlike ==, a NaN
// component equals a NaN component.
func (t Transform2D) Equal(o Transform2D) bool {
	return same(t.Position.X, o.Position.X) && same(t.Position.Y, o.Position.Y) &&
		same(t.Rotation, o.Rotation) &&
		same(t.Scale.X, o.Scale.X) && same(t.Scale.Y, o.Scale.Y)
}

// IdentityTransform2D has unit scale and no translation or rotation.
var IdentityTransform2D = Transform2D{Scale: Vec2{1, 1}}

// Transform3D is a node's local 3D transform.
type Transform3D struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3
}

// Equal reports whether t and o hold the same values, with NaN equal to NaN.
func (t Transform3D) Equal(o Transform3D) bool {
	return sameVec3(t.Position, o.Position) && sameVec3(t.Scale, o.Scale) &&
		same(t.Rotation.X, o.Rotation.X) && same(t.Rotation.Y, o.Rotation.Y) &&
		same(t.Rotation.Z, o.Rotation.Z) && same(t.Rotation.W, o.Rotation.W)
}

func sameVec3(a, b Vec3) bool {
	return same(a.X, b.X) && same(a.Y, b.Y) && same(a.Z, b.Z)
}

func same(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// IdentityTransform3D has unit scale and no translation or rotation.
var IdentityTransform3D = Transform3D{Rotation: QuatIdentity, Scale: Vec3{1, 1, 1}}
