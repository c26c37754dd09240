package math

import "math"

// Quat is a rotation quaternion. W is the scalar part; the packed model
// stores quaternions in (w, x, y, z) order.
type Quat struct {
	W, X, Y, Z float64
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle creates a quaternion rotating by angle (radians)
// around axis. axis must be normalized.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	s := math.Sin(angle / 2)
	return Quat{
		W: math.Cos(angle / 2),
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
	}
}

// Mul returns the Hamilton product q * o: rotate by o, then by q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// Conj returns the conjugate (inverse for unit quaternions).
func (q Quat) Conj() Quat {
	return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Norm returns the quaternion length.
func (q Quat) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalize returns a unit quaternion. Degenerate input collapses to
// identity.
func (q Quat) Normalize() Quat {
	l := q.Norm()
	if l < MinVal {
		return QuatIdentity()
	}
	inv := 1 / l
	return Quat{W: q.W * inv, X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv}
}

// Dot returns the 4D dot product of q and o.
func (q Quat) Dot(o Quat) float64 {
	return q.W*o.W + q.X*o.X + q.Y*o.Y + q.Z*o.Z
}

// RotateVec rotates v by q.
func (q Quat) RotateVec(v Vec3) Vec3 {
	// v' = v + 2w(u x v) + 2(u x (u x v)) with u the vector part
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// ToMat3 converts q to a 3x3 rotation matrix.
func (q Quat) ToMat3() Mat3 {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat3{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}

// Array returns the components in (w, x, y, z) order.
func (q Quat) Array() [4]float64 {
	return [4]float64{q.W, q.X, q.Y, q.Z}
}

// QuatFrom builds a Quat from a (w, x, y, z) array.
func QuatFrom(a [4]float64) Quat {
	return Quat{W: a[0], X: a[1], Y: a[2], Z: a[3]}
}

// QuatBetween returns the minimal rotation taking unit vector a to unit
// vector b.
func QuatBetween(a, b Vec3) Quat {
	d := a.Dot(b)
	if d < -1+MinVal {
		// antiparallel: rotate pi around any axis orthogonal to a
		axis := Vec3{1, 0, 0}.Cross(a)
		if l := axis.Len(); l < 1e-9 {
			axis = Vec3{0, 1, 0}.Cross(a)
		}
		axis, _ = axis.Normalize()
		return QuatFromAxisAngle(axis, math.Pi)
	}
	c := a.Cross(b)
	q := Quat{W: 1 + d, X: c.X, Y: c.Y, Z: c.Z}
	return q.Normalize()
}
