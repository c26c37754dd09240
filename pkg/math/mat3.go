package math

import "math"

// Mat3 is a row-major 3x3 matrix.
type Mat3 [9]float64

// Mat3Identity returns the identity matrix.
func Mat3Identity() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Mul returns the matrix product m * o.
func (m Mat3) Mul(o Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[3*i+j] = m[3*i]*o[j] + m[3*i+1]*o[3+j] + m[3*i+2]*o[6+j]
		}
	}
	return r
}

// MulVec returns m * v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Col returns column j as a vector.
func (m Mat3) Col(j int) Vec3 {
	return Vec3{m[j], m[3+j], m[6+j]}
}

// Mat3FromCols builds a matrix from three column vectors.
func Mat3FromCols(x, y, z Vec3) Mat3 {
	return Mat3{
		x.X, y.X, z.X,
		x.Y, y.Y, z.Y,
		x.Z, y.Z, z.Z,
	}
}

// ToQuat converts a rotation matrix to a unit quaternion.
func (m Mat3) ToQuat() Quat {
	var q Quat
	tr := m[0] + m[4] + m[8]
	if tr > 0 {
		s := math.Sqrt(tr+1) * 2
		q.W = s / 4
		q.X = (m[7] - m[5]) / s
		q.Y = (m[2] - m[6]) / s
		q.Z = (m[3] - m[1]) / s
	} else if m[0] > m[4] && m[0] > m[8] {
		s := math.Sqrt(1+m[0]-m[4]-m[8]) * 2
		q.W = (m[7] - m[5]) / s
		q.X = s / 4
		q.Y = (m[1] + m[3]) / s
		q.Z = (m[2] + m[6]) / s
	} else if m[4] > m[8] {
		s := math.Sqrt(1+m[4]-m[0]-m[8]) * 2
		q.W = (m[2] - m[6]) / s
		q.X = (m[1] + m[3]) / s
		q.Y = s / 4
		q.Z = (m[5] + m[7]) / s
	} else {
		s := math.Sqrt(1+m[8]-m[0]-m[4]) * 2
		q.W = (m[3] - m[1]) / s
		q.X = (m[2] + m[6]) / s
		q.Y = (m[5] + m[7]) / s
		q.Z = s / 4
	}
	return q.Normalize()
}
