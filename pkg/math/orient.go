package math

import (
	"errors"
	"math"
)

// Orientation resolution errors. Callers wrap these with the offending
// entity's name and id.
var (
	ErrAxisTooSmall  = errors.New("axisangle axis has near-zero length")
	ErrYAxisTooSmall = errors.New("xyaxes y-axis has near-zero length after orthogonalization")
	ErrCrossTooSmall = errors.New("xyaxes cross product has near-zero length")
	ErrZAxisTooSmall = errors.New("zaxis has near-zero length")
	ErrEulerSequence = errors.New("euler sequence contains characters outside xyzXYZ")
	ErrMultipleAlt   = errors.New("more than one alternative orientation specified")
)

// Alt holds the alternative orientation forms an author may use instead of
// a quaternion. A form is present when its first slot is not NaN.
type Alt struct {
	AxisAngle [4]float64 // (x, y, z, angle)
	XYAxes    [6]float64 // x axis then y axis
	ZAxis     [3]float64 // z axis, minimal rotation from (0,0,1)
	Euler     [3]float64 // rotation angles applied per the euler sequence
}

// NewAlt returns an Alt with every form marked absent.
func NewAlt() Alt {
	nan := math.NaN()
	return Alt{
		AxisAngle: [4]float64{nan, 0, 0, 0},
		XYAxes:    [6]float64{nan, 0, 0, 0, 0, 0},
		ZAxis:     [3]float64{nan, 0, 0},
		Euler:     [3]float64{nan, 0, 0},
	}
}

// IsSet reports whether any alternative form is present.
func (a *Alt) IsSet() bool {
	return !math.IsNaN(a.AxisAngle[0]) || !math.IsNaN(a.XYAxes[0]) ||
		!math.IsNaN(a.ZAxis[0]) || !math.IsNaN(a.Euler[0])
}

// Resolve converts the single present alternative form into a unit
// quaternion. When no form is present the given quaternion is returned
// unchanged. degrees selects degree input for angles; eulerSeq is the
// 3-character rotation sequence for the euler form.
func (a *Alt) Resolve(quat Quat, degrees bool, eulerSeq string) (Quat, error) {
	n := 0
	if !math.IsNaN(a.AxisAngle[0]) {
		n++
	}
	if !math.IsNaN(a.XYAxes[0]) {
		n++
	}
	if !math.IsNaN(a.ZAxis[0]) {
		n++
	}
	if !math.IsNaN(a.Euler[0]) {
		n++
	}
	if n > 1 {
		return quat, ErrMultipleAlt
	}

	switch {
	case !math.IsNaN(a.AxisAngle[0]):
		axis, l := Vec3{a.AxisAngle[0], a.AxisAngle[1], a.AxisAngle[2]}.Normalize()
		if l == 0 {
			return quat, ErrAxisTooSmall
		}
		angle := a.AxisAngle[3]
		if degrees {
			angle *= math.Pi / 180
		}
		return QuatFromAxisAngle(axis, angle), nil

	case !math.IsNaN(a.XYAxes[0]):
		x, l := Vec3{a.XYAxes[0], a.XYAxes[1], a.XYAxes[2]}.Normalize()
		if l == 0 {
			return quat, ErrAxisTooSmall
		}
		y := Vec3{a.XYAxes[3], a.XYAxes[4], a.XYAxes[5]}
		y = y.Sub(x.Scale(x.Dot(y)))
		y, l = y.Normalize()
		if l == 0 {
			return quat, ErrYAxisTooSmall
		}
		z, l := x.Cross(y).Normalize()
		if l == 0 {
			return quat, ErrCrossTooSmall
		}
		return Mat3FromCols(x, y, z).ToQuat(), nil

	case !math.IsNaN(a.ZAxis[0]):
		z, l := Vec3{a.ZAxis[0], a.ZAxis[1], a.ZAxis[2]}.Normalize()
		if l == 0 {
			return quat, ErrZAxisTooSmall
		}
		return QuatBetween(Vec3{0, 0, 1}, z), nil

	case !math.IsNaN(a.Euler[0]):
		return EulerToQuat(a.Euler, degrees, eulerSeq)
	}

	return quat, nil
}

// EulerToQuat composes a quaternion from three rotation angles and a
// sequence of xyzXYZ characters. Lowercase characters rotate about the
// moving axes (post-multiply), uppercase about the fixed axes
// (pre-multiply).
func EulerToQuat(euler [3]float64, degrees bool, seq string) (Quat, error) {
	if len(seq) != 3 {
		return QuatIdentity(), ErrEulerSequence
	}
	q := QuatIdentity()
	for i := 0; i < 3; i++ {
		angle := euler[i]
		if degrees {
			angle *= math.Pi / 180
		}
		var axis Vec3
		switch seq[i] {
		case 'x', 'X':
			axis = Vec3{1, 0, 0}
		case 'y', 'Y':
			axis = Vec3{0, 1, 0}
		case 'z', 'Z':
			axis = Vec3{0, 0, 1}
		default:
			return QuatIdentity(), ErrEulerSequence
		}
		r := QuatFromAxisAngle(axis, angle)
		if seq[i] >= 'a' {
			q = q.Mul(r)
		} else {
			q = r.Mul(q)
		}
	}
	return q, nil
}

// EulerXYZFromQuat recovers moving-axis "xyz" euler angles from a unit
// quaternion. Valid away from the pitch singularity.
func EulerXYZFromQuat(q Quat) [3]float64 {
	m := q.ToMat3()
	var e [3]float64
	e[1] = math.Asin(math.Max(-1, math.Min(1, m[2])))
	if math.Abs(m[2]) < 1-1e-10 {
		e[0] = math.Atan2(-m[5], m[8])
		e[2] = math.Atan2(-m[1], m[0])
	} else {
		e[0] = math.Atan2(m[3], m[4])
		e[2] = 0
	}
	return e
}
