package math

import (
	"math"
	"testing"
)

func TestQuatMulRotate(t *testing.T) {
	qz := QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi/2)
	qx := QuatFromAxisAngle(Vec3{1, 0, 0}, math.Pi/2)

	// rotate by qx first, then qz
	q := qz.Mul(qx)
	got := q.RotateVec(Vec3{0, 1, 0})
	// (0,1,0) -> qx -> (0,0,1) -> qz -> (0,0,1)
	if math.Abs(got.X) > 1e-12 || math.Abs(got.Y) > 1e-12 || math.Abs(got.Z-1) > 1e-12 {
		t.Errorf("composed rotation: got %v, want (0,0,1)", got)
	}
}

func TestQuatMat3RoundTrip(t *testing.T) {
	cases := []Quat{
		QuatIdentity(),
		QuatFromAxisAngle(Vec3{0, 0, 1}, 2.5),
		QuatFromAxisAngle(Vec3{1, 0, 0}, math.Pi),
		QuatFromAxisAngle(Vec3{0.6, 0, 0.8}, -1.2),
	}
	for _, q := range cases {
		back := q.ToMat3().ToQuat()
		if !quatClose(q, back, 1e-12) {
			t.Errorf("mat3 roundtrip: got %v, want %v", back, q)
		}
	}
}

func TestQuatRotateMatchesMat3(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0.48, 0.6, 0.64}, 0.9)
	v := Vec3{0.3, -1.2, 2.1}
	a := q.RotateVec(v)
	b := q.ToMat3().MulVec(v)
	if a.Sub(b).Len() > 1e-12 {
		t.Errorf("RotateVec %v != mat3 product %v", a, b)
	}
}

func TestQuatBetween(t *testing.T) {
	a := Vec3{0, 0, 1}
	b, _ := Vec3{1, 1, 0}.Normalize()
	q := QuatBetween(a, b)
	if got := q.RotateVec(a); got.Sub(b).Len() > 1e-12 {
		t.Errorf("QuatBetween: rotated a is %v, want %v", got, b)
	}

	// antiparallel case
	q = QuatBetween(a, Vec3{0, 0, -1})
	if got := q.RotateVec(a); got.Sub(Vec3{0, 0, -1}).Len() > 1e-9 {
		t.Errorf("QuatBetween antiparallel: got %v, want (0,0,-1)", got)
	}
}
