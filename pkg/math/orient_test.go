package math

import (
	"errors"
	"math"
	"testing"
)

func quatClose(a, b Quat, tol float64) bool {
	// q and -q are the same rotation
	if a.Dot(b) < 0 {
		b = Quat{-b.W, -b.X, -b.Y, -b.Z}
	}
	return math.Abs(a.W-b.W) < tol && math.Abs(a.X-b.X) < tol &&
		math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func TestAltResolve_NoForm_ReturnsQuat(t *testing.T) {
	alt := NewAlt()
	in := QuatFromAxisAngle(Vec3{0, 0, 1}, 0.5)
	got, err := alt.Resolve(in, false, "xyz")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != in {
		t.Errorf("Resolve without alt form should return input quat, got %v", got)
	}
}

func TestAltResolve_AxisAngle(t *testing.T) {
	alt := NewAlt()
	alt.AxisAngle = [4]float64{0, 0, 2, 90} // non-unit axis, degrees
	got, err := alt.Resolve(QuatIdentity(), true, "xyz")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi/2)
	if !quatClose(got, want, 1e-12) {
		t.Errorf("axisangle: got %v, want %v", got, want)
	}
}

func TestAltResolve_DegenerateAxis(t *testing.T) {
	alt := NewAlt()
	alt.AxisAngle = [4]float64{0, 0, 0, 1}
	_, err := alt.Resolve(QuatIdentity(), false, "xyz")
	if !errors.Is(err, ErrAxisTooSmall) {
		t.Errorf("degenerate axis: got %v, want ErrAxisTooSmall", err)
	}
}

func TestAltResolve_XYAxes(t *testing.T) {
	alt := NewAlt()
	// x = +y, y = -x: a 90 degree rotation about z
	alt.XYAxes = [6]float64{0, 1, 0, -1, 0, 0}
	got, err := alt.Resolve(QuatIdentity(), false, "xyz")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi/2)
	if !quatClose(got, want, 1e-12) {
		t.Errorf("xyaxes: got %v, want %v", got, want)
	}
}

func TestAltResolve_XYAxesParallel(t *testing.T) {
	alt := NewAlt()
	alt.XYAxes = [6]float64{1, 0, 0, 2, 0, 0}
	_, err := alt.Resolve(QuatIdentity(), false, "xyz")
	if !errors.Is(err, ErrYAxisTooSmall) {
		t.Errorf("parallel xyaxes: got %v, want ErrYAxisTooSmall", err)
	}
}

func TestAltResolve_ZAxis(t *testing.T) {
	alt := NewAlt()
	alt.ZAxis = [3]float64{1, 0, 0}
	got, err := alt.Resolve(QuatIdentity(), false, "xyz")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	// minimal rotation taking +z to +x
	if v := got.RotateVec(Vec3{0, 0, 1}); math.Abs(v.X-1) > 1e-12 || math.Abs(v.Y) > 1e-12 || math.Abs(v.Z) > 1e-12 {
		t.Errorf("zaxis: rotated z is %v, want (1,0,0)", v)
	}
}

func TestAltResolve_MultipleForms(t *testing.T) {
	alt := NewAlt()
	alt.ZAxis = [3]float64{1, 0, 0}
	alt.Euler = [3]float64{0.1, 0.2, 0.3}
	_, err := alt.Resolve(QuatIdentity(), false, "xyz")
	if !errors.Is(err, ErrMultipleAlt) {
		t.Errorf("two alt forms: got %v, want ErrMultipleAlt", err)
	}
}

func TestEulerToQuat_BadSequence(t *testing.T) {
	_, err := EulerToQuat([3]float64{0.1, 0.2, 0.3}, false, "xyw")
	if !errors.Is(err, ErrEulerSequence) {
		t.Errorf("bad sequence: got %v, want ErrEulerSequence", err)
	}
	_, err = EulerToQuat([3]float64{0.1, 0.2, 0.3}, false, "xy")
	if !errors.Is(err, ErrEulerSequence) {
		t.Errorf("short sequence: got %v, want ErrEulerSequence", err)
	}
}

func TestEulerXYZRoundTrip(t *testing.T) {
	cases := [][3]float64{
		{0.3, -0.4, 0.5},
		{-1.2, 0.7, 2.9},
		{0, 0, 0},
		{0.1, 1.4, -0.2},
	}
	for _, e := range cases {
		q, err := EulerToQuat(e, false, "xyz")
		if err != nil {
			t.Fatalf("EulerToQuat(%v) failed: %v", e, err)
		}
		back := EulerXYZFromQuat(q)
		for i := 0; i < 3; i++ {
			d := math.Mod(back[i]-e[i], 2*math.Pi)
			if d > math.Pi {
				d -= 2 * math.Pi
			}
			if d < -math.Pi {
				d += 2 * math.Pi
			}
			if math.Abs(d) > 1e-9 {
				t.Errorf("euler roundtrip %v: component %d got %v, want %v", e, i, back[i], e[i])
			}
		}
	}
}

func TestEulerFixedVsMoving(t *testing.T) {
	// moving-axis "xyz" equals fixed-axis "ZYX" with reversed angles
	e := [3]float64{0.3, -0.7, 1.1}
	qm, err := EulerToQuat(e, false, "xyz")
	if err != nil {
		t.Fatalf("moving: %v", err)
	}
	qf, err := EulerToQuat([3]float64{e[2], e[1], e[0]}, false, "ZYX")
	if err != nil {
		t.Fatalf("fixed: %v", err)
	}
	if !quatClose(qm, qf, 1e-12) {
		t.Errorf("moving xyz %v != fixed ZYX reversed %v", qm, qf)
	}
}
