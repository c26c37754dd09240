package spec

import (
	"testing"

	kmath "github.com/Faultbox/kforge/pkg/math"
)

func TestNewSpecHasWorldAndMain(t *testing.T) {
	s := New()
	if s.World == nil || s.World.Name != "world" {
		t.Fatal("new spec must own a world body")
	}
	if s.Default("") == nil || s.Default("").Name != "main" {
		t.Error("empty class must resolve to main")
	}
}

func TestAddDefaultFlattensInheritance(t *testing.T) {
	s := New()
	d := s.AddDefault("robot", "")
	if d == nil {
		t.Fatal("AddDefault failed")
	}
	d.Geom.Density = 500
	d.Joint.Damping = 2

	child := s.AddDefault("robot/arm", "robot")
	if child == nil {
		t.Fatal("AddDefault child failed")
	}
	if child.Geom.Density != 500 || child.Joint.Damping != 2 {
		t.Error("child class should start as a copy of its parent")
	}

	// entities copy from their class at add time
	b := s.AddBody(nil, "robot")
	g := s.AddGeom(b, "")
	if g.Density != 500 {
		t.Errorf("geom density from class: got %v, want 500", g.Density)
	}
	if g.Class != "robot" {
		t.Errorf("geom class: got %q, want robot", g.Class)
	}

	// explicit class on the entity wins over the body class
	g2 := s.AddGeom(b, "main")
	if g2.Density != 1000 {
		t.Errorf("main class density: got %v, want 1000", g2.Density)
	}
}

func TestAddDefaultRejectsDuplicates(t *testing.T) {
	s := New()
	if s.AddDefault("x", "") == nil {
		t.Fatal("first AddDefault failed")
	}
	if s.AddDefault("x", "") != nil {
		t.Error("duplicate class name should be rejected")
	}
	if s.AddDefault("y", "nope") != nil {
		t.Error("unknown parent should be rejected")
	}
}

func TestFindObject(t *testing.T) {
	s := New()
	b := s.AddBody(nil, "")
	b.Name = "torso"
	j := s.AddJoint(b, "")
	j.Name = "spin"
	m := s.AddMesh("")
	m.Name = "hull"

	if got := s.FindObject(ObjBody, "torso"); got != b {
		t.Error("FindObject body failed")
	}
	if got := s.FindObject(ObjJoint, "spin"); got != j {
		t.Error("FindObject joint failed")
	}
	if got := s.FindObject(ObjMesh, "hull"); got != m {
		t.Error("FindObject mesh failed")
	}
	if got := s.FindObject(ObjBody, "nope"); got != nil {
		t.Error("FindObject should return nil for unknown names")
	}
	if got := s.FindObject(ObjBody, ""); got != nil {
		t.Error("FindObject should return nil for empty names")
	}
}

func TestBodiesPreOrder(t *testing.T) {
	s := New()
	a := s.AddBody(nil, "")
	a.Name = "a"
	a1 := s.AddBody(a, "")
	a1.Name = "a1"
	b := s.AddBody(nil, "")
	b.Name = "b"

	var names []string
	for _, body := range s.Bodies() {
		names = append(names, body.Name)
	}
	want := []string{"world", "a", "a1", "b"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("pre-order: got %v, want %v", names, want)
		}
	}
}

func TestFrameAccum(t *testing.T) {
	s := New()
	f := s.AddFrame(s.World, nil)
	f.Pos = kmath.Vec3{X: 1}
	inner := s.AddFrame(s.World, f)
	inner.Pos = kmath.Vec3{Y: 2}

	pos, quat := inner.Accum(kmath.Vec3{Z: 3}, kmath.QuatIdentity())
	if pos != (kmath.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("frame composition: got %v", pos)
	}
	if quat != kmath.QuatIdentity() {
		t.Errorf("frame composition quat: got %v", quat)
	}
}

func TestUndefinedMarkers(t *testing.T) {
	s := New()
	b := s.AddBody(nil, "")
	if Defined(b.Mass) || Defined(b.IPos.X) || Defined(b.Inertia.X) {
		t.Error("new body must have undefined inertial fields")
	}
	if b.ExplicitInertia() {
		t.Error("new body must not report explicit inertia")
	}
	b.Mass = 1
	if !b.ExplicitInertia() {
		t.Error("setting mass must mark inertia explicit")
	}
}

func TestJointNPosNVel(t *testing.T) {
	cases := []struct {
		typ        JointType
		npos, nvel int32
	}{
		{JointFree, 7, 6},
		{JointBall, 4, 3},
		{JointHinge, 1, 1},
		{JointSlide, 1, 1},
	}
	for _, c := range cases {
		if c.typ.NPos() != c.npos || c.typ.NVel() != c.nvel {
			t.Errorf("%s: got (%d,%d), want (%d,%d)", c.typ, c.typ.NPos(), c.typ.NVel(), c.npos, c.nvel)
		}
	}
}
