package engine

import (
	"math"
	"testing"

	kmath "github.com/Faultbox/kforge/pkg/math"
	"github.com/Faultbox/kforge/pkg/model"
	"github.com/Faultbox/kforge/pkg/spec"
)

// hingeModel packs a tiny world -> arm model by hand: one hinge about
// y at the body origin, a site at the arm tip.
func hingeModel() *model.Model {
	m := model.New(model.Sizes{
		Nq: 1, Nv: 1, Nbody: 2, Njnt: 1, Nsite: 1, Nu: 1, Ntendon: 0,
	})
	m.BodyParentID[1] = 0
	m.BodyPos[3*1+2] = 1 // body at z=1
	m.BodyQuat[4*0] = 1
	m.BodyQuat[4*1] = 1
	m.BodyJntNum[1] = 1
	m.BodyJntAdr[1] = 0
	m.BodyDofNum[1] = 1
	m.BodyDofAdr[1] = 0

	m.JntType[0] = int32(spec.JointHinge)
	m.JntBodyID[0] = 1
	m.JntAxis[1] = 1 // y axis
	m.JntLimited[0] = 1
	m.JntRange[0] = 0
	m.JntRange[1] = math.Pi / 2

	m.SiteBodyID[0] = 1
	m.SitePos[0] = 1 // site at x=1 in body frame
	m.SiteQuat[0] = 1

	m.ActuatorTrnType[0] = int32(spec.TrnJoint)
	m.ActuatorTrnID[0] = 0
	m.ActuatorGear[0] = 1
	return m
}

func TestForwardHinge(t *testing.T) {
	m := hingeModel()
	k := NewKinematic()
	s := NewState(m)

	s.Qpos[0] = math.Pi / 2
	k.Forward(m, s)

	// rotating +90 deg about y takes body x to world -z
	site := kmath.Quat{W: s.XQuat[4], X: s.XQuat[5], Y: s.XQuat[6], Z: s.XQuat[7]}.
		RotateVec(kmath.Vec3{X: 1}).
		Add(kmath.Vec3{X: s.XPos[3], Y: s.XPos[4], Z: s.XPos[5]})
	if math.Abs(site.X) > 1e-12 || math.Abs(site.Z-0) > 1e-12 {
		t.Errorf("site position after rotation: got %v, want (0,0,0)", site)
	}
}

func TestSetLengthRangeHinge(t *testing.T) {
	m := hingeModel()
	k := NewKinematic()
	s := NewState(m)

	lr, err := k.SetLengthRange(m, s, 0, spec.DefaultLROpt())
	if err != nil {
		t.Fatalf("SetLengthRange failed: %v", err)
	}
	if lr[0] >= lr[1] {
		t.Fatalf("invalid range: %v", lr)
	}
	if math.Abs(lr[0]) > 1e-9 {
		t.Errorf("lower bound: got %v, want 0", lr[0])
	}
	if math.Abs(lr[1]-math.Pi/2) > 1e-9 {
		t.Errorf("upper bound: got %v, want pi/2", lr[1])
	}
}

func TestUnlimitedSlideFails(t *testing.T) {
	m := hingeModel()
	m.JntType[0] = int32(spec.JointSlide)
	m.JntLimited[0] = 0
	m.JntAxis[1] = 0
	m.JntAxis[2] = 1

	k := NewKinematic()
	if _, err := k.SetLengthRange(m, NewState(m), 0, spec.DefaultLROpt()); err == nil {
		t.Error("unlimited slide should fail length range")
	}
}

func TestErrorHandlerTrap(t *testing.T) {
	m := hingeModel()
	k := NewKinematic()
	s := NewState(m)
	s.Qpos[0] = math.NaN()

	var captured string
	restore := SwapErrorHandler(func(msg string) {
		captured = msg
		panic("trapped")
	})
	defer restore()

	func() {
		defer func() { recover() }()
		k.Forward(m, s)
	}()

	if captured == "" {
		t.Error("NaN in qpos should raise an engine error")
	}
}

func TestFixedTendonLength(t *testing.T) {
	m := model.New(model.Sizes{
		Nq: 1, Nv: 1, Nbody: 2, Njnt: 1, Ntendon: 1, Nwrap: 1,
	})
	m.BodyParentID[1] = 0
	m.BodyQuat[0] = 1
	m.BodyQuat[4] = 1
	m.BodyJntNum[1] = 1
	m.BodyDofNum[1] = 1
	m.JntType[0] = int32(spec.JointHinge)
	m.JntBodyID[0] = 1
	m.JntAxis[2] = 1
	m.TendonAdr[0] = 0
	m.TendonNum[0] = 1
	m.WrapType[0] = int32(spec.WrapJoint)
	m.WrapObjID[0] = 0
	m.WrapPrm[0] = 0.5

	k := NewKinematic()
	s := NewState(m)
	s.Qpos[0] = 2
	l, err := k.TendonLength(m, s, 0)
	if err != nil {
		t.Fatalf("TendonLength failed: %v", err)
	}
	if math.Abs(l-1.0) > 1e-12 {
		t.Errorf("fixed tendon length: got %v, want 1", l)
	}
}
