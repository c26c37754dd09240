package spec

import (
	kmath "github.com/Faultbox/kforge/pkg/math"
)

// JointType is the kind of a joint.
type JointType int32

const (
	JointFree JointType = iota
	JointBall
	JointSlide
	JointHinge
)

// NPos returns the number of qpos entries the joint type occupies.
func (t JointType) NPos() int32 {
	switch t {
	case JointFree:
		return 7
	case JointBall:
		return 4
	default:
		return 1
	}
}

// NVel returns the number of dofs the joint type occupies.
func (t JointType) NVel() int32 {
	switch t {
	case JointFree:
		return 6
	case JointBall:
		return 3
	default:
		return 1
	}
}

// String returns the joint type name.
func (t JointType) String() string {
	switch t {
	case JointFree:
		return "free"
	case JointBall:
		return "ball"
	case JointSlide:
		return "slide"
	case JointHinge:
		return "hinge"
	default:
		return "unknown"
	}
}

// Joint connects a body to its parent with one to six dofs.
type Joint struct {
	Element

	Type  JointType
	Group int32
	Pos   kmath.Vec3
	Axis  kmath.Vec3

	Stiffness    float64
	Damping      float64
	Frictionloss float64
	Armature     float64

	Limited       bool
	ActFrcLimited bool
	Range         [2]float64
	ActFrcRange   [2]float64
	Margin        float64

	Ref       float64 // reference position subtracted in qpos0
	SpringRef float64 // spring equilibrium used for qpos_spring

	SolRefLimit  [2]float64
	SolImpLimit  [5]float64
	SolRefFrict  [2]float64
	SolImpFrict  [5]float64
	UserData     []float64
	ActGravcomp  bool
	AlignedToPos bool

	Frame *Frame
	Body  *Body

	// Derived during compile.
	QposAdr int32
	DofAdr  int32
}

// AddJoint appends a joint to body, inheriting from the given default
// class.
func (s *Spec) AddJoint(body *Body, class string) *Joint {
	def := s.classOrMain(classOr(class, body.Class))
	j := new(Joint)
	*j = def.Joint
	j.Element = Element{Class: def.Name}
	j.Body = body
	body.Joints = append(body.Joints, j)
	return j
}

func defaultJoint() Joint {
	return Joint{
		Type:        JointHinge,
		Axis:        kmath.Vec3{Z: 1},
		SolRefLimit: [2]float64{0.02, 1},
		SolImpLimit: [5]float64{0.9, 0.95, 0.001, 0.5, 2},
		SolRefFrict: [2]float64{0.02, 1},
		SolImpFrict: [5]float64{0.9, 0.95, 0.001, 0.5, 2},
	}
}
