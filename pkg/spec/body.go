package spec

import (
	kmath "github.com/Faultbox/kforge/pkg/math"
)

// Body is a node of the kinematic tree. The world body is the root and
// owns every other entity in the tree.
type Body struct {
	Element

	Pos  kmath.Vec3
	Quat kmath.Quat
	Alt  kmath.Alt

	// Inertial frame. IPos.X is NaN while undefined; the compiler then
	// infers the frame from geoms or fails.
	IPos        kmath.Vec3
	IQuat       kmath.Quat
	IAlt        kmath.Alt
	Mass        float64
	Inertia     kmath.Vec3 // diagonal inertia in the inertial frame
	FullInertia [6]float64 // (xx, yy, zz, xy, xz, yz); NaN in slot 0 while unset

	Mocap    bool
	Gravcomp float64
	UserData []float64

	Bodies  []*Body
	Joints  []*Joint
	Geoms   []*Geom
	Sites   []*Site
	Cameras []*Camera
	Lights  []*Light
	Frames  []*Frame

	Frame  *Frame // enclosing frame, nil if none
	Parent *Body

	// Derived during compile.
	ParentID    int32
	WeldID      int32
	RootID      int32
	TreeID      int32
	DofNum      int32
	DofAdr      int32
	JntNum      int32
	JntAdr      int32
	MocapID     int32
	SubtreeDofs int32
	LastDof     int32
	Simple      int32
	SameFrame   bool
	SubtreeMass float64
}

func newBody(parent *Body, def *Default) *Body {
	b := &Body{
		Element: Element{Class: def.Name},
		Quat:    kmath.QuatIdentity(),
		Alt:     kmath.NewAlt(),
		IPos:    kmath.Vec3{X: Undefined()},
		IQuat:   kmath.QuatIdentity(),
		IAlt:    kmath.NewAlt(),
		Mass:    Undefined(),
		Inertia: kmath.Vec3{X: Undefined()},
		Parent:  parent,
		LastDof: -1,
		MocapID: -1,
	}
	b.FullInertia[0] = Undefined()
	return b
}

// AddBody appends a child body to parent, inheriting from the given
// default class (empty for the parent's class).
func (s *Spec) AddBody(parent *Body, class string) *Body {
	if parent == nil {
		parent = s.World
	}
	def := s.classOrMain(classOr(class, parent.Class))
	b := newBody(parent, def)
	parent.Bodies = append(parent.Bodies, b)
	return b
}

// AddFrame appends a frame to the body. Frames compose an extra pose
// between the body and the entities added under the frame.
func (s *Spec) AddFrame(body *Body, parent *Frame) *Frame {
	if body == nil {
		body = s.World
	}
	f := &Frame{
		Quat:   kmath.QuatIdentity(),
		Alt:    kmath.NewAlt(),
		Parent: parent,
		Body:   body,
	}
	body.Frames = append(body.Frames, f)
	return f
}

// ExplicitInertia reports whether the author set any part of the
// inertial frame directly.
func (b *Body) ExplicitInertia() bool {
	return Defined(b.IPos.X) || Defined(b.Mass) ||
		Defined(b.Inertia.X) || Defined(b.FullInertia[0])
}

func classOr(class, fallback string) string {
	if class != "" {
		return class
	}
	return fallback
}

// Frame is a named intermediate transform applied to entities declared
// under it, composed parent-first at compile time.
type Frame struct {
	Name   string
	Pos    kmath.Vec3
	Quat   kmath.Quat
	Alt    kmath.Alt
	Parent *Frame
	Body   *Body

	resolved bool
}

// Accum composes the full frame chain onto a local pose: outermost
// frame first, innermost last.
func (f *Frame) Accum(pos kmath.Vec3, quat kmath.Quat) (kmath.Vec3, kmath.Quat) {
	if f == nil {
		return pos, quat
	}
	p, q := f.Parent.Accum(f.Pos, f.Quat)
	return p.Add(q.RotateVec(pos)), q.Mul(quat)
}
