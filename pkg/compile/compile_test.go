package compile

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kmath "github.com/Faultbox/kforge/pkg/math"
	"github.com/Faultbox/kforge/pkg/spec"
)

// pendulum builds the minimal one-hinge model used across tests.
func pendulum() *spec.Spec {
	s := spec.New()
	s.Compiler.Degrees = false
	b := s.AddBody(nil, "")
	b.Name = "arm"
	j := s.AddJoint(b, "")
	j.Name = "swing"
	j.Type = spec.JointHinge
	j.Axis = kmath.Vec3{Z: 1}
	j.Limited = true
	j.Range = [2]float64{-1, 1}
	g := s.AddGeom(b, "")
	g.Name = "ball"
	g.Type = spec.GeomSphere
	g.Size = kmath.Vec3{X: 1}
	g.Density = 1000
	return s
}

func TestScenarioA_Minimal(t *testing.T) {
	s := pendulum()
	m, err := New(s).Compile()
	require.NoError(t, err)

	assert.Equal(t, int32(1), m.Nq)
	assert.Equal(t, int32(1), m.Nv)
	assert.Equal(t, int32(0), m.Nu)
	assert.Equal(t, int32(2), m.Nbody)
	assert.Equal(t, int32(1), m.NM)
	assert.Equal(t, int32(1), m.ND)

	// sphere: 4/3 pi r^3 * density
	wantMass := 4.0 / 3.0 * math.Pi * 1000
	assert.InDelta(t, wantMass, m.BodyMass[1], 1e-2)
	assert.InDelta(t, 4188.79, m.BodyMass[1], 0.01)

	assert.Equal(t, -1.0, m.JntRange[0])
	assert.Equal(t, 1.0, m.JntRange[1])
}

func TestScenarioB_FreeJoint(t *testing.T) {
	s := spec.New()
	s.Compiler.Degrees = false
	b := s.AddBody(nil, "")
	b.Name = "box"
	b.Pos = kmath.Vec3{X: 1, Y: 2, Z: 3}
	j := s.AddJoint(b, "")
	j.Type = spec.JointFree
	g := s.AddGeom(b, "")
	g.Type = spec.GeomBox
	g.Size = kmath.Vec3{X: 1, Y: 1, Z: 1}
	g.Density = 1000

	m, err := New(s).Compile()
	require.NoError(t, err)

	assert.Equal(t, int32(7), m.Nq)
	assert.Equal(t, int32(6), m.Nv)
	assert.Equal(t, int32(spec.JointFree), m.JntType[0])

	want := []float64{1, 2, 3, 1, 0, 0, 0}
	for i, w := range want {
		assert.Equal(t, w, m.Qpos0[i], "qpos0[%d]", i)
	}

	// each free dof chains to the previous: 1+2+3+4+5+6
	assert.Equal(t, int32(21), m.NM)
	assert.Equal(t, int32(36), m.ND)
	assert.Equal(t, int32(1), m.Ntree)
}

func TestScenarioC_StaticFuse(t *testing.T) {
	s := spec.New()
	s.Compiler.Degrees = false
	s.Compiler.FuseStatic = true

	a := s.AddBody(nil, "")
	a.Name = "A"
	a.Mass = 2
	a.Inertia = kmath.Vec3{X: 1, Y: 1, Z: 1}
	a.IPos = kmath.Vec3{X: 1}

	b := s.AddBody(a, "")
	b.Name = "B"
	b.Mass = 3
	b.Inertia = kmath.Vec3{X: 1, Y: 1, Z: 1}
	b.IPos = kmath.Vec3{}

	m, err := New(s).Compile()
	require.NoError(t, err)

	require.Equal(t, int32(1), m.Nbody)
	assert.InDelta(t, 5.0, m.BodyMass[0], 1e-12)
	assert.InDelta(t, 0.4, m.BodyIPos[0], 1e-12)
	assert.InDelta(t, 0.0, m.BodyIPos[1], 1e-12)
	assert.InDelta(t, 0.0, m.BodyIPos[2], 1e-12)
}

func TestFusePreservesInertia(t *testing.T) {
	// the fused tensor about the new com must equal the sum of the
	// original tensors displaced there
	s := spec.New()
	s.Compiler.Degrees = false
	s.Compiler.FuseStatic = true

	a := s.AddBody(nil, "")
	a.Name = "A"
	a.Mass = 2
	a.Inertia = kmath.Vec3{X: 1, Y: 2, Z: 2.5}
	a.IPos = kmath.Vec3{X: 1, Y: 0.5}

	b := s.AddBody(a, "")
	b.Name = "B"
	b.Pos = kmath.Vec3{Z: 0.5}
	b.Mass = 3
	b.Inertia = kmath.Vec3{X: 1, Y: 1, Z: 1}
	b.IPos = kmath.Vec3{}

	m, err := New(s).Compile()
	require.NoError(t, err)
	require.Equal(t, int32(1), m.Nbody)

	com := kmath.Vec3{X: m.BodyIPos[0], Y: m.BodyIPos[1], Z: m.BodyIPos[2]}

	// expected: both original tensors displaced to com
	var want [6]float64
	addInertia(&want, kmath.Vec3{X: 1, Y: 2, Z: 2.5}, kmath.QuatIdentity(), kmath.Vec3{X: 1, Y: 0.5}.Sub(com), 2)
	addInertia(&want, kmath.Vec3{X: 1, Y: 1, Z: 1}, kmath.QuatIdentity(), kmath.Vec3{Z: 0.5}.Sub(com), 3)

	// actual: reconstruct full tensor from the packed diagonal form
	var got [6]float64
	iq := kmath.Quat{W: m.BodyIQuat[0], X: m.BodyIQuat[1], Y: m.BodyIQuat[2], Z: m.BodyIQuat[3]}
	diag := kmath.Vec3{X: m.BodyInertia[0], Y: m.BodyInertia[1], Z: m.BodyInertia[2]}
	addInertia(&got, diag, iq, kmath.Vec3{}, 5)

	for i := 0; i < 6; i++ {
		assert.InDelta(t, want[i], got[i], 1e-9, "tensor component %d", i)
	}
}

func TestScenarioD_DuplicateName(t *testing.T) {
	s := spec.New()
	s.Compiler.Degrees = false
	for i := 0; i < 2; i++ {
		g := s.AddGeom(s.World, "")
		g.Name = "foo"
		g.Type = spec.GeomPlane
	}

	_, err := New(s).Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repeated name 'foo' in geom")
}

func TestScenarioE_TriangleInequality(t *testing.T) {
	build := func(balance bool) *spec.Spec {
		s := spec.New()
		s.Compiler.Degrees = false
		s.Compiler.BalanceInertia = balance
		b := s.AddBody(nil, "")
		b.Name = "bad"
		b.Mass = 1
		b.Inertia = kmath.Vec3{X: 1, Y: 1, Z: 3}
		b.IPos = kmath.Vec3{}
		return s
	}

	_, err := New(build(false)).Compile()
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, PhysicalError, ce.Kind)

	m, err := New(build(true)).Compile()
	require.NoError(t, err)
	for k := 0; k < 3; k++ {
		assert.InDelta(t, 5.0/3.0, m.BodyInertia[3+k], 1e-12)
	}
}

// twoActuators builds the length-range model: two hinge joints with
// range [0, pi/2], one joint actuator each.
func twoActuators(threaded bool) *spec.Spec {
	s := spec.New()
	s.Compiler.Degrees = false
	s.Compiler.UseThread = threaded
	s.Compiler.LROpt.Mode = spec.LRAll
	s.Compiler.LROpt.UseExisting = false

	for _, name := range []string{"a", "b"} {
		b := s.AddBody(nil, "")
		b.Name = name
		j := s.AddJoint(b, "")
		j.Name = "j" + name
		j.Type = spec.JointHinge
		j.Axis = kmath.Vec3{Z: 1}
		j.Limited = true
		j.Range = [2]float64{0, math.Pi / 2}
		g := s.AddGeom(b, "")
		g.Type = spec.GeomSphere
		g.Size = kmath.Vec3{X: 0.1}
		g.Pos = kmath.Vec3{X: 0.3}

		a := s.AddActuator("")
		a.Name = "act" + name
		a.Trn = spec.TrnJoint
		a.Target = "j" + name
	}
	return s
}

func TestScenarioF_LengthRange(t *testing.T) {
	mt, err := New(twoActuators(true)).Compile()
	require.NoError(t, err)
	ms, err := New(twoActuators(false)).Compile()
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		assert.Less(t, mt.ActuatorLengthRange[2*i], mt.ActuatorLengthRange[2*i+1], "actuator %d", i)
		assert.InDelta(t, ms.ActuatorLengthRange[2*i], mt.ActuatorLengthRange[2*i], 1e-12, "lo %d", i)
		assert.InDelta(t, ms.ActuatorLengthRange[2*i+1], mt.ActuatorLengthRange[2*i+1], 1e-12, "hi %d", i)
	}
	assert.InDelta(t, 0, mt.ActuatorLengthRange[0], 0.05)
	assert.InDelta(t, math.Pi/2, mt.ActuatorLengthRange[1], 0.05)
}

func TestRecompileIdempotent(t *testing.T) {
	s := pendulum()
	c := New(s)
	m1, err := c.Compile()
	require.NoError(t, err)
	m2, err := c.Compile()
	require.NoError(t, err)

	assert.Equal(t, m1.Sizes, m2.Sizes)
	assert.Equal(t, m1.Qpos0, m2.Qpos0)
	assert.Equal(t, m1.BodyMass, m2.BodyMass)
	assert.Equal(t, m1.JntRange, m2.JntRange)
	assert.Equal(t, m1.Names, m2.Names)
	assert.Equal(t, m1.NamesMap, m2.NamesMap)
}

func TestDecompileRoundTrip(t *testing.T) {
	s := pendulum()
	c := New(s)
	m1, err := c.Compile()
	require.NoError(t, err)

	require.NoError(t, c.Decompile(m1))

	m2, err := c.Compile()
	require.NoError(t, err)
	assert.Equal(t, m1.Sizes, m2.Sizes)
	assert.Equal(t, m1.Qpos0, m2.Qpos0)
	assert.Equal(t, m1.BodyPos, m2.BodyPos)
	assert.Equal(t, m1.BodyInertia, m2.BodyInertia)
	assert.Equal(t, m1.JntRange, m2.JntRange)
	assert.Equal(t, m1.GeomSize, m2.GeomSize)
}

func TestFailureLeavesNoModel(t *testing.T) {
	s := spec.New()
	s.Compiler.Degrees = false
	b := s.AddBody(nil, "")
	b.Name = "empty"
	j := s.AddJoint(b, "")
	j.Type = spec.JointHinge
	// no geoms, no explicit inertia: moving body without mass

	c := New(s)
	m, err := c.Compile()
	assert.Nil(t, m)
	require.Error(t, err)
	assert.Equal(t, StateFailed, c.State())
	require.NotNil(t, c.Error())
	assert.Equal(t, PhysicalError, c.Error().Kind)
	assert.True(t, strings.HasPrefix(c.Error().Error(), "Error: "))
}

func TestFreeJointPlacement(t *testing.T) {
	// free joint below the top level
	s := spec.New()
	s.Compiler.Degrees = false
	top := s.AddBody(nil, "")
	top.Name = "top"
	j := s.AddJoint(top, "")
	j.Type = spec.JointHinge
	g := s.AddGeom(top, "")
	g.Type = spec.GeomSphere
	g.Size = kmath.Vec3{X: 0.1}

	child := s.AddBody(top, "")
	child.Name = "child"
	jf := s.AddJoint(child, "")
	jf.Type = spec.JointFree
	cg := s.AddGeom(child, "")
	cg.Type = spec.GeomSphere
	cg.Size = kmath.Vec3{X: 0.1}

	_, err := New(s).Compile()
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, PhysicalError, ce.Kind)

	// free joint with a sibling joint
	s2 := spec.New()
	s2.Compiler.Degrees = false
	b2 := s2.AddBody(nil, "")
	b2.Name = "b"
	s2.AddJoint(b2, "").Type = spec.JointFree
	s2.AddJoint(b2, "").Type = spec.JointHinge
	g2 := s2.AddGeom(b2, "")
	g2.Type = spec.GeomSphere
	g2.Size = kmath.Vec3{X: 0.1}

	_, err = New(s2).Compile()
	require.Error(t, err)
}

func TestPlaneOnMovingBody(t *testing.T) {
	s := spec.New()
	s.Compiler.Degrees = false
	b := s.AddBody(nil, "")
	b.Name = "mover"
	s.AddJoint(b, "").Type = spec.JointHinge
	g := s.AddGeom(b, "")
	g.Type = spec.GeomSphere
	g.Size = kmath.Vec3{X: 0.1}
	p := s.AddGeom(b, "")
	p.Type = spec.GeomPlane

	_, err := New(s).Compile()
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, PhysicalError, ce.Kind)
	assert.Contains(t, err.Error(), "plane")
}

func TestEmptyTendonPath(t *testing.T) {
	s := pendulum()
	td := s.AddTendon("")
	td.Name = "empty"

	_, err := New(s).Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty path")
}

func TestEmptyTuple(t *testing.T) {
	s := pendulum()
	tp := s.AddTuple()
	tp.Name = "empty"

	_, err := New(s).Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tuple")
}

func TestDanglingReference(t *testing.T) {
	s := pendulum()
	geom := s.AddGeom(s.World, "")
	geom.Type = spec.GeomPlane
	geom.Material = "nope"

	c := New(s)
	_, err := c.Compile()
	require.Error(t, err)
	assert.Equal(t, ReferenceError, c.Error().Kind)
	assert.Contains(t, err.Error(), "unknown material 'nope'")
}
