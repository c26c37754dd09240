package compile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kmath "github.com/Faultbox/kforge/pkg/math"
	"github.com/Faultbox/kforge/pkg/spec"
)

func TestDiagonalizeInertiaRecovers(t *testing.T) {
	// rotate a known diagonal, diagonalize, expect the eigenvalues back
	diag := kmath.Vec3{X: 3, Y: 2, Z: 1}
	q := kmath.QuatFromAxisAngle(kmath.Vec3{X: 0.6, Y: 0, Z: 0.8}, 0.7)

	var full [6]float64
	addInertia(&full, diag, q, kmath.Vec3{}, 0)

	got, gotQ, err := diagonalizeInertia(full)
	require.NoError(t, err)
	assert.InDelta(t, 3, got.X, 1e-10)
	assert.InDelta(t, 2, got.Y, 1e-10)
	assert.InDelta(t, 1, got.Z, 1e-10)

	// the recovered frame reproduces the tensor
	var back [6]float64
	addInertia(&back, got, gotQ, kmath.Vec3{}, 0)
	for i := 0; i < 6; i++ {
		assert.InDelta(t, full[i], back[i], 1e-10, "component %d", i)
	}
}

func TestInertiaFromGeomsTwoSpheres(t *testing.T) {
	// two identical spheres at +/- x: com at origin, parallel-axis
	// contributions on y and z
	s := spec.New()
	s.Compiler.Degrees = false
	b := s.AddBody(nil, "")
	b.Name = "dumbbell"
	j := s.AddJoint(b, "")
	j.Type = spec.JointHinge
	for _, x := range []float64{-0.5, 0.5} {
		g := s.AddGeom(b, "")
		g.Type = spec.GeomSphere
		g.Size = kmath.Vec3{X: 0.1}
		g.Pos = kmath.Vec3{X: x}
		g.Density = 1000
	}

	m, err := New(s).Compile()
	require.NoError(t, err)

	sphereMass := 4.0 / 3.0 * math.Pi * 0.001 * 1000
	assert.InDelta(t, 2*sphereMass, m.BodyMass[1], 1e-9)
	assert.InDelta(t, 0, m.BodyIPos[3], 1e-12)

	si := 2.0 / 5.0 * sphereMass * 0.01
	ix := 2 * si
	iyz := 2 * (si + sphereMass*0.25)
	// eigenvalues are sorted largest-first
	assert.InDelta(t, iyz, m.BodyInertia[3], 1e-9)
	assert.InDelta(t, iyz, m.BodyInertia[4], 1e-9)
	assert.InDelta(t, ix, m.BodyInertia[5], 1e-9)
}

func TestInertiaGroupRange(t *testing.T) {
	s := spec.New()
	s.Compiler.Degrees = false
	s.Compiler.InertiaGroupRange = [2]int32{0, 2}
	b := s.AddBody(nil, "")
	b.Name = "b"
	s.AddJoint(b, "").Type = spec.JointHinge
	g1 := s.AddGeom(b, "")
	g1.Type = spec.GeomSphere
	g1.Size = kmath.Vec3{X: 0.1}
	g2 := s.AddGeom(b, "")
	g2.Type = spec.GeomSphere
	g2.Size = kmath.Vec3{X: 1}
	g2.Group = 5 // outside the range: excluded from inertia

	m, err := New(s).Compile()
	require.NoError(t, err)

	sphereMass := 4.0 / 3.0 * math.Pi * 0.001 * 1000
	assert.InDelta(t, sphereMass, m.BodyMass[1], 1e-9)
}

func TestBoundMassClamp(t *testing.T) {
	s := pendulum()
	s.Compiler.BoundMass = 1e6
	m, err := New(s).Compile()
	require.NoError(t, err)
	assert.Equal(t, 1e6, m.BodyMass[1])
}

func TestSetTotalMass(t *testing.T) {
	s := pendulum()
	s.Compiler.SetTotalMass = 10
	m, err := New(s).Compile()
	require.NoError(t, err)
	assert.InDelta(t, 10, m.BodySubtreeMass[0], 1e-9)
}

func TestExplicitFullInertia(t *testing.T) {
	s := spec.New()
	s.Compiler.Degrees = false
	b := s.AddBody(nil, "")
	b.Name = "b"
	b.Mass = 2
	b.IPos = kmath.Vec3{}
	// a full tensor that is a rotated diag(3,2,1)
	q := kmath.QuatFromAxisAngle(kmath.Vec3{Z: 1}, 0.5)
	var full [6]float64
	addInertia(&full, kmath.Vec3{X: 3, Y: 2, Z: 1}, q, kmath.Vec3{}, 0)
	b.FullInertia = full

	m, err := New(s).Compile()
	require.NoError(t, err)
	assert.InDelta(t, 3, m.BodyInertia[3], 1e-10)
	assert.InDelta(t, 2, m.BodyInertia[4], 1e-10)
	assert.InDelta(t, 1, m.BodyInertia[5], 1e-10)
}
