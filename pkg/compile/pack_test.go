package compile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kmath "github.com/Faultbox/kforge/pkg/math"
	"github.com/Faultbox/kforge/pkg/model"
	"github.com/Faultbox/kforge/pkg/spec"
)

// chain builds world -> b0 -> b1 -> ... with one hinge each.
func chain(n int) *spec.Spec {
	s := spec.New()
	s.Compiler.Degrees = false
	parent := s.World
	for i := 0; i < n; i++ {
		b := s.AddBody(parent, "")
		b.Name = "link" + string(rune('0'+i))
		b.Pos = kmath.Vec3{Z: 0.5}
		j := s.AddJoint(b, "")
		j.Name = "hinge" + string(rune('0'+i))
		j.Type = spec.JointHinge
		j.Axis = kmath.Vec3{Y: 1}
		g := s.AddGeom(b, "")
		g.Type = spec.GeomCapsule
		g.Size = kmath.Vec3{X: 0.05, Y: 0.2}
		parent = b
	}
	return s
}

func TestAddressInvariants(t *testing.T) {
	m, err := New(chain(4)).Compile()
	require.NoError(t, err)

	// sum(body_dofnum) == nv, sum(jnt npos) == nq
	var dofsum, npos int32
	for i := int32(0); i < m.Nbody; i++ {
		dofsum += m.BodyDofNum[i]
	}
	for i := int32(0); i < m.Njnt; i++ {
		npos += spec.JointType(m.JntType[i]).NPos()
	}
	assert.Equal(t, m.Nv, dofsum)
	assert.Equal(t, m.Nq, npos)

	// nD == 2 nM - nv, and each Madr span is 1 + depth
	assert.Equal(t, 2*m.NM-m.Nv, m.ND)
	for i := int32(0); i < m.Nv; i++ {
		depth := int32(0)
		for j := m.DofParentID[i]; j >= 0; j = m.DofParentID[j] {
			depth++
		}
		var next int32
		if i+1 < m.Nv {
			next = m.DofMadr[i+1]
		} else {
			next = m.NM
		}
		assert.Equal(t, 1+depth, next-m.DofMadr[i], "dof %d", i)
	}

	// chain of 4: depths 1..4, nM = 10
	assert.Equal(t, int32(10), m.NM)
	assert.Equal(t, int32(1), m.Ntree)
}

func TestRootAndWeldIDs(t *testing.T) {
	s := chain(2)
	// a second root under world
	b := s.AddBody(nil, "")
	b.Name = "floater"
	s.AddJoint(b, "").Type = spec.JointFree
	g := s.AddGeom(b, "")
	g.Type = spec.GeomBox
	g.Size = kmath.Vec3{X: 0.1, Y: 0.1, Z: 0.1}
	// a static child welded to the floater
	st := s.AddBody(b, "")
	st.Name = "cargo"
	sg := s.AddGeom(st, "")
	sg.Type = spec.GeomSphere
	sg.Size = kmath.Vec3{X: 0.05}

	m, err := New(s).Compile()
	require.NoError(t, err)

	for i := int32(1); i < m.Nbody; i++ {
		p := m.BodyParentID[i]
		if p == 0 {
			assert.Equal(t, i, m.BodyRootID[i], "body %d", i)
		} else {
			assert.Equal(t, m.BodyRootID[p], m.BodyRootID[i], "body %d", i)
		}
	}

	// cargo has no joints: welded to its parent
	cargo := m.FindName(spec.ObjBody, "cargo")
	floater := m.FindName(spec.ObjBody, "floater")
	require.GreaterOrEqual(t, cargo, int32(0))
	assert.Equal(t, floater, m.BodyWeldID[cargo])
	assert.Equal(t, int32(2), m.Ntree)
}

func TestPairSorting(t *testing.T) {
	s := chain(3)
	var geomNames []string
	for _, b := range s.Bodies() {
		for _, g := range b.Geoms {
			g.Name = "g" + b.Name
			geomNames = append(geomNames, g.Name)
		}
	}
	require.Len(t, geomNames, 3)

	// declare pairs out of order; geom2 on the earlier body
	p1 := s.AddPair("")
	p1.Geom1 = geomNames[2]
	p1.Geom2 = geomNames[1]
	p2 := s.AddPair("")
	p2.Geom1 = geomNames[1]
	p2.Geom2 = geomNames[0]

	e := s.AddExclude()
	e.Body1 = "link1"
	e.Body2 = "link0"

	m, err := New(s).Compile()
	require.NoError(t, err)

	var prev uint32
	for i := int32(0); i < m.Npair; i++ {
		sig := m.PairSignature[i]
		b1 := m.GeomBodyID[m.PairGeom1[i]]
		b2 := m.GeomBodyID[m.PairGeom2[i]]
		assert.LessOrEqual(t, b1, b2, "pair %d bodies ordered", i)
		assert.Equal(t, uint32(b1)<<16|uint32(b2), sig, "pair %d signature", i)
		assert.GreaterOrEqual(t, sig, prev, "pair %d sorted", i)
		prev = sig
	}

	// exclude bodies ordered low-high
	assert.Equal(t, uint32(1)<<16|2, m.ExcludeSignature[0])
}

func TestKeyframeQuatNormalization(t *testing.T) {
	s := spec.New()
	s.Compiler.Degrees = false
	b := s.AddBody(nil, "")
	b.Name = "floater"
	s.AddJoint(b, "").Type = spec.JointFree
	g := s.AddGeom(b, "")
	g.Type = spec.GeomBox
	g.Size = kmath.Vec3{X: 0.1, Y: 0.1, Z: 0.1}

	k := s.AddKey()
	k.Name = "start"
	k.Qpos = []float64{0, 0, 1, 2, 0, 0, 2} // non-unit free quat

	m, err := New(s).Compile()
	require.NoError(t, err)

	q := m.KeyQpos[3:7]
	norm := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	assert.InDelta(t, 1.0, norm, 1e-6)

	// missing qpos defaults to qpos0
	k2 := s.AddKey()
	k2.Name = "empty"
	m, err = New(s).Compile()
	require.NoError(t, err)
	for i := int32(0); i < m.Nq; i++ {
		assert.Equal(t, m.Qpos0[i], m.KeyQpos[m.Nq+i])
	}
}

func TestNamesMapLookup(t *testing.T) {
	s := chain(3)
	site := s.AddSite(s.World.Bodies[0], "")
	site.Name = "probe"

	m, err := New(s).Compile()
	require.NoError(t, err)

	// every named entity resolves through the packed map
	for i := int32(0); i < m.Nbody; i++ {
		name := m.NameAt(m.NameBodyAdr[i])
		if name == "" {
			continue
		}
		assert.Equal(t, i, m.FindName(spec.ObjBody, name), "body %q", name)
	}
	for i := int32(0); i < m.Njnt; i++ {
		name := m.NameAt(m.NameJntAdr[i])
		if name == "" {
			continue
		}
		assert.Equal(t, i, m.FindName(spec.ObjJoint, name), "joint %q", name)
	}
	assert.Equal(t, int32(0), m.FindName(spec.ObjSite, "probe"))
	assert.Equal(t, int32(-1), m.FindName(spec.ObjBody, "missing"))
	assert.Equal(t, int32(-1), m.FindName(spec.ObjBody, ""))

	// map capacity respects the load multiple per kind
	total := m.Nbody + m.Njnt + m.Ngeom + m.Nsite + m.Ncam + m.Nlight +
		m.Nflex + m.Nmesh + m.Nskin + m.Nhfield + m.Ntex + m.Nmat +
		m.Npair + m.Nexclude + m.Neq + m.Ntendon + m.Nu + m.Nsensor +
		m.Nnumeric + m.Ntext + m.Ntuple + m.Nkey + m.Nplugin
	assert.Equal(t, model.LoadMultiple*total, m.NnamesMap)
}

func TestArenaSizing(t *testing.T) {
	s := pendulum()
	s.Memory = 12345
	m, err := New(s).Compile()
	require.NoError(t, err)
	assert.Equal(t, int64(12345), m.Narena)

	s = pendulum()
	s.NStack = 4096
	m, err = New(s).Compile()
	require.NoError(t, err)
	assert.Equal(t, int64(8*4096), m.Narena)

	s = pendulum()
	m, err = New(s).Compile()
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.Narena%(1<<20), "arena rounds to a megabyte")
	assert.Greater(t, m.Narena, int64(0))
}

func TestDiscardVisual(t *testing.T) {
	s := chain(2)
	s.Compiler.DiscardVisual = true

	// a visual-only geom and a material on the colliding one
	mat := s.AddMaterial("")
	mat.Name = "shiny"
	deco := s.AddGeom(s.World.Bodies[0], "")
	deco.Name = "deco"
	deco.Type = spec.GeomSphere
	deco.Size = kmath.Vec3{X: 0.01}
	deco.Contype = 0
	deco.Conaffinity = 0
	s.World.Bodies[0].Geoms[0].Material = "shiny"

	m, err := New(s).Compile()
	require.NoError(t, err)

	assert.Equal(t, int32(0), m.Nmat)
	assert.Equal(t, int32(2), m.Ngeom, "visual geom dropped")
	assert.Equal(t, int32(-1), m.FindName(spec.ObjGeom, "deco"))
	for i := int32(0); i < m.Ngeom; i++ {
		assert.Equal(t, int32(-1), m.GeomMatID[i])
	}
}

func TestSimpleClassification(t *testing.T) {
	// slider on a world child with centered inertia: level 2
	s := spec.New()
	s.Compiler.Degrees = false
	b := s.AddBody(nil, "")
	b.Name = "slider"
	j := s.AddJoint(b, "")
	j.Type = spec.JointSlide
	j.Axis = kmath.Vec3{Z: 1}
	g := s.AddGeom(b, "")
	g.Type = spec.GeomSphere
	g.Size = kmath.Vec3{X: 0.1}

	m, err := New(s).Compile()
	require.NoError(t, err)
	assert.Equal(t, int32(2), m.BodySimple[1])
	assert.Equal(t, int32(1), m.DofSimpleNum[0])

	// hinge instead: level 1
	s2 := pendulum()
	m2, err := New(s2).Compile()
	require.NoError(t, err)
	assert.Equal(t, int32(1), m2.BodySimple[1])

	// off-axis hinge: general
	s3 := pendulum()
	s3.World.Bodies[0].Joints[0].Axis = kmath.Vec3{X: 1, Y: 1}
	m3, err := New(s3).Compile()
	require.NoError(t, err)
	assert.Equal(t, int32(0), m3.BodySimple[1])
}
