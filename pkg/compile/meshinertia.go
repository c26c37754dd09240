package compile

import (
	"math"

	kmath "github.com/Faultbox/kforge/pkg/math"
	"github.com/Faultbox/kforge/pkg/spec"
)

// meshMassProperties computes the volume, center of mass and
// equivalent-inertia box of a triangulated mesh by signed-tetrahedron
// integration against the origin. For open or degenerate surfaces it
// falls back to the axis-aligned bounding box.
func meshMassProperties(m *spec.Mesh) {
	if len(m.Face) == 0 {
		meshBoxFallback(m)
		return
	}

	var vol float64
	var com kmath.Vec3
	var exx, eyy, ezz, exy, exz, eyz float64

	at := func(i int32) kmath.Vec3 {
		return kmath.Vec3{X: m.Vert[3*i], Y: m.Vert[3*i+1], Z: m.Vert[3*i+2]}
	}

	for f := 0; f < len(m.Face); f += 3 {
		a, b, cc := at(m.Face[f]), at(m.Face[f+1]), at(m.Face[f+2])
		det := a.Dot(b.Cross(cc))
		vol += det / 6
		com = com.Add(a.Add(b).Add(cc).Scale(det / 24))

		// canonical second moments over the tetrahedron (0,a,b,c)
		sq := func(pa, pb, pc float64) float64 {
			return pa*pa + pb*pb + pc*pc + pa*pb + pa*pc + pb*pc
		}
		exx += det / 60 * sq(a.X, b.X, cc.X)
		eyy += det / 60 * sq(a.Y, b.Y, cc.Y)
		ezz += det / 60 * sq(a.Z, b.Z, cc.Z)
		mix := func(pa, qa, pb, qb, pc, qc float64) float64 {
			return 2*(pa*qa+pb*qb+pc*qc) +
				pa*qb + pa*qc + pb*qa + pb*qc + pc*qa + pc*qb
		}
		exy += det / 120 * mix(a.X, a.Y, b.X, b.Y, cc.X, cc.Y)
		exz += det / 120 * mix(a.X, a.Z, b.X, b.Z, cc.X, cc.Z)
		eyz += det / 120 * mix(a.Y, a.Z, b.Y, b.Z, cc.Y, cc.Z)
	}

	if vol < kmath.MinVal {
		meshBoxFallback(m)
		return
	}

	com = com.Scale(1 / vol)

	// unit-density inertia about the center of mass
	ixx := (eyy + ezz) - vol*(com.Y*com.Y+com.Z*com.Z)
	iyy := (exx + ezz) - vol*(com.X*com.X+com.Z*com.Z)
	izz := (exx + eyy) - vol*(com.X*com.X+com.Y*com.Y)
	_ = exy
	_ = exz
	_ = eyz

	m.Volume = vol

	// equivalent box: I_x = V*(by^2+bz^2)/3 per unit density
	bx2 := 3 * (iyy + izz - ixx) / (2 * vol)
	by2 := 3 * (ixx + izz - iyy) / (2 * vol)
	bz2 := 3 * (ixx + iyy - izz) / (2 * vol)
	m.InertiaBox = [3]float64{
		math.Sqrt(math.Max(bx2, 0)),
		math.Sqrt(math.Max(by2, 0)),
		math.Sqrt(math.Max(bz2, 0)),
	}

	// shift the mesh frame to the center of mass
	for i := 0; i < len(m.Vert); i += 3 {
		m.Vert[i] -= com.X
		m.Vert[i+1] -= com.Y
		m.Vert[i+2] -= com.Z
	}
	m.Pos = m.Pos.Add(com)
	for k := 0; k < 3; k++ {
		m.AAMM[k] -= com.Array()[k]
		m.AAMM[k+3] -= com.Array()[k]
	}
}

// meshBoxFallback derives volume and inertia box from the bounding
// box.
func meshBoxFallback(m *spec.Mesh) {
	hx := (m.AAMM[3] - m.AAMM[0]) / 2
	hy := (m.AAMM[4] - m.AAMM[1]) / 2
	hz := (m.AAMM[5] - m.AAMM[2]) / 2
	m.Volume = 8 * hx * hy * hz
	m.InertiaBox = [3]float64{hx, hy, hz}
}
