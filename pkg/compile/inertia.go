package compile

import (
	"math"

	"gonum.org/v1/gonum/mat"

	kmath "github.com/Faultbox/kforge/pkg/math"
	"github.com/Faultbox/kforge/pkg/spec"
)

// consolidateInertia derives the inertial frame of every body: from
// explicit declarations, or from child geoms when inference is
// enabled, then clamps and validates.
func (c *Compiler) consolidateInertia() error {
	// the world carries no inertia
	w := c.bodies[0]
	w.Mass = 0
	w.Inertia = kmath.Vec3{}
	w.IPos = kmath.Vec3{}
	w.IQuat = kmath.QuatIdentity()

	comp := &c.spec.Compiler
	for _, b := range c.bodies[1:] {
		explicit := spec.Defined(b.IPos.X)
		infer := comp.InertiaFromGeom == spec.InertiaGeom ||
			(!explicit && comp.InertiaFromGeom == spec.InertiaAuto)

		switch {
		case infer:
			if err := c.inertiaFromGeoms(b); err != nil {
				return err
			}
		case explicit:
			if !spec.Defined(b.Mass) {
				return objErrorf(PhysicalError, b.Name, b.ID, "explicit inertial frame requires a mass")
			}
			if b.Mass < 0 {
				return objErrorf(PhysicalError, b.Name, b.ID, "body mass cannot be negative")
			}
			if spec.Defined(b.FullInertia[0]) {
				diag, iq, err := diagonalizeInertia(b.FullInertia)
				if err != nil {
					return objErrorf(PhysicalError, b.Name, b.ID, "%v", err)
				}
				b.Inertia = diag
				b.IQuat = b.IQuat.Mul(iq).Normalize()
			} else if !spec.Defined(b.Inertia.X) {
				b.Inertia = kmath.Vec3{}
			}
		default:
			// no explicit frame and inference disabled
			if spec.Defined(b.Mass) && b.Mass < 0 {
				return objErrorf(PhysicalError, b.Name, b.ID, "body mass cannot be negative")
			}
			if !spec.Defined(b.Mass) {
				b.Mass = 0
			}
			b.IPos = kmath.Vec3{}
			b.IQuat = kmath.QuatIdentity()
			if !spec.Defined(b.Inertia.X) {
				b.Inertia = kmath.Vec3{}
			}
		}

		// clamp, then validate the triangle inequality
		b.Mass = math.Max(b.Mass, comp.BoundMass)
		b.Inertia = kmath.Vec3{
			X: math.Max(b.Inertia.X, comp.BoundInertia),
			Y: math.Max(b.Inertia.Y, comp.BoundInertia),
			Z: math.Max(b.Inertia.Z, comp.BoundInertia),
		}
		if err := c.balanceInertia(b); err != nil {
			return err
		}
	}

	if comp.SetTotalMass > 0 {
		var total float64
		for _, b := range c.bodies[1:] {
			total += b.Mass
		}
		if total > kmath.MinVal {
			scale := comp.SetTotalMass / total
			for _, b := range c.bodies[1:] {
				b.Mass *= scale
				b.Inertia = b.Inertia.Scale(scale)
			}
		}
	}
	return nil
}

// inertiaFromGeoms computes the body inertial frame from the geoms
// whose group falls inside the model's inertia group range.
func (c *Compiler) inertiaFromGeoms(b *spec.Body) error {
	lo, hi := c.spec.Compiler.InertiaGroupRange[0], c.spec.Compiler.InertiaGroupRange[1]
	var sel []*spec.Geom
	for _, g := range b.Geoms {
		if g.Group >= lo && g.Group <= hi {
			sel = append(sel, g)
		}
	}

	if len(sel) == 0 {
		b.Mass = 0
		b.Inertia = kmath.Vec3{}
		b.IPos = kmath.Vec3{}
		b.IQuat = kmath.QuatIdentity()
		return nil
	}

	var mass float64
	var com kmath.Vec3
	for _, g := range sel {
		mass += g.GeomMass
		com = com.Add(g.Pos.Scale(g.GeomMass))
	}
	if mass < kmath.MinVal {
		b.Mass = 0
		b.Inertia = kmath.Vec3{}
		b.IPos = kmath.Vec3{}
		b.IQuat = kmath.QuatIdentity()
		return nil
	}
	com = com.Scale(1 / mass)

	var full [6]float64
	for _, g := range sel {
		addInertia(&full, g.GeomInertia, g.Quat, g.Pos.Sub(com), g.GeomMass)
	}

	diag, iq, err := diagonalizeInertia(full)
	if err != nil {
		return objErrorf(PhysicalError, b.Name, b.ID, "%v", err)
	}
	if diag.Z < kmath.MinVal { // smallest eigenvalue
		return objErrorf(GeometryError, b.Name, b.ID, "flat inertia computed from geoms")
	}

	b.Mass = mass
	b.IPos = com
	b.IQuat = iq
	b.Inertia = diag
	return nil
}

// addInertia accumulates a displaced, rotated diagonal inertia into a
// full symmetric tensor (xx, yy, zz, xy, xz, yz).
func addInertia(full *[6]float64, diag kmath.Vec3, q kmath.Quat, d kmath.Vec3, m float64) {
	r := q.ToMat3()
	// I = R * diag * R^T
	var rot [6]float64
	rot[0] = r[0]*r[0]*diag.X + r[1]*r[1]*diag.Y + r[2]*r[2]*diag.Z
	rot[1] = r[3]*r[3]*diag.X + r[4]*r[4]*diag.Y + r[5]*r[5]*diag.Z
	rot[2] = r[6]*r[6]*diag.X + r[7]*r[7]*diag.Y + r[8]*r[8]*diag.Z
	rot[3] = r[0]*r[3]*diag.X + r[1]*r[4]*diag.Y + r[2]*r[5]*diag.Z
	rot[4] = r[0]*r[6]*diag.X + r[1]*r[7]*diag.Y + r[2]*r[8]*diag.Z
	rot[5] = r[3]*r[6]*diag.X + r[4]*r[7]*diag.Y + r[5]*r[8]*diag.Z

	// parallel axis displacement
	d2 := d.Dot(d)
	full[0] += rot[0] + m*(d2-d.X*d.X)
	full[1] += rot[1] + m*(d2-d.Y*d.Y)
	full[2] += rot[2] + m*(d2-d.Z*d.Z)
	full[3] += rot[3] - m*d.X*d.Y
	full[4] += rot[4] - m*d.X*d.Z
	full[5] += rot[5] - m*d.Y*d.Z
}

// diagonalizeInertia eigendecomposes a full symmetric inertia tensor.
// Eigenvalues are returned largest-first; eigenvectors become the
// inertial orientation.
func diagonalizeInertia(full [6]float64) (kmath.Vec3, kmath.Quat, error) {
	sym := mat.NewSymDense(3, []float64{
		full[0], full[3], full[4],
		full[3], full[1], full[5],
		full[4], full[5], full[2],
	})
	var es mat.EigenSym
	if !es.Factorize(sym, true) {
		return kmath.Vec3{}, kmath.QuatIdentity(), errorf(PhysicalError, "inertia eigendecomposition failed")
	}
	vals := es.Values(nil) // ascending
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	// reorder largest-first
	order := [3]int{2, 1, 0}
	var cols [3]kmath.Vec3
	var diag [3]float64
	for k, idx := range order {
		diag[k] = vals[idx]
		cols[k] = kmath.Vec3{X: vecs.At(0, idx), Y: vecs.At(1, idx), Z: vecs.At(2, idx)}
	}
	// enforce a right-handed frame
	if cols[0].Cross(cols[1]).Dot(cols[2]) < 0 {
		cols[2] = cols[2].Scale(-1)
	}
	q := kmath.Mat3FromCols(cols[0], cols[1], cols[2]).ToQuat()
	return kmath.Vec3{X: diag[0], Y: diag[1], Z: diag[2]}, q, nil
}

// balanceInertia validates the triangle inequality, averaging the
// diagonal when the model opts into balancing.
func (c *Compiler) balanceInertia(b *spec.Body) error {
	i := b.Inertia
	ok := i.X+i.Y >= i.Z*(1-1e-12) &&
		i.Y+i.Z >= i.X*(1-1e-12) &&
		i.X+i.Z >= i.Y*(1-1e-12)
	if ok {
		return nil
	}
	if c.spec.Compiler.BalanceInertia {
		m := (i.X + i.Y + i.Z) / 3
		b.Inertia = kmath.Vec3{X: m, Y: m, Z: m}
		c.warn(objErrorf(PhysicalError, b.Name, b.ID, "inertia violates triangle inequality, averaged to %g", m))
		return nil
	}
	return objErrorf(PhysicalError, b.Name, b.ID, "inertia must satisfy A + B >= C; use balanceinertia to override")
}

// checkMasses enforces that every moving weld group carries mass and
// rotational inertia.
func (c *Compiler) checkMasses() error {
	for _, b := range c.bodies[1:] {
		if len(b.Joints) == 0 {
			continue
		}
		mass := 0.0
		inertia := math.Inf(1)
		for _, o := range c.bodies[1:] {
			if o.WeldID != b.ID {
				continue
			}
			mass += o.Mass
			if o.Mass > 0 {
				inertia = math.Min(inertia, math.Min(o.Inertia.X, math.Min(o.Inertia.Y, o.Inertia.Z)))
			}
		}
		if mass < kmath.MinVal {
			return objErrorf(PhysicalError, b.Name, b.ID, "moving body must have mass, on the body or a static child")
		}
		rotational := false
		for _, j := range b.Joints {
			if j.Type != spec.JointSlide {
				rotational = true
			}
		}
		if rotational && (inertia == math.Inf(1) || inertia < kmath.MinVal) {
			return objErrorf(PhysicalError, b.Name, b.ID, "moving body must have positive diagonal inertia")
		}
	}
	return nil
}
