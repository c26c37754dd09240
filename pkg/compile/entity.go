package compile

import (
	"math"

	kmath "github.com/Faultbox/kforge/pkg/math"
	"github.com/Faultbox/kforge/pkg/spec"
)

// compileEntities resolves orientations and frames for every entity in
// the tree and computes per-geom mass properties.
func (c *Compiler) compileEntities() error {
	deg := c.spec.Compiler.Degrees
	seq := c.spec.Compiler.EulerSeq

	for _, b := range c.bodies {
		// frames first: children compose against resolved frames
		for _, f := range b.Frames {
			q, err := f.Alt.Resolve(f.Quat, deg, seq)
			if err != nil {
				return objErrorf(GeometryError, f.Name, b.ID, "frame orientation: %v", err).wrap(err)
			}
			f.Quat = q.Normalize()
		}

		if b.ID > 0 {
			q, err := b.Alt.Resolve(b.Quat, deg, seq)
			if err != nil {
				return objErrorf(GeometryError, b.Name, b.ID, "body orientation: %v", err).wrap(err)
			}
			b.Quat = q.Normalize()
			b.Pos, b.Quat = b.Frame.Accum(b.Pos, b.Quat)
			b.Frame = nil

			if b.ExplicitInertia() && spec.Defined(b.IPos.X) {
				iq, err := b.IAlt.Resolve(b.IQuat, deg, seq)
				if err != nil {
					return objErrorf(GeometryError, b.Name, b.ID, "inertial orientation: %v", err).wrap(err)
				}
				b.IQuat = iq.Normalize()
			}
		} else {
			if b.Pos.Len() != 0 || b.Quat != kmath.QuatIdentity() {
				return objErrorf(PhysicalError, b.Name, 0, "world body must have identity pose")
			}
		}

		for _, j := range b.Joints {
			if err := c.compileJoint(j); err != nil {
				return err
			}
		}
		for _, g := range b.Geoms {
			if err := c.compileGeom(g); err != nil {
				return err
			}
		}
		for _, x := range b.Sites {
			if err := c.compileSite(x); err != nil {
				return err
			}
		}
		for _, cam := range b.Cameras {
			if err := c.compileCamera(cam); err != nil {
				return err
			}
		}
		for _, l := range b.Lights {
			if err := c.compileLight(l); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Compiler) compileJoint(j *spec.Joint) error {
	axis, l := j.Axis.Normalize()
	if l == 0 && j.Type != spec.JointFree && j.Type != spec.JointBall {
		return objErrorf(GeometryError, j.Name, j.ID, "joint axis has near-zero length")
	}
	j.Axis = axis

	// fold the enclosing frame into pos and axis; the frame is
	// consumed here so recompiles do not reapply it
	if j.Frame != nil {
		var q kmath.Quat
		j.Pos, q = j.Frame.Accum(j.Pos, kmath.QuatIdentity())
		j.Axis = q.RotateVec(j.Axis)
		j.Frame = nil
	}

	if j.Limited {
		if j.Type == spec.JointFree {
			return objErrorf(ParseOrSpecError, j.Name, j.ID, "free joint cannot have limits")
		}
		if j.Range[0] >= j.Range[1] && j.Type != spec.JointBall {
			return objErrorf(ParseOrSpecError, j.Name, j.ID, "joint range must be strictly increasing")
		}
	}
	if j.Type == spec.JointBall && j.Range[0] != 0 {
		return objErrorf(ParseOrSpecError, j.Name, j.ID, "ball joint range must have zero lower bound")
	}

	if j.Stiffness < 0 || j.Damping < 0 || j.Armature < 0 || j.Frictionloss < 0 {
		return objErrorf(PhysicalError, j.Name, j.ID, "joint stiffness, damping, armature and frictionloss cannot be negative")
	}
	return nil
}

func (c *Compiler) compileGeom(g *spec.Geom) error {
	q, err := g.Alt.Resolve(g.Quat, c.spec.Compiler.Degrees, c.spec.Compiler.EulerSeq)
	if err != nil {
		return objErrorf(GeometryError, g.Name, g.ID, "geom orientation: %v", err).wrap(err)
	}
	g.Quat = q.Normalize()

	if spec.Defined(g.FromTo[0]) {
		if err := applyFromTo(g.Type, g.FromTo, &g.Pos, &g.Quat, &g.Size); err != nil {
			return objErrorf(GeometryError, g.Name, g.ID, "%v", err)
		}
	}
	g.Pos, g.Quat = g.Frame.Accum(g.Pos, g.Quat)
	g.Frame = nil

	if err := validateSize(g.Type, g.Size); err != nil {
		return objErrorf(GeometryError, g.Name, g.ID, "%v", err)
	}

	// resolve mesh/hfield early enough for mass properties
	if g.Type == spec.GeomMesh {
		if g.MeshName == "" {
			return objErrorf(ParseOrSpecError, g.Name, g.ID, "mesh geom must reference a mesh")
		}
	} else if g.MeshName != "" {
		return objErrorf(ParseOrSpecError, g.Name, g.ID, "mesh reference on non-mesh geom")
	}
	if g.Type == spec.GeomHField && g.HFieldName == "" {
		return objErrorf(ParseOrSpecError, g.Name, g.ID, "hfield geom must reference a heightfield")
	}

	if spec.Defined(g.Mass) && g.Mass < 0 {
		return objErrorf(PhysicalError, g.Name, g.ID, "geom mass cannot be negative")
	}
	if g.Density <= 0 {
		return objErrorf(PhysicalError, g.Name, g.ID, "geom density must be positive")
	}

	return c.geomProperties(g)
}

// applyFromTo derives pos, orientation and length from a segment.
func applyFromTo(typ spec.GeomType, ft [6]float64, pos *kmath.Vec3, quat *kmath.Quat, size *kmath.Vec3) error {
	switch typ {
	case spec.GeomCapsule, spec.GeomCylinder, spec.GeomEllipsoid, spec.GeomBox:
	default:
		return errorf(GeometryError, "fromto requires capsule, cylinder, ellipsoid or box, got %s", typ)
	}
	for _, v := range ft {
		if math.IsNaN(v) {
			return errorf(GeometryError, "fromto contains NaN")
		}
	}
	a := kmath.Vec3{X: ft[0], Y: ft[1], Z: ft[2]}
	b := kmath.Vec3{X: ft[3], Y: ft[4], Z: ft[5]}
	dir := b.Sub(a)
	dirn, l := dir.Normalize()
	if l < 1e-12 {
		return errorf(GeometryError, "fromto segment has zero length")
	}
	*pos = a.Add(b).Scale(0.5)
	*quat = kmath.QuatBetween(kmath.Vec3{Z: 1}, dirn)
	half := l / 2
	if typ == spec.GeomCapsule || typ == spec.GeomCylinder {
		size.Y = half
	} else {
		size.Z = half
	}
	return nil
}

// validateSize checks the per-type size requirements.
func validateSize(typ spec.GeomType, s kmath.Vec3) error {
	if s.IsNaN() {
		return errorf(GeometryError, "geom size contains NaN")
	}
	req := 0
	switch typ {
	case spec.GeomSphere:
		req = 1
	case spec.GeomCapsule, spec.GeomCylinder:
		req = 2
	case spec.GeomEllipsoid, spec.GeomBox:
		req = 3
	case spec.GeomPlane, spec.GeomHField, spec.GeomMesh, spec.GeomSDF:
		req = 0
	}
	sz := s.Array()
	for i := 0; i < req; i++ {
		if sz[i] <= 0 {
			return errorf(GeometryError, "geom size %d must be positive for %s", i, typ)
		}
	}
	for i := 0; i < 3; i++ {
		if sz[i] < 0 {
			return errorf(GeometryError, "geom sizes cannot be negative")
		}
	}
	return nil
}

// geomProperties computes mass, diagonal inertia, bounding radius and
// local AABB.
func (c *Compiler) geomProperties(g *spec.Geom) error {
	var volume float64
	var inertiaPerMass kmath.Vec3 // diagonal inertia for unit mass
	var half kmath.Vec3           // aabb half sizes
	r, h := g.Size.X, g.Size.Y

	switch g.Type {
	case spec.GeomSphere:
		volume = 4.0 / 3.0 * math.Pi * r * r * r
		i := 2.0 / 5.0 * r * r
		inertiaPerMass = kmath.Vec3{X: i, Y: i, Z: i}
		half = kmath.Vec3{X: r, Y: r, Z: r}
		g.RBound = r

	case spec.GeomCapsule:
		height := 2 * h
		volume = math.Pi * (r*r*height + 4.0/3.0*r*r*r)
		// split unit mass between cylinder and hemispheres, displace
		// the hemispheres along the axis
		ms := 4 * r / (4*r + 3*height)
		mc := 1 - ms
		si := 2 * ms * r * r / 5
		ix := mc*(3*r*r+height*height)/12 + si + ms*height*(3*r+2*height)/8
		iz := mc*r*r/2 + si
		inertiaPerMass = kmath.Vec3{X: ix, Y: ix, Z: iz}
		half = kmath.Vec3{X: r, Y: r, Z: r + h}
		g.RBound = r + h

	case spec.GeomCylinder:
		volume = math.Pi * r * r * 2 * h
		iz := r * r / 2
		ix := (3*r*r + 4*h*h) / 12
		inertiaPerMass = kmath.Vec3{X: ix, Y: ix, Z: iz}
		half = kmath.Vec3{X: r, Y: r, Z: h}
		g.RBound = math.Sqrt(r*r + h*h)

	case spec.GeomEllipsoid:
		s := g.Size
		volume = 4.0 / 3.0 * math.Pi * s.X * s.Y * s.Z
		inertiaPerMass = kmath.Vec3{
			X: (s.Y*s.Y + s.Z*s.Z) / 5,
			Y: (s.X*s.X + s.Z*s.Z) / 5,
			Z: (s.X*s.X + s.Y*s.Y) / 5,
		}
		half = s
		g.RBound = math.Max(s.X, math.Max(s.Y, s.Z))

	case spec.GeomBox:
		s := g.Size
		volume = 8 * s.X * s.Y * s.Z
		inertiaPerMass = kmath.Vec3{
			X: (s.Y*s.Y + s.Z*s.Z) / 3,
			Y: (s.X*s.X + s.Z*s.Z) / 3,
			Z: (s.X*s.X + s.Y*s.Y) / 3,
		}
		half = s
		g.RBound = s.Len()

	case spec.GeomMesh:
		// filled in by bindGeomMesh once the reference is bound
		return nil

	case spec.GeomPlane, spec.GeomHField, spec.GeomSDF:
		g.GeomMass = 0
		g.GeomInertia = kmath.Vec3{}
		big := 1e10
		g.AABB = [6]float64{0, 0, 0, big, big, big}
		g.RBound = 0
		return nil
	}

	if spec.Defined(g.Mass) {
		g.GeomMass = g.Mass
	} else {
		g.GeomMass = g.Density * volume
	}
	g.GeomInertia = inertiaPerMass.Scale(g.GeomMass)
	g.AABB = [6]float64{0, 0, 0, half.X, half.Y, half.Z}
	return nil
}

func (c *Compiler) compileSite(x *spec.Site) error {
	q, err := x.Alt.Resolve(x.Quat, c.spec.Compiler.Degrees, c.spec.Compiler.EulerSeq)
	if err != nil {
		return objErrorf(GeometryError, x.Name, x.ID, "site orientation: %v", err).wrap(err)
	}
	x.Quat = q.Normalize()
	if spec.Defined(x.FromTo[0]) {
		if err := applyFromTo(x.Type, x.FromTo, &x.Pos, &x.Quat, &x.Size); err != nil {
			return objErrorf(GeometryError, x.Name, x.ID, "%v", err)
		}
	}
	x.Pos, x.Quat = x.Frame.Accum(x.Pos, x.Quat)
	x.Frame = nil
	if err := validateSize(x.Type, x.Size); err != nil {
		return objErrorf(GeometryError, x.Name, x.ID, "%v", err)
	}
	return nil
}

func (c *Compiler) compileCamera(cam *spec.Camera) error {
	q, err := cam.Alt.Resolve(cam.Quat, c.spec.Compiler.Degrees, c.spec.Compiler.EulerSeq)
	if err != nil {
		return objErrorf(GeometryError, cam.Name, cam.ID, "camera orientation: %v", err).wrap(err)
	}
	cam.Quat = q.Normalize()
	cam.Pos, cam.Quat = cam.Frame.Accum(cam.Pos, cam.Quat)
	cam.Frame = nil

	if cam.Fovy <= 0 || cam.Fovy >= 180 {
		return objErrorf(ParseOrSpecError, cam.Name, cam.ID, "camera fovy must be in (0, 180)")
	}
	if cam.Resolution[0] < 1 || cam.Resolution[1] < 1 {
		return objErrorf(ParseOrSpecError, cam.Name, cam.ID, "camera resolution must be positive")
	}
	if (cam.Mode == spec.CamLightTargetBody || cam.Mode == spec.CamLightTargetBodyCom) && cam.Target == "" {
		return objErrorf(ParseOrSpecError, cam.Name, cam.ID, "camera target mode requires a target body")
	}
	return nil
}

func (c *Compiler) compileLight(l *spec.Light) error {
	dir, ln := l.Dir.Normalize()
	if ln == 0 {
		return objErrorf(GeometryError, l.Name, l.ID, "light direction has near-zero length")
	}
	l.Dir = dir
	if l.Frame != nil {
		var q kmath.Quat
		l.Pos, q = l.Frame.Accum(l.Pos, kmath.QuatIdentity())
		l.Dir = q.RotateVec(l.Dir)
		l.Frame = nil
	}
	if (l.Mode == spec.CamLightTargetBody || l.Mode == spec.CamLightTargetBodyCom) && l.Target == "" {
		return objErrorf(ParseOrSpecError, l.Name, l.ID, "light target mode requires a target body")
	}
	return nil
}
