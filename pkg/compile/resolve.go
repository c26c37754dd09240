package compile

import (
	"math"
	"sort"

	kmath "github.com/Faultbox/kforge/pkg/math"
	"github.com/Faultbox/kforge/pkg/spec"
)

// discardVisualAssets drops materials, textures and texture
// coordinates when visual-only data is discarded. Geoms and meshes are
// pruned later, once collision participation is known.
func (c *Compiler) discardVisualAssets() error {
	if !c.spec.Compiler.DiscardVisual {
		return nil
	}
	c.spec.Materials = nil
	c.spec.Textures = nil
	delete(c.ids, spec.ObjMaterial)
	delete(c.ids, spec.ObjTexture)

	for _, m := range c.spec.Meshes {
		m.UserTexcoord = nil
	}
	for _, f := range c.spec.Flexes {
		f.Texcoord = nil
	}
	for _, b := range c.bodies {
		for _, g := range b.Geoms {
			g.Material = ""
		}
		for _, x := range b.Sites {
			x.Material = ""
		}
	}
	for _, k := range c.spec.Skins {
		k.Material = ""
	}
	for _, t := range c.spec.Tendons {
		t.Material = ""
	}
	return nil
}

// discardVisualGeoms removes geoms that never collide and meshes no
// remaining geom references, then re-densifies ids.
func (c *Compiler) discardVisualGeoms() {
	if !c.spec.Compiler.DiscardVisual {
		return
	}

	for _, b := range c.bodies {
		kept := b.Geoms[:0]
		for _, g := range b.Geoms {
			if !g.Visual() {
				kept = append(kept, g)
			}
		}
		b.Geoms = kept
	}

	used := make(map[string]bool)
	c.geoms = nil
	for _, b := range c.bodies {
		c.geoms = append(c.geoms, b.Geoms...)
		for _, g := range b.Geoms {
			if g.Type == spec.GeomMesh {
				used[g.MeshName] = true
			}
		}
	}

	keptMeshes := c.spec.Meshes[:0]
	for _, m := range c.spec.Meshes {
		if used[m.Name] {
			keptMeshes = append(keptMeshes, m)
		}
	}
	c.spec.Meshes = keptMeshes

	// re-densify ids and the name index
	c.assignIDs()
	delete(c.ids, spec.ObjGeom)
	delete(c.ids, spec.ObjMesh)
	for _, g := range c.geoms {
		if g.Name != "" {
			if c.ids[spec.ObjGeom] == nil {
				c.ids[spec.ObjGeom] = map[string]int32{}
			}
			c.ids[spec.ObjGeom][g.Name] = g.ID
		}
	}
	for _, m := range c.spec.Meshes {
		if m.Name != "" {
			if c.ids[spec.ObjMesh] == nil {
				c.ids[spec.ObjMesh] = map[string]int32{}
			}
			c.ids[spec.ObjMesh][m.Name] = m.ID
		}
	}
}

// resolveReferences converts every textual cross-reference into an
// integer id and completes the entity data that depends on bound
// assets.
func (c *Compiler) resolveReferences() error {
	if err := c.resolvePlugins(); err != nil {
		return err
	}
	c.discardVisualGeoms()

	// geoms: mesh, hfield, material
	for _, g := range c.geoms {
		switch g.Type {
		case spec.GeomMesh:
			id, ok := c.findID(spec.ObjMesh, g.MeshName)
			if !ok {
				return objErrorf(ReferenceError, g.Name, g.ID, "unknown mesh '%s'", g.MeshName)
			}
			g.MeshID = id
			c.bindGeomMesh(g, c.spec.Meshes[id])
		case spec.GeomHField:
			id, ok := c.findID(spec.ObjHField, g.HFieldName)
			if !ok {
				return objErrorf(ReferenceError, g.Name, g.ID, "unknown heightfield '%s'", g.HFieldName)
			}
			g.HFieldID = id
			hs := c.spec.HFields[id].Size
			g.RBound = math.Sqrt(hs[0]*hs[0] + hs[1]*hs[1] + math.Max(hs[2]*hs[2], hs[3]*hs[3]))
		case spec.GeomSDF:
			if g.Plugin != "" {
				id, err := c.bindPlugin(g.Name, g.ID, g.Plugin, spec.CapSDF)
				if err != nil {
					return err
				}
				g.PluginID = id
			}
		}
		var err error
		if g.MatID, err = c.resolveMaterial(g.Name, g.ID, g.Material); err != nil {
			return err
		}
	}

	for _, x := range c.sites {
		var err error
		if x.MatID, err = c.resolveMaterial(x.Name, x.ID, x.Material); err != nil {
			return err
		}
	}
	for _, k := range c.spec.Skins {
		var err error
		if k.MatID, err = c.resolveMaterial(k.Name, k.ID, k.Material); err != nil {
			return err
		}
		for bi := range k.Bones {
			b := &k.Bones[bi]
			id, ok := c.findID(spec.ObjBody, b.Body)
			if !ok {
				return objErrorf(ReferenceError, k.Name, k.ID, "unknown body '%s' in skin bone %d", b.Body, bi)
			}
			b.BodyID = id
		}
	}
	for _, f := range c.spec.Flexes {
		var err error
		if f.MatID, err = c.resolveMaterial(f.Name, f.ID, f.Material); err != nil {
			return err
		}
		f.VertBodyID = make([]int32, len(f.VertBody))
		for i, name := range f.VertBody {
			id, ok := c.findID(spec.ObjBody, name)
			if !ok {
				return objErrorf(ReferenceError, f.Name, f.ID, "unknown body '%s' for flex vertex %d", name, i)
			}
			f.VertBodyID[i] = id
		}
	}

	// materials: texture
	for _, m := range c.spec.Materials {
		if m.Texture == "" {
			m.TexID = -1
			continue
		}
		id, ok := c.findID(spec.ObjTexture, m.Texture)
		if !ok {
			return objErrorf(ReferenceError, m.Name, m.ID, "unknown texture '%s'", m.Texture)
		}
		m.TexID = id
	}

	// cameras and lights: target bodies
	for _, cam := range c.cameras {
		if cam.Target == "" {
			cam.TargetBodyID = -1
			continue
		}
		id, ok := c.findID(spec.ObjBody, cam.Target)
		if !ok {
			return objErrorf(ReferenceError, cam.Name, cam.ID, "unknown target body '%s'", cam.Target)
		}
		cam.TargetBodyID = id
	}
	for _, l := range c.lights {
		if l.Target == "" {
			l.TargetBodyID = -1
			continue
		}
		id, ok := c.findID(spec.ObjBody, l.Target)
		if !ok {
			return objErrorf(ReferenceError, l.Name, l.ID, "unknown target body '%s'", l.Target)
		}
		l.TargetBodyID = id
	}

	// pairs: geoms, ordered signature
	for _, p := range c.spec.Pairs {
		id1, ok := c.findID(spec.ObjGeom, p.Geom1)
		if !ok {
			return objErrorf(ReferenceError, p.Name, p.ID, "unknown geom '%s' in pair", p.Geom1)
		}
		id2, ok := c.findID(spec.ObjGeom, p.Geom2)
		if !ok {
			return objErrorf(ReferenceError, p.Name, p.ID, "unknown geom '%s' in pair", p.Geom2)
		}
		b1 := c.geoms[id1].Body.ID
		b2 := c.geoms[id2].Body.ID
		if b1 > b2 {
			b1, b2 = b2, b1
			id1, id2 = id2, id1
		}
		p.Geom1ID, p.Geom2ID = id1, id2
		p.Signature = uint32(b1)<<16 | uint32(b2)
	}

	// excludes: bodies, ordered signature
	for _, e := range c.spec.Excludes {
		id1, ok := c.findID(spec.ObjBody, e.Body1)
		if !ok {
			return objErrorf(ReferenceError, e.Name, e.ID, "unknown body '%s' in exclude", e.Body1)
		}
		id2, ok := c.findID(spec.ObjBody, e.Body2)
		if !ok {
			return objErrorf(ReferenceError, e.Name, e.ID, "unknown body '%s' in exclude", e.Body2)
		}
		if id1 == id2 {
			return objErrorf(ReferenceError, e.Name, e.ID, "exclude references the same body twice")
		}
		if id1 > id2 {
			id1, id2 = id2, id1
		}
		e.Body1ID, e.Body2ID = id1, id2
		e.Signature = uint32(id1)<<16 | uint32(id2)
	}

	// equalities
	for _, eq := range c.spec.Equalities {
		if err := c.resolveEquality(eq); err != nil {
			return err
		}
	}

	// tendons
	for _, t := range c.spec.Tendons {
		if err := c.resolveTendon(t); err != nil {
			return err
		}
	}

	// actuators
	for _, a := range c.spec.Actuators {
		if err := c.resolveActuator(a); err != nil {
			return err
		}
	}

	// sensors
	for _, x := range c.spec.Sensors {
		if err := c.resolveSensor(x); err != nil {
			return err
		}
	}

	// tuples: typed references, repeats rejected
	for _, t := range c.spec.Tuples {
		if len(t.Entries) == 0 {
			return objErrorf(ParseOrSpecError, t.Name, t.ID, "tuple cannot be empty")
		}
		seen := make(map[[2]int32]bool)
		for i := range t.Entries {
			e := &t.Entries[i]
			id, ok := c.findID(e.ObjTyp, e.ObjName)
			if !ok {
				return objErrorf(ReferenceError, t.Name, t.ID, "unknown %s '%s' in tuple", e.ObjTyp, e.ObjName)
			}
			e.ObjID = id
			key := [2]int32{int32(e.ObjTyp), id}
			if seen[key] {
				return objErrorf(ReferenceError, t.Name, t.ID, "repeated object '%s' in tuple", e.ObjName)
			}
			seen[key] = true
		}
	}

	return nil
}

// bindGeomMesh folds the mesh frame into the geom pose and derives
// mass properties from the mesh.
func (c *Compiler) bindGeomMesh(g *spec.Geom, m *spec.Mesh) {
	g.Pos = g.Pos.Add(g.Quat.RotateVec(m.Pos))
	g.Quat = g.Quat.Mul(m.Quat)

	if spec.Defined(g.Mass) {
		g.GeomMass = g.Mass
	} else {
		g.GeomMass = g.Density * m.Volume
	}
	bx, by, bz := m.InertiaBox[0], m.InertiaBox[1], m.InertiaBox[2]
	g.GeomInertia = kmath.Vec3{
		X: g.GeomMass * (by*by + bz*bz) / 3,
		Y: g.GeomMass * (bx*bx + bz*bz) / 3,
		Z: g.GeomMass * (bx*bx + by*by) / 3,
	}

	cx := (m.AAMM[0] + m.AAMM[3]) / 2
	cy := (m.AAMM[1] + m.AAMM[4]) / 2
	cz := (m.AAMM[2] + m.AAMM[5]) / 2
	g.AABB = [6]float64{
		cx, cy, cz,
		(m.AAMM[3] - m.AAMM[0]) / 2,
		(m.AAMM[4] - m.AAMM[1]) / 2,
		(m.AAMM[5] - m.AAMM[2]) / 2,
	}
	hx := math.Max(math.Abs(m.AAMM[0]), math.Abs(m.AAMM[3]))
	hy := math.Max(math.Abs(m.AAMM[1]), math.Abs(m.AAMM[4]))
	hz := math.Max(math.Abs(m.AAMM[2]), math.Abs(m.AAMM[5]))
	g.RBound = math.Sqrt(hx*hx + hy*hy + hz*hz)
}

// resolveMaterial maps an optional material name to an id.
func (c *Compiler) resolveMaterial(owner string, ownerID int32, name string) (int32, error) {
	if name == "" {
		return -1, nil
	}
	id, ok := c.findID(spec.ObjMaterial, name)
	if !ok {
		return -1, objErrorf(ReferenceError, owner, ownerID, "unknown material '%s'", name)
	}
	return id, nil
}

func (c *Compiler) resolveEquality(eq *spec.Equality) error {
	var typ spec.ObjType
	switch eq.Type {
	case spec.EqConnect, spec.EqWeld:
		typ = spec.ObjBody
	case spec.EqJoint:
		typ = spec.ObjJoint
	case spec.EqTendon:
		typ = spec.ObjTendon
	case spec.EqFlex:
		typ = spec.ObjFlex
	default:
		return objErrorf(ParseOrSpecError, eq.Name, eq.ID, "invalid equality type")
	}
	eq.ObjTyp = typ

	id1, ok := c.findID(typ, eq.Name1)
	if !ok {
		return objErrorf(ReferenceError, eq.Name, eq.ID, "unknown %s '%s' in equality", typ, eq.Name1)
	}
	eq.Obj1ID = id1

	if eq.Name2 == "" {
		// world body for connect/weld, absent second operand otherwise
		if typ == spec.ObjBody {
			eq.Obj2ID = 0
		} else {
			eq.Obj2ID = -1
		}
		return nil
	}
	if eq.Type == spec.EqFlex {
		return objErrorf(ParseOrSpecError, eq.Name, eq.ID, "flex equality takes a single operand")
	}
	id2, ok := c.findID(typ, eq.Name2)
	if !ok {
		return objErrorf(ReferenceError, eq.Name, eq.ID, "unknown %s '%s' in equality", typ, eq.Name2)
	}
	eq.Obj2ID = id2
	return nil
}

// resolveTendon binds the wrap path and validates its shape: fixed
// tendons are all-joint; spatial paths start and end with sites and
// wrapping geoms sit between two sites.
func (c *Compiler) resolveTendon(t *spec.Tendon) error {
	if len(t.Wraps) == 0 {
		return objErrorf(ParseOrSpecError, t.Name, t.ID, "tendon has an empty path")
	}

	fixed := false
	for _, w := range t.Wraps {
		if w.Type == spec.WrapJoint {
			fixed = true
			break
		}
	}

	if fixed {
		for _, w := range t.Wraps {
			if w.Type != spec.WrapJoint {
				return objErrorf(ParseOrSpecError, t.Name, t.ID, "fixed tendon can only contain joints")
			}
			id, ok := c.findID(spec.ObjJoint, w.ObjName)
			if !ok {
				return objErrorf(ReferenceError, t.Name, t.ID, "unknown joint '%s' in tendon", w.ObjName)
			}
			jt := c.joints[id].Type
			if jt != spec.JointHinge && jt != spec.JointSlide {
				return objErrorf(ParseOrSpecError, t.Name, t.ID, "fixed tendon can only use hinge and slide joints")
			}
			w.ObjID = id
		}
		return nil
	}

	if t.Wraps[0].Type != spec.WrapSite || t.Wraps[len(t.Wraps)-1].Type != spec.WrapSite {
		return objErrorf(ParseOrSpecError, t.Name, t.ID, "spatial tendon must start and end with a site")
	}
	for i, w := range t.Wraps {
		switch w.Type {
		case spec.WrapSite:
			id, ok := c.findID(spec.ObjSite, w.ObjName)
			if !ok {
				return objErrorf(ReferenceError, t.Name, t.ID, "unknown site '%s' in tendon", w.ObjName)
			}
			w.ObjID = id
		case spec.WrapGeom:
			if t.Wraps[i-1].Type != spec.WrapSite || t.Wraps[i+1].Type != spec.WrapSite {
				return objErrorf(ParseOrSpecError, t.Name, t.ID, "wrapping geom must be bracketed by sites")
			}
			id, ok := c.findID(spec.ObjGeom, w.ObjName)
			if !ok {
				return objErrorf(ReferenceError, t.Name, t.ID, "unknown geom '%s' in tendon", w.ObjName)
			}
			g := c.geoms[id]
			if g.Type != spec.GeomSphere && g.Type != spec.GeomCylinder {
				return objErrorf(ParseOrSpecError, t.Name, t.ID, "tendon can only wrap spheres and cylinders")
			}
			w.ObjID = id
			if w.SideSite != "" {
				sid, ok := c.findID(spec.ObjSite, w.SideSite)
				if !ok {
					return objErrorf(ReferenceError, t.Name, t.ID, "unknown side site '%s' in tendon", w.SideSite)
				}
				w.SideSiteID = sid
			}
		case spec.WrapPulley:
			if w.Prm <= 0 {
				return objErrorf(ParseOrSpecError, t.Name, t.ID, "pulley divisor must be positive")
			}
		}
	}
	return nil
}

func (c *Compiler) resolveActuator(a *spec.Actuator) error {
	if a.Plugin != "" {
		id, err := c.bindPlugin(a.Name, a.ID, a.Plugin, spec.CapActuator)
		if err != nil {
			return err
		}
		a.PluginID = id
	}

	a.TrnID = [2]int32{-1, -1}
	switch a.Trn {
	case spec.TrnJoint, spec.TrnJointInParent:
		id, ok := c.findID(spec.ObjJoint, a.Target)
		if !ok {
			return objErrorf(ReferenceError, a.Name, a.ID, "unknown joint '%s' in actuator", a.Target)
		}
		a.TrnID[0] = id
	case spec.TrnTendon:
		id, ok := c.findID(spec.ObjTendon, a.Target)
		if !ok {
			return objErrorf(ReferenceError, a.Name, a.ID, "unknown tendon '%s' in actuator", a.Target)
		}
		a.TrnID[0] = id
	case spec.TrnSliderCrank:
		id, ok := c.findID(spec.ObjSite, a.Target)
		if !ok {
			return objErrorf(ReferenceError, a.Name, a.ID, "unknown site '%s' in actuator", a.Target)
		}
		a.TrnID[0] = id
		sid, ok := c.findID(spec.ObjSite, a.SliderSite)
		if !ok {
			return objErrorf(ReferenceError, a.Name, a.ID, "unknown slider site '%s' in actuator", a.SliderSite)
		}
		a.TrnID[1] = sid
		if a.CrankLength <= 0 {
			return objErrorf(ParseOrSpecError, a.Name, a.ID, "slider-crank requires a positive crank length")
		}
	case spec.TrnSite:
		id, ok := c.findID(spec.ObjSite, a.Target)
		if !ok {
			return objErrorf(ReferenceError, a.Name, a.ID, "unknown site '%s' in actuator", a.Target)
		}
		a.TrnID[0] = id
		if a.RefSite != "" {
			rid, ok := c.findID(spec.ObjSite, a.RefSite)
			if !ok {
				return objErrorf(ReferenceError, a.Name, a.ID, "unknown reference site '%s' in actuator", a.RefSite)
			}
			a.TrnID[1] = rid
		}
	case spec.TrnBody:
		id, ok := c.findID(spec.ObjBody, a.Target)
		if !ok {
			return objErrorf(ReferenceError, a.Name, a.ID, "unknown body '%s' in actuator", a.Target)
		}
		a.TrnID[0] = id
	default:
		return objErrorf(ParseOrSpecError, a.Name, a.ID, "invalid actuator transmission")
	}

	// activation dimension
	switch {
	case a.ActDim >= 0:
		if a.ActDim > 1 && a.Dyn != spec.DynUser {
			return objErrorf(ParseOrSpecError, a.Name, a.ID, "actdim > 1 requires user dynamics")
		}
		if a.ActDim == 0 && a.Dyn != spec.DynNone {
			return objErrorf(ParseOrSpecError, a.Name, a.ID, "stateful dynamics requires actdim > 0")
		}
		a.ActNum = a.ActDim
	case a.Dyn == spec.DynNone:
		a.ActNum = 0
	default:
		a.ActNum = 1
	}

	if a.CtrlLimited && a.CtrlRange[0] >= a.CtrlRange[1] {
		return objErrorf(ParseOrSpecError, a.Name, a.ID, "actuator ctrl range must be strictly increasing")
	}
	if a.ForceLimited && a.ForceRange[0] >= a.ForceRange[1] {
		return objErrorf(ParseOrSpecError, a.Name, a.ID, "actuator force range must be strictly increasing")
	}
	if a.ActLimited && a.ActRange[0] >= a.ActRange[1] {
		return objErrorf(ParseOrSpecError, a.Name, a.ID, "actuator act range must be strictly increasing")
	}
	return nil
}

func (c *Compiler) resolveSensor(x *spec.Sensor) error {
	meta := x.Type.Meta()
	x.Datatype = meta.Datatype
	x.Stage = meta.Stage

	switch x.Type {
	case spec.SensorPlugin:
		if x.Plugin == "" {
			return objErrorf(PluginError, x.Name, x.ID, "plugin sensor requires a plugin instance")
		}
		id, err := c.bindPlugin(x.Name, x.ID, x.Plugin, spec.CapSensor)
		if err != nil {
			return err
		}
		x.PluginID = id
		x.Dim = c.spec.Plugins[id].SensorDim
	case spec.SensorUser:
		if x.Dim < 1 {
			return objErrorf(ParseOrSpecError, x.Name, x.ID, "user sensor requires a positive dimension")
		}
	default:
		x.Dim = meta.Dim
	}

	objType := meta.ObjType
	if objType == spec.ObjUnknown {
		objType = x.ObjTyp // frame sensors declare their own kind
	}
	if objType != spec.ObjUnknown && x.ObjName != "" {
		if frameSensor(x.Type) {
			switch objType {
			case spec.ObjBody, spec.ObjGeom, spec.ObjSite, spec.ObjCamera:
			default:
				return objErrorf(ReferenceError, x.Name, x.ID, "frame sensor cannot attach to a %s", objType)
			}
		}
		id, ok := c.findID(objType, x.ObjName)
		if !ok {
			return objErrorf(ReferenceError, x.Name, x.ID, "unknown %s '%s' in sensor", objType, x.ObjName)
		}
		x.ObjTyp = objType
		x.ObjID = id
	} else if meta.ObjType != spec.ObjUnknown {
		return objErrorf(ParseOrSpecError, x.Name, x.ID, "sensor requires an attached %s", meta.ObjType)
	} else if frameSensor(x.Type) {
		return objErrorf(ParseOrSpecError, x.Name, x.ID, "frame sensor requires an attached object")
	}

	if x.RefName != "" {
		id, ok := c.findID(x.RefTyp, x.RefName)
		if !ok {
			return objErrorf(ReferenceError, x.Name, x.ID, "unknown %s '%s' as sensor reference", x.RefTyp, x.RefName)
		}
		x.RefID = id
	}

	if x.Cutoff < 0 {
		return objErrorf(ParseOrSpecError, x.Name, x.ID, "sensor cutoff cannot be negative")
	}
	return nil
}

// frameSensor reports whether the type is one of the frame sensors.
func frameSensor(t spec.SensorType) bool {
	switch t {
	case spec.SensorFramePos, spec.SensorFrameQuat,
		spec.SensorFrameXAxis, spec.SensorFrameYAxis, spec.SensorFrameZAxis,
		spec.SensorFrameLinVel, spec.SensorFrameAngVel,
		spec.SensorFrameLinAcc, spec.SensorFrameAngAcc:
		return true
	}
	return false
}

// sortPairs stably orders pairs and excludes by their 32-bit
// signature. Entries with equal signatures keep declaration order:
// first occurrence wins.
func (c *Compiler) sortPairs() error {
	sort.SliceStable(c.spec.Pairs, func(i, j int) bool {
		return c.spec.Pairs[i].Signature < c.spec.Pairs[j].Signature
	})
	sort.SliceStable(c.spec.Excludes, func(i, j int) bool {
		return c.spec.Excludes[i].Signature < c.spec.Excludes[j].Signature
	})
	for i, p := range c.spec.Pairs {
		p.ID = int32(i)
	}
	for i, e := range c.spec.Excludes {
		e.ID = int32(i)
	}
	return nil
}
