package compile

import (
	"github.com/Faultbox/kforge/pkg/spec"
)

// flatten walks the body tree depth-first, builds the flat entity
// lists in declaration order, assigns ids, indexes names and derives
// the parent/weld/root structure. Free-joint and mocap placement is
// validated here.
func (c *Compiler) flatten() error {
	s := c.spec
	w := s.World

	// the world is fixed: no joints, no mass, identity orientation
	if len(w.Joints) > 0 {
		return objErrorf(PhysicalError, w.Name, 0, "world body cannot have joints")
	}
	if w.Mocap {
		return objErrorf(ParseOrSpecError, w.Name, 0, "world body cannot be mocap")
	}
	// zero mass and inertia, as an earlier compile of this spec leaves
	// them in the world, are accepted
	if (spec.Defined(w.Mass) && w.Mass != 0) || spec.Defined(w.FullInertia[0]) ||
		(spec.Defined(w.Inertia.X) && (w.Inertia.X != 0 || w.Inertia.Y != 0 || w.Inertia.Z != 0)) {
		return objErrorf(PhysicalError, w.Name, 0, "world body cannot have mass or inertia")
	}

	c.nameAssets()
	if err := c.reflatten(); err != nil {
		return err
	}

	// free joints: only on direct children of world, only one per
	// body, and without joint siblings
	for _, b := range c.bodies[1:] {
		nfree := 0
		for _, j := range b.Joints {
			if j.Type == spec.JointFree {
				nfree++
			}
		}
		if nfree == 0 {
			continue
		}
		if b.Parent != w {
			return objErrorf(PhysicalError, b.Name, b.ID, "free joint can only be used on a body child of the world")
		}
		if nfree > 1 || len(b.Joints) > 1 {
			return objErrorf(PhysicalError, b.Name, b.ID, "free joint can only appear alone on its body")
		}
	}

	// mocap bodies are static
	c.nmocap = 0
	for _, b := range c.bodies {
		b.MocapID = -1
		if !b.Mocap {
			continue
		}
		if len(b.Joints) > 0 {
			return objErrorf(ParseOrSpecError, b.Name, b.ID, "mocap body cannot have joints")
		}
		b.MocapID = c.nmocap
		c.nmocap++
	}

	return nil
}

// reflatten rebuilds the flat entity lists, ids, name index and the
// parent/weld/root structure from the current body tree. Called once
// during flatten and again after static fusion reshapes the tree.
func (c *Compiler) reflatten() error {
	c.bodies = nil
	c.joints = nil
	c.geoms = nil
	c.sites = nil
	c.cameras = nil
	c.lights = nil

	// pre-order traversal; the world is index 0
	var walk func(b *spec.Body)
	walk = func(b *spec.Body) {
		c.bodies = append(c.bodies, b)
		c.joints = append(c.joints, b.Joints...)
		c.geoms = append(c.geoms, b.Geoms...)
		c.sites = append(c.sites, b.Sites...)
		c.cameras = append(c.cameras, b.Cameras...)
		c.lights = append(c.lights, b.Lights...)
		for _, child := range b.Bodies {
			walk(child)
		}
	}
	walk(c.spec.World)

	c.assignIDs()
	if err := c.indexNames(); err != nil {
		return err
	}

	// parent, weld, root
	for i, b := range c.bodies {
		if i == 0 {
			b.ParentID, b.WeldID, b.RootID = 0, 0, 0
			continue
		}
		b.ParentID = b.Parent.ID
		if len(b.Joints) > 0 {
			b.WeldID = b.ID
		} else {
			b.WeldID = b.Parent.WeldID
		}
		if b.Parent == c.spec.World {
			b.RootID = b.ID
		} else {
			b.RootID = b.Parent.RootID
		}
	}
	return nil
}

// assignIDs numbers every entity by its position within its kind.
func (c *Compiler) assignIDs() {
	for i, x := range c.bodies {
		x.ID = int32(i)
	}
	for i, x := range c.joints {
		x.ID = int32(i)
	}
	for i, x := range c.geoms {
		x.ID = int32(i)
	}
	for i, x := range c.sites {
		x.ID = int32(i)
	}
	for i, x := range c.cameras {
		x.ID = int32(i)
	}
	for i, x := range c.lights {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Meshes {
		x.ID = int32(i)
	}
	for i, x := range c.spec.HFields {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Textures {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Materials {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Skins {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Flexes {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Pairs {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Excludes {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Equalities {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Tendons {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Actuators {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Sensors {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Numerics {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Texts {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Tuples {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Keys {
		x.ID = int32(i)
	}
	for i, x := range c.spec.Plugins {
		x.ID = int32(i)
	}
}

// indexNames builds the (kind, name) -> id map and rejects duplicate
// names within a kind. Empty names are allowed and never indexed.
func (c *Compiler) indexNames() error {
	c.ids = make(map[spec.ObjType]map[string]int32)

	add := func(typ spec.ObjType, name string, id int32) error {
		if name == "" {
			return nil
		}
		kind := c.ids[typ]
		if kind == nil {
			kind = make(map[string]int32)
			c.ids[typ] = kind
		}
		if _, dup := kind[name]; dup {
			return objErrorf(ParseOrSpecError, name, id, "repeated name '%s' in %s", name, typ)
		}
		kind[name] = id
		return nil
	}

	for _, x := range c.bodies {
		if err := add(spec.ObjBody, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.joints {
		if err := add(spec.ObjJoint, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.geoms {
		if err := add(spec.ObjGeom, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.sites {
		if err := add(spec.ObjSite, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.cameras {
		if err := add(spec.ObjCamera, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.lights {
		if err := add(spec.ObjLight, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Meshes {
		if err := add(spec.ObjMesh, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.HFields {
		if err := add(spec.ObjHField, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Textures {
		if err := add(spec.ObjTexture, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Materials {
		if err := add(spec.ObjMaterial, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Skins {
		if err := add(spec.ObjSkin, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Flexes {
		if err := add(spec.ObjFlex, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Pairs {
		if err := add(spec.ObjPair, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Excludes {
		if err := add(spec.ObjExclude, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Equalities {
		if err := add(spec.ObjEquality, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Tendons {
		if err := add(spec.ObjTendon, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Actuators {
		if err := add(spec.ObjActuator, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Sensors {
		if err := add(spec.ObjSensor, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Numerics {
		if err := add(spec.ObjNumeric, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Texts {
		if err := add(spec.ObjText, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Tuples {
		if err := add(spec.ObjTuple, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Keys {
		if err := add(spec.ObjKey, x.Name, x.ID); err != nil {
			return err
		}
	}
	for _, x := range c.spec.Plugins {
		if err := add(spec.ObjPlugin, x.Name, x.ID); err != nil {
			return err
		}
	}
	return nil
}

// findID resolves a name to an id during compile.
func (c *Compiler) findID(typ spec.ObjType, name string) (int32, bool) {
	kind := c.ids[typ]
	if kind == nil {
		return -1, false
	}
	id, ok := kind[name]
	return id, ok
}
