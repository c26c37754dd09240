package compile

import (
	"github.com/Faultbox/kforge/internal/assets"
	"github.com/Faultbox/kforge/pkg/model"
	"github.com/Faultbox/kforge/pkg/spec"
)

// computeSizes fills every count of the packed model that is known
// before tree packing. nM, nD, nB and ntree are set while the tree is
// copied.
func (c *Compiler) computeSizes() model.Sizes {
	s := c.spec
	var sz model.Sizes

	for _, j := range c.joints {
		sz.Nq += j.Type.NPos()
		sz.Nv += j.Type.NVel()
	}
	c.nq, c.nv = sz.Nq, sz.Nv

	sz.Nu = int32(len(s.Actuators))
	for _, a := range s.Actuators {
		sz.Na += a.ActNum
	}
	c.nu, c.na = sz.Nu, sz.Na

	sz.Nbody = int32(len(c.bodies))
	sz.Njnt = int32(len(c.joints))
	sz.Ngeom = int32(len(c.geoms))
	sz.Nsite = int32(len(c.sites))
	sz.Ncam = int32(len(c.cameras))
	sz.Nlight = int32(len(c.lights))
	sz.Nmocap = c.nmocap

	// bounding volume hierarchies: body and mesh trees are static,
	// flex trees are refit every step
	for _, t := range c.bodyBVH {
		if t != nil {
			sz.NbvhStatic += t.NumNodes()
		}
	}
	for _, m := range s.Meshes {
		if t, ok := m.GetBVH().(*BVH); ok && t != nil {
			sz.NbvhStatic += t.NumNodes()
		}
	}
	for _, f := range s.Flexes {
		if t, ok := f.GetBVH().(*BVH); ok && t != nil {
			sz.NbvhDynamic += t.NumNodes()
		}
	}
	sz.Nbvh = sz.NbvhStatic + sz.NbvhDynamic

	sz.Nmesh = int32(len(s.Meshes))
	for _, m := range s.Meshes {
		sz.NmeshVert += int32(len(m.Vert) / 3)
		sz.NmeshNormal += int32(len(m.Normal) / 3)
		sz.NmeshTexcoord += int32(len(m.Texcoord) / 2)
		sz.NmeshFace += int32(len(m.Face) / 3)
		sz.NmeshGraph += int32(len(m.Graph))
	}

	sz.Nskin = int32(len(s.Skins))
	for _, k := range s.Skins {
		sz.NskinVert += int32(len(k.Vert) / 3)
		sz.NskinTexVert += int32(len(k.Texcoord) / 2)
		sz.NskinFace += int32(len(k.Face) / 3)
		sz.NskinBone += int32(len(k.Bones))
		for _, b := range k.Bones {
			sz.NskinBoneVert += int32(len(b.VertID))
		}
	}

	sz.Nflex = int32(len(s.Flexes))
	for _, f := range s.Flexes {
		sz.NflexVert += int32(len(f.Vert) / 3)
		sz.NflexEdge += int32(len(f.Edges) / 2)
		esize := int32(f.Dim) + 1
		sz.NflexElem += int32(len(f.Elem)) / esize
		sz.NflexElemData += int32(len(f.Elem))
		sz.NflexShellData += int32(len(f.Shells))
		sz.NflexEvPair += int32(len(f.EvPairs) / 2)
		sz.NflexTexcoord += int32(len(f.Texcoord) / 2)
	}

	sz.Nhfield = int32(len(s.HFields))
	for _, h := range s.HFields {
		sz.NhfieldData += h.NRow * h.NCol
	}
	sz.Ntex = int32(len(s.Textures))
	for _, t := range s.Textures {
		sz.NtexData += int32(len(t.Data))
	}
	sz.Nmat = int32(len(s.Materials))

	sz.Npair = int32(len(s.Pairs))
	sz.Nexclude = int32(len(s.Excludes))
	sz.Neq = int32(len(s.Equalities))
	sz.Ntendon = int32(len(s.Tendons))
	for _, t := range s.Tendons {
		sz.Nwrap += int32(len(t.Wraps))
	}
	sz.Nsensor = int32(len(s.Sensors))
	for _, x := range s.Sensors {
		sz.NsensorData += x.Dim
	}

	sz.Nnumeric = int32(len(s.Numerics))
	for _, n := range s.Numerics {
		size := n.Size
		if int32(len(n.Data)) > size {
			size = int32(len(n.Data))
		}
		sz.NnumericData += size
	}
	sz.Ntext = int32(len(s.Texts))
	for _, t := range s.Texts {
		sz.NtextData += int32(len(t.Data)) + 1
	}
	sz.Ntuple = int32(len(s.Tuples))
	for _, t := range s.Tuples {
		sz.NtupleData += int32(len(t.Entries))
	}
	sz.Nkey = int32(len(s.Keys))

	sz.Nplugin = int32(len(s.Plugins))
	for _, p := range s.Plugins {
		for k, v := range p.Attributes {
			sz.NpluginAttr += int32(len(k)) + int32(len(v)) + 2
		}
	}

	sz.NuserBody = s.NUserBody
	sz.NuserJnt = s.NUserJnt
	sz.NuserGeom = s.NUserGeom
	sz.NuserSite = s.NUserSite
	sz.NuserCam = s.NUserCam
	sz.NuserTendon = s.NUserTendon
	sz.NuserActuator = s.NUserActuator
	sz.NuserSensor = s.NUserSensor

	// names: model name plus one null-terminated name per entity
	nnames := int32(len(s.ModelName)) + 1
	var total int32
	addNames := func(names []string) {
		for _, n := range names {
			nnames += int32(len(n)) + 1
		}
		total += int32(len(names))
	}
	addNames(namesOf(c.bodies, func(b *spec.Body) string { return b.Name }))
	addNames(namesOf(c.joints, func(j *spec.Joint) string { return j.Name }))
	addNames(namesOf(c.geoms, func(g *spec.Geom) string { return g.Name }))
	addNames(namesOf(c.sites, func(x *spec.Site) string { return x.Name }))
	addNames(namesOf(c.cameras, func(x *spec.Camera) string { return x.Name }))
	addNames(namesOf(c.lights, func(x *spec.Light) string { return x.Name }))
	addNames(namesOf(s.Flexes, func(x *spec.Flex) string { return x.Name }))
	addNames(namesOf(s.Meshes, func(x *spec.Mesh) string { return x.Name }))
	addNames(namesOf(s.Skins, func(x *spec.Skin) string { return x.Name }))
	addNames(namesOf(s.HFields, func(x *spec.HField) string { return x.Name }))
	addNames(namesOf(s.Textures, func(x *spec.Texture) string { return x.Name }))
	addNames(namesOf(s.Materials, func(x *spec.Material) string { return x.Name }))
	addNames(namesOf(s.Pairs, func(x *spec.Pair) string { return x.Name }))
	addNames(namesOf(s.Excludes, func(x *spec.Exclude) string { return x.Name }))
	addNames(namesOf(s.Equalities, func(x *spec.Equality) string { return x.Name }))
	addNames(namesOf(s.Tendons, func(x *spec.Tendon) string { return x.Name }))
	addNames(namesOf(s.Actuators, func(x *spec.Actuator) string { return x.Name }))
	addNames(namesOf(s.Sensors, func(x *spec.Sensor) string { return x.Name }))
	addNames(namesOf(s.Numerics, func(x *spec.Numeric) string { return x.Name }))
	addNames(namesOf(s.Texts, func(x *spec.Text) string { return x.Name }))
	addNames(namesOf(s.Tuples, func(x *spec.Tuple) string { return x.Name }))
	addNames(namesOf(s.Keys, func(x *spec.Key) string { return x.Name }))
	addNames(namesOf(s.Plugins, func(x *spec.Plugin) string { return x.Name }))
	sz.Nnames = nnames
	sz.NnamesMap = model.LoadMultiple * total

	// paths: empty-guarded by a single null byte; sized over the
	// resolved paths the packer stores
	var npaths int32
	addPath := func(dir, file string) {
		if file != "" {
			npaths += int32(len(assets.ResolvePath(s.Compiler.ModelFileDir, dir, file))) + 1
		}
	}
	for _, m := range s.Meshes {
		addPath(s.Compiler.MeshDir, m.File)
	}
	for _, k := range s.Skins {
		addPath(s.Compiler.MeshDir, k.File)
	}
	for _, h := range s.HFields {
		addPath(s.Compiler.MeshDir, h.File)
	}
	for _, t := range s.Textures {
		addPath(s.Compiler.TextureDir, t.File)
	}
	if npaths == 0 {
		npaths = 1
	}
	sz.Npaths = npaths

	sz.Narena = c.arenaBytes(&sz)
	return sz
}

// namesOf extracts names from an entity slice.
func namesOf[T any](list []T, get func(T) string) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = get(v)
	}
	return out
}

// contactBytes approximates the per-contact footprint in the arena.
const contactBytes = 672

// arenaBytes sizes the per-step arena: an explicit byte count wins,
// then the legacy stack size, then a heuristic over the model
// dimensions, rounded up to the next megabyte.
func (c *Compiler) arenaBytes(sz *model.Sizes) int64 {
	const numBytes = 8
	const megabyte = 1 << 20

	if c.spec.Memory >= 0 {
		return c.spec.Memory
	}
	if c.spec.NStack >= 0 {
		return numBytes * c.spec.NStack
	}

	jmax := int64(0)
	if c.spec.NJMax > 0 {
		jmax = int64(c.spec.NJMax)
	}
	quad := jmax + int64(sz.Neq) + int64(sz.Nv)
	lin := int64(sz.Nq) + int64(sz.Nv) + int64(sz.Nu) + int64(sz.Na) +
		int64(sz.Nbody) + int64(sz.Njnt) + int64(sz.Ngeom) + int64(sz.Nsite) +
		int64(sz.Neq) + int64(sz.Ntendon) + int64(sz.Nwrap)
	n := 5*quad*quad + 20*lin
	if n < 1000 {
		n = 1000
	}
	bytes := numBytes * n

	if c.spec.NConMax > 0 {
		ncon := int64(c.spec.NConMax)
		// contacts, jacobian rows and efc index arrays
		bytes += ncon*contactBytes + ncon*6*numBytes*int64(sz.Nv) + ncon*10*4
	}

	return (bytes + megabyte - 1) / megabyte * megabyte
}
