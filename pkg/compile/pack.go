package compile

import (
	"github.com/Faultbox/kforge/internal/assets"
	kmath "github.com/Faultbox/kforge/pkg/math"
	"github.com/Faultbox/kforge/pkg/model"
	"github.com/Faultbox/kforge/pkg/spec"
)

// pack computes the final sizes, allocates the runtime model and
// copies every entity into its flat arrays.
func (c *Compiler) pack() error {
	// planes may only sit on bodies welded to the world
	for _, g := range c.geoms {
		if g.Type == spec.GeomPlane && g.Body.WeldID != 0 {
			return objErrorf(PhysicalError, g.Name, g.ID, "plane geom is only allowed on a body welded to the world")
		}
	}

	sz := c.computeSizes()
	m := model.New(sz)
	c.model = m

	m.Opt = model.Option{
		Timestep:    c.spec.Option.Timestep,
		Gravity:     c.spec.Option.Gravity.Array(),
		Wind:        c.spec.Option.Wind.Array(),
		Magnetic:    c.spec.Option.Magnetic.Array(),
		Density:     c.spec.Option.Density,
		Viscosity:   c.spec.Option.Viscosity,
		Integrator:  c.spec.Option.Integrator,
		Iterations:  c.spec.Option.Iterations,
		Tolerance:   c.spec.Option.Tolerance,
		DisableFlag: c.spec.Option.DisableFlag,
	}

	if err := c.packTree(); err != nil {
		return err
	}
	c.packAssets()
	c.packObjects()
	if err := c.packKeyframes(); err != nil {
		return err
	}
	c.packNames()
	c.packPaths()
	return nil
}

func setVec3(a []float64, i int32, v kmath.Vec3) {
	a[3*i], a[3*i+1], a[3*i+2] = v.X, v.Y, v.Z
}

func setQuat(a []float64, i int32, q kmath.Quat) {
	a[4*i], a[4*i+1], a[4*i+2], a[4*i+3] = q.W, q.X, q.Y, q.Z
}

// axisAligned reports whether the axis is a coordinate axis.
func axisAligned(v kmath.Vec3) bool {
	const tol = 1e-12
	one := func(x float64) bool { return x > 1-tol || x < -(1-tol) }
	zero := func(x float64) bool { return x < tol && x > -tol }
	switch {
	case one(v.X) && zero(v.Y) && zero(v.Z):
		return true
	case zero(v.X) && one(v.Y) && zero(v.Z):
		return true
	case zero(v.X) && zero(v.Y) && one(v.Z):
		return true
	}
	return false
}

// packTree copies bodies, joints, dofs, geoms, sites, cameras and
// lights, assigning qpos/dof addresses, the dof parent chain, tree
// ids, the mass-matrix sizes and the simple-body classification.
func (c *Compiler) packTree() error {
	m := c.model

	qposadr, dofadr := int32(0), int32(0)

	for i32, b := range c.bodies {
		i := int32(i32)

		m.BodyParentID[i] = b.ParentID
		m.BodyRootID[i] = b.RootID
		m.BodyWeldID[i] = b.WeldID
		m.BodyMocapID[i] = b.MocapID
		setVec3(m.BodyPos, i, b.Pos)
		setQuat(m.BodyQuat, i, b.Quat)
		setVec3(m.BodyIPos, i, b.IPos)
		setQuat(m.BodyIQuat, i, b.IQuat)
		m.BodyMass[i] = b.Mass
		setVec3(m.BodyInertia, i, b.Inertia)
		m.BodyGravcomp[i] = b.Gravcomp
		for u := int32(0); u < m.NuserBody && int(u) < len(b.UserData); u++ {
			m.BodyUser[m.NuserBody*i+u] = b.UserData[u]
		}
		b.SameFrame = b.IPos.Len() == 0 && b.IQuat == kmath.QuatIdentity()
		if b.SameFrame {
			m.BodySameFrame[i] = 1
		}

		// inherit the dof chain tail from the parent
		if i == 0 {
			b.LastDof = -1
		} else {
			b.LastDof = c.bodies[b.ParentID].LastDof
		}

		if len(b.Joints) > 0 {
			m.BodyJntAdr[i] = b.Joints[0].ID
			m.BodyDofAdr[i] = dofadr
		} else {
			m.BodyJntAdr[i] = -1
			m.BodyDofAdr[i] = -1
		}
		m.BodyJntNum[i] = int32(len(b.Joints))

		for _, j := range b.Joints {
			jid := j.ID
			j.QposAdr = qposadr
			j.DofAdr = dofadr

			m.JntType[jid] = int32(j.Type)
			m.JntQposAdr[jid] = qposadr
			m.JntDofAdr[jid] = dofadr
			m.JntBodyID[jid] = i
			m.JntGroup[jid] = j.Group
			if j.Limited {
				m.JntLimited[jid] = 1
			}
			if j.ActFrcLimited {
				m.JntActFrcLimited[jid] = 1
			}
			m.JntSolRef[2*jid] = j.SolRefLimit[0]
			m.JntSolRef[2*jid+1] = j.SolRefLimit[1]
			copy(m.JntSolImp[5*jid:5*jid+5], j.SolImpLimit[:])
			setVec3(m.JntPos, jid, j.Pos)
			setVec3(m.JntAxis, jid, j.Axis)
			m.JntStiffness[jid] = j.Stiffness
			m.JntRange[2*jid] = j.Range[0]
			m.JntRange[2*jid+1] = j.Range[1]
			m.JntActFrcRange[2*jid] = j.ActFrcRange[0]
			m.JntActFrcRange[2*jid+1] = j.ActFrcRange[1]
			m.JntMargin[jid] = j.Margin
			for u := int32(0); u < m.NuserJnt && int(u) < len(j.UserData); u++ {
				m.JntUser[m.NuserJnt*jid+u] = j.UserData[u]
			}

			// reference configuration
			switch j.Type {
			case spec.JointFree:
				m.Qpos0[qposadr] = b.Pos.X
				m.Qpos0[qposadr+1] = b.Pos.Y
				m.Qpos0[qposadr+2] = b.Pos.Z
				q := b.Quat.Array()
				copy(m.Qpos0[qposadr+3:qposadr+7], q[:])
				copy(m.QposSpring[qposadr:qposadr+7], m.Qpos0[qposadr:qposadr+7])
			case spec.JointBall:
				m.Qpos0[qposadr] = 1
				m.QposSpring[qposadr] = 1
			default:
				m.Qpos0[qposadr] = j.Ref
				m.QposSpring[qposadr] = j.SpringRef
			}

			// dofs
			nvel := j.Type.NVel()
			for d := int32(0); d < nvel; d++ {
				da := dofadr + d
				m.DofBodyID[da] = i
				m.DofJntID[da] = jid
				if d > 0 {
					m.DofParentID[da] = da - 1
				} else {
					m.DofParentID[da] = b.LastDof
				}
				b.LastDof = da
				m.DofArmature[da] = j.Armature
				m.DofDamping[da] = j.Damping
				m.DofFrictionloss[da] = j.Frictionloss
			}

			qposadr += j.Type.NPos()
			dofadr += nvel
		}
		b.DofNum = int32(j2dofs(b.Joints))
		m.BodyDofNum[i] = b.DofNum
		b.DofAdr = m.BodyDofAdr[i]
	}

	if qposadr != m.Nq || dofadr != m.Nv {
		return errorf(InternalError, "unexpected number of DOFs, SHOULD NOT OCCUR")
	}

	// kinematic trees
	ntree := int32(0)
	for i := int32(0); i < m.Nv; i++ {
		if m.DofParentID[i] == -1 {
			ntree++
		}
		m.DofTreeID[i] = ntree - 1
	}
	m.Ntree = ntree

	for i := int32(0); i < m.Nbody; i++ {
		weld := m.BodyWeldID[i]
		if m.BodyDofNum[weld] > 0 {
			m.BodyTreeID[i] = m.DofTreeID[m.BodyDofAdr[weld]]
		} else {
			m.BodyTreeID[i] = -1
		}
		c.bodies[i].TreeID = m.BodyTreeID[i]
	}

	// nM and per-dof mass-matrix addresses
	nM := int32(0)
	for i := int32(0); i < m.Nv; i++ {
		m.DofMadr[i] = nM
		for j := i; j >= 0; j = m.DofParentID[j] {
			nM++
		}
	}
	m.NM = nM
	m.ND = 2*nM - m.Nv

	// subtree dof counts, reverse pass
	for _, b := range c.bodies {
		b.SubtreeDofs = 0
	}
	for i := len(c.bodies) - 1; i > 0; i-- {
		b := c.bodies[i]
		b.SubtreeDofs += b.DofNum
		c.bodies[b.ParentID].SubtreeDofs += b.SubtreeDofs
	}
	c.bodies[0].SubtreeDofs += c.bodies[0].DofNum
	if c.bodies[0].SubtreeDofs != m.Nv {
		return errorf(InternalError, "all DOFs should be in world subtree, SHOULD NOT OCCUR")
	}

	// nB: subtree dofs plus ancestor dofs per body
	nB := int32(0)
	for _, b := range c.bodies {
		nB += b.SubtreeDofs
		for j := b.ParentID; j > 0; j = c.bodies[j].ParentID {
			nB += c.bodies[j].DofNum
		}
	}
	m.NB = nB

	// subtree mass, reverse pass
	for i := int32(0); i < m.Nbody; i++ {
		m.BodySubtreeMass[i] = m.BodyMass[i]
	}
	for i := m.Nbody - 1; i > 0; i-- {
		m.BodySubtreeMass[m.BodyParentID[i]] += m.BodySubtreeMass[i]
	}

	// simple-body classification and per-dof suffix counts
	for i32, b := range c.bodies {
		i := int32(i32)
		b.Simple = c.simpleLevel(b)
		m.BodySimple[i] = b.Simple
	}
	count := int32(0)
	for i := m.Nv - 1; i >= 0; i-- {
		if m.BodySimple[m.DofBodyID[i]] > 0 {
			count++
		} else {
			count = 0
		}
		m.DofSimpleNum[i] = count
	}

	// geoms
	for _, g := range c.geoms {
		i := g.ID
		m.GeomType[i] = int32(g.Type)
		m.GeomContype[i] = g.Contype
		m.GeomConaffinity[i] = g.Conaffinity
		m.GeomCondim[i] = g.Condim
		m.GeomBodyID[i] = g.Body.ID
		switch g.Type {
		case spec.GeomMesh:
			m.GeomDataID[i] = g.MeshID
		case spec.GeomHField:
			m.GeomDataID[i] = g.HFieldID
		default:
			m.GeomDataID[i] = -1
		}
		m.GeomMatID[i] = g.MatID
		m.GeomGroup[i] = g.Group
		m.GeomPriority[i] = g.Priority
		setVec3(m.GeomSize, i, g.Size)
		copy(m.GeomAABB[6*i:6*i+6], g.AABB[:])
		m.GeomRBound[i] = g.RBound
		setVec3(m.GeomPos, i, g.Pos)
		setQuat(m.GeomQuat, i, g.Quat)
		copy(m.GeomFriction[3*i:3*i+3], g.Friction[:])
		m.GeomSolMix[i] = g.SolMix
		m.GeomSolRef[2*i] = g.SolRef[0]
		m.GeomSolRef[2*i+1] = g.SolRef[1]
		copy(m.GeomSolImp[5*i:5*i+5], g.SolImp[:])
		m.GeomMargin[i] = g.Margin
		m.GeomGap[i] = g.Gap
		copy(m.GeomRGBA[4*i:4*i+4], g.RGBA[:])
		for u := int32(0); u < m.NuserGeom && int(u) < len(g.UserData); u++ {
			m.GeomUser[m.NuserGeom*i+u] = g.UserData[u]
		}
	}

	// body geom ranges rely on flattening order
	for i := int32(0); i < m.Nbody; i++ {
		m.BodyGeomAdr[i] = -1
	}
	for _, g := range c.geoms {
		bid := g.Body.ID
		if m.BodyGeomAdr[bid] == -1 {
			m.BodyGeomAdr[bid] = g.ID
		}
		m.BodyGeomNum[bid]++
	}

	// sites
	for _, x := range c.sites {
		i := x.ID
		m.SiteType[i] = int32(x.Type)
		m.SiteBodyID[i] = x.Body.ID
		m.SiteMatID[i] = x.MatID
		m.SiteGroup[i] = x.Group
		setVec3(m.SiteSize, i, x.Size)
		setVec3(m.SitePos, i, x.Pos)
		setQuat(m.SiteQuat, i, x.Quat)
		copy(m.SiteRGBA[4*i:4*i+4], x.RGBA[:])
		for u := int32(0); u < m.NuserSite && int(u) < len(x.UserData); u++ {
			m.SiteUser[m.NuserSite*i+u] = x.UserData[u]
		}
	}

	// cameras
	for _, cam := range c.cameras {
		i := cam.ID
		m.CamMode[i] = int32(cam.Mode)
		m.CamBodyID[i] = cam.Body.ID
		m.CamTargetBodyID[i] = cam.TargetBodyID
		setVec3(m.CamPos, i, cam.Pos)
		setQuat(m.CamQuat, i, cam.Quat)
		m.CamFovy[i] = cam.Fovy
		m.CamIPD[i] = cam.IPD
		m.CamResolution[2*i] = cam.Resolution[0]
		m.CamResolution[2*i+1] = cam.Resolution[1]
		m.CamSensorSize[2*i] = cam.SensorSize[0]
		m.CamSensorSize[2*i+1] = cam.SensorSize[1]
		m.CamIntrinsic[4*i] = cam.Focal[0]
		m.CamIntrinsic[4*i+1] = cam.Focal[1]
		m.CamIntrinsic[4*i+2] = cam.Principal[0]
		m.CamIntrinsic[4*i+3] = cam.Principal[1]
		for u := int32(0); u < m.NuserCam && int(u) < len(cam.UserData); u++ {
			m.CamUser[m.NuserCam*i+u] = cam.UserData[u]
		}
	}

	// lights
	for _, l := range c.lights {
		i := l.ID
		m.LightMode[i] = int32(l.Mode)
		m.LightBodyID[i] = l.Body.ID
		m.LightTargetBodyID[i] = l.TargetBodyID
		if l.Directional {
			m.LightDirectional[i] = 1
		}
		if l.CastShadow {
			m.LightCastShadow[i] = 1
		}
		if l.Active {
			m.LightActive[i] = 1
		}
		setVec3(m.LightPos, i, l.Pos)
		setVec3(m.LightDir, i, l.Dir)
		copy(m.LightAttenuation[3*i:3*i+3], l.Attenuation[:])
		m.LightCutoff[i] = l.Cutoff
		m.LightExponent[i] = l.Exponent
		copy(m.LightAmbient[3*i:3*i+3], l.Ambient[:])
		copy(m.LightDiffuse[3*i:3*i+3], l.Diffuse[:])
		copy(m.LightSpecular[3*i:3*i+3], l.Specular[:])
	}

	return nil
}

// j2dofs sums the dofs of a joint list.
func j2dofs(joints []*spec.Joint) int32 {
	var n int32
	for _, j := range joints {
		n += j.Type.NVel()
	}
	return n
}

// simpleLevel classifies a body for sparse mass-matrix handling:
// 0 general, 1 diagonal-block, 2 diagonal (all slides).
func (c *Compiler) simpleLevel(b *spec.Body) int32 {
	if len(b.Joints) == 0 {
		return 0
	}
	p := c.bodies[b.ParentID]
	parentFixed := b.ParentID == 0 || (len(p.Joints) == 0 && p.ParentID == 0)
	if !parentFixed {
		return 0
	}
	if b.IPos.Len() > 0 {
		return 0
	}
	level := int32(2)
	for _, j := range b.Joints {
		switch j.Type {
		case spec.JointSlide:
			if !axisAligned(j.Axis) {
				return 0
			}
		case spec.JointHinge:
			if !axisAligned(j.Axis) {
				return 0
			}
			level = 1
		default:
			level = 1
		}
	}
	return level
}

// appendBVH copies a tree into the model-level arrays at adr with
// child indices rebased, returning the next free address.
func (c *Compiler) appendBVH(t *BVH, adr int32) int32 {
	m := c.model
	n := t.NumNodes()
	for k := int32(0); k < n; k++ {
		m.BVHDepth[adr+k] = t.Depth[k]
		m.BVHNodeID[adr+k] = t.NodeID[k]
		for s := int32(0); s < 2; s++ {
			ch := t.Child[2*k+s]
			if ch >= 0 {
				ch += adr
			}
			m.BVHChild[2*(adr+k)+s] = ch
		}
		copy(m.BVHAABB[6*(adr+k):6*(adr+k)+6], t.AABB[6*k:6*k+6])
	}
	return adr + n
}

// packAssets copies meshes, skins, flexes, heightfields, textures and
// materials, and assembles the global BVH array: body trees, then mesh
// trees, then flex trees.
func (c *Compiler) packAssets() {
	m := c.model
	bvhAdr := int32(0)

	for i := int32(0); i < m.Nbody; i++ {
		t := c.bodyBVH[i]
		if t == nil {
			m.BodyBVHAdr[i] = -1
			continue
		}
		m.BodyBVHAdr[i] = bvhAdr
		m.BodyBVHNum[i] = t.NumNodes()
		bvhAdr = c.appendBVH(t, bvhAdr)
	}

	var vertAdr, normalAdr, texAdr, faceAdr, graphAdr int32
	for _, ms := range c.spec.Meshes {
		i := ms.ID
		m.MeshVertAdr[i] = vertAdr
		m.MeshVertNum[i] = int32(len(ms.Vert) / 3)
		copy(m.MeshVert[3*vertAdr:], ms.Vert)
		vertAdr += m.MeshVertNum[i]

		m.MeshNormalAdr[i] = normalAdr
		m.MeshNormalNum[i] = int32(len(ms.Normal) / 3)
		copy(m.MeshNormal[3*normalAdr:], ms.Normal)
		normalAdr += m.MeshNormalNum[i]

		m.MeshTexcoordAdr[i] = -1
		if len(ms.Texcoord) > 0 {
			m.MeshTexcoordAdr[i] = texAdr
			m.MeshTexcoordNum[i] = int32(len(ms.Texcoord) / 2)
			copy(m.MeshTexcoord[2*texAdr:], ms.Texcoord)
			texAdr += m.MeshTexcoordNum[i]
		}

		m.MeshFaceAdr[i] = faceAdr
		m.MeshFaceNum[i] = int32(len(ms.Face) / 3)
		copy(m.MeshFace[3*faceAdr:], ms.Face)
		faceAdr += m.MeshFaceNum[i]

		m.MeshGraphAdr[i] = -1
		if len(ms.Graph) > 0 {
			m.MeshGraphAdr[i] = graphAdr
			copy(m.MeshGraph[graphAdr:], ms.Graph)
			graphAdr += int32(len(ms.Graph))
		}

		setVec3(m.MeshPos, i, ms.Pos)
		setQuat(m.MeshQuat, i, ms.Quat)

		if t, ok := ms.GetBVH().(*BVH); ok && t != nil {
			ms.BVHAdr = bvhAdr
			ms.BVHNum = t.NumNodes()
			m.MeshBVHAdr[i] = bvhAdr
			m.MeshBVHNum[i] = t.NumNodes()
			bvhAdr = c.appendBVH(t, bvhAdr)
		} else {
			m.MeshBVHAdr[i] = -1
		}
	}

	var fvertAdr, fedgeAdr, felemAdr, felemDataAdr, fshellAdr, fevAdr, ftexAdr int32
	for _, f := range c.spec.Flexes {
		i := f.ID
		m.FlexContype[i] = f.Contype
		m.FlexConaffinity[i] = f.Conaffinity
		m.FlexCondim[i] = f.Condim
		m.FlexPriority[i] = f.Priority
		m.FlexSolMix[i] = f.SolMix
		m.FlexSolRef[2*i] = f.SolRef[0]
		m.FlexSolRef[2*i+1] = f.SolRef[1]
		copy(m.FlexSolImp[5*i:5*i+5], f.SolImp[:])
		copy(m.FlexFriction[3*i:3*i+3], f.Friction[:])
		m.FlexMargin[i] = f.Margin
		m.FlexGap[i] = f.Gap
		m.FlexDim[i] = f.Dim
		m.FlexMatID[i] = f.MatID
		m.FlexGroup[i] = f.Group
		m.FlexRadius[i] = f.Radius
		m.FlexEdgeStiffness[i] = f.Edge
		m.FlexEdgeDamping[i] = f.EdgeDamp
		copy(m.FlexRGBA[4*i:4*i+4], f.RGBA[:])
		if f.Internal {
			m.FlexInternal[i] = 1
		}
		m.FlexSelfColl[i] = f.SelfColl

		nvert := int32(len(f.Vert) / 3)
		m.FlexVertAdr[i] = fvertAdr
		m.FlexVertNum[i] = nvert
		copy(m.FlexVert[3*fvertAdr:], f.Vert)
		copy(m.FlexVertBodyID[fvertAdr:], f.VertBodyID)
		fvertAdr += nvert

		m.FlexEdgeAdr[i] = fedgeAdr
		m.FlexEdgeNum[i] = int32(len(f.Edges) / 2)
		copy(m.FlexEdge[2*fedgeAdr:], f.Edges)
		fedgeAdr += m.FlexEdgeNum[i]

		esize := f.Dim + 1
		m.FlexElemAdr[i] = felemAdr
		m.FlexElemNum[i] = int32(len(f.Elem)) / esize
		m.FlexElemDataAdr[i] = felemDataAdr
		copy(m.FlexElem[felemDataAdr:], f.Elem)
		felemAdr += m.FlexElemNum[i]
		felemDataAdr += int32(len(f.Elem))

		m.FlexShellDataAdr[i] = fshellAdr
		m.FlexShellNum[i] = int32(len(f.Shells)) / f.Dim
		copy(m.FlexShell[fshellAdr:], f.Shells)
		fshellAdr += int32(len(f.Shells))

		m.FlexEvPairAdr[i] = fevAdr
		m.FlexEvPairNum[i] = int32(len(f.EvPairs) / 2)
		copy(m.FlexEvPair[2*fevAdr:], f.EvPairs)
		fevAdr += m.FlexEvPairNum[i]

		m.FlexTexcoordAdr[i] = -1
		if len(f.Texcoord) > 0 {
			m.FlexTexcoordAdr[i] = ftexAdr
			copy(m.FlexTexcoord[2*ftexAdr:], f.Texcoord)
			ftexAdr += int32(len(f.Texcoord) / 2)
		}

		if t, ok := f.GetBVH().(*BVH); ok && t != nil {
			f.BVHAdr = bvhAdr
			f.BVHNum = t.NumNodes()
			m.FlexBVHAdr[i] = bvhAdr
			m.FlexBVHNum[i] = t.NumNodes()
			bvhAdr = c.appendBVH(t, bvhAdr)
		} else {
			m.FlexBVHAdr[i] = -1
		}
	}

	var svertAdr, stexAdr, sfaceAdr, sboneAdr, sbvAdr int32
	for _, k := range c.spec.Skins {
		i := k.ID
		m.SkinMatID[i] = k.MatID
		m.SkinGroup[i] = k.Group
		copy(m.SkinRGBA[4*i:4*i+4], k.RGBA[:])
		m.SkinInflate[i] = k.Inflate

		m.SkinVertAdr[i] = svertAdr
		m.SkinVertNum[i] = int32(len(k.Vert) / 3)
		copy(m.SkinVert[3*svertAdr:], k.Vert)
		svertAdr += m.SkinVertNum[i]

		m.SkinTexcoordAdr[i] = -1
		if len(k.Texcoord) > 0 {
			m.SkinTexcoordAdr[i] = stexAdr
			copy(m.SkinTexcoord[2*stexAdr:], k.Texcoord)
			stexAdr += int32(len(k.Texcoord) / 2)
		}

		m.SkinFaceAdr[i] = sfaceAdr
		m.SkinFaceNum[i] = int32(len(k.Face) / 3)
		copy(m.SkinFace[3*sfaceAdr:], k.Face)
		sfaceAdr += m.SkinFaceNum[i]

		m.SkinBoneAdr[i] = sboneAdr
		m.SkinBoneNum[i] = int32(len(k.Bones))
		for bi := range k.Bones {
			bone := &k.Bones[bi]
			ba := sboneAdr + int32(bi)
			m.SkinBoneBodyID[ba] = bone.BodyID
			m.SkinBoneBindPos[3*ba] = float32(bone.BindPos.X)
			m.SkinBoneBindPos[3*ba+1] = float32(bone.BindPos.Y)
			m.SkinBoneBindPos[3*ba+2] = float32(bone.BindPos.Z)
			q := bone.BindQuat.Normalize().Array()
			for s := 0; s < 4; s++ {
				m.SkinBoneBindQuat[4*ba+int32(s)] = float32(q[s])
			}
			m.SkinBoneVertAdr[ba] = sbvAdr
			m.SkinBoneVertNum[ba] = int32(len(bone.VertID))
			copy(m.SkinBoneVertID[sbvAdr:], bone.VertID)
			copy(m.SkinBoneVertWeight[sbvAdr:], bone.VertWeight)
			sbvAdr += int32(len(bone.VertID))
		}
		sboneAdr += int32(len(k.Bones))
	}

	var hAdr int32
	for _, h := range c.spec.HFields {
		i := h.ID
		copy(m.HFieldSize[4*i:4*i+4], h.Size[:])
		m.HFieldNRow[i] = h.NRow
		m.HFieldNCol[i] = h.NCol
		m.HFieldAdr[i] = hAdr
		copy(m.HFieldData[hAdr:], h.Data)
		hAdr += h.NRow * h.NCol
	}

	var tAdr int32
	for _, t := range c.spec.Textures {
		i := t.ID
		m.TexType[i] = int32(t.Type)
		m.TexHeight[i] = t.Height
		m.TexWidth[i] = t.Width
		m.TexAdr[i] = tAdr
		copy(m.TexData[tAdr:], t.Data)
		tAdr += int32(len(t.Data))
	}

	for _, mt := range c.spec.Materials {
		i := mt.ID
		m.MatTexID[i] = mt.TexID
		if mt.TexUniform {
			m.MatTexUniform[i] = 1
		}
		m.MatTexRepeat[2*i] = mt.TexRepeat[0]
		m.MatTexRepeat[2*i+1] = mt.TexRepeat[1]
		m.MatEmission[i] = mt.Emission
		m.MatSpecular[i] = mt.Specular
		m.MatShininess[i] = mt.Shininess
		m.MatReflectance[i] = mt.Reflectance
		copy(m.MatRGBA[4*i:4*i+4], mt.RGBA[:])
	}
}

// packObjects copies the entities outside the kinematic tree.
func (c *Compiler) packObjects() {
	m := c.model

	for _, p := range c.spec.Pairs {
		i := p.ID
		m.PairDim[i] = p.Condim
		m.PairGeom1[i] = p.Geom1ID
		m.PairGeom2[i] = p.Geom2ID
		m.PairSignature[i] = p.Signature
		m.PairSolRef[2*i] = p.SolRef[0]
		m.PairSolRef[2*i+1] = p.SolRef[1]
		m.PairSolRefFrict[2*i] = p.SolRefFrict[0]
		m.PairSolRefFrict[2*i+1] = p.SolRefFrict[1]
		copy(m.PairSolImp[5*i:5*i+5], p.SolImp[:])
		m.PairMargin[i] = p.Margin
		m.PairGap[i] = p.Gap
		copy(m.PairFriction[5*i:5*i+5], p.Friction[:])
	}

	for _, e := range c.spec.Excludes {
		m.ExcludeSignature[e.ID] = e.Signature
	}

	for _, eq := range c.spec.Equalities {
		i := eq.ID
		m.EqType[i] = int32(eq.Type)
		m.EqObj1ID[i] = eq.Obj1ID
		m.EqObj2ID[i] = eq.Obj2ID
		if eq.Active {
			m.EqActive[i] = 1
		}
		m.EqSolRef[2*i] = eq.SolRef[0]
		m.EqSolRef[2*i+1] = eq.SolRef[1]
		copy(m.EqSolImp[5*i:5*i+5], eq.SolImp[:])
		copy(m.EqData[11*i:11*i+11], eq.Data[:])
	}

	var wrapAdr int32
	for _, t := range c.spec.Tendons {
		i := t.ID
		m.TendonAdr[i] = wrapAdr
		m.TendonNum[i] = int32(len(t.Wraps))
		m.TendonMatID[i] = t.MatID
		m.TendonGroup[i] = t.Group
		if t.Limited {
			m.TendonLimited[i] = 1
		}
		m.TendonWidth[i] = t.Width
		m.TendonSolRefLim[2*i] = t.SolRefLimit[0]
		m.TendonSolRefLim[2*i+1] = t.SolRefLimit[1]
		copy(m.TendonSolImpLim[5*i:5*i+5], t.SolImpLimit[:])
		m.TendonSolRefFri[2*i] = t.SolRefFrict[0]
		m.TendonSolRefFri[2*i+1] = t.SolRefFrict[1]
		copy(m.TendonSolImpFri[5*i:5*i+5], t.SolImpFrict[:])
		m.TendonRange[2*i] = t.Range[0]
		m.TendonRange[2*i+1] = t.Range[1]
		m.TendonMargin[i] = t.Margin
		m.TendonStiffness[i] = t.Stiffness
		m.TendonDamping[i] = t.Damping
		m.TendonFrictionloss[i] = t.Frictionloss
		m.TendonLengthSpring[2*i] = t.SpringLength[0]
		m.TendonLengthSpring[2*i+1] = t.SpringLength[1]
		for u := int32(0); u < m.NuserTendon && int(u) < len(t.UserData); u++ {
			m.TendonUser[m.NuserTendon*i+u] = t.UserData[u]
		}
		for _, w := range t.Wraps {
			m.WrapType[wrapAdr] = int32(w.Type)
			m.WrapObjID[wrapAdr] = w.ObjID
			m.WrapPrm[wrapAdr] = w.Prm
			wrapAdr++
		}
	}

	actAdr := int32(0)
	for _, a := range c.spec.Actuators {
		i := a.ID
		m.ActuatorTrnType[i] = int32(a.Trn)
		m.ActuatorDynType[i] = int32(a.Dyn)
		m.ActuatorGainType[i] = int32(a.Gain)
		m.ActuatorBiasType[i] = int32(a.Bias)
		m.ActuatorTrnID[2*i] = a.TrnID[0]
		m.ActuatorTrnID[2*i+1] = a.TrnID[1]
		if a.ActNum > 0 {
			a.ActAdr = actAdr
			m.ActuatorActAdr[i] = actAdr
			actAdr += a.ActNum
		} else {
			a.ActAdr = -1
			m.ActuatorActAdr[i] = -1
		}
		m.ActuatorActNum[i] = a.ActNum
		m.ActuatorGroup[i] = a.Group
		if a.CtrlLimited {
			m.ActuatorCtrlLimited[i] = 1
		}
		if a.ForceLimited {
			m.ActuatorForceLimited[i] = 1
		}
		if a.ActLimited {
			m.ActuatorActLimited[i] = 1
		}
		copy(m.ActuatorDynPrm[10*i:10*i+10], a.DynPrm[:])
		copy(m.ActuatorGainPrm[10*i:10*i+10], a.GainPrm[:])
		copy(m.ActuatorBiasPrm[10*i:10*i+10], a.BiasPrm[:])
		if a.ActEarly {
			m.ActuatorActEarly[i] = 1
		}
		m.ActuatorCtrlRange[2*i] = a.CtrlRange[0]
		m.ActuatorCtrlRange[2*i+1] = a.CtrlRange[1]
		m.ActuatorForceRange[2*i] = a.ForceRange[0]
		m.ActuatorForceRange[2*i+1] = a.ForceRange[1]
		m.ActuatorActRange[2*i] = a.ActRange[0]
		m.ActuatorActRange[2*i+1] = a.ActRange[1]
		copy(m.ActuatorGear[6*i:6*i+6], a.Gear[:])
		m.ActuatorCrankLength[i] = a.CrankLength
		m.ActuatorLengthRange[2*i] = a.LengthRange[0]
		m.ActuatorLengthRange[2*i+1] = a.LengthRange[1]
		m.ActuatorPluginID[i] = a.PluginID
		for u := int32(0); u < m.NuserActuator && int(u) < len(a.UserData); u++ {
			m.ActuatorUser[m.NuserActuator*i+u] = a.UserData[u]
		}
	}

	sensorAdr := int32(0)
	for _, x := range c.spec.Sensors {
		i := x.ID
		m.SensorType[i] = int32(x.Type)
		m.SensorDatatype[i] = int32(x.Datatype)
		m.SensorNeedStage[i] = int32(x.Stage)
		m.SensorObjType[i] = int32(x.ObjTyp)
		m.SensorObjID[i] = x.ObjID
		m.SensorRefType[i] = int32(x.RefTyp)
		m.SensorRefID[i] = x.RefID
		m.SensorDim[i] = x.Dim
		x.Adr = sensorAdr
		m.SensorAdr[i] = sensorAdr
		sensorAdr += x.Dim
		m.SensorCutoff[i] = x.Cutoff
		m.SensorNoise[i] = x.Noise
		m.SensorPluginID[i] = x.PluginID
		for u := int32(0); u < m.NuserSensor && int(u) < len(x.UserData); u++ {
			m.SensorUser[m.NuserSensor*i+u] = x.UserData[u]
		}
	}

	for _, p := range c.spec.Plugins {
		i := p.ID
		m.PluginStateAdr[i] = p.StateAdr
		m.PluginStateNum[i] = p.StateSize
	}
	var attrAdr int32
	for _, p := range c.spec.Plugins {
		m.PluginAttrAdr[p.ID] = attrAdr
		for _, k := range sortedKeys(p.Attributes) {
			v := p.Attributes[k]
			copy(m.PluginAttr[attrAdr:], k)
			attrAdr += int32(len(k)) + 1
			copy(m.PluginAttr[attrAdr:], v)
			attrAdr += int32(len(v)) + 1
		}
	}

	var numAdr int32
	for _, n := range c.spec.Numerics {
		i := n.ID
		size := n.Size
		if int32(len(n.Data)) > size {
			size = int32(len(n.Data))
		}
		m.NumericAdr[i] = numAdr
		m.NumericSize[i] = size
		copy(m.NumericData[numAdr:], n.Data)
		numAdr += size
	}

	var textAdr int32
	for _, t := range c.spec.Texts {
		i := t.ID
		m.TextAdr[i] = textAdr
		m.TextSize[i] = int32(len(t.Data)) + 1
		copy(m.TextData[textAdr:], t.Data)
		textAdr += int32(len(t.Data)) + 1
	}

	var tupAdr int32
	for _, t := range c.spec.Tuples {
		i := t.ID
		m.TupleAdr[i] = tupAdr
		m.TupleSize[i] = int32(len(t.Entries))
		for _, e := range t.Entries {
			m.TupleObjType[tupAdr] = int32(e.ObjTyp)
			m.TupleObjID[tupAdr] = e.ObjID
			m.TupleObjPrm[tupAdr] = e.Prm
			tupAdr++
		}
	}
}

// sortedKeys returns map keys in deterministic order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// packKeyframes copies keyframes, padding missing vectors with the
// reference configuration and normalizing every ball and free-joint
// quaternion in place.
func (c *Compiler) packKeyframes() error {
	m := c.model
	for _, k := range c.spec.Keys {
		i := k.ID
		m.KeyTime[i] = k.Time

		qpos := m.KeyQpos[m.Nq*i : m.Nq*(i+1)]
		switch {
		case len(k.Qpos) == 0:
			copy(qpos, m.Qpos0)
		case int32(len(k.Qpos)) == m.Nq:
			copy(qpos, k.Qpos)
		default:
			return objErrorf(ParseOrSpecError, k.Name, i, "keyframe qpos has size %d, expected %d", len(k.Qpos), m.Nq)
		}

		if len(k.Qvel) != 0 {
			if int32(len(k.Qvel)) != m.Nv {
				return objErrorf(ParseOrSpecError, k.Name, i, "keyframe qvel has size %d, expected %d", len(k.Qvel), m.Nv)
			}
			copy(m.KeyQvel[m.Nv*i:], k.Qvel)
		}
		if len(k.Act) != 0 {
			if int32(len(k.Act)) != m.Na {
				return objErrorf(ParseOrSpecError, k.Name, i, "keyframe act has size %d, expected %d", len(k.Act), m.Na)
			}
			copy(m.KeyAct[m.Na*i:], k.Act)
		}
		if len(k.Ctrl) != 0 {
			if int32(len(k.Ctrl)) != m.Nu {
				return objErrorf(ParseOrSpecError, k.Name, i, "keyframe ctrl has size %d, expected %d", len(k.Ctrl), m.Nu)
			}
			copy(m.KeyCtrl[m.Nu*i:], k.Ctrl)
		}

		mpos := m.KeyMPos[3*m.Nmocap*i : 3*m.Nmocap*(i+1)]
		mquat := m.KeyMQuat[4*m.Nmocap*i : 4*m.Nmocap*(i+1)]
		if len(k.MPos) == 0 {
			for _, b := range c.bodies {
				if b.MocapID >= 0 {
					setVec3(mpos, b.MocapID, b.Pos)
				}
			}
		} else {
			if int32(len(k.MPos)) != 3*m.Nmocap {
				return objErrorf(ParseOrSpecError, k.Name, i, "keyframe mpos has size %d, expected %d", len(k.MPos), 3*m.Nmocap)
			}
			copy(mpos, k.MPos)
		}
		if len(k.MQuat) == 0 {
			for _, b := range c.bodies {
				if b.MocapID >= 0 {
					setQuat(mquat, b.MocapID, b.Quat)
				}
			}
		} else {
			if int32(len(k.MQuat)) != 4*m.Nmocap {
				return objErrorf(ParseOrSpecError, k.Name, i, "keyframe mquat has size %d, expected %d", len(k.MQuat), 4*m.Nmocap)
			}
			copy(mquat, k.MQuat)
		}

		// normalize quaternions in place
		for _, j := range c.joints {
			switch j.Type {
			case spec.JointFree:
				normalizeQuatSlice(qpos[j.QposAdr+3 : j.QposAdr+7])
			case spec.JointBall:
				normalizeQuatSlice(qpos[j.QposAdr : j.QposAdr+4])
			}
		}
		for mi := int32(0); mi < m.Nmocap; mi++ {
			normalizeQuatSlice(mquat[4*mi : 4*mi+4])
		}
	}
	return nil
}

func normalizeQuatSlice(q []float64) {
	n := kmath.Quat{W: q[0], X: q[1], Y: q[2], Z: q[3]}.Normalize()
	q[0], q[1], q[2], q[3] = n.W, n.X, n.Y, n.Z
}

// packNames builds the names table and the per-kind open-addressed
// hash maps: djb2 over the name, linear probing, -1 for empty slots.
func (c *Compiler) packNames() {
	m := c.model

	for i := range m.NamesMap {
		m.NamesMap[i] = -1
	}

	adr := int32(0)
	copy(m.Names[adr:], c.spec.ModelName)
	adr += int32(len(c.spec.ModelName)) + 1

	mapAdr := int32(0)
	write := func(names []string, nameAdr []int32) {
		capacity := model.LoadMultiple * int32(len(names))
		for i, n := range names {
			if n == "" {
				continue
			}
			j := model.HashName(n, capacity)
			for m.NamesMap[mapAdr+j] != -1 {
				j = (j + 1) % capacity
			}
			m.NamesMap[mapAdr+j] = int32(i)
		}
		for i, n := range names {
			nameAdr[i] = adr
			copy(m.Names[adr:], n)
			adr += int32(len(n)) + 1
		}
		mapAdr += capacity
	}

	s := c.spec
	write(namesOf(c.bodies, func(b *spec.Body) string { return b.Name }), m.NameBodyAdr)
	write(namesOf(c.joints, func(j *spec.Joint) string { return j.Name }), m.NameJntAdr)
	write(namesOf(c.geoms, func(g *spec.Geom) string { return g.Name }), m.NameGeomAdr)
	write(namesOf(c.sites, func(x *spec.Site) string { return x.Name }), m.NameSiteAdr)
	write(namesOf(c.cameras, func(x *spec.Camera) string { return x.Name }), m.NameCamAdr)
	write(namesOf(c.lights, func(x *spec.Light) string { return x.Name }), m.NameLightAdr)
	write(namesOf(s.Flexes, func(x *spec.Flex) string { return x.Name }), m.NameFlexAdr)
	write(namesOf(s.Meshes, func(x *spec.Mesh) string { return x.Name }), m.NameMeshAdr)
	write(namesOf(s.Skins, func(x *spec.Skin) string { return x.Name }), m.NameSkinAdr)
	write(namesOf(s.HFields, func(x *spec.HField) string { return x.Name }), m.NameHFieldAdr)
	write(namesOf(s.Textures, func(x *spec.Texture) string { return x.Name }), m.NameTexAdr)
	write(namesOf(s.Materials, func(x *spec.Material) string { return x.Name }), m.NameMatAdr)
	write(namesOf(s.Pairs, func(x *spec.Pair) string { return x.Name }), m.NamePairAdr)
	write(namesOf(s.Excludes, func(x *spec.Exclude) string { return x.Name }), m.NameExcludeAdr)
	write(namesOf(s.Equalities, func(x *spec.Equality) string { return x.Name }), m.NameEqAdr)
	write(namesOf(s.Tendons, func(x *spec.Tendon) string { return x.Name }), m.NameTendonAdr)
	write(namesOf(s.Actuators, func(x *spec.Actuator) string { return x.Name }), m.NameActuatorAdr)
	write(namesOf(s.Sensors, func(x *spec.Sensor) string { return x.Name }), m.NameSensorAdr)
	write(namesOf(s.Numerics, func(x *spec.Numeric) string { return x.Name }), m.NameNumericAdr)
	write(namesOf(s.Texts, func(x *spec.Text) string { return x.Name }), m.NameTextAdr)
	write(namesOf(s.Tuples, func(x *spec.Tuple) string { return x.Name }), m.NameTupleAdr)
	write(namesOf(s.Keys, func(x *spec.Key) string { return x.Name }), m.NameKeyAdr)
	write(namesOf(s.Plugins, func(x *spec.Plugin) string { return x.Name }), m.NamePluginAdr)
}

// packPaths stores the resolved origin path of every file-backed
// asset. With no file-backed assets the buffer is a single null byte.
func (c *Compiler) packPaths() {
	m := c.model
	comp := &c.spec.Compiler
	adr := int32(0)

	write := func(pathAdr []int32, id int32, dir, file string) {
		if file == "" {
			pathAdr[id] = -1
			return
		}
		p := assets.ResolvePath(comp.ModelFileDir, dir, file)
		pathAdr[id] = adr
		copy(m.Paths[adr:], p)
		adr += int32(len(p)) + 1
	}

	for _, ms := range c.spec.Meshes {
		write(m.MeshPathAdr, ms.ID, comp.MeshDir, ms.File)
	}
	for _, k := range c.spec.Skins {
		write(m.SkinPathAdr, k.ID, comp.MeshDir, k.File)
	}
	for _, h := range c.spec.HFields {
		write(m.HFieldPathAdr, h.ID, comp.MeshDir, h.File)
	}
	for _, t := range c.spec.Textures {
		write(m.TexPathAdr, t.ID, comp.TextureDir, t.File)
	}
}
