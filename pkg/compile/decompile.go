package compile

import (
	kmath "github.com/Faultbox/kforge/pkg/math"
	"github.com/Faultbox/kforge/pkg/model"
	"github.com/Faultbox/kforge/pkg/spec"
)

// copyBack writes the user-mutable fields of a packed model into the
// spec. The model must match the last compile exactly in every size.
func (c *Compiler) copyBack(m *model.Model) error {
	if err := c.checkCopySizes(m); err != nil {
		return err
	}

	getVec := func(a []float64, i int32) kmath.Vec3 {
		return kmath.Vec3{X: a[3*i], Y: a[3*i+1], Z: a[3*i+2]}
	}
	getQuat := func(a []float64, i int32) kmath.Quat {
		return kmath.Quat{W: a[4*i], X: a[4*i+1], Y: a[4*i+2], Z: a[4*i+3]}
	}

	// bodies
	for i32, b := range c.bodies {
		i := int32(i32)
		if i == 0 {
			continue
		}
		b.Pos = getVec(m.BodyPos, i)
		b.Quat = getQuat(m.BodyQuat, i)
		b.IPos = getVec(m.BodyIPos, i)
		b.IQuat = getQuat(m.BodyIQuat, i)
		b.Mass = m.BodyMass[i]
		b.Inertia = getVec(m.BodyInertia, i)
		b.Gravcomp = m.BodyGravcomp[i]
		b.Alt = kmath.NewAlt()
		b.IAlt = kmath.NewAlt()
		b.FullInertia[0] = spec.Undefined()
	}

	// joints: ranges and references are copied back as stored in the
	// model, without unit conversion
	for _, j := range c.joints {
		i := j.ID
		j.Pos = getVec(m.JntPos, i)
		j.Axis = getVec(m.JntAxis, i)
		j.Stiffness = m.JntStiffness[i]
		j.Range[0] = m.JntRange[2*i]
		j.Range[1] = m.JntRange[2*i+1]
		j.ActFrcRange[0] = m.JntActFrcRange[2*i]
		j.ActFrcRange[1] = m.JntActFrcRange[2*i+1]
		j.Margin = m.JntMargin[i]
		j.Ref = m.Qpos0[m.JntQposAdr[i]]
		j.SpringRef = m.QposSpring[m.JntQposAdr[i]]
		if j.Type == spec.JointFree || j.Type == spec.JointBall {
			j.Ref = 0
			j.SpringRef = 0
		}
		j.Armature = m.DofArmature[m.JntDofAdr[i]]
		j.Damping = m.DofDamping[m.JntDofAdr[i]]
		j.Frictionloss = m.DofFrictionloss[m.JntDofAdr[i]]
	}

	// geoms
	for _, g := range c.geoms {
		i := g.ID
		g.Size = getVec(m.GeomSize, i)
		g.Pos = getVec(m.GeomPos, i)
		g.Quat = getQuat(m.GeomQuat, i)
		g.Alt = kmath.NewAlt()
		g.FromTo[0] = spec.Undefined()
		copy(g.Friction[:], m.GeomFriction[3*i:3*i+3])
		g.SolMix = m.GeomSolMix[i]
		g.Margin = m.GeomMargin[i]
		g.Gap = m.GeomGap[i]
		copy(g.RGBA[:], m.GeomRGBA[4*i:4*i+4])
	}

	// mesh frame offsets
	for _, ms := range c.spec.Meshes {
		ms.Pos = getVec(m.MeshPos, ms.ID)
		ms.Quat = getQuat(m.MeshQuat, ms.ID)
	}

	// heightfield elevation, flipped back to the author's row order
	for _, h := range c.spec.HFields {
		adr := m.HFieldAdr[h.ID]
		h.UserData = make([]float32, h.NRow*h.NCol)
		for r := int32(0); r < h.NRow; r++ {
			copy(h.UserData[r*h.NCol:(r+1)*h.NCol],
				m.HFieldData[adr+(h.NRow-1-r)*h.NCol:adr+(h.NRow-r)*h.NCol])
		}
		copy(h.Size[:], m.HFieldSize[4*h.ID:4*h.ID+4])
	}

	// sites, cameras, lights
	for _, x := range c.sites {
		i := x.ID
		x.Size = getVec(m.SiteSize, i)
		x.Pos = getVec(m.SitePos, i)
		x.Quat = getQuat(m.SiteQuat, i)
		x.Alt = kmath.NewAlt()
		x.FromTo[0] = spec.Undefined()
		copy(x.RGBA[:], m.SiteRGBA[4*i:4*i+4])
	}
	for _, cam := range c.cameras {
		i := cam.ID
		cam.Pos = getVec(m.CamPos, i)
		cam.Quat = getQuat(m.CamQuat, i)
		cam.Alt = kmath.NewAlt()
		cam.Fovy = m.CamFovy[i]
		cam.IPD = m.CamIPD[i]
		cam.SensorSize[0] = m.CamSensorSize[2*i]
		cam.SensorSize[1] = m.CamSensorSize[2*i+1]
		cam.Focal[0] = m.CamIntrinsic[4*i]
		cam.Focal[1] = m.CamIntrinsic[4*i+1]
		cam.Principal[0] = m.CamIntrinsic[4*i+2]
		cam.Principal[1] = m.CamIntrinsic[4*i+3]
	}
	for _, l := range c.lights {
		i := l.ID
		l.Pos = getVec(m.LightPos, i)
		l.Dir = getVec(m.LightDir, i)
		copy(l.Attenuation[:], m.LightAttenuation[3*i:3*i+3])
		l.Cutoff = m.LightCutoff[i]
		l.Exponent = m.LightExponent[i]
		copy(l.Ambient[:], m.LightAmbient[3*i:3*i+3])
		copy(l.Diffuse[:], m.LightDiffuse[3*i:3*i+3])
		copy(l.Specular[:], m.LightSpecular[3*i:3*i+3])
	}

	// materials
	for _, mt := range c.spec.Materials {
		i := mt.ID
		mt.TexRepeat[0] = m.MatTexRepeat[2*i]
		mt.TexRepeat[1] = m.MatTexRepeat[2*i+1]
		mt.Emission = m.MatEmission[i]
		mt.Specular = m.MatSpecular[i]
		mt.Shininess = m.MatShininess[i]
		mt.Reflectance = m.MatReflectance[i]
		copy(mt.RGBA[:], m.MatRGBA[4*i:4*i+4])
	}

	// pairs, equalities, tendons, actuators, sensors
	for _, p := range c.spec.Pairs {
		i := p.ID
		p.Condim = m.PairDim[i]
		copy(p.Friction[:], m.PairFriction[5*i:5*i+5])
		p.SolRef[0] = m.PairSolRef[2*i]
		p.SolRef[1] = m.PairSolRef[2*i+1]
		p.SolRefFrict[0] = m.PairSolRefFrict[2*i]
		p.SolRefFrict[1] = m.PairSolRefFrict[2*i+1]
		copy(p.SolImp[:], m.PairSolImp[5*i:5*i+5])
		p.Margin = m.PairMargin[i]
		p.Gap = m.PairGap[i]
	}
	for _, eq := range c.spec.Equalities {
		i := eq.ID
		eq.Active = m.EqActive[i] == 1
		eq.SolRef[0] = m.EqSolRef[2*i]
		eq.SolRef[1] = m.EqSolRef[2*i+1]
		copy(eq.SolImp[:], m.EqSolImp[5*i:5*i+5])
		copy(eq.Data[:], m.EqData[11*i:11*i+11])
	}
	for _, t := range c.spec.Tendons {
		i := t.ID
		t.Range[0] = m.TendonRange[2*i]
		t.Range[1] = m.TendonRange[2*i+1]
		t.Width = m.TendonWidth[i]
		t.Margin = m.TendonMargin[i]
		t.Stiffness = m.TendonStiffness[i]
		t.Damping = m.TendonDamping[i]
		t.Frictionloss = m.TendonFrictionloss[i]
		t.SpringLength[0] = m.TendonLengthSpring[2*i]
		t.SpringLength[1] = m.TendonLengthSpring[2*i+1]
	}
	for _, a := range c.spec.Actuators {
		i := a.ID
		copy(a.DynPrm[:], m.ActuatorDynPrm[10*i:10*i+10])
		copy(a.GainPrm[:], m.ActuatorGainPrm[10*i:10*i+10])
		copy(a.BiasPrm[:], m.ActuatorBiasPrm[10*i:10*i+10])
		a.CtrlRange[0] = m.ActuatorCtrlRange[2*i]
		a.CtrlRange[1] = m.ActuatorCtrlRange[2*i+1]
		a.ForceRange[0] = m.ActuatorForceRange[2*i]
		a.ForceRange[1] = m.ActuatorForceRange[2*i+1]
		a.ActRange[0] = m.ActuatorActRange[2*i]
		a.ActRange[1] = m.ActuatorActRange[2*i+1]
		copy(a.Gear[:], m.ActuatorGear[6*i:6*i+6])
		a.CrankLength = m.ActuatorCrankLength[i]
		a.LengthRange[0] = m.ActuatorLengthRange[2*i]
		a.LengthRange[1] = m.ActuatorLengthRange[2*i+1]
	}
	for _, x := range c.spec.Sensors {
		x.Cutoff = m.SensorCutoff[x.ID]
		x.Noise = m.SensorNoise[x.ID]
	}

	// numerics, tuples, keyframes
	for _, n := range c.spec.Numerics {
		i := n.ID
		n.Size = m.NumericSize[i]
		n.Data = append([]float64(nil), m.NumericData[m.NumericAdr[i]:m.NumericAdr[i]+m.NumericSize[i]]...)
	}
	for _, t := range c.spec.Tuples {
		adr := m.TupleAdr[t.ID]
		for e := range t.Entries {
			t.Entries[e].Prm = m.TupleObjPrm[adr+int32(e)]
		}
	}
	for _, k := range c.spec.Keys {
		i := k.ID
		k.Time = m.KeyTime[i]
		k.Qpos = append([]float64(nil), m.KeyQpos[m.Nq*i:m.Nq*(i+1)]...)
		k.Qvel = append([]float64(nil), m.KeyQvel[m.Nv*i:m.Nv*(i+1)]...)
		k.Act = append([]float64(nil), m.KeyAct[m.Na*i:m.Na*(i+1)]...)
		k.Ctrl = append([]float64(nil), m.KeyCtrl[m.Nu*i:m.Nu*(i+1)]...)
		k.MPos = append([]float64(nil), m.KeyMPos[3*m.Nmocap*i:3*m.Nmocap*(i+1)]...)
		k.MQuat = append([]float64(nil), m.KeyMQuat[4*m.Nmocap*i:4*m.Nmocap*(i+1)]...)
	}

	// statistics: values that differ from the automatic ones are user
	// overrides and survive in the spec
	st := &c.spec.Stat
	st.MeanMass = overrideOf(m.Stat.MeanMass, c.autoStat.MeanMass)
	st.MeanInertia = overrideOf(m.Stat.MeanInertia, c.autoStat.MeanInertia)
	st.MeanSize = overrideOf(m.Stat.MeanSize, c.autoStat.MeanSize)
	st.Extent = overrideOf(m.Stat.Extent, c.autoStat.Extent)
	if m.Stat.Center != c.autoStat.Center {
		st.Center = m.Stat.Center
	} else {
		st.Center = [3]float64{spec.Undefined(), 0, 0}
	}

	return nil
}

// overrideOf returns the value when it differs from the automatic one,
// else the undefined marker.
func overrideOf(v, auto float64) float64 {
	if v != auto {
		return v
	}
	return spec.Undefined()
}

// checkCopySizes verifies that every size of m matches the compiled
// model.
func (c *Compiler) checkCopySizes(m *model.Model) error {
	a, b := c.model.Sizes, m.Sizes
	if a != b {
		return errorf(ParseOrSpecError, "model sizes do not match the compiled spec")
	}
	return nil
}
