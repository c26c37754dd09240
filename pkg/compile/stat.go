package compile

import (
	"math"

	"github.com/Faultbox/kforge/pkg/spec"
)

// setStatistics computes the model statistics from the packed arrays.
// Statistics the author set explicitly override the automatic values.
func (c *Compiler) setStatistics() {
	m := c.model

	// mean mass and inertia over non-world bodies with positive mass
	var mass, inertia float64
	var nmass int
	for i := int32(1); i < m.Nbody; i++ {
		if m.BodyMass[i] > 0 {
			mass += m.BodyMass[i]
			inertia += (m.BodyInertia[3*i] + m.BodyInertia[3*i+1] + m.BodyInertia[3*i+2]) / 3
			nmass++
		}
	}
	if nmass > 0 {
		m.Stat.MeanMass = mass / float64(nmass)
		m.Stat.MeanInertia = inertia / float64(nmass)
	} else {
		m.Stat.MeanMass = 1
		m.Stat.MeanInertia = 1
	}

	// mean size over geoms, extent over geom bounding spheres placed
	// at body positions
	var size float64
	var nsize int
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := int32(0); i < m.Ngeom; i++ {
		r := m.GeomRBound[i]
		if r > 0 {
			size += r
			nsize++
		}
		b := int(m.GeomBodyID[i])
		for k := 0; k < 3; k++ {
			p := m.BodyPos[3*b+k] + m.GeomPos[3*int(i)+k]
			lo[k] = math.Min(lo[k], p-r)
			hi[k] = math.Max(hi[k], p+r)
		}
	}
	if nsize > 0 {
		m.Stat.MeanSize = size / float64(nsize)
	} else {
		m.Stat.MeanSize = 0.1
	}

	extent := 0.0
	var center [3]float64
	if nsize > 0 || m.Ngeom > 0 {
		for k := 0; k < 3; k++ {
			if hi[k] >= lo[k] {
				extent = math.Max(extent, hi[k]-lo[k])
				center[k] = (hi[k] + lo[k]) / 2
			}
		}
	}
	if extent <= 0 {
		extent = 2 * m.Stat.MeanSize
	}
	m.Stat.Extent = extent
	m.Stat.Center = center

	// remember the automatic values; decompile compares against them
	// to detect user overrides
	c.autoStat = m.Stat

	// user overrides
	st := &c.spec.Stat
	if spec.Defined(st.MeanMass) {
		m.Stat.MeanMass = st.MeanMass
	}
	if spec.Defined(st.MeanInertia) {
		m.Stat.MeanInertia = st.MeanInertia
	}
	if spec.Defined(st.MeanSize) {
		m.Stat.MeanSize = st.MeanSize
	}
	if spec.Defined(st.Extent) {
		m.Stat.Extent = st.Extent
	}
	if spec.Defined(st.Center[0]) {
		m.Stat.Center = st.Center
	}
}
