package engine

import (
	"fmt"
	"math"

	kmath "github.com/Faultbox/kforge/pkg/math"
	"github.com/Faultbox/kforge/pkg/model"
	"github.com/Faultbox/kforge/pkg/spec"
)

// Kinematic is a minimal stepper sufficient for length-range
// computation: forward kinematics plus transmission length evaluation,
// driven towards each extreme by projected coordinate descent over the
// joint coordinates. Gravity, contacts and passive forces play no role
// by construction.
type Kinematic struct{}

// NewKinematic returns the built-in stepper.
func NewKinematic() *Kinematic { return &Kinematic{} }

// Forward computes body frames from s.Qpos.
func (k *Kinematic) Forward(m *model.Model, s *State) {
	for i := range s.Qpos {
		if math.IsNaN(s.Qpos[i]) {
			RaiseError("nan in qpos")
		}
	}

	// world
	s.XPos[0], s.XPos[1], s.XPos[2] = 0, 0, 0
	s.XQuat[0], s.XQuat[1], s.XQuat[2], s.XQuat[3] = 1, 0, 0, 0

	for i := int32(1); i < m.Nbody; i++ {
		p := m.BodyParentID[i]
		pq := getQuat(s.XQuat, p)
		pp := getVec(s.XPos, p)

		xq := pq.Mul(getQuat(m.BodyQuat, i))
		xp := pp.Add(pq.RotateVec(getVec(m.BodyPos, i)))

		for jn := int32(0); jn < m.BodyJntNum[i]; jn++ {
			j := m.BodyJntAdr[i] + jn
			adr := m.JntQposAdr[j]
			switch spec.JointType(m.JntType[j]) {
			case spec.JointFree:
				xp = kmath.Vec3{X: s.Qpos[adr], Y: s.Qpos[adr+1], Z: s.Qpos[adr+2]}
				xq = kmath.Quat{W: s.Qpos[adr+3], X: s.Qpos[adr+4], Y: s.Qpos[adr+5], Z: s.Qpos[adr+6]}.Normalize()
			case spec.JointBall:
				anchor := xp.Add(xq.RotateVec(getVec(m.JntPos, j)))
				qloc := kmath.Quat{W: s.Qpos[adr], X: s.Qpos[adr+1], Y: s.Qpos[adr+2], Z: s.Qpos[adr+3]}.Normalize()
				xq = xq.Mul(qloc)
				xp = anchor.Sub(xq.RotateVec(getVec(m.JntPos, j)))
			case spec.JointHinge:
				anchor := xp.Add(xq.RotateVec(getVec(m.JntPos, j)))
				angle := s.Qpos[adr] - m.Qpos0[adr]
				qloc := kmath.QuatFromAxisAngle(getVec(m.JntAxis, j), angle)
				xq = xq.Mul(qloc)
				xp = anchor.Sub(xq.RotateVec(getVec(m.JntPos, j)))
			case spec.JointSlide:
				xp = xp.Add(xq.RotateVec(getVec(m.JntAxis, j)).Scale(s.Qpos[adr] - m.Qpos0[adr]))
			}
		}

		putVec(s.XPos, i, xp)
		putQuat(s.XQuat, i, xq)
	}
}

// ActuatorLength evaluates the transmission length of actuator i in
// the current state.
func (k *Kinematic) ActuatorLength(m *model.Model, s *State, i int) (float64, error) {
	gear := m.ActuatorGear[6*i]
	switch spec.TrnType(m.ActuatorTrnType[i]) {
	case spec.TrnJoint, spec.TrnJointInParent:
		j := m.ActuatorTrnID[2*i]
		switch spec.JointType(m.JntType[j]) {
		case spec.JointHinge, spec.JointSlide:
			return gear * s.Qpos[m.JntQposAdr[j]], nil
		default:
			return 0, fmt.Errorf("actuator %d: joint transmission on %s joint has no length", i, spec.JointType(m.JntType[j]))
		}
	case spec.TrnTendon:
		t := m.ActuatorTrnID[2*i]
		l, err := k.TendonLength(m, s, t)
		return gear * l, err
	default:
		return 0, fmt.Errorf("actuator %d: %s transmission has no length", i, spec.TrnType(m.ActuatorTrnType[i]))
	}
}

// TendonLength evaluates one tendon: fixed tendons sum joint
// coordinates with moment coefficients; spatial tendons accumulate
// site-to-site distances, scaled by the active pulley divisor.
// Wrapping geoms are treated as pass-through.
func (k *Kinematic) TendonLength(m *model.Model, s *State, t int32) (float64, error) {
	adr := m.TendonAdr[t]
	num := m.TendonNum[t]
	if num == 0 {
		return 0, fmt.Errorf("tendon %d has an empty path", t)
	}

	if spec.WrapType(m.WrapType[adr]) == spec.WrapJoint {
		var l float64
		for w := adr; w < adr+num; w++ {
			j := m.WrapObjID[w]
			l += m.WrapPrm[w] * s.Qpos[m.JntQposAdr[j]]
		}
		return l, nil
	}

	divisor := 1.0
	var l float64
	havePrev := false
	var prev kmath.Vec3
	for w := adr; w < adr+num; w++ {
		switch spec.WrapType(m.WrapType[w]) {
		case spec.WrapPulley:
			divisor = m.WrapPrm[w]
			if divisor <= 0 {
				divisor = 1
			}
			havePrev = false
		case spec.WrapSite:
			site := m.WrapObjID[w]
			b := m.SiteBodyID[site]
			pos := getQuat(s.XQuat, b).RotateVec(getVec(m.SitePos, site)).Add(getVec(s.XPos, b))
			if havePrev {
				l += pos.Sub(prev).Len() / divisor
			}
			prev = pos
			havePrev = true
		case spec.WrapGeom:
			// pass-through
		}
	}
	return l, nil
}

// SetLengthRange drives the actuator towards its shortest and longest
// feasible length by coordinate descent over the hinge and slide
// coordinates that can move it, then validates the interval. Unlimited
// hinges are searched within [-pi, pi]; an unlimited slide is an error.
func (k *Kinematic) SetLengthRange(m *model.Model, d *State, i int, opt spec.LROpt) ([2]float64, error) {
	var lr [2]float64

	// collect the scalar coordinates the search may move: only joints
	// that can influence this transmission
	relevant := make(map[int32]bool)
	switch spec.TrnType(m.ActuatorTrnType[i]) {
	case spec.TrnJoint, spec.TrnJointInParent:
		relevant[m.ActuatorTrnID[2*i]] = true
	case spec.TrnTendon:
		t := m.ActuatorTrnID[2*i]
		adr, num := m.TendonAdr[t], m.TendonNum[t]
		if num > 0 && spec.WrapType(m.WrapType[adr]) == spec.WrapJoint {
			for w := adr; w < adr+num; w++ {
				relevant[m.WrapObjID[w]] = true
			}
		} else {
			// spatial path: any joint can move the sites
			for j := int32(0); j < m.Njnt; j++ {
				relevant[j] = true
			}
		}
	}

	type coord struct {
		qadr   int32
		lo, hi float64
	}
	var coords []coord
	for j := int32(0); j < m.Njnt; j++ {
		if !relevant[j] {
			continue
		}
		jt := spec.JointType(m.JntType[j])
		if jt != spec.JointHinge && jt != spec.JointSlide {
			continue
		}
		lo, hi := m.JntRange[2*j], m.JntRange[2*j+1]
		if m.JntLimited[j] == 0 {
			if jt == spec.JointSlide {
				return lr, fmt.Errorf("actuator %d: unlimited slide joint %d in length range", i, j)
			}
			lo, hi = -math.Pi, math.Pi
		}
		coords = append(coords, coord{m.JntQposAdr[j], lo, hi})
	}

	d.Reset(m)
	k.Forward(m, d)
	l0, err := k.ActuatorLength(m, d, i)
	if err != nil {
		return lr, err
	}
	lr[0], lr[1] = l0, l0

	nstep := int(opt.IntTotal / opt.TimeStep)
	if nstep < 1 {
		nstep = 1
	}

	for dir := 0; dir < 2; dir++ {
		sign := -1.0
		if dir == 1 {
			sign = 1
		}
		d.Reset(m)
		k.Forward(m, d)
		best, err := k.ActuatorLength(m, d, i)
		if err != nil {
			return lr, err
		}
		step := opt.TimeStep * math.Max(opt.AccelScale, 1)

		for it := 0; it < nstep && step > 1e-12; it++ {
			improved := false
			for _, cd := range coords {
				old := d.Qpos[cd.qadr]
				for _, delta := range [2]float64{step, -step} {
					next := math.Max(cd.lo, math.Min(cd.hi, old+delta))
					if next == old {
						continue
					}
					d.Qpos[cd.qadr] = next
					k.Forward(m, d)
					l, err := k.ActuatorLength(m, d, i)
					if err != nil {
						return lr, err
					}
					if sign*l > sign*best+1e-14 {
						best = l
						old = next
						improved = true
						break
					}
					d.Qpos[cd.qadr] = old
				}
			}
			if !improved {
				step /= 2
			}
		}

		if dir == 0 && best < lr[0] {
			lr[0] = best
		}
		if dir == 1 && best > lr[1] {
			lr[1] = best
		}
	}

	// validate: the interval must be non-degenerate and contain the
	// reference length
	if lr[0] >= lr[1] {
		return lr, fmt.Errorf("actuator %d: invalid computed length range (%g, %g)", i, lr[0], lr[1])
	}
	if l0 < lr[0]-opt.Tolerance || l0 > lr[1]+opt.Tolerance {
		return lr, fmt.Errorf("actuator %d: reference length %g outside computed range (%g, %g)", i, l0, lr[0], lr[1])
	}
	return lr, nil
}

func getVec(a []float64, i int32) kmath.Vec3 {
	return kmath.Vec3{X: a[3*i], Y: a[3*i+1], Z: a[3*i+2]}
}

func putVec(a []float64, i int32, v kmath.Vec3) {
	a[3*i], a[3*i+1], a[3*i+2] = v.X, v.Y, v.Z
}

func getQuat(a []float64, i int32) kmath.Quat {
	return kmath.Quat{W: a[4*i], X: a[4*i+1], Y: a[4*i+2], Z: a[4*i+3]}
}

func putQuat(a []float64, i int32, q kmath.Quat) {
	a[4*i], a[4*i+1], a[4*i+2], a[4*i+3] = q.W, q.X, q.Y, q.Z
}
