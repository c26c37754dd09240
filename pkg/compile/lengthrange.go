package compile

import (
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/kforge/pkg/engine"
	"github.com/Faultbox/kforge/pkg/spec"
)

// maxLRWorkers caps the length-range worker pool.
const maxLRWorkers = 16

// computeLengthRanges fills actuator_length0, tendon_length0 and the
// actuator length ranges. Selected actuators are sharded over a worker
// pool; each worker owns a private simulation state and writes only
// its own actuators' slots, so the result is identical for any worker
// count. The first error in worker-index order wins.
func (c *Compiler) computeLengthRanges() error {
	m := c.model
	opt := c.spec.Compiler.LROpt

	// reference lengths at qpos0
	kin := engine.NewKinematic()
	d0 := engine.NewState(m)
	kin.Forward(m, d0)
	for t := int32(0); t < m.Ntendon; t++ {
		if l, err := kin.TendonLength(m, d0, t); err == nil {
			m.TendonLength0[t] = l
		}
	}
	for i := 0; i < int(m.Nu); i++ {
		switch spec.TrnType(m.ActuatorTrnType[i]) {
		case spec.TrnJoint, spec.TrnJointInParent, spec.TrnTendon:
			if l, err := kin.ActuatorLength(m, d0, i); err == nil {
				m.ActuatorLength0[i] = l
			}
		}
	}

	// select the actuators that get a computed range
	var sel []int
	for i, a := range c.spec.Actuators {
		switch opt.Mode {
		case spec.LRNone:
			continue
		case spec.LRMuscle:
			if !a.IsMuscle() {
				continue
			}
		case spec.LRMuscleUser:
			if !a.IsMuscle() && !a.IsUser() {
				continue
			}
		}
		if opt.UseExisting && m.ActuatorLengthRange[2*i] < m.ActuatorLengthRange[2*i+1] {
			continue
		}
		switch spec.TrnType(m.ActuatorTrnType[i]) {
		case spec.TrnJoint, spec.TrnJointInParent:
			j := m.ActuatorTrnID[2*i]
			if opt.UseLimit && m.JntLimited[j] == 1 {
				lo := m.ActuatorGear[6*i] * m.JntRange[2*j]
				hi := m.ActuatorGear[6*i] * m.JntRange[2*j+1]
				if lo > hi {
					lo, hi = hi, lo
				}
				m.ActuatorLengthRange[2*i] = lo
				m.ActuatorLengthRange[2*i+1] = hi
				continue
			}
		case spec.TrnTendon:
			t := m.ActuatorTrnID[2*i]
			if opt.UseLimit && m.TendonLimited[t] == 1 {
				lo := m.ActuatorGear[6*i] * m.TendonRange[2*t]
				hi := m.ActuatorGear[6*i] * m.TendonRange[2*t+1]
				if lo > hi {
					lo, hi = hi, lo
				}
				m.ActuatorLengthRange[2*i] = lo
				m.ActuatorLengthRange[2*i+1] = hi
				continue
			}
		default:
			// the transmission has no length
			c.warn(objErrorf(EngineError, a.Name, a.ID, "length range skipped: %s transmission has no length", a.Trn))
			continue
		}
		sel = append(sel, i)
	}
	if len(sel) == 0 {
		return nil
	}

	nworker := 1
	if c.spec.Compiler.UseThread && len(sel) >= 2 {
		nworker = runtime.NumCPU() / 2
		if nworker > maxLRWorkers {
			nworker = maxLRWorkers
		}
		if nworker > len(sel) {
			nworker = len(sel)
		}
		if nworker < 1 {
			nworker = 1
		}
	}

	if nworker == 1 {
		d := engine.NewState(m)
		for _, i := range sel {
			lr, err := c.stepper.SetLengthRange(m, d, i, opt)
			if err != nil {
				a := c.spec.Actuators[i]
				return objErrorf(EngineError, a.Name, a.ID, "length range: %v", err).wrap(err)
			}
			m.ActuatorLengthRange[2*i] = lr[0]
			m.ActuatorLengthRange[2*i+1] = lr[1]
		}
		return nil
	}

	c.log.Debug("length range solver", zap.Int("actuators", len(sel)), zap.Int("workers", nworker))

	// contiguous shards; workers never share slots
	chunk := (len(sel) + nworker - 1) / nworker
	errs := make([]error, nworker)
	var wg sync.WaitGroup
	for w := 0; w < nworker; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(sel))
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			// engine faults raised on a worker must not escape its
			// goroutine; convert them here, first-worker-error wins
			defer func() {
				if r := recover(); r != nil {
					if f, ok := r.(*engineFault); ok {
						if errs[w] == nil {
							errs[w] = errorf(EngineError, "engine error: %s", f.msg)
						}
						return
					}
					panic(r)
				}
			}()
			d := engine.NewState(m)
			for _, i := range sel[lo:hi] {
				lr, err := c.stepper.SetLengthRange(m, d, i, opt)
				if err != nil {
					if errs[w] == nil {
						a := c.spec.Actuators[i]
						errs[w] = objErrorf(EngineError, a.Name, a.ID, "length range: %v", err).wrap(err)
					}
					return
				}
				m.ActuatorLengthRange[2*i] = lr[0]
				m.ActuatorLengthRange[2*i+1] = lr[1]
			}
		}(w, lo, hi)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
