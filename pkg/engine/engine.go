// Package engine is the compiler's interface to the physics stepper.
// The compiler only needs it for the actuator length-range subroutine;
// the full simulator is an external collaborator. A self-contained
// kinematic stepper is provided for that purpose.
package engine

import (
	"sync"

	"github.com/Faultbox/kforge/pkg/model"
	"github.com/Faultbox/kforge/pkg/spec"
)

// Stepper computes actuator length ranges by bounded simulation with
// gravity, contact, passive forces and friction loss disabled.
type Stepper interface {
	// SetLengthRange computes the length range of actuator i. d is the
	// worker-private simulation state; m is shared read-only.
	SetLengthRange(m *model.Model, d *State, i int, opt spec.LROpt) ([2]float64, error)
}

// State is a per-worker simulation state.
type State struct {
	Qpos []float64
	Qvel []float64

	// body frames computed by forward kinematics
	XPos  []float64 // 3*nbody
	XQuat []float64 // 4*nbody
}

// NewState allocates a state sized for m, initialized to qpos0.
func NewState(m *model.Model) *State {
	s := &State{
		Qpos:  make([]float64, m.Nq),
		Qvel:  make([]float64, m.Nv),
		XPos:  make([]float64, 3*m.Nbody),
		XQuat: make([]float64, 4*m.Nbody),
	}
	copy(s.Qpos, m.Qpos0)
	return s
}

// Reset restores the state to the model reference configuration.
func (s *State) Reset(m *model.Model) {
	copy(s.Qpos, m.Qpos0)
	for i := range s.Qvel {
		s.Qvel[i] = 0
	}
}

// The process-wide fatal-error handler. The engine signals low-level
// faults through it; the compile driver swaps in a transient handler
// for the duration of its subcalls and restores the previous one on
// every exit path.
var (
	handlerMu    sync.Mutex
	errorHandler func(msg string)
)

// SwapErrorHandler installs h and returns a function restoring the
// previous handler.
func SwapErrorHandler(h func(msg string)) (restore func()) {
	handlerMu.Lock()
	prev := errorHandler
	errorHandler = h
	handlerMu.Unlock()
	return func() {
		handlerMu.Lock()
		errorHandler = prev
		handlerMu.Unlock()
	}
}

// RaiseError signals a fatal engine fault through the installed
// handler. Without a handler it panics; the fault is not recoverable
// at this level either way.
func RaiseError(msg string) {
	handlerMu.Lock()
	h := errorHandler
	handlerMu.Unlock()
	if h != nil {
		h(msg)
	}
	panic("engine: " + msg)
}
