package compile

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/kforge/internal/assets"
	"github.com/Faultbox/kforge/pkg/engine"
	"github.com/Faultbox/kforge/pkg/model"
	"github.com/Faultbox/kforge/pkg/spec"
)

// State tracks the compile driver through its phases.
type State int

const (
	StateFresh State = iota
	StateFlattened
	StateResolved
	StateConsolidated
	StatePacked
	StateFinalized
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateFlattened:
		return "flattened"
	case StateResolved:
		return "resolved"
	case StateConsolidated:
		return "consolidated"
	case StatePacked:
		return "packed"
	case StateFinalized:
		return "finalized"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Compiler drives the compile pipeline. A single Compiler may be
// reused: a successful compile can be re-run after further spec edits.
// A failed compile leaves the spec available for inspection; fields
// that phases before the failure resolved in place (orientations,
// frames, asset names, the world's inertial fields) keep their
// resolved values.
type Compiler struct {
	spec     *spec.Spec
	log      *zap.Logger
	provider *assets.Provider
	host     PluginHost
	stepper  engine.Stepper

	state    State
	err      *Error
	warnings []*Error

	// flattened entity lists, declaration order
	bodies  []*spec.Body
	joints  []*spec.Joint
	geoms   []*spec.Geom
	sites   []*spec.Site
	cameras []*spec.Camera
	lights  []*spec.Light

	// (kind, name) -> id
	ids map[spec.ObjType]map[string]int32

	// per-body BVH trees, built after fusion
	bodyBVH []*BVH

	nq, nv, nu, na int32
	nmocap         int32
	model          *model.Model
	autoStat       model.Stat
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Compiler) { c.log = l }
}

// WithVFS provides in-memory asset files.
func WithVFS(vfs assets.VFS) Option {
	return func(c *Compiler) { c.provider = assets.NewProvider(vfs) }
}

// WithPluginHost sets the host answering plugin capability queries.
func WithPluginHost(h PluginHost) Option {
	return func(c *Compiler) { c.host = h }
}

// WithStepper sets the physics stepper used by the length-range
// solver.
func WithStepper(st engine.Stepper) Option {
	return func(c *Compiler) { c.stepper = st }
}

// New creates a compiler for the given spec.
func New(s *spec.Spec, opts ...Option) *Compiler {
	c := &Compiler{
		spec:  s,
		log:   zap.NewNop(),
		state: StateFresh,
	}
	for _, o := range opts {
		o(c)
	}
	if c.provider == nil {
		c.provider = assets.NewProvider(nil)
	}
	if c.stepper == nil {
		c.stepper = engine.NewKinematic()
	}
	return c
}

// Error returns the first structured error of the last compile, or nil.
func (c *Compiler) Error() *Error { return c.err }

// Warnings returns the non-fatal notes collected by the last compile.
func (c *Compiler) Warnings() []*Error { return c.warnings }

// State returns the driver state.
func (c *Compiler) State() State { return c.state }

// warn records a non-fatal note.
func (c *Compiler) warn(e *Error) {
	e.Warning = true
	c.warnings = append(c.warnings, e)
	c.log.Warn(e.Message, zap.String("object", e.Object), zap.Int32("id", e.ID))
}

// reset clears every derived field so a finalized or failed compiler
// can run again against the (possibly edited) spec.
func (c *Compiler) reset() {
	c.err = nil
	c.warnings = nil
	c.bodies = nil
	c.joints = nil
	c.geoms = nil
	c.sites = nil
	c.cameras = nil
	c.lights = nil
	c.ids = nil
	c.bodyBVH = nil
	c.nq, c.nv, c.nu, c.na = 0, 0, 0, 0
	c.nmocap = 0
	c.model = nil
	c.state = StateFresh
}

// fail stores the error, releases partial output and marks the driver
// failed. Spec fields already resolved by earlier phases are not rolled
// back; callers inspect the error and may re-edit.
func (c *Compiler) fail(err error) {
	if ce, ok := err.(*Error); ok {
		c.err = ce
	} else {
		c.err = errorf(InternalError, "%v", err).wrap(err)
	}
	c.model = nil
	c.state = StateFailed
}

// Compile runs the full pipeline. On success it returns the packed
// model, owned by the caller. On failure it returns a nil model and
// the structured error; partial allocations are released.
func (c *Compiler) Compile() (*model.Model, error) {
	c.reset()

	phases := []struct {
		name  string
		state State
		fn    func() error
	}{
		{"flatten", StateFlattened, c.flatten},
		{"discard-visual", StateFlattened, c.discardVisualAssets},
		{"assets", StateFlattened, c.compileAssets},
		{"entities", StateFlattened, c.compileEntities},
		{"inertia", StateConsolidated, c.consolidateInertia},
		{"resolve", StateResolved, c.resolveReferences},
		{"sort-pairs", StateResolved, c.sortPairs},
		{"fuse-static", StateResolved, c.fuseStatic},
		{"bvh", StateResolved, c.buildBVH},
		{"pack", StatePacked, c.pack},
		{"lengthrange", StatePacked, c.lengthRange},
		{"finalize", StateFinalized, c.finalize},
	}

	for _, ph := range phases {
		start := time.Now()
		if err := ph.fn(); err != nil {
			c.fail(err)
			c.log.Debug("compile failed", zap.String("phase", ph.name), zap.Error(c.err))
			return nil, c.err
		}
		c.state = ph.state
		c.log.Debug("phase done", zap.String("phase", ph.name), zap.Duration("took", time.Since(start)))
	}

	return c.model, nil
}

// lengthRange runs the actuator length-range solver with the engine
// error trap installed: the engine's process-wide error handler is
// swapped for one that panics into our recover, and restored no matter
// how the solver exits.
func (c *Compiler) lengthRange() (err error) {
	if c.model == nil {
		return errorf(InternalError, "length range before pack")
	}

	restore := engine.SwapErrorHandler(func(msg string) {
		panic(&engineFault{msg: msg})
	})
	defer func() {
		restore()
		if r := recover(); r != nil {
			if f, ok := r.(*engineFault); ok {
				err = errorf(EngineError, "engine error: %s", f.msg)
				return
			}
			panic(r)
		}
	}()

	return c.computeLengthRanges()
}

// engineFault carries an engine fatal-error message through the panic
// trap.
type engineFault struct{ msg string }

// finalize computes model statistics and validates the packed output.
func (c *Compiler) finalize() error {
	c.setStatistics()
	if err := c.selfCheck(); err != nil {
		return err
	}
	c.log.Info("model compiled",
		zap.Int32("nq", c.model.Nq),
		zap.Int32("nv", c.model.Nv),
		zap.Int32("nu", c.model.Nu),
		zap.Int32("nbody", c.model.Nbody),
		zap.Int32("ngeom", c.model.Ngeom),
	)
	return nil
}

// selfCheck verifies invariants that should hold on every packed
// model. A violation is an internal error.
func (c *Compiler) selfCheck() error {
	m := c.model
	var dofsum int32
	for i := int32(0); i < m.Nbody; i++ {
		dofsum += m.BodyDofNum[i]
	}
	if dofsum != m.Nv {
		return errorf(InternalError, "dof count mismatch: %d vs nv=%d, SHOULD NOT OCCUR", dofsum, m.Nv)
	}
	var npos int32
	for i := int32(0); i < m.Njnt; i++ {
		npos += spec.JointType(m.JntType[i]).NPos()
	}
	if npos != m.Nq {
		return errorf(InternalError, "qpos count mismatch: %d vs nq=%d, SHOULD NOT OCCUR", npos, m.Nq)
	}
	if m.ND != 2*m.NM-m.Nv {
		return errorf(InternalError, "nD=%d inconsistent with nM=%d nv=%d, SHOULD NOT OCCUR", m.ND, m.NM, m.Nv)
	}
	return nil
}

// Decompile copies user-mutable fields of a packed model back into the
// spec. The model must have been produced by this compiler against
// this spec; any size mismatch fails.
func (c *Compiler) Decompile(m *model.Model) error {
	if c.state != StateFinalized || c.model == nil {
		return fmt.Errorf("decompile requires a finalized compile")
	}
	return c.copyBack(m)
}
