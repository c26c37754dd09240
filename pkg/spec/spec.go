// Package spec holds the author-level model specification: a tree of
// bodies with joints, geoms, sites, cameras and lights, plus flat lists
// of assets, constraints, tendons, actuators, sensors and custom data.
// The specification stays mutable until it is handed to the compiler.
package spec

import (
	"math"

	kmath "github.com/Faultbox/kforge/pkg/math"
)

// Undefined marks a scalar field whose value the author did not set.
func Undefined() float64 { return math.NaN() }

// Defined reports whether v carries an author-set value.
func Defined(v float64) bool { return !math.IsNaN(v) }

// ObjType identifies an entity kind.
type ObjType int32

// Entity kinds, in the order their lists are packed.
const (
	ObjUnknown ObjType = iota
	ObjBody
	ObjJoint
	ObjGeom
	ObjSite
	ObjCamera
	ObjLight
	ObjFlex
	ObjMesh
	ObjSkin
	ObjHField
	ObjTexture
	ObjMaterial
	ObjPair
	ObjExclude
	ObjEquality
	ObjTendon
	ObjActuator
	ObjSensor
	ObjNumeric
	ObjText
	ObjTuple
	ObjKey
	ObjPlugin
)

// String returns the lowercase kind name used in error messages.
func (t ObjType) String() string {
	switch t {
	case ObjBody:
		return "body"
	case ObjJoint:
		return "joint"
	case ObjGeom:
		return "geom"
	case ObjSite:
		return "site"
	case ObjCamera:
		return "camera"
	case ObjLight:
		return "light"
	case ObjFlex:
		return "flex"
	case ObjMesh:
		return "mesh"
	case ObjSkin:
		return "skin"
	case ObjHField:
		return "hfield"
	case ObjTexture:
		return "texture"
	case ObjMaterial:
		return "material"
	case ObjPair:
		return "pair"
	case ObjExclude:
		return "exclude"
	case ObjEquality:
		return "equality"
	case ObjTendon:
		return "tendon"
	case ObjActuator:
		return "actuator"
	case ObjSensor:
		return "sensor"
	case ObjNumeric:
		return "numeric"
	case ObjText:
		return "text"
	case ObjTuple:
		return "tuple"
	case ObjKey:
		return "key"
	case ObjPlugin:
		return "plugin"
	default:
		return "unknown"
	}
}

// Element is the part shared by every entity: identity, default class
// and the id assigned at compile time.
type Element struct {
	Name  string
	Class string // default class the entity was added under
	ID    int32  // insertion index within the kind, assigned on compile
	Info  string // provenance note for error messages, e.g. "line 12"
}

// InertiaMode controls inference of body inertia from geoms.
type InertiaMode int32

const (
	// InertiaAuto infers inertia from geoms only for bodies without an
	// explicit inertial frame.
	InertiaAuto InertiaMode = iota
	// InertiaGeom always recomputes inertia from geoms.
	InertiaGeom
	// InertiaExplicit never infers; bodies must declare inertia.
	InertiaExplicit
)

// LRMode selects which actuators get a computed length range.
type LRMode int32

const (
	LRNone LRMode = iota
	LRMuscle
	LRMuscleUser
	LRAll
)

// LROpt configures the actuator length-range solver.
type LROpt struct {
	Mode        LRMode
	UseExisting bool // keep ranges that are already valid
	UseLimit    bool // take ranges from joint/tendon limits when available
	AccelScale  float64
	MaxForce    float64
	TimeConst   float64
	TimeStep    float64
	IntTotal    float64 // total simulated time per direction
	IntEval     float64 // interval used for convergence evaluation
	Tolerance   float64
}

// DefaultLROpt returns the solver defaults.
func DefaultLROpt() LROpt {
	return LROpt{
		Mode:        LRMuscle,
		UseExisting: true,
		AccelScale:  20,
		MaxForce:    0,
		TimeConst:   1,
		TimeStep:    0.01,
		IntTotal:    10,
		IntEval:     2,
		Tolerance:   0.05,
	}
}

// Compiler holds the compile-time options of the specification.
type Compiler struct {
	Degrees           bool   // angles are degrees in the input
	EulerSeq          string // euler rotation sequence, e.g. "xyz"
	MeshDir           string
	TextureDir        string
	ModelFileDir      string // directory of the model file, for asset paths
	BoundMass         float64
	BoundInertia      float64
	SetTotalMass      float64 // <=0 disables rescaling
	BalanceInertia    bool
	FuseStatic        bool
	DiscardVisual     bool
	InertiaFromGeom   InertiaMode
	InertiaGroupRange [2]int32
	LROpt             LROpt
	UseThread         bool // parallelize the length-range solver
}

// Option holds the physics options copied verbatim into the packed model.
type Option struct {
	Timestep    float64
	Gravity     kmath.Vec3
	Wind        kmath.Vec3
	Magnetic    kmath.Vec3
	Density     float64
	Viscosity   float64
	Integrator  int32
	Iterations  int32
	Tolerance   float64
	DisableFlag uint32
}

// Statistic holds model statistics. NaN fields are computed by the
// compiler; set fields are user overrides preserved through decompile.
type Statistic struct {
	MeanInertia float64
	MeanMass    float64
	MeanSize    float64
	Extent      float64
	Center      [3]float64 // NaN in slot 0 when automatic
}

// Spec is the mutable author-level model.
type Spec struct {
	ModelName string

	Compiler Compiler
	Option   Option
	Stat     Statistic

	Memory  int64 // explicit arena bytes, <0 for automatic
	NStack  int64 // legacy stack size in numbers, <0 disabled
	NConMax int32 // legacy contact capacity, <0 disabled
	NJMax   int32 // legacy constraint capacity, <0 disabled

	NUserBody, NUserJnt, NUserGeom, NUserSite int32
	NUserCam, NUserTendon, NUserActuator      int32
	NUserSensor                               int32

	World *Body

	Meshes     []*Mesh
	HFields    []*HField
	Textures   []*Texture
	Materials  []*Material
	Skins      []*Skin
	Flexes     []*Flex
	Pairs      []*Pair
	Excludes   []*Exclude
	Equalities []*Equality
	Tendons    []*Tendon
	Actuators  []*Actuator
	Sensors    []*Sensor
	Numerics   []*Numeric
	Texts      []*Text
	Tuples     []*Tuple
	Keys       []*Key
	Plugins    []*Plugin

	defaults map[string]*Default
	main     *Default
}

// New returns an empty specification with the implicit main default
// class and a world body.
func New() *Spec {
	s := &Spec{
		ModelName: "model",
		Compiler: Compiler{
			Degrees:           true,
			EulerSeq:          "xyz",
			BoundMass:         0,
			BoundInertia:      0,
			SetTotalMass:      -1,
			InertiaFromGeom:   InertiaAuto,
			InertiaGroupRange: [2]int32{0, 5},
			LROpt:             DefaultLROpt(),
			UseThread:         true,
		},
		Option: Option{
			Timestep:   0.002,
			Gravity:    kmath.Vec3{Z: -9.81},
			Magnetic:   kmath.Vec3{Y: -0.5},
			Iterations: 100,
			Tolerance:  1e-8,
		},
		Memory:  -1,
		NStack:  -1,
		NConMax: -1,
		NJMax:   -1,
	}
	s.Stat = Statistic{
		MeanInertia: Undefined(),
		MeanMass:    Undefined(),
		MeanSize:    Undefined(),
		Extent:      Undefined(),
		Center:      [3]float64{Undefined(), 0, 0},
	}
	s.main = newMainDefault()
	s.defaults = map[string]*Default{"main": s.main}
	s.World = newBody(nil, s.main)
	s.World.Name = "world"
	return s
}

// Default returns the default class with the given name, or nil. The
// empty name resolves to the main class.
func (s *Spec) Default(name string) *Default {
	if name == "" {
		name = "main"
	}
	return s.defaults[name]
}

// AddDefault creates a child default class under parent (empty for the
// main class). Inheritance is flattened here: the new class starts as a
// copy of its parent. Returns nil when the name is taken or the parent
// does not exist.
func (s *Spec) AddDefault(name, parent string) *Default {
	if _, ok := s.defaults[name]; ok || name == "" {
		return nil
	}
	p := s.Default(parent)
	if p == nil {
		return nil
	}
	d := p.clone(name)
	s.defaults[name] = d
	p.Children = append(p.Children, d)
	return d
}

// classOrMain resolves a class name for entity creation.
func (s *Spec) classOrMain(class string) *Default {
	if d := s.Default(class); d != nil {
		return d
	}
	return s.main
}

// Bodies returns all bodies in depth-first pre-order, world first.
func (s *Spec) Bodies() []*Body {
	var out []*Body
	var walk func(b *Body)
	walk = func(b *Body) {
		out = append(out, b)
		for _, c := range b.Bodies {
			walk(c)
		}
	}
	walk(s.World)
	return out
}

// FindObject scans the spec for a named entity of the given kind. This
// is the pre-compile lookup; compiled models resolve names through the
// packed hash map instead.
func (s *Spec) FindObject(typ ObjType, name string) any {
	if name == "" {
		return nil
	}
	switch typ {
	case ObjBody:
		for _, b := range s.Bodies() {
			if b.Name == name {
				return b
			}
		}
	case ObjJoint:
		for _, b := range s.Bodies() {
			for _, j := range b.Joints {
				if j.Name == name {
					return j
				}
			}
		}
	case ObjGeom:
		for _, b := range s.Bodies() {
			for _, g := range b.Geoms {
				if g.Name == name {
					return g
				}
			}
		}
	case ObjSite:
		for _, b := range s.Bodies() {
			for _, x := range b.Sites {
				if x.Name == name {
					return x
				}
			}
		}
	case ObjCamera:
		for _, b := range s.Bodies() {
			for _, x := range b.Cameras {
				if x.Name == name {
					return x
				}
			}
		}
	case ObjLight:
		for _, b := range s.Bodies() {
			for _, x := range b.Lights {
				if x.Name == name {
					return x
				}
			}
		}
	case ObjMesh:
		for _, x := range s.Meshes {
			if x.Name == name {
				return x
			}
		}
	case ObjHField:
		for _, x := range s.HFields {
			if x.Name == name {
				return x
			}
		}
	case ObjTexture:
		for _, x := range s.Textures {
			if x.Name == name {
				return x
			}
		}
	case ObjMaterial:
		for _, x := range s.Materials {
			if x.Name == name {
				return x
			}
		}
	case ObjSkin:
		for _, x := range s.Skins {
			if x.Name == name {
				return x
			}
		}
	case ObjFlex:
		for _, x := range s.Flexes {
			if x.Name == name {
				return x
			}
		}
	case ObjEquality:
		for _, x := range s.Equalities {
			if x.Name == name {
				return x
			}
		}
	case ObjTendon:
		for _, x := range s.Tendons {
			if x.Name == name {
				return x
			}
		}
	case ObjActuator:
		for _, x := range s.Actuators {
			if x.Name == name {
				return x
			}
		}
	case ObjSensor:
		for _, x := range s.Sensors {
			if x.Name == name {
				return x
			}
		}
	case ObjNumeric:
		for _, x := range s.Numerics {
			if x.Name == name {
				return x
			}
		}
	case ObjText:
		for _, x := range s.Texts {
			if x.Name == name {
				return x
			}
		}
	case ObjTuple:
		for _, x := range s.Tuples {
			if x.Name == name {
				return x
			}
		}
	case ObjKey:
		for _, x := range s.Keys {
			if x.Name == name {
				return x
			}
		}
	case ObjPlugin:
		for _, x := range s.Plugins {
			if x.Name == name {
				return x
			}
		}
	}
	return nil
}
