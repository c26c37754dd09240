package spec

// TrnType is an actuator transmission.
type TrnType int32

const (
	TrnJoint TrnType = iota
	TrnJointInParent
	TrnSliderCrank
	TrnTendon
	TrnSite
	TrnBody
)

// String returns the transmission name.
func (t TrnType) String() string {
	switch t {
	case TrnJoint:
		return "joint"
	case TrnJointInParent:
		return "jointinparent"
	case TrnSliderCrank:
		return "slidercrank"
	case TrnTendon:
		return "tendon"
	case TrnSite:
		return "site"
	case TrnBody:
		return "body"
	default:
		return "unknown"
	}
}

// DynType is an actuator activation dynamics model.
type DynType int32

const (
	DynNone DynType = iota
	DynIntegrator
	DynFilter
	DynFilterExact
	DynMuscle
	DynUser
)

// GainType is an actuator gain model.
type GainType int32

const (
	GainFixed GainType = iota
	GainAffine
	GainMuscle
	GainUser
)

// BiasType is an actuator bias model.
type BiasType int32

const (
	BiasNone BiasType = iota
	BiasAffine
	BiasMuscle
	BiasUser
)

// Actuator produces generalized forces through a transmission.
type Actuator struct {
	Element

	Trn  TrnType
	Dyn  DynType
	Gain GainType
	Bias BiasType

	DynPrm  [10]float64
	GainPrm [10]float64
	BiasPrm [10]float64

	Target     string // joint, tendon, site or body name per transmission
	RefSite    string // reference site for site transmissions
	SliderSite string // crank endpoint for slider-crank transmissions

	CtrlLimited bool
	ForceLimited bool
	ActLimited  bool
	CtrlRange   [2]float64
	ForceRange  [2]float64
	ActRange    [2]float64

	Gear        [6]float64
	CrankLength float64
	ActDim      int32 // -1: derived from dynamics type
	ActEarly    bool
	Group       int32
	UserData    []float64
	Plugin      string

	// Derived during compile.
	TrnID       [2]int32
	ActAdr      int32
	ActNum      int32
	PluginID    int32
	LengthRange [2]float64
	Length0     float64
}

// IsMuscle reports whether gain or bias use the muscle model.
func (a *Actuator) IsMuscle() bool {
	return a.Gain == GainMuscle || a.Bias == BiasMuscle
}

// IsUser reports whether gain or bias are user-defined.
func (a *Actuator) IsUser() bool {
	return a.Gain == GainUser || a.Bias == BiasUser
}

// AddActuator appends an actuator.
func (s *Spec) AddActuator(class string) *Actuator {
	def := s.classOrMain(class)
	a := new(Actuator)
	*a = def.Actuator
	a.Element = Element{Class: def.Name}
	s.Actuators = append(s.Actuators, a)
	return a
}

func defaultActuator() Actuator {
	a := Actuator{
		ActDim:   -1,
		TrnID:    [2]int32{-1, -1},
		PluginID: -1,
	}
	a.GainPrm[0] = 1
	a.Gear[0] = 1
	return a
}
