package spec

// WrapType is the kind of one element on a tendon path.
type WrapType int32

const (
	WrapSite WrapType = iota
	WrapGeom
	WrapJoint
	WrapPulley
)

// String returns the wrap type name.
func (t WrapType) String() string {
	switch t {
	case WrapSite:
		return "site"
	case WrapGeom:
		return "geom"
	case WrapJoint:
		return "joint"
	case WrapPulley:
		return "pulley"
	default:
		return "unknown"
	}
}

// Wrap is one element of a tendon path. Spatial tendons use sites,
// wrapping geoms and pulleys; fixed tendons use joints with moment
// coefficients.
type Wrap struct {
	Type     WrapType
	ObjName  string
	SideSite string  // optional side site for wrapping geoms
	Prm      float64 // joint coefficient or pulley divisor

	ObjID      int32
	SideSiteID int32
}

// Tendon is a scalar-length element routed through wraps, usable by
// actuators, sensors and equality constraints.
type Tendon struct {
	Element

	Group    int32
	Material string
	RGBA     [4]float32
	Width    float64

	Limited      bool
	Range        [2]float64
	Margin       float64
	Stiffness    float64
	Damping      float64
	Frictionloss float64
	SpringLength [2]float64 // <0 uses qpos0 length

	SolRefLimit [2]float64
	SolImpLimit [5]float64
	SolRefFrict [2]float64
	SolImpFrict [5]float64
	UserData    []float64

	Wraps []*Wrap

	MatID int32
}

// AddTendon appends a tendon.
func (s *Spec) AddTendon(class string) *Tendon {
	def := s.classOrMain(class)
	t := new(Tendon)
	*t = def.Tendon
	t.Element = Element{Class: def.Name}
	t.Wraps = nil
	s.Tendons = append(s.Tendons, t)
	return t
}

func defaultTendon() Tendon {
	return Tendon{
		Width:        0.003,
		SpringLength: [2]float64{-1, -1},
		SolRefLimit:  [2]float64{0.02, 1},
		SolImpLimit:  [5]float64{0.9, 0.95, 0.001, 0.5, 2},
		SolRefFrict:  [2]float64{0.02, 1},
		SolImpFrict:  [5]float64{0.9, 0.95, 0.001, 0.5, 2},
		RGBA:         [4]float32{0.5, 0.5, 0.5, 1},
		MatID:        -1,
	}
}

// WrapSite appends a site wrap to the tendon path.
func (t *Tendon) WrapSite(name string) *Wrap {
	w := &Wrap{Type: WrapSite, ObjName: name, ObjID: -1, SideSiteID: -1}
	t.Wraps = append(t.Wraps, w)
	return w
}

// WrapGeom appends a wrapping geom with an optional side site.
func (t *Tendon) WrapGeom(name, sideSite string) *Wrap {
	w := &Wrap{Type: WrapGeom, ObjName: name, SideSite: sideSite, ObjID: -1, SideSiteID: -1}
	t.Wraps = append(t.Wraps, w)
	return w
}

// WrapJoint appends a joint with a moment coefficient (fixed tendons).
func (t *Tendon) WrapJoint(name string, coef float64) *Wrap {
	w := &Wrap{Type: WrapJoint, ObjName: name, Prm: coef, ObjID: -1, SideSiteID: -1}
	t.Wraps = append(t.Wraps, w)
	return w
}

// WrapPulley appends a pulley with the given divisor.
func (t *Tendon) WrapPulley(divisor float64) *Wrap {
	w := &Wrap{Type: WrapPulley, Prm: divisor, ObjID: -1, SideSiteID: -1}
	t.Wraps = append(t.Wraps, w)
	return w
}
