package spec

import (
	kmath "github.com/Faultbox/kforge/pkg/math"
)

// GeomType is the shape of a geom.
type GeomType int32

const (
	GeomPlane GeomType = iota
	GeomHField
	GeomSphere
	GeomCapsule
	GeomEllipsoid
	GeomCylinder
	GeomBox
	GeomMesh
	GeomSDF
)

// String returns the geom type name.
func (t GeomType) String() string {
	switch t {
	case GeomPlane:
		return "plane"
	case GeomHField:
		return "hfield"
	case GeomSphere:
		return "sphere"
	case GeomCapsule:
		return "capsule"
	case GeomEllipsoid:
		return "ellipsoid"
	case GeomCylinder:
		return "cylinder"
	case GeomBox:
		return "box"
	case GeomMesh:
		return "mesh"
	case GeomSDF:
		return "sdf"
	default:
		return "unknown"
	}
}

// Geom is a geometric shape attached to a body, used for collision,
// inertia inference and rendering.
type Geom struct {
	Element

	Type     GeomType
	Group    int32
	Priority int32

	Contype     int32
	Conaffinity int32
	Condim      int32

	Size   kmath.Vec3
	FromTo [6]float64 // NaN in slot 0 while unset
	Pos    kmath.Vec3
	Quat   kmath.Quat
	Alt    kmath.Alt

	Friction [3]float64
	SolMix   float64
	SolRef   [2]float64
	SolImp   [5]float64
	Margin   float64
	Gap      float64

	Density      float64
	Mass         float64 // NaN: mass comes from density and volume
	ShellInertia bool

	FluidEllipsoid bool
	FluidCoefs     [5]float64

	HFieldName string
	MeshName   string
	Material   string
	RGBA       [4]float32
	UserData   []float64

	Frame *Frame
	Body  *Body

	// Derived during compile.
	MatID      int32
	MeshID     int32
	HFieldID   int32
	GeomMass   float64
	GeomInertia kmath.Vec3 // diagonal, in the geom frame
	AABB       [6]float64  // center + half sizes, geom frame
	RBound     float64
	Plugin     string
	PluginID   int32
}

// Visual reports whether the geom never collides.
func (g *Geom) Visual() bool {
	return g.Contype == 0 && g.Conaffinity == 0
}

// AddGeom appends a geom to body, inheriting from the given default
// class.
func (s *Spec) AddGeom(body *Body, class string) *Geom {
	def := s.classOrMain(classOr(class, body.Class))
	g := new(Geom)
	*g = def.Geom
	g.Element = Element{Class: def.Name}
	g.Body = body
	body.Geoms = append(body.Geoms, g)
	return g
}

func defaultGeom() Geom {
	return Geom{
		Type:        GeomSphere,
		Contype:     1,
		Conaffinity: 1,
		Condim:      3,
		Quat:        kmath.QuatIdentity(),
		Alt:         kmath.NewAlt(),
		FromTo:      [6]float64{Undefined(), 0, 0, 0, 0, 0},
		Friction:    [3]float64{1, 0.005, 0.0001},
		SolMix:      1,
		SolRef:      [2]float64{0.02, 1},
		SolImp:      [5]float64{0.9, 0.95, 0.001, 0.5, 2},
		Density:     1000,
		Mass:        Undefined(),
		RGBA:        [4]float32{0.5, 0.5, 0.5, 1},
		MatID:       -1,
		MeshID:      -1,
		HFieldID:    -1,
		PluginID:    -1,
	}
}
