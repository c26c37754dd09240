package spec

import (
	kmath "github.com/Faultbox/kforge/pkg/math"
)

// Site is a massless point of interest on a body, used by tendons,
// actuators and sensors.
type Site struct {
	Element

	Type   GeomType // sphere, capsule, ellipsoid, cylinder or box
	Group  int32
	Size   kmath.Vec3
	FromTo [6]float64
	Pos    kmath.Vec3
	Quat   kmath.Quat
	Alt    kmath.Alt

	Material string
	RGBA     [4]float32
	UserData []float64

	Frame *Frame
	Body  *Body

	MatID int32
}

// AddSite appends a site to body.
func (s *Spec) AddSite(body *Body, class string) *Site {
	def := s.classOrMain(classOr(class, body.Class))
	x := new(Site)
	*x = def.Site
	x.Element = Element{Class: def.Name}
	x.Body = body
	body.Sites = append(body.Sites, x)
	return x
}

func defaultSite() Site {
	return Site{
		Type:   GeomSphere,
		Size:   kmath.Vec3{X: 0.005, Y: 0.005, Z: 0.005},
		FromTo: [6]float64{Undefined(), 0, 0, 0, 0, 0},
		Quat:   kmath.QuatIdentity(),
		Alt:    kmath.NewAlt(),
		RGBA:   [4]float32{0.5, 0.5, 0.5, 1},
		MatID:  -1,
	}
}

// CamLightMode controls how a camera or light tracks bodies.
type CamLightMode int32

const (
	CamLightFixed CamLightMode = iota
	CamLightTrack
	CamLightTrackCom
	CamLightTargetBody
	CamLightTargetBodyCom
)

// Camera is a viewpoint attached to a body.
type Camera struct {
	Element

	Mode   CamLightMode
	Target string // target body name for the target modes

	Pos  kmath.Vec3
	Quat kmath.Quat
	Alt  kmath.Alt

	Fovy       float64
	IPD        float64
	Resolution [2]int32
	SensorSize [2]float64
	Principal  [2]float64
	Focal      [2]float64
	UserData   []float64

	Frame *Frame
	Body  *Body

	TargetBodyID int32
}

// AddCamera appends a camera to body.
func (s *Spec) AddCamera(body *Body, class string) *Camera {
	def := s.classOrMain(classOr(class, body.Class))
	c := new(Camera)
	*c = def.Camera
	c.Element = Element{Class: def.Name}
	c.Body = body
	body.Cameras = append(body.Cameras, c)
	return c
}

func defaultCamera() Camera {
	return Camera{
		Quat:         kmath.QuatIdentity(),
		Alt:          kmath.NewAlt(),
		Fovy:         45,
		IPD:          0.068,
		Resolution:   [2]int32{1, 1},
		TargetBodyID: -1,
	}
}

// Light is a light source attached to a body.
type Light struct {
	Element

	Mode   CamLightMode
	Target string

	Pos kmath.Vec3
	Dir kmath.Vec3

	Directional bool
	CastShadow  bool
	Active      bool

	Attenuation [3]float64
	Cutoff      float64
	Exponent    float64
	Ambient     [3]float32
	Diffuse     [3]float32
	Specular    [3]float32

	Frame *Frame
	Body  *Body

	TargetBodyID int32
}

// AddLight appends a light to body.
func (s *Spec) AddLight(body *Body, class string) *Light {
	def := s.classOrMain(classOr(class, body.Class))
	l := new(Light)
	*l = def.Light
	l.Element = Element{Class: def.Name}
	l.Body = body
	body.Lights = append(body.Lights, l)
	return l
}

func defaultLight() Light {
	return Light{
		Dir:          kmath.Vec3{Z: -1},
		CastShadow:   true,
		Active:       true,
		Attenuation:  [3]float64{1, 0, 0},
		Cutoff:       45,
		Exponent:     10,
		Diffuse:      [3]float32{0.7, 0.7, 0.7},
		Specular:     [3]float32{0.3, 0.3, 0.3},
		TargetBodyID: -1,
	}
}
