// Package mjcf loads model specifications from YAML documents. It
// covers the core authoring surface: compiler options, physics
// options, the body tree with joints, geoms and sites, assets,
// tendons, actuators and keyframes.
package mjcf

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	kmath "github.com/Faultbox/kforge/pkg/math"
	"github.com/Faultbox/kforge/pkg/spec"
)

// Document is the YAML schema root.
type Document struct {
	Model    string          `yaml:"model"`
	Compiler *CompilerNode   `yaml:"compiler"`
	Option   *OptionNode     `yaml:"option"`
	World    BodyNode        `yaml:"worldbody"`
	Meshes   []MeshNode      `yaml:"meshes"`
	HFields  []HFieldNode    `yaml:"hfields"`
	Textures []TextureNode   `yaml:"textures"`
	Materials []MaterialNode `yaml:"materials"`
	Tendons  []TendonNode    `yaml:"tendons"`
	Actuators []ActuatorNode `yaml:"actuators"`
	Keys     []KeyNode       `yaml:"keyframes"`
}

// CompilerNode mirrors spec.Compiler in YAML form.
type CompilerNode struct {
	Degrees        *bool   `yaml:"degrees"`
	EulerSeq       string  `yaml:"eulerseq"`
	MeshDir        string  `yaml:"meshdir"`
	TextureDir     string  `yaml:"texturedir"`
	FuseStatic     bool    `yaml:"fuse_static"`
	DiscardVisual  bool    `yaml:"discard_visual"`
	BalanceInertia bool    `yaml:"balance_inertia"`
	BoundMass      float64 `yaml:"bound_mass"`
	BoundInertia   float64 `yaml:"bound_inertia"`
}

// OptionNode mirrors spec.Option.
type OptionNode struct {
	Timestep float64    `yaml:"timestep"`
	Gravity  *[3]float64 `yaml:"gravity"`
}

// BodyNode is one body with its children.
type BodyNode struct {
	Name     string      `yaml:"name"`
	Pos      [3]float64  `yaml:"pos"`
	Quat     *[4]float64 `yaml:"quat"`
	Euler    *[3]float64 `yaml:"euler"`
	Mocap    bool        `yaml:"mocap"`
	Mass     *float64    `yaml:"mass"`
	Inertia  *[3]float64 `yaml:"inertia"`
	IPos     *[3]float64 `yaml:"ipos"`
	Joints   []JointNode `yaml:"joints"`
	Geoms    []GeomNode  `yaml:"geoms"`
	Sites    []SiteNode  `yaml:"sites"`
	Bodies   []BodyNode  `yaml:"bodies"`
}

// JointNode is one joint.
type JointNode struct {
	Name    string      `yaml:"name"`
	Type    string      `yaml:"type"`
	Pos     [3]float64  `yaml:"pos"`
	Axis    *[3]float64 `yaml:"axis"`
	Range   *[2]float64 `yaml:"range"`
	Limited bool        `yaml:"limited"`
	Damping float64     `yaml:"damping"`
	Ref     float64     `yaml:"ref"`
}

// GeomNode is one geom.
type GeomNode struct {
	Name     string      `yaml:"name"`
	Type     string      `yaml:"type"`
	Size     []float64   `yaml:"size"`
	Pos      [3]float64  `yaml:"pos"`
	FromTo   *[6]float64 `yaml:"fromto"`
	Density  *float64    `yaml:"density"`
	Mass     *float64    `yaml:"mass"`
	Mesh     string      `yaml:"mesh"`
	HField   string      `yaml:"hfield"`
	Material string      `yaml:"material"`
	Group    int32       `yaml:"group"`
	Contype  *int32      `yaml:"contype"`
	Conaffinity *int32   `yaml:"conaffinity"`
}

// SiteNode is one site.
type SiteNode struct {
	Name string     `yaml:"name"`
	Pos  [3]float64 `yaml:"pos"`
	Size *float64   `yaml:"size"`
}

// MeshNode is one mesh asset.
type MeshNode struct {
	Name  string      `yaml:"name"`
	File  string      `yaml:"file"`
	Scale *[3]float64 `yaml:"scale"`
	Vert  []float64   `yaml:"vert"`
	Face  []int32     `yaml:"face"`
}

// HFieldNode is one heightfield asset.
type HFieldNode struct {
	Name string     `yaml:"name"`
	File string     `yaml:"file"`
	Size [4]float64 `yaml:"size"`
	NRow int32      `yaml:"nrow"`
	NCol int32      `yaml:"ncol"`
	Data []float32  `yaml:"data"`
}

// TextureNode is one texture asset.
type TextureNode struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	File    string `yaml:"file"`
	Builtin string `yaml:"builtin"`
	Width   int32  `yaml:"width"`
	Height  int32  `yaml:"height"`
	GridSize   *[2]int32 `yaml:"gridsize"`
	GridLayout string    `yaml:"gridlayout"`
}

// MaterialNode is one material asset.
type MaterialNode struct {
	Name    string      `yaml:"name"`
	Texture string      `yaml:"texture"`
	RGBA    *[4]float32 `yaml:"rgba"`
}

// TendonNode is one tendon; fixed tendons list joints with
// coefficients, spatial tendons list sites.
type TendonNode struct {
	Name   string  `yaml:"name"`
	Joints []struct {
		Joint string  `yaml:"joint"`
		Coef  float64 `yaml:"coef"`
	} `yaml:"joints"`
	Sites []string `yaml:"sites"`
}

// ActuatorNode is one actuator.
type ActuatorNode struct {
	Name   string      `yaml:"name"`
	Trn    string      `yaml:"trn"`
	Target string      `yaml:"target"`
	Gear   *float64    `yaml:"gear"`
	CtrlRange *[2]float64 `yaml:"ctrlrange"`
}

// KeyNode is one keyframe.
type KeyNode struct {
	Name string    `yaml:"name"`
	Time float64   `yaml:"time"`
	Qpos []float64 `yaml:"qpos"`
}

// LoadFile reads and parses a YAML model file. The model file
// directory is recorded for asset path resolution.
func LoadFile(path string) (*spec.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model %s: %w", path, err)
	}
	s, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", path, err)
	}
	s.Compiler.ModelFileDir = filepath.Dir(path)
	return s, nil
}

// Load parses a YAML model document into a specification.
func Load(data []byte) (*spec.Spec, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	s := spec.New()
	if doc.Model != "" {
		s.ModelName = doc.Model
	}

	if c := doc.Compiler; c != nil {
		if c.Degrees != nil {
			s.Compiler.Degrees = *c.Degrees
		}
		if c.EulerSeq != "" {
			s.Compiler.EulerSeq = c.EulerSeq
		}
		s.Compiler.MeshDir = c.MeshDir
		s.Compiler.TextureDir = c.TextureDir
		s.Compiler.FuseStatic = c.FuseStatic
		s.Compiler.DiscardVisual = c.DiscardVisual
		s.Compiler.BalanceInertia = c.BalanceInertia
		s.Compiler.BoundMass = c.BoundMass
		s.Compiler.BoundInertia = c.BoundInertia
	}
	if o := doc.Option; o != nil {
		if o.Timestep > 0 {
			s.Option.Timestep = o.Timestep
		}
		if o.Gravity != nil {
			s.Option.Gravity = kmath.Vec3From(*o.Gravity)
		}
	}

	for _, mn := range doc.Meshes {
		m := s.AddMesh("")
		m.Name = mn.Name
		m.File = mn.File
		if mn.Scale != nil {
			m.Scale = kmath.Vec3From(*mn.Scale)
		}
		m.UserVert = mn.Vert
		m.UserFace = mn.Face
	}
	for _, hn := range doc.HFields {
		h := s.AddHField()
		h.Name = hn.Name
		h.File = hn.File
		h.Size = hn.Size
		h.NRow = hn.NRow
		h.NCol = hn.NCol
		h.UserData = hn.Data
	}
	for _, tn := range doc.Textures {
		t := s.AddTexture()
		t.Name = tn.Name
		t.File = tn.File
		t.Width = tn.Width
		t.Height = tn.Height
		switch tn.Type {
		case "", "2d":
			t.Type = spec.Texture2D
		case "cube":
			t.Type = spec.TextureCube
		case "skybox":
			t.Type = spec.TextureSkybox
		default:
			return nil, fmt.Errorf("texture %q: unknown type %q", tn.Name, tn.Type)
		}
		switch tn.Builtin {
		case "":
			t.Builtin = spec.BuiltinNone
		case "flat":
			t.Builtin = spec.BuiltinFlat
		case "gradient":
			t.Builtin = spec.BuiltinGradient
		case "checker":
			t.Builtin = spec.BuiltinChecker
		default:
			return nil, fmt.Errorf("texture %q: unknown builtin %q", tn.Name, tn.Builtin)
		}
		if tn.GridSize != nil {
			t.GridSize = *tn.GridSize
		}
		t.GridLayout = tn.GridLayout
	}
	for _, mn := range doc.Materials {
		m := s.AddMaterial("")
		m.Name = mn.Name
		m.Texture = mn.Texture
		if mn.RGBA != nil {
			m.RGBA = *mn.RGBA
		}
	}

	if err := buildBody(s, s.World, &doc.World, true); err != nil {
		return nil, err
	}

	for _, tn := range doc.Tendons {
		t := s.AddTendon("")
		t.Name = tn.Name
		for _, j := range tn.Joints {
			t.WrapJoint(j.Joint, j.Coef)
		}
		for _, site := range tn.Sites {
			t.WrapSite(site)
		}
	}

	for _, an := range doc.Actuators {
		a := s.AddActuator("")
		a.Name = an.Name
		a.Target = an.Target
		switch an.Trn {
		case "", "joint":
			a.Trn = spec.TrnJoint
		case "tendon":
			a.Trn = spec.TrnTendon
		case "site":
			a.Trn = spec.TrnSite
		case "body":
			a.Trn = spec.TrnBody
		default:
			return nil, fmt.Errorf("actuator %q: unknown transmission %q", an.Name, an.Trn)
		}
		if an.Gear != nil {
			a.Gear[0] = *an.Gear
		}
		if an.CtrlRange != nil {
			a.CtrlLimited = true
			a.CtrlRange = *an.CtrlRange
		}
	}

	for _, kn := range doc.Keys {
		k := s.AddKey()
		k.Name = kn.Name
		k.Time = kn.Time
		k.Qpos = kn.Qpos
	}

	return s, nil
}

// buildBody fills one body and recurses into its children.
func buildBody(s *spec.Spec, b *spec.Body, n *BodyNode, world bool) error {
	if !world {
		b.Name = n.Name
		b.Pos = kmath.Vec3From(n.Pos)
		if n.Quat != nil {
			b.Quat = kmath.QuatFrom(*n.Quat)
		}
		if n.Euler != nil {
			b.Alt.Euler = *n.Euler
		}
		b.Mocap = n.Mocap
		if n.Mass != nil {
			b.Mass = *n.Mass
		}
		if n.Inertia != nil {
			b.Inertia = kmath.Vec3From(*n.Inertia)
		}
		if n.IPos != nil {
			b.IPos = kmath.Vec3From(*n.IPos)
		}
	}

	for i := range n.Joints {
		jn := &n.Joints[i]
		j := s.AddJoint(b, "")
		j.Name = jn.Name
		switch jn.Type {
		case "", "hinge":
			j.Type = spec.JointHinge
		case "slide":
			j.Type = spec.JointSlide
		case "ball":
			j.Type = spec.JointBall
		case "free":
			j.Type = spec.JointFree
		default:
			return fmt.Errorf("joint %q: unknown type %q", jn.Name, jn.Type)
		}
		j.Pos = kmath.Vec3From(jn.Pos)
		if jn.Axis != nil {
			j.Axis = kmath.Vec3From(*jn.Axis)
		}
		if jn.Range != nil {
			j.Range = *jn.Range
			j.Limited = true
		}
		j.Limited = j.Limited || jn.Limited
		j.Damping = jn.Damping
		j.Ref = jn.Ref

		// rotational quantities arrive in degrees; the spec stores
		// radians
		if s.Compiler.Degrees && (j.Type == spec.JointHinge || j.Type == spec.JointBall) {
			const d2r = math.Pi / 180
			j.Range[0] *= d2r
			j.Range[1] *= d2r
			j.Ref *= d2r
		}
	}

	for i := range n.Geoms {
		gn := &n.Geoms[i]
		g := s.AddGeom(b, "")
		g.Name = gn.Name
		switch gn.Type {
		case "", "sphere":
			g.Type = spec.GeomSphere
		case "plane":
			g.Type = spec.GeomPlane
		case "capsule":
			g.Type = spec.GeomCapsule
		case "cylinder":
			g.Type = spec.GeomCylinder
		case "ellipsoid":
			g.Type = spec.GeomEllipsoid
		case "box":
			g.Type = spec.GeomBox
		case "mesh":
			g.Type = spec.GeomMesh
		case "hfield":
			g.Type = spec.GeomHField
		default:
			return fmt.Errorf("geom %q: unknown type %q", gn.Name, gn.Type)
		}
		for k, v := range gn.Size {
			switch k {
			case 0:
				g.Size.X = v
			case 1:
				g.Size.Y = v
			case 2:
				g.Size.Z = v
			}
		}
		g.Pos = kmath.Vec3From(gn.Pos)
		if gn.FromTo != nil {
			g.FromTo = *gn.FromTo
		}
		if gn.Density != nil {
			g.Density = *gn.Density
		}
		if gn.Mass != nil {
			g.Mass = *gn.Mass
		}
		g.MeshName = gn.Mesh
		g.HFieldName = gn.HField
		g.Material = gn.Material
		g.Group = gn.Group
		if gn.Contype != nil {
			g.Contype = *gn.Contype
		}
		if gn.Conaffinity != nil {
			g.Conaffinity = *gn.Conaffinity
		}
	}

	for i := range n.Sites {
		sn := &n.Sites[i]
		x := s.AddSite(b, "")
		x.Name = sn.Name
		x.Pos = kmath.Vec3From(sn.Pos)
		if sn.Size != nil {
			x.Size = kmath.Vec3{X: *sn.Size, Y: *sn.Size, Z: *sn.Size}
		}
	}

	for i := range n.Bodies {
		child := s.AddBody(b, "")
		if err := buildBody(s, child, &n.Bodies[i], false); err != nil {
			return err
		}
	}
	return nil
}
