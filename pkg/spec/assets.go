package spec

import (
	kmath "github.com/Faultbox/kforge/pkg/math"
)

// Mesh is a triangle mesh asset, file-backed or built from user arrays.
type Mesh struct {
	Element

	File        string
	ContentType string
	Scale       kmath.Vec3
	RefPos      kmath.Vec3
	RefQuat     kmath.Quat
	SmoothNormal bool

	// User-provided geometry, used when File is empty.
	UserVert     []float64
	UserNormal   []float64
	UserTexcoord []float64
	UserFace     []int32

	// Compiled geometry.
	Vert     []float64
	Normal   []float64
	Texcoord []float64
	Face     []int32
	Graph    []int32 // convex-hull graph; empty when not computed

	// Offset applied to reposition the mesh at its centroid frame.
	Pos  kmath.Vec3
	Quat kmath.Quat

	AAMM       [6]float64 // axis-aligned min/max
	Volume     float64
	InertiaBox [3]float64 // half sizes of the equivalent-inertia box
	BVHAdr     int32
	BVHNum     int32

	bvh any // *compile BVH tree, opaque to the spec
}

// SetBVH stores the compiled bounding-volume hierarchy.
func (m *Mesh) SetBVH(v any) { m.bvh = v }

// GetBVH returns the compiled bounding-volume hierarchy, or nil.
func (m *Mesh) GetBVH() any { return m.bvh }

// AddMesh appends a mesh asset.
func (s *Spec) AddMesh(class string) *Mesh {
	def := s.classOrMain(class)
	m := new(Mesh)
	*m = def.Mesh
	m.Element = Element{Class: def.Name}
	s.Meshes = append(s.Meshes, m)
	return m
}

func defaultMesh() Mesh {
	return Mesh{
		Scale:   kmath.Vec3{X: 1, Y: 1, Z: 1},
		RefQuat: kmath.QuatIdentity(),
		Quat:    kmath.QuatIdentity(),
	}
}

// HField is a rectangular elevation grid asset. Compiled data is
// row-major, normalized to [0,1], with row 0 at the bottom.
type HField struct {
	Element

	File        string
	ContentType string
	Size        [4]float64 // (radius x, radius y, elevation z, base z)
	NRow        int32
	NCol        int32

	// UserData is author-provided elevation, row 0 at the top the way
	// files store it. Ignored when File is set.
	UserData []float32

	Data []float32 // compiled elevation
}

// AddHField appends a heightfield asset.
func (s *Spec) AddHField() *HField {
	h := &HField{}
	s.HFields = append(s.HFields, h)
	return h
}

// TextureType distinguishes 2D, cube and skybox textures.
type TextureType int32

const (
	Texture2D TextureType = iota
	TextureCube
	TextureSkybox
)

// TextureBuiltin selects a procedurally generated texture.
type TextureBuiltin int32

const (
	BuiltinNone TextureBuiltin = iota
	BuiltinGradient
	BuiltinChecker
	BuiltinFlat
)

// Texture is an RGB bitmap asset: 2D or six cube faces.
type Texture struct {
	Element

	Type        TextureType
	ContentType string
	File        string
	CubeFiles   [6]string // right, left, up, down, front, back
	GridSize    [2]int32  // (rows, cols) of faces within a single file
	GridLayout  string    // up to 12 characters of ".RLUDFB"

	Builtin TextureBuiltin
	Mark    int32 // 0 none, 1 edge, 2 cross, 3 random
	MarkRGB [3]float64
	RGB1    [3]float64
	RGB2    [3]float64
	Random  float64

	Width  int32
	Height int32
	HFlip  bool
	VFlip  bool

	Data []byte // compiled RGB bitmap, 3 bytes per pixel
}

// AddTexture appends a texture asset.
func (s *Spec) AddTexture() *Texture {
	t := &Texture{
		GridSize: [2]int32{1, 1},
		RGB1:     [3]float64{0.8, 0.8, 0.8},
		RGB2:     [3]float64{0.5, 0.5, 0.5},
		MarkRGB:  [3]float64{0, 0, 0},
		Width:    0,
		Height:   0,
	}
	s.Textures = append(s.Textures, t)
	return t
}

// Material controls the appearance of geoms, sites, tendons and skins.
type Material struct {
	Element

	Texture     string
	TexUniform  bool
	TexRepeat   [2]float32
	Emission    float32
	Specular    float32
	Shininess   float32
	Reflectance float32
	RGBA        [4]float32

	TexID int32
}

// AddMaterial appends a material asset.
func (s *Spec) AddMaterial(class string) *Material {
	def := s.classOrMain(class)
	m := new(Material)
	*m = def.Material
	m.Element = Element{Class: def.Name}
	s.Materials = append(s.Materials, m)
	return m
}

func defaultMaterial() Material {
	return Material{
		TexRepeat: [2]float32{1, 1},
		Specular:  0.5,
		Shininess: 0.5,
		RGBA:      [4]float32{1, 1, 1, 1},
		TexID:     -1,
	}
}
