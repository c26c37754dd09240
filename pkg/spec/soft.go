package spec

import (
	kmath "github.com/Faultbox/kforge/pkg/math"
)

// SkinBone attaches a set of skin vertices to a body with bind pose and
// per-vertex weights.
type SkinBone struct {
	Body       string
	BindPos    kmath.Vec3
	BindQuat   kmath.Quat
	VertID     []int32
	VertWeight []float32

	BodyID int32
}

// Skin is a deformable visual mesh driven by body poses.
type Skin struct {
	Element

	File     string
	Material string
	RGBA     [4]float32
	Inflate  float32
	Group    int32

	Vert     []float32
	Texcoord []float32
	Face     []int32
	Bones    []SkinBone

	MatID int32
}

// AddSkin appends a skin asset.
func (s *Spec) AddSkin() *Skin {
	k := &Skin{
		RGBA:  [4]float32{1, 1, 1, 1},
		MatID: -1,
	}
	s.Skins = append(s.Skins, k)
	return k
}

// Flex is a deformable collision object: a simplicial complex whose
// vertices are attached to bodies.
type Flex struct {
	Element

	Dim      int32 // 1 line, 2 triangle, 3 tetrahedron elements
	Radius   float64
	Material string
	RGBA     [4]float32
	Group    int32

	Contype     int32
	Conaffinity int32
	Condim      int32
	Priority    int32
	Friction    [3]float64
	SolMix      float64
	SolRef      [2]float64
	SolImp      [5]float64
	Margin      float64
	Gap         float64

	Internal bool
	SelfColl int32

	VertBody []string // body name per vertex
	Vert     []float64
	Elem     []int32
	Texcoord []float64

	Edge     float64 // edge stiffness
	EdgeDamp float64

	// Derived during compile.
	VertBodyID []int32
	Edges      []int32 // vertex pairs
	Shells     []int32 // boundary simplices, dim vertices each
	EvPairs    []int32
	MatID      int32
	BVHAdr     int32
	BVHNum     int32

	bvh any
}

// SetBVH stores the compiled bounding-volume hierarchy.
func (f *Flex) SetBVH(v any) { f.bvh = v }

// GetBVH returns the compiled bounding-volume hierarchy, or nil.
func (f *Flex) GetBVH() any { return f.bvh }

// AddFlex appends a flex.
func (s *Spec) AddFlex() *Flex {
	f := &Flex{
		Dim:         2,
		Radius:      0.005,
		RGBA:        [4]float32{0.5, 0.5, 0.5, 1},
		Contype:     1,
		Conaffinity: 1,
		Condim:      3,
		Friction:    [3]float64{1, 0.005, 0.0001},
		SolMix:      1,
		SolRef:      [2]float64{0.02, 1},
		SolImp:      [5]float64{0.9, 0.95, 0.001, 0.5, 2},
		SelfColl:    1,
		MatID:       -1,
	}
	s.Flexes = append(s.Flexes, f)
	return f
}
