package compile

import (
	"math"
	"sort"

	kmath "github.com/Faultbox/kforge/pkg/math"
	"github.com/Faultbox/kforge/pkg/spec"
)

// MaxTreeDepth is the bounding-volume tree depth beyond which a
// warning is emitted.
const MaxTreeDepth = 30

// aabbEps inflates flat bounding boxes so every volume is usable.
const aabbEps = 1e-8

// BVH is a binary bounding-volume tree in flat-array form: two child
// indices per node (-1 for none), a leaf id (-1 for internal nodes)
// and a center+half-size box per node.
type BVH struct {
	Child  []int32
	NodeID []int32
	Depth  []int32
	AABB   []float64
}

// NumNodes returns the node count.
func (b *BVH) NumNodes() int32 { return int32(len(b.NodeID)) }

// MaxDepth returns the deepest node level.
func (b *BVH) MaxDepth() int {
	d := int32(0)
	for _, v := range b.Depth {
		if v > d {
			d = v
		}
	}
	return int(d)
}

// leafBox is one input volume: a box around entity id.
type leafBox struct {
	id     int32
	center kmath.Vec3
	half   kmath.Vec3
}

// newBVH builds a tree by longest-axis median splits.
func newBVH(leaves []leafBox) *BVH {
	b := &BVH{}
	if len(leaves) == 0 {
		return b
	}
	b.build(leaves, 0)
	return b
}

// build adds the subtree for leaves and returns its node index.
func (b *BVH) build(leaves []leafBox, depth int32) int32 {
	// node box: union of leaf boxes, flat sides inflated
	lo := leaves[0].center.Sub(leaves[0].half)
	hi := leaves[0].center.Add(leaves[0].half)
	for _, l := range leaves[1:] {
		lo = lo.Min(l.center.Sub(l.half))
		hi = hi.Max(l.center.Add(l.half))
	}
	half := hi.Sub(lo).Scale(0.5)
	if half.X < aabbEps {
		half.X = aabbEps
	}
	if half.Y < aabbEps {
		half.Y = aabbEps
	}
	if half.Z < aabbEps {
		half.Z = aabbEps
	}
	center := lo.Add(hi).Scale(0.5)

	node := int32(len(b.NodeID))
	b.Child = append(b.Child, -1, -1)
	b.NodeID = append(b.NodeID, -1)
	b.Depth = append(b.Depth, depth)
	b.AABB = append(b.AABB, center.X, center.Y, center.Z, half.X, half.Y, half.Z)

	if len(leaves) == 1 {
		b.NodeID[node] = leaves[0].id
		return node
	}

	// median split along the longest axis of the node box
	axis := 0
	if half.Y > half.X && half.Y >= half.Z {
		axis = 1
	} else if half.Z > half.X && half.Z > half.Y {
		axis = 2
	}
	sorted := append([]leafBox(nil), leaves...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a := sorted[i].center.Array()
		c := sorted[j].center.Array()
		return a[axis] < c[axis]
	})
	mid := len(sorted) / 2

	left := b.build(sorted[:mid], depth+1)
	right := b.build(sorted[mid:], depth+1)
	b.Child[2*node] = left
	b.Child[2*node+1] = right
	return node
}

// buildMeshBVH builds the per-face tree of a mesh.
func buildMeshBVH(m *spec.Mesh) (*BVH, error) {
	leaves := make([]leafBox, 0, len(m.Face)/3)
	for f := 0; f < len(m.Face); f += 3 {
		lo := kmath.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
		hi := lo.Scale(-1)
		for k := 0; k < 3; k++ {
			vi := m.Face[f+k]
			v := kmath.Vec3{X: m.Vert[3*vi], Y: m.Vert[3*vi+1], Z: m.Vert[3*vi+2]}
			lo = lo.Min(v)
			hi = hi.Max(v)
		}
		leaves = append(leaves, leafBox{
			id:     int32(f / 3),
			center: lo.Add(hi).Scale(0.5),
			half:   hi.Sub(lo).Scale(0.5),
		})
	}
	return newBVH(leaves), nil
}

// buildBVH builds the per-body trees over colliding geoms, expressed
// in the body inertial frame, and the per-flex trees over elements.
// Mesh trees were built during asset compile.
func (c *Compiler) buildBVH() error {
	c.bodyBVH = make([]*BVH, len(c.bodies))
	for i, b := range c.bodies {
		var leaves []leafBox
		iq := b.IQuat.Conj()
		for _, g := range b.Geoms {
			if g.Visual() {
				continue
			}
			// geom box into the inertial frame
			gc := kmath.Vec3{X: g.AABB[0], Y: g.AABB[1], Z: g.AABB[2]}
			gh := kmath.Vec3{X: g.AABB[3], Y: g.AABB[4], Z: g.AABB[5]}
			center := iq.RotateVec(g.Pos.Add(g.Quat.RotateVec(gc)).Sub(b.IPos))
			rot := iq.Mul(g.Quat).ToMat3()
			half := kmath.Vec3{
				X: math.Abs(rot[0])*gh.X + math.Abs(rot[1])*gh.Y + math.Abs(rot[2])*gh.Z,
				Y: math.Abs(rot[3])*gh.X + math.Abs(rot[4])*gh.Y + math.Abs(rot[5])*gh.Z,
				Z: math.Abs(rot[6])*gh.X + math.Abs(rot[7])*gh.Y + math.Abs(rot[8])*gh.Z,
			}
			leaves = append(leaves, leafBox{id: g.ID, center: center, half: half})
		}
		if len(leaves) == 0 {
			continue
		}
		tree := newBVH(leaves)
		c.bodyBVH[i] = tree
		if tree.MaxDepth() > MaxTreeDepth {
			c.warn(objErrorf(GeometryError, b.Name, b.ID, "body bvh depth %d exceeds %d", tree.MaxDepth(), MaxTreeDepth))
		}
	}

	for _, f := range c.spec.Flexes {
		esize := int(f.Dim) + 1
		var leaves []leafBox
		for e := 0; e*esize < len(f.Elem); e++ {
			lo := kmath.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
			hi := lo.Scale(-1)
			for k := 0; k < esize; k++ {
				vi := f.Elem[e*esize+k]
				v := kmath.Vec3{X: f.Vert[3*vi], Y: f.Vert[3*vi+1], Z: f.Vert[3*vi+2]}
				lo = lo.Min(v)
				hi = hi.Max(v)
			}
			r := kmath.Vec3{X: f.Radius, Y: f.Radius, Z: f.Radius}
			leaves = append(leaves, leafBox{
				id:     int32(e),
				center: lo.Add(hi).Scale(0.5),
				half:   hi.Sub(lo).Scale(0.5).Add(r),
			})
		}
		tree := newBVH(leaves)
		f.SetBVH(tree)
		if tree.MaxDepth() > MaxTreeDepth {
			c.warn(objErrorf(GeometryError, f.Name, f.ID, "flex bvh depth %d exceeds %d", tree.MaxDepth(), MaxTreeDepth))
		}
	}
	return nil
}
