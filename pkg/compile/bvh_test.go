package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kmath "github.com/Faultbox/kforge/pkg/math"
)

func TestBVHSingleLeaf(t *testing.T) {
	tree := newBVH([]leafBox{{id: 7, center: kmath.Vec3{X: 1}, half: kmath.Vec3{X: 0.5, Y: 0.5, Z: 0.5}}})
	require.Equal(t, int32(1), tree.NumNodes())
	assert.Equal(t, int32(7), tree.NodeID[0])
	assert.Equal(t, int32(-1), tree.Child[0])
	assert.Equal(t, int32(-1), tree.Child[1])
}

func TestBVHSplitLongestAxis(t *testing.T) {
	// four boxes along x: root splits on x, every leaf reachable
	var leaves []leafBox
	for i := 0; i < 4; i++ {
		leaves = append(leaves, leafBox{
			id:     int32(i),
			center: kmath.Vec3{X: float64(i)},
			half:   kmath.Vec3{X: 0.1, Y: 0.1, Z: 0.1},
		})
	}
	tree := newBVH(leaves)
	require.Equal(t, int32(7), tree.NumNodes())

	seen := map[int32]bool{}
	var walk func(n int32)
	walk = func(n int32) {
		if tree.NodeID[n] >= 0 {
			seen[tree.NodeID[n]] = true
			return
		}
		walk(tree.Child[2*n])
		walk(tree.Child[2*n+1])
	}
	walk(0)
	for i := int32(0); i < 4; i++ {
		assert.True(t, seen[i], "leaf %d reachable", i)
	}
	assert.Equal(t, 2, tree.MaxDepth())
}

func TestBVHFlatBoxInflated(t *testing.T) {
	// a degenerate flat box still gets a usable volume
	tree := newBVH([]leafBox{{id: 0, center: kmath.Vec3{}, half: kmath.Vec3{X: 1, Y: 1, Z: 0}}})
	assert.GreaterOrEqual(t, tree.AABB[5], aabbEps)
}

func TestBVHContainsLeaves(t *testing.T) {
	leaves := []leafBox{
		{id: 0, center: kmath.Vec3{X: -2, Y: 1}, half: kmath.Vec3{X: 0.3, Y: 0.3, Z: 0.3}},
		{id: 1, center: kmath.Vec3{X: 3, Z: -1}, half: kmath.Vec3{X: 0.5, Y: 0.2, Z: 0.4}},
		{id: 2, center: kmath.Vec3{Y: -4}, half: kmath.Vec3{X: 0.1, Y: 0.1, Z: 0.1}},
	}
	tree := newBVH(leaves)

	// the root box must contain every leaf box
	rc := kmath.Vec3{X: tree.AABB[0], Y: tree.AABB[1], Z: tree.AABB[2]}
	rh := kmath.Vec3{X: tree.AABB[3], Y: tree.AABB[4], Z: tree.AABB[5]}
	for _, l := range leaves {
		lo := l.center.Sub(l.half)
		hi := l.center.Add(l.half)
		assert.LessOrEqual(t, rc.X-rh.X, lo.X+1e-12)
		assert.GreaterOrEqual(t, rc.X+rh.X, hi.X-1e-12)
		assert.LessOrEqual(t, rc.Y-rh.Y, lo.Y+1e-12)
		assert.GreaterOrEqual(t, rc.Y+rh.Y, hi.Y-1e-12)
		assert.LessOrEqual(t, rc.Z-rh.Z, lo.Z+1e-12)
		assert.GreaterOrEqual(t, rc.Z+rh.Z, hi.Z-1e-12)
	}
}

func TestBodyBVHPacked(t *testing.T) {
	s := chain(2)
	m, err := New(s).Compile()
	require.NoError(t, err)

	// each link has one colliding geom: one bvh node per body
	assert.Equal(t, m.NbvhStatic, m.Nbvh)
	for i := int32(1); i < m.Nbody; i++ {
		require.GreaterOrEqual(t, m.BodyBVHAdr[i], int32(0))
		adr := m.BodyBVHAdr[i]
		assert.Equal(t, int32(1), m.BodyBVHNum[i])
		assert.GreaterOrEqual(t, m.BVHNodeID[adr], int32(0), "leaf holds the geom id")
	}
	// world has no colliding geoms
	assert.Equal(t, int32(-1), m.BodyBVHAdr[0])
}
