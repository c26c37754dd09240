package compile

import (
	kmath "github.com/Faultbox/kforge/pkg/math"
	"github.com/Faultbox/kforge/pkg/spec"
)

// fuseStatic merges jointless, non-mocap bodies into their parents.
// The pass is conservative: it runs only when no entity kind holds
// body-derived ids that would shift.
func (c *Compiler) fuseStatic() error {
	if c.spec.Compiler.FuseStatic {
		if c.canFuse() {
			c.runFusion()
			if err := c.reflatten(); err != nil {
				return err
			}
		} else {
			c.warn(errorf(ParseOrSpecError, "static fusion skipped: model holds entities with body references"))
		}
	}

	return c.checkMasses()
}

// canFuse checks the global preconditions for static fusion.
func (c *Compiler) canFuse() bool {
	s := c.spec
	return len(s.Skins) == 0 && len(s.Pairs) == 0 && len(s.Excludes) == 0 &&
		len(s.Equalities) == 0 && len(s.Tendons) == 0 && len(s.Actuators) == 0 &&
		len(s.Sensors) == 0 && len(s.Tuples) == 0 && len(s.Flexes) == 0 &&
		len(c.cameras) == 0 && len(c.lights) == 0
}

// runFusion walks the tree and merges every fusable body, restarting
// at the current position to catch grandchildren that become fusable.
func (c *Compiler) runFusion() {
	var fuseInto func(p *spec.Body)
	fuseInto = func(p *spec.Body) {
		for i := 0; i < len(p.Bodies); {
			b := p.Bodies[i]
			if len(b.Joints) == 0 && !b.Mocap {
				c.mergeBody(p, b)
				// the child's children now sit at index i; stay put
				continue
			}
			fuseInto(b)
			i++
		}
	}
	fuseInto(c.spec.World)
}

// mergeBody folds body b into its parent p: masses and inertias are
// combined with the parallel-axis theorem and re-diagonalized, child
// entities are re-posed into p's frame, and b is removed.
func (c *Compiler) mergeBody(p, b *spec.Body) {
	// child inertial frame expressed in the parent frame
	bIPos := b.Pos.Add(b.Quat.RotateVec(b.IPos))
	bIQuat := b.Quat.Mul(b.IQuat)

	mass := p.Mass + b.Mass
	com := p.IPos
	if mass > kmath.MinVal {
		com = p.IPos.Scale(p.Mass).Add(bIPos.Scale(b.Mass)).Scale(1 / mass)
	}

	var full [6]float64
	addInertia(&full, p.Inertia, p.IQuat, p.IPos.Sub(com), p.Mass)
	addInertia(&full, b.Inertia, bIQuat, bIPos.Sub(com), b.Mass)
	diag, iq, err := diagonalizeInertia(full)
	if err != nil {
		// zero tensors cannot fail; keep the parent frame on the
		// degenerate path
		diag, iq = p.Inertia, p.IQuat
	}

	p.Mass = mass
	p.IPos = com
	p.IQuat = iq
	p.Inertia = diag

	// re-pose and reparent the child's entities
	for _, g := range b.Geoms {
		g.Pos = b.Pos.Add(b.Quat.RotateVec(g.Pos))
		g.Quat = b.Quat.Mul(g.Quat)
		g.Body = p
		p.Geoms = append(p.Geoms, g)
	}
	b.Geoms = nil
	for _, x := range b.Sites {
		x.Pos = b.Pos.Add(b.Quat.RotateVec(x.Pos))
		x.Quat = b.Quat.Mul(x.Quat)
		x.Body = p
		p.Sites = append(p.Sites, x)
	}
	b.Sites = nil

	// splice grandchildren into b's slot, preserving order
	idx := -1
	for i, child := range p.Bodies {
		if child == b {
			idx = i
			break
		}
	}
	for _, child := range b.Bodies {
		child.Pos = b.Pos.Add(b.Quat.RotateVec(child.Pos))
		child.Quat = b.Quat.Mul(child.Quat)
		child.Parent = p
	}
	rest := append([]*spec.Body{}, p.Bodies[idx+1:]...)
	p.Bodies = append(p.Bodies[:idx], append(b.Bodies, rest...)...)
	b.Bodies = nil
}
