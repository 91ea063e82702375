package mpm

import (
	"math"

	"github.com/pthm-cable/snowfall/linalg"
)

// stencil is the 3x3 quadratic B-spline neighbourhood of a particle.
type stencil struct {
	base linalg.IVec2   // lower corner node
	fx   linalg.Vec2    // particle position relative to base, in cells
	w    [3]linalg.Vec2 // per-axis weights of nodes base+0, base+1, base+2
}

func newStencil(pos linalg.Vec2, invDx float32) stencil {
	scaled := pos.Scale(invDx)
	base := scaled.Sub(linalg.Splat(0.5)).Floor()
	fx := scaled.Sub(base.Vec2())

	return stencil{
		base: base,
		fx:   fx,
		w: [3]linalg.Vec2{
			linalg.Splat(1.5).Sub(fx).Square().Scale(0.5),
			linalg.Splat(0.75).Sub(fx.Sub(linalg.Splat(1)).Square()),
			fx.Sub(linalg.Splat(0.5)).Square().Scale(0.5),
		},
	}
}

// inside reports whether every stencil node exists on a grid of the given
// resolution.
func (s stencil) inside(resolution int) bool {
	return s.base.X >= 0 && s.base.Y >= 0 &&
		s.base.X+2 <= resolution && s.base.Y+2 <= resolution
}

// scatter transfers one particle's momentum, mass and stress into g.
func (s *Sim) scatter(g *Grid, p *Particle, dt float32) {
	m := &s.cfg.Material
	invDx := float32(s.cfg.Resolution)
	dx := 1 / invDx
	st := newStencil(p.Position, invDx)

	dinv := 4 * invDx * invDx
	stress := s.kirchhoff(p).Scale(-(dt * m.ParticleVolume) * dinv)
	affine := stress.Add(p.C.Scale(m.ParticleMass))
	momentum := p.Velocity.Scale(m.ParticleMass)

	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			dpos := linalg.V2(float32(i), float32(k)).Sub(st.fx).Scale(dx)
			weight := st.w[i].X * st.w[k].Y

			n := g.At(st.base.X+i, st.base.Y+k)
			n.Velocity = n.Velocity.Add(momentum.Add(affine.MulVec(dpos)).Scale(weight))
			n.Mass += m.ParticleMass * weight
		}
	}
}

// kirchhoff returns the fixed-corotated stress P·Fᵗ of p, with Lamé
// parameters hardened by the particle's volume ratio.
func (s *Sim) kirchhoff(p *Particle) linalg.Mat2 {
	e := float32(math.Exp(float64(s.cfg.Material.Hardening * (1 - p.Jp))))
	mu := s.mu0 * e
	lambda := s.lambda0 * e

	j := p.F.Det()
	r, _ := linalg.PolarDecompose(p.F)
	pf := p.F.Sub(r).Mul(p.F.Transpose()).Scale(2 * mu)

	volumetric := lambda * (j - 1) * j
	if s.cfg.Material.DiagonalLambda {
		return pf.AddDiagonal(volumetric)
	}
	return pf.AddScalar(volumetric)
}

// updateNodes normalizes momentum, applies gravity and enforces the walls
// for nodes [lo, hi) of g.
func (s *Sim) updateNodes(g *Grid, lo, hi int, dt float32) {
	boundary := s.cfg.Boundary
	res := float32(g.Resolution)

	for idx := lo; idx < hi; idx++ {
		n := &g.Nodes[idx]
		if n.Mass <= 0 {
			n.Velocity = linalg.Vec2{}
			continue
		}

		n.Velocity = linalg.V2(n.Velocity.X/n.Mass, n.Velocity.Y/n.Mass)
		n.Mass = 1

		n.Velocity.Y += s.cfg.Gravity * dt

		i, j := g.Coords(idx)
		x := float32(i) / res
		y := float32(j) / res

		// Sticky walls: left, right and top
		if x < boundary || x > 1-boundary || y > 1-boundary {
			n.Velocity = linalg.Vec2{}
			n.Mass = 0
		}
		// Separating floor
		if y < boundary {
			n.Velocity.Y = max(n.Velocity.Y, 0)
		}
	}
}

// gather pulls velocity and the affine field back from g, advects the
// particle and applies the plastic deformation update.
func (s *Sim) gather(g *Grid, p *Particle, dt float32) {
	m := &s.cfg.Material
	invDx := float32(s.cfg.Resolution)
	st := newStencil(p.Position, invDx)

	var vel linalg.Vec2
	var c linalg.Mat2
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			dpos := linalg.V2(float32(i), float32(k)).Sub(st.fx)
			weight := st.w[i].X * st.w[k].Y
			wv := g.At(st.base.X+i, st.base.Y+k).Velocity.Scale(weight)

			vel = vel.Add(wv)
			c = c.Add(linalg.Outer(wv, dpos).Scale(4 * invDx))
		}
	}
	p.Velocity = vel
	p.C = c

	p.Position = p.Position.Add(vel.Scale(dt))

	// MLS-MPM deformation update
	f := linalg.Identity().Add(c.Scale(dt)).Mul(p.F)
	u, sig, v := linalg.SVD(f)
	if m.Plastic {
		sig = m.projectPlastic(sig)
	}

	oldJ := f.Det()
	f = linalg.Compose(u, sig, v)

	p.Jp = clamp(p.Jp*oldJ/f.Det(), s.cfg.MinVolumeRatio, s.cfg.MaxVolumeRatio)
	p.F = f
}

// stable reports whether p can take part in the next step.
func (s *Sim) stable(p *Particle) bool {
	if !p.Position.IsFinite() || !p.Velocity.IsFinite() ||
		!p.F.IsFinite() || !p.C.IsFinite() || math.IsNaN(float64(p.Jp)) {
		return false
	}
	return newStencil(p.Position, float32(s.cfg.Resolution)).inside(s.cfg.Resolution)
}
