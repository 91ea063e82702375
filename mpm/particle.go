package mpm

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/snowfall/linalg"
)

// Particle is one grain of simulated material.
type Particle struct {
	Position linalg.Vec2
	Velocity linalg.Vec2

	F  linalg.Mat2 // deformation gradient
	C  linalg.Mat2 // APIC affine velocity field, rebuilt every step
	Jp float32     // tracked volume ratio feeding the hardening exponent

	Tag uint32 // material tag (packed 0xRRGGBB colour); never read by the solver
}

// NewParticle returns an undeformed particle at rest.
func NewParticle(pos linalg.Vec2, tag uint32) Particle {
	return Particle{
		Position: pos,
		F:        linalg.Identity(),
		Jp:       1,
		Tag:      tag,
	}
}

// Shape selects how a blob scatters its particles.
type Shape uint8

const (
	ShapeDisc   Shape = iota // uniform in a disc of the blob radius
	ShapeSquare              // uniform in the square of half-width radius
)

func (s Shape) String() string {
	switch s {
	case ShapeDisc:
		return "disc"
	case ShapeSquare:
		return "square"
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// ParseShape converts a shape name to a Shape.
func ParseShape(name string) (Shape, error) {
	switch name {
	case "", "disc":
		return ShapeDisc, nil
	case "square":
		return ShapeSquare, nil
	}
	return 0, fmt.Errorf("%w: unknown shape %q", ErrInvalidBlob, name)
}

// Blob is a batch of particles scattered around a center point.
type Blob struct {
	Center   linalg.Vec2
	Count    int
	Radius   float32
	Tag      uint32
	Velocity linalg.Vec2 // initial velocity of every particle
	Shape    Shape
}

// DefaultBlobs returns three stacked blobs of count particles each.
func DefaultBlobs(count int) []Blob {
	return []Blob{
		{Center: linalg.V2(0.55, 0.45), Count: count, Radius: DefaultBlobRadius, Tag: 0xed553b},
		{Center: linalg.V2(0.45, 0.65), Count: count, Radius: DefaultBlobRadius, Tag: 0xf2b134},
		{Center: linalg.V2(0.55, 0.85), Count: count, Radius: DefaultBlobRadius, Tag: 0x068587},
	}
}

// Sampler returns uniform random values in [-1, 1].
type Sampler func() float32

// UniformSampler adapts rng to a Sampler.
func UniformSampler(rng *rand.Rand) Sampler {
	return func() float32 {
		return rng.Float32()*2 - 1
	}
}

// maxDiscAttempts bounds rejection sampling before falling back to
// projecting the sample onto the unit disc.
const maxDiscAttempts = 32

// validate checks that every particle of the blob lands where the
// transfer stencil can reach, given grid spacing dx.
func (b Blob) validate(dx float32) error {
	lo := 0.5*dx + 1e-4
	hi := 1 - 0.5*dx - 1e-4
	switch {
	case b.Count <= 0:
		return fmt.Errorf("count must be positive, got %d", b.Count)
	case b.Radius <= 0:
		return fmt.Errorf("radius must be positive, got %g", b.Radius)
	case b.Center.X < 0 || b.Center.X > 1 || b.Center.Y < 0 || b.Center.Y > 1:
		return fmt.Errorf("center (%g, %g) outside the unit square", b.Center.X, b.Center.Y)
	case b.Center.X-b.Radius < lo || b.Center.X+b.Radius > hi ||
		b.Center.Y-b.Radius < lo || b.Center.Y+b.Radius > hi:
		return fmt.Errorf("extent %g around (%g, %g) leaves the grid interior [%g, %g]",
			b.Radius, b.Center.X, b.Center.Y, lo, hi)
	case !b.Velocity.IsFinite():
		return fmt.Errorf("velocity is not finite")
	}
	return nil
}

// offset draws a unit-scale offset for one particle.
func (b Blob) offset(sample Sampler) linalg.Vec2 {
	var p linalg.Vec2
	for attempt := 0; attempt < maxDiscAttempts; attempt++ {
		p = linalg.V2(clamp(sample(), -1, 1), clamp(sample(), -1, 1))
		if b.Shape == ShapeSquare || p.Dot(p) <= 1 {
			return p
		}
	}
	return p.Scale(1 / p.Length())
}

// scatter appends the blob's particles to dst.
func (b Blob) scatter(dst []Particle, sample Sampler) []Particle {
	for i := 0; i < b.Count; i++ {
		pos := b.Center.Add(b.offset(sample).Scale(b.Radius))
		p := NewParticle(pos, b.Tag)
		p.Velocity = b.Velocity
		dst = append(dst, p)
	}
	return dst
}

// buildParticles validates the blobs and scatters all of them.
func buildParticles(blobs []Blob, sample Sampler, dx float32) ([]Particle, error) {
	if len(blobs) == 0 {
		return nil, fmt.Errorf("%w: no blobs", ErrInvalidBlob)
	}
	if sample == nil {
		return nil, fmt.Errorf("%w: nil sampler", ErrInvalidConfig)
	}

	total := 0
	for i, b := range blobs {
		if err := b.validate(dx); err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrInvalidBlob, i, err)
		}
		total += b.Count
	}

	particles := make([]Particle, 0, total)
	for _, b := range blobs {
		particles = b.scatter(particles, sample)
	}
	return particles, nil
}
