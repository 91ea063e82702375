package mpm

import (
	"math"

	"github.com/pthm-cable/snowfall/linalg"
)

// ParticleView is the read-only part of a particle a renderer needs.
type ParticleView struct {
	Position linalg.Vec2
	Tag      uint32
}

// VertexStride is the number of float32 values per particle written by
// AppendVertexData.
const VertexStride = 3

// Snapshot copies positions and tags into dst, reusing its storage.
func (s *Sim) Snapshot(dst []ParticleView) []ParticleView {
	dst = dst[:0]
	for i := range s.particles {
		p := &s.particles[i]
		dst = append(dst, ParticleView{Position: p.Position, Tag: p.Tag})
	}
	return dst
}

// AppendVertexData appends one (x, y, tag) triple per particle to dst. The
// tag is stored as the float32 with the same bit pattern, so a vertex
// shader can reinterpret it as a packed colour.
func (s *Sim) AppendVertexData(dst []float32) []float32 {
	for i := range s.particles {
		p := &s.particles[i]
		dst = append(dst, p.Position.X, p.Position.Y, math.Float32frombits(p.Tag))
	}
	return dst
}
