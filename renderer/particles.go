package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/snowfall/camera"
	"github.com/pthm-cable/snowfall/mpm"
)

// ParticleRenderer draws snow particles as small discs.
type ParticleRenderer struct {
	radius float32 // pixels at zoom 1

	views []mpm.ParticleView
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer(radius float32) *ParticleRenderer {
	return &ParticleRenderer{radius: radius}
}

// Draw renders every particle of s, coloured from its tag.
func (r *ParticleRenderer) Draw(s *mpm.Sim, cam *camera.Camera) {
	r.views = s.Snapshot(r.views)

	size := r.radius * cam.Zoom
	worldRadius := size / cam.Scale()

	var lastTag uint32
	color := TagColor(0)
	for i := range r.views {
		p := &r.views[i]
		if !cam.IsVisible(p.Position.X, p.Position.Y, worldRadius) {
			continue
		}
		if p.Tag != lastTag {
			lastTag = p.Tag
			color = TagColor(p.Tag)
		}

		sx, sy := cam.WorldToScreen(p.Position.X, p.Position.Y)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, size, color)
	}
}

// TagColor unpacks a 0xRRGGBB tag into an opaque colour.
func TagColor(tag uint32) rl.Color {
	return rl.Color{
		R: uint8(tag >> 16),
		G: uint8(tag >> 8),
		B: uint8(tag),
		A: 255,
	}
}
