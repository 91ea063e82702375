// Package renderer draws the snow simulation with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/snowfall/camera"
	"github.com/pthm-cable/snowfall/mpm"
)

// GridRenderer draws the grid velocity field left by the last step.
type GridRenderer struct {
	// Seconds of travel drawn per arrow
	scale float32
}

// NewGridRenderer creates a grid overlay renderer.
func NewGridRenderer(scale float32) *GridRenderer {
	return &GridRenderer{scale: scale}
}

// Draw renders one arrow per node that received mass.
func (r *GridRenderer) Draw(g *mpm.Grid, cam *camera.Camera) {
	rl.BeginBlendMode(rl.BlendAlpha)

	node := rl.Color{R: 60, G: 60, B: 140, A: 90}
	arrow := rl.Color{R: 30, G: 80, B: 160, A: 160}

	for j := 0; j <= g.Resolution; j++ {
		for i := 0; i <= g.Resolution; i++ {
			n := g.At(i, j)
			if n.Mass <= 0 {
				continue
			}

			pos := g.NodePosition(i, j)
			if !cam.IsVisible(pos.X, pos.Y, 0) {
				continue
			}

			sx, sy := cam.WorldToScreen(pos.X, pos.Y)
			ex, ey := cam.WorldToScreen(pos.X+n.Velocity.X*r.scale, pos.Y+n.Velocity.Y*r.scale)

			rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, 1.5, node)
			rl.DrawLineEx(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, 1, arrow)
		}
	}

	rl.EndBlendMode()
}
