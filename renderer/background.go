package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/snowfall/camera"
)

// BackgroundRenderer clears the window and draws the simulation domain
// with its wall band.
type BackgroundRenderer struct {
	clear    rl.Color
	frame    rl.Color
	band     rl.Color
	boundary float32
}

// NewBackgroundRenderer creates a background renderer. background is a
// packed 0xRRGGBB colour, boundary the wall band thickness in world units.
func NewBackgroundRenderer(background uint32, boundary float32) *BackgroundRenderer {
	bg := TagColor(background)
	return &BackgroundRenderer{
		clear:    bg,
		frame:    rl.Color{R: 90, G: 80, B: 80, A: 255},
		band:     rl.Color{R: bg.R / 2, G: bg.G / 2, B: bg.B / 2, A: 60},
		boundary: boundary,
	}
}

// Draw clears the screen and outlines the domain.
func (b *BackgroundRenderer) Draw(cam *camera.Camera) {
	rl.ClearBackground(b.clear)

	x0, y0 := cam.WorldToScreen(0, 1)
	x1, y1 := cam.WorldToScreen(1, 0)
	bw := b.boundary * cam.Scale()

	// Walls that stop everything
	rl.DrawRectangleRec(rl.Rectangle{X: x0, Y: y0, Width: bw, Height: y1 - y0}, b.band)
	rl.DrawRectangleRec(rl.Rectangle{X: x1 - bw, Y: y0, Width: bw, Height: y1 - y0}, b.band)
	rl.DrawRectangleRec(rl.Rectangle{X: x0 + bw, Y: y0, Width: x1 - x0 - 2*bw, Height: bw}, b.band)

	// Floor only stops falling
	rl.DrawLineEx(rl.Vector2{X: x0, Y: y1 - bw}, rl.Vector2{X: x1, Y: y1 - bw}, 1, b.band)

	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 2, b.frame)
}
