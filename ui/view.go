package ui

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/snowfall/camera"
	"github.com/pthm-cable/snowfall/game"
	"github.com/pthm-cable/snowfall/renderer"
)

const controlsLegend = "Space: pause | R: reset | +/-: speed | Wheel: zoom | Right drag: pan | C: recenter"

// View is the windowed frontend of a Game.
type View struct {
	game   *game.Game
	camera *camera.Camera

	background *renderer.BackgroundRenderer
	particles  *renderer.ParticleRenderer
	grid       *renderer.GridRenderer

	overlays *OverlayRegistry
	hud      *HUD
	controls *ControlsPanel
	stats    *StatsPanel
	perf     *PerfPanel
	legend   []Legend
}

// NewView creates a view. The raylib window must already be open.
func NewView(g *game.Game) *View {
	cfg := g.Config()
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())

	legend := make([]Legend, len(cfg.Blobs))
	for i, b := range cfg.Blobs {
		legend[i] = Legend{
			Label: fmt.Sprintf("%s at (%.2f, %.2f)", b.Colour, b.Center[0], b.Center[1]),
			Color: renderer.TagColor(uint32(b.Colour)),
		}
	}

	v := &View{
		game:       g,
		camera:     camera.New(w, h),
		background: renderer.NewBackgroundRenderer(uint32(cfg.Screen.Background), float32(cfg.Physics.Boundary)),
		particles:  renderer.NewParticleRenderer(float32(cfg.Screen.ParticleRadius)),
		grid:       renderer.NewGridRenderer(0.02),
		overlays:   NewOverlayRegistry(),
		hud:        NewHUD(),
		controls:   NewControlsPanel(0, 0, 200),
		stats:      NewStatsPanel(0, 0, 240),
		perf:       NewPerfPanel(10, 100, 260),
		legend:     legend,
	}
	v.layout()
	return v
}

// layout anchors the side panels to the right edge.
func (v *View) layout() {
	w := int32(v.camera.ViewportW)
	v.controls.SetPosition(w-210, 10)
	v.stats.SetPosition(w-250, 250)
}

// HandleInput applies keyboard and mouse input for this frame.
func (v *View) HandleInput() {
	g := v.game

	if rl.IsWindowResized() {
		v.camera.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
		v.layout()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.reset()
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.SetSpeed(g.Speed() + 1)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.SetSpeed(g.Speed() - 1)
	}
	if rl.IsKeyPressed(rl.KeyC) {
		v.camera.Reset()
	}
	v.overlays.HandleKeys()

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		factor := float32(1.1)
		if wheel < 0 {
			factor = 1 / factor
		}
		v.camera.ZoomAt(mouse.X, mouse.Y, factor)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		delta := rl.GetMouseDelta()
		v.camera.Pan(-delta.X, -delta.Y)
	}
}

func (v *View) reset() {
	if err := v.game.Reset(); err != nil {
		slog.Error("reset failed", "error", err)
	}
}

// Draw renders one frame.
func (v *View) Draw() {
	g := v.game
	cfg := g.Config()
	sim := g.Sim()

	rl.BeginDrawing()

	v.background.Draw(v.camera)
	if v.overlays.IsEnabled(OverlayGrid) {
		v.grid.Draw(sim.Grid(), v.camera)
	}
	v.particles.Draw(sim, v.camera)

	v.hud.Draw(HUDData{
		Title:     cfg.Screen.Title,
		Frame:     g.Frame(),
		Steps:     sim.Steps(),
		SimTime:   sim.SimTime(),
		Particles: sim.Len(),
		Speed:     g.Speed(),
		FPS:       rl.GetFPS(),
		Paused:    g.Paused(),
		Unstable:  g.Failed(),
	})
	v.hud.DrawControls(int32(v.camera.ViewportH), controlsLegend)

	if v.overlays.IsEnabled(OverlayPerf) {
		v.perf.Draw(g.Perf())
	}
	if v.overlays.IsEnabled(OverlayStats) {
		v.stats.Draw(g.LastStats(), v.legend)
	}
	if v.overlays.IsEnabled(OverlayControls) {
		actions := v.controls.Draw(ControlsState{
			Paused:   g.Paused(),
			Unstable: g.Failed() != nil,
			Speed:    g.Speed(),
			MaxSpeed: game.MaxSpeed,
		}, v.overlays)
		if actions.TogglePause {
			g.TogglePause()
		}
		if actions.Reset {
			v.reset()
		}
		g.SetSpeed(actions.Speed)
	}

	rl.EndDrawing()
	g.PerfCollector().RecordFrame()
}
