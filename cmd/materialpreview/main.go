// Material preview tool - runs a small snow scene with sliders for the
// constitutive constants and shows compaction as a heat map.
//
// Usage: go run ./cmd/materialpreview
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/snowfall/camera"
	"github.com/pthm-cable/snowfall/config"
	"github.com/pthm-cable/snowfall/game"
	"github.com/pthm-cable/snowfall/renderer"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
	fieldSize    = 64
)

// slider is one material constant exposed in the panel.
type slider struct {
	label    string
	min, max float32
	format   string
	value    *float64
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	resolution := flag.Int("resolution", 64, "Grid resolution for the preview")
	seed := flag.Int64("seed", 1, "Particle placement seed")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.Sim.Resolution = *resolution
	defaults := cfg.Material

	rl.InitWindow(windowWidth, windowHeight, "Snow Material Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	img := rl.GenImageColor(fieldSize, fieldSize, rl.Blank)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	cam := camera.New(previewSize, previewSize)
	particles := renderer.NewParticleRenderer(float32(cfg.Screen.ParticleRadius) * 0.5)
	field := make([]float32, fieldSize*fieldSize)
	counts := make([]int, fieldSize*fieldSize)
	pixels := make([]color.RGBA, fieldSize*fieldSize)

	m := &cfg.Material
	sliders := []slider{
		{"Young's modulus", 1e3, 1e5, "%.0f", &m.YoungsModulus},
		{"Poisson ratio", 0.05, 0.45, "%.3f", &m.PoissonRatio},
		{"Hardening", 1, 20, "%.1f", &m.Hardening},
		{"Compression limit", 0.005, 0.1, "%.4f", &m.CompressionLimit},
		{"Stretch limit", 0.001, 0.05, "%.4f", &m.StretchLimit},
	}

	var g *game.Game
	var buildErr error
	rebuild := func() {
		if g != nil {
			g.Close()
			g = nil
		}
		g, buildErr = game.New(cfg, game.Options{Seed: *seed})
	}
	rebuild()
	defer func() {
		if g != nil {
			g.Close()
		}
	}()

	running := true
	needsRebuild := false

	for !rl.WindowShouldClose() {
		if needsRebuild {
			rebuild()
			needsRebuild = false
		}
		if g != nil && running {
			g.UpdateHeadless()
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawRectangle(10, 10, previewSize, previewSize, rl.NewColor(20, 24, 32, 255))
		if g != nil {
			jpField(field, counts, g.Sim().Particles(), fieldSize)
			for i, jp := range field {
				pixels[i] = jpColor(jp, float32(cfg.Physics.MinVolumeRatio), 1.1)
			}
			rl.UpdateTexture(texture, pixels)
			rl.DrawTexturePro(
				texture,
				rl.Rectangle{X: 0, Y: 0, Width: fieldSize, Height: fieldSize},
				rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
				rl.Vector2{},
				0,
				rl.NewColor(255, 255, 255, 160),
			)

			rl.BeginScissorMode(10, 10, previewSize, previewSize)
			rlPushOffset(10, 10, func() { particles.Draw(g.Sim(), cam) })
			rl.EndScissorMode()
		}
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		switch {
		case buildErr != nil:
			rl.DrawText(fmt.Sprintf("Invalid material: %v", buildErr), 15, statsY, 16, rl.Maroon)
		case g.Failed() != nil:
			rl.DrawText(fmt.Sprintf("Frame %d: UNSTABLE", g.Frame()), 15, statsY, 16, rl.Maroon)
		default:
			stats := g.LastStats()
			rl.DrawText(fmt.Sprintf("Frame: %d  Steps: %d  Time: %.2fs", g.Frame(), g.Sim().Steps(), g.Sim().SimTime()), 15, statsY, 16, rl.DarkGray)
			rl.DrawText(fmt.Sprintf("Height: %.3f  Jp p50: %.3f  At min Jp: %d", stats.HeightMean, stats.JpP50, stats.JpAtMin), 15, statsY+20, 16, rl.DarkGray)
		}

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Snow Material", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		for _, s := range sliders {
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				fmt.Sprintf(s.format, s.min), fmt.Sprintf(s.format, s.max),
				float32(*s.value), s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, *s.value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if v != float32(*s.value) {
				*s.value = float64(v)
				needsRebuild = true
			}
			panelY += 35
		}

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 60, Height: 24}, toggleText(m.Plastic, "Plastic", "Elastic")) {
			m.Plastic = !m.Plastic
			needsRebuild = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(running, "Pause", "Run")) {
			running = !running
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Restart") {
			needsRebuild = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			*m = defaults
			needsRebuild = true
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yamlText := materialYAML(*m)
		for _, line := range strings.Split(strings.TrimRight(yamlText, "\n"), "\n") {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yamlText)
		}

		rl.EndDrawing()
	}
}

// rlPushOffset draws fn translated by (x, y) pixels.
func rlPushOffset(x, y float32, fn func()) {
	rl.BeginMode2D(rl.Camera2D{Offset: rl.Vector2{X: x, Y: y}, Zoom: 1})
	fn()
	rl.EndMode2D()
}

// materialYAML renders the material block as it appears in a config file.
func materialYAML(m config.MaterialConfig) string {
	data, err := yaml.Marshal(map[string]config.MaterialConfig{"material": m})
	if err != nil {
		return err.Error()
	}
	return string(data)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
