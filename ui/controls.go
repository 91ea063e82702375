package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsState is the simulation state the panel displays.
type ControlsState struct {
	Paused   bool
	Unstable bool
	Speed    int
	MaxSpeed int
}

// ControlsActions reports what the user asked for this frame.
type ControlsActions struct {
	TogglePause bool
	Reset       bool
	Speed       int
}

// ControlsPanel renders the pause, reset and speed controls plus the
// overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders the panel and returns the requested actions.
func (c *ControlsPanel) Draw(state ControlsState, overlays *OverlayRegistry) ControlsActions {
	r := c.renderer
	padding := r.Theme.Padding
	actions := ControlsActions{Speed: state.Speed}

	toggles := overlays.All()
	panelHeight := padding*2 + r.Theme.LineHeight + 4 + 34 + 40 + int32(len(toggles))*26
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := float32(c.x + padding)
	y := c.y + padding
	inner := float32(c.width - padding*2)

	rl.DrawText("Controls", c.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	label := "Pause"
	if state.Paused {
		label = "Resume"
	}
	if state.Unstable {
		label = "Unstable"
	}
	half := (inner - 8) / 2
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 26}, label) {
		actions.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 8, Y: float32(y), Width: half, Height: 26}, "Reset") {
		actions.Reset = true
	}
	y += 34

	rl.DrawText(fmt.Sprintf("Speed %dx", state.Speed), c.x+padding, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += 14
	speed := gui.SliderBar(
		rl.Rectangle{X: x + 20, Y: float32(y), Width: inner - 40, Height: 16},
		"1", fmt.Sprint(state.MaxSpeed),
		float32(state.Speed), 1, float32(state.MaxSpeed),
	)
	actions.Speed = int(speed + 0.5)
	y += 26

	for _, desc := range toggles {
		text := fmt.Sprintf("%s [%s]", desc.Name, desc.KeyLabel)
		if overlays.IsEnabled(desc.ID) {
			text = "* " + text
		}
		if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: inner, Height: 22}, text) {
			overlays.Toggle(desc.ID)
		}
		y += 26
	}

	return actions
}
