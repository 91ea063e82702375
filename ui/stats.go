package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/snowfall/telemetry"
)

func statsField(label, format string, get func(s *telemetry.WindowStats) float64) FieldDescriptor {
	return FieldDescriptor{
		Label:  label,
		Widget: WidgetText,
		Format: format,
		Getter: func(data any) float32 { return float32(get(data.(*telemetry.WindowStats))) },
	}
}

func statsBar(label string, rng FieldRange, get func(s *telemetry.WindowStats) float64) FieldDescriptor {
	return FieldDescriptor{
		Label:  label,
		Widget: WidgetBar,
		Range:  rng,
		Getter: func(data any) float32 { return float32(get(data.(*telemetry.WindowStats))) },
	}
}

// statsSections lays out the stats panel.
var statsSections = []SectionDescriptor{
	{
		Title: "Pile",
		Fields: []FieldDescriptor{
			statsBar("Height", DefaultRange(), func(s *telemetry.WindowStats) float64 { return s.HeightMean }),
			statsField("Height std", "%.3f", func(s *telemetry.WindowStats) float64 { return s.HeightStd }),
			statsField("Top", "%.3f", func(s *telemetry.WindowStats) float64 { return s.HeightMax }),
			statsField("Speed", "%.3f", func(s *telemetry.WindowStats) float64 { return s.SpeedMean }),
			statsField("Max speed", "%.3f", func(s *telemetry.WindowStats) float64 { return s.SpeedMax }),
		},
	},
	{
		Title: "Compaction",
		Fields: []FieldDescriptor{
			statsBar("Jp median", FieldRange{Min: 0.6, Max: 1.4}, func(s *telemetry.WindowStats) float64 { return s.JpP50 }),
			statsField("Jp p10", "%.3f", func(s *telemetry.WindowStats) float64 { return s.JpP10 }),
			statsField("Jp p90", "%.3f", func(s *telemetry.WindowStats) float64 { return s.JpP90 }),
			statsField("At Jp min", "%.0f", func(s *telemetry.WindowStats) float64 { return float64(s.JpAtMin) }),
			statsField("det F", "%.4f", func(s *telemetry.WindowStats) float64 { return s.DetFMean }),
		},
	},
	{
		Title: "Grid",
		Fields: []FieldDescriptor{
			statsField("Active nodes", "%.0f", func(s *telemetry.WindowStats) float64 { return float64(s.ActiveNodes) }),
			statsField("Mass", "%.1f", func(s *telemetry.WindowStats) float64 { return s.GridMass }),
		},
	},
}

// Legend names one blob colour.
type Legend struct {
	Label string
	Color rl.Color
}

// StatsPanel renders the last stats window and the blob legend.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStatsPanel creates a new stats panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *StatsPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel.
func (p *StatsPanel) Draw(stats telemetry.WindowStats, legend []Legend) {
	r := p.renderer
	padding := r.Theme.Padding
	contentWidth := p.width - padding*2

	height := padding*2 + r.Theme.LineHeight*int32(len(legend)+1)
	for _, sd := range statsSections {
		height += r.sectionHeight(sd)
	}
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + padding
	y := p.y + padding
	for _, sd := range statsSections {
		y = r.DrawSection(x, y, sd, &stats, contentWidth)
	}

	y = r.DrawSectionHeader(x, y, "Blobs")
	for _, l := range legend {
		y = r.DrawColorSwatch(x, y, l.Label, l.Color)
	}
}
