package main

import (
	"image/color"
	"testing"

	"github.com/pthm-cable/snowfall/linalg"
	"github.com/pthm-cable/snowfall/mpm"
)

func TestJpField(t *testing.T) {
	particles := []mpm.Particle{
		mpm.NewParticle(linalg.V2(0.1, 0.1), 0),
		mpm.NewParticle(linalg.V2(0.15, 0.2), 0),
		mpm.NewParticle(linalg.V2(0.9, 0.9), 0),
		mpm.NewParticle(linalg.V2(1.5, 0.5), 0), // outside
	}
	particles[0].Jp = 0.8
	particles[1].Jp = 0.6
	particles[2].Jp = 1.2

	const size = 4
	dst := make([]float32, size*size)
	counts := make([]int, size*size)
	jpField(dst, counts, particles, size)

	// Bottom-left cell is the last row
	if got := dst[3*size+0]; got < 0.699 || got > 0.701 {
		t.Errorf("bottom-left mean = %g, want 0.7", got)
	}
	if got := dst[0*size+3]; got != 1.2 {
		t.Errorf("top-right mean = %g, want 1.2", got)
	}

	var filled int
	for _, n := range counts {
		filled += n
	}
	if filled != 3 {
		t.Errorf("binned %d particles, want 3", filled)
	}

	// Second call starts from a clean grid
	jpField(dst, counts, particles[2:3], size)
	if dst[3*size] != 0 {
		t.Errorf("stale value %g left in bottom-left cell", dst[3*size])
	}
}

func TestJpColor(t *testing.T) {
	tests := []struct {
		name string
		jp   float32
		want color.RGBA
	}{
		{"empty", 0, color.RGBA{}},
		{"rest", 1, color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{"fully compacted", 0.6, color.RGBA{R: 40, G: 100, B: 255, A: 255}},
		{"beyond compaction bound", 0.1, color.RGBA{R: 40, G: 100, B: 255, A: 255}},
		{"fully expanded", 3, color.RGBA{R: 255, G: 135, B: 40, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jpColor(tt.jp, 0.6, 3); got != tt.want {
				t.Errorf("jpColor(%g) = %+v, want %+v", tt.jp, got, tt.want)
			}
		})
	}
}
