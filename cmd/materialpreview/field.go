package main

import (
	"image/color"

	"github.com/pthm-cable/snowfall/mpm"
)

// jpField bins particles into a size×size grid and stores the mean volume
// ratio per cell in dst, row 0 at the top. Empty cells are 0.
func jpField(dst []float32, counts []int, particles []mpm.Particle, size int) {
	clear(dst)
	clear(counts)

	for i := range particles {
		p := &particles[i]
		cx := int(p.Position.X * float32(size))
		cy := int(p.Position.Y * float32(size))
		if cx < 0 || cy < 0 || cx >= size || cy >= size {
			continue
		}
		idx := (size-1-cy)*size + cx
		dst[idx] += p.Jp
		counts[idx]++
	}

	for i, n := range counts {
		if n > 0 {
			dst[i] /= float32(n)
		}
	}
}

// jpColor maps a volume ratio to a colour: blue when compacted, white at
// rest, orange when expanded. Empty cells are transparent.
func jpColor(jp, minJp, maxJp float32) color.RGBA {
	if jp <= 0 {
		return color.RGBA{}
	}
	switch {
	case jp < 1:
		t := min((1-jp)/(1-minJp), 1)
		return color.RGBA{R: uint8(255 - t*215), G: uint8(255 - t*155), B: 255, A: 255}
	case jp > 1:
		t := min((jp-1)/(maxJp-1), 1)
		return color.RGBA{R: 255, G: uint8(255 - t*120), B: uint8(255 - t*215), A: 255}
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}
