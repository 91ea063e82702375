// Package telemetry provides per-window simulation statistics, performance
// timing, bookmarks and experiment output.
package telemetry

import (
	"github.com/pthm-cable/snowfall/mpm"
)

var _ mpm.PhaseTimer = (*PerfCollector)(nil)

// Collector counts frame events within a window and produces WindowStats
// from the particle store when the window closes.
type Collector struct {
	windowFrames     int32
	windowStartFrame int32

	// Event counters for current window
	frames   int
	dropped  int
	substeps int

	// Sample buffers reused across flushes
	heights []float64
	speeds  []float64
	jps     []float64
	dets    []float64
}

// NewCollector creates a collector that flushes every windowFrames frames.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{windowFrames: int32(windowFrames)}
}

// RecordFrame records a simulated frame and the substeps it took.
func (c *Collector) RecordFrame(substeps int) {
	c.frames++
	c.substeps += substeps
}

// RecordDroppedFrame records a frame skipped for being too long.
func (c *Collector) RecordDroppedFrame() {
	c.dropped++
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(currentFrame int32) bool {
	return currentFrame-c.windowStartFrame >= c.windowFrames
}

// Reset discards the current window and starts a new one at frame.
func (c *Collector) Reset(frame int32) {
	c.windowStartFrame = frame
	c.frames, c.dropped, c.substeps = 0, 0, 0
}

// Flush produces a WindowStats for the state of s and resets counters for
// the next window.
func (c *Collector) Flush(currentFrame int32, s *mpm.Sim) WindowStats {
	cfg := s.Config()
	particles := s.Particles()

	c.heights = c.heights[:0]
	c.speeds = c.speeds[:0]
	c.jps = c.jps[:0]
	c.dets = c.dets[:0]

	var atMin, atMax int
	for i := range particles {
		p := &particles[i]
		c.heights = append(c.heights, float64(p.Position.Y))
		c.speeds = append(c.speeds, float64(p.Velocity.Length()))
		c.jps = append(c.jps, float64(p.Jp))
		c.dets = append(c.dets, float64(p.F.Det()))

		if p.Jp <= cfg.MinVolumeRatio {
			atMin++
		}
		if p.Jp >= cfg.MaxVolumeRatio {
			atMax++
		}
	}

	height := Describe(c.heights)
	speed := Describe(c.speeds)
	jp := Describe(c.jps)
	det := Describe(c.dets)

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   currentFrame,
		Steps:            s.Steps(),
		SimTimeSec:       s.SimTime(),
		Particles:        len(particles),
		Frames:           c.frames,
		DroppedFrames:    c.dropped,
		Substeps:         c.substeps,
		HeightMean:       height.Mean,
		HeightStd:        height.Std,
		HeightMin:        height.Min,
		HeightMax:        height.Max,
		SpeedMean:        speed.Mean,
		SpeedMax:         speed.Max,
		JpMean:           jp.Mean,
		JpP10:            jp.P10,
		JpP50:            jp.P50,
		JpP90:            jp.P90,
		JpAtMin:          atMin,
		JpAtMax:          atMax,
		DetFMean:         det.Mean,
		ActiveNodes:      s.Grid().ActiveNodes(),
		GridMass:         s.TransferredMass(),
	}

	c.Reset(currentFrame)
	return stats
}
