package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats summarizes the particle store at the end of a stats window.
type WindowStats struct {
	WindowStartFrame int32   `csv:"-"`
	WindowEndFrame   int32   `csv:"window_end"`
	Steps            uint64  `csv:"steps"`
	SimTimeSec       float64 `csv:"sim_time"`
	Particles        int     `csv:"particles"`

	// Frames in the window, and those skipped as too long
	Frames        int `csv:"frames"`
	DroppedFrames int `csv:"dropped_frames"`
	Substeps      int `csv:"substeps"`

	// Particle height distribution
	HeightMean float64 `csv:"height_mean"`
	HeightStd  float64 `csv:"height_std"`
	HeightMin  float64 `csv:"height_min"`
	HeightMax  float64 `csv:"height_max"`

	SpeedMean float64 `csv:"speed_mean"`
	SpeedMax  float64 `csv:"speed_max"`

	// Tracked volume ratio distribution
	JpMean float64 `csv:"jp_mean"`
	JpP10  float64 `csv:"jp_p10"`
	JpP50  float64 `csv:"jp_p50"`
	JpP90  float64 `csv:"jp_p90"`

	// Particles pinned at the Jp bounds
	JpAtMin int `csv:"jp_at_min"`
	JpAtMax int `csv:"jp_at_max"`

	DetFMean float64 `csv:"det_f_mean"`

	// Grid after the last step
	ActiveNodes int     `csv:"active_nodes"`
	GridMass    float64 `csv:"grid_mass"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution summarizes a sample.
type Distribution struct {
	Mean, Std     float64
	Min, Max      float64
	P10, P50, P90 float64
}

// Describe computes the distribution of values. values is sorted in place.
// Std is the population standard deviation.
func Describe(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	sort.Float64s(values)
	mean, variance := stat.PopMeanVariance(values, nil)
	return Distribution{
		Mean: mean,
		Std:  math.Sqrt(variance),
		Min:  floats.Min(values),
		Max:  floats.Max(values),
		P10:  Percentile(values, 0.10),
		P50:  Percentile(values, 0.50),
		P90:  Percentile(values, 0.90),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartFrame)),
		slog.Int("window_end", int(s.WindowEndFrame)),
		slog.Uint64("steps", s.Steps),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("frames", s.Frames),
		slog.Int("dropped_frames", s.DroppedFrames),
		slog.Int("substeps", s.Substeps),
		slog.Float64("height_mean", s.HeightMean),
		slog.Float64("height_std", s.HeightStd),
		slog.Float64("height_min", s.HeightMin),
		slog.Float64("height_max", s.HeightMax),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("jp_mean", s.JpMean),
		slog.Float64("jp_p10", s.JpP10),
		slog.Float64("jp_p50", s.JpP50),
		slog.Float64("jp_p90", s.JpP90),
		slog.Int("jp_at_min", s.JpAtMin),
		slog.Int("jp_at_max", s.JpAtMax),
		slog.Float64("det_f_mean", s.DetFMean),
		slog.Int("active_nodes", s.ActiveNodes),
		slog.Float64("grid_mass", s.GridMass),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
