package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	values := []float64{1.0, 0.3, 0.5, 0.9, 0.1, 0.7, 0.2, 0.8, 0.6, 0.4}
	d := Describe(values)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"mean", d.Mean, 0.55},
		{"std", d.Std, math.Sqrt(0.0825)},
		{"min", d.Min, 0.1},
		{"max", d.Max, 1.0},
		{"p10", d.P10, 0.19},
		{"p50", d.P50, 0.55},
		{"p90", d.P90, 0.91},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 0.001 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if values[0] != 0.1 || values[9] != 1.0 {
		t.Errorf("Describe should sort its input in place, got %v", values)
	}
}

func TestDescribeEmpty(t *testing.T) {
	if d := Describe(nil); d != (Distribution{}) {
		t.Errorf("empty input should return zero distribution, got %+v", d)
	}
}

func TestCollectorFlush(t *testing.T) {
	s := newTestSim(t, 32, 20)
	c := NewCollector(3)

	for frame := int32(1); frame <= 3; frame++ {
		n, err := s.Step(1.0 / 60)
		if err != nil {
			t.Fatal(err)
		}
		c.RecordFrame(n)
		if frame < 3 && c.ShouldFlush(frame) {
			t.Fatalf("should not flush at frame %d", frame)
		}
	}
	c.RecordDroppedFrame()

	if !c.ShouldFlush(3) {
		t.Fatal("expected flush at frame 3")
	}
	stats := c.Flush(3, s)

	if stats.Particles != 60 {
		t.Errorf("particles = %d, want 60", stats.Particles)
	}
	if stats.Frames != 3 || stats.DroppedFrames != 1 {
		t.Errorf("frames = %d dropped = %d, want 3 and 1", stats.Frames, stats.DroppedFrames)
	}
	if uint64(stats.Substeps) != s.Steps() || stats.Steps != s.Steps() {
		t.Errorf("substeps = %d, steps = %d, sim steps %d", stats.Substeps, stats.Steps, s.Steps())
	}
	if stats.HeightMin > stats.HeightMean || stats.HeightMean > stats.HeightMax {
		t.Errorf("height distribution out of order: %+v", stats)
	}
	if stats.SpeedMean <= 0 {
		t.Error("falling particles should have positive mean speed")
	}
	if stats.JpMean < 0.6 || stats.JpMean > 20 {
		t.Errorf("jp mean %f outside volume ratio bounds", stats.JpMean)
	}
	if math.Abs(stats.GridMass-60) > 0.01 {
		t.Errorf("grid mass = %f, want 60", stats.GridMass)
	}
	if stats.ActiveNodes == 0 {
		t.Error("expected active grid nodes")
	}

	if c.ShouldFlush(5) {
		t.Error("window should restart after flush")
	}
	if next := c.Flush(6, s); next.Frames != 0 || next.WindowStartFrame != 3 {
		t.Errorf("counters not reset: %+v", next)
	}
}
